package common

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/recibos-extractor/constants"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig(nil)
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
	assert.False(t, cfg.PersistenceEnabled())
}

func TestLoadConfigEnvAndFlags(t *testing.T) {
	t.Setenv("RECIBOS_DB_DSN", "recibos.db")
	t.Setenv("RECIBOS_EXTRACT_MIN_SECTION_LINES", "12")
	t.Setenv("RECIBOS_LOG_LEVEL", "DEBUG")

	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	BindFlags(fs)
	require.NoError(t, fs.Parse([]string{"--pdf.decoder=pdftotext", "--extract.lenient_units=false"}))

	cfg, err := LoadConfig(fs)
	require.NoError(t, err)
	assert.Equal(t, "recibos.db", cfg.Database.DSN)
	assert.True(t, cfg.PersistenceEnabled())
	assert.Equal(t, 12, cfg.Extract.MinSectionLines)
	assert.Equal(t, constants.DecoderPdftotext, cfg.PDF.Decoder)
	assert.False(t, cfg.Extract.LenientUnits)
	assert.Equal(t, "debug", cfg.LogLevel)

	level, err := cfg.SlogLevel()
	require.NoError(t, err)
	assert.Equal(t, slog.LevelDebug, level)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"driver", func(c *Config) { c.Database.Driver = "mysql" }},
		{"decoder", func(c *Config) { c.PDF.Decoder = "ocr" }},
		{"min section", func(c *Config) { c.Extract.MinSectionLines = 0 }},
		{"fallback ratio", func(c *Config) { c.Extract.FallbackRatio = 1.5 }},
		{"max file size", func(c *Config) { c.PDF.MaxFileSize = -1 }},
		{"log level", func(c *Config) { c.LogLevel = "trace" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidInput)
			var appErr *AppError
			require.ErrorAs(t, err, &appErr)
			assert.Equal(t, CodeConfig, appErr.Code)
		})
	}
	assert.NoError(t, DefaultConfig().Validate())
}

func TestErrors(t *testing.T) {
	cause := errors.New("no such file")
	nf := NotFound("/x.pdf", cause)
	assert.True(t, IsNotFound(nf))
	assert.ErrorIs(t, nf, cause)
	assert.False(t, IsExtractionFailure(nf))
	assert.Contains(t, nf.Error(), "NOT_FOUND: file not found: /x.pdf")

	ef := WrapError(ExtractionFailure("page 3", cause), "extract")
	assert.True(t, IsExtractionFailure(ef))
	assert.ErrorIs(t, ef, cause)
	assert.Nil(t, WrapError(nil, "noop"))

	assert.Equal(t, "DB_ERROR: ping", NewAppError(CodeDatabase, "ping", nil).Error())
}

func TestLoggerFromContext(t *testing.T) {
	fallback := slog.New(slog.NewTextHandler(io.Discard, nil))
	scoped := slog.New(slog.NewTextHandler(io.Discard, nil)).With("worker", 1)

	assert.Same(t, fallback, LoggerFromContext(context.Background(), fallback))
	assert.Same(t, slog.Default(), LoggerFromContext(context.Background(), nil))
	assert.Same(t, scoped, LoggerFromContext(WithLogger(context.Background(), scoped), fallback))
}
