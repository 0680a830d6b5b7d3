package common

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/joseph-ayodele/recibos-extractor/constants"
)

// EnvPrefix is prepended to every environment variable, e.g. RECIBOS_DB_DSN.
const EnvPrefix = "RECIBOS"

// Config holds all application configuration
type Config struct {
	Database DatabaseConfig
	PDF      PDFConfig
	Extract  ExtractConfig
	Export   ExportConfig
	Watch    WatchConfig
	Server   ServerConfig
	LogLevel string
}

// DatabaseConfig holds database-related configuration
type DatabaseConfig struct {
	Driver       string // "sqlite" | "pgx"
	DSN          string // empty disables persistence
	MaxOpenConns int
	DialTimeout  time.Duration
}

// PDFConfig selects and tunes the document decoder
type PDFConfig struct {
	Decoder     string // "ledongthuc" | "pdftotext"
	Pdftotext   string
	MaxFileSize int64
}

// ExtractConfig carries the heuristic thresholds of the receipt engine.
// The defaults were tuned against real receipts and are kept overridable.
type ExtractConfig struct {
	MinSectionLines     int
	SectionLinesDivisor int
	LookbackLines       int
	ForwardSearchLines  int
	FallbackRatio       float64
	LenientUnits        bool
	TableCrossCheck     bool
	ProductNames        []string
}

// ExportConfig holds output-related configuration
type ExportConfig struct {
	Dir   string
	Stats bool
	JSON  bool
}

// WatchConfig holds watch-folder configuration for the daemon
type WatchConfig struct {
	Dir      string
	Debounce time.Duration
	Workers  int
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	GRPCAddr string
}

// DefaultConfig returns a configuration with the tuned defaults
func DefaultConfig() *Config {
	return &Config{
		Database: DatabaseConfig{
			Driver:       constants.DriverSQLite,
			MaxOpenConns: 4,
			DialTimeout:  3 * time.Second,
		},
		PDF: PDFConfig{
			Decoder:     constants.DecoderLedongthuc,
			Pdftotext:   "pdftotext",
			MaxFileSize: 100 * 1024 * 1024,
		},
		Extract: ExtractConfig{
			MinSectionLines:     30,
			SectionLinesDivisor: 20,
			LookbackLines:       10,
			ForwardSearchLines:  200,
			FallbackRatio:       0.8,
			LenientUnits:        true,
			TableCrossCheck:     true,
			ProductNames:        []string{"TIRZEPATIDE", "SEMAGLUTIDA", "SEMAGLUTIDE", "CANETA"},
		},
		Export: ExportConfig{
			Dir:   ".",
			Stats: true,
		},
		Watch: WatchConfig{
			Debounce: 2 * time.Second,
			Workers:  2,
		},
		Server: ServerConfig{
			GRPCAddr: ":8080",
		},
		LogLevel: "info",
	}
}

// BindFlags registers the configuration flags on fs.
func BindFlags(fs *pflag.FlagSet) {
	d := DefaultConfig()
	fs.String("db.driver", d.Database.Driver, "database driver: sqlite | pgx")
	fs.String("db.dsn", d.Database.DSN, "database DSN (empty disables persistence)")
	fs.String("pdf.decoder", d.PDF.Decoder, "PDF decoder: ledongthuc | pdftotext")
	fs.String("pdf.pdftotext", d.PDF.Pdftotext, "pdftotext binary")
	fs.Int("extract.min_section_lines", d.Extract.MinSectionLines, "minimum expected product section length")
	fs.Int("extract.lookback_lines", d.Extract.LookbackLines, "description lookback window")
	fs.Bool("extract.lenient_units", d.Extract.LenientUnits, "accept suspicious unit codes near regulatory codes")
	fs.Bool("extract.table_crosscheck", d.Extract.TableCrossCheck, "cross-validate products against page tables")
	fs.String("export.dir", d.Export.Dir, "output directory")
	fs.Bool("export.stats", d.Export.Stats, "include the seller statistics sheet")
	fs.Bool("export.json", d.Export.JSON, "also write a JSON file")
	fs.String("log.level", d.LogLevel, "log level (debug, info, warn, error)")
}

// LoadConfig loads configuration from defaults, environment variables and the given flags.
// fs may be nil.
func LoadConfig(fs *pflag.FlagSet) (*Config, error) {
	d := DefaultConfig()
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("db.driver", d.Database.Driver)
	v.SetDefault("db.dsn", d.Database.DSN)
	v.SetDefault("db.max_open_conns", d.Database.MaxOpenConns)
	v.SetDefault("db.dial_timeout", d.Database.DialTimeout)
	v.SetDefault("pdf.decoder", d.PDF.Decoder)
	v.SetDefault("pdf.pdftotext", d.PDF.Pdftotext)
	v.SetDefault("pdf.max_file_size", d.PDF.MaxFileSize)
	v.SetDefault("extract.min_section_lines", d.Extract.MinSectionLines)
	v.SetDefault("extract.section_lines_divisor", d.Extract.SectionLinesDivisor)
	v.SetDefault("extract.lookback_lines", d.Extract.LookbackLines)
	v.SetDefault("extract.forward_search_lines", d.Extract.ForwardSearchLines)
	v.SetDefault("extract.fallback_ratio", d.Extract.FallbackRatio)
	v.SetDefault("extract.lenient_units", d.Extract.LenientUnits)
	v.SetDefault("extract.table_crosscheck", d.Extract.TableCrossCheck)
	v.SetDefault("extract.product_names", d.Extract.ProductNames)
	v.SetDefault("export.dir", d.Export.Dir)
	v.SetDefault("export.stats", d.Export.Stats)
	v.SetDefault("export.json", d.Export.JSON)
	v.SetDefault("watch.dir", d.Watch.Dir)
	v.SetDefault("watch.debounce", d.Watch.Debounce)
	v.SetDefault("watch.workers", d.Watch.Workers)
	v.SetDefault("grpc.addr", d.Server.GRPCAddr)
	v.SetDefault("log.level", d.LogLevel)

	if fs != nil {
		if err := v.BindPFlags(fs); err != nil {
			return nil, NewAppError(CodeConfig, "bind flags", err)
		}
	}

	cfg := &Config{
		Database: DatabaseConfig{
			Driver:       v.GetString("db.driver"),
			DSN:          v.GetString("db.dsn"),
			MaxOpenConns: v.GetInt("db.max_open_conns"),
			DialTimeout:  v.GetDuration("db.dial_timeout"),
		},
		PDF: PDFConfig{
			Decoder:     v.GetString("pdf.decoder"),
			Pdftotext:   v.GetString("pdf.pdftotext"),
			MaxFileSize: v.GetInt64("pdf.max_file_size"),
		},
		Extract: ExtractConfig{
			MinSectionLines:     v.GetInt("extract.min_section_lines"),
			SectionLinesDivisor: v.GetInt("extract.section_lines_divisor"),
			LookbackLines:       v.GetInt("extract.lookback_lines"),
			ForwardSearchLines:  v.GetInt("extract.forward_search_lines"),
			FallbackRatio:       v.GetFloat64("extract.fallback_ratio"),
			LenientUnits:        v.GetBool("extract.lenient_units"),
			TableCrossCheck:     v.GetBool("extract.table_crosscheck"),
			ProductNames:        v.GetStringSlice("extract.product_names"),
		},
		Export: ExportConfig{
			Dir:   v.GetString("export.dir"),
			Stats: v.GetBool("export.stats"),
			JSON:  v.GetBool("export.json"),
		},
		Watch: WatchConfig{
			Dir:      v.GetString("watch.dir"),
			Debounce: v.GetDuration("watch.debounce"),
			Workers:  v.GetInt("watch.workers"),
		},
		Server: ServerConfig{
			GRPCAddr: v.GetString("grpc.addr"),
		},
		LogLevel: strings.ToLower(v.GetString("log.level")),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate validates the loaded configuration
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case constants.DriverSQLite, constants.DriverPgx:
	default:
		return NewAppError(CodeConfig, fmt.Sprintf("unknown db.driver %q", c.Database.Driver), ErrInvalidInput)
	}
	switch c.PDF.Decoder {
	case constants.DecoderLedongthuc, constants.DecoderPdftotext:
	default:
		return NewAppError(CodeConfig, fmt.Sprintf("unknown pdf.decoder %q", c.PDF.Decoder), ErrInvalidInput)
	}
	if c.Extract.MinSectionLines <= 0 || c.Extract.SectionLinesDivisor <= 0 ||
		c.Extract.LookbackLines <= 0 || c.Extract.ForwardSearchLines <= 0 {
		return NewAppError(CodeConfig, "extract thresholds must be positive", ErrInvalidInput)
	}
	if c.Extract.FallbackRatio <= 0 || c.Extract.FallbackRatio > 1 {
		return NewAppError(CodeConfig, "extract.fallback_ratio must be in (0, 1]", ErrInvalidInput)
	}
	if c.PDF.MaxFileSize <= 0 {
		return NewAppError(CodeConfig, "pdf.max_file_size must be positive", ErrInvalidInput)
	}
	if _, err := c.SlogLevel(); err != nil {
		return err
	}
	return nil
}

// SlogLevel maps LogLevel onto a slog.Level.
func (c *Config) SlogLevel() (slog.Level, error) {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return slog.LevelInfo, NewAppError(CodeConfig,
		fmt.Sprintf("invalid log level: %s (must be one of: debug, info, warn, error)", c.LogLevel), ErrInvalidInput)
}

// PersistenceEnabled reports whether a database DSN was configured.
func (c *Config) PersistenceEnabled() bool {
	return strings.TrimSpace(c.Database.DSN) != ""
}
