package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/pflag"

	"github.com/joseph-ayodele/recibos-extractor/internal/common"
	"github.com/joseph-ayodele/recibos-extractor/internal/ingest"
	"github.com/joseph-ayodele/recibos-extractor/internal/pipeline"
	repo "github.com/joseph-ayodele/recibos-extractor/internal/repository"
)

// printError prints an error message to stderr, falling back to stdout if stderr fails
func printError(format string, args ...interface{}) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		fmt.Printf(format, args...)
	}
}

func main() {
	fs := pflag.NewFlagSet("recibos", pflag.ContinueOnError)
	common.BindFlags(fs)
	out := fs.StringP("out", "o", "", "workbook file name (default: recibos_<source>.xlsx, or recibos_extraidos_<timestamp>.xlsx for a directory)")
	quiet := fs.BoolP("quiet", "q", false, "do not print progress")
	fs.Usage = func() {
		printError("Usage: recibos [flags] <file.pdf|file.txt|directory>\n\n%s", fs.FlagUsages())
	}
	if err := fs.Parse(os.Args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			os.Exit(0)
		}
		os.Exit(2)
	}
	if fs.NArg() != 1 {
		fs.Usage()
		os.Exit(2)
	}
	source := fs.Arg(0)

	cfg, err := common.LoadConfig(fs)
	if err != nil {
		printError("Error: %v\n", err)
		os.Exit(2)
	}
	level, _ := cfg.SlogLevel()
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var db *repo.DB
	if cfg.PersistenceEnabled() {
		db, err = repo.Open(ctx, repo.ConfigFrom(cfg.Database), logger)
		if err != nil {
			logger.Error("failed to open database", "error", err)
			os.Exit(1)
		}
		defer repo.Close(db, logger)
	}

	processor := pipeline.New(cfg, db, logger)
	processor.Output.Name = *out

	progress := func(current, total int, message string) {
		if *quiet || message == "" {
			return
		}
		if total > 0 {
			printError("[%d/%d] %s\n", current, total, message)
			return
		}
		printError("%s\n", message)
	}

	info, err := os.Stat(source)
	if err != nil {
		printError("Error: %v\n", common.NotFound(source, err))
		os.Exit(1)
	}

	var outcome pipeline.Outcome
	if info.IsDir() {
		paths, _, derr := ingest.Discover(source, nil, true, logger)
		if derr != nil {
			printError("Error: %v\n", derr)
			os.Exit(1)
		}
		if len(paths) == 0 {
			printError("Error: no PDF or TXT files in %s\n", source)
			os.Exit(1)
		}
		outcome, err = processor.ProcessBatch(ctx, paths, progress)
	} else {
		outcome, err = processor.ProcessFile(ctx, source, progress)
	}

	for _, p := range outcome.Export.Report.Problems {
		printError("Aviso: %s\n", p)
	}
	if outcome.Export.Workbook != "" {
		abs, _ := filepath.Abs(outcome.Export.Workbook)
		fmt.Printf("%d recibo(s), %d linha(s) -> %s\n", len(outcome.Records()), outcome.Export.Rows, abs)
	}
	if outcome.Export.JSON != "" {
		fmt.Printf("JSON -> %s\n", outcome.Export.JSON)
	}
	if err != nil {
		printError("Error: %v\n", err)
		os.Exit(1)
	}
}
