package main

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/pflag"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	"github.com/joseph-ayodele/recibos-extractor/internal/async"
	"github.com/joseph-ayodele/recibos-extractor/internal/common"
	"github.com/joseph-ayodele/recibos-extractor/internal/ingest"
	"github.com/joseph-ayodele/recibos-extractor/internal/pipeline"
	repo "github.com/joseph-ayodele/recibos-extractor/internal/repository"
)

// serviceName is the health-check name of the extraction worker.
const serviceName = "recibos.Extractor"

func main() {
	fs := pflag.NewFlagSet("recibosd", pflag.ExitOnError)
	common.BindFlags(fs)
	d := common.DefaultConfig()
	fs.String("watch.dir", d.Watch.Dir, "folder to watch for incoming PDFs (required)")
	fs.Duration("watch.debounce", d.Watch.Debounce, "quiet period before a new file is processed")
	fs.Int("watch.workers", d.Watch.Workers, "concurrent extractions")
	fs.String("grpc.addr", d.Server.GRPCAddr, "gRPC health endpoint address")
	_ = fs.Parse(os.Args[1:])

	cfg, err := common.LoadConfig(fs)
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(2)
	}
	level, _ := cfg.SlogLevel()
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	if cfg.Watch.Dir == "" {
		logger.Error("missing watch.dir (flag --watch.dir or RECIBOS_WATCH_DIR)")
		os.Exit(2)
	}

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
		if err := repo.HealthCheck(ctx, db, 5*time.Second, logger); err != nil {
			logger.Error("failed to ping database", "error", err)
			os.Exit(1)
		}
	}

	processor := pipeline.New(cfg, db, logger)
	seen := ingest.NewSeen()
	queue := async.NewWorkerPool(func(ctx context.Context, job async.Job) error {
		if !job.Force {
			fresh, err := seen.Mark(job.Path)
			if err != nil {
				return err
			}
			if !fresh {
				common.LoggerFromContext(ctx, logger).Debug("watch.skip.unchanged", "path", job.Path)
				return nil
			}
		}
		if _, err := processor.ProcessFile(ctx, job.Path, nil); err != nil {
			seen.Forget(job.Path)
			return err
		}
		return nil
	}, logger, async.WithWorkers(cfg.Watch.Workers), async.WithQueueSize(64))
	// jobs outlive the signal; Shutdown bounds how long they may run
	queue.Start(context.WithoutCancel(ctx))

	events, watchErrs, err := ingest.StartWatcher(ctx, ingest.WatchConfig{
		Roots:       []string{cfg.Watch.Dir},
		InitialScan: true,
		Debounce:    cfg.Watch.Debounce,
	}, logger)
	if err != nil {
		logger.Error("failed to start watcher", "dir", cfg.Watch.Dir, "error", err)
		os.Exit(1)
	}

	lis, err := net.Listen("tcp", cfg.Server.GRPCAddr)
	if err != nil {
		logger.Error("failed to listen on address", "addr", cfg.Server.GRPCAddr, "error", err)
		os.Exit(1)
	}
	grpcServer := grpc.NewServer()
	healthServer := health.NewServer()
	grpc_health_v1.RegisterHealthServer(grpcServer, healthServer)
	healthServer.SetServingStatus("", grpc_health_v1.HealthCheckResponse_SERVING)
	healthServer.SetServingStatus(serviceName, grpc_health_v1.HealthCheckResponse_SERVING)
	reflection.Register(grpcServer)

	go func() {
		logger.Info("recibosd listening", "addr", cfg.Server.GRPCAddr, "watch", cfg.Watch.Dir)
		if err := grpcServer.Serve(lis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
			logger.Error("grpc serve failed", "error", err)
			stop()
		}
	}()

	go func() {
		for err := range watchErrs {
			logger.Warn("watch.error", "error", err)
		}
	}()

	for path := range events {
		if err := queue.Enqueue(ctx, async.Job{Path: path}); err != nil {
			logger.Warn("watch.enqueue.failed", "path", path, "error", err)
		}
	}

	logger.Info("shutting down")
	healthServer.Shutdown()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	queue.Shutdown(shutdownCtx)
	grpcServer.GracefulStop()
	st := queue.Stats()
	logger.Info("recibosd stopped", "processed", st.Processed, "failed", st.Failed)
}
