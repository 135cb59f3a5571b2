// File: cmd/app/main.go
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"event-ingestion/internal/config"
	"event-ingestion/internal/domain/ports/repository"
	pg "event-ingestion/internal/infra/db/postgres"
	"event-ingestion/internal/infra/logging"
	"event-ingestion/internal/infra/metrics"
	red "event-ingestion/internal/infra/redis"
	"event-ingestion/internal/infra/sched"
	"event-ingestion/internal/infra/web"
	"event-ingestion/internal/infra/worker"
	"event-ingestion/internal/usecase"
)

var (
	version = "dev"
	commit  = "none"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ---- CLI flags ----
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	devMode := flag.Bool("dev", false, "enable developer mode (console logs)")
	flag.Parse()

	cfg, err := config.LoadConfig(*cfgPath, *devMode)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	// ---- Logging ----
	logger := logging.New(cfg.Log, cfg.Runtime.Dev)
	diag, diagCloser, err := logging.NewDiagnostic(cfg.Log.MalformedPath)
	if err != nil {
		logger.Fatal().Err(err).Msg("diagnostic log")
	}
	defer diagCloser.Close()

	metrics.MustRegister()
	metrics.SetBuildInfo(version, commit)

	// ---- Postgres ----
	pool, err := pg.NewPgxPool(ctx, cfg.Database.URL, cfg.Database.MaxConns)
	if err != nil {
		logger.Fatal().Err(err).Msg("postgres")
	}
	defer pool.Close()
	if cfg.Database.Migrate {
		if err := pg.Migrate(ctx, pool); err != nil {
			logger.Fatal().Err(err).Msg("migrate")
		}
		logger.Info().Msg("schema up to date")
	}
	go metrics.SamplePool(ctx, pool, 15*time.Second)

	// ---- Redis (optional) ----
	var reportCache repository.ReportCache
	if cfg.Redis.URL != "" {
		redisClient, err := red.NewClient(ctx, &cfg.Redis)
		if err != nil {
			logger.Fatal().Err(err).Msg("redis")
		}
		defer redisClient.Close()
		reportCache = red.NewReportCache(redisClient, cfg.Redis.TTL, logger)
	} else {
		logger.Info().Msg("redis.url not set; report cache disabled")
	}

	// ---- Repositories ----
	eventRepo := pg.NewEventRepo(pool)
	jobRepo := pg.NewJobRepo(pool)
	progressRepo := pg.NewProgressRepo(pool)
	tm := pg.NewTxManager(pool)

	// ---- Ingest worker ----
	queue := worker.NewQueue()
	ingestWorker := worker.NewIngestWorker(queue, eventRepo, jobRepo, progressRepo, tm, logger, diag)
	if err := ingestWorker.Start(ctx); err != nil {
		logger.Fatal().Err(err).Msg("ingest worker")
	}

	// ---- Use cases ----
	ingestUC := usecase.NewIngestionUseCase(jobRepo, progressRepo, queue, reportCache, cfg.Ingest.StaleAfter, logger)
	eventsUC := usecase.NewEventQueryUseCase(eventRepo, logger)

	if cfg.Ingest.StaleCheck > 0 {
		monitor := sched.NewStaleMonitor(cfg.Ingest.StaleCheck, ingestUC, logger)
		go func() { _ = monitor.Run(ctx) }()
	}

	// ---- HTTP server ----
	srv := web.NewServer(ingestUC, eventsUC, cfg.Ingest.MaxUploadBytes, logger)
	go func() {
		if err := srv.Start(cfg.Server.Port, cfg.Server.ReadTimeout); err != nil {
			logger.Error().Err(err).Msg("http server error")
			cancel()
		}
	}()

	// ---- Graceful shutdown ----
	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-sigc:
	case <-ctx.Done():
	}
	logger.Info().Msg("shutdown requested")

	shutdownCtx, stop := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer stop()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("http shutdown")
	}
	queue.Close()
	if err := ingestWorker.Stop(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("ingest worker shutdown")
	}
	if n := queue.Len(); n > 0 {
		// Their jobs stay Processing and show up in the stale-jobs query.
		logger.Warn().Int("queued_files", n).Msg("queued files dropped at shutdown")
	}
	cancel()
}
