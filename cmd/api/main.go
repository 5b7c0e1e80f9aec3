package main

import (
	"context"
	"io/fs"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/goccy/go-json"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/ticket-report/internal/api/http"
	"github.com/spec-kit/ticket-report/internal/api/http/handlers"
	"github.com/spec-kit/ticket-report/internal/auth"
	"github.com/spec-kit/ticket-report/internal/chart"
	"github.com/spec-kit/ticket-report/internal/config"
	"github.com/spec-kit/ticket-report/internal/events"
	"github.com/spec-kit/ticket-report/internal/observability"
	"github.com/spec-kit/ticket-report/internal/persistence"
	"github.com/spec-kit/ticket-report/internal/report"
	"github.com/spec-kit/ticket-report/internal/repository"
	"github.com/spec-kit/ticket-report/internal/service"
	"github.com/spec-kit/ticket-report/internal/snapshot"
	"github.com/spec-kit/ticket-report/internal/stats"
	"github.com/spec-kit/ticket-report/internal/worker"
	"github.com/spec-kit/ticket-report/migrations"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if cfg.Postgres.RunMigrations && pg.Enabled() {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), migrationFiles(cfg.Postgres.MigrationsDir), logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	var runs repository.ReportRunRepository
	if pg.Enabled() {
		runs = repository.NewReportRunRepository(pg.PoolHandle())
	}
	var cache repository.ReportCache
	if redis.Enabled() {
		cache = repository.NewReportCache(redis.Client, cfg.Report.CacheTTL())
	}

	metrics := observability.NewMetrics("ticket_report")
	dispatcher := events.NewInMemoryDispatcher()
	worker.StartNotificationWorker(service.NewNotificationService(dispatcher, logger, cfg.Notification))

	renderer, err := report.NewRenderer(report.RendererConfig{TemplatePath: cfg.Report.TemplatePath, Logger: logger})
	if err != nil {
		logger.Fatal("failed to load report template", zap.Error(err))
	}

	store := snapshot.NewStore(cfg.Report.RawDataDir, cfg.Report.SnapshotPattern, logger)
	logger.Info("snapshot store ready", zap.String("dir", store.Dir()))

	reportService := service.NewReportService(service.ReportDependencies{
		Snapshots: store,
		Aggregator: stats.NewAggregator(stats.AggregatorConfig{
			SLA:    cfg.SLA.Table(),
			Charts: chart.NewEncoder(cfg.Report.Chart()),
			Logger: logger,
		}),
		Renderer:   renderer,
		Runs:       runs,
		Cache:      cache,
		Dispatcher: dispatcher,
		Shares:     auth.NewShareTokenManager(cfg.Auth.ShareSecret, cfg.Auth.ShareTTL(), cfg.Auth.ShareIssuer),
		Metrics:    metrics,
		Logger:     logger,
	})

	scheduler := worker.NewReportScheduler(reportService, cfg.Report.ScheduleInterval, cfg.Report.ScheduleClients, logger)
	go scheduler.Run(ctx)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		BodyLimit:    cfg.App.BodyLimitBytes,
		JSONEncoder:  json.Marshal,
		JSONDecoder:  json.Unmarshal,
		ErrorHandler: httptransport.ErrorHandler(logger, metrics),
	})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:  handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis),
		Reports: handlers.NewReportsHandler(reportService, cfg.Report.RunsDefaultLimit, httptransport.SharedReportsPath),
		APIKey:  auth.NewAPIKeyMiddleware(cfg.Auth.APIKeyHash),
		Metrics: metrics,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	cancel()
	_ = app.Shutdown()
}

// migrationFiles prefers an on-disk migrations directory and falls back
// to the embedded copy.
func migrationFiles(dir string) fs.FS {
	if dir != "" {
		if info, err := os.Stat(dir); err == nil && info.IsDir() {
			return os.DirFS(dir)
		}
	}
	return migrations.FS
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
