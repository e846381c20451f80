package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/triage-service/internal/api/http"
	"github.com/spec-kit/triage-service/internal/api/http/handlers"
	"github.com/spec-kit/triage-service/internal/config"
	"github.com/spec-kit/triage-service/internal/events"
	"github.com/spec-kit/triage-service/internal/observability"
	"github.com/spec-kit/triage-service/internal/persistence"
	"github.com/spec-kit/triage-service/internal/repository"
	"github.com/spec-kit/triage-service/internal/service"
	"github.com/spec-kit/triage-service/internal/triage"
	"github.com/spec-kit/triage-service/internal/worker"
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

	triageCfg, err := triage.LoadConfig(cfg.Triage.ConfigPath)
	if err != nil {
		logger.Fatal("failed to load triage config", zap.Error(err))
	}
	if err := triageCfg.Validate(); err != nil {
		logger.Fatal("invalid triage config", zap.Error(err))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	store := triage.NewTicketStore()
	customers := triage.NewCustomerRegistry()
	agents := triage.NewAgentRegistry()
	patterns, err := triage.NewPatternTable(triageCfg)
	if err != nil {
		logger.Fatal("failed to seed pattern table", zap.Error(err))
	}
	extractor := triage.NewSignalExtractor(triageCfg)
	classifier := triage.NewPriorityClassifier(triageCfg)
	engine := triage.NewRoutingEngine(agents, classifier, triageCfg)
	tracker := triage.NewEscalationTracker(store)

	dispatcher := events.NewInMemoryDispatcher()
	metrics := observability.NewMetrics()

	var archive repository.TicketArchiveRepository
	var recArchive repository.RecommendationRepository
	if pool := pg.PoolHandle(); pool != nil {
		archive = repository.NewTicketArchiveRepository(pool)
		recArchive = repository.NewRecommendationRepository(pool)
	}

	triageService := service.NewTriageService(service.TriageDependencies{
		Store:      store,
		Customers:  customers,
		Agents:     agents,
		Patterns:   patterns,
		Extractor:  extractor,
		Classifier: classifier,
		Engine:     engine,
		Tracker:    tracker,
		Dispatcher: dispatcher,
		Archive:    archive,
		RecArchive: recArchive,
		Cache:      persistence.NewRecommendationCache(redis, cfg.Redis.CacheTTL),
		Metrics:    metrics,
		Logger:     logger,
	})

	var sink service.EventSink
	if cfg.Kafka.Enabled {
		producer := events.NewKafkaProducer(cfg.Kafka.Brokers, cfg.Kafka.EventsTopic)
		defer producer.Close() //nolint:errcheck
		sink = producer
	}
	worker.StartSyncWorker(service.NewSyncService(dispatcher, sink, logger))

	app := fiber.New()
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:    handlers.NewHealthHandler(),
		Tickets:   handlers.NewTicketsHandler(triageService),
		Registry:  handlers.NewRegistryHandler(triageService),
		Dashboard: handlers.NewDashboardHandler(triageService),
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	_ = app.Shutdown()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
