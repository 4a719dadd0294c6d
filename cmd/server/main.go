package main

import (
	"context"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	catalogapp "github.com/channelbridge/backend/internal/application/catalog"
	integrationapp "github.com/channelbridge/backend/internal/application/integration"
	syncapp "github.com/channelbridge/backend/internal/application/sync"
	"github.com/channelbridge/backend/internal/domain/shared"
	"github.com/channelbridge/backend/internal/infrastructure/cache"
	"github.com/channelbridge/backend/internal/infrastructure/config"
	"github.com/channelbridge/backend/internal/infrastructure/ecommerce"
	"github.com/channelbridge/backend/internal/infrastructure/event"
	"github.com/channelbridge/backend/internal/infrastructure/logger"
	"github.com/channelbridge/backend/internal/infrastructure/persistence"
	"github.com/channelbridge/backend/internal/infrastructure/queue"
	"github.com/channelbridge/backend/internal/interfaces/http/handler"
	"github.com/channelbridge/backend/internal/interfaces/http/router"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	log.Info("Starting ChannelBridge Backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	// Database connection with zap-backed GORM logger
	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level))
	db, err := persistence.NewDatabaseWithCustomLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully")

	// Repositories
	productRepo := persistence.NewGormProductRepository(db.DB)
	channelRepo := persistence.NewGormChannelRepository(db.DB)
	integrationRepo := persistence.NewGormIntegrationRepository(db.DB)
	priceRepo := persistence.NewGormVariantPriceRepository(db.DB)
	mappingRepo := persistence.NewGormProductMappingRepository(db.DB)
	jobRepo := queue.NewGormJobRepository(db.DB)

	// Event bus
	bus := event.NewInMemoryEventBus(log)

	// Idempotency store for event handlers; Redis when reachable, otherwise
	// the in-process fallback
	var idempotencyStore shared.IdempotencyStore
	if cfg.Event.IdempotencyEnabled {
		redisStore, err := cache.NewRedisIdempotencyStore(cache.RedisConfig{
			Host:     cfg.Redis.Host,
			Port:     cfg.Redis.Port,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			log.Warn("Redis unavailable, using in-memory idempotency store", zap.Error(err))
			idempotencyStore = cache.NewInMemoryIdempotencyStore()
		} else {
			idempotencyStore = redisStore
			log.Info("Redis idempotency store connected")
		}
	}

	// Background job dispatcher
	dispatcher := queue.NewDispatcher(jobRepo, queue.DispatcherConfig{
		BatchSize:         cfg.Sync.BatchSize,
		PollInterval:      cfg.Sync.PollInterval,
		DefaultRetries:    3,
		VisibilityTimeout: cfg.Sync.VisibilityTimeout,
		CleanupEnabled:    cfg.Sync.CleanupEnabled,
		CleanupRetention:  cfg.Sync.CleanupRetention,
		CleanupInterval:   cfg.Sync.CleanupInterval,
	}, log)

	// Storefront clients
	clientRegistry := ecommerce.NewRegistry(
		ecommerce.NewWordPressAdapter(cfg.Sync.AdapterTimeout, log),
		ecommerce.NewMarketplaceAdapter(log),
	)

	// Sync pipeline: event handlers enqueue jobs, the dispatcher executes them
	mapper := syncapp.NewMapper(cfg.Catalog.AssetBaseURL, log)
	orchestrator := syncapp.NewOrchestrator(
		productRepo, channelRepo, integrationRepo, mappingRepo,
		clientRegistry, mapper, dispatcher, log,
	)
	repricer := syncapp.NewRepricer(
		productRepo, channelRepo, priceRepo, bus, dispatcher,
		cfg.Sync.RepriceBatchSize, log,
	)

	handlers := []shared.EventHandler{orchestrator, repricer}
	if idempotencyStore != nil {
		handlers = event.WrapHandlersWithIdempotency(handlers, idempotencyStore, log,
			event.WithIdempotencyConfig(shared.IdempotencyConfig{
				TTL:     cfg.Event.IdempotencyTTL,
				Enabled: true,
			}))
	}
	for _, h := range handlers {
		bus.Subscribe(h)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := bus.Start(ctx); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}
	if cfg.Sync.WorkerEnabled {
		if err := dispatcher.Start(ctx); err != nil {
			log.Fatal("Failed to start job dispatcher", zap.Error(err))
		}
	} else {
		log.Info("Job dispatcher disabled, jobs will queue until a worker runs")
	}

	// Application services
	productService := catalogapp.NewProductService(productRepo, channelRepo, bus, log)
	channelService := catalogapp.NewChannelService(channelRepo, integrationRepo, bus, log)
	integrationService := integrationapp.NewIntegrationService(integrationRepo, mappingRepo, clientRegistry, log)

	// HTTP layer
	engine := router.New(cfg, log,
		handler.NewProductHandler(productService),
		handler.NewChannelHandler(channelService),
		handler.NewIntegrationHandler(integrationService),
		handler.NewJobHandler(jobRepo),
	).Setup()

	server := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("HTTP server listening", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("HTTP server error", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server shutdown error", zap.Error(err))
	}
	if cfg.Sync.WorkerEnabled {
		if err := dispatcher.Stop(shutdownCtx); err != nil {
			log.Error("Job dispatcher shutdown error", zap.Error(err))
		}
	}
	if err := bus.Stop(shutdownCtx); err != nil {
		log.Error("Event bus shutdown error", zap.Error(err))
	}

	log.Info("Shutdown complete")
}
