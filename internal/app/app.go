package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/GeekyBear/inventory-api/internal/config"
	"github.com/GeekyBear/inventory-api/internal/event"
	handler "github.com/GeekyBear/inventory-api/internal/handler/http"
	mongorepo "github.com/GeekyBear/inventory-api/internal/repository/mongo"
	"github.com/GeekyBear/inventory-api/internal/repository/rediscache"
	"github.com/GeekyBear/inventory-api/internal/service"
	"github.com/GeekyBear/inventory-api/pkg/database"
	"github.com/GeekyBear/inventory-api/pkg/health"
	pkgkafka "github.com/GeekyBear/inventory-api/pkg/kafka"
)

// App wires together all dependencies and runs the inventory service.
type App struct {
	cfg         *config.Config
	logger      *slog.Logger
	mongoClient *mongo.Client
	producer    *pkgkafka.Producer
	httpServer  *http.Server
}

// NewApp creates a new application instance, initializing all dependencies.
func NewApp(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	mongoClient, db, err := mongorepo.Connect(ctx, cfg.MongoURI, cfg.MongoDatabase)
	if err != nil {
		return nil, fmt.Errorf("init mongodb: %w", err)
	}
	if err := mongorepo.EnsureIndexes(ctx, db); err != nil {
		return nil, fmt.Errorf("ensure indexes: %w", err)
	}
	logger.Info("mongodb initialized",
		slog.String("database", cfg.MongoDatabase),
	)

	redisClient, err := database.NewRedisClient(ctx, database.RedisConfig{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	if err != nil {
		return nil, fmt.Errorf("init redis: %w", err)
	}
	logger.Info("redis initialized", slog.String("addr", cfg.RedisAddr))

	kafkaProducer := pkgkafka.NewProducer(pkgkafka.DefaultProducerConfig(cfg.KafkaBrokers), logger)
	producer := event.NewProducer(kafkaProducer, logger)
	logger.Info("kafka producer initialized", slog.Any("brokers", cfg.KafkaBrokers))

	productRepo := mongorepo.NewProductRepository(db)
	categoryRepo := mongorepo.NewCategoryRepository(db)
	facets := rediscache.NewFacetsCache(productRepo, redisClient, cfg.FacetsTTL, logger)

	productService := service.NewProductService(productRepo, categoryRepo, facets, producer, logger, cfg.MaxPageSize)
	categoryService := service.NewCategoryService(categoryRepo, productRepo, producer, logger, cfg.MaxPageSize)

	healthHandler := health.NewHandler()
	healthHandler.Register("mongodb", func(ctx context.Context) error {
		return mongoClient.Ping(ctx, readpref.Primary())
	})
	healthHandler.Register("redis", func(ctx context.Context) error {
		return redisClient.Ping(ctx).Err()
	})
	healthHandler.Register("kafka", func(ctx context.Context) error {
		return pkgkafka.PingBrokers(ctx, cfg.KafkaBrokers)
	})

	router := handler.NewRouter(productService, categoryService, healthHandler, logger)

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return &App{
		cfg:         cfg,
		logger:      logger,
		mongoClient: mongoClient,
		producer:    kafkaProducer,
		httpServer:  httpServer,
	}, nil
}

// Run starts the HTTP server, blocking until the context is canceled or the
// server fails.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		a.logger.Info("starting HTTP server",
			slog.String("addr", a.httpServer.Addr),
		)
		if err := a.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		a.logger.Info("shutdown signal received")
	case err := <-errCh:
		return err
	}

	return a.Shutdown()
}

// Shutdown gracefully stops all components.
func (a *App) Shutdown() error {
	a.logger.Info("shutting down application...")

	var errs []error

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := a.httpServer.Shutdown(shutdownCtx); err != nil {
		a.logger.Error("http server shutdown error", slog.String("error", err.Error()))
		errs = append(errs, err)
	}

	if err := a.producer.Close(); err != nil {
		a.logger.Error("kafka producer close error", slog.String("error", err.Error()))
		errs = append(errs, err)
	}

	if err := a.mongoClient.Disconnect(shutdownCtx); err != nil {
		a.logger.Error("mongodb disconnect error", slog.String("error", err.Error()))
		errs = append(errs, err)
	}

	a.logger.Info("application shutdown complete")
	return errors.Join(errs...)
}
