package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/product-service/internal/api/http"
	"github.com/spec-kit/product-service/internal/api/http/handlers"
	"github.com/spec-kit/product-service/internal/auth"
	"github.com/spec-kit/product-service/internal/cache"
	"github.com/spec-kit/product-service/internal/config"
	"github.com/spec-kit/product-service/internal/events"
	"github.com/spec-kit/product-service/internal/observability"
	"github.com/spec-kit/product-service/internal/persistence"
	"github.com/spec-kit/product-service/internal/repository"
	"github.com/spec-kit/product-service/internal/service"
	"github.com/spec-kit/product-service/internal/validation"
	"github.com/spec-kit/product-service/internal/worker"
)

const shutdownTimeout = 10 * time.Second

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

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.Pool(), logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	var (
		store        repository.Store
		storeBackend string
	)
	if pool := pg.Pool(); pool != nil {
		store, storeBackend = repository.NewPostgresStore(pool), "postgres"
	} else {
		logger.Warn("using in-memory store; data is lost on restart")
		store, storeBackend = repository.NewMemoryStore(), "memory"
	}

	dispatcher := events.NewInMemoryDispatcher(logger)
	worker.StartAuditWorker(service.NewAuditService(dispatcher, logger))

	var (
		productCache service.ProductCache
		cachePinger  handlers.Pinger
	)
	rdb := persistence.NewRedis(ctx, cfg.Redis, logger)
	if rdb != nil {
		defer rdb.Close()
		pc := cache.NewProductCache(rdb.Client, cfg.Redis.ProductCacheTTL())
		productCache, cachePinger = pc, rdb
		worker.StartCacheInvalidationWorker(dispatcher, pc)
	}

	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTLMinutes)
	accountService := service.NewAccountService(service.AccountDependencies{
		Store:      store,
		Hasher:     auth.NewBcryptHasher(),
		Tokens:     tokens,
		Dispatcher: dispatcher,
		Logger:     logger,
	})
	productService := service.NewProductService(service.ProductDependencies{
		Store:      store,
		Cache:      productCache,
		Dispatcher: dispatcher,
		Logger:     logger,
	})
	authMiddleware := auth.NewAuthMiddleware(auth.NewIdentityResolver(tokens, accountService))

	metrics := observability.NewMetrics()
	validator := validation.New()

	app := fiber.New(fiber.Config{
		AppName:               cfg.App.Name,
		DisableStartupMessage: true,
	})
	httptransport.RegisterMiddlewares(app, logger, metrics, httptransport.MiddlewareConfig{
		Timeout:      cfg.App.RequestTimeout(),
		AllowOrigins: cfg.App.CORSAllowOrigins,
	})

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health: handlers.NewHealthHandler(handlers.HealthDependencies{
			App:          cfg.App,
			Store:        store,
			StoreBackend: storeBackend,
			Cache:        cachePinger,
			Metrics:      metrics,
		}),
		Auth:           handlers.NewAuthHandler(accountService, validator),
		Users:          handlers.NewUsersHandler(accountService, validator),
		Products:       handlers.NewProductsHandler(productService, validator),
		AuthMiddleware: authMiddleware,
	})

	go func() {
		logger.Info("listening", zap.String("addr", cfg.App.Addr()), zap.String("store", storeBackend))
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	if err := app.ShutdownWithTimeout(shutdownTimeout); err != nil {
		logger.Warn("shutdown incomplete", zap.Error(err))
	}
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
