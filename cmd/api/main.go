package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"inventory-catalog-api/internal/cache"
	"inventory-catalog-api/internal/config"
	"inventory-catalog-api/internal/handler"
	"inventory-catalog-api/internal/logger"
	"inventory-catalog-api/internal/middleware"
	"inventory-catalog-api/internal/repository"
	"inventory-catalog-api/internal/router"
	"inventory-catalog-api/internal/service"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

func main() {
	cfg := config.MustLoad()

	log, err := logger.NewLogger(cfg.Log.Level, cfg.Log.Format, cfg.App.Name)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to build logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	log.Info("starting inventory catalog API",
		zap.String("environment", cfg.App.Environment), zap.String("version", cfg.App.Version))

	// numbers in JSON responses stay numbers
	decimal.MarshalJSONWithoutQuotes = true

	inventoryRepo, err := openRepository(cfg, log)
	if err != nil {
		log.Fatal("failed to initialize inventory repository", zap.Error(err), zap.String("backend", cfg.InventoryDB.Type))
	}
	defer inventoryRepo.Close()

	checks := map[string]handler.Pinger{"database": inventoryRepo}

	var tokenCache cache.Cache
	switch strings.ToLower(cfg.Cache.Type) {
	case "redis":
		redisCache, err := cache.NewRedisCache(cache.RedisConfig{
			Addr:     cfg.Cache.RedisAddress(),
			Password: cfg.Cache.RedisPassword,
			DB:       cfg.Cache.RedisDB,
		}, log)
		if err != nil {
			log.Warn("Redis unavailable, falling back to in-memory token cache", zap.Error(err))
			tokenCache = cache.NewMemoryCache(time.Minute)
			break
		}
		tokenCache = redisCache
		checks["cache"] = redisCache
	default:
		tokenCache = cache.NewMemoryCache(time.Minute)
	}
	defer tokenCache.Close()

	// Services
	inventoryService := service.NewInventoryService(inventoryRepo, log)
	fieldService := service.NewCustomFieldService(inventoryRepo, log)
	generator := service.NewCustomIDGenerator(nil, log)
	customIDService := service.NewCustomIDService(inventoryRepo, generator, cfg.CustomID.MaxAttempts, log)
	itemService := service.NewItemService(inventoryRepo, customIDService, log)
	aggregationService := service.NewAggregationService(inventoryRepo, service.NewAggregator(cfg.Aggregation.TopN, log), log)
	tokenService := service.NewTokenService(inventoryRepo, tokenCache, cfg.Cache.TTL, log)

	// Handlers
	validator := handler.NewValidator()
	r := router.New(router.Config{
		Handler:          handler.New(cfg.App.Name, cfg.App.Version, checks),
		AdminHandler:     handler.NewAdminHandler(inventoryService, tokenCache, cfg.Cache.Type, log),
		InventoryHandler: handler.NewInventoryHandler(inventoryService, validator, log),
		FieldHandler:     handler.NewFieldHandler(fieldService, inventoryService, validator, log),
		CustomIDHandler:  handler.NewCustomIDHandler(customIDService, inventoryService, validator, log),
		ItemHandler:      handler.NewItemHandler(itemService, validator, log),
		TokenHandler:     handler.NewTokenHandler(tokenService, log),
		APIHandler:       handler.NewAPIHandler(inventoryService, fieldService, aggregationService, itemService, log),
		AdminAuth:        middleware.NewAdminKeyMiddleware(cfg.App.LoginKey),
		APIAuth:          middleware.NewAPITokenMiddleware(tokenService, log),
		Logger:           log,
	})
	if cfg.App.LoginKey == "" {
		log.Warn("LOGIN_KEY is not set, management API is disabled")
	}

	srv := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		log.Info("server listening", zap.String("addr", cfg.Server.Address()))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server error", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error("server shutdown error", zap.Error(err))
	}

	log.Info("server stopped")
}

// openRepository picks the storage backend named by INVENTORY_DB_TYPE.
func openRepository(cfg *config.Config, log *zap.Logger) (repository.InventoryRepository, error) {
	db := cfg.InventoryDB
	switch strings.ToLower(db.Type) {
	case config.BackendMongoDB:
		return repository.NewMongoDBInventoryRepository(db.MongoURI, db.MongoDatabase, log)
	case config.BackendPostgres:
		return repository.NewPostgresInventoryRepository(db.PostgresDSN(), log)
	case config.BackendMySQL:
		return repository.NewMySQLInventoryRepository(db.MySQLDSN(), log)
	default:
		return repository.NewSQLiteInventoryRepository(db.Path, log)
	}
}
