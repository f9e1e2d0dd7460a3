package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"billtrack/internal/api"
	"billtrack/internal/api/handlers"
	"billtrack/internal/objectstore"
	"billtrack/internal/repository"
	"billtrack/internal/repository/migrations"
	"billtrack/internal/service"
	"billtrack/pkg/config"
	"billtrack/pkg/logger"
	"billtrack/pkg/mongodb"
	"billtrack/pkg/postgres"

	"go.uber.org/zap"
)

// @title Billtrack API
// @version 1.0
// @description Upload bill documents through presigned URLs and list stored bills

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8080
// @BasePath /

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(cfg.Logger.Level); err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	appLogger := logger.Get()
	appLogger.Info("Starting billtrack service",
		zap.String("metadata_backend", cfg.Metadata.Backend),
		zap.String("storage_backend", cfg.Storage.Backend),
	)

	ctx := context.Background()

	billRepo, closeRepo, err := openBillRepository(ctx, cfg, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to initialize metadata store", zap.Error(err))
	}
	defer closeRepo()

	store, err := objectstore.New(ctx, &cfg.Storage)
	if err != nil {
		appLogger.Fatal("Failed to initialize object store", zap.Error(err))
	}

	billService := service.NewBillService(billRepo, store, cfg.Server.SignConcurrency, appLogger)
	uploadService := service.NewUploadService(store, appLogger)

	billHandler := handlers.NewBillHandler(billService, appLogger)
	uploadHandler := handlers.NewUploadHandler(uploadService, appLogger)

	app := api.SetupRouter(api.RouterConfig{
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}, billHandler, uploadHandler, appLogger)

	go func() {
		addr := ":" + cfg.Server.Port
		appLogger.Info("Server starting", zap.String("address", addr))
		if err := app.Listen(addr); err != nil {
			appLogger.Fatal("Server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down server")
	if err := app.Shutdown(); err != nil {
		appLogger.Error("Server shutdown error", zap.Error(err))
	}
}

// openBillRepository connects the configured metadata backend and returns a
// repository plus the function releasing its connection.
func openBillRepository(ctx context.Context, cfg *config.Config, appLogger *zap.Logger) (service.BillRepository, func(), error) {
	switch cfg.Metadata.Backend {
	case config.MetadataBackendPostgres:
		pool, err := postgres.NewPool(ctx, &cfg.Database, appLogger)
		if err != nil {
			return nil, nil, err
		}
		if err := postgres.Migrate(ctx, pool, migrations.FS, appLogger); err != nil {
			pool.Close()
			return nil, nil, err
		}
		return repository.NewBillRepository(pool, appLogger), pool.Close, nil

	case config.MetadataBackendMongo:
		client, db, err := mongodb.Connect(ctx, &cfg.Mongo, appLogger)
		if err != nil {
			return nil, nil, err
		}
		closeFn := func() {
			if err := client.Disconnect(context.Background()); err != nil {
				appLogger.Warn("MongoDB disconnect failed", zap.Error(err))
			}
		}
		return repository.NewMongoBillRepository(db, appLogger), closeFn, nil

	default:
		return nil, nil, fmt.Errorf("unknown metadata backend %q", cfg.Metadata.Backend)
	}
}
