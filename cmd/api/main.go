package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"sweet-shop-api/internal/config"
	"sweet-shop-api/internal/events"
	"sweet-shop-api/internal/logging"
	"sweet-shop-api/internal/repository"
	"sweet-shop-api/internal/router"
	"sweet-shop-api/internal/service"
	"sweet-shop-api/internal/ws"
	"sweet-shop-api/pkg/database"
	"sweet-shop-api/pkg/jwt"

	"github.com/joho/godotenv"
)

func main() {
	// 1. Load Env
	envErr := godotenv.Load()

	cfg := config.Load()
	log := logging.New(cfg.LogLevel)
	slog.SetDefault(log)
	if envErr != nil {
		log.Warn(".env file not found, relying on process environment")
	}

	// 2. Setup Database
	db, err := database.Connect(cfg)
	if err != nil {
		log.Error("database connection failed", "driver", cfg.DBDriver, "error", err)
		os.Exit(1)
	}
	if err := repository.Migrate(db); err != nil {
		log.Error("migration failed", "error", err)
		os.Exit(1)
	}
	log.Info("database ready", "driver", cfg.DBDriver)

	// 3. Setup WebSocket Hub and event sinks
	wsHub := ws.NewHub(log)
	go wsHub.Run()

	publishers := events.Multi{wsHub}
	var kafkaPub *events.KafkaPublisher
	if len(cfg.KafkaBrokers) > 0 {
		kafkaPub = events.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopic)
		publishers = append(publishers, kafkaPub)
		log.Info("kafka publishing enabled", "brokers", cfg.KafkaBrokers, "topic", cfg.KafkaTopic)
	}

	// 4. Dependency Injection (Wiring Layers)
	tokens := jwt.NewManager(jwt.Config{
		AccessSecret:  cfg.JWTSecret,
		RefreshSecret: cfg.JWTRefreshSecret,
		AccessTTL:     cfg.AccessTTL,
		RefreshTTL:    cfg.RefreshTTL,
		Issuer:        cfg.JWTIssuer,
	})

	userRepo := repository.NewUserRepo(db)
	sweetRepo := repository.NewSweetRepo(db)

	authService := service.NewAuthService(userRepo, tokens)
	catalogService := service.NewCatalogService(sweetRepo, db, publishers)
	inventoryService := service.NewInventoryService(sweetRepo, db, publishers)

	// 5. Seed the staff account, if configured
	if cfg.AdminUsername != "" && cfg.AdminPassword != "" {
		seedCtx := logging.IntoContext(context.Background(), log)
		admin, created, err := authService.EnsureAdmin(seedCtx, cfg.AdminUsername, cfg.AdminEmail, cfg.AdminPassword)
		if err != nil {
			log.Warn("failed to seed admin user", "username", cfg.AdminUsername, "error", err)
		} else {
			log.Info("admin user ready", "username", admin.Username, "created", created)
		}
	}

	// 6. Setup Fiber
	app := router.New(router.Deps{
		AppName:   cfg.AppName,
		DB:        db,
		Log:       log,
		Hub:       wsHub,
		Tokens:    tokens,
		Users:     userRepo,
		Auth:      authService,
		Catalog:   catalogService,
		Inventory: inventoryService,
		AccessLog: true,
	})

	// 7. Graceful Shutdown
	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Error("server stopped", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server")
	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		log.Error("server forced to shutdown", "error", err)
	}
	wsHub.Close()
	if kafkaPub != nil {
		if err := kafkaPub.Close(); err != nil {
			log.Warn("kafka writer close failed", "error", err)
		}
	}
	if sqlDB, err := db.DB(); err == nil {
		sqlDB.Close()
	}

	log.Info("server exited")
}
