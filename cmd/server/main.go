package main

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/lifeevents/les/internal/cloudinary"
	"github.com/lifeevents/les/internal/config"
	"github.com/lifeevents/les/internal/database"
	"github.com/lifeevents/les/internal/logger"
	"github.com/lifeevents/les/internal/paystack"
	"github.com/lifeevents/les/internal/router"
	"github.com/lifeevents/les/internal/storage"
	"github.com/lifeevents/les/internal/task"
	"github.com/lifeevents/les/internal/tribute"
	"github.com/lifeevents/les/internal/wallet"
)

func main() {
	// Local development convenience; missing .env is fine
	_ = godotenv.Load()

	cfg := config.Load()

	setupLogger(cfg.Log)
	defer logger.Sync()

	db, err := database.Init(cfg.Database)
	if err != nil {
		logger.Fatal("Failed to initialize database: %v", err)
	}

	paystackClient := paystack.NewClient(cfg.Paystack)

	// Chain client is optional; balance lookups are off without an RPC
	var chainClient *wallet.Client
	if cfg.Chain.RpcURL != "" {
		chainClient, err = wallet.Init(cfg.Chain)
		if err != nil {
			logger.Fatal("Failed to initialize chain client: %v", err)
		}
		defer chainClient.Close()
	} else {
		logger.Warn("Chain RPC not configured, wallet balance lookups disabled")
	}

	var uploads *cloudinary.Client
	if client := cloudinary.NewClient(cfg.Cloudinary); client.Configured() {
		uploads = client
	} else {
		logger.Warn("Cloudinary not configured, image uploads disabled")
	}

	var tributes *tribute.Generator
	if cfg.Tribute.Enabled {
		var store *storage.Client
		if cfg.Storage.Bucket != "" {
			store, err = storage.Init(context.Background(), cfg.Storage)
			if err != nil {
				logger.Warn("Failed to initialize tribute storage: %v", err)
			}
		}

		tributes, err = tribute.NewGenerator(db, cfg.Tribute, store)
		if err != nil {
			logger.Fatal("Failed to initialize tribute generator: %v", err)
		}
		defer tributes.Release()
	}

	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := router.Setup(db, cfg, paystackClient, chainClient, uploads, tributes)

	manager := task.Start(db, cfg)
	defer manager.Stop()

	logger.Info("Server starting on port %s", cfg.Server.Port)
	if err := r.Run(":" + cfg.Server.Port); err != nil {
		logger.Fatal("Failed to start server: %v", err)
	}
}

func setupLogger(cfg config.LogConfig) {
	level := logger.ParseLogLevel(cfg.Level)

	if cfg.Output == "file" && cfg.File != "" {
		fileLogger, err := logger.NewWithFileRotation(level, cfg.File)
		if err != nil {
			logger.Fatal("Failed to initialize file logger: %v", err)
		}
		logger.SetDefaultLogger(fileLogger)
		return
	}

	logger.SetLevel(level)
}
