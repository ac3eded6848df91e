package main

import (
	"log/slog"
	"os"

	"mealarena/config"
	"mealarena/handlers"
	"mealarena/middleware"
	"mealarena/models"
	"mealarena/routes"
	"mealarena/services"

	"github.com/gin-gonic/gin"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// Load configuration
	cfg := config.Load()

	// Initialize database
	db, err := config.InitDB(cfg)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}

	// Auto-migrate database models
	err = db.AutoMigrate(
		&models.User{},
		&models.Meal{},
	)
	if err != nil {
		logger.Error("failed to migrate database", "error", err)
		os.Exit(1)
	}

	// Initialize Redis
	redisClient := config.InitRedis(cfg)

	// Initialize services
	authService := services.NewAuthService(db, cfg.JWTSecret)
	kitchenService := services.NewKitchenService(db, redisClient, cfg.MealSchemaPath)
	randomService := services.NewRandomService(cfg.RandomURL, cfg.RandomTimeout)

	// Initialize WebSocket hub
	hub := services.NewHub(logger)
	go hub.Run()

	battleService := services.NewBattleService(kitchenService, randomService, hub, logger, cfg.ScoreNormalizer)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authService)
	kitchenHandler := handlers.NewKitchenHandler(kitchenService)
	battleHandler := handlers.NewBattleHandler(battleService, kitchenService)

	// Setup Gin router
	router := gin.Default()

	// Add CORS middleware
	router.Use(middleware.CORS())

	// Setup routes
	routes.SetupRoutes(router, authHandler, kitchenHandler, battleHandler, hub, cfg.JWTSecret)

	// Start server
	logger.Info("server starting", "port", cfg.Port)
	if err := router.Run(":" + cfg.Port); err != nil {
		logger.Error("failed to start server", "error", err)
		os.Exit(1)
	}
}
