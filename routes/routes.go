package routes

import (
	"log/slog"
	"net/http"

	"mealarena/handlers"
	"mealarena/middleware"
	"mealarena/services"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins for development
	},
}

func SetupRoutes(
	router *gin.Engine,
	authHandler *handlers.AuthHandler,
	kitchenHandler *handlers.KitchenHandler,
	battleHandler *handlers.BattleHandler,
	hub *services.Hub,
	jwtSecret string,
) {
	// API routes
	api := router.Group("/api")
	{
		// Auth routes (public)
		auth := api.Group("/auth")
		{
			auth.POST("/register", authHandler.Register)
			auth.POST("/login", authHandler.Login)
		}

		// Public reads
		api.GET("/meals/:id", kitchenHandler.GetMealByID)
		api.GET("/meals/name/:name", kitchenHandler.GetMealByName)
		api.GET("/leaderboard", kitchenHandler.Leaderboard)
		api.GET("/battle/combatants", battleHandler.GetCombatants)

		// Protected routes
		protected := api.Group("/")
		protected.Use(middleware.AuthMiddleware(jwtSecret))
		{
			protected.GET("/auth/profile", authHandler.GetProfile)

			// Kitchen mutations
			protected.POST("/meals", kitchenHandler.CreateMeal)
			protected.DELETE("/meals/:id", kitchenHandler.DeleteMeal)
			protected.DELETE("/meals", kitchenHandler.ClearMeals)

			// Arena
			protected.POST("/battle/combatants", battleHandler.PrepCombatant)
			protected.DELETE("/battle/combatants", battleHandler.ClearCombatants)
			protected.POST("/battle", battleHandler.Battle)
		}
	}

	// WebSocket endpoint for the live battle feed
	router.GET("/ws/battles", func(c *gin.Context) {
		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			slog.Warn("websocket upgrade failed", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to upgrade connection"})
			return
		}
		hub.RegisterClient(conn)
	})

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
}
