package main

import (
	"log"
	"os"
	"time"

	"github.com/sfc-gh-echristensen/cortex-data-analysis-with-postgres/config"
	"github.com/sfc-gh-echristensen/cortex-data-analysis-with-postgres/handlers"
	"github.com/sfc-gh-echristensen/cortex-data-analysis-with-postgres/middleware"
	"github.com/sfc-gh-echristensen/cortex-data-analysis-with-postgres/migration"
	"github.com/sfc-gh-echristensen/cortex-data-analysis-with-postgres/routes"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	db, err := config.InitDB()
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}
	defer db.Close()

	log.Println("✅ Database connected successfully")

	if err := config.RunMigrations(db); err != nil {
		log.Fatal("Failed to run migrations:", err)
	}

	if os.Getenv("SEED_SAMPLE_DATA") == "true" {
		if err := config.SeedSampleData(db); err != nil {
			log.Fatal("Failed to seed sample data:", err)
		}
	}

	if os.Getenv("CLEANUP_CANCELLED_NOTES") == "true" {
		if err := migration.CleanupCancelledNotes(db); err != nil {
			log.Fatal("Failed to clean cancelled notes:", err)
		}
	}

	wsHandler := handlers.NewWSHandler()

	router := gin.Default()

	frontendURL := os.Getenv("FRONTEND_URL")
	if frontendURL == "" {
		frontendURL = "http://localhost:3000"
	}

	corsConfig := cors.Config{
		AllowOrigins:     []string{frontendURL},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           86400,
	}
	router.Use(cors.New(corsConfig))

	router.Use(func(c *gin.Context) {
		start := time.Now()
		log.Printf("📨 %s %s from %s", c.Request.Method, c.Request.URL.Path, c.ClientIP())
		c.Next()
		log.Printf("✅ %s %s - %d (%v)", c.Request.Method, c.Request.URL.Path, c.Writer.Status(), time.Since(start))
	})

	router.Use(middleware.RateLimiter())

	v1 := router.Group("/api/v1")
	{
		routes.SetupTransactionRoutes(v1, db, wsHandler)
		routes.SetupSearchRoutes(v1, db)
		routes.SetupInsightsRoutes(v1, db)
		v1.GET("/ws/ledger", wsHandler.HandleWS)
	}

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "healthy",
			"version": "1.0.0",
			"time":    time.Now().Format(time.RFC3339),
		})
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	log.Printf("🚀 Server starting on port %s...", port)
	if err := router.Run(":" + port); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}
