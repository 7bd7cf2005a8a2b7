package main

import (
	"context"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/tobi647/beer-distribution-app-sub000/cmd"
	"github.com/tobi647/beer-distribution-app-sub000/internal/container"
	"github.com/tobi647/beer-distribution-app-sub000/internal/core/logger"
	"github.com/tobi647/beer-distribution-app-sub000/internal/database"
	"github.com/tobi647/beer-distribution-app-sub000/internal/middleware"
	"github.com/tobi647/beer-distribution-app-sub000/internal/routes"
)

func main() {
	log := logger.NewLogger()
	defer log.Sync()

	// Load .env file, but don't overwrite system environment variables
	if err := godotenv.Load(); err != nil {
		log.Warn("No .env file found, falling back to system environment variables")
	}

	// Handle CLI subcommands (migrate) before starting the server
	if len(os.Args) > 1 {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		cmd.Execute(ctx)
		return
	}

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL environment variable is not set")
	}

	db, err := database.NewPostgresConnection(dbURL)
	if err != nil {
		log.Fatal("Unable to connect to the database", zap.Error(err))
	}
	defer db.Close()

	log.Info("Connected to the database successfully")

	appContainer := container.NewAppContainer(db, log)

	router := gin.Default()
	router.Use(middleware.RecoveryMiddleware(log))
	router.Use(middleware.TimeoutMiddleware(30 * time.Second))

	routes.RegisterRoutes(router, appContainer)
	routes.RegisterUtilityRoutes(router, log)

	appHost := os.Getenv("APP_HOST")
	if appHost == "" {
		appHost = ":8080"
	}

	if err := router.Run(appHost); err != nil {
		log.Fatal("Server stopped", zap.Error(err))
	}
}
