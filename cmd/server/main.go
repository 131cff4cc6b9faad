package main

import (
	"context"
	"log"

	"firebase.google.com/go/v4/auth"
	"github.com/labstack/echo/v4"
	"github.com/rudra-paul/socialsphere/backend/internal/router"
	"github.com/rudra-paul/socialsphere/backend/internal/services"
	"github.com/rudra-paul/socialsphere/backend/pkg/config"
	"github.com/rudra-paul/socialsphere/backend/pkg/firebase"
	"github.com/rudra-paul/socialsphere/backend/validators"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize database connections
	db, err := config.InitDB()
	if err != nil {
		log.Fatalf("Failed to initialize databases: %v", err)
	}
	defer db.CloseDB() // Ensure database connections are closed when main exits

	// Initialize Firebase. Without credentials the API still runs; token
	// exchange and push delivery are disabled.
	var authClient *auth.Client
	var push services.PushSender
	if cfg.FirebaseCredentialsPath != "" {
		ctx := context.Background()
		firebaseApp, err := firebase.InitFirebase(ctx, cfg.FirebaseCredentialsPath)
		if err != nil {
			log.Fatalf("Failed to initialize Firebase: %v", err)
		}
		authClient = firebaseApp.AuthClient
		push = firebaseApp
	} else {
		log.Println("FIREBASE_CREDENTIALS_PATH not set; Firebase login and push disabled.")
	}

	// Create Echo instance
	e := echo.New()

	// Setup global middleware
	router.SetupMiddleware(e)

	// Setup routes and dependencies
	router.SetupRoutes(e, db.Postgres, db.Mongo, cfg.MongoDatabase, authClient, push, cfg.JWTSecret)

	// Validator
	e.Validator = validators.NewValidator()

	// Start server
	e.Logger.Fatal(e.Start(":" + cfg.Port))
}
