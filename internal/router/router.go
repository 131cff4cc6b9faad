package router

import (
	"context"
	"log"
	"time"

	"firebase.google.com/go/v4/auth"
	"github.com/labstack/echo/v4"
	eMiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/rudra-paul/socialsphere/backend/internal/handlers"
	"github.com/rudra-paul/socialsphere/backend/internal/middleware"
	"github.com/rudra-paul/socialsphere/backend/internal/models"
	"github.com/rudra-paul/socialsphere/backend/internal/repositories"
	"github.com/rudra-paul/socialsphere/backend/internal/services"
	"go.mongodb.org/mongo-driver/mongo"
	"gorm.io/gorm"
)

// SetupMiddleware configures global Echo middleware
func SetupMiddleware(e *echo.Echo) {
	e.Use(eMiddleware.Recover())
	e.Use(eMiddleware.CORS())
	log.Println("Global middleware configured.")
}

// SetupRoutes configures all application routes and injects dependencies.
// firebaseAuthClient and push may be nil when Firebase is not configured.
func SetupRoutes(e *echo.Echo, pgdb *gorm.DB, mgClient *mongo.Client, mongoDatabase string, firebaseAuthClient *auth.Client, push services.PushSender, jwtSecret string) {
	// AutoMigrate PostgreSQL models
	if err := pgdb.AutoMigrate(&models.Notification{}); err != nil {
		log.Fatalf("Failed to auto migrate models: %v", err)
	}
	log.Println("PostgreSQL auto-migrations completed.")

	// Health check - always accessible
	e.GET("/health", handlers.HealthCheck)
	e.GET("/", func(c echo.Context) error {
		return c.JSON(200, map[string]string{"message": "SocialSphere API"})
	})

	mongoDB := mgClient.Database(mongoDatabase)

	// --- Initialize Repositories ---
	userRepo := repositories.NewMongoUserRepository(mongoDB)
	followRepo := repositories.NewMongoFollowRepository(mongoDB)
	postRepo := repositories.NewMongoPostRepository(mongoDB)
	storyRepo := repositories.NewMongoStoryRepository(mongoDB)
	notificationRepo := repositories.NewPostgresNotificationRepository(pgdb)

	ensureIndexes(userRepo, followRepo, postRepo, storyRepo)

	// --- Initialize Services ---
	notificationService := services.NewNotificationService(notificationRepo, push)
	resolver := services.NewVisibilityResolver(userRepo, followRepo)
	followService := services.NewFollowService(userRepo, followRepo, notificationService)
	blockService := services.NewBlockService(userRepo, followRepo, notificationService)
	feedService := services.NewFeedService(userRepo, followRepo, postRepo, storyRepo)

	// --- Unprotected routes for authentication ---
	authGroup := e.Group("/api/v1/auth")
	authHandler := handlers.NewAuthHandler(userRepo, firebaseAuthClient, jwtSecret)
	authHandler.RegisterAuthRoutes(authGroup)
	log.Println("Auth routes configured.")

	// --- Protected routes (require JWT authentication) ---
	api := e.Group("/api/v1")
	api.Use(middleware.JWTAuthMiddleware())
	log.Println("JWT authentication middleware applied to /api/v1 group.")

	userHandler := handlers.NewUserHandler(userRepo, resolver)
	userHandler.RegisterProfileRoutes(api)
	log.Println("User profile routes configured.")

	postHandler := handlers.NewPostHandler(postRepo, userRepo, resolver)
	postHandler.RegisterPostRoutes(api)
	log.Println("Post routes configured.")

	feedHandler := handlers.NewFeedHandler(feedService, userRepo)
	feedHandler.RegisterFeedRoutes(api)
	log.Println("Feed routes configured.")

	followHandler := handlers.NewFollowHandler(followService, resolver)
	followHandler.RegisterFollowRoutes(api)
	log.Println("Follow routes configured.")

	blockHandler := handlers.NewBlockHandler(blockService)
	blockHandler.RegisterBlockRoutes(api)
	log.Println("Block routes configured.")

	storyHandler := handlers.NewStoryHandler(storyRepo, feedService)
	storyHandler.RegisterStoryRoutes(api)
	log.Println("Story routes configured.")

	notificationHandler := handlers.NewNotificationHandler(notificationService)
	notificationHandler.RegisterNotificationRoutes(api)
	log.Println("Notification routes configured.")

	log.Println("All routes configured.")
}

func ensureIndexes(userRepo *repositories.MongoUserRepository, followRepo *repositories.MongoFollowRepository, postRepo *repositories.MongoPostRepository, storyRepo *repositories.MongoStoryRepository) {
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := userRepo.EnsureIndexes(ctx); err != nil {
		log.Fatalf("Failed to ensure user indexes: %v", err)
	}
	if err := followRepo.EnsureIndexes(ctx); err != nil {
		log.Fatalf("Failed to ensure follow indexes: %v", err)
	}
	if err := postRepo.EnsureIndexes(ctx); err != nil {
		log.Fatalf("Failed to ensure post indexes: %v", err)
	}
	if err := storyRepo.EnsureIndexes(ctx); err != nil {
		log.Fatalf("Failed to ensure story indexes: %v", err)
	}
	log.Println("MongoDB indexes ensured.")
}
