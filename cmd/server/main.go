package main

import (
	"context"
	"log"
	"strconv"

	"hirevox/config"
	"hirevox/controllers"
	"hirevox/db"
	"hirevox/internal/proctor"
	"hirevox/middlewares"
	"hirevox/routes"
	"hirevox/services"
	"hirevox/utils"
	"hirevox/websocket"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func main() {
	// Load the configuration from the specified YAML file
	cfg, err := config.LoadConfig("./config/config.prod.yml")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	controllers.SetConfig(cfg)
	utils.SetJWTSecret(cfg.JWT.Secret)

	services.InitInterviewAI(cfg)

	// Connect to MongoDB using the URI from the configuration
	if err := db.ConnectMongoDB(cfg.Database.URI); err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	log.Println("Connected to MongoDB")

	// Redis carries the live proctoring signal
	if err := proctor.InitRedis(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB); err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	log.Println("Connected to Redis")

	tracker := proctor.NewTracker(proctor.DefaultIngestConfig())
	source := proctor.NewSource(tracker)
	controllers.SetProctorTracker(tracker)

	narrator, err := services.NewS3Narrator(context.Background(), cfg.Audio.Region, cfg.Audio.Bucket,
		&services.HTTPSpeechEngine{Endpoint: cfg.Audio.TTSEndpoint, APIKey: cfg.Audio.TTSApiKey})
	if err != nil {
		log.Fatalf("Failed to initialize narrator: %v", err)
	}

	services.InitSessionManager(cfg, narrator, tracker, source)

	// Set up the Gin router and configure routes
	router := setupRouter(cfg)
	port := strconv.Itoa(cfg.Server.Port)
	log.Printf("Server starting on port %s", port)

	if err := router.Run(":" + port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

func setupRouter(cfg *config.Config) *gin.Engine {
	router := gin.Default()

	// Set trusted proxies (adjust as needed)
	router.SetTrustedProxies([]string{"127.0.0.1", "localhost"})

	// Configure CORS for the frontend
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:5173"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
	}))
	router.OPTIONS("/*path", func(c *gin.Context) { c.Status(204) })

	// Public routes for authentication
	router.POST("/signup", routes.SignUpRouteHandler)
	router.POST("/verifyEmail", routes.VerifyEmailRouteHandler)
	router.POST("/login", routes.LoginRouteHandler)
	router.POST("/forgotPassword", routes.ForgotPasswordRouteHandler)
	router.POST("/confirmForgotPassword", routes.VerifyForgotPasswordRouteHandler)
	router.POST("/verifyToken", routes.VerifyTokenRouteHandler)

	// Protected routes (JWT auth)
	auth := router.Group("/")
	auth.Use(middlewares.AuthMiddleware())
	{
		auth.GET("/user/fetchprofile", routes.GetProfileRouteHandler)
		auth.PUT("/user/updateprofile", routes.UpdateProfileRouteHandler)

		routes.SetupInterviewRoutes(auth)

		// Live interview websocket endpoint
		auth.GET("/ws/interview/:id", websocket.InterviewHandler)
	}

	return router
}
