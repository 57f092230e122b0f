package routes

import (
	"PMTCTCare/cache"
	"PMTCTCare/config"
	"PMTCTCare/controllers"
	"PMTCTCare/handlers"
	"PMTCTCare/middlewares"
	"PMTCTCare/repositories"
	"PMTCTCare/services"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// SetupRoutes initializes the routes and middleware for the server
func SetupRoutes(cache *cache.Cache, config *config.AppConfig, db *gorm.DB) http.Handler {
	// Set Gin to release mode
	gin.SetMode(gin.ReleaseMode)

	// Create a Gin router
	router := gin.Default()

	// Apply Bearer token validation to all routes
	router.Use(middlewares.ValidateBearerToken(config.GetBearerToken()))

	// Create and apply CORS middleware configuration
	corsConfig := &middlewares.CorsConfig{
		AllowedOrigins:   []string{"http://localhost:3000", "https://www.example.com", "https://example-dev.com"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
	}
	router.Use(middlewares.CorsMiddleware(corsConfig))

	// Apply rate limiter middleware
	router.Use(middlewares.NewRateLimiterMiddleware(middlewares.RateLimiterConfig{
		RequestsPerSecond: 15, // 15 requests per second
		Burst:             30, // Burst of 30
	}))

	// Apply logging middleware
	router.Use(middlewares.LoggingMiddleware())

	// Initialize repositories, services, and handlers
	childRepo := repositories.NewChildRepository(cache)
	patientRepo := repositories.NewPatientRepository(cache, childRepo)
	userRepo := repositories.NewUserRepository(db, cache)

	patientService := services.NewPatientService(patientRepo)
	labService := services.NewLabService(patientRepo)
	visitService := services.NewVisitService(patientRepo)
	childService := services.NewChildService(childRepo)
	alertService := services.NewAlertService(patientRepo, childRepo)
	userService := services.NewUserService(userRepo)

	patientHandler := handlers.NewPatientHandler(patientService)
	labHandler := handlers.NewLabHandler(labService)
	visitHandler := handlers.NewVisitHandler(visitService)
	childHandler := handlers.NewChildHandler(childService)
	alertHandler := handlers.NewAlertHandler(alertService)
	authHandler := handlers.NewAuthHandler(userService)

	// Register routes
	controllers.SetupClinicRoutes(
		router,
		patientHandler,
		labHandler,
		visitHandler,
		childHandler,
		alertHandler,
	)

	authController := controllers.NewAuthController(authHandler)
	authController.RegisterRoutes(router)

	controllers.SetupRootRoute(router)

	return router
}
