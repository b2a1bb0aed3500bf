package router

import (
	"log"
	"os"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/roohithbala/placement/config"
	"github.com/roohithbala/placement/database"
	"github.com/roohithbala/placement/handlers"
	admin_handlers "github.com/roohithbala/placement/handlers/admin"
	auth_handlers "github.com/roohithbala/placement/handlers/auth"
	experience_handlers "github.com/roohithbala/placement/handlers/experience"
	upload_handlers "github.com/roohithbala/placement/handlers/upload"
	"github.com/roohithbala/placement/services"
	"github.com/roohithbala/placement/services/linkpreview"
	"github.com/roohithbala/placement/services/storage"
	"github.com/roohithbala/placement/utils"
	"github.com/roohithbala/placement/utils/auth"
	"github.com/roohithbala/placement/utils/cache"
	"github.com/roohithbala/placement/utils/middleware"
	"gorm.io/gorm"
)

func SetupRoutes(app *fiber.App, store database.Storage, env *config.EnviornmentVariable) {
	jwtSecret := env.JWT_SECRET
	if jwtSecret == "" {
		log.Fatal("JWT_SECRET environment variable is not set")
	}

	jwtIssuer := env.JWT_ISSUER
	if jwtIssuer == "" {
		jwtIssuer = "placehub-api"
	}

	jwtManager := auth.NewJWTManager(auth.JWTConfig{
		Secret: jwtSecret,
		Expiry: 24 * time.Hour,
		Issuer: jwtIssuer,
	})

	db, ok := store.GetDB().(*gorm.DB)
	if !ok {
		log.Fatal("Failed to get GORM DB instance")
	}

	// Redis backs brute force protection and the stats cache. The app
	// runs without it.
	redisURL := env.REDIS_URL
	if redisURL == "" {
		redisURL = "redis://localhost:6379/0"
	}
	redisCache, err := cache.NewRedisCache(redisURL)
	if err != nil {
		log.Printf("Warning: Failed to connect to Redis: %v. Brute force protection and stats caching are disabled.", err)
	}

	var bruteForceProtection *middleware.BruteForceProtection
	if redisCache != nil {
		bruteForceProtection = middleware.NewBruteForceProtection(redisCache)
	}

	authMiddleware := middleware.NewAuthMiddleware(jwtManager, db)

	emailService := services.NewEmailService(env)
	resetService := services.NewPasswordResetService(db, emailService)
	experienceService := services.NewExperienceService(db, redisCache)

	var spacesClient *storage.SpacesClient
	if env.SPACES_ACCESS_KEY != "" && env.SPACES_SECRET_KEY != "" {
		spacesClient, err = storage.NewSpacesClient(storage.SpacesConfig{
			AccessKey: env.SPACES_ACCESS_KEY,
			SecretKey: env.SPACES_SECRET_KEY,
			Bucket:    env.SPACES_BUCKET,
			Region:    env.SPACES_REGION,
			Endpoint:  env.SPACES_ENDPOINT,
			CDNURL:    env.SPACES_CDN_URL,
		})
		if err != nil {
			log.Printf("Warning: Failed to initialize Spaces client: %v. File uploads are disabled.", err)
		}
	}

	authHandler := auth_handlers.NewAuthHandler(db, jwtManager, resetService, bruteForceProtection)
	experienceHandler := experience_handlers.NewExperienceHandler(experienceService)
	moderationHandler := admin_handlers.NewModerationHandler(experienceService)
	uploadHandler := upload_handlers.NewUploadHandler(spacesClient, linkpreview.NewService())

	allowedOrigins := os.Getenv("ALLOWED_ORIGINS")
	if allowedOrigins == "" {
		allowedOrigins = env.FRONTEND_URL
	}

	middleware.SetupSecurity(app, middleware.SecurityConfig{
		AllowedOrigins:    allowedOrigins,
		RateLimitRequests: 100,
		RateLimitWindow:   1 * time.Minute,
	})

	// Health check endpoint (public)
	app.Get("/ping", utils.MakeHTTPHandleFunc(handlers.HandleCheckHealth, store))

	// API v1 group
	api := app.Group("/api/v1")

	// Auth routes (public)
	authGroup := api.Group("/auth")
	authGroup.Post("/register", authHandler.Register)

	// Login with brute force protection
	if bruteForceProtection != nil {
		authGroup.Post("/login", bruteForceProtection.CheckLocked(), authHandler.Login)
	} else {
		authGroup.Post("/login", authHandler.Login)
	}

	authGroup.Post("/forgot-password", authHandler.ForgotPassword)
	authGroup.Get("/verify-reset-token/:token", authHandler.VerifyResetToken)
	authGroup.Post("/reset-password", authHandler.ResetPassword)

	// Experience routes
	experiences := api.Group("/experiences")

	// Public listing endpoints
	experiences.Get("/browse", experienceHandler.Browse)       // Public: filtered paginated listing
	experiences.Get("/recent", experienceHandler.Recent)       // Public: newest experiences
	experiences.Get("/options", experienceHandler.Options)     // Public: filter dropdown values
	experiences.Get("/stats", experienceHandler.Stats)         // Public: platform statistics
	experiences.Get("/company/:company", experienceHandler.ByCompany)
	experiences.Get("/batch/:batch", experienceHandler.ByBatch)

	// Author endpoints (protected)
	experiences.Get("/my", authMiddleware.Required(), experienceHandler.ListMine)
	experiences.Get("/draft", authMiddleware.Required(), experienceHandler.LatestDraft)
	experiences.Post("/metadata", authMiddleware.Required(), experienceHandler.SaveMetadata)
	experiences.Post("/rounds/:experienceId", authMiddleware.Required(), experienceHandler.SaveRounds)
	experiences.Post("/materials/:experienceId", authMiddleware.Required(), experienceHandler.SaveMaterials)
	experiences.Post("/submit/:experienceId", authMiddleware.Required(), experienceHandler.Submit)
	experiences.Delete("/:id", authMiddleware.Required(), experienceHandler.Delete)

	// Keep the wildcard detail route last so it does not shadow the
	// named routes above.
	experiences.Get("/:id", experienceHandler.GetDetail) // Public: full experience detail

	// Upload routes (protected)
	uploads := api.Group("/uploads", authMiddleware.Required())
	uploads.Post("/material", uploadHandler.UploadMaterial)
	uploads.Get("/link-preview", uploadHandler.PreviewLink)

	// Moderation routes (admin only)
	moderation := api.Group("/admin/experiences", authMiddleware.RequireAdmin())
	moderation.Get("/", moderationHandler.ListQueue)
	moderation.Post("/:id/approve", moderationHandler.Approve)
	moderation.Post("/:id/reject", moderationHandler.Reject)
}
