package app

import (
	"fmt"
	"log"
	"os"

	"github.com/roohithbala/placement/api"
	"github.com/roohithbala/placement/config"
	"github.com/roohithbala/placement/database"
	"github.com/roohithbala/placement/router"
	"github.com/roohithbala/placement/services"
	"github.com/roohithbala/placement/services/cron"
	"github.com/roohithbala/placement/utils/cache"
	"gorm.io/gorm"
)

func SetupAndRunServer() error {
	// Load ENV
	if err := config.LoadENV(); err != nil {
		return err
	}

	getEnv, err := config.Get()
	if err != nil {
		return err
	}

	// Initialize GORM database connection
	store, err := database.StartGORM()
	if err != nil {
		print("Check whether Postgres is running or not\n")
		return err
	}

	if err := store.Init(); err != nil {
		print("Failed to initialize database tables\n")
		return err
	}

	// Initialize Cron Manager (only if enabled via environment variable)
	var cronManager *cron.CronManager
	if os.Getenv("CRON_ENABLED") != "false" { // Default to enabled
		db, ok := store.GetDB().(*gorm.DB)
		if !ok {
			print("Warning: Failed to get database connection for cron jobs\n")
		} else {
			var redisCache *cache.RedisCache
			if getEnv.REDIS_URL != "" {
				redisCache, err = cache.NewRedisCache(getEnv.REDIS_URL)
				if err != nil {
					log.Printf("Warning: cron jobs run without Redis: %v", err)
				}
			}

			emailService := services.NewEmailService(getEnv)
			resetService := services.NewPasswordResetService(db, emailService)
			experienceService := services.NewExperienceService(db, redisCache)

			cronManager = cron.NewCronManager(db, resetService, experienceService)
			if err := cronManager.Start(); err != nil {
				print("Warning: Failed to start cron jobs\n")
				print("Error: ", err.Error(), "\n")
			}
		}
	}

	// Defer Closing DB and stopping cron jobs
	defer func() {
		if cronManager != nil {
			cronManager.Stop()
		}
		store.Close()
	}()

	// Init API
	var server *api.APIServer = api.NewAPIServer(fmt.Sprintf(":%d", getEnv.PORT))
	app := server.GetEngine()

	// Setup Routes
	router.SetupRoutes(app, store, getEnv)

	// Get the PORT & Start the Server
	return server.Run()
}
