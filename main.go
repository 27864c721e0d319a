package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"bounty-board-system/config"
	"bounty-board-system/handlers"
	"bounty-board-system/models"
	"bounty-board-system/services"
	"bounty-board-system/utils"
	"bounty-board-system/workers"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/joho/godotenv"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️  No .env file found, reading environment variables directly")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("failed to load configuration:", err)
	}

	app := fiber.New(fiber.Config{
		BodyLimit: 50 * 1024 * 1024, // 50MB — attachments only, results are text
	})

	// Trim spaces from each configured origin
	allowedOriginsList := strings.Split(cfg.AllowedOrigins, ",")
	for i, origin := range allowedOriginsList {
		allowedOriginsList[i] = strings.TrimSpace(origin)
	}
	allowedOriginsString := strings.Join(allowedOriginsList, ",")

	app.Use(cors.New(cors.Config{
		AllowOrigins: allowedOriginsString,
		AllowMethods: "GET,POST,PATCH,OPTIONS,HEAD",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization, X-Requested-With, X-Request-ID",
		MaxAge:       86400, // 24 hours
	}))

	// TranslateError turns driver duplicate-key errors into
	// gorm.ErrDuplicatedKey; the store's idempotency guard depends on it.
	db, err := gorm.Open(postgres.Open(cfg.DatabaseURL), &gorm.Config{TranslateError: true})
	if err != nil {
		log.Fatal("failed to connect to database:", err)
	}

	if err := db.AutoMigrate(
		&models.Bounty{},
		&models.Submission{},
	); err != nil {
		log.Fatal("failed to migrate database:", err)
	}

	if cfg.R2BucketName != "" {
		if err := utils.InitObjectStore(
			cfg.CloudflareAccountID,
			cfg.R2AccessKeyID,
			cfg.R2AccessKeySecret,
			cfg.R2BucketName,
			cfg.CDNBaseURL,
		); err != nil {
			log.Fatal("failed to initialize object store:", err)
		}
	} else {
		log.Println("⚠️  R2_BUCKET_NAME not set — attachment uploads disabled")
	}

	window := utils.NewVisibilityWindow(cfg.VisibilityDelay)
	coordinator := services.NewCoordinator(db, window, cfg.MyBountiesOpenOnly)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.EventFeedURL != "" {
		eventWorker := workers.NewBountyEventWorker(coordinator, cfg.EventFeedURL, cfg.EventPollInterval, cfg.EventErrorBackoff)
		go eventWorker.Run(ctx)
	} else {
		log.Println("⚠️  EVENT_FEED_URL not set — relying on POST /api/bounty for registration")
	}

	if cfg.RetentionEnabled {
		coordinator.StartRetentionScheduler(cfg.RetentionAge)
	}

	handlers.SetupBountyRoutes(app, coordinator, cfg.ServiceToken)

	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"message": "Bounty Board API",
			"endpoints": fiber.Map{
				"list_bounties":   "GET /api/bounties",
				"my_bounties":     "GET /api/my-bounties/{creator_address}",
				"get_bounty":      "GET /api/bounty/{id}",
				"create_bounty":   "POST /api/bounty",
				"update_status":   "PATCH /api/bounty/{id}/status",
				"submit_work":     "POST /api/bounty/{id}/submit",
				"get_submissions": "GET /api/bounty/{id}/submissions",
			},
		})
	})

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "healthy",
			"service": "bounty-board-system",
		})
	})

	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Printf("Server error: %v", err)
		}
	}()

	log.Printf("✅ Server running on http://localhost:%s", cfg.Port)
	log.Printf("✅ Visibility window: %s", window.Delay)
	log.Printf("✅ CORS configured for origins: %s", allowedOriginsString)

	<-ctx.Done()
	log.Println("Shutting down server...")
}
