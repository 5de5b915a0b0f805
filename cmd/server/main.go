package main

import (
	"context"
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/aylin-t/PeerSupportBack/internal/config"
	"github.com/aylin-t/PeerSupportBack/internal/database"
	"github.com/aylin-t/PeerSupportBack/internal/metrics"
	"github.com/aylin-t/PeerSupportBack/internal/notify"
	"github.com/aylin-t/PeerSupportBack/internal/payments"
	"github.com/aylin-t/PeerSupportBack/internal/routes"
)

func main() {
	// 1. Load Config
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// 2. Connect to Database
	if cfg.DBUrl == "" {
		log.Fatal("DB_URL is required")
	}
	db, err := database.Connect(context.Background(), cfg.DBUrl)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	// 3. Connect to the message broker
	notifier, err := notify.NewAMQPNotifier(cfg.AMQPUrl, cfg.AMQPExchange)
	if err != nil {
		log.Fatalf("Failed to connect to message broker: %v", err)
	}
	defer notifier.Close()

	// 4. Payment processor
	processor, err := payments.NewOmiseProcessor(cfg.OmisePublicKey, cfg.OmiseSecretKey, cfg.Currency)
	if err != nil {
		log.Fatalf("Failed to initialize payment processor: %v", err)
	}

	collector := metrics.NewCollector()

	// 5. Setup Fiber
	app := fiber.New()

	// Middleware
	app.Use(cors.New())
	app.Use(logger.New())
	app.Use(recover.New())

	// Routes
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "ok",
		})
	})
	app.Get("/metrics", adaptor.HTTPHandler(collector.Handler()))
	routes.RegisterRoutes(app, cfg, db, notifier, processor, collector)

	// 6. Start Server
	log.Printf("Server starting on port %s", cfg.Port)
	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Fatalf("Server failed to start: %v", err)
	}
}
