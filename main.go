package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"charla/server/internal/accounts"
	"charla/server/internal/blob"
	"charla/server/internal/chat"
	"charla/server/internal/config"
	"charla/server/internal/database"
	"charla/server/internal/events"
	"charla/server/internal/handlers"
	"charla/server/internal/routes"
	"charla/server/internal/store"
	ws "charla/server/internal/websocket"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"
)

func main() {
	log.SetPrefix("charla: ")

	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}
	cfg := config.Load()

	ctx := context.Background()

	// Connect to database
	db, err := database.Connect(ctx, database.Options{
		URL:            cfg.DatabaseURL,
		MaxConns:       cfg.DBMaxConns,
		QueueLimit:     cfg.DBQueueLimit,
		AcquireTimeout: cfg.DBAcquireTimeout,
	})
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	blobs, staticDir, err := openBlobStore(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to open blob store: %v", err)
	}

	var publisher chat.Publisher
	if cfg.RabbitMQURL != "" {
		mq, err := events.Dial(cfg.RabbitMQURL, cfg.RabbitMQQueue)
		if err != nil {
			log.Fatalf("Failed to start event publisher: %v", err)
		}
		defer mq.Close()
		publisher = mq
	}

	messages := store.New(db)
	hub := ws.NewHub()
	router := chat.NewRouter(messages, blobs, hub, publisher)

	h := &handlers.Handler{
		Accounts: accounts.NewService(messages, blobs, accounts.PasswordsFor(cfg.PasswordMode)),
		Groups:   messages,
		History:  messages,
		Router:   router,
		Blobs:    blobs,
		Hub:      hub,
	}
	if cfg.PasswordMode == "plaintext" {
		log.Println("Passwords are stored in plaintext; set PASSWORD_MODE=bcrypt to hash them")
	}

	// Initialize Fiber app
	app := fiber.New(fiber.Config{
		AppName:   "Charla API",
		BodyLimit: cfg.MaxUploadSize,
	})

	// Middleware
	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: strings.TrimSpace(cfg.AllowedOrigins),
	}))

	// Setup routes
	routes.SetupRoutes(app, h, staticDir)

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
		<-quit

		log.Println("Shutting down")
		hub.Shutdown()
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			log.Printf("Shutdown error: %v", err)
		}
	}()

	log.Printf("Server starting on port %s", cfg.Port)
	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Fatal(err)
	}
}

// openBlobStore returns the configured blob store and, for the disk
// backend, the directory to serve under /uploads.
func openBlobStore(ctx context.Context, cfg config.Config) (blob.Store, string, error) {
	switch cfg.BlobBackend {
	case "s3":
		s, err := blob.NewS3(ctx, cfg.S3Bucket, cfg.S3Prefix)
		return s, "", err
	default:
		d, err := blob.NewDisk(cfg.UploadDir)
		return d, cfg.UploadDir, err
	}
}
