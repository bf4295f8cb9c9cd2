package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"coin-wager-system/handlers"
	"coin-wager-system/middleware"
	"coin-wager-system/models"
	"coin-wager-system/services"
	"coin-wager-system/workers"

	"github.com/gofiber/fiber/v2"
	"github.com/joho/godotenv"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️  No .env file found, reading environment variables directly")
	}

	app := fiber.New(fiber.Config{
		BodyLimit: 64 * 1024, // chat messages only — nothing bigger belongs here
	})

	// 🔐 GLOBAL: only gateway-relayed requests allowed — no exceptions
	app.Use(middleware.GatewayAuthMiddleware())

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		log.Fatal("DATABASE_URL environment variable not set")
	}

	// TranslateError turns unique-key violations into gorm.ErrDuplicatedKey,
	// which the redemption path depends on.
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		log.Fatal("failed to connect to database:", err)
	}

	if err := db.AutoMigrate(
		&models.User{},
		&models.RedeemCode{},
		&models.Redemption{},
		&models.GameEvent{},
	); err != nil {
		log.Fatal("failed to migrate database:", err)
	}

	cfg := services.LoadConfig()

	filter := services.NewThreatFilter()
	limiter := services.NewRateLimiter()
	balanceService := services.NewBalanceService(db, cfg)
	gameService := services.NewGameService(db, balanceService, limiter, services.SecureRandomSource{}, cfg)
	redemptionService := services.NewRedemptionService(db, balanceService, filter, limiter, cfg)

	limiter.StartSweeper()
	defer limiter.Stop()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go workers.PollExpiredCodes(ctx, redemptionService, 10*time.Minute)

	commandHandler := handlers.NewCommandHandler(filter, balanceService, gameService, redemptionService)
	handlers.SetupCommandRoutes(app, commandHandler)

	addr := os.Getenv("LISTEN_ADDR")
	if addr == "" {
		addr = ":5300"
	}

	go func() {
		if err := app.Listen(addr); err != nil {
			log.Printf("Server error: %v", err)
		}
	}()

	log.Printf("✅ Wager service running on %s", addr)
	log.Println("✅ Expired-code sweeper running (every 10m)")
	log.Println("✅ GatewayAuthMiddleware enforced globally — all requests must come from the gateway")
	log.Printf("✅ %d code issuer(s) on the allow-list", len(cfg.CodeIssuers))

	<-ctx.Done()
	log.Println("Shutting down server...")
	if err := app.Shutdown(); err != nil {
		log.Printf("Shutdown error: %v", err)
	}
}
