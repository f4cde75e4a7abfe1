package main

import (
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"charity-receipts/internal/client"
	"charity-receipts/internal/config"
	"charity-receipts/internal/logger"
	"charity-receipts/internal/receipt"
	"charity-receipts/internal/repository"
	"charity-receipts/internal/server"
	"charity-receipts/internal/service"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

func main() {
	// load .env into os.Environ
	if err := godotenv.Load(); err != nil {
		fmt.Println("No .env file found (ok in prod)")
	}

	cfg := &config.Config{}
	if err := env.Parse(cfg); err != nil {
		fmt.Printf("Failed to parse config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(&cfg.Log)

	db := client.InitSqliteClient(cfg.DatabaseURL)
	mailClient := client.NewSmtpMailClient(&cfg.SMTP)
	renderer := receipt.NewRenderer()

	shopRepo := repository.NewShopRepository(db)
	charityRepo := repository.NewCharityRepository(db)
	productRepo := repository.NewProductRepository(db)
	donationRepo := repository.NewDonationRepository(db)

	webhookService := service.NewWebhookService(
		shopRepo,
		charityRepo,
		productRepo,
		donationRepo,
		renderer,
		mailClient,
		log,
	)
	donationService := service.NewDonationService(
		shopRepo,
		charityRepo,
		donationRepo,
		renderer,
		mailClient,
		log,
	)

	serverAddr := cfg.HTTP.Host + ":" + cfg.HTTP.Port

	// Init HTTP server
	srv := server.NewServer(webhookService, donationService, cfg.Webhook.SharedSecret)

	log.Info().Str("addr", serverAddr).Msg("starting HTTP server")
	go func() {
		if err := srv.Start(serverAddr); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("HTTP server error")
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)

	<-sigChan
	log.Info().Msg("signal received, starting graceful shutdown")

	if err := srv.Shutdown(); err != nil {
		log.Fatal().Err(err).Msg("HTTP server shutdown error")
	}
}
