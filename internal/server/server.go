package server

import (
	"charity-receipts/internal/handler"
	appmiddleware "charity-receipts/internal/middleware"
	"charity-receipts/internal/service"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

type Server struct {
	echo            *echo.Echo
	webhookHandler  *handler.WebhookHandler
	donationHandler *handler.DonationHandler
	webhookSecret   string
}

func NewServer(webhookService service.WebhookService, donationService service.DonationService, webhookSecret string) *Server {
	e := echo.New()

	e.Use(middleware.RequestLogger())
	e.Use(middleware.Recover())

	s := &Server{
		echo:            e,
		webhookHandler:  handler.NewWebhookHandler(webhookService),
		donationHandler: handler.NewDonationHandler(donationService),
		webhookSecret:   webhookSecret,
	}

	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	api := s.echo.Group("/api")

	api.GET("/health", func(c echo.Context) error {
		return c.JSON(200, map[string]string{"status": "ok"})
	})

	// -------- inbound webhooks --------
	webhooks := s.echo.Group("/webhooks", appmiddleware.VerifyWebhook(s.webhookSecret))
	webhooks.POST("/orders/create", s.webhookHandler.OrderCreated)
	webhooks.POST("/orders/cancelled", s.webhookHandler.OrderCancelled)
	webhooks.POST("/orders/refunded", s.webhookHandler.OrderRefunded)

	// -------- manual operations surface --------
	api.GET("/donations/:id", s.donationHandler.View)
	api.POST("/donations/:id/resend", s.donationHandler.Resend)
	api.GET("/preview_email", s.donationHandler.PreviewEmail)
	api.GET("/test_email", s.donationHandler.TestEmail)
	api.POST("/export", s.donationHandler.Export)
}

func (s *Server) Start(address string) error {
	return s.echo.Start(address)
}

func (s *Server) Shutdown() error {
	return s.echo.Close()
}
