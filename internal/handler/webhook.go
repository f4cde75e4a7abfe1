package handler

import (
	"context"
	"net/http"

	"charity-receipts/internal/dto"
	"charity-receipts/internal/service"

	"github.com/labstack/echo/v4"
)

type WebhookHandler struct {
	webhookService service.WebhookService
}

func NewWebhookHandler(webhookService service.WebhookService) *WebhookHandler {
	return &WebhookHandler{
		webhookService: webhookService,
	}
}

func shopFromHeader(c echo.Context) (string, error) {
	shop := c.Request().Header.Get("X-Shopify-Shop-Domain")
	if shop == "" {
		return "", echo.NewHTTPError(http.StatusBadRequest, "missing X-Shopify-Shop-Domain header")
	}
	return shop, nil
}

func (h *WebhookHandler) OrderCreated(c echo.Context) error {
	return h.handle(c, h.webhookService.ProcessOrderWebhook)
}

func (h *WebhookHandler) OrderCancelled(c echo.Context) error {
	return h.handle(c, h.webhookService.ProcessCancelWebhook)
}

func (h *WebhookHandler) OrderRefunded(c echo.Context) error {
	return h.handle(c, h.webhookService.ProcessRefundWebhook)
}

// handle always acknowledges with 200 for skip and fail outcomes: skips are
// expected traffic, and a failed render or delivery must not trigger an
// upstream retry storm. The donation row left in pending is the retry signal.
func (h *WebhookHandler) handle(c echo.Context, process func(ctx context.Context, shop string, order *dto.Order) (service.Outcome, error)) error {
	shop, err := shopFromHeader(c)
	if err != nil {
		return err
	}

	var order dto.Order
	if err := c.Bind(&order); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid order payload")
	}

	outcome, err := process(c.Request().Context(), shop, &order)
	if err != nil && !outcome.Failed() {
		return err
	}

	return c.JSON(http.StatusOK, &dto.WebhookResponse{Outcome: string(outcome)})
}
