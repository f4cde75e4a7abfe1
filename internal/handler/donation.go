package handler

import (
	"errors"
	"net/http"
	"time"

	"charity-receipts/internal/dto"
	"charity-receipts/internal/model"
	"charity-receipts/internal/receipt"
	"charity-receipts/internal/repository"
	"charity-receipts/internal/service"

	"github.com/labstack/echo/v4"
)

type DonationHandler struct {
	donationService service.DonationService
}

func NewDonationHandler(donationService service.DonationService) *DonationHandler {
	return &DonationHandler{
		donationService: donationService,
	}
}

func shopFromQuery(c echo.Context) (string, error) {
	shop := c.QueryParam("shop")
	if shop == "" {
		return "", echo.NewHTTPError(http.StatusBadRequest, "missing shop parameter")
	}
	return shop, nil
}

func (h *DonationHandler) View(c echo.Context) error {
	ctx := c.Request().Context()

	donation, err := h.donationService.Get(ctx, c.Param("id"))
	if errors.Is(err, repository.ErrDonationNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, "donation not found")
	}
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, donationResponse(donation))
}

func (h *DonationHandler) Resend(c echo.Context) error {
	ctx := c.Request().Context()

	result, err := h.donationService.Resend(ctx, c.Param("id"))
	if errors.Is(err, repository.ErrDonationNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, "donation not found")
	}
	if err != nil {
		return err
	}

	status := http.StatusOK
	if !result.Sent {
		// terminal donation, nothing was sent
		status = http.StatusUnprocessableEntity
	}

	return c.JSON(status, &dto.MessageResponse{Message: result.Message})
}

func (h *DonationHandler) PreviewEmail(c echo.Context) error {
	ctx := c.Request().Context()

	shop, err := shopFromQuery(c)
	if err != nil {
		return err
	}

	template := c.QueryParam("template")
	if template == "" {
		template = receipt.DefaultReceiptTemplate
	}

	body, err := h.donationService.PreviewEmail(ctx, shop, template)
	if errors.Is(err, receipt.ErrTemplate) {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, &dto.PreviewResponse{EmailBody: body})
}

func (h *DonationHandler) TestEmail(c echo.Context) error {
	ctx := c.Request().Context()

	shop, err := shopFromQuery(c)
	if err != nil {
		return err
	}

	template := c.QueryParam("email_template")
	if t := c.QueryParam("void_email_template"); t != "" {
		template = t
	}
	if t := c.QueryParam("refund_email_template"); t != "" {
		template = t
	}
	if template == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "missing email template")
	}

	err = h.donationService.TestEmail(ctx, shop, template, c.QueryParam("to"))
	if errors.Is(err, receipt.ErrTemplate) {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if errors.Is(err, repository.ErrCharityNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, "charity not configured")
	}
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, &dto.MessageResponse{Message: "Email sent!"})
}

func (h *DonationHandler) Export(c echo.Context) error {
	ctx := c.Request().Context()

	shop, err := shopFromQuery(c)
	if err != nil {
		return err
	}

	start, err := time.Parse(time.RFC3339, c.QueryParam("start_date"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid start_date")
	}
	end, err := time.Parse(time.RFC3339, c.QueryParam("end_date"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid end_date")
	}

	report, err := h.donationService.Export(ctx, shop, start, end)
	if err != nil {
		return err
	}

	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="donations.csv"`)
	return c.Blob(http.StatusOK, "text/csv", report)
}

func donationResponse(d *model.Donation) *dto.DonationResponse {
	return &dto.DonationResponse{
		ID:        d.ID,
		Shop:      d.Shop,
		OrderID:   d.OrderID,
		OrderName: d.OrderName,
		Email:     d.Email,
		Amount:    d.Amount.StringFixed(2),
		Status:    string(d.Status),
		CreatedAt: d.CreatedAt.Format(time.RFC3339),
	}
}
