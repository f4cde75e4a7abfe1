package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"strconv"
	"time"

	"charity-receipts/internal/model"
	"charity-receipts/internal/receipt"
	"charity-receipts/internal/repository"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// ResendResult is translated by the front end into a user-visible flash
// message.
type ResendResult struct {
	Message string
	Sent    bool
}

type DonationService interface {
	Get(ctx context.Context, donationID string) (*model.Donation, error)
	// Resend re-renders and re-delivers the receipt for a donation using
	// the current charity configuration and the stored amount. Void and
	// refunded donations are rejected before rendering.
	Resend(ctx context.Context, donationID string) (*ResendResult, error)
	// PreviewEmail renders the template against a sample order without
	// touching the ledger.
	PreviewEmail(ctx context.Context, shop, template string) (string, error)
	// TestEmail renders the template against the shop's charity context and
	// dispatches it immediately without touching the ledger.
	TestEmail(ctx context.Context, shop, template, recipient string) error
	// Export returns the shop's donations created within [start, end] as a
	// CSV report, boundaries included.
	Export(ctx context.Context, shop string, start, end time.Time) ([]byte, error)
}

type donationServiceImpl struct {
	shopRepo     repository.ShopRepository
	charityRepo  repository.CharityRepository
	donationRepo repository.DonationRepository
	renderer     *receipt.Renderer
	mailer       Mailer
	logger       zerolog.Logger
}

func NewDonationService(
	shopRepo repository.ShopRepository,
	charityRepo repository.CharityRepository,
	donationRepo repository.DonationRepository,
	renderer *receipt.Renderer,
	mailer Mailer,
	logger zerolog.Logger,
) DonationService {
	return &donationServiceImpl{
		shopRepo:     shopRepo,
		charityRepo:  charityRepo,
		donationRepo: donationRepo,
		renderer:     renderer,
		mailer:       mailer,
		logger:       logger,
	}
}

func (s *donationServiceImpl) Get(ctx context.Context, donationID string) (*model.Donation, error) {
	return s.donationRepo.FindByID(ctx, donationID)
}

func (s *donationServiceImpl) Resend(ctx context.Context, donationID string) (*ResendResult, error) {
	donation, err := s.donationRepo.FindByID(ctx, donationID)
	if err != nil {
		return nil, err
	}

	switch donation.Status {
	case model.StatusVoid:
		return &ResendResult{Message: "Donation is void"}, nil
	case model.StatusRefunded:
		return &ResendResult{Message: "Donation is refunded"}, nil
	}

	charity, err := s.charityRepo.ForShop(ctx, donation.Shop)
	if err != nil {
		return nil, fmt.Errorf("load charity: %w", err)
	}

	shop := s.shopForBindings(ctx, donation.Shop)
	body, err := s.renderer.Render(charityReceiptTemplate(charity), receipt.Bindings(shop, charity, donation))
	if err != nil {
		return nil, fmt.Errorf("render receipt: %w", err)
	}

	if err := s.mailer.Send(ctx, donation.Email, charitySubject(charity), body); err != nil {
		if recordErr := s.donationRepo.RecordDeliveryFailure(ctx, donation.ID, err.Error()); recordErr != nil {
			s.logger.Error().Err(recordErr).Str("donation_id", donation.ID).Msg("record delivery failure")
		}
		return nil, fmt.Errorf("deliver receipt: %w", err)
	}

	if err := s.donationRepo.MarkSent(ctx, donation.ID); err != nil {
		return nil, fmt.Errorf("mark donation sent: %w", err)
	}

	s.logger.Info().Str("donation_id", donation.ID).Str("to", donation.Email).Msg("receipt resent")
	return &ResendResult{Message: "Email resent!", Sent: true}, nil
}

func (s *donationServiceImpl) PreviewEmail(ctx context.Context, shopDomain, template string) (string, error) {
	charity, err := s.charityRepo.ForShop(ctx, shopDomain)
	if err != nil && !errors.Is(err, repository.ErrCharityNotFound) {
		return "", fmt.Errorf("load charity: %w", err)
	}

	shop := s.shopForBindings(ctx, shopDomain)
	bindings := receipt.Bindings(shop, charity, sampleDonation(shopDomain))
	bindings = receipt.OrderBinding(bindings, sampleOrderID, sampleOrderName)

	body, err := s.renderer.Render(template, bindings)
	if err != nil {
		return "", err
	}

	return string(body), nil
}

func (s *donationServiceImpl) TestEmail(ctx context.Context, shopDomain, template, recipient string) error {
	charity, err := s.charityRepo.ForShop(ctx, shopDomain)
	if err != nil {
		return fmt.Errorf("load charity: %w", err)
	}

	shop := s.shopForBindings(ctx, shopDomain)
	body, err := s.renderer.Render(template, receipt.Bindings(shop, charity, nil))
	if err != nil {
		return err
	}

	to := recipient
	if to == "" {
		to = shop.Email
	}

	if err := s.mailer.Send(ctx, to, charitySubject(charity), body); err != nil {
		return fmt.Errorf("deliver test email: %w", err)
	}

	return nil
}

func (s *donationServiceImpl) Export(ctx context.Context, shop string, start, end time.Time) ([]byte, error) {
	donations, err := s.donationRepo.Query(ctx, shop, start, end)
	if err != nil {
		return nil, fmt.Errorf("query donations: %w", err)
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write([]string{"order_id", "order_name", "amount", "status", "created_at"}); err != nil {
		return nil, fmt.Errorf("write header: %w", err)
	}

	for _, d := range donations {
		row := []string{
			strconv.FormatInt(d.OrderID, 10),
			d.OrderName,
			d.Amount.StringFixed(2),
			string(d.Status),
			d.CreatedAt.Format(time.RFC3339),
		}
		if err := w.Write(row); err != nil {
			return nil, fmt.Errorf("write row: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

func (s *donationServiceImpl) shopForBindings(ctx context.Context, domain string) *model.Shop {
	shop, err := s.shopRepo.Get(ctx, domain)
	if err != nil {
		return &model.Shop{Domain: domain}
	}
	return shop
}

const (
	sampleOrderID   = 1001
	sampleOrderName = "#1001"
)

var sampleAmount = decimal.NewFromInt(10)

// sampleDonation backs preview rendering so donation fields interpolate with
// plausible values. Never persisted.
func sampleDonation(shop string) *model.Donation {
	return &model.Donation{
		ID:        "preview",
		Shop:      shop,
		OrderID:   sampleOrderID,
		OrderName: sampleOrderName,
		Amount:    sampleAmount,
		Status:    model.StatusPending,
	}
}
