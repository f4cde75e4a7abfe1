package service

import (
	"context"
	"errors"
	"fmt"

	"charity-receipts/internal/dto"
	"charity-receipts/internal/model"
	"charity-receipts/internal/receipt"
	"charity-receipts/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Outcome classifies how the pipeline finished processing a webhook event.
// Skip outcomes are expected traffic and never escalate; fail outcomes leave
// a pending donation behind for manual resend.
type Outcome string

const (
	OutcomeDelivered Outcome = "delivered"

	OutcomeSkipNoRecipient    Outcome = "skip:no-recipient"
	OutcomeSkipNoDonation     Outcome = "skip:no-donation"
	OutcomeSkipUnconfigured   Outcome = "skip:unconfigured"
	OutcomeSkipBelowThreshold Outcome = "skip:below-threshold"
	OutcomeSkipDuplicate      Outcome = "skip:duplicate"
	OutcomeSkipTerminal       Outcome = "skip:already-terminal"

	OutcomeFailRender   Outcome = "fail:render-error"
	OutcomeFailDelivery Outcome = "fail:delivery-error"
)

func (o Outcome) Skipped() bool {
	switch o {
	case OutcomeSkipNoRecipient, OutcomeSkipNoDonation, OutcomeSkipUnconfigured,
		OutcomeSkipBelowThreshold, OutcomeSkipDuplicate, OutcomeSkipTerminal:
		return true
	}
	return false
}

func (o Outcome) Failed() bool {
	return o == OutcomeFailRender || o == OutcomeFailDelivery
}

type WebhookService interface {
	ProcessOrderWebhook(ctx context.Context, shop string, order *dto.Order) (Outcome, error)
	ProcessCancelWebhook(ctx context.Context, shop string, order *dto.Order) (Outcome, error)
	ProcessRefundWebhook(ctx context.Context, shop string, order *dto.Order) (Outcome, error)
}

// Mailer is the delivery transport consumed by the pipeline. Satisfied by
// client.MailClient.
type Mailer interface {
	Send(ctx context.Context, to, subject string, body []byte) error
}

type webhookServiceImpl struct {
	shopRepo     repository.ShopRepository
	charityRepo  repository.CharityRepository
	productRepo  repository.ProductRepository
	donationRepo repository.DonationRepository
	renderer     *receipt.Renderer
	mailer       Mailer
	logger       zerolog.Logger
}

func NewWebhookService(
	shopRepo repository.ShopRepository,
	charityRepo repository.CharityRepository,
	productRepo repository.ProductRepository,
	donationRepo repository.DonationRepository,
	renderer *receipt.Renderer,
	mailer Mailer,
	logger zerolog.Logger,
) WebhookService {
	return &webhookServiceImpl{
		shopRepo:     shopRepo,
		charityRepo:  charityRepo,
		productRepo:  productRepo,
		donationRepo: donationRepo,
		renderer:     renderer,
		mailer:       mailer,
		logger:       logger,
	}
}

// ProcessOrderWebhook runs the order-creation pipeline: validate recipient,
// compute the donation amount, check the shop's charity configuration and
// threshold, persist exactly once, then render and deliver the receipt.
//
// Persistence commits before rendering starts, so the slow external calls
// never run inside the ledger's critical section. A duplicate delivery of the
// same order is a no-op.
func (s *webhookServiceImpl) ProcessOrderWebhook(ctx context.Context, shop string, order *dto.Order) (Outcome, error) {
	log := s.logger.With().Str("shop", shop).Int64("order_id", order.ID).Logger()

	email := order.CustomerEmail()
	if email == "" {
		log.Debug().Msg("order has no customer email, skipping")
		return OutcomeSkipNoRecipient, nil
	}

	productIDs, err := s.productRepo.DonationProductIDs(ctx, shop)
	if err != nil {
		return "", fmt.Errorf("load donation products: %w", err)
	}

	amounts := DonationAmounts(order, productIDs)
	total := SumAmounts(amounts)
	if len(amounts) == 0 || !total.IsPositive() {
		log.Debug().Msg("order carries no donation amount, skipping")
		return OutcomeSkipNoDonation, nil
	}

	charity, err := s.charityRepo.ForShop(ctx, shop)
	if errors.Is(err, repository.ErrCharityNotFound) {
		log.Info().Msg("shop has no charity configuration, skipping")
		return OutcomeSkipUnconfigured, nil
	}
	if err != nil {
		return "", fmt.Errorf("load charity: %w", err)
	}

	// Threshold gate is inclusive: an order summing to exactly the
	// threshold earns a receipt. Sub-threshold donations are not persisted.
	if charity.ReceiptThreshold.Valid && total.LessThan(charity.ReceiptThreshold.Decimal) {
		log.Debug().
			Str("amount", total.String()).
			Str("threshold", charity.ReceiptThreshold.Decimal.String()).
			Msg("donation below receipt threshold, skipping")
		return OutcomeSkipBelowThreshold, nil
	}

	donation := &model.Donation{
		ID:        uuid.NewString(),
		Shop:      shop,
		OrderID:   order.ID,
		OrderName: order.Name,
		Email:     email,
		Amount:    total,
		Status:    model.StatusPending,
	}

	created, existing, err := s.donationRepo.CreateIfAbsent(ctx, donation)
	if err != nil {
		return "", fmt.Errorf("create donation: %w", err)
	}
	if !created {
		log.Info().Str("donation_id", existing.ID).Msg("duplicate webhook delivery, skipping")
		return OutcomeSkipDuplicate, nil
	}

	return s.renderAndDeliver(ctx, shop, charity, donation, charityReceiptTemplate(charity), charitySubject(charity))
}

// ProcessCancelWebhook voids the order's donation and sends the charity's
// void notice. A missing donation or an already-terminal one is a skip.
func (s *webhookServiceImpl) ProcessCancelWebhook(ctx context.Context, shop string, order *dto.Order) (Outcome, error) {
	return s.terminate(ctx, shop, order, model.StatusVoid)
}

// ProcessRefundWebhook marks the order's donation refunded and sends the
// charity's refund notice.
func (s *webhookServiceImpl) ProcessRefundWebhook(ctx context.Context, shop string, order *dto.Order) (Outcome, error) {
	return s.terminate(ctx, shop, order, model.StatusRefunded)
}

func (s *webhookServiceImpl) terminate(ctx context.Context, shop string, order *dto.Order, status model.DonationStatus) (Outcome, error) {
	log := s.logger.With().Str("shop", shop).Int64("order_id", order.ID).Logger()

	donation, err := s.donationRepo.FindByOrder(ctx, shop, order.ID)
	if errors.Is(err, repository.ErrDonationNotFound) {
		log.Debug().Msg("no donation for order, skipping")
		return OutcomeSkipNoDonation, nil
	}
	if err != nil {
		return "", fmt.Errorf("find donation: %w", err)
	}

	err = s.donationRepo.MarkStatus(ctx, donation.ID, status)
	if errors.Is(err, repository.ErrInvalidTransition) {
		log.Info().Str("status", string(donation.Status)).Msg("donation already terminal, skipping")
		return OutcomeSkipTerminal, nil
	}
	if err != nil {
		return "", fmt.Errorf("mark donation %s: %w", status, err)
	}
	donation.Status = status

	charity, err := s.charityRepo.ForShop(ctx, shop)
	if errors.Is(err, repository.ErrCharityNotFound) {
		// status change stands even when the notice cannot be sent
		return OutcomeSkipUnconfigured, nil
	}
	if err != nil {
		return "", fmt.Errorf("load charity: %w", err)
	}

	template := charity.VoidEmailTemplate
	if status == model.StatusRefunded {
		template = charity.RefundEmailTemplate
	}
	if template == "" {
		return OutcomeDelivered, nil
	}

	return s.renderAndDeliver(ctx, shop, charity, donation, template, charitySubject(charity))
}

// renderAndDeliver runs the expensive tail of the pipeline: render the
// template, dispatch the email and, for deliverable donations, record the
// sent transition. Failures leave the donation as-is with the error noted.
func (s *webhookServiceImpl) renderAndDeliver(ctx context.Context, shopDomain string, charity *model.Charity, donation *model.Donation, template, subject string) (Outcome, error) {
	log := s.logger.With().Str("shop", shopDomain).Str("donation_id", donation.ID).Logger()

	shop := s.lookupShop(ctx, shopDomain)

	body, err := s.renderer.Render(template, receipt.Bindings(shop, charity, donation))
	if err != nil {
		log.Error().Err(err).Msg("receipt render failed")
		if recordErr := s.donationRepo.RecordDeliveryFailure(ctx, donation.ID, err.Error()); recordErr != nil {
			log.Error().Err(recordErr).Msg("record render failure")
		}
		return OutcomeFailRender, fmt.Errorf("render receipt: %w", err)
	}

	if err := s.mailer.Send(ctx, donation.Email, subject, body); err != nil {
		log.Error().Err(err).Msg("receipt delivery failed")
		if recordErr := s.donationRepo.RecordDeliveryFailure(ctx, donation.ID, err.Error()); recordErr != nil {
			log.Error().Err(recordErr).Msg("record delivery failure")
		}
		return OutcomeFailDelivery, fmt.Errorf("deliver receipt: %w", err)
	}

	if donation.Status.Deliverable() {
		if err := s.donationRepo.MarkSent(ctx, donation.ID); err != nil {
			return "", fmt.Errorf("mark donation sent: %w", err)
		}
	}

	log.Info().Str("to", donation.Email).Msg("receipt delivered")
	return OutcomeDelivered, nil
}

// lookupShop tolerates missing or stale shop data: templates that reference
// shop fields simply render them empty.
func (s *webhookServiceImpl) lookupShop(ctx context.Context, domain string) *model.Shop {
	shop, err := s.shopRepo.Get(ctx, domain)
	if err != nil {
		if !errors.Is(err, repository.ErrShopNotFound) {
			s.logger.Warn().Err(err).Str("shop", domain).Msg("shop lookup failed")
		}
		return &model.Shop{Domain: domain}
	}
	return shop
}

func charityReceiptTemplate(charity *model.Charity) string {
	if charity.ReceiptTemplate != "" {
		return charity.ReceiptTemplate
	}
	return receipt.DefaultReceiptTemplate
}

func charitySubject(charity *model.Charity) string {
	if charity.EmailSubject != "" {
		return charity.EmailSubject
	}
	return receipt.DefaultEmailSubject
}
