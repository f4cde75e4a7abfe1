package service

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"charity-receipts/internal/model"
	"charity-receipts/internal/receipt"
	"charity-receipts/internal/repository"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

const (
	testShop      = "apple.myshopify.com"
	testProductID = int64(777)
)

type sentMail struct {
	to      string
	subject string
	body    string
}

type fakeMailer struct {
	mu      sync.Mutex
	sent    []sentMail
	failErr error
}

func (m *fakeMailer) Send(_ context.Context, to, subject string, body []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failErr != nil {
		return m.failErr
	}
	m.sent = append(m.sent, sentMail{to: to, subject: subject, body: string(body)})
	return nil
}

func (m *fakeMailer) sentCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sent)
}

func (m *fakeMailer) lastMail(t *testing.T) sentMail {
	t.Helper()
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.sent) == 0 {
		t.Fatal("no mail was sent")
	}
	return m.sent[len(m.sent)-1]
}

type testEnv struct {
	db              *gorm.DB
	mailer          *fakeMailer
	donationRepo    repository.DonationRepository
	webhookService  WebhookService
	donationService DonationService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("pool: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(&model.Shop{}, &model.Charity{}, &model.Product{}, &model.Donation{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	shopRepo := repository.NewShopRepository(db)
	charityRepo := repository.NewCharityRepository(db)
	productRepo := repository.NewProductRepository(db)
	donationRepo := repository.NewDonationRepository(db)
	renderer := receipt.NewRenderer()
	mailer := &fakeMailer{}
	log := zerolog.Nop()

	return &testEnv{
		db:           db,
		mailer:       mailer,
		donationRepo: donationRepo,
		webhookService: NewWebhookService(
			shopRepo, charityRepo, productRepo, donationRepo, renderer, mailer, log,
		),
		donationService: NewDonationService(
			shopRepo, charityRepo, donationRepo, renderer, mailer, log,
		),
	}
}

func (e *testEnv) seedShop(t *testing.T) {
	t.Helper()
	shop := &model.Shop{
		Domain:   testShop,
		Name:     "Apple",
		Email:    "owner@apple.example.com",
		Currency: "USD",
	}
	if err := e.db.Create(shop).Error; err != nil {
		t.Fatalf("seed shop: %v", err)
	}
}

func (e *testEnv) seedCharity(t *testing.T, mutate func(*model.Charity)) *model.Charity {
	t.Helper()
	charity := &model.Charity{
		Shop:      testShop,
		Name:      "Amnesty",
		CharityID: "12-3456",
	}
	if mutate != nil {
		mutate(charity)
	}
	if err := e.db.Create(charity).Error; err != nil {
		t.Fatalf("seed charity: %v", err)
	}
	return charity
}

func (e *testEnv) seedDonationProduct(t *testing.T) {
	t.Helper()
	product := &model.Product{Shop: testShop, ProductID: testProductID}
	if err := e.db.Create(product).Error; err != nil {
		t.Fatalf("seed product: %v", err)
	}
}

func (e *testEnv) donationCount(t *testing.T) int64 {
	t.Helper()
	var count int64
	if err := e.db.Model(&model.Donation{}).Count(&count).Error; err != nil {
		t.Fatalf("count donations: %v", err)
	}
	return count
}

func threshold(amount string) decimal.NullDecimal {
	return decimal.NullDecimal{Decimal: decimal.RequireFromString(amount), Valid: true}
}
