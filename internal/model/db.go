package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type Shop struct {
	Domain      string `gorm:"primaryKey;size:128;not null"` // apple.myshopify.com
	Name        string `gorm:"size:128"`
	Email       string `gorm:"size:128"`
	Currency    string `gorm:"size:8"`
	MoneyFormat string `gorm:"size:64"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type Charity struct {
	ID   uint   `gorm:"primaryKey"`
	Shop string `gorm:"size:128;uniqueIndex;not null"`
	Name string `gorm:"size:128;not null"`
	// registered charity number printed on receipts
	CharityID string `gorm:"size:64"`

	// minimum donation amount that earns a receipt; null means no minimum
	ReceiptThreshold decimal.NullDecimal `gorm:"type:decimal(12,2)"`

	EmailSubject        string `gorm:"size:256"`
	ReceiptTemplate     string
	VoidEmailTemplate   string
	RefundEmailTemplate string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Product marks a shop product as donation-bearing. Line items for these
// products are the ones that contribute to an order's donation amount.
type Product struct {
	ID        uint   `gorm:"primaryKey"`
	Shop      string `gorm:"size:128;uniqueIndex:idx_products_shop_product;not null"`
	ProductID int64  `gorm:"uniqueIndex:idx_products_shop_product;not null"`
	CreatedAt time.Time
}

type Donation struct {
	ID string `gorm:"primaryKey;size:36"`
	// (shop, order_id) is the idempotency key: a replayed order-creation
	// webhook must never produce a second row
	Shop      string `gorm:"size:128;uniqueIndex:idx_donations_shop_order;not null"`
	OrderID   int64  `gorm:"uniqueIndex:idx_donations_shop_order;not null"`
	OrderName string `gorm:"size:64"`
	Email     string `gorm:"size:128;not null"`

	Amount decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Status DonationStatus  `gorm:"size:16;index;not null"`

	DeliveredAt       *time.Time
	LastDeliveryError string

	CreatedAt time.Time
	UpdatedAt time.Time
}
