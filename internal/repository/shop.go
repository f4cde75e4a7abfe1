package repository

import (
	"context"
	"errors"

	"charity-receipts/internal/model"

	"gorm.io/gorm"
)

var ErrShopNotFound = errors.New("shop not found")

type ShopRepository interface {
	Get(ctx context.Context, domain string) (*model.Shop, error)
}

type shopRepoImpl struct {
	db *gorm.DB
}

func NewShopRepository(db *gorm.DB) ShopRepository {
	return &shopRepoImpl{
		db: db,
	}
}

func (r *shopRepoImpl) Get(ctx context.Context, domain string) (*model.Shop, error) {
	var shop model.Shop
	err := r.db.WithContext(ctx).
		Where("domain = ?", domain).
		First(&shop).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrShopNotFound
	}
	if err != nil {
		return nil, err
	}

	return &shop, nil
}
