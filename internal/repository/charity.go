package repository

import (
	"context"
	"errors"

	"charity-receipts/internal/model"

	"gorm.io/gorm"
)

// ErrCharityNotFound means the shop has no active charity configuration,
// either because it never installed the program or because it uninstalled.
// Callers must treat this as a hard skip, not a retryable error.
var ErrCharityNotFound = errors.New("charity not found")

type CharityRepository interface {
	ForShop(ctx context.Context, shop string) (*model.Charity, error)
}

type charityRepoImpl struct {
	db *gorm.DB
}

func NewCharityRepository(db *gorm.DB) CharityRepository {
	return &charityRepoImpl{
		db: db,
	}
}

func (r *charityRepoImpl) ForShop(ctx context.Context, shop string) (*model.Charity, error) {
	var charity model.Charity
	err := r.db.WithContext(ctx).
		Where("shop = ?", shop).
		First(&charity).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrCharityNotFound
	}
	if err != nil {
		return nil, err
	}

	return &charity, nil
}
