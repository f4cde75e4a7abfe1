package repository

import (
	"context"

	"charity-receipts/internal/model"

	"gorm.io/gorm"
)

type ProductRepository interface {
	// DonationProductIDs returns the product ids the shop has registered as
	// donation-bearing. An empty set means no order can produce a donation.
	DonationProductIDs(ctx context.Context, shop string) (map[int64]struct{}, error)
}

type productRepoImpl struct {
	db *gorm.DB
}

func NewProductRepository(db *gorm.DB) ProductRepository {
	return &productRepoImpl{
		db: db,
	}
}

func (r *productRepoImpl) DonationProductIDs(ctx context.Context, shop string) (map[int64]struct{}, error) {
	var ids []int64
	err := r.db.WithContext(ctx).Model(&model.Product{}).
		Where("shop = ?", shop).
		Pluck("product_id", &ids).Error

	if err != nil {
		return nil, err
	}

	set := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}

	return set, nil
}
