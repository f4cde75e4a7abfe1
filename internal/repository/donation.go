package repository

import (
	"context"
	"errors"
	"time"

	"charity-receipts/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrDonationNotFound = errors.New("donation not found")

	// ErrInvalidTransition is returned when a status change would move a
	// donation out of a terminal state, e.g. marking a void donation sent.
	ErrInvalidTransition = errors.New("invalid donation status transition")
)

type DonationRepository interface {
	// CreateIfAbsent inserts the donation unless a row already exists for
	// its (shop, order_id) pair. It is atomic with respect to concurrent
	// webhook deliveries for the same order: exactly one caller observes
	// created=true, every other caller gets the existing record.
	CreateIfAbsent(ctx context.Context, donation *model.Donation) (created bool, existing *model.Donation, err error)
	MarkSent(ctx context.Context, donationID string) error
	MarkStatus(ctx context.Context, donationID string, status model.DonationStatus) error
	RecordDeliveryFailure(ctx context.Context, donationID string, sendErr string) error
	FindByID(ctx context.Context, donationID string) (*model.Donation, error)
	FindByOrder(ctx context.Context, shop string, orderID int64) (*model.Donation, error)
	Query(ctx context.Context, shop string, start, end time.Time) ([]*model.Donation, error)
}

type donationRepoImpl struct {
	db *gorm.DB
}

func NewDonationRepository(db *gorm.DB) DonationRepository {
	return &donationRepoImpl{
		db: db,
	}
}

func (r *donationRepoImpl) CreateIfAbsent(ctx context.Context, donation *model.Donation) (bool, *model.Donation, error) {
	result := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "shop"}, {Name: "order_id"}},
		DoNothing: true,
	}).Create(donation)
	if result.Error != nil {
		return false, nil, result.Error
	}

	if result.RowsAffected == 0 {
		existing, err := r.FindByOrder(ctx, donation.Shop, donation.OrderID)
		if err != nil {
			return false, nil, err
		}
		return false, existing, nil
	}

	return true, donation, nil
}

func (r *donationRepoImpl) MarkSent(ctx context.Context, donationID string) error {
	now := time.Now()
	result := r.db.WithContext(ctx).Model(&model.Donation{}).
		Where(`
			id = ?
			AND status IN ?
		`,
			donationID,
			[]model.DonationStatus{model.StatusPending, model.StatusSent},
		).
		Updates(map[string]interface{}{
			"status":              model.StatusSent,
			"delivered_at":        now,
			"last_delivery_error": "",
			"updated_at":          now,
		})

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return r.transitionFailure(ctx, donationID)
	}

	return nil
}

func (r *donationRepoImpl) MarkStatus(ctx context.Context, donationID string, status model.DonationStatus) error {
	result := r.db.WithContext(ctx).Model(&model.Donation{}).
		Where(`
			id = ?
			AND status IN ?
		`,
			donationID,
			[]model.DonationStatus{model.StatusPending, model.StatusSent},
		).
		Updates(map[string]interface{}{
			"status":     status,
			"updated_at": time.Now(),
		})

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return r.transitionFailure(ctx, donationID)
	}

	return nil
}

// transitionFailure distinguishes a missing row from a row stuck in a
// terminal state after a guarded update matched nothing.
func (r *donationRepoImpl) transitionFailure(ctx context.Context, donationID string) error {
	_, err := r.FindByID(ctx, donationID)
	if err != nil {
		return err
	}
	return ErrInvalidTransition
}

func (r *donationRepoImpl) RecordDeliveryFailure(ctx context.Context, donationID string, sendErr string) error {
	return r.db.WithContext(ctx).Model(&model.Donation{}).
		Where("id = ?", donationID).
		Updates(map[string]interface{}{
			"last_delivery_error": sendErr,
			"updated_at":          time.Now(),
		}).Error
}

func (r *donationRepoImpl) FindByID(ctx context.Context, donationID string) (*model.Donation, error) {
	var donation model.Donation
	err := r.db.WithContext(ctx).
		Where("id = ?", donationID).
		First(&donation).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrDonationNotFound
	}
	if err != nil {
		return nil, err
	}

	return &donation, nil
}

func (r *donationRepoImpl) FindByOrder(ctx context.Context, shop string, orderID int64) (*model.Donation, error) {
	var donation model.Donation
	err := r.db.WithContext(ctx).
		Where("shop = ? AND order_id = ?", shop, orderID).
		First(&donation).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrDonationNotFound
	}
	if err != nil {
		return nil, err
	}

	return &donation, nil
}

// Query returns the shop's donations with created_at inside [start, end],
// boundaries included, ordered by creation time.
func (r *donationRepoImpl) Query(ctx context.Context, shop string, start, end time.Time) ([]*model.Donation, error) {
	var donations []*model.Donation
	err := r.db.WithContext(ctx).
		Where("shop = ? AND created_at >= ? AND created_at <= ?", shop, start, end).
		Order("created_at ASC").
		Find(&donations).Error

	if err != nil {
		return nil, err
	}

	return donations, nil
}
