package repository

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/sahelpay/sahelpay/internal/merchant/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, merchant *domain.Merchant) error {
	return db.WithContext(ctx).Create(merchant).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Merchant, error) {
	var merchant domain.Merchant
	err := db.WithContext(ctx).
		Where("id = ?", id).
		Take(&merchant).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &merchant, nil
}

func (r *repo) FindFirstEligible(ctx context.Context, db *gorm.DB, requireVerified bool) (*domain.Merchant, error) {
	stmt := db.WithContext(ctx).Where("is_active = ?", true)
	if requireVerified {
		stmt = stmt.Where("is_verified = ?", true)
	}

	var merchant domain.Merchant
	err := stmt.Order("created_at asc, id asc").Take(&merchant).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &merchant, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB) ([]*domain.Merchant, error) {
	var merchants []*domain.Merchant
	err := db.WithContext(ctx).
		Order("created_at desc, id desc").
		Find(&merchants).Error
	if err != nil {
		return nil, err
	}
	return merchants, nil
}

// Counter updates are single UPDATE expressions so concurrent aggregations
// against the same merchant cannot lose increments.
func (r *repo) IncrementCounters(ctx context.Context, db *gorm.DB, id snowflake.ID, netAmount int64) error {
	return db.WithContext(ctx).Exec(
		`UPDATE merchants
		 SET total_transactions = total_transactions + 1,
		     total_revenue = total_revenue + ?,
		     balance = balance + ?,
		     updated_at = ?
		 WHERE id = ?`,
		netAmount,
		netAmount,
		time.Now().UTC(),
		id,
	).Error
}

func (r *repo) DecrementRevenue(ctx context.Context, db *gorm.DB, id snowflake.ID, netAmount int64) error {
	return db.WithContext(ctx).Exec(
		`UPDATE merchants
		 SET total_revenue = total_revenue - ?,
		     balance = balance - ?,
		     updated_at = ?
		 WHERE id = ?`,
		netAmount,
		netAmount,
		time.Now().UTC(),
		id,
	).Error
}
