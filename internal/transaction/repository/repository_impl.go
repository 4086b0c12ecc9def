package repository

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/sahelpay/sahelpay/internal/transaction/domain"
	"github.com/sahelpay/sahelpay/pkg/db/pagination"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, tx *domain.Transaction) error {
	return db.WithContext(ctx).Create(tx).Error
}

func (r *repo) FindByTransactionID(ctx context.Context, db *gorm.DB, transactionID string) (*domain.Transaction, error) {
	var tx domain.Transaction
	err := db.WithContext(ctx).
		Where("transaction_id = ?", transactionID).
		Take(&tx).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &tx, nil
}

func (r *repo) FindByProviderTransactionID(ctx context.Context, db *gorm.DB, provider, providerTransactionID string) (*domain.Transaction, error) {
	var tx domain.Transaction
	err := db.WithContext(ctx).
		Where("provider = ? AND provider_transaction_id = ?", provider, providerTransactionID).
		Take(&tx).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &tx, nil
}

func (r *repo) UpdateStatus(ctx context.Context, db *gorm.DB, id snowflake.ID, status domain.Status, failureReason string, at time.Time) error {
	updates := map[string]any{
		"status":     status,
		"updated_at": at,
	}
	switch status {
	case domain.StatusCompleted:
		updates["completed_at"] = at
	case domain.StatusFailed:
		updates["failed_at"] = at
		updates["failure_reason"] = failureReason
	}

	return db.WithContext(ctx).
		Model(&domain.Transaction{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (r *repo) MarkRefunded(ctx context.Context, db *gorm.DB, id snowflake.ID, refundID string, amount int64, reason string, at time.Time) error {
	return db.WithContext(ctx).
		Model(&domain.Transaction{}).
		Where("id = ? AND status = ?", id, domain.StatusCompleted).
		Updates(map[string]any{
			"status":          domain.StatusRefunded,
			"refund_id":       refundID,
			"refunded_amount": amount,
			"refund_reason":   reason,
			"refunded_at":     at,
			"updated_at":      at,
		}).Error
}

func (r *repo) List(ctx context.Context, db *gorm.DB, filter domain.ListFilter, page pagination.Pagination) ([]*domain.Transaction, error) {
	stmt := db.WithContext(ctx).Model(&domain.Transaction{})
	if filter.MerchantID != 0 {
		stmt = stmt.Where("merchant_id = ?", filter.MerchantID)
	}
	if filter.Provider != "" {
		stmt = stmt.Where("provider = ?", filter.Provider)
	}
	if filter.Status != "" {
		stmt = stmt.Where("status = ?", filter.Status)
	}

	if page.PageToken != "" {
		cursor, err := pagination.DecodeCursor(page.PageToken)
		if err != nil {
			return nil, err
		}
		if cursor.CreatedAt != "" && cursor.ID != "" {
			stmt = stmt.Where("(created_at, id) < (?, ?)", cursor.CreatedAt, cursor.ID)
		}
	}

	limit := page.PageSize
	if limit <= 0 {
		limit = 20
	}

	var transactions []*domain.Transaction
	err := stmt.
		Order("created_at desc, id desc").
		Limit(limit + 1).
		Find(&transactions).Error
	if err != nil {
		return nil, err
	}
	return transactions, nil
}
