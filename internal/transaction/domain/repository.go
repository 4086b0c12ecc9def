package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/sahelpay/sahelpay/pkg/db/pagination"
	"gorm.io/gorm"
)

type ListFilter struct {
	MerchantID snowflake.ID
	Provider   string
	Status     Status
}

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, tx *Transaction) error
	FindByTransactionID(ctx context.Context, db *gorm.DB, transactionID string) (*Transaction, error)
	FindByProviderTransactionID(ctx context.Context, db *gorm.DB, provider, providerTransactionID string) (*Transaction, error)
	UpdateStatus(ctx context.Context, db *gorm.DB, id snowflake.ID, status Status, failureReason string, at time.Time) error
	MarkRefunded(ctx context.Context, db *gorm.DB, id snowflake.ID, refundID string, amount int64, reason string, at time.Time) error
	List(ctx context.Context, db *gorm.DB, filter ListFilter, page pagination.Pagination) ([]*Transaction, error)
}
