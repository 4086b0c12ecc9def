package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, merchant *Merchant) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Merchant, error)
	// FindFirstEligible returns the oldest active merchant, restricted to
	// verified merchants when requireVerified is set. Nil when none exists.
	FindFirstEligible(ctx context.Context, db *gorm.DB, requireVerified bool) (*Merchant, error)
	List(ctx context.Context, db *gorm.DB) ([]*Merchant, error)
	// IncrementCounters atomically bumps the transaction count and revenue.
	IncrementCounters(ctx context.Context, db *gorm.DB, id snowflake.ID, netAmount int64) error
	// DecrementRevenue atomically reduces revenue by netAmount after a refund.
	DecrementRevenue(ctx context.Context, db *gorm.DB, id snowflake.ID, netAmount int64) error
}
