package migration

import (
	"errors"

	aggregationdomain "github.com/sahelpay/sahelpay/internal/aggregation/domain"
	merchantdomain "github.com/sahelpay/sahelpay/internal/merchant/domain"
	transactiondomain "github.com/sahelpay/sahelpay/internal/transaction/domain"
	"gorm.io/gorm"
)

// RunMigrations creates or updates the core tables so a fresh install is
// usable out of the box. Schemas are derived from the gorm models, which
// keeps the three supported dialects in sync.
func RunMigrations(db *gorm.DB) error {
	if db == nil {
		return errors.New("migration database handle is required")
	}

	return db.AutoMigrate(
		&merchantdomain.Merchant{},
		&transactiondomain.Transaction{},
		&aggregationdomain.Aggregation{},
		&aggregationdomain.ActivityLog{},
	)
}
