package seed

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	merchantdomain "github.com/sahelpay/sahelpay/internal/merchant/domain"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	demoMerchantName  = "SahelPay Demo Shop"
	demoMerchantEmail = "demo@sahelpay.bf"
)

// EnsureDemoMerchant seeds one active, verified merchant so a fresh install
// can process payments immediately. Idempotent: does nothing when any
// merchant already exists.
func EnsureDemoMerchant(db *gorm.DB) error {
	if db == nil {
		return errors.New("seed database handle is required")
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		return err
	}

	ctx := context.Background()
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&merchantdomain.Merchant{}).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return nil
		}

		now := time.Now().UTC()
		return tx.Create(&merchantdomain.Merchant{
			ID:           node.Generate(),
			BusinessName: demoMerchantName,
			BusinessType: merchantdomain.BusinessTypeCompany,
			Description:  "Seeded merchant for local development",
			ContactEmail: demoMerchantEmail,
			IsActive:     true,
			IsVerified:   true,
			Providers: datatypes.JSONMap{
				"orange_money": map[string]any{"enabled": true, "priority": 1},
				"mtn_money":    map[string]any{"enabled": true, "priority": 2},
				"wave":         map[string]any{"enabled": true, "priority": 3},
			},
			CreatedAt: now,
			UpdatedAt: now,
		}).Error
	})
}
