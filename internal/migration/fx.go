package migration

import (
	"github.com/sahelpay/sahelpay/internal/config"
	"github.com/sahelpay/sahelpay/internal/seed"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

var Module = fx.Module("migrations",
	fx.Invoke(func(conn *gorm.DB, cfg config.Config) error {
		if err := RunMigrations(conn); err != nil {
			return err
		}

		// Outside production a demo merchant is seeded so the payment flow
		// works immediately after startup.
		if !cfg.IsProduction() {
			return seed.EnsureDemoMerchant(conn)
		}
		return nil
	}),
)
