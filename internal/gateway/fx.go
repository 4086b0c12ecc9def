package gateway

import (
	"github.com/sahelpay/sahelpay/internal/commission"
	"github.com/sahelpay/sahelpay/internal/gateway/domain"
	"github.com/sahelpay/sahelpay/internal/gateway/mtn"
	"github.com/sahelpay/sahelpay/internal/gateway/orange"
	"github.com/sahelpay/sahelpay/internal/gateway/wave"
	"go.uber.org/fx"
)

var Module = fx.Module("gateway",
	fx.Provide(domain.RandomSimulator),
	fx.Provide(func(calc *commission.Calculator, sim domain.Simulator) *Registry {
		return NewRegistry(
			orange.New(calc, sim),
			mtn.New(calc, sim),
			wave.New(calc, sim),
		)
	}),
)
