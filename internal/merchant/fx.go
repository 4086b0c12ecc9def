package merchant

import (
	"github.com/sahelpay/sahelpay/internal/merchant/repository"
	"github.com/sahelpay/sahelpay/internal/merchant/service"
	"go.uber.org/fx"
)

var Module = fx.Module("merchant.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
