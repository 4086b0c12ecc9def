package transaction

import (
	"github.com/sahelpay/sahelpay/internal/transaction/domain"
	"github.com/sahelpay/sahelpay/internal/transaction/repository"
	"github.com/sahelpay/sahelpay/internal/transaction/service"
	"go.uber.org/fx"
)

var Module = fx.Module("transaction",
	fx.Provide(
		repository.Provide,
		service.New,
		func(s *service.Service) domain.Service { return s },
	),
)
