package aggregation

import (
	"github.com/sahelpay/sahelpay/internal/aggregation/domain"
	"github.com/sahelpay/sahelpay/internal/aggregation/repository"
	"github.com/sahelpay/sahelpay/internal/aggregation/service"
	txservice "github.com/sahelpay/sahelpay/internal/transaction/service"
	"go.uber.org/fx"
)

var Module = fx.Module("aggregation",
	fx.Provide(
		repository.Provide,
		service.New,
		func(s *txservice.Service) domain.TransactionRecorder { return s },
	),
)
