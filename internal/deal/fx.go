package deal

import (
	"github.com/verlyx/hub/internal/deal/repository"
	"github.com/verlyx/hub/internal/deal/service"
	"go.uber.org/fx"
)

var Module = fx.Module("deal.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
