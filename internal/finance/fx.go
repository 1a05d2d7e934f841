package finance

import (
	"github.com/verlyx/hub/internal/finance/repository"
	"github.com/verlyx/hub/internal/finance/service"
	"go.uber.org/fx"
)

var Module = fx.Module("finance.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
