package organization

import (
	"github.com/verlyx/hub/internal/organization/repository"
	"github.com/verlyx/hub/internal/organization/service"
	"go.uber.org/fx"
)

var Module = fx.Module("organization.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
