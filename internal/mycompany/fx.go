package mycompany

import (
	"github.com/verlyx/hub/internal/mycompany/repository"
	"github.com/verlyx/hub/internal/mycompany/service"
	"go.uber.org/fx"
)

var Module = fx.Module("mycompany.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
