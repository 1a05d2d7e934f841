package project

import (
	"github.com/verlyx/hub/internal/project/repository"
	"github.com/verlyx/hub/internal/project/service"
	"go.uber.org/fx"
)

var Module = fx.Module("project.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
