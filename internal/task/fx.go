package task

import (
	"github.com/verlyx/hub/internal/task/repository"
	"github.com/verlyx/hub/internal/task/service"
	"go.uber.org/fx"
)

var Module = fx.Module("task.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
