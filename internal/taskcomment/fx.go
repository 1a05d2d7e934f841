package taskcomment

import (
	"github.com/verlyx/hub/internal/taskcomment/repository"
	"github.com/verlyx/hub/internal/taskcomment/service"
	"go.uber.org/fx"
)

var Module = fx.Module("taskcomment.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
