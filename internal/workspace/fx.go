package workspace

import (
	"github.com/verlyx/hub/internal/workspace/repository"
	"github.com/verlyx/hub/internal/workspace/service"
	"go.uber.org/fx"
)

var Module = fx.Module("workspace.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
