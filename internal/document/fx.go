package document

import (
	"github.com/verlyx/hub/internal/document/repository"
	"github.com/verlyx/hub/internal/document/service"
	"go.uber.org/fx"
)

var Module = fx.Module("document.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
