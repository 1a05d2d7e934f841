package notification

import (
	"github.com/verlyx/hub/internal/notification/repository"
	"github.com/verlyx/hub/internal/notification/service"
	"go.uber.org/fx"
)

var Module = fx.Module("notification.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
