package auth

import (
	"github.com/verlyx/hub/internal/auth/repository"
	"github.com/verlyx/hub/internal/auth/service"
	"github.com/verlyx/hub/internal/auth/token"
	"go.uber.org/fx"
)

var Module = fx.Module("auth.service",
	fx.Provide(repository.New),
	fx.Provide(token.NewManager),
	fx.Provide(service.New),
)
