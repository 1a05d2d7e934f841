package pdfgen

import (
	"github.com/verlyx/hub/internal/pdfgen/repository"
	"github.com/verlyx/hub/internal/pdfgen/service"
	"go.uber.org/fx"
)

var Module = fx.Module("pdfgen.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
