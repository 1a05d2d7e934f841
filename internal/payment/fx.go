package payment

import (
	"github.com/verlyx/hub/internal/config"
	"github.com/verlyx/hub/internal/payment/adapters"
	"github.com/verlyx/hub/internal/payment/adapters/dlocal"
	"github.com/verlyx/hub/internal/payment/domain"
	"github.com/verlyx/hub/internal/payment/repository"
	paymentservice "github.com/verlyx/hub/internal/payment/service"
	"github.com/verlyx/hub/internal/payment/webhook"
	"go.uber.org/fx"
)

var Module = fx.Module("payment.service",
	fx.Provide(repository.Provide),
	fx.Provide(func() *adapters.Registry {
		return adapters.NewRegistry(
			dlocal.NewFactory(),
		)
	}),
	fx.Provide(provideGateway),
	fx.Provide(paymentservice.NewService),
	fx.Provide(func(svc *paymentservice.Service) domain.Service { return svc }),
	fx.Provide(webhook.NewService),
)

func provideGateway(cfg config.Config, registry *adapters.Registry) (domain.Gateway, error) {
	return registry.NewAdapter(domain.ProviderDLocalGo, domain.AdapterConfig{
		APIURL:        cfg.DLocal.APIURL,
		APIKey:        cfg.DLocal.APIKey,
		SecretKey:     cfg.DLocal.SecretKey,
		WebhookSecret: cfg.DLocal.WebhookSecret,
	})
}
