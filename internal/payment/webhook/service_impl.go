package webhook

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/verlyx/hub/internal/config"
	obsmetrics "github.com/verlyx/hub/internal/observability/metrics"
	"github.com/verlyx/hub/internal/payment/adapters"
	paymentdomain "github.com/verlyx/hub/internal/payment/domain"
	paymentservice "github.com/verlyx/hub/internal/payment/service"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type Params struct {
	fx.In

	Log        *zap.Logger
	PaymentSvc *paymentservice.Service
	Adapters   *adapters.Registry
	Cfg        config.Config
	ObsMetrics *obsmetrics.Metrics `optional:"true"`
}

type Service struct {
	log        *zap.Logger
	paymentSvc *paymentservice.Service
	adapters   *adapters.Registry
	cfg        config.DLocalConfig
	obsMetrics *obsmetrics.Metrics
}

func NewService(p Params) paymentdomain.WebhookService {
	svc := &Service{
		log:        p.Log.Named("payment.webhook"),
		paymentSvc: p.PaymentSvc,
		adapters:   p.Adapters,
		cfg:        p.Cfg.DLocal,
		obsMetrics: p.ObsMetrics,
	}
	if strings.TrimSpace(svc.cfg.WebhookSecret) == "" {
		svc.log.Warn("DLOCAL_GO_WEBHOOK_SECRET not set, webhook signatures are not verified")
	}
	return svc
}

// IngestWebhook verifies, parses and applies one gateway notification.
// Every call is counted under exactly one status.
func (s *Service) IngestWebhook(ctx context.Context, provider string, payload []byte, headers http.Header) error {
	provider = strings.ToLower(strings.TrimSpace(provider))
	if provider == "" {
		return paymentdomain.ErrInvalidProvider
	}
	if s.adapters == nil || !s.adapters.ProviderExists(provider) {
		return paymentdomain.ErrProviderNotFound
	}

	status := "processed"
	defer func() { s.obsMetrics.RecordWebhookEvent(ctx, provider, status) }()

	if !json.Valid(payload) {
		status = "invalid_payload"
		return paymentdomain.ErrInvalidPayload
	}
	gateway, err := s.gateway(provider)
	if err != nil {
		status = "error"
		return err
	}
	if err := gateway.Verify(ctx, payload, headers); err != nil {
		status = "invalid_signature"
		s.log.Warn("webhook signature rejected", zap.String("provider", provider))
		return err
	}
	event, err := gateway.Parse(ctx, payload)
	if err != nil {
		status = "invalid_payload"
		return err
	}
	if event.RawPayload == nil {
		event.RawPayload = payload
	}

	log := s.log.With(
		zap.String("provider", provider),
		zap.String("order_id", event.OrderID),
		zap.String("status", event.Status),
	)
	if err := s.paymentSvc.ApplyEvent(ctx, event); err != nil {
		status = "error"
		if errors.Is(err, paymentdomain.ErrNotFound) {
			status = "unknown_order"
		}
		log.Warn("webhook not applied", zap.Error(err))
		return err
	}
	log.Info("webhook applied")
	return nil
}

func (s *Service) gateway(provider string) (paymentdomain.Gateway, error) {
	if s.paymentSvc == nil {
		return nil, errors.New("payment service unavailable")
	}
	return s.adapters.NewAdapter(provider, paymentdomain.AdapterConfig{
		APIURL:        s.cfg.APIURL,
		APIKey:        s.cfg.APIKey,
		SecretKey:     s.cfg.SecretKey,
		WebhookSecret: s.cfg.WebhookSecret,
	})
}
