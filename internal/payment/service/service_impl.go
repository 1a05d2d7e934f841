package service

import (
	"context"
	"fmt"
	"math"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/verlyx/hub/internal/authorization"
	"github.com/verlyx/hub/internal/clock"
	"github.com/verlyx/hub/internal/companycontext"
	"github.com/verlyx/hub/internal/config"
	"github.com/verlyx/hub/internal/events"
	notificationdomain "github.com/verlyx/hub/internal/notification/domain"
	obsmetrics "github.com/verlyx/hub/internal/observability/metrics"
	"github.com/verlyx/hub/internal/payment/domain"
	"github.com/verlyx/hub/internal/ratelimit"
	"github.com/verlyx/hub/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	orderIDAlphabet = "0123456789abcdefghijklmnopqrstuvwxyz"
	orderIDAttempts = 3
	lockTTL         = time.Minute
	defaultPayer    = "noreply@verlyx.com"
	defaultSubject  = "Pago Verlyx"
)

type Params struct {
	fx.In

	DB            *gorm.DB
	Log           *zap.Logger
	GenID         *snowflake.Node
	Repo          domain.Repository
	Authz         authorization.Service
	Clock         clock.Clock
	Cfg           config.Config
	Payments      *config.PaymentsConfigHolder
	Gateway       domain.Gateway             `optional:"true"`
	Locker        ratelimit.Locker           `optional:"true"`
	Publisher     events.Publisher           `optional:"true"`
	Notifications notificationdomain.Service `optional:"true"`
	ObsMetrics    *obsmetrics.Metrics        `optional:"true"`
}

type Service struct {
	db            *gorm.DB
	log           *zap.Logger
	genID         *snowflake.Node
	repo          domain.Repository
	authz         authorization.Service
	clock         clock.Clock
	cfg           config.Config
	payments      *config.PaymentsConfigHolder
	gateway       domain.Gateway
	locker        ratelimit.Locker
	publisher     events.Publisher
	notifications notificationdomain.Service
	obsMetrics    *obsmetrics.Metrics
}

func NewService(p Params) *Service {
	clk := p.Clock
	if clk == nil {
		clk = clock.SystemClock{}
	}
	locker := p.Locker
	if locker == nil {
		locker = ratelimit.NewMemoryLocker(clk)
	}
	svc := &Service{
		db:            p.DB,
		log:           p.Log.Named("payment.service"),
		genID:         p.GenID,
		repo:          p.Repo,
		authz:         p.Authz,
		clock:         clk,
		cfg:           p.Cfg,
		payments:      p.Payments,
		gateway:       p.Gateway,
		locker:        locker,
		publisher:     p.Publisher,
		notifications: p.Notifications,
		obsMetrics:    p.ObsMetrics,
	}
	if svc.demoMode() {
		svc.log.Warn("dlocal go credentials missing, payment links are issued in demo mode")
	}
	return svc
}

func (s *Service) demoMode() bool {
	return s.gateway == nil || !s.cfg.DLocal.Configured()
}

func (s *Service) now() time.Time {
	return s.clock.Now().UTC()
}

func (s *Service) CreateLink(ctx context.Context, req domain.CreateLinkRequest) (*domain.CreateLinkResult, error) {
	userID, ok := companycontext.UserIDFromContext(ctx)
	if !ok {
		return nil, domain.ErrUnauthenticated
	}
	companyID, ok := companycontext.Resolve(ctx, req.MyCompanyID)
	if !ok {
		return nil, domain.ErrInvalidCompany
	}
	if err := authorization.Require(ctx, s.authz, companyID, authorization.ObjectPaymentLink, authorization.ActionCreate); err != nil {
		return nil, err
	}

	settings := s.payments.Get()
	if req.Amount == nil || *req.Amount <= 0 || math.IsNaN(*req.Amount) || math.IsInf(*req.Amount, 0) {
		return nil, domain.ErrInvalidAmount
	}
	amount := round2(*req.Amount)
	description := strings.TrimSpace(req.Description)
	if description == "" {
		return nil, domain.ErrInvalidDescription
	}
	if *req.Amount < settings.MinAmount {
		return nil, &domain.BelowMinimumError{Minimum: settings.MinAmount}
	}

	currency := strings.ToUpper(strings.TrimSpace(req.Currency))
	if currency == "" {
		currency = settings.DefaultCurrency
	}
	if len(currency) != 3 {
		return nil, domain.ErrInvalidCurrency
	}
	country := strings.ToUpper(strings.TrimSpace(req.Country))
	if country == "" {
		country = settings.DefaultCountry
	}
	if len(country) != 2 {
		return nil, domain.ErrInvalidCountry
	}
	days := settings.DefaultExpiryDays
	if req.ExpiresInDays != nil {
		days = *req.ExpiresInDays
	}
	if days <= 0 {
		return nil, domain.ErrInvalidExpiry
	}

	metadata := datatypes.JSONMap(req.Metadata)
	if metadata == nil {
		metadata = datatypes.JSONMap{}
	}

	demo := s.demoMode()
	now := s.now()
	link := &domain.PaymentLink{
		MyCompanyID:   &companyID,
		Amount:        amount,
		Currency:      currency,
		Country:       country,
		Description:   description,
		CustomerName:  trimmed(req.CustomerName),
		CustomerEmail: trimmed(req.CustomerEmail),
		CustomerPhone: trimmed(req.CustomerPhone),
		ProjectID:     req.ProjectID,
		DealID:        req.DealID,
		Status:        domain.StatusPending,
		DemoMode:      demo,
		ExpiresAt:     now.AddDate(0, 0, days),
		Metadata:      metadata,
		CreatedBy:     &userID,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	var err error
	for attempt := 0; attempt < orderIDAttempts; attempt++ {
		link.ID = s.genID.Generate()
		link.OrderID = newOrderID(now)
		link.PaymentURL = s.cfg.AppURL + "/pay/" + link.OrderID
		link.RedirectURL = link.PaymentURL
		link.CheckoutURL = link.PaymentURL
		if err = s.repo.InsertLink(ctx, s.db, link); err == nil || !db.IsDuplicateKeyErr(err) {
			break
		}
	}
	if err != nil {
		return nil, err
	}

	mode := "live"
	if demo {
		mode = "demo"
		s.log.Warn("payment link issued in demo mode", zap.String("order_id", link.OrderID))
	}
	s.obsMetrics.RecordPaymentLinkCreated(ctx, currency, mode)
	s.log.Info("payment link created",
		zap.String("order_id", link.OrderID),
		zap.String("company_id", companyID.String()),
		zap.Float64("amount", amount),
		zap.String("currency", currency),
	)

	return &domain.CreateLinkResult{Success: true, DemoMode: demo, PaymentLink: link}, nil
}

// GetLink is public. A pending link past its expiry is persisted as expired.
func (s *Service) GetLink(ctx context.Context, orderID string) (*domain.PaymentLink, error) {
	orderID = strings.TrimSpace(orderID)
	if orderID == "" {
		return nil, domain.ErrInvalidOrder
	}
	link, err := s.repo.FindLinkByOrderID(ctx, s.db, orderID)
	if err != nil {
		return nil, err
	}
	if link == nil {
		return nil, domain.ErrNotFound
	}
	if link.Status == domain.StatusPending && link.PastExpiry(s.now()) {
		if err := s.expire(ctx, link); err != nil {
			return nil, err
		}
	}
	return link, nil
}

func (s *Service) expire(ctx context.Context, link *domain.PaymentLink) error {
	if err := s.repo.UpdateLink(ctx, s.db, link.ID, map[string]any{"status": domain.StatusExpired}); err != nil {
		return err
	}
	link.Status = domain.StatusExpired
	return nil
}

// lock serializes work on one order across process and webhook paths.
func (s *Service) lock(ctx context.Context, orderID string) (func(), error) {
	key := "payment_link:" + orderID
	token, ok, err := s.locker.TryLock(ctx, key, lockTTL)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, domain.ErrPaymentInProgress
	}
	return func() {
		if err := s.locker.Release(context.WithoutCancel(ctx), key, token); err != nil {
			s.log.Warn("release payment lock", zap.String("order_id", orderID), zap.Error(err))
		}
	}, nil
}

func newOrderID(now time.Time) string {
	suffix := make([]byte, 9)
	for i := range suffix {
		suffix[i] = orderIDAlphabet[rand.IntN(len(orderIDAlphabet))]
	}
	return fmt.Sprintf("VLX-%d-%s", now.UnixMilli(), suffix)
}

func trimmed(v *string) *string {
	if v == nil {
		return nil
	}
	out := strings.TrimSpace(*v)
	if out == "" {
		return nil
	}
	return &out
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
