package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/verlyx/hub/internal/authorization"
	"github.com/verlyx/hub/internal/clock"
	"github.com/verlyx/hub/internal/companycontext"
	"github.com/verlyx/hub/internal/finance/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Repo  domain.Repository
	Authz authorization.Service
	Clock clock.Clock
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	repo  domain.Repository
	authz authorization.Service
	clock clock.Clock
}

func New(p Params) domain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("finance.service"),
		genID: p.GenID,
		repo:  p.Repo,
		authz: p.Authz,
		clock: p.Clock,
	}
}

// company resolves the target company and checks the caller may perform
// action on finance data there.
func (s *Service) company(ctx context.Context, explicit *snowflake.ID, action string) (snowflake.ID, error) {
	companyID, ok := companycontext.Resolve(ctx, explicit)
	if !ok {
		return 0, domain.ErrInvalidCompany
	}
	if err := s.require(ctx, companyID, action); err != nil {
		return 0, err
	}
	return companyID, nil
}

func (s *Service) require(ctx context.Context, companyID snowflake.ID, action string) error {
	return authorization.Require(ctx, s.authz, companyID, authorization.ObjectFinance, action)
}

// rebalance reverses the balance effect of before and applies after.
func (s *Service) rebalance(ctx context.Context, tx *gorm.DB, kind string, before, after *domain.Entry) error {
	deltas := map[snowflake.ID]float64{}
	if before != nil {
		if account, delta, ok := before.Settled(kind); ok {
			deltas[account] -= delta
		}
	}
	if after != nil {
		if account, delta, ok := after.Settled(kind); ok {
			deltas[account] += delta
		}
	}
	for account, delta := range deltas {
		if delta == 0 {
			continue
		}
		if err := s.repo.AdjustBalance(ctx, tx, account, delta); err != nil {
			return err
		}
		s.log.Debug("account balance adjusted",
			zap.String("account_id", account.String()),
			zap.Float64("delta", delta),
		)
	}
	return nil
}

// checkLinks verifies referenced accounts and categories belong to companyID.
func (s *Service) checkLinks(ctx context.Context, conn *gorm.DB, companyID snowflake.ID, kind string, accountID, categoryID *snowflake.ID) error {
	if accountID != nil {
		account, err := s.repo.FindAccount(ctx, conn, *accountID)
		if err != nil {
			return err
		}
		if account == nil || account.MyCompanyID != companyID {
			return domain.ErrInvalidAccount
		}
	}
	if categoryID != nil {
		category, err := s.repo.FindCategory(ctx, conn, *categoryID)
		if err != nil {
			return err
		}
		if category == nil || category.MyCompanyID != companyID || (kind != "" && category.Kind != kind) {
			return domain.ErrInvalidCategory
		}
	}
	return nil
}

func normalizeCurrency(value *string) (string, error) {
	if value == nil {
		return domain.DefaultCurrency, nil
	}
	currency := strings.ToUpper(strings.TrimSpace(*value))
	if len(currency) != 3 {
		return "", domain.ErrInvalidCurrency
	}
	return currency, nil
}

func setIf[T any](fields map[string]any, column string, v *T) {
	if v != nil {
		fields[column] = *v
	}
}
