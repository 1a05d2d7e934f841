package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/verlyx/hub/internal/authorization"
	"github.com/verlyx/hub/internal/finance/domain"
)

func (s *Service) CreateAccount(ctx context.Context, req domain.CreateAccountRequest) (*domain.Account, error) {
	companyID, err := s.company(ctx, req.MyCompanyID, authorization.ActionManage)
	if err != nil {
		return nil, err
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, domain.ErrInvalidName
	}
	accountType := strings.ToLower(strings.TrimSpace(req.Type))
	if accountType == "" {
		accountType = domain.AccountBank
	}
	if !domain.ValidAccountType(accountType) {
		return nil, domain.ErrInvalidAccountType
	}
	currency, err := normalizeCurrency(req.Currency)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	account := &domain.Account{
		ID:            s.genID.Generate(),
		MyCompanyID:   companyID,
		Name:          name,
		Type:          accountType,
		Currency:      currency,
		BankName:      req.BankName,
		AccountNumber: req.AccountNumber,
		Color:         req.Color,
		IsActive:      true,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if req.CurrentBalance != nil {
		account.CurrentBalance = *req.CurrentBalance
	}
	if err := s.repo.InsertAccount(ctx, s.db, account); err != nil {
		return nil, err
	}
	return account, nil
}

func (s *Service) ListAccounts(ctx context.Context, companyID *snowflake.ID) ([]domain.Account, error) {
	resolved, err := s.company(ctx, companyID, authorization.ActionView)
	if err != nil {
		return nil, err
	}
	return s.repo.ListAccounts(ctx, s.db, resolved)
}

func (s *Service) UpdateAccount(ctx context.Context, id snowflake.ID, req domain.UpdateAccountRequest) (*domain.Account, error) {
	account, err := s.loadAccount(ctx, id, authorization.ActionManage)
	if err != nil {
		return nil, err
	}
	fields := map[string]any{"updated_at": s.clock.Now()}
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, domain.ErrInvalidName
		}
		fields["name"] = name
	}
	if req.Type != nil {
		accountType := strings.ToLower(strings.TrimSpace(*req.Type))
		if !domain.ValidAccountType(accountType) {
			return nil, domain.ErrInvalidAccountType
		}
		fields["type"] = accountType
	}
	setIf(fields, "bank_name", req.BankName)
	setIf(fields, "account_number", req.AccountNumber)
	setIf(fields, "color", req.Color)
	setIf(fields, "is_active", req.IsActive)

	if err := s.repo.UpdateAccount(ctx, s.db, account.ID, fields); err != nil {
		return nil, err
	}
	return s.repo.FindAccount(ctx, s.db, account.ID)
}

func (s *Service) DeleteAccount(ctx context.Context, id snowflake.ID) error {
	account, err := s.loadAccount(ctx, id, authorization.ActionManage)
	if err != nil {
		return err
	}
	return s.repo.DeleteAccount(ctx, s.db, account.ID)
}

func (s *Service) loadAccount(ctx context.Context, id snowflake.ID, action string) (*domain.Account, error) {
	account, err := s.repo.FindAccount(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	if account == nil {
		return nil, domain.ErrNotFound
	}
	if err := s.require(ctx, account.MyCompanyID, action); err != nil {
		return nil, err
	}
	return account, nil
}

func (s *Service) CreateCategory(ctx context.Context, req domain.CreateCategoryRequest) (*domain.Category, error) {
	companyID, err := s.company(ctx, req.MyCompanyID, authorization.ActionManage)
	if err != nil {
		return nil, err
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, domain.ErrInvalidName
	}
	kind := strings.ToLower(strings.TrimSpace(req.Kind))
	if !domain.ValidCategoryKind(kind) {
		return nil, domain.ErrInvalidKind
	}
	category := &domain.Category{
		ID:          s.genID.Generate(),
		MyCompanyID: companyID,
		Name:        name,
		Kind:        kind,
		Color:       req.Color,
		Icon:        req.Icon,
		CreatedAt:   s.clock.Now(),
	}
	if err := s.repo.InsertCategory(ctx, s.db, category); err != nil {
		return nil, err
	}
	return category, nil
}

func (s *Service) ListCategories(ctx context.Context, companyID *snowflake.ID, kind string) ([]domain.Category, error) {
	resolved, err := s.company(ctx, companyID, authorization.ActionView)
	if err != nil {
		return nil, err
	}
	kind = strings.ToLower(strings.TrimSpace(kind))
	if kind != "" && !domain.ValidCategoryKind(kind) {
		return nil, domain.ErrInvalidKind
	}
	return s.repo.ListCategories(ctx, s.db, resolved, kind)
}
