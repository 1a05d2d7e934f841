package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/verlyx/hub/internal/authorization"
	"github.com/verlyx/hub/internal/companycontext"
	"github.com/verlyx/hub/internal/finance/domain"
	"github.com/verlyx/hub/pkg/db/pagination"
	"gorm.io/gorm"
)

// validateCreate checks the fields every new expense or income needs and
// returns the normalized currency and status.
func validateCreate(f domain.EntryFields, validStatus func(string) bool) (currency, status string, err error) {
	if f.Amount == nil || *f.Amount <= 0 {
		return "", "", domain.ErrInvalidAmount
	}
	if f.Description == nil || strings.TrimSpace(*f.Description) == "" {
		return "", "", domain.ErrInvalidDescription
	}
	currency, err = normalizeCurrency(f.Currency)
	if err != nil {
		return "", "", err
	}
	status = domain.StatusPending
	if f.Status != nil {
		status = strings.ToLower(strings.TrimSpace(*f.Status))
		if !validStatus(status) {
			return "", "", domain.ErrInvalidStatus
		}
	}
	return currency, status, nil
}

// entryUpdates maps the non-nil fields of f to columns.
func entryUpdates(f domain.EntryFields, validStatus func(string) bool) (map[string]any, error) {
	fields := map[string]any{}
	if f.Amount != nil {
		if *f.Amount <= 0 {
			return nil, domain.ErrInvalidAmount
		}
		fields["amount"] = *f.Amount
	}
	if f.Currency != nil {
		currency, err := normalizeCurrency(f.Currency)
		if err != nil {
			return nil, err
		}
		fields["currency"] = currency
	}
	if f.Description != nil {
		description := strings.TrimSpace(*f.Description)
		if description == "" {
			return nil, domain.ErrInvalidDescription
		}
		fields["description"] = description
	}
	if f.Status != nil {
		status := strings.ToLower(strings.TrimSpace(*f.Status))
		if !validStatus(status) {
			return nil, domain.ErrInvalidStatus
		}
		fields["status"] = status
	}
	setIf(fields, "category_id", f.CategoryID)
	setIf(fields, "account_id", f.AccountID)
	setIf(fields, "project_id", f.ProjectID)
	setIf(fields, "payment_date", f.PaymentDate)
	setIf(fields, "due_date", f.DueDate)
	setIf(fields, "invoice_number", f.InvoiceNumber)
	setIf(fields, "invoice_date", f.InvoiceDate)
	setIf(fields, "payment_method", f.PaymentMethod)
	setIf(fields, "is_recurring", f.IsRecurring)
	setIf(fields, "recurrence_frequency", f.RecurrenceFrequency)
	setIf(fields, "notes", f.Notes)
	return fields, nil
}

func (s *Service) entryFilter(ctx context.Context, req domain.ListEntriesRequest, validStatus func(string) bool) (domain.EntryFilter, error) {
	companyID, err := s.company(ctx, req.MyCompanyID, authorization.ActionView)
	if err != nil {
		return domain.EntryFilter{}, err
	}
	status := strings.ToLower(strings.TrimSpace(req.Status))
	if status != "" && !validStatus(status) {
		return domain.EntryFilter{}, domain.ErrInvalidStatus
	}
	return domain.EntryFilter{
		MyCompanyID: companyID,
		Status:      status,
		CategoryID:  req.CategoryID,
		AccountID:   req.AccountID,
		ProjectID:   req.ProjectID,
		From:        req.From,
		To:          req.To,
	}, nil
}

func (s *Service) CreateExpense(ctx context.Context, req domain.CreateExpenseRequest) (*domain.Expense, error) {
	companyID, err := s.company(ctx, req.MyCompanyID, authorization.ActionManage)
	if err != nil {
		return nil, err
	}
	currency, status, err := validateCreate(req.EntryFields, domain.ValidExpenseStatus)
	if err != nil {
		return nil, err
	}
	if err := s.checkLinks(ctx, s.db, companyID, domain.KindExpense, req.AccountID, req.CategoryID); err != nil {
		return nil, err
	}

	now := s.clock.Now()
	expense := &domain.Expense{
		ID:                  s.genID.Generate(),
		MyCompanyID:         companyID,
		Amount:              *req.Amount,
		Currency:            currency,
		Description:         strings.TrimSpace(*req.Description),
		Status:              status,
		CategoryID:          req.CategoryID,
		AccountID:           req.AccountID,
		ProjectID:           req.ProjectID,
		SupplierName:        req.SupplierName,
		PaymentDate:         req.PaymentDate,
		DueDate:             req.DueDate,
		InvoiceNumber:       req.InvoiceNumber,
		InvoiceDate:         req.InvoiceDate,
		PaymentMethod:       req.PaymentMethod,
		IsRecurring:         req.IsRecurring != nil && *req.IsRecurring,
		RecurrenceFrequency: req.RecurrenceFrequency,
		Notes:               req.Notes,
		CreatedAt:           now,
		UpdatedAt:           now,
	}
	if userID, ok := companycontext.UserIDFromContext(ctx); ok {
		expense.CreatedBy = &userID
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.repo.InsertExpense(ctx, tx, expense); err != nil {
			return err
		}
		entry := expense.Entry()
		return s.rebalance(ctx, tx, domain.KindExpense, nil, &entry)
	})
	if err != nil {
		return nil, err
	}
	return expense, nil
}

func (s *Service) ListExpenses(ctx context.Context, req domain.ListEntriesRequest) (pagination.Page[domain.Expense], error) {
	filter, err := s.entryFilter(ctx, req, domain.ValidExpenseStatus)
	if err != nil {
		return pagination.Page[domain.Expense]{}, err
	}
	page := req.Pagination.Normalize()
	rows, total, err := s.repo.ListExpenses(ctx, s.db, filter, page)
	if err != nil {
		return pagination.Page[domain.Expense]{}, err
	}
	return pagination.NewPage(rows, page, total), nil
}

func (s *Service) GetExpense(ctx context.Context, id snowflake.ID) (*domain.Expense, error) {
	return s.loadExpense(ctx, s.db, id, authorization.ActionView)
}

func (s *Service) UpdateExpense(ctx context.Context, id snowflake.ID, req domain.UpdateExpenseRequest) (*domain.Expense, error) {
	fields, err := entryUpdates(req.EntryFields, domain.ValidExpenseStatus)
	if err != nil {
		return nil, err
	}
	setIf(fields, "supplier_name", req.SupplierName)
	fields["updated_at"] = s.clock.Now()

	var updated *domain.Expense
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		before, err := s.loadExpense(ctx, tx, id, authorization.ActionManage)
		if err != nil {
			return err
		}
		if err := s.checkLinks(ctx, tx, before.MyCompanyID, domain.KindExpense, req.AccountID, req.CategoryID); err != nil {
			return err
		}
		if err := s.repo.UpdateExpense(ctx, tx, id, fields); err != nil {
			return err
		}
		if updated, err = s.repo.FindExpense(ctx, tx, id); err != nil {
			return err
		}
		oldEntry, newEntry := before.Entry(), updated.Entry()
		return s.rebalance(ctx, tx, domain.KindExpense, &oldEntry, &newEntry)
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *Service) DeleteExpense(ctx context.Context, id snowflake.ID) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		expense, err := s.loadExpense(ctx, tx, id, authorization.ActionManage)
		if err != nil {
			return err
		}
		if err := s.repo.DeleteExpense(ctx, tx, id); err != nil {
			return err
		}
		entry := expense.Entry()
		return s.rebalance(ctx, tx, domain.KindExpense, &entry, nil)
	})
}

func (s *Service) loadExpense(ctx context.Context, conn *gorm.DB, id snowflake.ID, action string) (*domain.Expense, error) {
	expense, err := s.repo.FindExpense(ctx, conn, id)
	if err != nil {
		return nil, err
	}
	if expense == nil {
		return nil, domain.ErrNotFound
	}
	if err := s.require(ctx, expense.MyCompanyID, action); err != nil {
		return nil, err
	}
	return expense, nil
}

func (s *Service) CreateIncome(ctx context.Context, req domain.CreateIncomeRequest) (*domain.Income, error) {
	companyID, err := s.company(ctx, req.MyCompanyID, authorization.ActionManage)
	if err != nil {
		return nil, err
	}
	currency, status, err := validateCreate(req.EntryFields, domain.ValidIncomeStatus)
	if err != nil {
		return nil, err
	}
	if err := s.checkLinks(ctx, s.db, companyID, domain.KindIncome, req.AccountID, req.CategoryID); err != nil {
		return nil, err
	}

	now := s.clock.Now()
	income := &domain.Income{
		ID:                  s.genID.Generate(),
		MyCompanyID:         companyID,
		Amount:              *req.Amount,
		Currency:            currency,
		Description:         strings.TrimSpace(*req.Description),
		Status:              status,
		CategoryID:          req.CategoryID,
		AccountID:           req.AccountID,
		ProjectID:           req.ProjectID,
		ClientID:            req.ClientID,
		ClientName:          req.ClientName,
		PaymentDate:         req.PaymentDate,
		DueDate:             req.DueDate,
		InvoiceNumber:       req.InvoiceNumber,
		InvoiceDate:         req.InvoiceDate,
		PaymentMethod:       req.PaymentMethod,
		IsRecurring:         req.IsRecurring != nil && *req.IsRecurring,
		RecurrenceFrequency: req.RecurrenceFrequency,
		Notes:               req.Notes,
		CreatedAt:           now,
		UpdatedAt:           now,
	}
	if userID, ok := companycontext.UserIDFromContext(ctx); ok {
		income.CreatedBy = &userID
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.repo.InsertIncome(ctx, tx, income); err != nil {
			return err
		}
		entry := income.Entry()
		return s.rebalance(ctx, tx, domain.KindIncome, nil, &entry)
	})
	if err != nil {
		return nil, err
	}
	return income, nil
}

func (s *Service) ListIncomes(ctx context.Context, req domain.ListEntriesRequest) (pagination.Page[domain.Income], error) {
	filter, err := s.entryFilter(ctx, req, domain.ValidIncomeStatus)
	if err != nil {
		return pagination.Page[domain.Income]{}, err
	}
	page := req.Pagination.Normalize()
	rows, total, err := s.repo.ListIncomes(ctx, s.db, filter, page)
	if err != nil {
		return pagination.Page[domain.Income]{}, err
	}
	return pagination.NewPage(rows, page, total), nil
}

func (s *Service) GetIncome(ctx context.Context, id snowflake.ID) (*domain.Income, error) {
	return s.loadIncome(ctx, s.db, id, authorization.ActionView)
}

func (s *Service) UpdateIncome(ctx context.Context, id snowflake.ID, req domain.UpdateIncomeRequest) (*domain.Income, error) {
	fields, err := entryUpdates(req.EntryFields, domain.ValidIncomeStatus)
	if err != nil {
		return nil, err
	}
	setIf(fields, "client_id", req.ClientID)
	setIf(fields, "client_name", req.ClientName)
	fields["updated_at"] = s.clock.Now()

	var updated *domain.Income
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		before, err := s.loadIncome(ctx, tx, id, authorization.ActionManage)
		if err != nil {
			return err
		}
		if err := s.checkLinks(ctx, tx, before.MyCompanyID, domain.KindIncome, req.AccountID, req.CategoryID); err != nil {
			return err
		}
		if err := s.repo.UpdateIncome(ctx, tx, id, fields); err != nil {
			return err
		}
		if updated, err = s.repo.FindIncome(ctx, tx, id); err != nil {
			return err
		}
		oldEntry, newEntry := before.Entry(), updated.Entry()
		return s.rebalance(ctx, tx, domain.KindIncome, &oldEntry, &newEntry)
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *Service) DeleteIncome(ctx context.Context, id snowflake.ID) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		income, err := s.loadIncome(ctx, tx, id, authorization.ActionManage)
		if err != nil {
			return err
		}
		if err := s.repo.DeleteIncome(ctx, tx, id); err != nil {
			return err
		}
		entry := income.Entry()
		return s.rebalance(ctx, tx, domain.KindIncome, &entry, nil)
	})
}

func (s *Service) loadIncome(ctx context.Context, conn *gorm.DB, id snowflake.ID, action string) (*domain.Income, error) {
	income, err := s.repo.FindIncome(ctx, conn, id)
	if err != nil {
		return nil, err
	}
	if income == nil {
		return nil, domain.ErrNotFound
	}
	if err := s.require(ctx, income.MyCompanyID, action); err != nil {
		return nil, err
	}
	return income, nil
}
