package service

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/bwmarrin/snowflake"
	"github.com/verlyx/hub/internal/authorization"
	"github.com/verlyx/hub/internal/clock"
	"github.com/verlyx/hub/internal/companycontext"
	"github.com/verlyx/hub/internal/project/domain"
	"github.com/verlyx/hub/pkg/db/pagination"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const defaultCurrency = "USD"

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
		log:   p.Log.Named("project.service"),
		genID: p.GenID,
		repo:  p.Repo,
		authz: p.Authz,
		clock: p.Clock,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateRequest) (*domain.WithMetrics, error) {
	companyID, ok := companycontext.Resolve(ctx, firstID(req.MyCompanyID, req.CompanyID))
	if !ok {
		return nil, domain.ErrInvalidCompany
	}
	if err := authorization.RequireMember(ctx, s.authz, companyID); err != nil {
		return nil, err
	}

	name := strings.TrimSpace(req.Name)
	if name == "" || utf8.RuneCountInString(name) > 255 {
		return nil, domain.ErrInvalidName
	}
	if err := validateDates(req.StartDate, req.DueDate); err != nil {
		return nil, err
	}
	if err := validateValues(req.Status, req.Priority, req.Budget, req.SpentAmount, req.ProgressPercentage); err != nil {
		return nil, err
	}

	now := s.clock.Now()
	project := &domain.Project{
		ID:                   s.genID.Generate(),
		MyCompanyID:          &companyID,
		ClientCompanyID:      req.ClientCompanyID,
		CompanyID:            req.CompanyID,
		ClientID:             req.ClientID,
		ClientOrganizationID: req.ClientOrganizationID,
		DealID:               req.DealID,
		Name:                 name,
		Description:          req.Description,
		Status:               stringOr(req.Status, domain.StatusBacklog),
		Priority:             stringOr(req.Priority, domain.PriorityMedium),
		StartDate:            req.StartDate,
		DueDate:              req.DueDate,
		CompletionDate:       req.CompletionDate,
		Budget:               req.Budget,
		Currency:             strings.ToUpper(stringOr(req.Currency, defaultCurrency)),
		ProjectManagerID:     req.ProjectManagerID,
		Tags:                 datatypes.JSONSlice[string]{},
		CustomFields:         datatypes.JSONMap{},
		CreatedAt:            now,
		UpdatedAt:            now,
	}
	if req.SpentAmount != nil {
		project.SpentAmount = *req.SpentAmount
	}
	if req.ProgressPercentage != nil {
		project.ProgressPercentage = *req.ProgressPercentage
	}
	if req.Tags != nil {
		project.Tags = datatypes.JSONSlice[string](req.Tags)
	}
	if req.CustomFields != nil {
		project.CustomFields = datatypes.JSONMap(req.CustomFields)
	}
	if req.IsArchived != nil {
		project.IsArchived = *req.IsArchived
	}
	if project.Status == domain.StatusDone && project.CompletionDate == nil {
		project.CompletionDate = &now
	}
	if userID, ok := companycontext.UserIDFromContext(ctx); ok {
		project.CreatedBy = &userID
	}

	if err := s.repo.Insert(ctx, s.db, project); err != nil {
		return nil, err
	}
	s.log.Info("project created", zap.String("project_id", project.ID.String()))
	out := withMetrics(*project, now)
	return &out, nil
}

func (s *Service) List(ctx context.Context, req domain.ListRequest) (pagination.Page[domain.WithMetrics], error) {
	companyID, ok := companycontext.Resolve(ctx, req.CompanyID)
	if !ok {
		return pagination.Page[domain.WithMetrics]{}, domain.ErrInvalidCompany
	}
	if err := authorization.RequireMember(ctx, s.authz, companyID); err != nil {
		return pagination.Page[domain.WithMetrics]{}, err
	}

	filter := domain.ListFilter{
		CompanyID:        companyID,
		Status:           strings.ToLower(strings.TrimSpace(req.Status)),
		Priority:         strings.ToLower(strings.TrimSpace(req.Priority)),
		ClientID:         req.ClientID,
		ProjectManagerID: req.ProjectManagerID,
		IncludeArchived:  req.IncludeArchived,
		Search:           req.Search,
		Tag:              req.Tag,
		StartDateFrom:    req.StartDateFrom,
		StartDateTo:      req.StartDateTo,
		DueDateFrom:      req.DueDateFrom,
		DueDateTo:        req.DueDateTo,
	}
	page := req.Pagination.Normalize()
	projects, total, err := s.repo.List(ctx, s.db, filter, page)
	if err != nil {
		return pagination.Page[domain.WithMetrics]{}, err
	}

	now := s.clock.Now()
	items := make([]domain.WithMetrics, 0, len(projects))
	for _, p := range projects {
		items = append(items, withMetrics(p, now))
	}
	return pagination.NewPage(items, page, total), nil
}

func (s *Service) Get(ctx context.Context, id snowflake.ID) (*domain.WithMetrics, error) {
	project, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	out := withMetrics(*project, s.clock.Now())
	return &out, nil
}

func (s *Service) Update(ctx context.Context, id snowflake.ID, req domain.UpdateRequest) (*domain.WithMetrics, error) {
	project, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" || utf8.RuneCountInString(name) > 255 {
			return nil, domain.ErrInvalidName
		}
		req.Name = &name
	}
	if err := validateValues(req.Status, req.Priority, req.Budget, req.SpentAmount, req.ProgressPercentage); err != nil {
		return nil, err
	}
	if req.StartDate != nil || req.DueDate != nil {
		start, due := project.StartDate, project.DueDate
		if req.StartDate != nil {
			start = req.StartDate
		}
		if req.DueDate != nil {
			due = req.DueDate
		}
		if err := validateDates(start, due); err != nil {
			return nil, err
		}
	}

	now := s.clock.Now()
	fields := updateFields(req)
	if req.Status != nil && *req.Status == domain.StatusDone && req.CompletionDate == nil && project.CompletionDate == nil {
		fields["completion_date"] = now
	}
	if len(fields) == 0 {
		out := withMetrics(*project, now)
		return &out, nil
	}
	fields["updated_at"] = now
	if err := s.repo.Update(ctx, s.db, id, fields); err != nil {
		return nil, err
	}

	updated, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	out := withMetrics(*updated, now)
	return &out, nil
}

func (s *Service) Delete(ctx context.Context, id snowflake.ID) error {
	if _, err := s.load(ctx, id); err != nil {
		return err
	}
	return s.repo.Delete(ctx, s.db, id)
}

func (s *Service) Stats(ctx context.Context, companyID *snowflake.ID) (*domain.Stats, error) {
	resolved, ok := companycontext.Resolve(ctx, companyID)
	if !ok {
		return nil, domain.ErrInvalidCompany
	}
	if err := authorization.RequireMember(ctx, s.authz, resolved); err != nil {
		return nil, err
	}
	projects, err := s.repo.ListForCompany(ctx, s.db, resolved)
	if err != nil {
		return nil, err
	}
	return computeStats(projects, s.clock.Now()), nil
}

func (s *Service) load(ctx context.Context, id snowflake.ID) (*domain.Project, error) {
	project, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if project.MyCompanyID != nil {
		if err := authorization.RequireMember(ctx, s.authz, *project.MyCompanyID); err != nil {
			return nil, err
		}
	}
	return project, nil
}

func (s *Service) find(ctx context.Context, id snowflake.ID) (*domain.Project, error) {
	project, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	if project == nil {
		return nil, domain.ErrNotFound
	}
	return project, nil
}

// validateDates rejects a due date that is not after the start date.
func validateDates(start, due *time.Time) error {
	if start != nil && due != nil && !due.After(*start) {
		return domain.ErrInvalidDates
	}
	return nil
}

func validateValues(status, priority *string, budget, spent *float64, progress *int) error {
	if status != nil {
		*status = strings.ToLower(strings.TrimSpace(*status))
		if !domain.ValidStatus(*status) {
			return domain.ErrInvalidStatus
		}
	}
	if priority != nil {
		*priority = strings.ToLower(strings.TrimSpace(*priority))
		if !domain.ValidPriority(*priority) {
			return domain.ErrInvalidPriority
		}
	}
	if budget != nil && *budget < 0 {
		return domain.ErrInvalidBudget
	}
	if spent != nil && *spent < 0 {
		return domain.ErrInvalidSpent
	}
	if progress != nil && (*progress < 0 || *progress > 100) {
		return domain.ErrInvalidProgress
	}
	return nil
}

func updateFields(req domain.UpdateRequest) map[string]any {
	fields := map[string]any{}
	ids := map[string]*snowflake.ID{
		"client_company_id":      req.ClientCompanyID,
		"client_id":              req.ClientID,
		"client_organization_id": req.ClientOrganizationID,
		"deal_id":                req.DealID,
		"project_manager_id":     req.ProjectManagerID,
	}
	for col, v := range ids {
		if v != nil {
			fields[col] = *v
		}
	}
	if req.Name != nil {
		fields["name"] = *req.Name
	}
	if req.Description != nil {
		fields["description"] = *req.Description
	}
	if req.Status != nil {
		fields["status"] = *req.Status
	}
	if req.Priority != nil {
		fields["priority"] = *req.Priority
	}
	if req.StartDate != nil {
		fields["start_date"] = *req.StartDate
	}
	if req.DueDate != nil {
		fields["due_date"] = *req.DueDate
	}
	if req.CompletionDate != nil {
		fields["completion_date"] = *req.CompletionDate
	}
	if req.Budget != nil {
		fields["budget"] = *req.Budget
	}
	if req.SpentAmount != nil {
		fields["spent_amount"] = *req.SpentAmount
	}
	if req.Currency != nil {
		fields["currency"] = strings.ToUpper(strings.TrimSpace(*req.Currency))
	}
	if req.ProgressPercentage != nil {
		fields["progress_percentage"] = *req.ProgressPercentage
	}
	if req.Tags != nil {
		fields["tags"] = datatypes.JSONSlice[string](req.Tags)
	}
	if req.CustomFields != nil {
		fields["custom_fields"] = datatypes.JSONMap(req.CustomFields)
	}
	if req.IsArchived != nil {
		fields["is_archived"] = *req.IsArchived
	}
	return fields
}

func firstID(ids ...*snowflake.ID) *snowflake.ID {
	for _, id := range ids {
		if id != nil && *id != 0 {
			return id
		}
	}
	return nil
}

func stringOr(v *string, def string) string {
	if v == nil || strings.TrimSpace(*v) == "" {
		return def
	}
	return strings.TrimSpace(*v)
}
