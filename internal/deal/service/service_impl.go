package service

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/bwmarrin/snowflake"
	"github.com/verlyx/hub/internal/authorization"
	"github.com/verlyx/hub/internal/clock"
	"github.com/verlyx/hub/internal/companycontext"
	"github.com/verlyx/hub/internal/deal/domain"
	"github.com/verlyx/hub/internal/events"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	defaultCurrency    = "ARS"
	defaultProbability = 50
)

type Params struct {
	fx.In

	DB        *gorm.DB
	Log       *zap.Logger
	GenID     *snowflake.Node
	Repo      domain.Repository
	Authz     authorization.Service
	Publisher events.Publisher
	Clock     clock.Clock
}

type Service struct {
	db        *gorm.DB
	log       *zap.Logger
	genID     *snowflake.Node
	repo      domain.Repository
	authz     authorization.Service
	publisher events.Publisher
	clock     clock.Clock
}

func New(p Params) domain.Service {
	return &Service{
		db:        p.DB,
		log:       p.Log.Named("deal.service"),
		genID:     p.GenID,
		repo:      p.Repo,
		authz:     p.Authz,
		publisher: p.Publisher,
		clock:     p.Clock,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateRequest) (*domain.Deal, error) {
	companyID, ok := companycontext.Resolve(ctx, req.MyCompanyID)
	if !ok {
		return nil, domain.ErrInvalidCompany
	}
	if err := authorization.RequireMember(ctx, s.authz, companyID); err != nil {
		return nil, err
	}

	title := strings.TrimSpace(req.Title)
	if err := validateTitle(&title); err != nil {
		return nil, err
	}
	if err := validateFields(req.Stage, req.Priority, req.Amount, req.Currency, req.Probability); err != nil {
		return nil, err
	}

	userID, _ := companycontext.UserIDFromContext(ctx)
	owner := req.OwnerUserID
	if owner == nil && userID != 0 {
		owner = &userID
	}
	var createdBy *snowflake.ID
	if userID != 0 {
		createdBy = &userID
	}

	now := s.clock.Now()
	deal := &domain.Deal{
		ID:                s.genID.Generate(),
		MyCompanyID:       companyID,
		ClientID:          req.ClientID,
		OrganizationID:    req.OrganizationID,
		Title:             title,
		Description:       req.Description,
		Stage:             stringOr(req.Stage, domain.StageLead),
		Priority:          stringOr(req.Priority, domain.PriorityMedium),
		Amount:            req.Amount,
		Currency:          stringOr(req.Currency, defaultCurrency),
		Probability:       defaultProbability,
		ExpectedCloseDate: req.ExpectedCloseDate,
		OwnerUserID:       owner,
		AssignedUsers:     datatypes.JSONSlice[string](req.AssignedUsers),
		Source:            req.Source,
		SourceDetails:     req.SourceDetails,
		PrimaryContactID:  req.PrimaryContactID,
		Tags:              datatypes.JSONSlice[string](req.Tags),
		CustomFields:      datatypes.JSONMap(req.CustomFields),
		StageChangedAt:    &now,
		NextAction:        req.NextAction,
		NextActionDate:    req.NextActionDate,
		IsActive:          true,
		CreatedBy:         createdBy,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if req.Probability != nil {
		deal.Probability = *req.Probability
	}
	if req.IsActive != nil {
		deal.IsActive = *req.IsActive
	}
	deal.ExpectedRevenue = expectedRevenue(deal.Amount, deal.Probability)

	if err := s.repo.Insert(ctx, s.db, deal); err != nil {
		return nil, err
	}
	s.log.Info("deal created",
		zap.String("deal_id", deal.ID.String()),
		zap.String("company_id", companyID.String()),
	)
	return deal, nil
}

func (s *Service) List(ctx context.Context, req domain.ListRequest) ([]domain.Deal, error) {
	companyID, ok := companycontext.Resolve(ctx, req.MyCompanyID)
	if !ok {
		return nil, domain.ErrInvalidCompany
	}
	if err := authorization.RequireMember(ctx, s.authz, companyID); err != nil {
		return nil, err
	}
	stage := strings.ToUpper(strings.TrimSpace(req.Stage))
	if stage != "" && !domain.ValidStage(stage) {
		return nil, domain.ErrInvalidStage
	}
	return s.repo.List(ctx, s.db, domain.ListFilter{
		MyCompanyID: companyID,
		Stage:       stage,
		ClientID:    req.ClientID,
	})
}

func (s *Service) Get(ctx context.Context, id snowflake.ID) (*domain.Deal, error) {
	return s.load(ctx, id)
}

func (s *Service) Update(ctx context.Context, id snowflake.ID, req domain.UpdateRequest) (*domain.Deal, error) {
	deal, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Title != nil {
		if err := validateTitle(req.Title); err != nil {
			return nil, err
		}
	}
	if err := validateFields(req.Stage, req.Priority, req.Amount, req.Currency, req.Probability); err != nil {
		return nil, err
	}

	fields := updateFields(req)
	if len(fields) == 0 {
		return deal, nil
	}
	if req.Amount != nil || req.Probability != nil {
		amount, probability := deal.Amount, deal.Probability
		if req.Amount != nil {
			amount = req.Amount
		}
		if req.Probability != nil {
			probability = *req.Probability
		}
		fields["expected_revenue"] = expectedRevenue(amount, probability)
	}
	if req.Stage != nil && *req.Stage != deal.Stage {
		fields["stage_changed_at"] = s.clock.Now()
	}
	fields["updated_at"] = s.clock.Now()

	if err := s.repo.Update(ctx, s.db, id, fields); err != nil {
		return nil, err
	}
	return s.find(ctx, id)
}

func (s *Service) Delete(ctx context.Context, id snowflake.ID) error {
	if _, err := s.load(ctx, id); err != nil {
		return err
	}
	rows, err := s.repo.Delete(ctx, s.db, id)
	if err != nil {
		return err
	}
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (s *Service) PipelineStats(ctx context.Context, companyID snowflake.ID) ([]domain.PipelineStat, error) {
	if companyID == 0 {
		return nil, domain.ErrInvalidCompany
	}
	if err := authorization.RequireMember(ctx, s.authz, companyID); err != nil {
		return nil, err
	}
	return s.repo.PipelineStats(ctx, s.db, companyID)
}

func (s *Service) MoveStage(ctx context.Context, id snowflake.ID, req domain.MoveStageRequest) (*domain.Deal, error) {
	stage := strings.ToUpper(strings.TrimSpace(req.NewStage))
	if !domain.ValidStage(stage) {
		return nil, domain.ErrInvalidStage
	}
	var reason *string
	if req.Reason != nil && strings.TrimSpace(*req.Reason) != "" {
		trimmed := strings.TrimSpace(*req.Reason)
		reason = &trimmed
	}
	if domain.IsClosingStage(stage) && reason == nil {
		return nil, domain.ErrReasonRequired
	}

	before, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	moved, err := s.repo.MoveToStage(ctx, s.db, id, stage, reason)
	if err != nil {
		return nil, err
	}
	if !moved {
		return nil, domain.ErrNotFound
	}

	deal, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}

	userID, _ := companycontext.UserIDFromContext(ctx)
	events.PublishSafe(ctx, s.publisher, s.log, events.SubjectDealStageChanged, domain.StageChanged{
		DealID:      deal.ID,
		MyCompanyID: deal.MyCompanyID,
		FromStage:   before.Stage,
		ToStage:     stage,
		Reason:      reason,
		ChangedBy:   userID,
	})
	s.log.Info("deal moved",
		zap.String("deal_id", id.String()),
		zap.String("from", before.Stage),
		zap.String("to", stage),
	)
	return deal, nil
}

func (s *Service) CreateProject(ctx context.Context, id snowflake.ID, req domain.CreateProjectRequest) (string, error) {
	if _, err := s.load(ctx, id); err != nil {
		return "", err
	}
	return s.repo.CreateProject(ctx, s.db, id, blankToNil(req.ProjectName), blankToNil(req.ProjectDescription))
}

// load finds the deal and checks the caller belongs to its company.
func (s *Service) load(ctx context.Context, id snowflake.ID) (*domain.Deal, error) {
	deal, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := authorization.RequireMember(ctx, s.authz, deal.MyCompanyID); err != nil {
		return nil, err
	}
	return deal, nil
}

func (s *Service) find(ctx context.Context, id snowflake.ID) (*domain.Deal, error) {
	deal, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	if deal == nil {
		return nil, domain.ErrNotFound
	}
	return deal, nil
}

func validateTitle(title *string) error {
	t := strings.TrimSpace(*title)
	if t == "" || utf8.RuneCountInString(t) > 255 {
		return domain.ErrInvalidTitle
	}
	*title = t
	return nil
}

func validateFields(stage, priority *string, amount *float64, currency *string, probability *int) error {
	if stage != nil {
		*stage = strings.ToUpper(strings.TrimSpace(*stage))
		if !domain.ValidStage(*stage) {
			return domain.ErrInvalidStage
		}
	}
	if priority != nil {
		*priority = strings.ToUpper(strings.TrimSpace(*priority))
		if !domain.ValidPriority(*priority) {
			return domain.ErrInvalidPriority
		}
	}
	if amount != nil && *amount < 0 {
		return domain.ErrInvalidAmount
	}
	if currency != nil {
		*currency = strings.ToUpper(strings.TrimSpace(*currency))
		if *currency == "" || len(*currency) > 3 {
			return domain.ErrInvalidCurrency
		}
	}
	if probability != nil && (*probability < 0 || *probability > 100) {
		return domain.ErrInvalidProbability
	}
	return nil
}

func updateFields(req domain.UpdateRequest) map[string]any {
	fields := map[string]any{}
	if req.OrganizationID != nil {
		fields["organization_id"] = *req.OrganizationID
	}
	if req.Title != nil {
		fields["title"] = *req.Title
	}
	if req.Description != nil {
		fields["description"] = *req.Description
	}
	if req.Stage != nil {
		fields["stage"] = *req.Stage
	}
	if req.Priority != nil {
		fields["priority"] = *req.Priority
	}
	if req.Amount != nil {
		fields["amount"] = *req.Amount
	}
	if req.Currency != nil {
		fields["currency"] = *req.Currency
	}
	if req.Probability != nil {
		fields["probability"] = *req.Probability
	}
	if req.ExpectedCloseDate != nil {
		fields["expected_close_date"] = *req.ExpectedCloseDate
	}
	if req.OwnerUserID != nil {
		fields["owner_user_id"] = *req.OwnerUserID
	}
	if req.AssignedUsers != nil {
		fields["assigned_users"] = datatypes.JSONSlice[string](req.AssignedUsers)
	}
	if req.Source != nil {
		fields["source"] = *req.Source
	}
	if req.SourceDetails != nil {
		fields["source_details"] = *req.SourceDetails
	}
	if req.PrimaryContactID != nil {
		fields["primary_contact_id"] = *req.PrimaryContactID
	}
	if req.Tags != nil {
		fields["tags"] = datatypes.JSONSlice[string](req.Tags)
	}
	if req.CustomFields != nil {
		fields["custom_fields"] = datatypes.JSONMap(req.CustomFields)
	}
	if req.NextAction != nil {
		fields["next_action"] = *req.NextAction
	}
	if req.NextActionDate != nil {
		fields["next_action_date"] = *req.NextActionDate
	}
	if req.IsActive != nil {
		fields["is_active"] = *req.IsActive
	}
	return fields
}

func expectedRevenue(amount *float64, probability int) *float64 {
	if amount == nil {
		return nil
	}
	v := *amount * float64(probability) / 100
	return &v
}

func stringOr(v *string, def string) string {
	if v == nil || strings.TrimSpace(*v) == "" {
		return def
	}
	return *v
}

func blankToNil(v *string) *string {
	if v == nil || strings.TrimSpace(*v) == "" {
		return nil
	}
	return v
}
