package service

import (
	"context"
	"encoding/json"
	"strings"
	"unicode/utf8"

	"github.com/bwmarrin/snowflake"
	"github.com/verlyx/hub/internal/authorization"
	"github.com/verlyx/hub/internal/clock"
	"github.com/verlyx/hub/internal/companycontext"
	"github.com/verlyx/hub/internal/hierarchy"
	"github.com/verlyx/hub/internal/task/domain"
	"github.com/verlyx/hub/pkg/db/pagination"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
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
		log:   p.Log.Named("task.service"),
		genID: p.GenID,
		repo:  p.Repo,
		authz: p.Authz,
		clock: p.Clock,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateRequest) (*domain.Task, error) {
	companyID, ok := companycontext.Resolve(ctx, req.MyCompanyID)
	if !ok {
		return nil, domain.ErrInvalidCompany
	}
	if err := authorization.RequireMember(ctx, s.authz, companyID); err != nil {
		return nil, err
	}
	title := strings.TrimSpace(req.Title)
	if title == "" || utf8.RuneCountInString(title) > 255 {
		return nil, domain.ErrInvalidTitle
	}
	if err := validateFields(&req.Fields); err != nil {
		return nil, err
	}
	if req.ParentTaskID != nil {
		parent, err := s.repo.FindByID(ctx, s.db, *req.ParentTaskID)
		if err != nil {
			return nil, err
		}
		if parent == nil || parent.MyCompanyID != companyID {
			return nil, domain.ErrInvalidParent
		}
	}

	now := s.clock.Now()
	task := &domain.Task{
		ID:             s.genID.Generate(),
		MyCompanyID:    companyID,
		ProjectID:      req.ProjectID,
		DealID:         req.DealID,
		ClientID:       req.ClientID,
		OrganizationID: req.OrganizationID,
		ParentTaskID:   req.ParentTaskID,
		Title:          title,
		Description:    req.Description,
		Status:         stringOr(req.Status, domain.StatusTodo),
		Priority:       stringOr(req.Priority, domain.PriorityMedium),
		AssignedTo:     req.AssignedTo,
		AssignedUsers:  datatypes.JSONSlice[string](req.AssignedUsers),
		StartDate:      req.StartDate,
		DueDate:        req.DueDate,
		EstimatedHours: req.EstimatedHours,
		BlockedReason:  req.BlockedReason,
		Tags:           datatypes.JSONSlice[string](req.Tags),
		CustomFields:   datatypes.JSONMap(req.CustomFields),
		Attachments:    datatypes.JSON(req.Attachments),
		Checklist:      datatypes.JSON(req.Checklist),
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if req.ActualHours != nil {
		task.ActualHours = *req.ActualHours
	}
	if req.ProgressPercentage != nil {
		task.ProgressPercentage = *req.ProgressPercentage
	}
	if req.IsBlocked != nil {
		task.IsBlocked = *req.IsBlocked
	}
	if task.Status == domain.StatusDone {
		task.CompletedAt = &now
		task.ProgressPercentage = 100
	}
	if userID, ok := companycontext.UserIDFromContext(ctx); ok {
		task.CreatedBy = &userID
	}

	if err := s.repo.Insert(ctx, s.db, task); err != nil {
		return nil, err
	}
	return task, nil
}

func (s *Service) List(ctx context.Context, req domain.ListRequest) (pagination.Page[domain.Task], error) {
	companyID, ok := companycontext.Resolve(ctx, req.MyCompanyID)
	if !ok {
		return pagination.Page[domain.Task]{}, domain.ErrInvalidCompany
	}
	if err := authorization.RequireMember(ctx, s.authz, companyID); err != nil {
		return pagination.Page[domain.Task]{}, err
	}
	page := req.Pagination.Normalize()
	tasks, total, err := s.repo.List(ctx, s.db, domain.ListFilter{
		MyCompanyID:    companyID,
		Status:         strings.ToUpper(strings.TrimSpace(req.Status)),
		Priority:       strings.ToUpper(strings.TrimSpace(req.Priority)),
		ProjectID:      req.ProjectID,
		DealID:         req.DealID,
		ClientID:       req.ClientID,
		OrganizationID: req.OrganizationID,
		AssignedTo:     req.AssignedTo,
		IsBlocked:      req.IsBlocked,
		ParentTaskID:   req.ParentTaskID,
		Search:         req.Search,
	}, page)
	if err != nil {
		return pagination.Page[domain.Task]{}, err
	}
	return pagination.NewPage(tasks, page, total), nil
}

func (s *Service) Get(ctx context.Context, id snowflake.ID) (*domain.Task, error) {
	return s.load(ctx, id)
}

func (s *Service) Update(ctx context.Context, id snowflake.ID, req domain.UpdateRequest) (*domain.Task, error) {
	task, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)
		if title == "" || utf8.RuneCountInString(title) > 255 {
			return nil, domain.ErrInvalidTitle
		}
		req.Title = &title
	}
	if err := validateFields(&req.Fields); err != nil {
		return nil, err
	}
	if req.ParentTaskID != nil && *req.ParentTaskID == task.ID {
		return nil, domain.ErrInvalidParent
	}

	now := s.clock.Now()
	fields := updateFields(req)
	if req.Status != nil && *req.Status == domain.StatusDone && task.Status != domain.StatusDone {
		if task.CompletedAt == nil {
			fields["completed_at"] = now
		}
		fields["progress_percentage"] = 100
	}
	if len(fields) == 0 {
		return task, nil
	}
	fields["updated_at"] = now
	if err := s.repo.Update(ctx, s.db, id, fields); err != nil {
		return nil, err
	}
	return s.find(ctx, id)
}

func (s *Service) Delete(ctx context.Context, id snowflake.ID) error {
	if _, err := s.load(ctx, id); err != nil {
		return err
	}
	return s.repo.Delete(ctx, s.db, id)
}

func (s *Service) Stats(ctx context.Context, companyID snowflake.ID, projectID *snowflake.ID) (json.RawMessage, error) {
	if companyID == 0 {
		return nil, domain.ErrInvalidCompany
	}
	if err := authorization.RequireMember(ctx, s.authz, companyID); err != nil {
		return nil, err
	}
	return s.repo.Stats(ctx, s.db, companyID, projectID)
}

func (s *Service) Overdue(ctx context.Context, companyID snowflake.ID) ([]domain.Task, error) {
	if companyID == 0 {
		return nil, domain.ErrInvalidCompany
	}
	if err := authorization.RequireMember(ctx, s.authz, companyID); err != nil {
		return nil, err
	}
	return s.repo.Overdue(ctx, s.db, companyID)
}

func (s *Service) Hierarchy(ctx context.Context, taskID snowflake.ID) ([]*domain.Node, error) {
	if _, err := s.load(ctx, taskID); err != nil {
		return nil, err
	}
	rows, err := s.repo.Hierarchy(ctx, s.db, taskID)
	if err != nil {
		return nil, err
	}
	return BuildTree(rows), nil
}

// BuildTree nests hierarchy rows under their parent tasks.
func BuildTree(rows []domain.HierarchyRow) []*domain.Node {
	nodes := make([]*domain.Node, 0, len(rows))
	for _, row := range rows {
		nodes = append(nodes, &domain.Node{HierarchyRow: row, Children: []*domain.Node{}})
	}
	return hierarchy.Build(nodes,
		func(n *domain.Node) snowflake.ID { return n.ID },
		func(n *domain.Node) (snowflake.ID, bool) {
			if n.ParentTaskID == nil {
				return 0, false
			}
			return *n.ParentTaskID, true
		},
		func(parent, child *domain.Node) { parent.Children = append(parent.Children, child) },
	)
}

func (s *Service) load(ctx context.Context, id snowflake.ID) (*domain.Task, error) {
	task, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := authorization.RequireMember(ctx, s.authz, task.MyCompanyID); err != nil {
		return nil, err
	}
	return task, nil
}

func (s *Service) find(ctx context.Context, id snowflake.ID) (*domain.Task, error) {
	task, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	if task == nil {
		return nil, domain.ErrNotFound
	}
	return task, nil
}

func validateFields(f *domain.Fields) error {
	if f.Status != nil {
		status := strings.ToUpper(strings.TrimSpace(*f.Status))
		if !domain.ValidStatus(status) {
			return domain.ErrInvalidStatus
		}
		f.Status = &status
	}
	if f.Priority != nil {
		priority := strings.ToUpper(strings.TrimSpace(*f.Priority))
		if !domain.ValidPriority(priority) {
			return domain.ErrInvalidPriority
		}
		f.Priority = &priority
	}
	if f.EstimatedHours != nil && *f.EstimatedHours < 0 {
		return domain.ErrInvalidHours
	}
	if f.ActualHours != nil && *f.ActualHours < 0 {
		return domain.ErrInvalidHours
	}
	if f.ProgressPercentage != nil && (*f.ProgressPercentage < 0 || *f.ProgressPercentage > 100) {
		return domain.ErrInvalidProgress
	}
	return nil
}

func updateFields(req domain.UpdateRequest) map[string]any {
	fields := map[string]any{}
	ids := map[string]*snowflake.ID{
		"project_id":      req.ProjectID,
		"deal_id":         req.DealID,
		"client_id":       req.ClientID,
		"organization_id": req.OrganizationID,
		"parent_task_id":  req.ParentTaskID,
		"assigned_to":     req.AssignedTo,
	}
	for col, v := range ids {
		if v != nil {
			fields[col] = *v
		}
	}
	if req.Title != nil {
		fields["title"] = *req.Title
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
	if req.AssignedUsers != nil {
		fields["assigned_users"] = datatypes.JSONSlice[string](req.AssignedUsers)
	}
	if req.StartDate != nil {
		fields["start_date"] = *req.StartDate
	}
	if req.DueDate != nil {
		fields["due_date"] = *req.DueDate
	}
	if req.EstimatedHours != nil {
		fields["estimated_hours"] = *req.EstimatedHours
	}
	if req.ActualHours != nil {
		fields["actual_hours"] = *req.ActualHours
	}
	if req.ProgressPercentage != nil {
		fields["progress_percentage"] = *req.ProgressPercentage
	}
	if req.IsBlocked != nil {
		fields["is_blocked"] = *req.IsBlocked
	}
	if req.BlockedReason != nil {
		fields["blocked_reason"] = *req.BlockedReason
	}
	if req.Tags != nil {
		fields["tags"] = datatypes.JSONSlice[string](req.Tags)
	}
	if req.CustomFields != nil {
		fields["custom_fields"] = datatypes.JSONMap(req.CustomFields)
	}
	if req.Attachments != nil {
		fields["attachments"] = datatypes.JSON(req.Attachments)
	}
	if req.Checklist != nil {
		fields["checklist"] = datatypes.JSON(req.Checklist)
	}
	return fields
}

func stringOr(v *string, def string) string {
	if v == nil || strings.TrimSpace(*v) == "" {
		return def
	}
	return *v
}
