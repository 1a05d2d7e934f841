package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/verlyx/hub/internal/authorization"
	"github.com/verlyx/hub/internal/clock"
	"github.com/verlyx/hub/internal/companycontext"
	"github.com/verlyx/hub/internal/hierarchy"
	"github.com/verlyx/hub/internal/organization/domain"
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
		log:   p.Log.Named("organization.service"),
		genID: p.GenID,
		repo:  p.Repo,
		authz: p.Authz,
		clock: p.Clock,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateRequest) (*domain.Organization, error) {
	companyID, ok := companycontext.Resolve(ctx, req.MyCompanyID)
	if !ok {
		return nil, domain.ErrInvalidCompany
	}
	if err := authorization.RequireMember(ctx, s.authz, companyID); err != nil {
		return nil, err
	}
	if req.ClientID == 0 {
		return nil, domain.ErrInvalidClient
	}
	if req.Name == nil || strings.TrimSpace(*req.Name) == "" {
		return nil, domain.ErrInvalidName
	}
	orgType := domain.TypeBranch
	if req.Type != nil && strings.TrimSpace(*req.Type) != "" {
		orgType = strings.ToUpper(strings.TrimSpace(*req.Type))
		if !domain.ValidType(orgType) {
			return nil, domain.ErrInvalidType
		}
	}
	if req.ParentOrganizationID != nil {
		if err := s.checkParent(ctx, companyID, req.ClientID, 0, *req.ParentOrganizationID); err != nil {
			return nil, err
		}
	}

	now := s.clock.Now()
	org := &domain.Organization{
		ID:                   s.genID.Generate(),
		MyCompanyID:          companyID,
		ClientID:             req.ClientID,
		ParentOrganizationID: req.ParentOrganizationID,
		Name:                 strings.TrimSpace(*req.Name),
		Code:                 req.Code,
		Type:                 orgType,
		Address:              req.Address,
		City:                 req.City,
		State:                req.State,
		Country:              req.Country,
		PostalCode:           req.PostalCode,
		Latitude:             req.Latitude,
		Longitude:            req.Longitude,
		Phone:                req.Phone,
		Email:                req.Email,
		Website:              req.Website,
		EmployeesCount:       req.EmployeesCount,
		Size:                 req.Size,
		BusinessHours:        datatypes.JSON(req.BusinessHours),
		Timezone:             req.Timezone,
		PrimaryContactName:   req.PrimaryContactName,
		PrimaryContactEmail:  req.PrimaryContactEmail,
		PrimaryContactPhone:  req.PrimaryContactPhone,
		Tags:                 datatypes.JSONSlice[string](req.Tags),
		CustomFields:         datatypes.JSONMap(req.CustomFields),
		Notes:                req.Notes,
		IsActive:             true,
		CreatedAt:            now,
		UpdatedAt:            now,
	}
	if userID, ok := companycontext.UserIDFromContext(ctx); ok {
		org.CreatedBy = &userID
	}

	if err := s.repo.Insert(ctx, s.db, org); err != nil {
		return nil, err
	}
	return org, nil
}

func (s *Service) List(ctx context.Context, req domain.ListRequest) ([]domain.Organization, error) {
	companyID, ok := companycontext.Resolve(ctx, req.MyCompanyID)
	if !ok {
		return nil, domain.ErrInvalidCompany
	}
	if err := authorization.RequireMember(ctx, s.authz, companyID); err != nil {
		return nil, err
	}
	return s.repo.List(ctx, s.db, domain.ListFilter{MyCompanyID: companyID, ClientID: req.ClientID})
}

func (s *Service) Get(ctx context.Context, id snowflake.ID) (*domain.Organization, error) {
	return s.load(ctx, id)
}

func (s *Service) Update(ctx context.Context, id snowflake.ID, req domain.UpdateRequest) (*domain.Organization, error) {
	org, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Name != nil && strings.TrimSpace(*req.Name) == "" {
		return nil, domain.ErrInvalidName
	}
	if req.Type != nil {
		t := strings.ToUpper(strings.TrimSpace(*req.Type))
		if !domain.ValidType(t) {
			return nil, domain.ErrInvalidType
		}
		req.Type = &t
	}
	if req.ParentOrganizationID != nil {
		if err := s.checkParent(ctx, org.MyCompanyID, org.ClientID, org.ID, *req.ParentOrganizationID); err != nil {
			return nil, err
		}
	}

	fields := updateFields(req)
	if len(fields) == 0 {
		return org, nil
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
	return s.repo.Delete(ctx, s.db, id)
}

// Hierarchy returns the client's organization tree as seen by the active
// company. Rows owned by another company are dropped.
func (s *Service) Hierarchy(ctx context.Context, clientID snowflake.ID) ([]*domain.Node, error) {
	companyID, ok := companycontext.Resolve(ctx, nil)
	if !ok {
		return nil, domain.ErrInvalidCompany
	}
	if err := authorization.RequireMember(ctx, s.authz, companyID); err != nil {
		return nil, err
	}
	if clientID == 0 {
		return nil, domain.ErrInvalidClient
	}
	rows, err := s.repo.Hierarchy(ctx, s.db, clientID)
	if err != nil {
		return nil, err
	}
	owned, err := s.repo.List(ctx, s.db, domain.ListFilter{MyCompanyID: companyID, ClientID: &clientID})
	if err != nil {
		return nil, err
	}
	ids := make(map[snowflake.ID]struct{}, len(owned))
	for _, org := range owned {
		ids[org.ID] = struct{}{}
	}
	visible := rows[:0]
	for _, row := range rows {
		if _, ok := ids[row.ID]; ok {
			visible = append(visible, row)
		}
	}
	return BuildTree(visible), nil
}

// BuildTree nests hierarchy rows under their parents. Rows whose parent is
// not in the result are returned as roots.
func BuildTree(rows []domain.HierarchyRow) []*domain.Node {
	nodes := make([]*domain.Node, 0, len(rows))
	for _, row := range rows {
		nodes = append(nodes, &domain.Node{
			ID:                   row.ID,
			Name:                 row.Name,
			ParentOrganizationID: row.ParentOrganizationID,
			Level:                row.Level,
			Path:                 row.Path,
			Type:                 row.Type,
			Children:             []*domain.Node{},
		})
	}
	return hierarchy.Build(nodes,
		func(n *domain.Node) snowflake.ID { return n.ID },
		func(n *domain.Node) (snowflake.ID, bool) {
			if n.ParentOrganizationID == nil {
				return 0, false
			}
			return *n.ParentOrganizationID, true
		},
		func(parent, child *domain.Node) { parent.Children = append(parent.Children, child) },
	)
}

func (s *Service) checkParent(ctx context.Context, companyID, clientID, self, parentID snowflake.ID) error {
	if parentID == self {
		return domain.ErrInvalidParent
	}
	parent, err := s.repo.FindByID(ctx, s.db, parentID)
	if err != nil {
		return err
	}
	if parent == nil || parent.MyCompanyID != companyID || parent.ClientID != clientID {
		return domain.ErrInvalidParent
	}
	return nil
}

func (s *Service) load(ctx context.Context, id snowflake.ID) (*domain.Organization, error) {
	org, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := authorization.RequireMember(ctx, s.authz, org.MyCompanyID); err != nil {
		return nil, err
	}
	return org, nil
}

func (s *Service) find(ctx context.Context, id snowflake.ID) (*domain.Organization, error) {
	org, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	if org == nil {
		return nil, domain.ErrNotFound
	}
	return org, nil
}

func updateFields(req domain.UpdateRequest) map[string]any {
	fields := map[string]any{}
	strs := map[string]*string{
		"name":                  req.Name,
		"code":                  req.Code,
		"type":                  req.Type,
		"address":               req.Address,
		"city":                  req.City,
		"state":                 req.State,
		"country":               req.Country,
		"postal_code":           req.PostalCode,
		"phone":                 req.Phone,
		"email":                 req.Email,
		"website":               req.Website,
		"timezone":              req.Timezone,
		"primary_contact_name":  req.PrimaryContactName,
		"primary_contact_email": req.PrimaryContactEmail,
		"primary_contact_phone": req.PrimaryContactPhone,
		"notes":                 req.Notes,
	}
	for col, v := range strs {
		if v != nil {
			fields[col] = strings.TrimSpace(*v)
		}
	}
	if req.ParentOrganizationID != nil {
		fields["parent_organization_id"] = *req.ParentOrganizationID
	}
	if req.Latitude != nil {
		fields["latitude"] = *req.Latitude
	}
	if req.Longitude != nil {
		fields["longitude"] = *req.Longitude
	}
	if req.EmployeesCount != nil {
		fields["employees_count"] = *req.EmployeesCount
	}
	if req.Size != nil {
		fields["size"] = *req.Size
	}
	if req.BusinessHours != nil {
		fields["business_hours"] = datatypes.JSON(req.BusinessHours)
	}
	if req.Tags != nil {
		fields["tags"] = datatypes.JSONSlice[string](req.Tags)
	}
	if req.CustomFields != nil {
		fields["custom_fields"] = datatypes.JSONMap(req.CustomFields)
	}
	if req.IsActive != nil {
		fields["is_active"] = *req.IsActive
	}
	return fields
}
