package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/verlyx/hub/internal/authorization"
	"github.com/verlyx/hub/internal/clock"
	"github.com/verlyx/hub/internal/companycontext"
	"github.com/verlyx/hub/internal/config"
	"github.com/verlyx/hub/internal/pdfgen/domain"
	"github.com/verlyx/hub/internal/providers/pdf"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB       *gorm.DB
	Log      *zap.Logger
	GenID    *snowflake.Node
	Repo     domain.Repository
	Authz    authorization.Service
	Clock    clock.Clock
	Cfg      config.Config
	Renderer pdf.Renderer
}

type Service struct {
	db         *gorm.DB
	log        *zap.Logger
	genID      *snowflake.Node
	repo       domain.Repository
	authz      authorization.Service
	clock      clock.Clock
	storageDir string
	renderer   pdf.Renderer
}

func New(p Params) domain.Service {
	return &Service{
		db:         p.DB,
		log:        p.Log.Named("pdfgen.service"),
		genID:      p.GenID,
		repo:       p.Repo,
		authz:      p.Authz,
		clock:      p.Clock,
		storageDir: p.Cfg.StorageDir,
		renderer:   p.Renderer,
	}
}

func (s *Service) CreateTemplate(ctx context.Context, req domain.CreateTemplateRequest) (*domain.Template, error) {
	companyID, ok := companycontext.Resolve(ctx, req.MyCompanyID)
	if !ok {
		return nil, domain.ErrInvalidCompany
	}
	if err := authorization.Require(ctx, s.authz, companyID, authorization.ObjectPDF, authorization.ActionGenerate); err != nil {
		return nil, err
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, domain.ErrInvalidName
	}
	kind := strings.ToLower(strings.TrimSpace(req.TemplateType))
	if !domain.ValidTemplateType(kind) {
		return nil, domain.ErrInvalidTemplateType
	}
	data := datatypes.JSONMap(req.TemplateData)
	if data == nil {
		data = datatypes.JSONMap{}
	}
	active := true
	if req.IsActive != nil {
		active = *req.IsActive
	}

	var createdBy *snowflake.ID
	if userID, ok := companycontext.UserIDFromContext(ctx); ok {
		createdBy = &userID
	}
	now := s.clock.Now()
	tpl := &domain.Template{
		ID:           s.genID.Generate(),
		MyCompanyID:  companyID,
		Name:         name,
		Description:  req.Description,
		TemplateType: kind,
		TemplateData: data,
		IsActive:     active,
		CreatedBy:    createdBy,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.repo.InsertTemplate(ctx, s.db, tpl); err != nil {
		return nil, err
	}
	return tpl, nil
}

func (s *Service) ListTemplates(ctx context.Context, req domain.ListTemplatesRequest) ([]domain.Template, error) {
	companyID, ok := companycontext.Resolve(ctx, req.MyCompanyID)
	if !ok {
		return nil, domain.ErrInvalidCompany
	}
	if err := authorization.RequireMember(ctx, s.authz, companyID); err != nil {
		return nil, err
	}
	kind := strings.ToLower(strings.TrimSpace(req.TemplateType))
	if kind != "" && !domain.ValidTemplateType(kind) {
		return nil, domain.ErrInvalidTemplateType
	}
	return s.repo.ListTemplates(ctx, s.db, domain.TemplateFilter{
		MyCompanyID:  companyID,
		TemplateType: kind,
		IsActive:     req.IsActive,
	})
}

func (s *Service) GetTemplate(ctx context.Context, id snowflake.ID) (*domain.Template, error) {
	tpl, err := s.repo.FindTemplate(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	if tpl == nil {
		return nil, domain.ErrNotFound
	}
	if err := authorization.RequireMember(ctx, s.authz, tpl.MyCompanyID); err != nil {
		return nil, err
	}
	return tpl, nil
}

func (s *Service) UpdateTemplate(ctx context.Context, id snowflake.ID, req domain.UpdateTemplateRequest) (*domain.Template, error) {
	tpl, err := s.editable(ctx, id)
	if err != nil {
		return nil, err
	}

	fields := map[string]any{}
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, domain.ErrInvalidName
		}
		fields["name"] = name
	}
	if req.Description != nil {
		fields["description"] = *req.Description
	}
	if req.TemplateType != nil {
		kind := strings.ToLower(strings.TrimSpace(*req.TemplateType))
		if !domain.ValidTemplateType(kind) {
			return nil, domain.ErrInvalidTemplateType
		}
		fields["template_type"] = kind
	}
	if req.TemplateData != nil {
		fields["template_data"] = datatypes.JSONMap(req.TemplateData)
	}
	if req.IsActive != nil {
		fields["is_active"] = *req.IsActive
	}
	if len(fields) == 0 {
		return tpl, nil
	}
	if err := s.repo.UpdateTemplate(ctx, s.db, id, fields); err != nil {
		return nil, err
	}
	return s.repo.FindTemplate(ctx, s.db, id)
}

// DeleteTemplate keeps previously generated files and detaches them.
func (s *Service) DeleteTemplate(ctx context.Context, id snowflake.ID) error {
	if _, err := s.editable(ctx, id); err != nil {
		return err
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.repo.DetachGenerated(ctx, tx, id); err != nil {
			return err
		}
		return s.repo.DeleteTemplate(ctx, tx, id)
	})
}

func (s *Service) editable(ctx context.Context, id snowflake.ID) (*domain.Template, error) {
	tpl, err := s.repo.FindTemplate(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	if tpl == nil {
		return nil, domain.ErrNotFound
	}
	if err := authorization.Require(ctx, s.authz, tpl.MyCompanyID, authorization.ObjectPDF, authorization.ActionGenerate); err != nil {
		return nil, err
	}
	return tpl, nil
}
