package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/verlyx/hub/internal/authorization"
	"github.com/verlyx/hub/internal/clock"
	"github.com/verlyx/hub/internal/companycontext"
	"github.com/verlyx/hub/internal/document/domain"
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
		log:   p.Log.Named("document.service"),
		genID: p.GenID,
		repo:  p.Repo,
		authz: p.Authz,
		clock: p.Clock,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateRequest) (*domain.Document, error) {
	companyID, ok := companycontext.Resolve(ctx, req.MyCompanyID)
	if !ok {
		return nil, domain.ErrInvalidCompany
	}
	if err := authorization.RequireMember(ctx, s.authz, companyID); err != nil {
		return nil, err
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, domain.ErrInvalidName
	}
	path := strings.TrimSpace(req.FilePath)
	if path == "" {
		return nil, domain.ErrInvalidPath
	}
	if req.FileSize != nil && *req.FileSize < 0 {
		return nil, domain.ErrInvalidSize
	}

	now := s.clock.Now()
	doc := &domain.Document{
		ID:          s.genID.Generate(),
		MyCompanyID: companyID,
		Name:        name,
		FilePath:    path,
		FileSize:    req.FileSize,
		MimeType:    req.MimeType,
		Description: req.Description,
		Folder:      req.Folder,
		ProjectID:   req.ProjectID,
		Tags:        datatypes.JSONSlice[string](req.Tags),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if doc.Tags == nil {
		doc.Tags = datatypes.JSONSlice[string]{}
	}
	if userID, ok := companycontext.UserIDFromContext(ctx); ok {
		doc.UploadedBy = &userID
	}
	if err := s.repo.Insert(ctx, s.db, doc); err != nil {
		return nil, err
	}
	s.log.Debug("document stored", zap.String("document_id", doc.ID.String()))
	return doc, nil
}

func (s *Service) List(ctx context.Context, req domain.ListRequest) (pagination.Page[domain.Document], error) {
	companyID, ok := companycontext.Resolve(ctx, req.MyCompanyID)
	if !ok {
		return pagination.Page[domain.Document]{}, domain.ErrInvalidCompany
	}
	if err := authorization.RequireMember(ctx, s.authz, companyID); err != nil {
		return pagination.Page[domain.Document]{}, err
	}
	page := req.Pagination.Normalize()
	docs, total, err := s.repo.List(ctx, s.db, domain.ListFilter{
		MyCompanyID: companyID,
		ProjectID:   req.ProjectID,
		Folder:      req.Folder,
		Search:      req.Search,
	}, page)
	if err != nil {
		return pagination.Page[domain.Document]{}, err
	}
	return pagination.NewPage(docs, page, total), nil
}

func (s *Service) Get(ctx context.Context, id snowflake.ID) (*domain.Document, error) {
	return s.load(ctx, id)
}

func (s *Service) Update(ctx context.Context, id snowflake.ID, req domain.UpdateRequest) (*domain.Document, error) {
	doc, err := s.load(ctx, id)
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
	if req.Description != nil {
		fields["description"] = *req.Description
	}
	if req.ProjectID != nil {
		fields["project_id"] = *req.ProjectID
	}
	if req.Folder != nil {
		fields["folder"] = *req.Folder
	}
	if req.Tags != nil {
		fields["tags"] = datatypes.JSONSlice[string](req.Tags)
	}
	if err := s.repo.Update(ctx, s.db, doc.ID, fields); err != nil {
		return nil, err
	}
	return s.find(ctx, doc.ID)
}

func (s *Service) Delete(ctx context.Context, id snowflake.ID) error {
	doc, err := s.load(ctx, id)
	if err != nil {
		return err
	}
	return s.repo.Delete(ctx, s.db, doc.ID)
}

func (s *Service) load(ctx context.Context, id snowflake.ID) (*domain.Document, error) {
	doc, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := authorization.RequireMember(ctx, s.authz, doc.MyCompanyID); err != nil {
		return nil, err
	}
	return doc, nil
}

func (s *Service) find(ctx context.Context, id snowflake.ID) (*domain.Document, error) {
	doc, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, domain.ErrNotFound
	}
	return doc, nil
}
