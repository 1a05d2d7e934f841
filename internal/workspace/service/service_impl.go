package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/gosimple/slug"
	"github.com/verlyx/hub/internal/authorization"
	"github.com/verlyx/hub/internal/clock"
	"github.com/verlyx/hub/internal/companycontext"
	"github.com/verlyx/hub/internal/workspace/domain"
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
		log:   p.Log.Named("workspace.service"),
		genID: p.GenID,
		repo:  p.Repo,
		authz: p.Authz,
		clock: p.Clock,
	}
}

func (s *Service) CreateWorkspace(ctx context.Context, req domain.CreateWorkspaceRequest) (*domain.Workspace, error) {
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

	now := s.clock.Now()
	ws := &domain.Workspace{
		ID:                  s.genID.Generate(),
		MyCompanyID:         companyID,
		Name:                name,
		Description:         req.Description,
		Icon:                req.Icon,
		Color:               req.Color,
		IsPublic:            boolOr(req.IsPublic, false),
		DefaultPageTemplate: req.DefaultPageTemplate,
		CreatedAt:           now,
		UpdatedAt:           now,
	}
	if req.Order != nil {
		ws.Order = *req.Order
	}
	if userID, ok := companycontext.UserIDFromContext(ctx); ok {
		ws.CreatedBy = &userID
	}
	if err := s.repo.InsertWorkspace(ctx, s.db, ws); err != nil {
		return nil, err
	}
	return ws, nil
}

func (s *Service) ListWorkspaces(ctx context.Context, companyID *snowflake.ID) ([]domain.Workspace, error) {
	resolved, ok := companycontext.Resolve(ctx, companyID)
	if !ok {
		return nil, domain.ErrInvalidCompany
	}
	if err := authorization.RequireMember(ctx, s.authz, resolved); err != nil {
		return nil, err
	}
	return s.repo.ListWorkspaces(ctx, s.db, resolved)
}

func (s *Service) GetWorkspace(ctx context.Context, id snowflake.ID) (*domain.Workspace, error) {
	return s.loadWorkspace(ctx, id)
}

func (s *Service) UpdateWorkspace(ctx context.Context, id snowflake.ID, req domain.UpdateWorkspaceRequest) (*domain.Workspace, error) {
	ws, err := s.loadWorkspace(ctx, id)
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
	setIf(fields, "description", req.Description)
	setIf(fields, "icon", req.Icon)
	setIf(fields, "color", req.Color)
	setIf(fields, "is_public", req.IsPublic)
	setIf(fields, "default_page_template", req.DefaultPageTemplate)
	setIf(fields, "order", req.Order)

	if err := s.repo.UpdateWorkspace(ctx, s.db, ws.ID, fields); err != nil {
		return nil, err
	}
	return s.findWorkspace(ctx, ws.ID)
}

func (s *Service) DeleteWorkspace(ctx context.Context, id snowflake.ID) error {
	ws, err := s.loadWorkspace(ctx, id)
	if err != nil {
		return err
	}
	return s.repo.DeleteWorkspace(ctx, s.db, ws.ID)
}

func (s *Service) CreatePage(ctx context.Context, req domain.CreatePageRequest) (*domain.Page, error) {
	ws, err := s.repo.FindWorkspace(ctx, s.db, req.WorkspaceID)
	if err != nil {
		return nil, err
	}
	if ws == nil {
		return nil, domain.ErrInvalidWorkspace
	}
	if err := authorization.RequireMember(ctx, s.authz, ws.MyCompanyID); err != nil {
		return nil, err
	}
	if req.ParentPageID != nil {
		parent, err := s.repo.FindPage(ctx, s.db, *req.ParentPageID)
		if err != nil {
			return nil, err
		}
		if parent == nil || parent.WorkspaceID != ws.ID {
			return nil, domain.ErrInvalidParent
		}
	}

	title := domain.DefaultPageTitle
	if req.Title != nil && strings.TrimSpace(*req.Title) != "" {
		title = strings.TrimSpace(*req.Title)
	}
	now := s.clock.Now()
	page := &domain.Page{
		ID:              s.genID.Generate(),
		WorkspaceID:     ws.ID,
		ParentPageID:    req.ParentPageID,
		Title:           title,
		Slug:            slug.Make(title),
		Icon:            req.Icon,
		CoverURL:        req.CoverURL,
		IsPublic:        boolOr(req.IsPublic, false),
		IsTemplate:      boolOr(req.IsTemplate, false),
		TemplateType:    req.TemplateType,
		CanComment:      boolOr(req.CanComment, true),
		CanEditByOthers: boolOr(req.CanEditByOthers, true),
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if userID, ok := companycontext.UserIDFromContext(ctx); ok {
		page.CreatedBy = &userID
		page.LastEditedBy = &userID
	}
	if err := s.repo.InsertPage(ctx, s.db, page); err != nil {
		return nil, err
	}
	s.log.Debug("page created",
		zap.String("page_id", page.ID.String()),
		zap.String("workspace_id", ws.ID.String()),
	)
	return page, nil
}

func (s *Service) ListPages(ctx context.Context, req domain.ListPagesRequest) ([]domain.Page, error) {
	if _, err := s.loadWorkspace(ctx, req.WorkspaceID); err != nil {
		if err == domain.ErrNotFound {
			return nil, domain.ErrInvalidWorkspace
		}
		return nil, err
	}
	return s.repo.ListPages(ctx, s.db, req.WorkspaceID, req.ParentPageID)
}

func (s *Service) GetPage(ctx context.Context, id snowflake.ID) (*domain.PageWithBlocks, error) {
	page, err := s.loadPage(ctx, id)
	if err != nil {
		return nil, err
	}
	blocks, err := s.repo.ListBlocks(ctx, s.db, page.ID)
	if err != nil {
		return nil, err
	}
	return &domain.PageWithBlocks{Page: *page, Blocks: blocks}, nil
}

func (s *Service) UpdatePage(ctx context.Context, id snowflake.ID, req domain.UpdatePageRequest) (*domain.Page, error) {
	page, err := s.loadPage(ctx, id)
	if err != nil {
		return nil, err
	}
	fields := map[string]any{"updated_at": s.clock.Now()}
	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)
		if title == "" {
			title = domain.DefaultPageTitle
		}
		fields["title"] = title
		fields["slug"] = slug.Make(title)
	}
	setIf(fields, "icon", req.Icon)
	setIf(fields, "cover_url", req.CoverURL)
	setIf(fields, "is_public", req.IsPublic)
	setIf(fields, "is_template", req.IsTemplate)
	setIf(fields, "template_type", req.TemplateType)
	setIf(fields, "can_comment", req.CanComment)
	setIf(fields, "can_edit_by_others", req.CanEditByOthers)
	if userID, ok := companycontext.UserIDFromContext(ctx); ok {
		fields["last_edited_by"] = userID
	}

	if err := s.repo.UpdatePage(ctx, s.db, page.ID, fields); err != nil {
		return nil, err
	}
	return s.findPage(ctx, page.ID)
}

func (s *Service) DeletePage(ctx context.Context, id snowflake.ID) error {
	page, err := s.loadPage(ctx, id)
	if err != nil {
		return err
	}
	return s.repo.DeletePage(ctx, s.db, page.ID)
}

func (s *Service) DuplicatePage(ctx context.Context, id snowflake.ID, newTitle *string) (snowflake.ID, error) {
	page, err := s.loadPage(ctx, id)
	if err != nil {
		return 0, err
	}
	if newTitle != nil {
		trimmed := strings.TrimSpace(*newTitle)
		if trimmed == "" {
			newTitle = nil
		} else {
			newTitle = &trimmed
		}
	}
	newID, err := s.repo.DuplicatePage(ctx, s.db, page.ID, newTitle)
	if err != nil {
		return 0, err
	}
	if newID == 0 {
		return 0, domain.ErrDuplicateFailed
	}
	return newID, nil
}

func (s *Service) CreateBlock(ctx context.Context, req domain.CreateBlockRequest) (*domain.Block, error) {
	if err := s.requirePage(ctx, req.PageID); err != nil {
		return nil, err
	}
	if !domain.ValidBlockType(req.Type) {
		return nil, domain.ErrInvalidBlockType
	}
	if req.Content == nil {
		return nil, domain.ErrInvalidContent
	}
	if req.IndentLevel != nil && *req.IndentLevel < 0 {
		return nil, domain.ErrInvalidIndent
	}

	now := s.clock.Now()
	block := &domain.Block{
		ID:            s.genID.Generate(),
		PageID:        req.PageID,
		ParentBlockID: req.ParentBlockID,
		Type:          req.Type,
		Content:       datatypes.JSONMap(req.Content),
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if req.Order != nil {
		block.Order = *req.Order
	}
	if req.IndentLevel != nil {
		block.IndentLevel = *req.IndentLevel
	}
	if userID, ok := companycontext.UserIDFromContext(ctx); ok {
		block.CreatedBy = &userID
	}
	if err := s.repo.InsertBlock(ctx, s.db, block); err != nil {
		return nil, err
	}
	return block, nil
}

func (s *Service) ListBlocks(ctx context.Context, pageID snowflake.ID) ([]domain.Block, error) {
	if err := s.requirePage(ctx, pageID); err != nil {
		return nil, err
	}
	return s.repo.ListBlocks(ctx, s.db, pageID)
}

func (s *Service) UpdateBlock(ctx context.Context, id snowflake.ID, req domain.UpdateBlockRequest) (*domain.Block, error) {
	block, err := s.loadBlock(ctx, id)
	if err != nil {
		return nil, err
	}
	fields := map[string]any{"updated_at": s.clock.Now()}
	if req.Type != nil {
		if !domain.ValidBlockType(*req.Type) {
			return nil, domain.ErrInvalidBlockType
		}
		fields["type"] = *req.Type
	}
	if req.Content != nil {
		fields["content"] = datatypes.JSONMap(req.Content)
	}
	if req.IndentLevel != nil {
		if *req.IndentLevel < 0 {
			return nil, domain.ErrInvalidIndent
		}
		fields["indent_level"] = *req.IndentLevel
	}
	setIf(fields, "order", req.Order)

	if err := s.repo.UpdateBlock(ctx, s.db, block.ID, fields); err != nil {
		return nil, err
	}
	return s.findBlock(ctx, block.ID)
}

func (s *Service) DeleteBlock(ctx context.Context, id snowflake.ID) error {
	block, err := s.loadBlock(ctx, id)
	if err != nil {
		return err
	}
	return s.repo.DeleteBlock(ctx, s.db, block.ID)
}

// ReorderBlocks applies every position or none. All ids must be distinct
// blocks of the page.
func (s *Service) ReorderBlocks(ctx context.Context, req domain.ReorderBlocksRequest) error {
	if err := s.requirePage(ctx, req.PageID); err != nil {
		return err
	}
	if len(req.Blocks) == 0 {
		return nil
	}
	ids := make([]snowflake.ID, 0, len(req.Blocks))
	seen := make(map[snowflake.ID]struct{}, len(req.Blocks))
	for _, b := range req.Blocks {
		if _, dup := seen[b.ID]; dup {
			return domain.ErrInvalidReorder
		}
		seen[b.ID] = struct{}{}
		ids = append(ids, b.ID)
	}

	now := s.clock.Now()
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		count, err := s.repo.CountBlocks(ctx, tx, req.PageID, ids)
		if err != nil {
			return err
		}
		if count != int64(len(ids)) {
			return domain.ErrInvalidReorder
		}
		for _, b := range req.Blocks {
			if err := s.repo.UpdateBlock(ctx, tx, b.ID, map[string]any{
				"order":      b.Order,
				"updated_at": now,
			}); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *Service) loadWorkspace(ctx context.Context, id snowflake.ID) (*domain.Workspace, error) {
	ws, err := s.findWorkspace(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := authorization.RequireMember(ctx, s.authz, ws.MyCompanyID); err != nil {
		return nil, err
	}
	return ws, nil
}

func (s *Service) findWorkspace(ctx context.Context, id snowflake.ID) (*domain.Workspace, error) {
	ws, err := s.repo.FindWorkspace(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	if ws == nil {
		return nil, domain.ErrNotFound
	}
	return ws, nil
}

func (s *Service) loadPage(ctx context.Context, id snowflake.ID) (*domain.Page, error) {
	page, err := s.findPage(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.requirePage(ctx, page.ID); err != nil {
		return nil, err
	}
	return page, nil
}

func (s *Service) findPage(ctx context.Context, id snowflake.ID) (*domain.Page, error) {
	page, err := s.repo.FindPage(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	if page == nil {
		return nil, domain.ErrNotFound
	}
	return page, nil
}

// requirePage checks the caller belongs to the company owning the page.
func (s *Service) requirePage(ctx context.Context, pageID snowflake.ID) error {
	companyID, err := s.repo.PageCompany(ctx, s.db, pageID)
	if err != nil {
		return err
	}
	if companyID == 0 {
		return domain.ErrInvalidPage
	}
	return authorization.RequireMember(ctx, s.authz, companyID)
}

func (s *Service) loadBlock(ctx context.Context, id snowflake.ID) (*domain.Block, error) {
	block, err := s.findBlock(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.requirePage(ctx, block.PageID); err != nil {
		return nil, err
	}
	return block, nil
}

func (s *Service) findBlock(ctx context.Context, id snowflake.ID) (*domain.Block, error) {
	block, err := s.repo.FindBlock(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	if block == nil {
		return nil, domain.ErrNotFound
	}
	return block, nil
}

func boolOr(v *bool, def bool) bool {
	if v == nil {
		return def
	}
	return *v
}

func setIf[T any](fields map[string]any, column string, v *T) {
	if v != nil {
		fields[column] = *v
	}
}
