package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/verlyx/hub/internal/authorization"
	"github.com/verlyx/hub/internal/clock"
	"github.com/verlyx/hub/internal/companycontext"
	"github.com/verlyx/hub/internal/taskcomment/domain"
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
		log:   p.Log.Named("taskcomment.service"),
		genID: p.GenID,
		repo:  p.Repo,
		authz: p.Authz,
		clock: p.Clock,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateRequest) (*domain.Comment, error) {
	userID, ok := companycontext.UserIDFromContext(ctx)
	if !ok {
		return nil, domain.ErrUnauthenticated
	}
	content := strings.TrimSpace(req.Content)
	if content == "" {
		return nil, domain.ErrInvalidContent
	}
	companyID, err := s.taskCompany(ctx, req.TaskID)
	if err != nil {
		return nil, err
	}
	if req.ParentCommentID != nil {
		parent, err := s.repo.FindByID(ctx, s.db, *req.ParentCommentID)
		if err != nil {
			return nil, err
		}
		if parent == nil || parent.TaskID != req.TaskID {
			return nil, domain.ErrInvalidParent
		}
	}

	now := s.clock.Now()
	comment := &domain.Comment{
		ID:              s.genID.Generate(),
		TaskID:          req.TaskID,
		MyCompanyID:     companyID,
		UserID:          userID,
		Content:         content,
		ContentHTML:     req.ContentHTML,
		ParentCommentID: req.ParentCommentID,
		MentionedUsers:  datatypes.JSONSlice[string](req.MentionedUsers),
		Attachments:     datatypes.JSON(req.Attachments),
		Reactions:       datatypes.NewJSONType(domain.Reactions{}),
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if comment.MentionedUsers == nil {
		comment.MentionedUsers = datatypes.JSONSlice[string]{}
	}
	if len(comment.Attachments) == 0 {
		comment.Attachments = datatypes.JSON("[]")
	}
	if err := s.repo.Insert(ctx, s.db, comment); err != nil {
		return nil, err
	}
	return comment, nil
}

func (s *Service) ListByTask(ctx context.Context, taskID snowflake.ID) ([]domain.Comment, error) {
	if _, err := s.taskCompany(ctx, taskID); err != nil {
		return nil, err
	}
	return s.repo.ListByTask(ctx, s.db, taskID)
}

func (s *Service) Get(ctx context.Context, id snowflake.ID) (*domain.Comment, error) {
	return s.load(ctx, s.db, id)
}

func (s *Service) Update(ctx context.Context, id snowflake.ID, req domain.UpdateRequest) (*domain.Comment, error) {
	comment, err := s.loadOwn(ctx, id)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	fields := map[string]any{
		"is_edited":  true,
		"edited_at":  now,
		"updated_at": now,
	}
	if req.Content != nil {
		content := strings.TrimSpace(*req.Content)
		if content == "" {
			return nil, domain.ErrInvalidContent
		}
		fields["content"] = content
	}
	if req.ContentHTML != nil {
		fields["content_html"] = *req.ContentHTML
	}
	if req.MentionedUsers != nil {
		fields["mentioned_users"] = datatypes.JSONSlice[string](req.MentionedUsers)
	}
	if len(req.Attachments) > 0 {
		fields["attachments"] = datatypes.JSON(req.Attachments)
	}
	if err := s.repo.Update(ctx, s.db, comment.ID, fields); err != nil {
		return nil, err
	}
	return s.find(ctx, s.db, comment.ID)
}

func (s *Service) Delete(ctx context.Context, id snowflake.ID) error {
	comment, err := s.loadOwn(ctx, id)
	if err != nil {
		return err
	}
	return s.repo.Delete(ctx, s.db, comment.ID)
}

func (s *Service) AddReaction(ctx context.Context, id snowflake.ID, emoji string) (*domain.Comment, error) {
	return s.react(ctx, id, emoji, domain.Reactions.Add)
}

func (s *Service) RemoveReaction(ctx context.Context, id snowflake.ID, emoji string) (*domain.Comment, error) {
	return s.react(ctx, id, emoji, domain.Reactions.Remove)
}

// react applies change to the reactions of a locked comment row.
func (s *Service) react(ctx context.Context, id snowflake.ID, emoji string, change func(domain.Reactions, string, string) bool) (*domain.Comment, error) {
	userID, ok := companycontext.UserIDFromContext(ctx)
	if !ok {
		return nil, domain.ErrUnauthenticated
	}
	emoji = strings.TrimSpace(emoji)
	if emoji == "" {
		return nil, domain.ErrInvalidEmoji
	}

	var result *domain.Comment
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		comment, err := s.repo.FindForUpdate(ctx, tx, id)
		if err != nil {
			return err
		}
		if comment == nil {
			return domain.ErrNotFound
		}
		if err := authorization.RequireMember(ctx, s.authz, comment.MyCompanyID); err != nil {
			return err
		}

		reactions := comment.Reactions.Data()
		if reactions == nil {
			reactions = domain.Reactions{}
		}
		if change(reactions, emoji, userID.String()) {
			comment.Reactions = datatypes.NewJSONType(reactions)
			if err := s.repo.Update(ctx, tx, comment.ID, map[string]any{
				"reactions":  comment.Reactions,
				"updated_at": s.clock.Now(),
			}); err != nil {
				return err
			}
		}
		result = comment
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *Service) loadOwn(ctx context.Context, id snowflake.ID) (*domain.Comment, error) {
	userID, ok := companycontext.UserIDFromContext(ctx)
	if !ok {
		return nil, domain.ErrUnauthenticated
	}
	comment, err := s.load(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	if comment.UserID != userID {
		return nil, domain.ErrNotAuthor
	}
	return comment, nil
}

func (s *Service) load(ctx context.Context, conn *gorm.DB, id snowflake.ID) (*domain.Comment, error) {
	comment, err := s.find(ctx, conn, id)
	if err != nil {
		return nil, err
	}
	if err := authorization.RequireMember(ctx, s.authz, comment.MyCompanyID); err != nil {
		return nil, err
	}
	return comment, nil
}

func (s *Service) find(ctx context.Context, conn *gorm.DB, id snowflake.ID) (*domain.Comment, error) {
	comment, err := s.repo.FindByID(ctx, conn, id)
	if err != nil {
		return nil, err
	}
	if comment == nil {
		return nil, domain.ErrNotFound
	}
	return comment, nil
}

func (s *Service) taskCompany(ctx context.Context, taskID snowflake.ID) (snowflake.ID, error) {
	if taskID == 0 {
		return 0, domain.ErrInvalidTask
	}
	companyID, err := s.repo.TaskCompany(ctx, s.db, taskID)
	if err != nil {
		return 0, err
	}
	if companyID == 0 {
		return 0, domain.ErrInvalidTask
	}
	if err := authorization.RequireMember(ctx, s.authz, companyID); err != nil {
		return 0, err
	}
	return companyID, nil
}
