package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/verlyx/hub/internal/clock"
	"github.com/verlyx/hub/internal/companycontext"
	"github.com/verlyx/hub/internal/events"
	"github.com/verlyx/hub/internal/notification/domain"
	obsmetrics "github.com/verlyx/hub/internal/observability/metrics"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB        *gorm.DB
	Log       *zap.Logger
	GenID     *snowflake.Node
	Repo      domain.Repository
	Publisher events.Publisher
	Clock     clock.Clock
	Metrics   *obsmetrics.Metrics `optional:"true"`
}

type Service struct {
	db        *gorm.DB
	log       *zap.Logger
	genID     *snowflake.Node
	repo      domain.Repository
	publisher events.Publisher
	clock     clock.Clock
	metrics   *obsmetrics.Metrics
}

func New(p Params) domain.Service {
	return &Service{
		db:        p.DB,
		log:       p.Log.Named("notification.service"),
		genID:     p.GenID,
		repo:      p.Repo,
		publisher: p.Publisher,
		clock:     p.Clock,
		metrics:   p.Metrics,
	}
}

// Create stores a notification for any user. It is also called by other
// services, so it does not require a caller in ctx.
func (s *Service) Create(ctx context.Context, req domain.CreateRequest) (*domain.Notification, error) {
	if req.UserID == 0 {
		return nil, domain.ErrInvalidUser
	}
	kind := strings.ToLower(strings.TrimSpace(req.Type))
	if !domain.ValidType(kind) {
		return nil, domain.ErrInvalidType
	}
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, domain.ErrInvalidTitle
	}
	message := strings.TrimSpace(req.Message)
	if message == "" {
		return nil, domain.ErrInvalidMessage
	}

	metadata := datatypes.JSONMap(req.Metadata)
	if metadata == nil {
		metadata = datatypes.JSONMap{}
	}
	n := &domain.Notification{
		ID:          s.genID.Generate(),
		UserID:      req.UserID,
		Type:        kind,
		Title:       title,
		Message:     message,
		ActionURL:   req.ActionURL,
		RelatedType: req.RelatedType,
		RelatedID:   req.RelatedID,
		RelatedName: req.RelatedName,
		Metadata:    metadata,
		CreatedAt:   s.clock.Now(),
	}
	if err := s.repo.Insert(ctx, s.db, n); err != nil {
		return nil, err
	}

	s.metrics.RecordNotificationCreated(ctx, n.Type)
	events.PublishSafe(ctx, s.publisher, s.log, events.SubjectNotificationCreated, domain.Created{
		NotificationID: n.ID,
		UserID:         n.UserID,
		Type:           n.Type,
		Title:          n.Title,
	})
	return n, nil
}

func (s *Service) List(ctx context.Context, req domain.ListRequest) (*domain.ListResult, error) {
	userID, err := s.owner(ctx, req.UserID)
	if err != nil {
		return nil, err
	}
	filter := domain.ListFilter{UserID: userID, Read: req.Read, Limit: clampLimit(req.Limit)}
	if kind := strings.ToLower(strings.TrimSpace(req.Type)); kind != "" && kind != "all" {
		if !domain.ValidType(kind) {
			return nil, domain.ErrInvalidType
		}
		filter.Type = kind
	}

	notifications, err := s.repo.List(ctx, s.db, filter)
	if err != nil {
		return nil, err
	}
	unread, err := s.repo.CountUnread(ctx, s.db, userID)
	if err != nil {
		return nil, err
	}
	return &domain.ListResult{Notifications: notifications, UnreadCount: unread}, nil
}

func (s *Service) MarkRead(ctx context.Context, id snowflake.ID, req domain.MarkReadRequest) (*domain.Notification, error) {
	if req.Read == nil {
		return nil, domain.ErrInvalidRead
	}
	userID, err := s.owner(ctx, req.UserID)
	if err != nil {
		return nil, err
	}
	n, err := s.repo.FindForUser(ctx, s.db, id, userID)
	if err != nil {
		return nil, err
	}
	if n == nil {
		return nil, domain.ErrNotFound
	}

	fields := map[string]any{"is_read": *req.Read, "read_at": nil}
	if *req.Read {
		fields["read_at"] = s.clock.Now()
	}
	if err := s.repo.Update(ctx, s.db, n.ID, fields); err != nil {
		return nil, err
	}
	return s.repo.FindForUser(ctx, s.db, id, userID)
}

func (s *Service) Delete(ctx context.Context, id snowflake.ID, userID *snowflake.ID) error {
	owner, err := s.owner(ctx, userID)
	if err != nil {
		return err
	}
	deleted, err := s.repo.DeleteForUser(ctx, s.db, id, owner)
	if err != nil {
		return err
	}
	if deleted == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (s *Service) MarkAllRead(ctx context.Context, userID *snowflake.ID) (int64, error) {
	owner, err := s.owner(ctx, userID)
	if err != nil {
		return 0, err
	}
	return s.repo.MarkAllRead(ctx, s.db, owner, map[string]any{
		"is_read": true,
		"read_at": s.clock.Now(),
	})
}

// owner resolves whose notifications are addressed. It defaults to the
// caller, and callers may only address their own.
func (s *Service) owner(ctx context.Context, explicit *snowflake.ID) (snowflake.ID, error) {
	caller, ok := companycontext.UserIDFromContext(ctx)
	switch {
	case explicit == nil && !ok:
		return 0, domain.ErrInvalidUser
	case explicit == nil:
		return caller, nil
	case ok && *explicit != caller:
		return 0, domain.ErrForbidden
	default:
		return *explicit, nil
	}
}

func clampLimit(limit int) int {
	if limit <= 0 {
		return domain.DefaultLimit
	}
	if limit > domain.MaxLimit {
		return domain.MaxLimit
	}
	return limit
}
