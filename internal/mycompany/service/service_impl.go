package service

import (
	"context"
	"errors"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/verlyx/hub/internal/authorization"
	"github.com/verlyx/hub/internal/clock"
	"github.com/verlyx/hub/internal/companycontext"
	"github.com/verlyx/hub/internal/mycompany/domain"
	"github.com/verlyx/hub/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	defaultPrimaryColor   = "#6366f1"
	defaultSecondaryColor = "#8b5cf6"
	defaultCountry        = "Uruguay"
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
		log:   p.Log.Named("mycompany.service"),
		genID: p.GenID,
		repo:  p.Repo,
		authz: p.Authz,
		clock: p.Clock,
	}
}

func (s *Service) List(ctx context.Context) ([]domain.MyCompany, error) {
	userID, ok := companycontext.UserIDFromContext(ctx)
	if !ok {
		return nil, domain.ErrUnauthenticated
	}
	return s.repo.ListForUser(ctx, s.db, userID)
}

func (s *Service) Get(ctx context.Context, id snowflake.ID) (*domain.MyCompany, error) {
	if err := s.authorize(ctx, id, authorization.ObjectCompany, authorization.ActionView); err != nil {
		return nil, err
	}
	return s.find(ctx, id)
}

func (s *Service) Create(ctx context.Context, req domain.CompanyInput) (*domain.MyCompany, error) {
	userID, ok := companycontext.UserIDFromContext(ctx)
	if !ok {
		return nil, domain.ErrUnauthenticated
	}
	if err := validateInput(req, true); err != nil {
		return nil, err
	}

	now := s.clock.Now()
	company := &domain.MyCompany{
		ID:             s.genID.Generate(),
		OwnerUserID:    userID,
		Name:           strings.TrimSpace(*req.Name),
		Type:           req.Type,
		Description:    req.Description,
		LogoURL:        req.LogoURL,
		PrimaryColor:   stringOr(req.PrimaryColor, defaultPrimaryColor),
		SecondaryColor: stringOr(req.SecondaryColor, defaultSecondaryColor),
		TaxID:          req.TaxID,
		Industry:       req.Industry,
		Website:        req.Website,
		Phone:          req.Phone,
		Email:          req.Email,
		Address:        req.Address,
		City:           req.City,
		Country:        stringOr(req.Country, defaultCountry),
		IsActive:       true,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	owner := &domain.Member{
		ID:        s.genID.Generate(),
		CompanyID: company.ID,
		UserID:    userID,
		Role:      authorization.RoleOwner,
		IsActive:  true,
		JoinedAt:  &now,
		CreatedAt: now,
		UpdatedAt: now,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.repo.Insert(ctx, tx, company); err != nil {
			return err
		}
		return s.repo.InsertMember(ctx, tx, owner)
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("company created", zap.String("company_id", company.ID.String()))
	return company, nil
}

func (s *Service) Update(ctx context.Context, id snowflake.ID, req domain.CompanyInput) (*domain.MyCompany, error) {
	if err := s.authorize(ctx, id, authorization.ObjectCompany, authorization.ActionUpdate); err != nil {
		return nil, err
	}
	if err := validateInput(req, false); err != nil {
		return nil, err
	}
	if _, err := s.find(ctx, id); err != nil {
		return nil, err
	}

	fields := updateFields(req)
	if len(fields) > 0 {
		fields["updated_at"] = s.clock.Now()
		if err := s.repo.Update(ctx, s.db, id, fields); err != nil {
			return nil, err
		}
	}
	return s.find(ctx, id)
}

func (s *Service) Delete(ctx context.Context, id snowflake.ID) error {
	if err := s.authorize(ctx, id, authorization.ObjectCompany, authorization.ActionDelete); err != nil {
		return err
	}
	if _, err := s.find(ctx, id); err != nil {
		return err
	}
	return s.repo.Delete(ctx, s.db, id)
}

func (s *Service) ListMembers(ctx context.Context, companyID snowflake.ID) ([]domain.Member, error) {
	if err := s.authorize(ctx, companyID, authorization.ObjectMember, authorization.ActionView); err != nil {
		return nil, err
	}
	return s.repo.ListMembers(ctx, s.db, companyID)
}

func (s *Service) AddMember(ctx context.Context, companyID snowflake.ID, req domain.AddMemberRequest) (*domain.Member, error) {
	if err := s.authorize(ctx, companyID, authorization.ObjectMember, authorization.ActionManage); err != nil {
		return nil, err
	}
	role := strings.ToUpper(strings.TrimSpace(req.Role))
	if !authorization.IsValidRole(role) || role == authorization.RoleOwner {
		return nil, domain.ErrInvalidRole
	}
	if req.UserID == 0 {
		return nil, domain.ErrInvalidUser
	}
	exists, err := s.repo.UserExists(ctx, s.db, req.UserID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, domain.ErrInvalidUser
	}

	existing, err := s.repo.FindMemberByUser(ctx, s.db, companyID, req.UserID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, domain.ErrAlreadyMember
	}

	inviter, _ := companycontext.UserIDFromContext(ctx)
	now := s.clock.Now()
	member := &domain.Member{
		ID:        s.genID.Generate(),
		CompanyID: companyID,
		UserID:    req.UserID,
		Role:      role,
		IsActive:  true,
		InvitedBy: &inviter,
		InvitedAt: &now,
		JoinedAt:  &now,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.InsertMember(ctx, s.db, member); err != nil {
		if db.IsDuplicateKeyErr(err) {
			return nil, domain.ErrAlreadyMember
		}
		return nil, err
	}
	s.authz.Invalidate(companyID, req.UserID)
	return s.repo.FindMember(ctx, s.db, companyID, member.ID)
}

func (s *Service) UpdateMemberRole(ctx context.Context, companyID, memberID snowflake.ID, role string) (*domain.Member, error) {
	if err := s.authorize(ctx, companyID, authorization.ObjectMember, authorization.ActionManage); err != nil {
		return nil, err
	}
	role = strings.ToUpper(strings.TrimSpace(role))
	if !authorization.IsValidRole(role) || role == authorization.RoleOwner {
		return nil, domain.ErrInvalidRole
	}

	member, err := s.mutableMember(ctx, companyID, memberID)
	if err != nil {
		return nil, err
	}
	if err := s.repo.UpdateMember(ctx, s.db, member.ID, map[string]any{
		"role":       role,
		"updated_at": s.clock.Now(),
	}); err != nil {
		return nil, err
	}
	s.authz.Invalidate(companyID, member.UserID)
	return s.repo.FindMember(ctx, s.db, companyID, member.ID)
}

func (s *Service) RemoveMember(ctx context.Context, companyID, memberID snowflake.ID) error {
	if err := s.authorize(ctx, companyID, authorization.ObjectMember, authorization.ActionManage); err != nil {
		return err
	}
	member, err := s.mutableMember(ctx, companyID, memberID)
	if err != nil {
		return err
	}
	if err := s.repo.DeleteMember(ctx, s.db, member.ID); err != nil {
		return err
	}
	s.authz.Invalidate(companyID, member.UserID)
	return nil
}

func (s *Service) mutableMember(ctx context.Context, companyID, memberID snowflake.ID) (*domain.Member, error) {
	member, err := s.repo.FindMember(ctx, s.db, companyID, memberID)
	if err != nil {
		return nil, err
	}
	if member == nil {
		return nil, domain.ErrMemberNotFound
	}
	company, err := s.find(ctx, companyID)
	if err != nil {
		return nil, err
	}
	if member.Role == authorization.RoleOwner || member.UserID == company.OwnerUserID {
		return nil, domain.ErrOwnerImmutable
	}
	return member, nil
}

func (s *Service) find(ctx context.Context, id snowflake.ID) (*domain.MyCompany, error) {
	company, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	if company == nil {
		return nil, domain.ErrNotFound
	}
	return company, nil
}

func (s *Service) authorize(ctx context.Context, companyID snowflake.ID, object, action string) error {
	userID, ok := companycontext.UserIDFromContext(ctx)
	if !ok {
		return domain.ErrUnauthenticated
	}
	err := s.authz.Authorize(ctx, userID, companyID, object, action)
	if errors.Is(err, authorization.ErrForbidden) {
		company, findErr := s.repo.FindByID(ctx, s.db, companyID)
		if findErr == nil && company == nil {
			return domain.ErrNotFound
		}
	}
	return err
}

func stringOr(v *string, def string) string {
	if v == nil || strings.TrimSpace(*v) == "" {
		return def
	}
	return strings.TrimSpace(*v)
}
