package authorization

import (
	"context"
	_ "embed"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
	gormadapter "github.com/casbin/gorm-adapter/v3"
	"github.com/verlyx/hub/internal/cache"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

//go:embed model.conf
var modelText string

const roleCacheTTL = 30 * time.Second

type Params struct {
	fx.In

	DB       *gorm.DB
	Log      *zap.Logger
	Enforcer *casbin.SyncedEnforcer
}

type ServiceImpl struct {
	db       *gorm.DB
	log      *zap.Logger
	enforcer *casbin.SyncedEnforcer
	roles    cache.Cache[string, string]
}

func NewEnforcer(db *gorm.DB) (*casbin.SyncedEnforcer, error) {
	adapter, err := gormadapter.NewAdapterByDB(db)
	if err != nil {
		return nil, err
	}
	m, err := model.NewModelFromString(modelText)
	if err != nil {
		return nil, err
	}
	enforcer, err := casbin.NewSyncedEnforcer(m, adapter)
	if err != nil {
		return nil, err
	}
	enforcer.EnableAutoSave(true)
	enforcer.EnableAutoBuildRoleLinks(true)
	if err := enforcer.LoadPolicy(); err != nil {
		return nil, err
	}
	if err := seedPolicies(enforcer); err != nil {
		return nil, err
	}
	enforcer.BuildRoleLinks()
	return enforcer, nil
}

func NewService(p Params) Service {
	return &ServiceImpl{
		db:       p.DB,
		log:      p.Log.Named("authorization.service"),
		enforcer: p.Enforcer,
		roles:    cache.NewTTLCache[string, string](),
	}
}

func (s *ServiceImpl) Authorize(ctx context.Context, userID, companyID snowflake.ID, object, action string) error {
	if userID == 0 {
		return ErrInvalidActor
	}
	if companyID == 0 {
		return ErrInvalidCompany
	}
	if object = strings.TrimSpace(object); object == "" {
		return ErrInvalidObject
	}
	if action = strings.TrimSpace(action); action == "" {
		return ErrInvalidAction
	}

	role, err := s.RoleFor(ctx, companyID, userID)
	if err != nil {
		return err
	}

	subject, domain := userSubject(userID), companyDomain(companyID)
	if err := s.bindRole(subject, roleSubject(role), domain); err != nil {
		return err
	}

	allowed, err := s.enforcer.Enforce(subject, domain, object, action)
	if err != nil {
		return err
	}
	if !allowed {
		s.log.Debug("authorization denied",
			zap.String("subject", subject),
			zap.String("domain", domain),
			zap.String("object", object),
			zap.String("action", action),
		)
		return ErrForbidden
	}
	return nil
}

func (s *ServiceImpl) RoleFor(ctx context.Context, companyID, userID snowflake.ID) (string, error) {
	key := cache.Key(companyID.String(), userID.String())
	if role, ok := s.roles.Get(key); ok {
		return role, nil
	}

	var row struct {
		OwnerUserID snowflake.ID `gorm:"column:owner_user_id"`
		Role        string       `gorm:"column:role"`
	}
	if err := s.db.WithContext(ctx).Raw(
		`SELECT c.owner_user_id, COALESCE(m.role, '') AS role
		 FROM my_companies c
		 LEFT JOIN company_members m
		   ON m.company_id = c.id AND m.user_id = ? AND m.is_active = ?
		 WHERE c.id = ? AND c.is_active = ?
		 LIMIT 1`,
		userID,
		true,
		companyID,
		true,
	).Scan(&row).Error; err != nil {
		return "", err
	}

	var role string
	switch {
	case row.OwnerUserID != 0 && row.OwnerUserID == userID:
		role = RoleOwner
	case IsValidRole(strings.ToUpper(strings.TrimSpace(row.Role))):
		role = strings.ToUpper(strings.TrimSpace(row.Role))
	default:
		return "", ErrForbidden
	}

	s.roles.Set(key, role, roleCacheTTL)
	return role, nil
}

func (s *ServiceImpl) Invalidate(companyID, userID snowflake.ID) {
	s.roles.Delete(cache.Key(companyID.String(), userID.String()))
}

// bindRole makes roleName the only role subject holds in domain.
func (s *ServiceImpl) bindRole(subject, roleName, domain string) error {
	current := s.enforcer.GetRolesForUserInDomain(subject, domain)
	if len(current) == 1 && current[0] == roleName {
		return nil
	}
	if len(current) > 0 {
		if _, err := s.enforcer.DeleteRolesForUserInDomain(subject, domain); err != nil {
			return err
		}
	}
	_, err := s.enforcer.AddRoleForUserInDomain(subject, roleName, domain)
	return err
}

func userSubject(id snowflake.ID) string { return "user:" + id.String() }
func companyDomain(id snowflake.ID) string { return "company:" + id.String() }
func roleSubject(role string) string { return "role:" + strings.ToLower(role) }

func seedPolicies(enforcer *casbin.SyncedEnforcer) error {
	grants := []struct {
		object string
		action string
		roles  []string
	}{
		{ObjectCompany, ActionView, Roles},
		{ObjectCompany, ActionUpdate, []string{RoleOwner, RoleAdmin}},
		{ObjectCompany, ActionDelete, []string{RoleOwner}},
		{ObjectMember, ActionView, Roles},
		{ObjectMember, ActionManage, []string{RoleOwner, RoleAdmin}},
		{ObjectFinance, ActionView, []string{RoleOwner, RoleAdmin, RoleManager, RoleFinance}},
		{ObjectFinance, ActionManage, []string{RoleOwner, RoleAdmin, RoleFinance}},
		{ObjectPaymentLink, ActionCreate, []string{RoleOwner, RoleAdmin, RoleManager, RoleFinance}},
		{ObjectPDF, ActionGenerate, []string{RoleOwner, RoleAdmin, RoleManager, RoleOperative, RoleFinance, RoleMarketing}},
	}

	for _, grant := range grants {
		for _, role := range grant.roles {
			if _, err := enforcer.AddPolicy(roleSubject(role), grant.object, grant.action); err != nil {
				return err
			}
		}
	}
	return nil
}
