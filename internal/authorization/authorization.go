package authorization

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"github.com/verlyx/hub/internal/companycontext"
)

const (
	ObjectCompany     = "company"
	ObjectMember      = "member"
	ObjectFinance     = "finance"
	ObjectPaymentLink = "payment_link"
	ObjectPDF         = "pdf"
)

const (
	ActionView     = "view"
	ActionUpdate   = "update"
	ActionDelete   = "delete"
	ActionManage   = "manage"
	ActionCreate   = "create"
	ActionGenerate = "generate"
)

// Company roles as stored in company_members.role.
const (
	RoleOwner     = "OWNER"
	RoleAdmin     = "ADMIN"
	RoleManager   = "MANAGER"
	RoleOperative = "OPERATIVE"
	RoleFinance   = "FINANCE"
	RoleMarketing = "MARKETING"
	RoleGuest     = "GUEST"
)

var Roles = []string{RoleOwner, RoleAdmin, RoleManager, RoleOperative, RoleFinance, RoleMarketing, RoleGuest}

var (
	ErrForbidden      = errors.New("forbidden")
	ErrInvalidActor   = errors.New("invalid_actor")
	ErrInvalidCompany = errors.New("invalid_company")
	ErrInvalidObject  = errors.New("invalid_object")
	ErrInvalidAction  = errors.New("invalid_action")
)

type Service interface {
	// Authorize returns nil when userID may perform action on object inside
	// companyID, ErrForbidden otherwise.
	Authorize(ctx context.Context, userID, companyID snowflake.ID, object, action string) error
	// RoleFor resolves the caller's company role. Owners resolve to OWNER.
	RoleFor(ctx context.Context, companyID, userID snowflake.ID) (string, error)
	// Invalidate drops any cached role for the pair.
	Invalidate(companyID, userID snowflake.ID)
}

// IsValidRole reports whether role names a company role.
func IsValidRole(role string) bool {
	for _, r := range Roles {
		if r == role {
			return true
		}
	}
	return false
}

// ErrUnauthenticated is returned when the context carries no caller.
var ErrUnauthenticated = errors.New("unauthenticated")

// Require authorizes the caller stored in ctx.
func Require(ctx context.Context, svc Service, companyID snowflake.ID, object, action string) error {
	userID, ok := companycontext.UserIDFromContext(ctx)
	if !ok {
		return ErrUnauthenticated
	}
	return svc.Authorize(ctx, userID, companyID, object, action)
}

// RequireMember checks the caller belongs to companyID.
func RequireMember(ctx context.Context, svc Service, companyID snowflake.ID) error {
	return Require(ctx, svc, companyID, ObjectCompany, ActionView)
}
