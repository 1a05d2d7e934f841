package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
)

type Service interface {
	List(ctx context.Context) ([]MyCompany, error)
	Get(ctx context.Context, id snowflake.ID) (*MyCompany, error)
	Create(ctx context.Context, req CompanyInput) (*MyCompany, error)
	Update(ctx context.Context, id snowflake.ID, req CompanyInput) (*MyCompany, error)
	Delete(ctx context.Context, id snowflake.ID) error

	ListMembers(ctx context.Context, companyID snowflake.ID) ([]Member, error)
	AddMember(ctx context.Context, companyID snowflake.ID, req AddMemberRequest) (*Member, error)
	UpdateMemberRole(ctx context.Context, companyID, memberID snowflake.ID, role string) (*Member, error)
	RemoveMember(ctx context.Context, companyID, memberID snowflake.ID) error
}

// CompanyInput carries create and partial-update fields. Nil means unset.
type CompanyInput struct {
	Name           *string `json:"name"`
	Type           *string `json:"type"`
	Description    *string `json:"description"`
	LogoURL        *string `json:"logoUrl"`
	PrimaryColor   *string `json:"primaryColor"`
	SecondaryColor *string `json:"secondaryColor"`
	TaxID          *string `json:"taxId"`
	Industry       *string `json:"industry"`
	Website        *string `json:"website"`
	Phone          *string `json:"phone"`
	Email          *string `json:"email"`
	Address        *string `json:"address"`
	City           *string `json:"city"`
	Country        *string `json:"country"`
	IsActive       *bool   `json:"isActive"`
}

type AddMemberRequest struct {
	UserID snowflake.ID `json:"userId"`
	Role   string       `json:"role"`
}

var (
	ErrInvalidName     = errors.New("invalid_name")
	ErrInvalidType     = errors.New("invalid_type")
	ErrInvalidColor    = errors.New("invalid_color")
	ErrInvalidLength   = errors.New("invalid_length")
	ErrInvalidEmail    = errors.New("invalid_email")
	ErrInvalidUser     = errors.New("invalid_user")
	ErrInvalidRole     = errors.New("invalid_role")
	ErrOwnerImmutable  = errors.New("owner_immutable")
	ErrAlreadyMember   = errors.New("already_member")
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrNotFound        = errors.New("not_found")
	ErrMemberNotFound  = errors.New("not_found")
)
