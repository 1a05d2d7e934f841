package domain

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/bwmarrin/snowflake"
)

type Service interface {
	Create(ctx context.Context, req CreateRequest) (*Organization, error)
	List(ctx context.Context, req ListRequest) ([]Organization, error)
	Get(ctx context.Context, id snowflake.ID) (*Organization, error)
	Update(ctx context.Context, id snowflake.ID, req UpdateRequest) (*Organization, error)
	Delete(ctx context.Context, id snowflake.ID) error
	Hierarchy(ctx context.Context, clientID snowflake.ID) ([]*Node, error)
}

type CreateRequest struct {
	MyCompanyID *snowflake.ID `json:"myCompanyId"`
	ClientID    snowflake.ID  `json:"clientId"`
	Fields
}

// UpdateRequest is a partial update; nil fields are left unchanged.
type UpdateRequest struct {
	Fields
	IsActive *bool `json:"isActive"`
}

// Fields are the organization attributes shared by create and update.
type Fields struct {
	ParentOrganizationID *snowflake.ID   `json:"parentOrganizationId"`
	Name                 *string         `json:"name"`
	Code                 *string         `json:"code"`
	Type                 *string         `json:"type"`
	Address              *string         `json:"address"`
	City                 *string         `json:"city"`
	State                *string         `json:"state"`
	Country              *string         `json:"country"`
	PostalCode           *string         `json:"postalCode"`
	Latitude             *float64        `json:"latitude"`
	Longitude            *float64        `json:"longitude"`
	Phone                *string         `json:"phone"`
	Email                *string         `json:"email"`
	Website              *string         `json:"website"`
	EmployeesCount       *int            `json:"employeesCount"`
	Size                 *int            `json:"size"`
	BusinessHours        json.RawMessage `json:"businessHours"`
	Timezone             *string         `json:"timezone"`
	PrimaryContactName   *string         `json:"primaryContactName"`
	PrimaryContactEmail  *string         `json:"primaryContactEmail"`
	PrimaryContactPhone  *string         `json:"primaryContactPhone"`
	Tags                 []string        `json:"tags"`
	CustomFields         map[string]any  `json:"customFields"`
	Notes                *string         `json:"notes"`
}

type ListRequest struct {
	MyCompanyID *snowflake.ID `form:"myCompanyId"`
	ClientID    *snowflake.ID `form:"clientId"`
}

var (
	ErrInvalidCompany = errors.New("invalid_company")
	ErrInvalidClient  = errors.New("invalid_client")
	ErrInvalidName    = errors.New("invalid_name")
	ErrInvalidType    = errors.New("invalid_type")
	ErrInvalidParent  = errors.New("invalid_parent")
	ErrNotFound       = errors.New("not_found")
)
