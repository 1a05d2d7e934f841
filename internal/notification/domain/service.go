package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
)

type Service interface {
	Create(ctx context.Context, req CreateRequest) (*Notification, error)
	List(ctx context.Context, req ListRequest) (*ListResult, error)
	MarkRead(ctx context.Context, id snowflake.ID, req MarkReadRequest) (*Notification, error)
	Delete(ctx context.Context, id snowflake.ID, userID *snowflake.ID) error
	MarkAllRead(ctx context.Context, userID *snowflake.ID) (int64, error)
}

type CreateRequest struct {
	UserID      snowflake.ID   `json:"user_id"`
	Type        string         `json:"type"`
	Title       string         `json:"title"`
	Message     string         `json:"message"`
	ActionURL   *string        `json:"action_url"`
	RelatedType *string        `json:"related_type"`
	RelatedID   *string        `json:"related_id"`
	RelatedName *string        `json:"related_name"`
	Metadata    map[string]any `json:"metadata"`
}

type ListRequest struct {
	UserID *snowflake.ID `form:"user_id"`
	Type   string        `form:"type"`
	Read   *bool         `form:"read"`
	Limit  int           `form:"limit"`
}

type ListResult struct {
	Notifications []Notification `json:"notifications"`
	UnreadCount   int64          `json:"unread_count"`
}

type MarkReadRequest struct {
	Read   *bool         `json:"read"`
	UserID *snowflake.ID `json:"user_id"`
}

// Created is the payload published for every new notification.
type Created struct {
	NotificationID snowflake.ID `json:"notification_id"`
	UserID         snowflake.ID `json:"user_id"`
	Type           string       `json:"type"`
	Title          string       `json:"title"`
}

var (
	ErrInvalidUser    = errors.New("invalid_user")
	ErrInvalidType    = errors.New("invalid_type")
	ErrInvalidTitle   = errors.New("invalid_title")
	ErrInvalidMessage = errors.New("invalid_message")
	ErrInvalidRead    = errors.New("invalid_read")
	ErrForbidden      = errors.New("forbidden")
	ErrNotFound       = errors.New("not_found")
)
