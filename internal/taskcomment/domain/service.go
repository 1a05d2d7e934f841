package domain

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/bwmarrin/snowflake"
)

type Service interface {
	Create(ctx context.Context, req CreateRequest) (*Comment, error)
	ListByTask(ctx context.Context, taskID snowflake.ID) ([]Comment, error)
	Get(ctx context.Context, id snowflake.ID) (*Comment, error)
	Update(ctx context.Context, id snowflake.ID, req UpdateRequest) (*Comment, error)
	Delete(ctx context.Context, id snowflake.ID) error
	AddReaction(ctx context.Context, id snowflake.ID, emoji string) (*Comment, error)
	RemoveReaction(ctx context.Context, id snowflake.ID, emoji string) (*Comment, error)
}

type CreateRequest struct {
	TaskID          snowflake.ID    `json:"taskId"`
	Content         string          `json:"content"`
	ContentHTML     *string         `json:"contentHtml"`
	ParentCommentID *snowflake.ID   `json:"parentCommentId"`
	MentionedUsers  []string        `json:"mentionedUsers"`
	Attachments     json.RawMessage `json:"attachments"`
}

type UpdateRequest struct {
	Content        *string         `json:"content"`
	ContentHTML    *string         `json:"contentHtml"`
	MentionedUsers []string        `json:"mentionedUsers"`
	Attachments    json.RawMessage `json:"attachments"`
}

type ReactionRequest struct {
	Emoji string `json:"emoji"`
}

var (
	ErrInvalidTask     = errors.New("invalid_task")
	ErrInvalidContent  = errors.New("invalid_content")
	ErrInvalidEmoji    = errors.New("invalid_emoji")
	ErrInvalidParent   = errors.New("invalid_parent")
	ErrNotAuthor       = errors.New("not_author")
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrNotFound        = errors.New("not_found")
)
