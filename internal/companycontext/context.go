package companycontext

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
)

type companyKey struct{}
type userKey struct{}

// WithCompanyID stores the active company ID in the context.
func WithCompanyID(ctx context.Context, companyID snowflake.ID) context.Context {
	return context.WithValue(ctx, companyKey{}, companyID)
}

// CompanyIDFromContext returns the active company ID, if set.
func CompanyIDFromContext(ctx context.Context) (snowflake.ID, bool) {
	return idValue(ctx, companyKey{})
}

// WithUserID stores the authenticated user ID in the context.
func WithUserID(ctx context.Context, userID snowflake.ID) context.Context {
	return context.WithValue(ctx, userKey{}, userID)
}

func UserIDFromContext(ctx context.Context) (snowflake.ID, bool) {
	return idValue(ctx, userKey{})
}

// Resolve prefers an explicit company ID and falls back to the context.
func Resolve(ctx context.Context, explicit *snowflake.ID) (snowflake.ID, bool) {
	if explicit != nil && *explicit != 0 {
		return *explicit, true
	}
	return CompanyIDFromContext(ctx)
}

// ParseID accepts the decimal form used on the wire.
func ParseID(raw string) (snowflake.ID, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, false
	}
	id, err := snowflake.ParseString(raw)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

func idValue(ctx context.Context, key any) (snowflake.ID, bool) {
	if ctx == nil {
		return 0, false
	}
	switch typed := ctx.Value(key).(type) {
	case snowflake.ID:
		return typed, typed != 0
	case int64:
		return snowflake.ID(typed), typed != 0
	case string:
		return ParseID(typed)
	}
	return 0, false
}
