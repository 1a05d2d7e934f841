package server

import (
	"errors"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/verlyx/hub/internal/companycontext"
)

func parseOptionalSnowflakeID(value string) (*snowflake.ID, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return nil, nil
	}
	parsed, err := snowflake.ParseString(trimmed)
	if err != nil || parsed == 0 {
		return nil, errors.New("invalid_snowflake_id")
	}
	return &parsed, nil
}

// pathID parses a snowflake path parameter. On failure it aborts the request
// with a validation error naming the parameter.
func pathID(c *gin.Context, name string) (snowflake.ID, bool) {
	id, ok := companycontext.ParseID(c.Param(name))
	if !ok {
		AbortWithError(c, newValidationError(name, "invalid_id", "invalid id"))
		return 0, false
	}
	return id, true
}

// queryID parses an optional snowflake query parameter.
func queryID(c *gin.Context, name string) (*snowflake.ID, bool) {
	id, err := parseOptionalSnowflakeID(c.Query(name))
	if err != nil {
		AbortWithError(c, newValidationError(name, "invalid_id", "invalid id"))
		return nil, false
	}
	return id, true
}

// callerID returns the authenticated user stored by AuthRequired.
func callerID(c *gin.Context) (snowflake.ID, bool) {
	return companycontext.UserIDFromContext(c.Request.Context())
}
