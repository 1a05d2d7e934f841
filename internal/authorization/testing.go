package authorization

import (
	"context"

	"github.com/bwmarrin/snowflake"
)

// Static is a Service that answers every check with Err. Useful in tests of
// services that only need a yes or no.
type Static struct {
	Role string
	Err  error
}

func (s Static) Authorize(context.Context, snowflake.ID, snowflake.ID, string, string) error {
	return s.Err
}

func (s Static) RoleFor(context.Context, snowflake.ID, snowflake.ID) (string, error) {
	if s.Err != nil {
		return "", s.Err
	}
	if s.Role == "" {
		return RoleOwner, nil
	}
	return s.Role, nil
}

func (Static) Invalidate(snowflake.ID, snowflake.ID) {}
