package main

import (
	"fmt"

	"github.com/bwmarrin/snowflake"
	"github.com/verlyx/hub/internal/clock"
	"github.com/verlyx/hub/internal/config"
	"github.com/verlyx/hub/internal/migration"
	"github.com/verlyx/hub/internal/observability"
	"github.com/verlyx/hub/internal/scheduler"
	"github.com/verlyx/hub/internal/server"
	"github.com/verlyx/hub/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
)

func main() {
	fx.New(
		fx.WithLogger(func(log *zap.Logger) fxevent.Logger {
			return &fxevent.ZapLogger{Logger: log.Named("fx")}
		}),

		config.Module,
		observability.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		clock.Module,
		migration.Module,

		// HTTP API with every domain module
		server.Module,

		// Background maintenance
		scheduler.Module,
	).Run()
}

// RegisterSnowflake builds the id generator. Every instance writing to the
// same database needs its own SNOWFLAKE_NODE_ID.
func RegisterSnowflake(cfg config.Config) (*snowflake.Node, error) {
	node, err := snowflake.NewNode(cfg.SnowflakeNodeID)
	if err != nil {
		return nil, fmt.Errorf("snowflake node %d: %w", cfg.SnowflakeNodeID, err)
	}
	return node, nil
}
