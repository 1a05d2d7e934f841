package events

import (
	"context"
	"strings"

	"github.com/verlyx/hub/internal/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("events",
	fx.Provide(NewPublisher),
)

// NewPublisher connects to NATS when NATS_URL is set. A failed connection
// degrades to the log publisher.
func NewPublisher(lc fx.Lifecycle, cfg config.Config, log *zap.Logger) Publisher {
	url := strings.TrimSpace(cfg.NATSURL)
	if url == "" {
		return NewLogPublisher(log)
	}

	conn, err := ConnectNATS(url, log)
	if err != nil {
		log.Warn("nats unavailable, events will only be logged", zap.String("url", url), zap.Error(err))
		return NewLogPublisher(log)
	}

	pub := NewNATSPublisher(conn, log)
	lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			pub.Close()
			return nil
		},
	})
	log.Info("nats connected", zap.String("url", conn.ConnectedUrl()))
	return pub
}
