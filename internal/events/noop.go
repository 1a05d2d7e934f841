package events

import (
	"context"

	"go.uber.org/zap"
)

// LogPublisher records events in the log when no broker is configured.
type LogPublisher struct {
	log *zap.Logger
}

func NewLogPublisher(log *zap.Logger) *LogPublisher {
	return &LogPublisher{log: log.Named("events")}
}

func (p *LogPublisher) Publish(_ context.Context, subject string, _ any) error {
	p.log.Debug("event dropped, no broker configured", zap.String("subject", subject))
	return nil
}

// PublishSafe publishes and logs failures. Event delivery never fails a request.
func PublishSafe(ctx context.Context, pub Publisher, log *zap.Logger, subject string, payload any) {
	if pub == nil {
		return
	}
	if err := pub.Publish(ctx, subject, payload); err != nil {
		log.Warn("publish event failed", zap.String("subject", subject), zap.Error(err))
	}
}
