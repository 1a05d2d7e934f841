package events

import (
	"context"
	"errors"
	"time"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"
)

const headerMsgID = "Nats-Msg-Id"

type NATSPublisher struct {
	conn *nats.Conn
	log  *zap.Logger
}

func ConnectNATS(url string, log *zap.Logger) (*nats.Conn, error) {
	return nats.Connect(url,
		nats.Name("verlyx-hub"),
		nats.ReconnectWait(2*time.Second),
		nats.MaxReconnects(-1),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				log.Warn("nats disconnected", zap.Error(err))
			}
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Info("nats reconnected", zap.String("url", nc.ConnectedUrl()))
		}),
	)
}

func NewNATSPublisher(conn *nats.Conn, log *zap.Logger) *NATSPublisher {
	return &NATSPublisher{conn: conn, log: log.Named("events.nats")}
}

func (p *NATSPublisher) Publish(ctx context.Context, subject string, payload any) error {
	if p == nil || p.conn == nil {
		return errors.New("nats publisher not configured")
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	env, body, err := newEnvelope(subject, payload)
	if err != nil {
		return err
	}

	msg := nats.NewMsg(subject)
	msg.Header.Set(headerMsgID, env.ID)
	msg.Data = body
	if err := p.conn.PublishMsg(msg); err != nil {
		return err
	}
	p.log.Debug("event published", zap.String("subject", subject), zap.String("event_id", env.ID))
	return nil
}

func (p *NATSPublisher) Close() {
	if p == nil || p.conn == nil {
		return
	}
	if err := p.conn.Drain(); err != nil {
		p.log.Warn("nats drain failed", zap.Error(err))
	}
}
