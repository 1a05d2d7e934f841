package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/nats-io/nats-server/v2/server"
	"github.com/nats-io/nats.go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"
)

func runServer(t *testing.T) *server.Server {
	t.Helper()
	ns, err := server.NewServer(&server.Options{Host: "127.0.0.1", Port: -1})
	require.NoError(t, err)
	go ns.Start()
	if !ns.ReadyForConnections(5 * time.Second) {
		t.Fatal("nats server not ready")
	}
	t.Cleanup(ns.Shutdown)
	return ns
}

func TestNATSPublisherDeliversEnvelope(t *testing.T) {
	ns := runServer(t)
	log := zaptest.NewLogger(t)

	conn, err := ConnectNATS(ns.ClientURL(), log)
	require.NoError(t, err)
	defer conn.Close()

	sub, err := conn.SubscribeSync(SubjectPaymentPaid)
	require.NoError(t, err)
	require.NoError(t, conn.Flush())

	pub := NewNATSPublisher(conn, log)
	require.NoError(t, pub.Publish(context.Background(), SubjectPaymentPaid, map[string]any{"order_id": "VLX-1"}))

	msg, err := sub.NextMsg(2 * time.Second)
	require.NoError(t, err)

	var env Envelope
	require.NoError(t, json.Unmarshal(msg.Data, &env))
	assert.Equal(t, SubjectPaymentPaid, env.Subject)
	assert.Equal(t, env.ID, msg.Header.Get(headerMsgID))
	assert.JSONEq(t, `{"order_id":"VLX-1"}`, string(env.Data))
}

func TestNATSPublisherHonoursCancelledContext(t *testing.T) {
	ns := runServer(t)
	conn, err := nats.Connect(ns.ClientURL())
	require.NoError(t, err)
	defer conn.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err = NewNATSPublisher(conn, zap.NewNop()).Publish(ctx, SubjectDealStageChanged, struct{}{})
	assert.ErrorIs(t, err, context.Canceled)
}

type failingPublisher struct{}

func (failingPublisher) Publish(context.Context, string, any) error {
	return errors.New("broker down")
}

func TestPublishSafeLogsFailures(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	PublishSafe(context.Background(), failingPublisher{}, zap.New(core), SubjectNotificationCreated, nil)
	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "publish event failed", logs.All()[0].Message)

	assert.NoError(t, NewLogPublisher(zap.NewNop()).Publish(context.Background(), SubjectNotificationCreated, nil))
}
