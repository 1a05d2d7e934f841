package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

const (
	SubjectNotificationCreated = "verlyx.notification.created"
	SubjectPaymentPaid         = "verlyx.payment.paid"
	SubjectDealStageChanged    = "verlyx.deal.stage_changed"
)

// Publisher emits domain events. Implementations must not block the caller
// for longer than a network round trip.
type Publisher interface {
	Publish(ctx context.Context, subject string, payload any) error
}

// Envelope wraps every published payload.
type Envelope struct {
	ID         string          `json:"id"`
	Subject    string          `json:"subject"`
	OccurredAt time.Time       `json:"occurred_at"`
	Data       json.RawMessage `json:"data"`
}

func newEnvelope(subject string, payload any) (Envelope, []byte, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return Envelope{}, nil, err
	}
	env := Envelope{
		ID:         uuid.NewString(),
		Subject:    subject,
		OccurredAt: time.Now().UTC(),
		Data:       data,
	}
	body, err := json.Marshal(env)
	if err != nil {
		return Envelope{}, nil, err
	}
	return env, body, nil
}
