// Package events publishes checkout lifecycle events. Publishing is
// best-effort: a lost event never fails the checkout that produced it.
package events

import (
	"encoding/json"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
)

// Event types emitted by the checkout service.
const (
	TypeCheckoutCompleted = "CheckoutCompleted"
	TypeCheckoutAbandoned = "CheckoutAbandoned"
)

// Envelope is the wire format shared by all checkout events.
type Envelope struct {
	EventID       string          `json:"event_id"`
	EventType     string          `json:"event_type"`
	EventVersion  int             `json:"event_version"`
	OccurredAt    time.Time       `json:"occurred_at"`
	Producer      string          `json:"producer"`
	CorrelationID string          `json:"correlation_id"` // checkout session id
	Payload       json.RawMessage `json:"payload"`
}

// New builds an envelope around the given payload.
func New(eventType, producer, correlationID string, payload any) (Envelope, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return Envelope{}, errors.Wrapf(err, "encode %s payload", eventType)
	}
	return Envelope{
		EventID:       uuid.NewString(),
		EventType:     eventType,
		EventVersion:  1,
		OccurredAt:    time.Now().UTC(),
		Producer:      producer,
		CorrelationID: correlationID,
		Payload:       raw,
	}, nil
}

// CheckoutCompletedPayload reports a fully paid checkout.
type CheckoutCompletedPayload struct {
	SessionID   string `json:"session_id"`
	CustomerID  string `json:"customer_id,omitempty"`
	OrderID     string `json:"order_id"`
	OrderNumber string `json:"order_number"`
	PaymentID   string `json:"payment_id"`
	Amount      string `json:"amount"`
}

// ReleasedResource names one backend record removed during rollback.
type ReleasedResource struct {
	Resource string `json:"resource"`
	ID       string `json:"id"`
}

// CheckoutAbandonedPayload reports an abandoned checkout and the outcome
// of its compensation pass.
type CheckoutAbandonedPayload struct {
	SessionID      string             `json:"session_id"`
	LastStep       int                `json:"last_step"`
	Released       []ReleasedResource `json:"released,omitempty"`
	RollbackErrors int                `json:"rollback_errors,omitempty"`
}
