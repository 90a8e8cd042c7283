package approval

import (
	"encoding/json"
	"time"
)

// Event envelope published on the gateway queue for every lifecycle change.
type Event struct {
	Topic   string            // see topic constants below
	Data    interface{}       // *Request | *Decision
	Headers map[string]string `json:"headers,omitempty"` // optional – tenant, correlation-id etc.
}

// Standard event topics.
const (
	TopicRequestCreated  = "request.created"
	TopicRequestExpired  = "request.expired"
	TopicDecisionCreated = "decision.created"
)

// Request represents a request for approval of a pending transaction.
type Request struct {
	ID            string                 `json:"id"`                  // Globally unique, primary key
	TransactionID string                 `json:"transactionId"`       // Refers to the staged transaction
	Action        string                 `json:"action"`              // operation kind, e.g. "purchase"
	Args          json.RawMessage        `json:"args,omitempty"`      // JSON-encoded operation, may be null
	CreatedAt     time.Time              `json:"createdAt"`           // RFC-3339 timestamp
	ExpiresAt     *time.Time             `json:"expiresAt,omitempty"` // Optional deadline
	Meta          map[string]interface{} `json:"meta,omitempty"`      // Free-form map: tenant, user, environment, etc.
}

// Decision represents an approval decision.
type Decision struct {
	ID        string    `json:"id"` // same as request.ID
	Approved  bool      `json:"approved"`
	Reason    string    `json:"reason,omitempty"`
	DecidedBy string    `json:"decidedBy,omitempty"` // human / system identity
	DecidedAt time.Time `json:"decidedAt"`
}
