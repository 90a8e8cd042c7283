package model

import (
	"errors"
	"time"
)

// Kind identifies the declared intent of an operation request.
type Kind string

const (
	// KindPurchase buys a cataloged item at its catalog price.
	KindPurchase Kind = "purchase"
	// KindExternalPurchase buys from an off-catalog vendor at an arbitrary
	// price; only the budget is debited.
	KindExternalPurchase Kind = "externalPurchase"
	// KindBudgetIncrease raises both the remaining budget and the monthly
	// limit.
	KindBudgetIncrease Kind = "budgetIncrease"
)

// ErrInvalidOperation indicates malformed request parameters; such requests
// are rejected before classification.
var ErrInvalidOperation = errors.New("model: invalid operation")

// Operation is a caller's intent to mutate the ledger.  It is immutable once
// submitted – the orchestrator records a decision against it and never
// mutates it in place.
type Operation struct {
	ID   string `json:"id"`
	Kind Kind   `json:"kind"`

	Item      string `json:"item,omitempty"`
	Quantity  int    `json:"quantity,omitempty"`
	UnitPrice int64  `json:"unitPrice,omitempty"` // cents; 0 = use catalog price
	Vendor    string `json:"vendor,omitempty"`
	Amount    int64  `json:"amount,omitempty"` // cents, budget increase only

	// Justification is an audit field only.  Policy decisions never branch
	// on its content.
	Justification string `json:"justification,omitempty"`
	Requester     string `json:"requester,omitempty"`

	SubmittedAt time.Time              `json:"submittedAt"`
	Meta        map[string]interface{} `json:"meta,omitempty"`
}

// Validate rejects malformed parameters up front.
func (o *Operation) Validate() error {
	switch o.Kind {
	case KindPurchase:
		if o.Item == "" || o.Quantity <= 0 || o.UnitPrice < 0 {
			return ErrInvalidOperation
		}
	case KindExternalPurchase:
		if o.Item == "" || o.UnitPrice <= 0 {
			return ErrInvalidOperation
		}
	case KindBudgetIncrease:
		if o.Amount <= 0 {
			return ErrInvalidOperation
		}
	default:
		return ErrInvalidOperation
	}
	return nil
}

// Cost returns the total cost of the operation given a resolved unit price.
func (o *Operation) Cost(unitPrice int64) int64 {
	switch o.Kind {
	case KindPurchase:
		return int64(o.Quantity) * unitPrice
	case KindExternalPurchase:
		return o.UnitPrice
	case KindBudgetIncrease:
		return o.Amount
	}
	return 0
}
