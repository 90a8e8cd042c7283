package orchestrator

import (
	"sync"
	"time"

	"github.com/viant/gatekeeper/internal/clock"
	"github.com/viant/gatekeeper/ledger"
	"github.com/viant/gatekeeper/model"
	"github.com/viant/gatekeeper/policy"
)

// State represents the current state of a transaction.
type State string

const (
	StateReceived        State = "received"
	StatePendingApproval State = "pendingApproval"
	StateCommitted       State = "committed"
	StateRejected        State = "rejected"
)

// Terminal reports whether no further transition is possible.
func (s State) Terminal() bool {
	return s == StateCommitted || s == StateRejected
}

// RejectReason classifies a rejected transaction.
type RejectReason string

const (
	RejectNotApproved       RejectReason = "notApproved"
	RejectInsufficientFunds RejectReason = "insufficientFunds"
	RejectOutOfStock        RejectReason = "outOfStock"
	RejectNotFound          RejectReason = "notFound"
	RejectCancelled         RejectReason = "cancelled"
	RejectInvalid           RejectReason = "invalid"
)

// Verdict is the recorded approval outcome.
type Verdict string

const (
	VerdictAutoApproved Verdict = "autoApproved"
	VerdictApproved     Verdict = "approved"
	VerdictDenied       Verdict = "denied"
)

// Transaction tracks a single operation request through the state machine.
// The embedded operation is immutable; the decision and outcome are recorded
// against it, never merged back in.
type Transaction struct {
	ID        string           `json:"id"`
	Operation *model.Operation `json:"operation"`
	Tier      policy.Tier      `json:"tier,omitempty"`
	State     State            `json:"state"`

	RejectReason RejectReason `json:"rejectReason,omitempty"`
	Verdict      Verdict      `json:"verdict,omitempty"`
	DecidedBy    string       `json:"decidedBy,omitempty"`
	Reason       string       `json:"reason,omitempty"`
	Error        string       `json:"error,omitempty"`

	Receipt *ledger.Receipt `json:"receipt,omitempty"`

	CreatedAt   time.Time  `json:"createdAt"`
	DecidedAt   *time.Time `json:"decidedAt,omitempty"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`

	mux sync.Mutex
}

// finalize applies fn while the transaction is still undecided.  The first
// transition out of a non-terminal state wins; later callers observe a
// terminal state and are told to back off.  This is what makes a withdraw
// racing an arriving decision safe.
func (t *Transaction) finalize(fn func(*Transaction)) bool {
	t.mux.Lock()
	defer t.mux.Unlock()
	if t.State.Terminal() {
		return false
	}
	fn(t)
	now := clock.Now()
	t.CompletedAt = &now
	return true
}

// Committed reports whether the ledger mutation was applied.
func (t *Transaction) Committed() bool {
	t.mux.Lock()
	defer t.mux.Unlock()
	return t.State == StateCommitted
}

// Snapshot returns a copy safe to hand to callers while background
// finalisation may still be in flight.
func (t *Transaction) Snapshot() *Transaction {
	if t == nil {
		return nil
	}
	t.mux.Lock()
	defer t.mux.Unlock()
	return &Transaction{
		ID:           t.ID,
		Operation:    t.Operation,
		Tier:         t.Tier,
		State:        t.State,
		RejectReason: t.RejectReason,
		Verdict:      t.Verdict,
		DecidedBy:    t.DecidedBy,
		Reason:       t.Reason,
		Error:        t.Error,
		Receipt:      t.Receipt,
		CreatedAt:    t.CreatedAt,
		DecidedAt:    t.DecidedAt,
		CompletedAt:  t.CompletedAt,
	}
}
