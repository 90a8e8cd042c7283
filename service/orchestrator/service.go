package orchestrator

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/viant/gatekeeper/internal/clock"
	"github.com/viant/gatekeeper/internal/idgen"
	"github.com/viant/gatekeeper/ledger"
	"github.com/viant/gatekeeper/model"
	"github.com/viant/gatekeeper/policy"
	"github.com/viant/gatekeeper/service/approval"
	"github.com/viant/gatekeeper/service/dao"
	"github.com/viant/gatekeeper/service/dao/store"
	"github.com/viant/gatekeeper/service/event"
	"github.com/viant/gatekeeper/service/history"
	"github.com/viant/gatekeeper/tracing"
)

// WaitMode selects how Submit behaves for gated operations.
type WaitMode string

const (
	// WaitModeBlock makes Submit wait inline for the decision; the returned
	// transaction is terminal.
	WaitModeBlock WaitMode = "block"
	// WaitModeNotify makes Submit return the pending transaction
	// immediately; a background watcher finalises it once the decision
	// event arrives.
	WaitModeNotify WaitMode = "notify"
)

// Config represents orchestrator configuration.
type Config struct {
	WaitMode        WaitMode
	ApprovalTimeout time.Duration
}

// DefaultConfig returns the default orchestrator configuration.
func DefaultConfig() Config {
	return Config{
		WaitMode:        WaitModeBlock,
		ApprovalTimeout: 5 * time.Minute,
	}
}

// Service drives operation requests through the transaction state machine:
// Received -> Committed | PendingApproval -> Committed | Rejected.  The
// ledger mutex is only ever taken for the final commit, never across the
// approval wait.
type Service struct {
	config  Config
	ledger  *ledger.Service
	history *history.Service
	gateway approval.Service
	policy  *policy.Policy
	txnDAO  dao.Service[string, Transaction]
	events  *event.Publisher[*Transaction]

	// submitMu serialises the idempotence check-then-register step
	submitMu sync.Mutex

	cancelWatcher context.CancelFunc
}

func txnKey(t *Transaction) string { return t.ID }

// New creates an orchestrator.  A ledger and a gateway are required.
func New(options ...Option) (*Service, error) {
	s := &Service{config: DefaultConfig()}
	for _, opt := range options {
		opt(s)
	}
	if s.ledger == nil {
		return nil, fmt.Errorf("ledger is required")
	}
	if s.gateway == nil {
		return nil, fmt.Errorf("approval gateway is required")
	}
	if s.policy == nil {
		s.policy = policy.Default()
	}
	if s.history == nil {
		s.history = history.New(0)
	}
	if s.txnDAO == nil {
		s.txnDAO = store.NewMemoryStore[string, Transaction](txnKey)
	}
	return s, nil
}

// Submit runs one operation request through the state machine.  Domain
// failures (not found, denied, insufficient funds…) are structured outcomes
// on the returned transaction, not errors; the error return is reserved for
// caller misuse.  Re-submitting an id that already reached a terminal state
// returns the stored result without re-applying any ledger mutation.
func (s *Service) Submit(ctx context.Context, op *model.Operation) (*Transaction, error) {
	if op == nil {
		return nil, fmt.Errorf("operation is required")
	}

	s.submitMu.Lock()
	if op.ID == "" {
		op.ID = idgen.New()
	}
	if existing, _ := s.txnDAO.Load(ctx, op.ID); existing != nil {
		s.submitMu.Unlock()
		return existing, nil
	}
	if op.SubmittedAt.IsZero() {
		op.SubmittedAt = clock.Now()
	}
	txn := &Transaction{
		ID:        op.ID,
		Operation: op,
		State:     StateReceived,
		CreatedAt: clock.Now(),
	}
	_ = s.txnDAO.Save(ctx, txn)
	s.submitMu.Unlock()

	ctx, span := tracing.StartSpan(ctx, "orchestrator.submit", "SERVER")
	span.WithAttributes(map[string]string{"transaction.id": txn.ID, "operation.kind": string(op.Kind)})
	defer tracing.EndSpan(span, nil)

	if err := op.Validate(); err != nil {
		s.reject(ctx, txn, RejectInvalid, err.Error())
		return txn, nil
	}

	unitPrice, err := s.resolveUnitPrice(op)
	if err != nil {
		s.reject(ctx, txn, RejectNotFound, err.Error())
		return txn, nil
	}

	pol := policy.FromContext(ctx)
	if pol == nil {
		pol = s.policy
	}
	txn.Tier = pol.Classify(op, unitPrice)
	span.WithAttributes(map[string]string{"operation.tier": string(txn.Tier)})

	switch {
	case txn.Tier == policy.TierBlocked:
		s.reject(ctx, txn, RejectNotApproved, "blocked by policy")
		return txn, nil
	case txn.Tier == policy.TierAuto:
		s.commit(ctx, txn, VerdictAutoApproved, "system", "")
		return txn, nil
	}
	return s.stage(ctx, txn)
}

// resolveUnitPrice resolves the per-unit cost used for classification.  The
// catalog is consulted for regular purchases; external purchases and budget
// increases carry their own declared amounts.
func (s *Service) resolveUnitPrice(op *model.Operation) (int64, error) {
	switch op.Kind {
	case model.KindPurchase:
		if op.UnitPrice > 0 {
			return op.UnitPrice, nil
		}
		item, err := s.ledger.Lookup(op.Item)
		if err != nil {
			return 0, err
		}
		return item.UnitPrice, nil
	case model.KindExternalPurchase:
		return op.UnitPrice, nil
	case model.KindBudgetIncrease:
		return op.Amount, nil
	}
	return 0, model.ErrInvalidOperation
}

// stage parks a gated transaction in PendingApproval and submits it to the
// gateway.  A gateway failure discards the operation – silence is never
// approval.
func (s *Service) stage(ctx context.Context, txn *Transaction) (*Transaction, error) {
	txn.State = StatePendingApproval
	_ = s.txnDAO.Save(ctx, txn)

	args, _ := json.Marshal(txn.Operation)
	req := &approval.Request{
		ID:            txn.ID,
		TransactionID: txn.ID,
		Action:        string(txn.Operation.Kind),
		Args:          args,
		CreatedAt:     clock.Now(),
	}
	if s.config.ApprovalTimeout > 0 {
		expiresAt := req.CreatedAt.Add(s.config.ApprovalTimeout)
		req.ExpiresAt = &expiresAt
	}

	if err := s.gateway.RequestApproval(ctx, req); err != nil {
		s.reject(ctx, txn, RejectNotApproved, fmt.Sprintf("approval gateway unavailable: %v", err))
		return txn, nil
	}

	if s.config.WaitMode == WaitModeNotify {
		return txn, nil
	}

	dec, err := approval.WaitForDecision(ctx, s.gateway, req.ID, s.config.ApprovalTimeout)
	if err != nil {
		reason := "approval gateway unavailable: " + err.Error()
		if errors.Is(err, approval.ErrDecisionTimeout) {
			reason = "no decision within approval window"
		}
		s.reject(ctx, txn, RejectNotApproved, reason)
		return txn, nil
	}
	s.resolve(ctx, txn, dec)
	return txn, nil
}

// resolve applies a gateway decision to a pending transaction.
func (s *Service) resolve(ctx context.Context, txn *Transaction, dec *approval.Decision) {
	if dec == nil {
		return
	}
	if !dec.Approved {
		applied := txn.finalize(func(t *Transaction) {
			t.State = StateRejected
			t.RejectReason = RejectNotApproved
			t.Verdict = VerdictDenied
			t.DecidedBy = dec.DecidedBy
			t.Reason = dec.Reason
			t.DecidedAt = &dec.DecidedAt
		})
		if applied {
			_ = s.txnDAO.Save(ctx, txn)
			s.publish(ctx, txn)
		}
		return
	}
	s.commit(ctx, txn, VerdictApproved, dec.DecidedBy, dec.Reason)
}

// commit transitions the transaction into Committed, applying the ledger
// mutation exactly once.  A ledger refusal (insufficient funds, out of
// stock…) turns into a terminal rejection with the decision still recorded.
func (s *Service) commit(ctx context.Context, txn *Transaction, verdict Verdict, decidedBy, reason string) {
	applied := txn.finalize(func(t *Transaction) {
		now := clock.Now()
		t.Verdict = verdict
		t.DecidedBy = decidedBy
		t.Reason = reason
		t.DecidedAt = &now

		receipt, err := s.apply(t.Operation)
		if err != nil {
			t.State = StateRejected
			t.RejectReason = rejectReasonFor(err)
			t.Error = err.Error()
			return
		}
		t.State = StateCommitted
		t.Receipt = receipt
	})
	if !applied {
		return
	}
	_ = s.txnDAO.Save(ctx, txn)
	if txn.State == StateCommitted && txn.Operation.Kind != model.KindBudgetIncrease {
		s.history.RecordReceipt(txn.Receipt, txn.Operation.Justification, clock.Now())
	}
	s.publish(ctx, txn)
}

// apply performs the actual ledger mutation for an approved operation.
func (s *Service) apply(op *model.Operation) (*ledger.Receipt, error) {
	switch op.Kind {
	case model.KindPurchase:
		return s.ledger.ReserveAndCommit(op.Item, op.Quantity, op.UnitPrice)
	case model.KindExternalPurchase:
		receipt, err := s.ledger.DebitExternal(op.Vendor, op.UnitPrice)
		if err != nil {
			return nil, err
		}
		receipt.Item = op.Item
		return receipt, nil
	case model.KindBudgetIncrease:
		budget, err := s.ledger.IncreaseBudget(op.Amount)
		if err != nil {
			return nil, err
		}
		return &ledger.Receipt{Total: op.Amount, Remaining: budget.Remaining}, nil
	}
	return nil, model.ErrInvalidOperation
}

func rejectReasonFor(err error) RejectReason {
	switch {
	case errors.Is(err, ledger.ErrNotFound):
		return RejectNotFound
	case errors.Is(err, ledger.ErrOutOfStock):
		return RejectOutOfStock
	case errors.Is(err, ledger.ErrInsufficientFunds):
		return RejectInsufficientFunds
	default:
		return RejectInvalid
	}
}

// reject finalises a transaction without touching the ledger.
func (s *Service) reject(ctx context.Context, txn *Transaction, reason RejectReason, detail string) {
	applied := txn.finalize(func(t *Transaction) {
		t.State = StateRejected
		t.RejectReason = reason
		t.Reason = detail
	})
	if applied {
		_ = s.txnDAO.Save(ctx, txn)
		s.publish(ctx, txn)
	}
}

// Withdraw cancels a transaction that is still waiting for a decision.  The
// first transition out of PendingApproval wins: withdrawing a transaction
// that a decision already finalised is a no-op and returns the stored state.
func (s *Service) Withdraw(ctx context.Context, id string) (*Transaction, error) {
	txn, err := s.txnDAO.Load(ctx, id)
	if err != nil {
		return nil, err
	}
	if txn == nil {
		return nil, dao.ErrNotFound
	}
	applied := txn.finalize(func(t *Transaction) {
		t.State = StateRejected
		t.RejectReason = RejectCancelled
		t.Reason = "withdrawn by caller"
	})
	if applied {
		_ = s.txnDAO.Save(ctx, txn)
		s.publish(ctx, txn)
	}
	return txn, nil
}

// Transaction returns a transaction by id.
func (s *Service) Transaction(ctx context.Context, id string) (*Transaction, error) {
	txn, err := s.txnDAO.Load(ctx, id)
	if err != nil {
		return nil, err
	}
	if txn == nil {
		return nil, dao.ErrNotFound
	}
	return txn, nil
}

// Transactions lists all known transactions.
func (s *Service) Transactions(ctx context.Context) ([]*Transaction, error) {
	return s.txnDAO.List(ctx)
}

// Wait blocks until the transaction reaches a terminal state or the timeout
// elapses.  Useful with WaitModeNotify.
func (s *Service) Wait(ctx context.Context, id string, timeout time.Duration) (*Transaction, error) {
	deadline := clock.Now().Add(timeout)
	for {
		txn, err := s.Transaction(ctx, id)
		if err != nil {
			return nil, err
		}
		if txn.State.Terminal() {
			return txn, nil
		}
		if clock.Now().After(deadline) {
			return txn, fmt.Errorf("timeout waiting for transaction %q", id)
		}
		select {
		case <-ctx.Done():
			return txn, ctx.Err()
		case <-time.After(20 * time.Millisecond):
		}
	}
}

// Start launches the decision watcher used by WaitModeNotify.  It is a no-op
// in blocking mode.
func (s *Service) Start(ctx context.Context) {
	if s.config.WaitMode != WaitModeNotify {
		return
	}
	ctx, cancel := context.WithCancel(ctx)
	s.cancelWatcher = cancel
	go s.watchDecisions(ctx)
}

// Shutdown stops the decision watcher.
func (s *Service) Shutdown() {
	if s.cancelWatcher != nil {
		s.cancelWatcher()
	}
}

// watchDecisions consumes gateway events and finalises pending transactions
// as decisions arrive.
func (s *Service) watchDecisions(ctx context.Context) {
	for {
		msg, err := s.gateway.Queue().Consume(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			continue
		}
		if msg == nil {
			// fs vendor returns (nil, nil) on an empty queue
			select {
			case <-ctx.Done():
				return
			case <-time.After(50 * time.Millisecond):
			}
			continue
		}
		evt := msg.T()
		_ = msg.Ack()
		if evt == nil || evt.Topic != approval.TopicDecisionCreated {
			continue
		}
		dec := decisionFromEvent(evt)
		if dec == nil {
			continue
		}
		txn, _ := s.txnDAO.Load(ctx, dec.ID)
		if txn == nil {
			continue
		}
		s.resolve(ctx, txn, dec)
	}
}

// decisionFromEvent extracts the decision payload.  Events that crossed a
// serialisation boundary (fs vendor) arrive as generic maps and are decoded
// via a JSON round-trip.
func decisionFromEvent(evt *approval.Event) *approval.Decision {
	switch data := evt.Data.(type) {
	case *approval.Decision:
		return data
	case approval.Decision:
		return &data
	default:
		raw, err := json.Marshal(data)
		if err != nil {
			return nil
		}
		dec := &approval.Decision{}
		if err := json.Unmarshal(raw, dec); err != nil || dec.ID == "" {
			return nil
		}
		return dec
	}
}

// publish emits an audit event for a terminal transition when a publisher is
// attached.
func (s *Service) publish(ctx context.Context, txn *Transaction) {
	if s.events == nil {
		return
	}
	evtCtx := &event.Context{
		TransactionID: txn.ID,
		Kind:          string(txn.Operation.Kind),
		EventType:     "transaction." + string(txn.State),
	}
	_ = s.events.Publish(ctx, event.NewEvent(evtCtx, txn.Snapshot()))
}
