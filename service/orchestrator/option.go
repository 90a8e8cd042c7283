package orchestrator

import (
	"time"

	"github.com/viant/gatekeeper/ledger"
	"github.com/viant/gatekeeper/policy"
	"github.com/viant/gatekeeper/service/approval"
	"github.com/viant/gatekeeper/service/dao"
	"github.com/viant/gatekeeper/service/event"
	"github.com/viant/gatekeeper/service/history"
)

type Option func(*Service)

// WithLedger sets the ledger the orchestrator commits against.
func WithLedger(l *ledger.Service) Option {
	return func(s *Service) { s.ledger = l }
}

// WithGateway sets the approval gateway.
func WithGateway(gateway approval.Service) Option {
	return func(s *Service) { s.gateway = gateway }
}

// WithPolicy sets the orchestrator-wide risk policy.  Individual submissions
// may still override it via policy.WithPolicy on the context.
func WithPolicy(p *policy.Policy) Option {
	return func(s *Service) { s.policy = p }
}

// WithHistory sets the purchase history recorder.
func WithHistory(h *history.Service) Option {
	return func(s *Service) { s.history = h }
}

// WithTransactionDAO replaces the default in-memory transaction store.
func WithTransactionDAO(store dao.Service[string, Transaction]) Option {
	return func(s *Service) { s.txnDAO = store }
}

// WithWaitMode selects how Submit behaves for gated operations: block until a
// decision, or return the pending transaction immediately.
func WithWaitMode(mode WaitMode) Option {
	return func(s *Service) { s.config.WaitMode = mode }
}

// WithApprovalTimeout bounds how long a gated operation may wait for a human
// decision before it resolves to a rejection.
func WithApprovalTimeout(timeout time.Duration) Option {
	return func(s *Service) { s.config.ApprovalTimeout = timeout }
}

// WithEventPublisher attaches a publisher notified on every terminal
// transition (audit feed).
func WithEventPublisher(publisher *event.Publisher[*Transaction]) Option {
	return func(s *Service) { s.events = publisher }
}
