package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/viant/gatekeeper/internal/clock"
	"github.com/viant/gatekeeper/internal/idgen"
	"github.com/viant/gatekeeper/service/approval"
	"github.com/viant/gatekeeper/service/dao"
	"github.com/viant/gatekeeper/service/dao/store"
	"github.com/viant/gatekeeper/service/messaging"
	qmem "github.com/viant/gatekeeper/service/messaging/memory"
)

type service struct {
	// DAO-backed stores
	reqDAO dao.Service[string, approval.Request]
	decDAO dao.Service[string, approval.Decision]

	// fan-out queue
	events messaging.Queue[approval.Event]

	// serialises Decide so that at most one terminal decision is recorded
	// per request even under concurrent deciders
	decideMu sync.Mutex

	decider string
}

// key selectors – grab ID field
func reqKey(r *approval.Request) string  { return r.ID }
func decKey(d *approval.Decision) string { return d.ID }

// New creates an in-memory approval gateway.
func New(options ...Option) approval.Service {
	ret := &service{
		reqDAO:  store.NewMemoryStore[string, approval.Request](reqKey),
		decDAO:  store.NewMemoryStore[string, approval.Decision](decKey),
		decider: "human",
	}
	for _, option := range options {
		option(ret)
	}
	if ret.events == nil {
		ret.events = qmem.NewQueue[approval.Event](qmem.DefaultConfig())
	}
	return ret
}

/* ---------------- DAO-style operations -------------------------------- */

func (s *service) RequestApproval(ctx context.Context, r *approval.Request) error {
	if r == nil {
		return fmt.Errorf("invalid request")
	}

	// Ensure the request has a globally unique identifier.  If the caller
	// did not specify one we fall back to the transaction id (unique within
	// a run) – this protects against silent drops caused by empty IDs.
	if r.ID == "" {
		if r.TransactionID != "" {
			r.ID = r.TransactionID
		} else {
			r.ID = idgen.New()
		}
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = clock.Now()
	}

	// Idempotent save – overwrite any previous copy to handle re-submissions
	// gracefully.
	_ = s.reqDAO.Save(ctx, r)
	_ = s.events.Publish(ctx, &approval.Event{Topic: approval.TopicRequestCreated, Data: r})
	return nil
}

func (s *service) ListPending(ctx context.Context) ([]*approval.Request, error) {
	all, err := s.reqDAO.List(ctx)
	if err != nil {
		return nil, err
	}
	pending := make([]*approval.Request, 0, len(all))
	for _, r := range all {
		if d, _ := s.decDAO.Load(ctx, r.ID); d == nil {
			pending = append(pending, r)
		}
	}
	return pending, nil
}

func (s *service) Decide(ctx context.Context, id string,
	ok bool, reason string) (*approval.Decision, error) {

	if id == "" {
		return nil, dao.ErrInvalidID
	}
	s.decideMu.Lock()
	defer s.decideMu.Unlock()

	request, _ := s.reqDAO.Load(ctx, id)
	if request == nil {
		return nil, approval.ErrRequestNotFound
	}
	if d, _ := s.decDAO.Load(ctx, id); d != nil {
		return nil, approval.ErrAlreadyDecided
	}

	d := &approval.Decision{
		ID:        id,
		Approved:  ok,
		Reason:    reason,
		DecidedBy: s.decider,
		DecidedAt: clock.Now(),
	}
	_ = s.decDAO.Save(ctx, d)
	_ = s.events.Publish(ctx, &approval.Event{Topic: approval.TopicDecisionCreated, Data: d})
	return d, nil
}

func (s *service) Decision(ctx context.Context, id string) (*approval.Decision, error) {
	return s.decDAO.Load(ctx, id)
}

/* ---------------- Broker-style ---------------------------------------- */

func (s *service) Queue() messaging.Queue[approval.Event] { return s.events }

var _ approval.Service = (*service)(nil)
