package approval

import (
	"context"
	"time"

	"github.com/viant/gatekeeper/internal/clock"
)

// defaultPollInterval is used by the polling helpers when the caller passes a
// non-positive interval.
const defaultPollInterval = 20 * time.Millisecond

// PendingFilter narrows the result of ListPending.
type PendingFilter func(r *Request) bool

// WithTransactionID keeps only requests for the given transaction.
func WithTransactionID(id string) PendingFilter {
	return func(r *Request) bool { return r.TransactionID == id }
}

// WithAction keeps only requests for the given action.
func WithAction(action string) PendingFilter {
	return func(r *Request) bool { return r.Action == action }
}

// ListPending returns pending requests matching all supplied filters.
func ListPending(ctx context.Context, svc Service, filters ...PendingFilter) ([]*Request, error) {
	all, err := svc.ListPending(ctx)
	if err != nil {
		return nil, err
	}
	if len(filters) == 0 {
		return all, nil
	}
	out := make([]*Request, 0, len(all))
outer:
	for _, r := range all {
		for _, filter := range filters {
			if !filter(r) {
				continue outer
			}
		}
		out = append(out, r)
	}
	return out, nil
}

// WaitForDecision blocks until a decision is recorded for the request or the
// timeout elapses.  Timeout and context cancellation surface as errors so
// that the caller can never mistake silence for approval.
func WaitForDecision(ctx context.Context, svc Service, id string, timeout time.Duration) (*Decision, error) {
	deadline := clock.Now().Add(timeout)
	ticker := time.NewTicker(defaultPollInterval)
	defer ticker.Stop()

	for {
		dec, err := svc.Decision(ctx, id)
		if err != nil {
			return nil, err
		}
		if dec != nil {
			return dec, nil
		}
		if clock.Now().After(deadline) {
			return nil, ErrDecisionTimeout
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}

// DecisionFunc decides what to do with a pending request.
// Return (true,  "") to approve
//
//	(false, "…") to reject with reason.
type DecisionFunc func(r *Request) (approved bool, reason string)

// AutoDecider starts a goroutine that polls ListPending and applies fn to
// every request.  It returns stop() – call it (or cancel ctx) to exit.
func AutoDecider(ctx context.Context,
	svc Service,
	fn DecisionFunc,
	interval time.Duration) (stop func()) {

	if interval <= 0 {
		interval = defaultPollInterval
	}
	done := make(chan struct{})

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-done:
				return
			case <-ticker.C:
				reqs, _ := svc.ListPending(ctx)
				for _, r := range reqs {
					ok, reason := fn(r)
					_, _ = svc.Decide(ctx, r.ID, ok, reason)
				}
			}
		}
	}()
	return func() { close(done) }
}

// AutoApprove automatically approves all pending requests
func AutoApprove(ctx context.Context,
	svc Service,
	interval time.Duration) func() {
	return AutoDecider(ctx, svc,
		func(*Request) (bool, string) { return true, "" }, interval)
}

// AutoReject automatically rejects all pending requests with the given reason
func AutoReject(ctx context.Context,
	svc Service,
	reason string,
	interval time.Duration) func() {
	return AutoDecider(ctx, svc,
		func(*Request) (bool, string) { return false, reason }, interval)
}

// AutoExpire rejects pending requests whose ExpiresAt deadline has passed and
// announces them on the gateway queue.  Requests without a deadline are left
// untouched.  It returns stop().
func AutoExpire(ctx context.Context,
	svc Service,
	reason string,
	interval time.Duration) func() {

	if interval <= 0 {
		interval = defaultPollInterval
	}
	done := make(chan struct{})

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-done:
				return
			case <-ticker.C:
				reqs, _ := svc.ListPending(ctx)
				for _, r := range reqs {
					if r.ExpiresAt == nil || clock.Now().Before(*r.ExpiresAt) {
						continue
					}
					_ = svc.Queue().Publish(ctx, &Event{Topic: TopicRequestExpired, Data: r})
					_, _ = svc.Decide(ctx, r.ID, false, reason)
				}
			}
		}
	}()
	return func() { close(done) }
}
