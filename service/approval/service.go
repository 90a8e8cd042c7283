package approval

import (
	"context"

	"github.com/viant/gatekeeper/service/messaging"
)

// Service defines the approval gateway interface.  Implementations may be
// backed by an external human-approval product; the orchestrator only
// depends on this contract.
type Service interface {
	RequestApproval(ctx context.Context, r *Request) error
	ListPending(ctx context.Context) ([]*Request, error)
	Decide(ctx context.Context, id string, approved bool, reason string) (*Decision, error)
	Decision(ctx context.Context, id string) (*Decision, error)
	Queue() messaging.Queue[Event]
}
