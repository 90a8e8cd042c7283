package approval_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	approval "github.com/viant/gatekeeper/service/approval"
	memApproval "github.com/viant/gatekeeper/service/approval/memory"
)

// TestWaitForDecision verifies that WaitForDecision blocks until a decision
// is recorded and that silence surfaces as an error, never as an approval.
func TestWaitForDecision(t *testing.T) {
	type testCase struct {
		name        string
		approve     bool
		expectError bool
		timeout     time.Duration
		decideDelay time.Duration
	}

	tests := []testCase{{
		name:        "approved before timeout",
		approve:     true,
		expectError: false,
		timeout:     500 * time.Millisecond,
		decideDelay: 10 * time.Millisecond,
	}, {
		name:        "rejected before timeout",
		approve:     false,
		expectError: false,
		timeout:     500 * time.Millisecond,
		decideDelay: 10 * time.Millisecond,
	}, {
		name:        "timeout waiting for decision",
		approve:     true, // irrelevant – decision never recorded in time
		expectError: true,
		timeout:     50 * time.Millisecond,
		decideDelay: 200 * time.Millisecond,
	}}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			ctx := context.Background()
			svc := memApproval.New()

			req := &approval.Request{ID: "req-1", TransactionID: "t1", Action: "purchase"}
			assert.NoError(t, svc.RequestApproval(ctx, req))

			go func() {
				time.Sleep(tc.decideDelay)
				_, _ = svc.Decide(ctx, req.ID, tc.approve, "because")
			}()

			dec, err := approval.WaitForDecision(ctx, svc, req.ID, tc.timeout)
			if tc.expectError {
				assert.ErrorIs(t, err, approval.ErrDecisionTimeout)
				return
			}
			assert.NoError(t, err)
			assert.EqualValues(t, tc.approve, dec.Approved)
		})
	}
}

func TestWaitForDecision_ContextCancelled(t *testing.T) {
	svc := memApproval.New()
	ctx, cancel := context.WithCancel(context.Background())
	assert.NoError(t, svc.RequestApproval(ctx, &approval.Request{ID: "r1", TransactionID: "t1", Action: "purchase"}))

	go func() {
		time.Sleep(30 * time.Millisecond)
		cancel()
	}()
	_, err := approval.WaitForDecision(ctx, svc, "r1", time.Minute)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestListPending_Filters(t *testing.T) {
	ctx := context.Background()
	svc := memApproval.New()

	assert.NoError(t, svc.RequestApproval(ctx, &approval.Request{ID: "r1", TransactionID: "t1", Action: "purchase"}))
	assert.NoError(t, svc.RequestApproval(ctx, &approval.Request{ID: "r2", TransactionID: "t2", Action: "budgetIncrease"}))

	all, err := approval.ListPending(ctx, svc)
	assert.NoError(t, err)
	assert.Len(t, all, 2)

	byTxn, err := approval.ListPending(ctx, svc, approval.WithTransactionID("t2"))
	assert.NoError(t, err)
	assert.Len(t, byTxn, 1)
	assert.EqualValues(t, "r2", byTxn[0].ID)

	none, err := approval.ListPending(ctx, svc,
		approval.WithTransactionID("t2"), approval.WithAction("purchase"))
	assert.NoError(t, err)
	assert.Empty(t, none)
}

func TestAutoApprove(t *testing.T) {
	ctx := context.Background()
	svc := memApproval.New(memApproval.WithDecider("system"))

	stop := approval.AutoApprove(ctx, svc, 5*time.Millisecond)
	defer stop()

	assert.NoError(t, svc.RequestApproval(ctx, &approval.Request{ID: "r1", TransactionID: "t1", Action: "purchase"}))

	dec, err := approval.WaitForDecision(ctx, svc, "r1", time.Second)
	assert.NoError(t, err)
	assert.True(t, dec.Approved)
	assert.EqualValues(t, "system", dec.DecidedBy)
}

func TestAutoExpire(t *testing.T) {
	ctx := context.Background()
	svc := memApproval.New()

	stop := approval.AutoExpire(ctx, svc, "expired", 5*time.Millisecond)
	defer stop()

	past := time.Now().Add(-time.Second)
	assert.NoError(t, svc.RequestApproval(ctx, &approval.Request{
		ID: "stale", TransactionID: "t1", Action: "purchase", ExpiresAt: &past,
	}))
	// no deadline – must be left alone
	assert.NoError(t, svc.RequestApproval(ctx, &approval.Request{
		ID: "fresh", TransactionID: "t2", Action: "purchase",
	}))

	dec, err := approval.WaitForDecision(ctx, svc, "stale", time.Second)
	assert.NoError(t, err)
	assert.False(t, dec.Approved)
	assert.EqualValues(t, "expired", dec.Reason)

	time.Sleep(20 * time.Millisecond)
	still, err := svc.Decision(ctx, "fresh")
	assert.NoError(t, err)
	assert.Nil(t, still)
}
