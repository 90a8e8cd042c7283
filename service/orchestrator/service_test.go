package orchestrator_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/viant/gatekeeper/ledger"
	"github.com/viant/gatekeeper/model"
	"github.com/viant/gatekeeper/policy"
	"github.com/viant/gatekeeper/service/approval"
	memApproval "github.com/viant/gatekeeper/service/approval/memory"
	"github.com/viant/gatekeeper/service/history"
	"github.com/viant/gatekeeper/service/messaging"
	qmem "github.com/viant/gatekeeper/service/messaging/memory"
	"github.com/viant/gatekeeper/service/orchestrator"
	"golang.org/x/sync/errgroup"
)

func newTestLedger() *ledger.Service {
	return ledger.New(
		ledger.Budget{Remaining: 5000_00, MonthlyLimit: 5000_00},
		[]ledger.Item{
			{Name: "paper clips", UnitPrice: 12_99, Stock: 500},
			{Name: "pens", UnitPrice: 8_50, Stock: 200},
			{Name: "gaming chair", UnitPrice: 1299_99, Stock: 2},
			{Name: "executive desk", UnitPrice: 2499_99, Stock: 1},
		})
}

func newService(t *testing.T, options ...orchestrator.Option) (*orchestrator.Service, *ledger.Service, approval.Service) {
	t.Helper()
	l := newTestLedger()
	gateway := memApproval.New()
	base := []orchestrator.Option{
		orchestrator.WithLedger(l),
		orchestrator.WithGateway(gateway),
		orchestrator.WithApprovalTimeout(time.Second),
	}
	svc, err := orchestrator.New(append(base, options...)...)
	assert.NoError(t, err)
	return svc, l, gateway
}

func TestSubmit_ApprovedPurchase(t *testing.T) {
	ctx := context.Background()
	hist := history.New(10)
	svc, l, gateway := newService(t, orchestrator.WithHistory(hist))

	stop := approval.AutoApprove(ctx, gateway, 5*time.Millisecond)
	defer stop()

	txn, err := svc.Submit(ctx, &model.Operation{
		Kind: model.KindPurchase, Item: "paper clips", Quantity: 50,
	})
	assert.NoError(t, err)
	assert.EqualValues(t, orchestrator.StateCommitted, txn.State)
	assert.EqualValues(t, orchestrator.VerdictApproved, txn.Verdict)
	assert.EqualValues(t, policy.TierBasic, txn.Tier)
	assert.EqualValues(t, 649_50, txn.Receipt.Total)
	assert.EqualValues(t, 4350_50, l.Snapshot().Remaining)

	item, _ := l.Lookup("paper clips")
	assert.EqualValues(t, 450, item.Stock)

	entries := hist.Recent(1)
	assert.Len(t, entries, 1)
	assert.EqualValues(t, 649_50, entries[0].Total)
}

func TestSubmit_DeniedPurchase(t *testing.T) {
	ctx := context.Background()
	svc, l, gateway := newService(t)

	stop := approval.AutoReject(ctx, gateway, "too expensive this quarter", 5*time.Millisecond)
	defer stop()

	txn, err := svc.Submit(ctx, &model.Operation{
		Kind: model.KindPurchase, Item: "gaming chair", Quantity: 1,
	})
	assert.NoError(t, err)
	assert.EqualValues(t, orchestrator.StateRejected, txn.State)
	assert.EqualValues(t, orchestrator.RejectNotApproved, txn.RejectReason)
	assert.EqualValues(t, orchestrator.VerdictDenied, txn.Verdict)
	assert.EqualValues(t, policy.TierHigh, txn.Tier)
	assert.EqualValues(t, "too expensive this quarter", txn.Reason)

	// denied purchase leaves the ledger untouched
	assert.EqualValues(t, 5000_00, l.Snapshot().Remaining)
	item, _ := l.Lookup("gaming chair")
	assert.EqualValues(t, 2, item.Stock)
}

func TestSubmit_DecisionTimeout(t *testing.T) {
	ctx := context.Background()
	svc, l, _ := newService(t, orchestrator.WithApprovalTimeout(50*time.Millisecond))

	// nobody decides
	txn, err := svc.Submit(ctx, &model.Operation{
		Kind: model.KindPurchase, Item: "gaming chair", Quantity: 1,
	})
	assert.NoError(t, err)
	assert.EqualValues(t, orchestrator.StateRejected, txn.State)
	assert.EqualValues(t, orchestrator.RejectNotApproved, txn.RejectReason)
	assert.EqualValues(t, 5000_00, l.Snapshot().Remaining)
}

// failingGateway refuses every request, simulating an unreachable approval
// service.
type failingGateway struct {
	queue messaging.Queue[approval.Event]
}

func (f *failingGateway) RequestApproval(ctx context.Context, r *approval.Request) error {
	return fmt.Errorf("gateway unreachable")
}
func (f *failingGateway) ListPending(ctx context.Context) ([]*approval.Request, error) {
	return nil, nil
}
func (f *failingGateway) Decide(ctx context.Context, id string, ok bool, reason string) (*approval.Decision, error) {
	return nil, approval.ErrRequestNotFound
}
func (f *failingGateway) Decision(ctx context.Context, id string) (*approval.Decision, error) {
	return nil, nil
}
func (f *failingGateway) Queue() messaging.Queue[approval.Event] { return f.queue }

func TestSubmit_GatewayUnavailable(t *testing.T) {
	ctx := context.Background()
	l := newTestLedger()
	svc, err := orchestrator.New(
		orchestrator.WithLedger(l),
		orchestrator.WithGateway(&failingGateway{queue: qmem.NewQueue[approval.Event](qmem.DefaultConfig())}))
	assert.NoError(t, err)

	txn, err := svc.Submit(ctx, &model.Operation{
		Kind: model.KindPurchase, Item: "gaming chair", Quantity: 1,
	})
	assert.NoError(t, err)
	// silence is never approval: the operation is discarded
	assert.EqualValues(t, orchestrator.StateRejected, txn.State)
	assert.EqualValues(t, orchestrator.RejectNotApproved, txn.RejectReason)
	assert.EqualValues(t, 5000_00, l.Snapshot().Remaining)
}

func TestSubmit_Idempotent(t *testing.T) {
	ctx := context.Background()
	svc, l, gateway := newService(t)

	stop := approval.AutoApprove(ctx, gateway, 5*time.Millisecond)
	defer stop()

	op := &model.Operation{ID: "op-1", Kind: model.KindPurchase, Item: "pens", Quantity: 10}
	first, err := svc.Submit(ctx, op)
	assert.NoError(t, err)
	assert.EqualValues(t, orchestrator.StateCommitted, first.State)

	// same id again: stored result, no second debit
	again, err := svc.Submit(ctx, &model.Operation{ID: "op-1", Kind: model.KindPurchase, Item: "pens", Quantity: 10})
	assert.NoError(t, err)
	assert.EqualValues(t, first.ID, again.ID)
	assert.EqualValues(t, orchestrator.StateCommitted, again.State)
	assert.EqualValues(t, 5000_00-85_00, l.Snapshot().Remaining)
}

func TestSubmit_Outcomes(t *testing.T) {
	type testCase struct {
		name         string
		op           *model.Operation
		expectState  orchestrator.State
		expectReason orchestrator.RejectReason
	}

	tests := []testCase{{
		name:         "unknown item",
		op:           &model.Operation{Kind: model.KindPurchase, Item: "helicopter", Quantity: 1},
		expectState:  orchestrator.StateRejected,
		expectReason: orchestrator.RejectNotFound,
	}, {
		name:         "invalid operation",
		op:           &model.Operation{Kind: model.KindPurchase, Item: "pens"},
		expectState:  orchestrator.StateRejected,
		expectReason: orchestrator.RejectInvalid,
	}, {
		name:         "stock exhausted at commit",
		op:           &model.Operation{Kind: model.KindPurchase, Item: "executive desk", Quantity: 2},
		expectState:  orchestrator.StateRejected,
		expectReason: orchestrator.RejectOutOfStock,
	}, {
		name:         "insufficient funds at commit",
		op:           &model.Operation{Kind: model.KindExternalPurchase, Item: "yacht", Vendor: "acme", UnitPrice: 6000_00},
		expectState:  orchestrator.StateRejected,
		expectReason: orchestrator.RejectInsufficientFunds,
	}, {
		name:        "budget increase",
		op:          &model.Operation{Kind: model.KindBudgetIncrease, Amount: 1000_00},
		expectState: orchestrator.StateCommitted,
	}}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			ctx := context.Background()
			svc, l, gateway := newService(t)
			stop := approval.AutoApprove(ctx, gateway, 5*time.Millisecond)
			defer stop()

			before := l.Snapshot()
			txn, err := svc.Submit(ctx, tc.op)
			assert.NoError(t, err)
			assert.EqualValues(t, tc.expectState, txn.State)
			assert.EqualValues(t, tc.expectReason, txn.RejectReason)
			if tc.expectState == orchestrator.StateRejected {
				assert.EqualValues(t, before.Remaining, l.Snapshot().Remaining)
			}
		})
	}
}

func TestSubmit_BudgetIncrease(t *testing.T) {
	ctx := context.Background()
	svc, l, gateway := newService(t)
	stop := approval.AutoApprove(ctx, gateway, 5*time.Millisecond)
	defer stop()

	txn, err := svc.Submit(ctx, &model.Operation{Kind: model.KindBudgetIncrease, Amount: 2000_00})
	assert.NoError(t, err)
	assert.EqualValues(t, orchestrator.StateCommitted, txn.State)
	assert.EqualValues(t, policy.TierHigh, txn.Tier)

	budget := l.Snapshot()
	assert.EqualValues(t, 7000_00, budget.Remaining)
	assert.EqualValues(t, 7000_00, budget.MonthlyLimit)
}

func TestSubmit_BlockedByPolicy(t *testing.T) {
	ctx := context.Background()
	svc, l, gateway := newService(t,
		orchestrator.WithPolicy(&policy.Policy{Mode: policy.ModeAsk, BlockList: []string{"budgetIncrease"}}))

	txn, err := svc.Submit(ctx, &model.Operation{Kind: model.KindBudgetIncrease, Amount: 1000_00})
	assert.NoError(t, err)
	assert.EqualValues(t, orchestrator.StateRejected, txn.State)
	assert.EqualValues(t, policy.TierBlocked, txn.Tier)
	assert.EqualValues(t, 5000_00, l.Snapshot().Remaining)

	// blocked operations never reach the gateway
	pending, _ := gateway.ListPending(ctx)
	assert.Empty(t, pending)
}

func TestSubmit_PolicyFromContext(t *testing.T) {
	ctx := context.Background()
	svc, l, _ := newService(t)

	// per-submission auto policy overrides the service-wide ask default
	autoCtx := policy.WithPolicy(ctx, &policy.Policy{Mode: policy.ModeAuto})
	txn, err := svc.Submit(autoCtx, &model.Operation{Kind: model.KindPurchase, Item: "pens", Quantity: 10})
	assert.NoError(t, err)
	assert.EqualValues(t, orchestrator.StateCommitted, txn.State)
	assert.EqualValues(t, orchestrator.VerdictAutoApproved, txn.Verdict)
	assert.EqualValues(t, "system", txn.DecidedBy)
	assert.EqualValues(t, 5000_00-85_00, l.Snapshot().Remaining)
}

func TestWithdraw(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	svc, l, gateway := newService(t,
		orchestrator.WithWaitMode(orchestrator.WaitModeNotify))
	svc.Start(ctx)
	defer svc.Shutdown()

	txn, err := svc.Submit(ctx, &model.Operation{Kind: model.KindPurchase, Item: "gaming chair", Quantity: 1})
	assert.NoError(t, err)
	assert.EqualValues(t, orchestrator.StatePendingApproval, txn.State)

	withdrawn, err := svc.Withdraw(ctx, txn.ID)
	assert.NoError(t, err)
	assert.EqualValues(t, orchestrator.StateRejected, withdrawn.State)
	assert.EqualValues(t, orchestrator.RejectCancelled, withdrawn.RejectReason)

	// a late decision must not resurrect the transaction
	_, _ = gateway.Decide(ctx, txn.ID, true, "late approval")
	time.Sleep(20 * time.Millisecond)
	stored, err := svc.Transaction(ctx, txn.ID)
	assert.NoError(t, err)
	assert.EqualValues(t, orchestrator.RejectCancelled, stored.RejectReason)
	assert.EqualValues(t, 5000_00, l.Snapshot().Remaining)
}

func TestNotifyMode(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	svc, l, gateway := newService(t,
		orchestrator.WithWaitMode(orchestrator.WaitModeNotify))
	svc.Start(ctx)
	defer svc.Shutdown()

	txn, err := svc.Submit(ctx, &model.Operation{Kind: model.KindPurchase, Item: "gaming chair", Quantity: 1})
	assert.NoError(t, err)
	assert.EqualValues(t, orchestrator.StatePendingApproval, txn.State)

	_, err = gateway.Decide(ctx, txn.ID, true, "go ahead")
	assert.NoError(t, err)

	final, err := svc.Wait(ctx, txn.ID, time.Second)
	assert.NoError(t, err)
	assert.EqualValues(t, orchestrator.StateCommitted, final.State)
	assert.EqualValues(t, orchestrator.VerdictApproved, final.Verdict)
	assert.EqualValues(t, 5000_00-1299_99, l.Snapshot().Remaining)
}

// TestSubmit_Concurrent verifies that concurrent approved submissions never
// overdraw the budget or oversell stock.
func TestSubmit_Concurrent(t *testing.T) {
	ctx := context.Background()
	l := ledger.New(
		ledger.Budget{Remaining: 100_00, MonthlyLimit: 100_00},
		[]ledger.Item{{Name: "pens", UnitPrice: 10_00, Stock: 8}})
	gateway := memApproval.New()
	svc, err := orchestrator.New(
		orchestrator.WithLedger(l),
		orchestrator.WithGateway(gateway),
		orchestrator.WithApprovalTimeout(2*time.Second))
	assert.NoError(t, err)

	stop := approval.AutoApprove(ctx, gateway, time.Millisecond)
	defer stop()

	var committed int32
	results := make([]*orchestrator.Transaction, 16)
	group := errgroup.Group{}
	for i := 0; i < 16; i++ {
		i := i
		group.Go(func() error {
			txn, err := svc.Submit(ctx, &model.Operation{
				ID: fmt.Sprintf("op-%d", i), Kind: model.KindPurchase, Item: "pens", Quantity: 1,
			})
			results[i] = txn
			return err
		})
	}
	assert.NoError(t, group.Wait())

	for _, txn := range results {
		if txn.Committed() {
			committed++
		} else {
			assert.EqualValues(t, orchestrator.RejectOutOfStock, txn.RejectReason)
		}
	}
	assert.EqualValues(t, 8, committed)
	assert.EqualValues(t, 20_00, l.Snapshot().Remaining)
}

// TestSubmit_SustainedBlocking runs more gated submissions than the gateway
// event buffer holds.  Nothing consumes the event stream in blocking mode, so
// a full buffer must never wedge the approval path.
func TestSubmit_SustainedBlocking(t *testing.T) {
	ctx := context.Background()
	l := ledger.New(
		ledger.Budget{Remaining: 1000_00, MonthlyLimit: 1000_00},
		[]ledger.Item{{Name: "pens", UnitPrice: 1_00, Stock: 500}})
	gateway := memApproval.New()
	svc, err := orchestrator.New(
		orchestrator.WithLedger(l),
		orchestrator.WithGateway(gateway),
		orchestrator.WithApprovalTimeout(2*time.Second))
	assert.NoError(t, err)

	stop := approval.AutoApprove(ctx, gateway, time.Millisecond)
	defer stop()

	for i := 0; i < 120; i++ {
		txn, err := svc.Submit(ctx, &model.Operation{
			ID: fmt.Sprintf("bulk-%d", i), Kind: model.KindPurchase, Item: "pens", Quantity: 1,
		})
		assert.NoError(t, err)
		assert.True(t, txn.Committed(), "submission %d did not commit", i)
	}
	assert.EqualValues(t, 1000_00-120_00, l.Snapshot().Remaining)
}

func TestTransactionLookup(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newService(t)

	_, err := svc.Transaction(ctx, "missing")
	assert.Error(t, err)

	autoCtx := policy.WithPolicy(ctx, &policy.Policy{Mode: policy.ModeAuto})
	txn, err := svc.Submit(autoCtx, &model.Operation{Kind: model.KindPurchase, Item: "pens", Quantity: 1})
	assert.NoError(t, err)

	loaded, err := svc.Transaction(ctx, txn.ID)
	assert.NoError(t, err)
	assert.EqualValues(t, txn.ID, loaded.ID)

	all, err := svc.Transactions(ctx)
	assert.NoError(t, err)
	assert.Len(t, all, 1)
}
