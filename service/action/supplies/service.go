package supplies

import (
	"context"
	"fmt"

	"github.com/viant/gatekeeper/internal/clock"
	"github.com/viant/gatekeeper/ledger"
	"github.com/viant/gatekeeper/model"
	"github.com/viant/gatekeeper/policy"
	"github.com/viant/gatekeeper/service/history"
	"github.com/viant/gatekeeper/service/orchestrator"
)

// Service exposes the office-supply operations as callable tool methods.
// Every mutating method goes through the orchestrator, so the risk policy
// and the approval gate apply no matter which tool the caller picked.
type Service struct {
	orchestrator *orchestrator.Service
	ledger       *ledger.Service
	history      *history.Service
	policy       *policy.Policy
}

// New creates a supplies tool service.
func New(orch *orchestrator.Service, l *ledger.Service, h *history.Service, p *policy.Policy) *Service {
	if p == nil {
		p = policy.Default()
	}
	return &Service{orchestrator: orch, ledger: l, history: h, policy: p}
}

// CheckInventory resolves a catalog item by partial name.
func (s *Service) CheckInventory(ctx context.Context, input *CheckInventoryInput, output *CheckInventoryOutput) error {
	item, err := s.ledger.Lookup(input.Item)
	if err != nil {
		output.Found = false
		output.Message = fmt.Sprintf("no catalog item matches %q", input.Item)
		return nil
	}
	output.Found = true
	output.Item = item.Name
	output.UnitPrice = ledger.FormatAmount(item.UnitPrice)
	output.Stock = item.Stock
	output.Message = fmt.Sprintf("%v: %v each, %v in stock", item.Name, output.UnitPrice, item.Stock)
	return nil
}

// GetBudget reports the current budget.
func (s *Service) GetBudget(ctx context.Context, input *BudgetInput, output *BudgetOutput) error {
	budget := s.ledger.Snapshot()
	output.Remaining = ledger.FormatAmount(budget.Remaining)
	output.MonthlyLimit = ledger.FormatAmount(budget.MonthlyLimit)
	output.Message = fmt.Sprintf("%v remaining of %v monthly limit", output.Remaining, output.MonthlyLimit)
	return nil
}

// RecentPurchases lists the latest recorded purchases, newest first.
func (s *Service) RecentPurchases(ctx context.Context, input *RecentPurchasesInput, output *RecentPurchasesOutput) error {
	limit := input.Limit
	if limit <= 0 {
		limit = 5
	}
	entries := s.history.Recent(limit)
	output.Entries = make([]HistoryEntry, 0, len(entries))
	for _, entry := range entries {
		output.Entries = append(output.Entries, HistoryEntry{
			Item:          entry.Item,
			Vendor:        entry.Vendor,
			Quantity:      entry.Quantity,
			Total:         ledger.FormatAmount(entry.Total),
			Justification: entry.Justification,
			At:            entry.At.Format("2006-01-02 15:04:05"),
		})
	}
	output.Message = fmt.Sprintf("%v recent purchase(s)", len(output.Entries))
	return nil
}

// PurchaseBasic buys a catalog item.  Low-cost purchases commit immediately;
// anything over the low-risk ceiling still goes through the approval gate.
func (s *Service) PurchaseBasic(ctx context.Context, input *PurchaseBasicInput, output *PurchaseOutput) error {
	op := &model.Operation{
		Kind:        model.KindPurchase,
		Item:        input.Item,
		Quantity:    input.Quantity,
		Requester:   input.Requester,
		SubmittedAt: clock.Now(),
	}
	return s.submit(ctx, op, output)
}

// PurchaseExpensive buys a catalog item expected to need approval.  When the
// resolved cost falls under the low-risk ceiling the request is handled as a
// basic purchase and flagged as redirected.
func (s *Service) PurchaseExpensive(ctx context.Context, input *PurchaseExpensiveInput, output *PurchaseOutput) error {
	quantity := input.Quantity
	if quantity <= 0 {
		quantity = 1
	}
	op := &model.Operation{
		Kind:          model.KindPurchase,
		Item:          input.Item,
		Quantity:      quantity,
		Justification: input.Justification,
		Requester:     input.Requester,
		SubmittedAt:   clock.Now(),
	}
	if item, err := s.ledger.Lookup(input.Item); err == nil {
		if int64(quantity)*item.UnitPrice <= s.policy.Ceiling() {
			output.Redirected = true
		}
	}
	return s.submit(ctx, op, output)
}

// PurchaseLuxury buys from an off-catalog vendor at a declared price.  Only
// the budget is debited; no stock is tracked.
func (s *Service) PurchaseLuxury(ctx context.Context, input *PurchaseLuxuryInput, output *PurchaseOutput) error {
	op := &model.Operation{
		Kind:          model.KindExternalPurchase,
		Item:          input.Item,
		UnitPrice:     ledger.Cents(input.Price),
		Vendor:        input.Vendor,
		Justification: input.Justification,
		Requester:     input.Requester,
		SubmittedAt:   clock.Now(),
	}
	return s.submit(ctx, op, output)
}

// IncreaseBudget raises the remaining budget and the monthly limit.
func (s *Service) IncreaseBudget(ctx context.Context, input *IncreaseBudgetInput, output *PurchaseOutput) error {
	op := &model.Operation{
		Kind:          model.KindBudgetIncrease,
		Amount:        ledger.Cents(input.Amount),
		Justification: input.Reason,
		Requester:     input.Requester,
		SubmittedAt:   clock.Now(),
	}
	return s.submit(ctx, op, output)
}

func (s *Service) submit(ctx context.Context, op *model.Operation, output *PurchaseOutput) error {
	txn, err := s.orchestrator.Submit(ctx, op)
	if err != nil {
		return err
	}
	txn = txn.Snapshot()
	output.TransactionID = txn.ID
	output.Status = string(txn.State)
	output.Tier = string(txn.Tier)
	output.RejectReason = string(txn.RejectReason)
	output.DecidedBy = txn.DecidedBy

	switch txn.State {
	case orchestrator.StateCommitted:
		output.Total = ledger.FormatAmount(txn.Receipt.Total)
		output.Remaining = ledger.FormatAmount(txn.Receipt.Remaining)
		output.Message = fmt.Sprintf("committed: %v spent, %v remaining", output.Total, output.Remaining)
	case orchestrator.StatePendingApproval:
		output.Message = "waiting for human approval"
	case orchestrator.StateRejected:
		detail := txn.Reason
		if detail == "" {
			detail = txn.Error
		}
		output.Message = fmt.Sprintf("rejected (%v): %v", txn.RejectReason, detail)
	default:
		output.Message = string(txn.State)
	}
	return nil
}
