// Package policy provides the risk classification layer that decides whether
// an operation may commit automatically, needs a human decision, or is
// blocked outright.  It is deliberately decoupled from the orchestrator so
// that hosts can swap rules without touching the state machine.

package policy

import (
	"context"
	"strings"

	"github.com/viant/gatekeeper/model"
)

// Execution modes recognised by the orchestrator.
const (
	ModeAsk  = "ask"  // classify by tier, route gated tiers to approval (default)
	ModeAuto = "auto" // commit everything automatically (tests, dry runs)
	ModeDeny = "deny" // block every mutation
)

// Tier is the risk classification of an operation.  Ordering matters:
// a higher tier never requires less approval than a lower one.
type Tier string

const (
	// TierAuto commits without a human decision.
	TierAuto Tier = "auto"
	// TierBasic is a low-risk purchase that still requires approval.
	TierBasic Tier = "basic"
	// TierHigh is a high-risk operation (expensive, external vendor or
	// budget increase) that requires approval.
	TierHigh Tier = "high"
	// TierBlocked is refused before reaching the approval gateway.
	TierBlocked Tier = "blocked"
)

// Gated reports whether the tier requires a human decision before commit.
func (t Tier) Gated() bool {
	return t == TierBasic || t == TierHigh
}

// DefaultLowRiskCeiling is the per-unit price (cents) above which a catalog
// purchase is classified as high risk.
const DefaultLowRiskCeiling int64 = 200_00

// Policy represents the approval settings for a run.
//
//   - Mode controls the high-level behaviour (ask / auto / deny).
//   - AllowList, BlockList filter by operation kind regardless of Mode.
//   - LowRiskCeiling splits gated purchases into basic and high tiers.
//
// A nil *Policy behaves like Default().
type Policy struct {
	Mode           string   // ask / auto / deny      (default = ask)
	AllowList      []string // kinds that always commit automatically
	BlockList      []string // kinds that are always blocked
	LowRiskCeiling int64    // cents per unit, 0 = DefaultLowRiskCeiling
}

// Default returns the policy used when none is supplied: every mutation is
// gated, with the standard low-risk ceiling.
func Default() *Policy {
	return &Policy{Mode: ModeAsk, LowRiskCeiling: DefaultLowRiskCeiling}
}

// Ceiling returns the effective low-risk ceiling.
func (p *Policy) Ceiling() int64 {
	if p == nil || p.LowRiskCeiling <= 0 {
		return DefaultLowRiskCeiling
	}
	return p.LowRiskCeiling
}

// Classify maps an operation plus its resolved per-unit price (cents) onto a
// tier.  It is a pure function of the declared kind and cost – the free-text
// justification never participates.  For a fixed kind the result is
// monotonic in unitPrice: raising the price can only raise the tier.
func (p *Policy) Classify(op *model.Operation, unitPrice int64) Tier {
	if p == nil {
		p = Default()
	}

	kind := strings.ToLower(string(op.Kind))

	// BlockList has priority.
	for _, b := range p.BlockList {
		if kind == strings.ToLower(b) {
			return TierBlocked
		}
	}
	if strings.ToLower(p.Mode) == ModeDeny {
		return TierBlocked
	}
	for _, a := range p.AllowList {
		if kind == strings.ToLower(a) {
			return TierAuto
		}
	}
	if strings.ToLower(p.Mode) == ModeAuto {
		return TierAuto
	}

	switch op.Kind {
	case model.KindBudgetIncrease, model.KindExternalPurchase:
		return TierHigh
	case model.KindPurchase:
		if unitPrice > p.Ceiling() {
			return TierHigh
		}
		return TierBasic
	}
	return TierBlocked
}

// ---------------------------------------------------------------------------
// Context helpers
// ---------------------------------------------------------------------------

type ctxKeyT struct{}

var ctxKey ctxKeyT

// WithPolicy embeds policy in ctx so that a single submission can override
// the orchestrator-wide policy.
func WithPolicy(ctx context.Context, p *Policy) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxKey, p)
}

// FromContext extracts (*Policy, ok).
func FromContext(ctx context.Context) *Policy {
	if ctx == nil {
		return nil
	}
	if v, ok := ctx.Value(ctxKey).(*Policy); ok {
		return v
	}
	return nil
}
