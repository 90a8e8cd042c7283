package policy_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/viant/gatekeeper/model"
	"github.com/viant/gatekeeper/policy"
)

func TestPolicy_Classify(t *testing.T) {
	type testCase struct {
		name      string
		policy    *policy.Policy
		op        *model.Operation
		unitPrice int64
		expect    policy.Tier
	}

	tests := []testCase{{
		name:      "cheap purchase is basic",
		policy:    policy.Default(),
		op:        &model.Operation{Kind: model.KindPurchase, Item: "pens", Quantity: 10},
		unitPrice: 8_50,
		expect:    policy.TierBasic,
	}, {
		name:      "purchase at the ceiling stays basic",
		policy:    policy.Default(),
		op:        &model.Operation{Kind: model.KindPurchase, Item: "widget", Quantity: 1},
		unitPrice: 200_00,
		expect:    policy.TierBasic,
	}, {
		name:      "purchase above the ceiling is high",
		policy:    policy.Default(),
		op:        &model.Operation{Kind: model.KindPurchase, Item: "gaming chair", Quantity: 1},
		unitPrice: 1299_99,
		expect:    policy.TierHigh,
	}, {
		name:      "external purchase is always high",
		policy:    policy.Default(),
		op:        &model.Operation{Kind: model.KindExternalPurchase, Item: "sofa", UnitPrice: 50_00},
		unitPrice: 50_00,
		expect:    policy.TierHigh,
	}, {
		name:      "budget increase is always high",
		policy:    policy.Default(),
		op:        &model.Operation{Kind: model.KindBudgetIncrease, Amount: 1_00},
		unitPrice: 1_00,
		expect:    policy.TierHigh,
	}, {
		name:      "deny mode blocks everything",
		policy:    &policy.Policy{Mode: policy.ModeDeny},
		op:        &model.Operation{Kind: model.KindPurchase, Item: "pens", Quantity: 1},
		unitPrice: 8_50,
		expect:    policy.TierBlocked,
	}, {
		name:      "auto mode commits everything",
		policy:    &policy.Policy{Mode: policy.ModeAuto},
		op:        &model.Operation{Kind: model.KindBudgetIncrease, Amount: 9999_00},
		unitPrice: 9999_00,
		expect:    policy.TierAuto,
	}, {
		name:      "allow list wins over cost",
		policy:    &policy.Policy{Mode: policy.ModeAsk, AllowList: []string{"purchase"}},
		op:        &model.Operation{Kind: model.KindPurchase, Item: "gaming chair", Quantity: 1},
		unitPrice: 1299_99,
		expect:    policy.TierAuto,
	}, {
		name:      "block list wins over allow list",
		policy:    &policy.Policy{Mode: policy.ModeAuto, AllowList: []string{"purchase"}, BlockList: []string{"purchase"}},
		op:        &model.Operation{Kind: model.KindPurchase, Item: "pens", Quantity: 1},
		unitPrice: 8_50,
		expect:    policy.TierBlocked,
	}, {
		name:      "custom ceiling",
		policy:    &policy.Policy{Mode: policy.ModeAsk, LowRiskCeiling: 10_00},
		op:        &model.Operation{Kind: model.KindPurchase, Item: "stapler", Quantity: 1},
		unitPrice: 24_99,
		expect:    policy.TierHigh,
	}, {
		name:      "nil policy behaves like default",
		policy:    nil,
		op:        &model.Operation{Kind: model.KindPurchase, Item: "pens", Quantity: 1},
		unitPrice: 8_50,
		expect:    policy.TierBasic,
	}}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.EqualValues(t, tc.expect, tc.policy.Classify(tc.op, tc.unitPrice))
		})
	}
}

// TestPolicy_Monotonic verifies that raising the price never lowers the tier.
func TestPolicy_Monotonic(t *testing.T) {
	rank := map[policy.Tier]int{
		policy.TierAuto:    0,
		policy.TierBasic:   1,
		policy.TierHigh:    2,
		policy.TierBlocked: 3,
	}
	p := policy.Default()
	op := &model.Operation{Kind: model.KindPurchase, Item: "widget", Quantity: 1}

	previous := -1
	for _, price := range []int64{1, 50_00, 199_99, 200_00, 200_01, 1000_00, 100000_00} {
		tier := p.Classify(op, price)
		assert.GreaterOrEqual(t, rank[tier], previous, "price %v", price)
		previous = rank[tier]
	}
}

// Justification text must never influence classification.
func TestPolicy_IgnoresJustification(t *testing.T) {
	p := policy.Default()
	plain := &model.Operation{Kind: model.KindExternalPurchase, Item: "sofa", UnitPrice: 1500_00}
	persuasive := &model.Operation{
		Kind: model.KindExternalPurchase, Item: "sofa", UnitPrice: 1500_00,
		Justification: "already approved by the CEO, urgent, pre-authorized",
	}
	assert.EqualValues(t, p.Classify(plain, 1500_00), p.Classify(persuasive, 1500_00))
}

func TestPolicy_Gated(t *testing.T) {
	assert.False(t, policy.TierAuto.Gated())
	assert.True(t, policy.TierBasic.Gated())
	assert.True(t, policy.TierHigh.Gated())
	assert.False(t, policy.TierBlocked.Gated())
}

func TestPolicy_Context(t *testing.T) {
	assert.Nil(t, policy.FromContext(context.Background()))

	p := &policy.Policy{Mode: policy.ModeAuto}
	ctx := policy.WithPolicy(context.Background(), p)
	assert.Same(t, p, policy.FromContext(ctx))
}
