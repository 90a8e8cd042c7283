package model_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/viant/gatekeeper/model"
)

func TestOperation_Validate(t *testing.T) {
	type testCase struct {
		name      string
		op        model.Operation
		expectErr bool
	}

	tests := []testCase{{
		name: "valid purchase",
		op:   model.Operation{Kind: model.KindPurchase, Item: "pens", Quantity: 10},
	}, {
		name:      "purchase without item",
		op:        model.Operation{Kind: model.KindPurchase, Quantity: 10},
		expectErr: true,
	}, {
		name:      "purchase with zero quantity",
		op:        model.Operation{Kind: model.KindPurchase, Item: "pens"},
		expectErr: true,
	}, {
		name:      "purchase with negative price",
		op:        model.Operation{Kind: model.KindPurchase, Item: "pens", Quantity: 1, UnitPrice: -1},
		expectErr: true,
	}, {
		name: "valid external purchase",
		op:   model.Operation{Kind: model.KindExternalPurchase, Item: "sofa", UnitPrice: 1500_00, Vendor: "acme"},
	}, {
		name:      "external purchase without price",
		op:        model.Operation{Kind: model.KindExternalPurchase, Item: "sofa"},
		expectErr: true,
	}, {
		name: "valid budget increase",
		op:   model.Operation{Kind: model.KindBudgetIncrease, Amount: 500_00},
	}, {
		name:      "budget increase without amount",
		op:        model.Operation{Kind: model.KindBudgetIncrease},
		expectErr: true,
	}, {
		name:      "unknown kind",
		op:        model.Operation{Kind: "teleport"},
		expectErr: true,
	}}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.op.Validate()
			if tc.expectErr {
				assert.ErrorIs(t, err, model.ErrInvalidOperation)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestOperation_Cost(t *testing.T) {
	purchase := model.Operation{Kind: model.KindPurchase, Item: "pens", Quantity: 10}
	assert.EqualValues(t, 85_00, purchase.Cost(8_50))

	external := model.Operation{Kind: model.KindExternalPurchase, UnitPrice: 1500_00}
	assert.EqualValues(t, 1500_00, external.Cost(0))

	increase := model.Operation{Kind: model.KindBudgetIncrease, Amount: 500_00}
	assert.EqualValues(t, 500_00, increase.Cost(0))
}
