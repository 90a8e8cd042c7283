package supplies

import (
	"context"
	"reflect"
	"strings"

	"github.com/viant/gatekeeper/model/types"
)

const Name = "office/supplies"

func (s *Service) Name() string {
	return Name
}

func (s *Service) Methods() types.Signatures {
	return []types.Signature{
		{
			Name:        "checkInventory",
			Description: "Looks a catalog item up by name or partial name and reports price and stock.",
			Input:       reflect.TypeOf(&CheckInventoryInput{}),
			Output:      reflect.TypeOf(&CheckInventoryOutput{}),
		},
		{
			Name:        "getBudget",
			Description: "Reports the remaining budget and the monthly limit.",
			Input:       reflect.TypeOf(&BudgetInput{}),
			Output:      reflect.TypeOf(&BudgetOutput{}),
		},
		{
			Name:        "recentPurchases",
			Description: "Lists the most recent purchases, newest first.",
			Input:       reflect.TypeOf(&RecentPurchasesInput{}),
			Output:      reflect.TypeOf(&RecentPurchasesOutput{}),
		},
		{
			Name:        "purchaseBasic",
			Description: "Buys a low-cost catalog item. Purchases over the low-risk ceiling require human approval.",
			Input:       reflect.TypeOf(&PurchaseBasicInput{}),
			Output:      reflect.TypeOf(&PurchaseOutput{}),
		},
		{
			Name:        "purchaseExpensive",
			Description: "Buys a high-cost catalog item with a business justification. Requires human approval unless the cost resolves under the low-risk ceiling.",
			Input:       reflect.TypeOf(&PurchaseExpensiveInput{}),
			Output:      reflect.TypeOf(&PurchaseOutput{}),
		},
		{
			Name:        "purchaseLuxury",
			Description: "Buys from an off-catalog vendor at a declared price. Always requires human approval.",
			Input:       reflect.TypeOf(&PurchaseLuxuryInput{}),
			Output:      reflect.TypeOf(&PurchaseOutput{}),
		},
		{
			Name:        "increaseBudget",
			Description: "Raises the remaining budget and the monthly limit. Always requires human approval.",
			Input:       reflect.TypeOf(&IncreaseBudgetInput{}),
			Output:      reflect.TypeOf(&PurchaseOutput{}),
		},
	}
}

// Method returns method by Name
func (s *Service) Method(name string) (types.Executable, error) {
	switch strings.ToLower(name) {
	case "checkinventory":
		return s.checkInventory, nil
	case "getbudget":
		return s.getBudget, nil
	case "recentpurchases":
		return s.recentPurchases, nil
	case "purchasebasic":
		return s.purchaseBasic, nil
	case "purchaseexpensive":
		return s.purchaseExpensive, nil
	case "purchaseluxury":
		return s.purchaseLuxury, nil
	case "increasebudget":
		return s.increaseBudget, nil
	default:
		return nil, types.NewMethodNotFoundError(name)
	}
}

func (s *Service) checkInventory(ctx context.Context, in, out interface{}) error {
	input, ok := in.(*CheckInventoryInput)
	if !ok {
		return types.NewInvalidInputError(in)
	}
	output, ok := out.(*CheckInventoryOutput)
	if !ok {
		return types.NewInvalidOutputError(out)
	}
	return s.CheckInventory(ctx, input, output)
}

func (s *Service) getBudget(ctx context.Context, in, out interface{}) error {
	input, ok := in.(*BudgetInput)
	if !ok {
		return types.NewInvalidInputError(in)
	}
	output, ok := out.(*BudgetOutput)
	if !ok {
		return types.NewInvalidOutputError(out)
	}
	return s.GetBudget(ctx, input, output)
}

func (s *Service) recentPurchases(ctx context.Context, in, out interface{}) error {
	input, ok := in.(*RecentPurchasesInput)
	if !ok {
		return types.NewInvalidInputError(in)
	}
	output, ok := out.(*RecentPurchasesOutput)
	if !ok {
		return types.NewInvalidOutputError(out)
	}
	return s.RecentPurchases(ctx, input, output)
}

func (s *Service) purchaseBasic(ctx context.Context, in, out interface{}) error {
	input, ok := in.(*PurchaseBasicInput)
	if !ok {
		return types.NewInvalidInputError(in)
	}
	output, ok := out.(*PurchaseOutput)
	if !ok {
		return types.NewInvalidOutputError(out)
	}
	return s.PurchaseBasic(ctx, input, output)
}

func (s *Service) purchaseExpensive(ctx context.Context, in, out interface{}) error {
	input, ok := in.(*PurchaseExpensiveInput)
	if !ok {
		return types.NewInvalidInputError(in)
	}
	output, ok := out.(*PurchaseOutput)
	if !ok {
		return types.NewInvalidOutputError(out)
	}
	return s.PurchaseExpensive(ctx, input, output)
}

func (s *Service) purchaseLuxury(ctx context.Context, in, out interface{}) error {
	input, ok := in.(*PurchaseLuxuryInput)
	if !ok {
		return types.NewInvalidInputError(in)
	}
	output, ok := out.(*PurchaseOutput)
	if !ok {
		return types.NewInvalidOutputError(out)
	}
	return s.PurchaseLuxury(ctx, input, output)
}

func (s *Service) increaseBudget(ctx context.Context, in, out interface{}) error {
	input, ok := in.(*IncreaseBudgetInput)
	if !ok {
		return types.NewInvalidInputError(in)
	}
	output, ok := out.(*PurchaseOutput)
	if !ok {
		return types.NewInvalidOutputError(out)
	}
	return s.IncreaseBudget(ctx, input, output)
}
