package supplies

// CheckInventoryInput looks a catalog item up by (partial) name.
type CheckInventoryInput struct {
	Item string `json:"item" description:"item name or partial name to look up"`
}

// BudgetInput has no parameters.
type BudgetInput struct{}

// RecentPurchasesInput bounds how many history entries come back.
type RecentPurchasesInput struct {
	Limit int `json:"limit,omitempty" description:"maximum number of entries, newest first"`
}

// PurchaseBasicInput buys a low-cost catalog item.
type PurchaseBasicInput struct {
	Item      string `json:"item" description:"catalog item to buy"`
	Quantity  int    `json:"quantity" description:"number of units"`
	Requester string `json:"requester,omitempty"`
}

// PurchaseExpensiveInput buys a high-cost catalog item; the purchase is
// gated on human approval.
type PurchaseExpensiveInput struct {
	Item          string `json:"item" description:"catalog item to buy"`
	Quantity      int    `json:"quantity,omitempty" description:"number of units, defaults to 1"`
	Justification string `json:"justification" description:"business justification, recorded for audit"`
	Requester     string `json:"requester,omitempty"`
}

// PurchaseLuxuryInput buys from an off-catalog vendor at a declared price;
// always gated on human approval.
type PurchaseLuxuryInput struct {
	Item          string  `json:"item" description:"item to buy"`
	Price         float64 `json:"price" description:"total price in dollars"`
	Vendor        string  `json:"vendor" description:"external vendor name"`
	Justification string  `json:"justification" description:"business justification, recorded for audit"`
	Requester     string  `json:"requester,omitempty"`
}

// IncreaseBudgetInput raises the remaining budget and the monthly limit;
// always gated on human approval.
type IncreaseBudgetInput struct {
	Amount    float64 `json:"amount" description:"increase in dollars"`
	Reason    string  `json:"reason" description:"why the increase is needed"`
	Requester string  `json:"requester,omitempty"`
}
