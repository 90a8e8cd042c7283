package supplies

// CheckInventoryOutput reports catalog availability.
type CheckInventoryOutput struct {
	Found     bool   `json:"found"`
	Item      string `json:"item,omitempty"`
	UnitPrice string `json:"unitPrice,omitempty"`
	Stock     int    `json:"stock,omitempty"`
	Message   string `json:"message"`
}

// BudgetOutput reports the current budget.
type BudgetOutput struct {
	Remaining    string `json:"remaining"`
	MonthlyLimit string `json:"monthlyLimit"`
	Message      string `json:"message"`
}

// HistoryEntry is one recorded purchase.
type HistoryEntry struct {
	Item          string `json:"item,omitempty"`
	Vendor        string `json:"vendor,omitempty"`
	Quantity      int    `json:"quantity"`
	Total         string `json:"total"`
	Justification string `json:"justification,omitempty"`
	At            string `json:"at"`
}

// RecentPurchasesOutput lists recent purchases, newest first.
type RecentPurchasesOutput struct {
	Entries []HistoryEntry `json:"entries"`
	Message string         `json:"message"`
}

// PurchaseOutput is the outcome of a purchase or budget operation.  Status
// mirrors the transaction state; a rejection carries the reason.
type PurchaseOutput struct {
	TransactionID string `json:"transactionId"`
	Status        string `json:"status"`
	Tier          string `json:"tier,omitempty"`
	RejectReason  string `json:"rejectReason,omitempty"`
	DecidedBy     string `json:"decidedBy,omitempty"`
	Total         string `json:"total,omitempty"`
	Remaining     string `json:"remaining,omitempty"`
	Message       string `json:"message"`
	// Redirected is set when an expensive-purchase request resolved under
	// the low-risk ceiling and was handled as a basic purchase instead.
	Redirected bool `json:"redirected,omitempty"`
}
