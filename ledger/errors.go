package ledger

import "errors"

// Sentinel errors surfaced by ledger operations.  Callers map them onto
// structured transaction outcomes via errors.Is.

var (
	// ErrNotFound is returned when no catalog item matches the requested name.
	ErrNotFound = errors.New("ledger: item not found")

	// ErrOutOfStock is returned when the requested quantity exceeds the
	// available stock.
	ErrOutOfStock = errors.New("ledger: out of stock")

	// ErrInsufficientFunds is returned when the total cost exceeds the
	// remaining budget at commit time.
	ErrInsufficientFunds = errors.New("ledger: insufficient funds")

	// ErrInvalidAmount indicates a non-positive quantity, price or amount.
	ErrInvalidAmount = errors.New("ledger: invalid amount")

	// ErrLimitExceeded is returned when a budget increase would push the
	// monthly limit past the configured hard cap.
	ErrLimitExceeded = errors.New("ledger: budget limit cap exceeded")
)
