package ledger

import (
	"fmt"
	"math"
)

// All monetary amounts are kept in cents so that arithmetic stays exact; the
// outer API layers convert from/to dollar floats at the boundary.

// Item represents a purchasable catalog good.
type Item struct {
	Name      string `json:"name"`
	UnitPrice int64  `json:"unitPrice"` // cents
	Stock     int    `json:"stock"`
}

// Budget represents the available spend.
type Budget struct {
	Remaining    int64 `json:"remaining"`    // cents
	MonthlyLimit int64 `json:"monthlyLimit"` // cents
}

// Receipt describes a committed ledger mutation.
type Receipt struct {
	Item      string `json:"item,omitempty"`
	Vendor    string `json:"vendor,omitempty"`
	Quantity  int    `json:"quantity,omitempty"`
	UnitPrice int64  `json:"unitPrice,omitempty"`
	Total     int64  `json:"total"`
	Remaining int64  `json:"remaining"`
}

// Cents converts a dollar amount to cents, rounding to the nearest cent.
func Cents(dollars float64) int64 {
	return int64(math.Round(dollars * 100))
}

// Dollars converts cents back to a dollar float.
func Dollars(cents int64) float64 {
	return float64(cents) / 100
}

// FormatAmount renders cents as a dollar string, e.g. 649.50 -> "$649.50".
func FormatAmount(cents int64) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return fmt.Sprintf("%s$%d.%02d", sign, cents/100, cents%100)
}
