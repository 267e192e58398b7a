// Package pricing computes checkout totals from cart contents. It is
// pure: totals are derived on every cart tick and never stored as
// independent state.
package pricing

import (
	"fmt"

	"github.com/MalligaSaravanan93/kioskapp/internal/domain"
)

// Percentage rates applied to the subtotal.
const (
	shippingPct = 10
	taxPct      = 5
)

type Totals struct {
	SubTotal float64 `json:"subTotal"`
	Shipping float64 `json:"shipping"`
	Tax      float64 `json:"tax"`
	Total    float64 `json:"total"`
}

// Calculate derives totals from the given lines. Negative quantities or
// prices contribute nothing, matching the invariant that a line can
// never drive the subtotal below zero.
func Calculate(lines []domain.CartLine) Totals {
	var t Totals
	for _, line := range lines {
		if line.Quantity <= 0 || line.Price <= 0 {
			continue
		}
		t.SubTotal += float64(line.Quantity) * line.Price
	}
	t.Shipping = t.SubTotal / 100 * shippingPct
	t.Tax = t.SubTotal / 100 * taxPct
	t.Total = t.SubTotal + t.Shipping + t.Tax
	return t
}

// FormatAmount renders an amount with two decimals for display. Stored
// totals are never rounded.
func FormatAmount(v float64) string {
	return fmt.Sprintf("%.2f", v)
}
