package domain

import (
	"github.com/shopspring/decimal"
)

// LineTotal is unit price times quantity, computed in decimal.
func LineTotal(unit float64, qty int) decimal.Decimal {
	return decimal.NewFromFloat(unit).Mul(decimal.NewFromInt(int64(qty)))
}

// OrderTotal sums the snapshot lines of an order.
func OrderTotal(items []OrderItem) decimal.Decimal {
	total := decimal.Zero
	for _, it := range items {
		total = total.Add(LineTotal(it.UnitPrice, it.Quantity))
	}
	return total
}

// Rupees renders an amount with the rupee sign, without paise when whole.
func Rupees(d decimal.Decimal) string {
	if d.Equal(d.Truncate(0)) {
		return "₹" + d.StringFixed(0)
	}
	return "₹" + d.StringFixed(2)
}
