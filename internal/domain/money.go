package domain

import "github.com/shopspring/decimal"

// Price returns the face value of a denomination as money.
func Price(value int) decimal.Decimal {
	return decimal.NewFromInt(int64(value))
}

// FormatUSD renders an amount as "$100" for whole dollars and "$12.50" otherwise.
func FormatUSD(amount decimal.Decimal) string {
	if amount.Equal(amount.Truncate(0)) {
		return "$" + amount.StringFixed(0)
	}
	return "$" + amount.StringFixed(2)
}
