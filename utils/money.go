package utils

import "github.com/shopspring/decimal"

// RoundAmount rounds a monetary amount to the currency's digit count.
func RoundAmount(amount decimal.Decimal, digits int) decimal.Decimal {
	return amount.Round(int32(digits))
}
