package earnings

import "github.com/shopspring/decimal"

// ComputeCommission applies a percentage rate to an amount in minor units,
// rounding half away from zero to whole minor units.
func ComputeCommission(amountCents int64, percentage decimal.Decimal) int64 {
	return decimal.NewFromInt(amountCents).
		Mul(percentage).
		Div(decimal.NewFromInt(100)).
		Round(0).
		IntPart()
}
