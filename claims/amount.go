// amount.go - Derives the monetary amount of a claim.
package claims

import "github.com/shopspring/decimal"

// maxAmount is the sanity bound for a computed amount. decimal.Decimal
// has no hard numeric ceiling, so anything past this is treated as an
// overflow rather than a plausible payment.
var maxAmount = decimal.New(1, 15) // 10^15

// ComputeAmount returns round(hours * rate, 2).
//
// Rounding convention: decimal.Round rounds half away from zero, which
// for the non-negative inputs this system accepts is half-up. The
// computation is exact up to the rounding step; 0.1 * 3 is 0.30, not
// 0.30000000000000004.
func ComputeAmount(hoursWorked, hourlyRate decimal.Decimal) (decimal.Decimal, error) {
	product := hoursWorked.Mul(hourlyRate)
	if product.Abs().GreaterThan(maxAmount) {
		return decimal.Zero, ErrAmountOverflow
	}
	return product.Round(2), nil
}
