// rules.go - Validation predicates over a claim's submitted fields.
//
// These are pure functions: no side effects, no store access. The data
// model carries advisory input ranges (0.1-1000 hours, 0-100000 rate)
// but this layer only enforces positivity and non-negativity.
package claims

import "github.com/shopspring/decimal"

// ValidateHours fails with ErrInvalidHours when hours <= 0.
func ValidateHours(hours decimal.Decimal) error {
	if !hours.IsPositive() {
		return &ValidationError{Field: "hours_worked", Value: hours, Rule: ErrInvalidHours}
	}
	return nil
}

// ValidateRate fails with ErrInvalidRate when rate < 0.
func ValidateRate(rate decimal.Decimal) error {
	if rate.IsNegative() {
		return &ValidationError{Field: "hourly_rate", Value: rate, Rule: ErrInvalidRate}
	}
	return nil
}

// Validate checks a claim's submitted fields. Hours are checked before
// rate, so a claim failing both reports ErrInvalidHours.
func Validate(c *Claim) error {
	if err := ValidateHours(c.HoursWorked); err != nil {
		return err
	}
	return ValidateRate(c.HourlyRate)
}
