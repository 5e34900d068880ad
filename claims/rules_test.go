package claims_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/warp/claims-engine/claims"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

// =============================================================================
// HOURS VALIDATION
// =============================================================================

func TestValidateHours_Positive_Passes(t *testing.T) {
	assert.NoError(t, claims.ValidateHours(dec("0.1")))
	assert.NoError(t, claims.ValidateHours(dec("40")))
}

func TestValidateHours_ZeroOrNegative_Rejected(t *testing.T) {
	for _, hours := range []string{"0", "-1", "-0.25"} {
		err := claims.ValidateHours(dec(hours))
		assert.ErrorIs(t, err, claims.ErrInvalidHours, "hours=%s", hours)

		var vErr *claims.ValidationError
		assert.ErrorAs(t, err, &vErr)
		assert.Equal(t, "hours_worked", vErr.Field)
	}
}

// =============================================================================
// RATE VALIDATION
// =============================================================================

func TestValidateRate_ZeroAllowed(t *testing.T) {
	// A zero rate is unusual but legal (e.g. volunteer hours on record).
	assert.NoError(t, claims.ValidateRate(decimal.Zero))
	assert.NoError(t, claims.ValidateRate(dec("55.50")))
}

func TestValidateRate_Negative_Rejected(t *testing.T) {
	err := claims.ValidateRate(dec("-0.01"))
	assert.ErrorIs(t, err, claims.ErrInvalidRate)

	var vErr *claims.ValidationError
	assert.ErrorAs(t, err, &vErr)
	assert.Equal(t, "hourly_rate", vErr.Field)
}

// =============================================================================
// COMBINED VALIDATION
// =============================================================================

func TestValidate_HoursCheckedBeforeRate(t *testing.T) {
	// GIVEN: A claim failing both rules
	// THEN: The hours error wins
	c := &claims.Claim{HoursWorked: dec("-1"), HourlyRate: dec("-5")}
	assert.ErrorIs(t, claims.Validate(c), claims.ErrInvalidHours)
}

func TestValidate_ValidClaim_Passes(t *testing.T) {
	c := &claims.Claim{HoursWorked: dec("7.5"), HourlyRate: dec("42")}
	assert.NoError(t, claims.Validate(c))
}
