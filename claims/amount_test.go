package claims_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/claims-engine/claims"
)

func TestComputeAmount_SimpleProduct(t *testing.T) {
	amount, err := claims.ComputeAmount(dec("10"), dec("50"))
	require.NoError(t, err)
	assert.True(t, amount.Equal(dec("500")), "got %s", amount)
}

func TestComputeAmount_DecimalExactness(t *testing.T) {
	// 0.1 * 3 is exactly 0.30, not a float64 artifact.
	amount, err := claims.ComputeAmount(dec("0.1"), dec("3"))
	require.NoError(t, err)
	assert.Equal(t, "0.30", amount.StringFixed(2))
}

func TestComputeAmount_RoundsHalfUpToCents(t *testing.T) {
	// 0.5 * 2.01 = 1.005 -> 1.01
	amount, err := claims.ComputeAmount(dec("0.5"), dec("2.01"))
	require.NoError(t, err)
	assert.Equal(t, "1.01", amount.StringFixed(2))

	// 1.5 * 2.01 = 3.015 -> 3.02
	amount, err = claims.ComputeAmount(dec("1.5"), dec("2.01"))
	require.NoError(t, err)
	assert.Equal(t, "3.02", amount.StringFixed(2))
}

func TestComputeAmount_RoundsDownBelowHalf(t *testing.T) {
	// 1.2 * 2.12 = 2.544 -> 2.54
	amount, err := claims.ComputeAmount(dec("1.2"), dec("2.12"))
	require.NoError(t, err)
	assert.Equal(t, "2.54", amount.StringFixed(2))
}

func TestComputeAmount_ZeroRate(t *testing.T) {
	amount, err := claims.ComputeAmount(dec("8"), decimal.Zero)
	require.NoError(t, err)
	assert.True(t, amount.IsZero())
}

func TestComputeAmount_Overflow(t *testing.T) {
	// 10^10 * 10^10 = 10^20, far past any plausible payment.
	huge := decimal.New(1, 10)
	_, err := claims.ComputeAmount(huge, huge)
	assert.ErrorIs(t, err, claims.ErrAmountOverflow)
}

func TestComputeAmount_AtOverflowBoundary(t *testing.T) {
	// Exactly 10^15 is still accepted; one order above is not.
	amount, err := claims.ComputeAmount(decimal.New(1, 7), decimal.New(1, 8))
	require.NoError(t, err)
	assert.True(t, amount.Equal(decimal.New(1, 15)))

	_, err = claims.ComputeAmount(decimal.New(1, 8), decimal.New(1, 8))
	assert.ErrorIs(t, err, claims.ErrAmountOverflow)
}
