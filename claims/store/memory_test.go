package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/claims-engine/claims"
	memstore "github.com/warp/claims-engine/claims/store"
)

func pendingClaim(lecturerID int64) *claims.Claim {
	return &claims.Claim{
		LecturerID:  lecturerID,
		ClaimDate:   time.Now().UTC(),
		HoursWorked: decimal.NewFromInt(8),
		HourlyRate:  decimal.NewFromInt(50),
		Amount:      decimal.NewFromInt(400),
		Status:      claims.StatusPending,
	}
}

func TestMemory_WithTx_RollbackRestoresState(t *testing.T) {
	st := memstore.NewMemory()
	ctx := context.Background()

	var claimID int64
	err := st.WithTx(ctx, func(s claims.Store) error {
		c := pendingClaim(1)
		if err := s.CreateClaim(ctx, c); err != nil {
			return err
		}
		claimID = c.ID
		return assert.AnError
	})
	require.ErrorIs(t, err, assert.AnError)

	_, err = st.GetClaim(ctx, claimID)
	assert.ErrorIs(t, err, claims.ErrClaimNotFound)
}

func TestMemory_WithTx_CommitKeepsState(t *testing.T) {
	st := memstore.NewMemory()
	ctx := context.Background()

	var claimID int64
	require.NoError(t, st.WithTx(ctx, func(s claims.Store) error {
		c := pendingClaim(1)
		if err := s.CreateClaim(ctx, c); err != nil {
			return err
		}
		claimID = c.ID
		return nil
	}))

	got, err := st.GetClaim(ctx, claimID)
	require.NoError(t, err)
	assert.Equal(t, claims.StatusPending, got.Status)
}

func TestMemory_UpdateStatus_Guarded(t *testing.T) {
	st := memstore.NewMemory()
	ctx := context.Background()

	c := pendingClaim(1)
	require.NoError(t, st.CreateClaim(ctx, c))
	require.NoError(t, st.UpdateStatus(ctx, c.ID, claims.StatusPending, claims.StatusApproved, nil))

	err := st.UpdateStatus(ctx, c.ID, claims.StatusPending, claims.StatusRejected, nil)
	assert.ErrorIs(t, err, claims.ErrInvalidTransition)

	err = st.UpdateStatus(ctx, 999, claims.StatusPending, claims.StatusApproved, nil)
	assert.ErrorIs(t, err, claims.ErrClaimNotFound)
}
