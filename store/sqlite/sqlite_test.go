package sqlite_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/claims-engine/claims"
	"github.com/warp/claims-engine/store/sqlite"
)

// =============================================================================
// TEST SETUP
// =============================================================================

func newTestStore(t *testing.T) *sqlite.Store {
	t.Helper()
	store, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func seedLecturer(t *testing.T, store *sqlite.Store, name string) int64 {
	t.Helper()
	l := &claims.Lecturer{FullName: name, Email: name + "@example.edu"}
	require.NoError(t, store.CreateLecturer(context.Background(), l))
	return l.ID
}

func seedClaim(t *testing.T, store *sqlite.Store, lecturerID int64, date time.Time, status claims.Status) *claims.Claim {
	t.Helper()
	c := &claims.Claim{
		LecturerID:  lecturerID,
		ClaimDate:   date,
		HoursWorked: dec("8"),
		HourlyRate:  dec("50"),
		Amount:      dec("400"),
		Status:      status,
	}
	require.NoError(t, store.CreateClaim(context.Background(), c))
	return c
}

// =============================================================================
// CLAIM ROUND TRIP
// =============================================================================

func TestCreateAndGetClaim(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	lecturerID := seedLecturer(t, store, "alice")

	date := time.Date(2026, time.March, 10, 0, 0, 0, 0, time.UTC)
	c := &claims.Claim{
		LecturerID:  lecturerID,
		ClaimDate:   date,
		HoursWorked: dec("7.5"),
		HourlyRate:  dec("42.10"),
		Amount:      dec("315.75"),
		Notes:       "Week 10",
		Status:      claims.StatusPending,
	}
	require.NoError(t, store.CreateClaim(ctx, c))
	require.NotZero(t, c.ID)

	got, err := store.GetClaim(ctx, c.ID)
	require.NoError(t, err)

	assert.Equal(t, lecturerID, got.LecturerID)
	assert.Equal(t, "alice", got.LecturerName)
	assert.True(t, got.ClaimDate.Equal(date))
	assert.True(t, got.HoursWorked.Equal(dec("7.5")))
	assert.True(t, got.HourlyRate.Equal(dec("42.10")))
	assert.True(t, got.Amount.Equal(dec("315.75")))
	assert.Equal(t, "Week 10", got.Notes)
	assert.Equal(t, claims.StatusPending, got.Status)
	assert.Empty(t, got.Documents)
}

func TestGetClaim_NotFound(t *testing.T) {
	store := newTestStore(t)
	_, err := store.GetClaim(context.Background(), 999)
	assert.ErrorIs(t, err, claims.ErrClaimNotFound)
}

// =============================================================================
// GUARDED TRANSITIONS
// =============================================================================

func TestUpdateStatus_PendingToApproved(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	c := seedClaim(t, store, seedLecturer(t, store, "ben"), time.Now().UTC(), claims.StatusPending)

	require.NoError(t, store.UpdateStatus(ctx, c.ID, claims.StatusPending, claims.StatusApproved, nil))

	got, err := store.GetClaim(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, claims.StatusApproved, got.Status)
}

func TestUpdateStatus_TerminalStateRefused(t *testing.T) {
	// GIVEN: An approved claim
	// WHEN: A second transition from pending is attempted
	// THEN: TransitionError carrying the actual current state

	store := newTestStore(t)
	ctx := context.Background()
	c := seedClaim(t, store, seedLecturer(t, store, "carol"), time.Now().UTC(), claims.StatusPending)

	require.NoError(t, store.UpdateStatus(ctx, c.ID, claims.StatusPending, claims.StatusApproved, nil))

	err := store.UpdateStatus(ctx, c.ID, claims.StatusPending, claims.StatusRejected, nil)
	assert.ErrorIs(t, err, claims.ErrInvalidTransition)

	var tErr *claims.TransitionError
	require.ErrorAs(t, err, &tErr)
	assert.Equal(t, c.ID, tErr.ClaimID)
	assert.Equal(t, claims.StatusApproved, tErr.From)
	assert.Equal(t, claims.StatusRejected, tErr.To)
}

func TestUpdateStatus_MissingClaim(t *testing.T) {
	store := newTestStore(t)
	err := store.UpdateStatus(context.Background(), 404, claims.StatusPending, claims.StatusApproved, nil)
	assert.ErrorIs(t, err, claims.ErrClaimNotFound)
}

func TestUpdateStatus_ReplacesNotesWhenGiven(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	c := seedClaim(t, store, seedLecturer(t, store, "dina"), time.Now().UTC(), claims.StatusPending)

	notes := "Rejection reason: insufficient evidence"
	require.NoError(t, store.UpdateStatus(ctx, c.ID, claims.StatusPending, claims.StatusRejected, &notes))

	got, err := store.GetClaim(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, notes, got.Notes)
}

// =============================================================================
// LISTING AND ORDERING
// =============================================================================

func TestListClaimsByLecturer_NewestFirst(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	lecturerID := seedLecturer(t, store, "erin")
	other := seedLecturer(t, store, "frank")

	day := func(d int) time.Time {
		return time.Date(2026, time.April, d, 0, 0, 0, 0, time.UTC)
	}
	seedClaim(t, store, lecturerID, day(5), claims.StatusPending)
	seedClaim(t, store, lecturerID, day(20), claims.StatusApproved)
	seedClaim(t, store, lecturerID, day(12), claims.StatusPending)
	seedClaim(t, store, other, day(25), claims.StatusPending)

	list, err := store.ListClaimsByLecturer(ctx, lecturerID)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, 20, list[0].ClaimDate.Day())
	assert.Equal(t, 12, list[1].ClaimDate.Day())
	assert.Equal(t, 5, list[2].ClaimDate.Day())
}

func TestListClaimsByStatus_OldestFirst(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	lecturerID := seedLecturer(t, store, "gina")

	day := func(d int) time.Time {
		return time.Date(2026, time.May, d, 0, 0, 0, 0, time.UTC)
	}
	seedClaim(t, store, lecturerID, day(18), claims.StatusPending)
	seedClaim(t, store, lecturerID, day(2), claims.StatusPending)
	seedClaim(t, store, lecturerID, day(9), claims.StatusApproved)

	pending, err := store.ListClaimsByStatus(ctx, claims.StatusPending)
	require.NoError(t, err)
	require.Len(t, pending, 2)
	assert.Equal(t, 2, pending[0].ClaimDate.Day())
	assert.Equal(t, 18, pending[1].ClaimDate.Day())
}

// =============================================================================
// DOCUMENTS
// =============================================================================

func TestAddAndGetDocument(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	c := seedClaim(t, store, seedLecturer(t, store, "hana"), time.Now().UTC(), claims.StatusPending)

	d := &claims.SupportingDocument{
		ClaimID:  c.ID,
		FileName: "timesheet.pdf",
		FilePath: "uploads/abc123.pdf",
	}
	require.NoError(t, store.AddDocument(ctx, d))
	require.NotZero(t, d.ID)

	got, err := store.GetDocument(ctx, d.ID)
	require.NoError(t, err)
	assert.Equal(t, "timesheet.pdf", got.FileName)
	assert.Equal(t, "uploads/abc123.pdf", got.FilePath)

	// Documents ride along on claim reads.
	claimWithDocs, err := store.GetClaim(ctx, c.ID)
	require.NoError(t, err)
	require.Len(t, claimWithDocs.Documents, 1)
	assert.Equal(t, d.ID, claimWithDocs.Documents[0].ID)
}

func TestGetDocument_NotFound(t *testing.T) {
	store := newTestStore(t)
	_, err := store.GetDocument(context.Background(), 777)
	assert.ErrorIs(t, err, claims.ErrDocumentNotFound)
}

// =============================================================================
// TRANSACTIONS
// =============================================================================

func TestWithTx_RollbackOnError(t *testing.T) {
	// GIVEN: A transaction creating a claim and a document
	// WHEN: The function returns an error
	// THEN: Neither row survives

	store := newTestStore(t)
	ctx := context.Background()
	lecturerID := seedLecturer(t, store, "ivan")

	var claimID int64
	err := store.WithTx(ctx, func(s claims.Store) error {
		c := &claims.Claim{
			LecturerID:  lecturerID,
			ClaimDate:   time.Now().UTC(),
			HoursWorked: dec("5"),
			HourlyRate:  dec("50"),
			Amount:      dec("250"),
			Status:      claims.StatusPending,
		}
		if err := s.CreateClaim(ctx, c); err != nil {
			return err
		}
		claimID = c.ID
		return assert.AnError
	})
	require.ErrorIs(t, err, assert.AnError)

	_, err = store.GetClaim(ctx, claimID)
	assert.ErrorIs(t, err, claims.ErrClaimNotFound)
}

func TestWithTx_CommitsOnSuccess(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	lecturerID := seedLecturer(t, store, "june")

	var claimID int64
	err := store.WithTx(ctx, func(s claims.Store) error {
		c := &claims.Claim{
			LecturerID:  lecturerID,
			ClaimDate:   time.Now().UTC(),
			HoursWorked: dec("5"),
			HourlyRate:  dec("50"),
			Amount:      dec("250"),
			Status:      claims.StatusPending,
		}
		if err := s.CreateClaim(ctx, c); err != nil {
			return err
		}
		claimID = c.ID
		return s.AddDocument(ctx, &claims.SupportingDocument{
			ClaimID:  c.ID,
			FileName: "invoice.pdf",
			FilePath: "uploads/xyz.pdf",
		})
	})
	require.NoError(t, err)

	got, err := store.GetClaim(ctx, claimID)
	require.NoError(t, err)
	assert.Len(t, got.Documents, 1)
}

// =============================================================================
// PEOPLE
// =============================================================================

func TestLecturerRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	l := &claims.Lecturer{FullName: "Kira Ade", Email: "kira@example.edu"}
	require.NoError(t, store.CreateLecturer(ctx, l))

	got, err := store.GetLecturer(ctx, l.ID)
	require.NoError(t, err)
	assert.Equal(t, "Kira Ade", got.FullName)

	_, err = store.GetLecturer(ctx, l.ID+100)
	assert.ErrorIs(t, err, claims.ErrLecturerNotFound)

	all, err := store.ListLecturers(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestApproverRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	a := &claims.Approver{FullName: "Liam Poe", Role: "Coordinator", Email: "liam@example.edu"}
	require.NoError(t, store.CreateApprover(ctx, a))
	require.NotZero(t, a.ID)

	all, err := store.ListApprovers(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "Coordinator", all[0].Role)
}
