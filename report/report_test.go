package report_test

import (
	"bytes"
	"context"
	"encoding/csv"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/warp/claims-engine/claims"
	memstore "github.com/warp/claims-engine/claims/store"
	"github.com/warp/claims-engine/report"
)

// =============================================================================
// TEST SETUP
// =============================================================================

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func seedClaim(t *testing.T, st claims.Store, lecturerID int64, date time.Time, status claims.Status, hours, rate, amount, notes string) {
	t.Helper()
	c := &claims.Claim{
		LecturerID:  lecturerID,
		ClaimDate:   date,
		HoursWorked: dec(hours),
		HourlyRate:  dec(rate),
		Amount:      dec(amount),
		Notes:       notes,
		Status:      status,
	}
	require.NoError(t, st.CreateClaim(context.Background(), c))
}

func seededStore(t *testing.T) (claims.Store, int64) {
	t.Helper()
	st := memstore.NewMemory()
	l := &claims.Lecturer{FullName: "Alice Morgan", Email: "alice@example.edu"}
	require.NoError(t, st.CreateLecturer(context.Background(), l))
	return st, l.ID
}

func day(d int) time.Time {
	return time.Date(2026, time.June, d, 0, 0, 0, 0, time.UTC)
}

// =============================================================================
// CSV
// =============================================================================

func TestWriteApprovedCSV_HeaderAndOrdering(t *testing.T) {
	// GIVEN: Approved claims out of date order, plus a pending one
	// THEN: Only approved rows, date ascending, under the fixed header

	st, lecturerID := seededStore(t)
	seedClaim(t, st, lecturerID, day(20), claims.StatusApproved, "10", "50", "500", "")
	seedClaim(t, st, lecturerID, day(3), claims.StatusApproved, "4", "60", "240", "")
	seedClaim(t, st, lecturerID, day(10), claims.StatusPending, "25", "50", "1250", "")

	var buf bytes.Buffer
	require.NoError(t, report.NewGenerator(st).WriteApprovedCSV(context.Background(), &buf))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)

	assert.Equal(t, report.Header, records[0])
	assert.Equal(t, "2026-06-03", records[1][2])
	assert.Equal(t, "2026-06-20", records[2][2])
	assert.Equal(t, "240.00", records[1][5])
	assert.Equal(t, "Alice Morgan", records[1][1])
}

func TestWriteApprovedCSV_QuotesAreDoubled(t *testing.T) {
	st, lecturerID := seededStore(t)
	seedClaim(t, st, lecturerID, day(1), claims.StatusApproved, "2", "30", "60",
		`He said "ok", twice`)

	var buf bytes.Buffer
	require.NoError(t, report.NewGenerator(st).WriteApprovedCSV(context.Background(), &buf))

	// Raw bytes carry the RFC 4180 escaping.
	assert.Contains(t, buf.String(), `"He said ""ok"", twice"`)

	// And a conforming reader recovers the original.
	records, err := csv.NewReader(strings.NewReader(buf.String())).ReadAll()
	require.NoError(t, err)
	assert.Equal(t, `He said "ok", twice`, records[1][6])
}

func TestWriteApprovedCSV_EmptyReportIsHeaderOnly(t *testing.T) {
	st, _ := seededStore(t)

	var buf bytes.Buffer
	require.NoError(t, report.NewGenerator(st).WriteApprovedCSV(context.Background(), &buf))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, report.Header, records[0])
}

// =============================================================================
// XLSX
// =============================================================================

func TestWriteApprovedXLSX_SheetContents(t *testing.T) {
	st, lecturerID := seededStore(t)
	seedClaim(t, st, lecturerID, day(7), claims.StatusApproved, "10", "45.50", "455", "Tutorials")

	var buf bytes.Buffer
	require.NoError(t, report.NewGenerator(st).WriteApprovedXLSX(context.Background(), &buf))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Approved Claims")
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, report.Header, rows[0])
	assert.Equal(t, "Alice Morgan", rows[1][1])
	assert.Equal(t, "2026-06-07", rows[1][2])
	assert.Equal(t, "Tutorials", rows[1][6])
}
