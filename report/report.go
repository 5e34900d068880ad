/*
Package report renders approved claims as flat tabular exports.

PURPOSE:
  HR pulls approved claims as a file: CSV for payroll ingestion and
  XLSX for humans. Rows are ordered by claim date ascending and the
  header row is fixed.

QUOTING:
  CSV output goes through encoding/csv, so embedded quotes are doubled
  per RFC 4180 ("He said ""ok""") and fields containing separators are
  quoted. One convention, applied everywhere.

The generator only reads; it has no write effects.
*/
package report

import (
	"context"
	"encoding/csv"
	"io"
	"sort"
	"strconv"

	"github.com/pkg/errors"
	"github.com/warp/claims-engine/claims"
)

// Header is the fixed first row of every approved-claims export.
var Header = []string{"ClaimID", "Lecturer", "ClaimDate", "HoursWorked", "HourlyRate", "Amount", "Notes"}

const dateLayout = "2006-01-02"

// Generator projects approved claims into tabular form.
type Generator struct {
	store claims.Store
}

func NewGenerator(store claims.Store) *Generator {
	return &Generator{store: store}
}

// approvedRows loads approved claims, date ascending. The store
// already orders them, but the ordering is part of this package's
// contract so it is enforced here too.
func (g *Generator) approvedRows(ctx context.Context) ([]claims.Claim, error) {
	approved, err := g.store.ListClaimsByStatus(ctx, claims.StatusApproved)
	if err != nil {
		return nil, errors.Wrap(err, "loading approved claims")
	}
	sort.SliceStable(approved, func(i, j int) bool {
		return approved[i].ClaimDate.Before(approved[j].ClaimDate)
	})
	return approved, nil
}

// Row flattens one claim into export columns.
func Row(c *claims.Claim) []string {
	return []string{
		strconv.FormatInt(c.ID, 10),
		c.LecturerName,
		c.ClaimDate.Format(dateLayout),
		c.HoursWorked.String(),
		c.HourlyRate.String(),
		c.Amount.StringFixed(2),
		c.Notes,
	}
}

// WriteApprovedCSV streams the approved-claims report to w.
func (g *Generator) WriteApprovedCSV(ctx context.Context, w io.Writer) error {
	rows, err := g.approvedRows(ctx)
	if err != nil {
		return err
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return errors.Wrap(err, "writing header")
	}
	for i := range rows {
		if err := cw.Write(Row(&rows[i])); err != nil {
			return errors.Wrapf(err, "writing claim %d", rows[i].ID)
		}
	}
	cw.Flush()
	return errors.Wrap(cw.Error(), "flushing csv")
}
