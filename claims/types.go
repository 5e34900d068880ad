/*
Package claims contains the claim lifecycle engine.

PURPOSE:
  This package holds the domain model and decision logic for lecturer
  payment claims: validation of submitted hours and rates, derivation
  of the monetary amount, the auto-approval policy, and the state
  machine that moves a claim from Pending to Approved or Rejected.

KEY CONCEPTS IN THIS FILE (types.go):
  - Claim: A lecturer's request for payment, with a derived Amount
  - SupportingDocument: An uploaded file evidencing a claim
  - Lecturer / Approver: People referenced by claims
  - Status: Pending | Approved | Rejected

DESIGN PRINCIPLES:
  1. Precision: Uses decimal.Decimal for hours, rates, and money
  2. Derived amount: Amount is always round(hours*rate, 2) - never
     user-supplied and never stored stale alongside new hours/rate
  3. One-directional transitions: nothing moves out of Approved or
     Rejected through this package's operations

SEE ALSO:
  - rules.go:     Validation predicates
  - amount.go:    Amount calculator
  - policy.go:    Auto-approval policy
  - lifecycle.go: Submit/Approve/Reject/AutoVerifyAll orchestration
  - store.go:     Persistence interfaces
*/
package claims

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// STATUS - Claim review state
// =============================================================================

type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

// ParseStatus converts a stored string into a Status.
func ParseStatus(s string) (Status, bool) {
	switch Status(strings.ToLower(s)) {
	case StatusPending:
		return StatusPending, true
	case StatusApproved:
		return StatusApproved, true
	case StatusRejected:
		return StatusRejected, true
	}
	return "", false
}

// Terminal reports whether no further transitions are allowed.
func (s Status) Terminal() bool {
	return s == StatusApproved || s == StatusRejected
}

// =============================================================================
// CLAIM
// =============================================================================

// Claim is a lecturer's request for payment for worked hours.
// Amount is always the rounded product of HoursWorked and HourlyRate at
// the time of last computation; callers never set it directly.
type Claim struct {
	ID         int64
	LecturerID int64

	// LecturerName is a read-side convenience filled in by store queries
	// that join the lecturers table. Not persisted on the claim row.
	LecturerName string

	ClaimDate   time.Time
	HoursWorked decimal.Decimal
	HourlyRate  decimal.Decimal
	Amount      decimal.Decimal
	Notes       string
	Status      Status

	Documents []SupportingDocument

	CreatedAt time.Time
	UpdatedAt time.Time
}

// AppendNote appends a line to the claim's free-text notes.
func (c *Claim) AppendNote(line string) {
	if line == "" {
		return
	}
	if c.Notes == "" {
		c.Notes = line
		return
	}
	c.Notes = c.Notes + "\n" + line
}

// =============================================================================
// SUPPORTING DOCUMENT
// =============================================================================

// SupportingDocument is an uploaded file attached to a claim at
// submission time. Documents are never mutated; they are deleted only
// when the parent claim is deleted (cascade in the store).
type SupportingDocument struct {
	ID       int64
	ClaimID  int64
	FileName string // original display name
	FilePath string // stored reference, forward slashes
}

// =============================================================================
// PEOPLE
// =============================================================================

// Lecturer submits claims. Only display attributes matter here.
type Lecturer struct {
	ID       int64
	FullName string
	Email    string
}

// Approver reviews pending claims. Role is "Coordinator" or "Manager".
type Approver struct {
	ID       int64
	FullName string
	Role     string
	Email    string
}
