/*
lifecycle.go - The claim state machine

PURPOSE:
  Orchestrates everything that happens to a claim: submission
  (validate -> compute amount -> persist -> attach documents ->
  auto-approval check), explicit approval and rejection, and the batch
  auto-verification sweep over pending claims.

STATES AND TRIGGERS:
  Submit        -> Pending (or straight to Approved via policy)
  Approve(id)   -> Pending -> Approved
  Reject(id)    -> Pending -> Rejected
  AutoVerifyAll -> Pending -> Approved for every claim passing policy

  Approved and Rejected are terminal. Transitions from a terminal
  state fail with ErrInvalidTransition; the conditional UPDATE in the
  store makes this hold even under racing approvers.

DOCUMENT ATOMICITY:
  Files are written to the file store BEFORE the database transaction.
  The claim row and document rows then commit together. If the commit
  fails, the already-written files are removed best-effort, so no
  dangling references and no orphaned uploads survive a failure.
*/
package claims

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// ENGINE
// =============================================================================

// Engine drives the claim lifecycle. All dependencies are injected;
// the engine itself keeps no mutable state.
type Engine struct {
	store  TxStore
	files  FileStore
	policy AutoApprovalPolicy
}

// NewEngine creates a lifecycle engine.
func NewEngine(store TxStore, files FileStore, policy AutoApprovalPolicy) *Engine {
	return &Engine{store: store, files: files, policy: policy}
}

// Policy exposes the thresholds in effect (for display and tests).
func (e *Engine) Policy() AutoApprovalPolicy { return e.policy }

// Upload is a document supplied with a submission.
type Upload struct {
	FileName string
	Size     int64
	Content  io.Reader
}

// Submission is the input to Submit.
type Submission struct {
	LecturerID  int64
	HoursWorked decimal.Decimal
	HourlyRate  decimal.Decimal
	Notes       string
	Files       []Upload
}

// SubmitResult reports what Submit did.
type SubmitResult struct {
	Claim        *Claim
	AutoApproved bool
	// SkippedFiles lists uploads refused by the file storage boundary.
	// A skipped file never blocks claim creation.
	SkippedFiles []string
}

// =============================================================================
// SUBMIT
// =============================================================================

// Submit runs the full submission pipeline. On validation failure
// nothing is persisted. On success the claim is Pending, or Approved
// immediately when the auto-approval policy passes - a single
// user-visible operation either way.
func (e *Engine) Submit(ctx context.Context, sub Submission) (*SubmitResult, error) {
	claim := &Claim{
		LecturerID:  sub.LecturerID,
		ClaimDate:   time.Now().UTC(),
		HoursWorked: sub.HoursWorked,
		HourlyRate:  sub.HourlyRate,
		Notes:       sub.Notes,
		Status:      StatusPending,
	}

	if err := Validate(claim); err != nil {
		return nil, err
	}

	amount, err := ComputeAmount(claim.HoursWorked, claim.HourlyRate)
	if err != nil {
		return nil, err
	}
	claim.Amount = amount

	if _, err := e.store.GetLecturer(ctx, sub.LecturerID); err != nil {
		return nil, err
	}

	// Phase one: write files. Rejections are skipped, I/O failures abort.
	var stored []StoredFile
	var skipped []string
	for _, up := range sub.Files {
		sf, err := e.files.Save(ctx, up.FileName, up.Size, up.Content)
		if err != nil {
			if errors.Is(err, ErrFileRejected) {
				skipped = append(skipped, up.FileName)
				continue
			}
			e.removeStored(ctx, stored)
			return nil, fmt.Errorf("%w: saving %s: %v", ErrStorageFailure, up.FileName, err)
		}
		stored = append(stored, sf)
		claim.Documents = append(claim.Documents, SupportingDocument{
			FileName: up.FileName,
			FilePath: sf.Path,
		})
	}

	// Phase two: claim row, document rows, and the auto-approval
	// transition commit together.
	autoApproved := false
	err = e.store.WithTx(ctx, func(s Store) error {
		if err := s.CreateClaim(ctx, claim); err != nil {
			return err
		}
		for i := range claim.Documents {
			claim.Documents[i].ClaimID = claim.ID
			if err := s.AddDocument(ctx, &claim.Documents[i]); err != nil {
				return err
			}
		}
		if e.policy.ShouldAutoApprove(claim) {
			if err := s.UpdateStatus(ctx, claim.ID, StatusPending, StatusApproved, nil); err != nil {
				return err
			}
			claim.Status = StatusApproved
			autoApproved = true
		}
		return nil
	})
	if err != nil {
		e.removeStored(ctx, stored)
		return nil, fmt.Errorf("%w: %v", ErrStorageFailure, err)
	}

	return &SubmitResult{Claim: claim, AutoApproved: autoApproved, SkippedFiles: skipped}, nil
}

func (e *Engine) removeStored(ctx context.Context, stored []StoredFile) {
	for _, sf := range stored {
		_ = e.files.Remove(ctx, sf.Path) // best-effort orphan cleanup
	}
}

// =============================================================================
// APPROVE / REJECT
// =============================================================================

// Approve transitions a pending claim to Approved.
func (e *Engine) Approve(ctx context.Context, id int64) error {
	return e.store.UpdateStatus(ctx, id, StatusPending, StatusApproved, nil)
}

// Reject transitions a pending claim to Rejected. A non-empty reason
// is appended to the claim's notes.
func (e *Engine) Reject(ctx context.Context, id int64, reason string) error {
	return e.store.WithTx(ctx, func(s Store) error {
		claim, err := s.GetClaim(ctx, id)
		if err != nil {
			return err
		}
		var notes *string
		if reason != "" {
			claim.AppendNote("Rejection reason: " + reason)
			notes = &claim.Notes
		}
		return s.UpdateStatus(ctx, id, StatusPending, StatusRejected, notes)
	})
}

// =============================================================================
// BATCH AUTO-VERIFICATION
// =============================================================================

// AutoVerifyAll re-applies the auto-approval step to every pending
// claim: recompute the amount from stored hours and rate (persisting
// it if it drifted), then transition to Approved when the policy
// passes. Returns the number of claims transitioned. Running it twice
// with no intervening submissions transitions nothing the second time.
func (e *Engine) AutoVerifyAll(ctx context.Context) (int, error) {
	pending, err := e.store.ListClaimsByStatus(ctx, StatusPending)
	if err != nil {
		return 0, err
	}

	approved := 0
	for i := range pending {
		claim := pending[i]

		amount, err := ComputeAmount(claim.HoursWorked, claim.HourlyRate)
		if err != nil {
			// An overflow here means stored hours/rate are corrupt; skip
			// rather than fail the whole sweep.
			continue
		}

		err = e.store.WithTx(ctx, func(s Store) error {
			if !amount.Equal(claim.Amount) {
				if err := s.UpdateAmount(ctx, claim.ID, amount); err != nil {
					return err
				}
				claim.Amount = amount
			}
			if !e.policy.ShouldAutoApprove(&claim) {
				return nil
			}
			if err := s.UpdateStatus(ctx, claim.ID, StatusPending, StatusApproved, nil); err != nil {
				return err
			}
			approved++
			return nil
		})
		if err != nil {
			if errors.Is(err, ErrInvalidTransition) || errors.Is(err, ErrClaimNotFound) {
				continue // raced with an approver; their transition stands
			}
			return approved, err
		}
	}

	return approved, nil
}
