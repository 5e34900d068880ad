/*
store.go - Persistence interfaces for claims, documents, and people

PURPOSE:
  Defines the boundary between the lifecycle engine and the database.
  Implementations exist for SQLite (store/sqlite) and in-memory
  (claims/store) for tests.

GUARDED TRANSITIONS:
  UpdateStatus is conditional: it only succeeds when the claim is still
  in the expected `from` status. Implementations back this with a
  conditional UPDATE (or equivalent), so two racing approvers cannot
  both win - the loser observes ErrInvalidTransition rather than
  silently overwriting a terminal state.

ATOMICITY:
  WithTx runs a function against a transactional view of the store.
  Claim creation persists the claim row and its document rows in one
  such unit; either all land or none do.
*/
package claims

import (
	"context"
	"io"

	"github.com/shopspring/decimal"
)

// =============================================================================
// STORE - Claim persistence
// =============================================================================

// Store handles persistence of claims and their documents.
type Store interface {
	// CreateClaim persists a new claim and assigns its ID.
	// The claim's Documents are NOT persisted here; use AddDocument.
	CreateClaim(ctx context.Context, c *Claim) error

	// GetClaim returns a claim with its documents, or ErrClaimNotFound.
	GetClaim(ctx context.Context, id int64) (*Claim, error)

	// ListClaimsByLecturer returns a lecturer's claims, newest first.
	ListClaimsByLecturer(ctx context.Context, lecturerID int64) ([]Claim, error)

	// ListClaimsByStatus returns claims in a status, claim date ascending.
	ListClaimsByStatus(ctx context.Context, status Status) ([]Claim, error)

	// UpdateStatus transitions a claim from `from` to `to`, optionally
	// replacing its notes in the same write. Returns ErrClaimNotFound if
	// the id does not exist and ErrInvalidTransition if the claim is no
	// longer in `from`.
	UpdateStatus(ctx context.Context, id int64, from, to Status, notes *string) error

	// UpdateAmount refreshes the stored derived amount.
	UpdateAmount(ctx context.Context, id int64, amount decimal.Decimal) error

	// AddDocument persists a supporting document row and assigns its ID.
	AddDocument(ctx context.Context, d *SupportingDocument) error

	// GetDocument returns a document row, or ErrDocumentNotFound.
	GetDocument(ctx context.Context, id int64) (*SupportingDocument, error)

	// CreateLecturer persists a lecturer and assigns its ID.
	CreateLecturer(ctx context.Context, l *Lecturer) error

	// GetLecturer returns a lecturer, or ErrLecturerNotFound.
	GetLecturer(ctx context.Context, id int64) (*Lecturer, error)

	// ListLecturers returns all lecturers, ID ascending.
	ListLecturers(ctx context.Context) ([]Lecturer, error)

	// CreateApprover persists an approver and assigns its ID.
	CreateApprover(ctx context.Context, a *Approver) error

	// ListApprovers returns all approvers, ID ascending.
	ListApprovers(ctx context.Context) ([]Approver, error)
}

// TxStore wraps Store with transaction support. If fn returns an
// error the transaction is rolled back, otherwise committed.
type TxStore interface {
	Store

	WithTx(ctx context.Context, fn func(Store) error) error
}

// =============================================================================
// FILE STORE - Supporting document bytes
// =============================================================================

// StoredFile is the result of persisting an upload.
type StoredFile struct {
	// Path is the stored reference (relative, forward slashes).
	Path string
}

// FileStore accepts document byte streams and hands back stored
// references. Implementations enforce the extension allow-list and the
// size ceiling; see docstore.
type FileStore interface {
	// Save stores the bytes under a collision-free name derived from the
	// declared file name's extension. Rejections (bad extension, too
	// large, empty) surface as typed errors.
	Save(ctx context.Context, fileName string, size int64, content io.Reader) (StoredFile, error)

	// Open returns a reader for a stored reference, or an error wrapping
	// ErrDocumentNotFound when the file is gone.
	Open(ctx context.Context, path string) (io.ReadCloser, error)

	// Remove deletes a stored file. Used to clean up orphans when the
	// database write after a file write fails.
	Remove(ctx context.Context, path string) error
}
