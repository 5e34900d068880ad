/*
Package sqlite provides a SQLite-backed implementation of claims.Store.

PURPOSE:
  Implements claim, document, lecturer, and approver persistence using
  SQLite. In production, the same patterns apply to PostgreSQL - only
  minor SQL dialect differences.

GUARDED TRANSITIONS:
  UpdateStatus uses a conditional UPDATE (WHERE id = ? AND status = ?).
  Zero rows affected means either the claim is missing or it already
  left the expected status; the two are distinguished with a follow-up
  SELECT. Racing Approve/Reject calls therefore cannot both win.

KEY TABLES:
  claims:                Claim rows; decimals stored as TEXT
  supporting_documents:  Uploaded file references, cascade-deleted
  lecturers / approvers: People referenced for display

WAL MODE:
  SQLite is opened with WAL (Write-Ahead Logging) for better concurrency:
  - Multiple readers don't block
  - Single writer at a time
  - Better crash recovery

USAGE:
  store, err := sqlite.New("./data/claims.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

MIGRATION:
  Schema is auto-migrated on New(). For production, use a proper
  migration tool (golang-migrate, goose) with versioned migrations.

SEE ALSO:
  - claims/store.go: Interface definitions
  - claims/store/memory.go: In-memory implementation for testing
*/
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"
	"github.com/warp/claims-engine/claims"
)

// Store implements claims.TxStore using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS lecturers (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		full_name TEXT NOT NULL,
		email TEXT NOT NULL DEFAULT '',
		created_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS approvers (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		full_name TEXT NOT NULL,
		role TEXT NOT NULL DEFAULT '',
		email TEXT NOT NULL DEFAULT '',
		created_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS claims (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		lecturer_id INTEGER NOT NULL REFERENCES lecturers(id),
		claim_date TEXT NOT NULL,
		hours_worked TEXT NOT NULL,
		hourly_rate TEXT NOT NULL,
		amount TEXT NOT NULL,
		notes TEXT NOT NULL DEFAULT '',
		status TEXT NOT NULL DEFAULT 'pending',
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_claims_lecturer
		ON claims(lecturer_id, claim_date DESC);

	-- Pending-queue and report queries (hot path)
	CREATE INDEX IF NOT EXISTS idx_claims_status_date
		ON claims(status, claim_date ASC);

	CREATE TABLE IF NOT EXISTS supporting_documents (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		claim_id INTEGER NOT NULL REFERENCES claims(id) ON DELETE CASCADE,
		file_name TEXT NOT NULL,
		file_path TEXT NOT NULL,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_documents_claim
		ON supporting_documents(claim_id);
	`

	_, err := s.db.Exec(schema)
	return err
}

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// =============================================================================
// CLAIMS
// =============================================================================

func (s *Store) CreateClaim(ctx context.Context, c *claims.Claim) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return createClaim(ctx, s.db, c)
}

func createClaim(ctx context.Context, db querier, c *claims.Claim) error {
	now := time.Now().UTC().Format(time.RFC3339)
	if c.ClaimDate.IsZero() {
		c.ClaimDate = time.Now().UTC()
	}

	res, err := db.ExecContext(ctx, `
		INSERT INTO claims
		(lecturer_id, claim_date, hours_worked, hourly_rate, amount, notes, status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		c.LecturerID,
		c.ClaimDate.UTC().Format(time.RFC3339),
		c.HoursWorked.String(),
		c.HourlyRate.String(),
		c.Amount.String(),
		c.Notes,
		string(c.Status),
		now,
		now,
	)
	if err != nil {
		return fmt.Errorf("failed to insert claim: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read generated claim id: %w", err)
	}
	c.ID = id
	return nil
}

const claimColumns = `
	c.id, c.lecturer_id, l.full_name, c.claim_date,
	c.hours_worked, c.hourly_rate, c.amount,
	c.notes, c.status, c.created_at, c.updated_at`

func (s *Store) GetClaim(ctx context.Context, id int64) (*claims.Claim, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return getClaim(ctx, s.db, id)
}

func getClaim(ctx context.Context, db querier, id int64) (*claims.Claim, error) {
	row := db.QueryRowContext(ctx, `
		SELECT `+claimColumns+`
		FROM claims c
		JOIN lecturers l ON l.id = c.lecturer_id
		WHERE c.id = ?`, id)

	c, err := scanClaim(row)
	if err == sql.ErrNoRows {
		return nil, claims.ErrClaimNotFound
	}
	if err != nil {
		return nil, err
	}

	docs, err := documentsFor(ctx, db, c.ID)
	if err != nil {
		return nil, err
	}
	c.Documents = docs
	return c, nil
}

func (s *Store) ListClaimsByLecturer(ctx context.Context, lecturerID int64) ([]claims.Claim, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return listClaimsByLecturer(ctx, s.db, lecturerID)
}

func listClaimsByLecturer(ctx context.Context, db querier, lecturerID int64) ([]claims.Claim, error) {
	return queryClaims(ctx, db, `
		SELECT `+claimColumns+`
		FROM claims c
		JOIN lecturers l ON l.id = c.lecturer_id
		WHERE c.lecturer_id = ?
		ORDER BY c.claim_date DESC, c.id DESC`, lecturerID)
}

func (s *Store) ListClaimsByStatus(ctx context.Context, status claims.Status) ([]claims.Claim, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return listClaimsByStatus(ctx, s.db, status)
}

func listClaimsByStatus(ctx context.Context, db querier, status claims.Status) ([]claims.Claim, error) {
	return queryClaims(ctx, db, `
		SELECT `+claimColumns+`
		FROM claims c
		JOIN lecturers l ON l.id = c.lecturer_id
		WHERE c.status = ?
		ORDER BY c.claim_date ASC, c.id ASC`, string(status))
}

func queryClaims(ctx context.Context, db querier, query string, args ...any) ([]claims.Claim, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query claims: %w", err)
	}
	defer rows.Close()

	var out []claims.Claim
	for rows.Next() {
		c, err := scanClaim(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	rows.Close()

	// Attach documents after the claim cursor is closed; SQLite allows
	// only limited interleaving of open cursors on one connection.
	for i := range out {
		docs, err := documentsFor(ctx, db, out[i].ID)
		if err != nil {
			return nil, err
		}
		out[i].Documents = docs
	}
	return out, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanClaim(row rowScanner) (*claims.Claim, error) {
	var (
		c         claims.Claim
		claimDate string
		hours     string
		rate      string
		amount    string
		statusStr string
		createdAt string
		updatedAt string
	)

	err := row.Scan(
		&c.ID, &c.LecturerID, &c.LecturerName, &claimDate,
		&hours, &rate, &amount,
		&c.Notes, &statusStr, &createdAt, &updatedAt,
	)
	if err != nil {
		return nil, err
	}

	c.ClaimDate, _ = time.Parse(time.RFC3339, claimDate)
	c.HoursWorked = mustDecimal(hours)
	c.HourlyRate = mustDecimal(rate)
	c.Amount = mustDecimal(amount)
	if st, ok := claims.ParseStatus(statusStr); ok {
		c.Status = st
	}
	c.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	c.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)
	return &c, nil
}

func mustDecimal(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

func (s *Store) UpdateStatus(ctx context.Context, id int64, from, to claims.Status, notes *string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return updateStatus(ctx, s.db, id, from, to, notes)
}

func updateStatus(ctx context.Context, db querier, id int64, from, to claims.Status, notes *string) error {
	now := time.Now().UTC().Format(time.RFC3339)

	res, err := db.ExecContext(ctx, `
		UPDATE claims
		SET status = ?, notes = COALESCE(?, notes), updated_at = ?
		WHERE id = ? AND status = ?`,
		string(to), notes, now, id, string(from),
	)
	if err != nil {
		return fmt.Errorf("failed to update claim status: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected: %w", err)
	}
	if affected > 0 {
		return nil
	}

	// Nothing matched: missing row or a disallowed transition.
	var current string
	err = db.QueryRowContext(ctx, "SELECT status FROM claims WHERE id = ?", id).Scan(&current)
	if err == sql.ErrNoRows {
		return claims.ErrClaimNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to read claim status: %w", err)
	}
	st, _ := claims.ParseStatus(current)
	return &claims.TransitionError{ClaimID: id, From: st, To: to}
}

func (s *Store) UpdateAmount(ctx context.Context, id int64, amount decimal.Decimal) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return updateAmount(ctx, s.db, id, amount)
}

func updateAmount(ctx context.Context, db querier, id int64, amount decimal.Decimal) error {
	now := time.Now().UTC().Format(time.RFC3339)
	res, err := db.ExecContext(ctx,
		"UPDATE claims SET amount = ?, updated_at = ? WHERE id = ?",
		amount.String(), now, id,
	)
	if err != nil {
		return fmt.Errorf("failed to update claim amount: %w", err)
	}
	affected, _ := res.RowsAffected()
	if affected == 0 {
		return claims.ErrClaimNotFound
	}
	return nil
}

// =============================================================================
// SUPPORTING DOCUMENTS
// =============================================================================

func (s *Store) AddDocument(ctx context.Context, d *claims.SupportingDocument) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return addDocument(ctx, s.db, d)
}

func addDocument(ctx context.Context, db querier, d *claims.SupportingDocument) error {
	res, err := db.ExecContext(ctx, `
		INSERT INTO supporting_documents (claim_id, file_name, file_path, created_at)
		VALUES (?, ?, ?, ?)`,
		d.ClaimID, d.FileName, d.FilePath, time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to insert document: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read generated document id: %w", err)
	}
	d.ID = id
	return nil
}

func (s *Store) GetDocument(ctx context.Context, id int64) (*claims.SupportingDocument, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return getDocument(ctx, s.db, id)
}

func getDocument(ctx context.Context, db querier, id int64) (*claims.SupportingDocument, error) {
	var d claims.SupportingDocument
	err := db.QueryRowContext(ctx, `
		SELECT id, claim_id, file_name, file_path
		FROM supporting_documents WHERE id = ?`, id).
		Scan(&d.ID, &d.ClaimID, &d.FileName, &d.FilePath)
	if err == sql.ErrNoRows {
		return nil, claims.ErrDocumentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query document: %w", err)
	}
	return &d, nil
}

func documentsFor(ctx context.Context, db querier, claimID int64) ([]claims.SupportingDocument, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT id, claim_id, file_name, file_path
		FROM supporting_documents
		WHERE claim_id = ?
		ORDER BY id ASC`, claimID)
	if err != nil {
		return nil, fmt.Errorf("failed to query documents: %w", err)
	}
	defer rows.Close()

	var docs []claims.SupportingDocument
	for rows.Next() {
		var d claims.SupportingDocument
		if err := rows.Scan(&d.ID, &d.ClaimID, &d.FileName, &d.FilePath); err != nil {
			return nil, err
		}
		docs = append(docs, d)
	}
	return docs, rows.Err()
}

// =============================================================================
// LECTURERS
// =============================================================================

func (s *Store) CreateLecturer(ctx context.Context, l *claims.Lecturer) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return createLecturer(ctx, s.db, l)
}

func createLecturer(ctx context.Context, db querier, l *claims.Lecturer) error {
	res, err := db.ExecContext(ctx,
		"INSERT INTO lecturers (full_name, email, created_at) VALUES (?, ?, ?)",
		l.FullName, l.Email, time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to insert lecturer: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read generated lecturer id: %w", err)
	}
	l.ID = id
	return nil
}

func (s *Store) GetLecturer(ctx context.Context, id int64) (*claims.Lecturer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return getLecturer(ctx, s.db, id)
}

func getLecturer(ctx context.Context, db querier, id int64) (*claims.Lecturer, error) {
	var l claims.Lecturer
	err := db.QueryRowContext(ctx,
		"SELECT id, full_name, email FROM lecturers WHERE id = ?", id).
		Scan(&l.ID, &l.FullName, &l.Email)
	if err == sql.ErrNoRows {
		return nil, claims.ErrLecturerNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query lecturer: %w", err)
	}
	return &l, nil
}

func (s *Store) ListLecturers(ctx context.Context) ([]claims.Lecturer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return listLecturers(ctx, s.db)
}

func listLecturers(ctx context.Context, db querier) ([]claims.Lecturer, error) {
	rows, err := db.QueryContext(ctx,
		"SELECT id, full_name, email FROM lecturers ORDER BY id ASC")
	if err != nil {
		return nil, fmt.Errorf("failed to query lecturers: %w", err)
	}
	defer rows.Close()

	var out []claims.Lecturer
	for rows.Next() {
		var l claims.Lecturer
		if err := rows.Scan(&l.ID, &l.FullName, &l.Email); err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

// =============================================================================
// APPROVERS
// =============================================================================

func (s *Store) CreateApprover(ctx context.Context, a *claims.Approver) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return createApprover(ctx, s.db, a)
}

func createApprover(ctx context.Context, db querier, a *claims.Approver) error {
	res, err := db.ExecContext(ctx,
		"INSERT INTO approvers (full_name, role, email, created_at) VALUES (?, ?, ?, ?)",
		a.FullName, a.Role, a.Email, time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to insert approver: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read generated approver id: %w", err)
	}
	a.ID = id
	return nil
}

func (s *Store) ListApprovers(ctx context.Context) ([]claims.Approver, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return listApprovers(ctx, s.db)
}

func listApprovers(ctx context.Context, db querier) ([]claims.Approver, error) {
	rows, err := db.QueryContext(ctx,
		"SELECT id, full_name, role, email FROM approvers ORDER BY id ASC")
	if err != nil {
		return nil, fmt.Errorf("failed to query approvers: %w", err)
	}
	defer rows.Close()

	var out []claims.Approver
	for rows.Next() {
		var a claims.Approver
		if err := rows.Scan(&a.ID, &a.FullName, &a.Role, &a.Email); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// =============================================================================
// TRANSACTIONS (claims.TxStore interface)
// =============================================================================

// WithTx executes a function within a database transaction.
func (s *Store) WithTx(ctx context.Context, fn func(store claims.Store) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer sqlTx.Rollback()

	if err := fn(&txStore{tx: sqlTx}); err != nil {
		return err
	}
	return sqlTx.Commit()
}

// txStore routes claims.Store calls through an open *sql.Tx.
type txStore struct {
	tx *sql.Tx
}

func (t *txStore) CreateClaim(ctx context.Context, c *claims.Claim) error {
	return createClaim(ctx, t.tx, c)
}

func (t *txStore) GetClaim(ctx context.Context, id int64) (*claims.Claim, error) {
	return getClaim(ctx, t.tx, id)
}

func (t *txStore) ListClaimsByLecturer(ctx context.Context, lecturerID int64) ([]claims.Claim, error) {
	return listClaimsByLecturer(ctx, t.tx, lecturerID)
}

func (t *txStore) ListClaimsByStatus(ctx context.Context, status claims.Status) ([]claims.Claim, error) {
	return listClaimsByStatus(ctx, t.tx, status)
}

func (t *txStore) UpdateStatus(ctx context.Context, id int64, from, to claims.Status, notes *string) error {
	return updateStatus(ctx, t.tx, id, from, to, notes)
}

func (t *txStore) UpdateAmount(ctx context.Context, id int64, amount decimal.Decimal) error {
	return updateAmount(ctx, t.tx, id, amount)
}

func (t *txStore) AddDocument(ctx context.Context, d *claims.SupportingDocument) error {
	return addDocument(ctx, t.tx, d)
}

func (t *txStore) GetDocument(ctx context.Context, id int64) (*claims.SupportingDocument, error) {
	return getDocument(ctx, t.tx, id)
}

func (t *txStore) CreateLecturer(ctx context.Context, l *claims.Lecturer) error {
	return createLecturer(ctx, t.tx, l)
}

func (t *txStore) GetLecturer(ctx context.Context, id int64) (*claims.Lecturer, error) {
	return getLecturer(ctx, t.tx, id)
}

func (t *txStore) ListLecturers(ctx context.Context) ([]claims.Lecturer, error) {
	return listLecturers(ctx, t.tx)
}

func (t *txStore) CreateApprover(ctx context.Context, a *claims.Approver) error {
	return createApprover(ctx, t.tx, a)
}

func (t *txStore) ListApprovers(ctx context.Context) ([]claims.Approver, error) {
	return listApprovers(ctx, t.tx)
}
