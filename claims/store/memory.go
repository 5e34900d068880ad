// Package store provides an in-memory claims.Store implementation
// (for testing/dev).
package store

import (
	"context"
	"sort"
	"sync"

	"github.com/shopspring/decimal"
	"github.com/warp/claims-engine/claims"
)

// =============================================================================
// MEMORY STORE
// =============================================================================

type Memory struct {
	mu sync.RWMutex

	claims    map[int64]*claims.Claim
	documents map[int64]*claims.SupportingDocument
	lecturers map[int64]*claims.Lecturer
	approvers map[int64]*claims.Approver

	nextClaimID    int64
	nextDocumentID int64
	nextLecturerID int64
	nextApproverID int64
}

func NewMemory() *Memory {
	return &Memory{
		claims:    make(map[int64]*claims.Claim),
		documents: make(map[int64]*claims.SupportingDocument),
		lecturers: make(map[int64]*claims.Lecturer),
		approvers: make(map[int64]*claims.Approver),
	}
}

// =============================================================================
// CLAIMS
// =============================================================================

func (m *Memory) CreateClaim(_ context.Context, c *claims.Claim) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.createClaimLocked(c)
}

func (m *Memory) createClaimLocked(c *claims.Claim) error {
	m.nextClaimID++
	c.ID = m.nextClaimID
	cp := *c
	cp.Documents = nil
	m.claims[c.ID] = &cp
	return nil
}

func (m *Memory) GetClaim(_ context.Context, id int64) (*claims.Claim, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.getClaimLocked(id)
}

func (m *Memory) getClaimLocked(id int64) (*claims.Claim, error) {
	c, ok := m.claims[id]
	if !ok {
		return nil, claims.ErrClaimNotFound
	}
	out := *c
	out.Documents = m.documentsForLocked(id)
	if l, ok := m.lecturers[c.LecturerID]; ok {
		out.LecturerName = l.FullName
	}
	return &out, nil
}

func (m *Memory) documentsForLocked(claimID int64) []claims.SupportingDocument {
	var docs []claims.SupportingDocument
	for _, d := range m.documents {
		if d.ClaimID == claimID {
			docs = append(docs, *d)
		}
	}
	sort.Slice(docs, func(i, j int) bool { return docs[i].ID < docs[j].ID })
	return docs
}

func (m *Memory) ListClaimsByLecturer(_ context.Context, lecturerID int64) ([]claims.Claim, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []claims.Claim
	for id, c := range m.claims {
		if c.LecturerID != lecturerID {
			continue
		}
		cl, _ := m.getClaimLocked(id)
		out = append(out, *cl)
	}
	// Newest first, matching the lecturer's own-claims view.
	sort.Slice(out, func(i, j int) bool { return out[i].ClaimDate.After(out[j].ClaimDate) })
	return out, nil
}

func (m *Memory) ListClaimsByStatus(_ context.Context, status claims.Status) ([]claims.Claim, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.listByStatusLocked(status)
}

func (m *Memory) listByStatusLocked(status claims.Status) ([]claims.Claim, error) {
	var out []claims.Claim
	for id, c := range m.claims {
		if c.Status != status {
			continue
		}
		cl, _ := m.getClaimLocked(id)
		out = append(out, *cl)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ClaimDate.Before(out[j].ClaimDate) })
	return out, nil
}

func (m *Memory) UpdateStatus(_ context.Context, id int64, from, to claims.Status, notes *string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.updateStatusLocked(id, from, to, notes)
}

func (m *Memory) updateStatusLocked(id int64, from, to claims.Status, notes *string) error {
	c, ok := m.claims[id]
	if !ok {
		return claims.ErrClaimNotFound
	}
	if c.Status != from {
		return &claims.TransitionError{ClaimID: id, From: c.Status, To: to}
	}
	c.Status = to
	if notes != nil {
		c.Notes = *notes
	}
	return nil
}

func (m *Memory) UpdateAmount(_ context.Context, id int64, amount decimal.Decimal) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.updateAmountLocked(id, amount)
}

func (m *Memory) updateAmountLocked(id int64, amount decimal.Decimal) error {
	c, ok := m.claims[id]
	if !ok {
		return claims.ErrClaimNotFound
	}
	c.Amount = amount
	return nil
}

// =============================================================================
// DOCUMENTS
// =============================================================================

func (m *Memory) AddDocument(_ context.Context, d *claims.SupportingDocument) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.addDocumentLocked(d)
}

func (m *Memory) addDocumentLocked(d *claims.SupportingDocument) error {
	if _, ok := m.claims[d.ClaimID]; !ok {
		return claims.ErrClaimNotFound
	}
	m.nextDocumentID++
	d.ID = m.nextDocumentID
	cp := *d
	m.documents[d.ID] = &cp
	return nil
}

func (m *Memory) GetDocument(_ context.Context, id int64) (*claims.SupportingDocument, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	d, ok := m.documents[id]
	if !ok {
		return nil, claims.ErrDocumentNotFound
	}
	out := *d
	return &out, nil
}

// =============================================================================
// LECTURERS
// =============================================================================

func (m *Memory) CreateLecturer(_ context.Context, l *claims.Lecturer) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextLecturerID++
	l.ID = m.nextLecturerID
	cp := *l
	m.lecturers[l.ID] = &cp
	return nil
}

func (m *Memory) GetLecturer(_ context.Context, id int64) (*claims.Lecturer, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.getLecturerLocked(id)
}

func (m *Memory) getLecturerLocked(id int64) (*claims.Lecturer, error) {
	l, ok := m.lecturers[id]
	if !ok {
		return nil, claims.ErrLecturerNotFound
	}
	out := *l
	return &out, nil
}

func (m *Memory) ListLecturers(_ context.Context) ([]claims.Lecturer, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]claims.Lecturer, 0, len(m.lecturers))
	for _, l := range m.lecturers {
		out = append(out, *l)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// =============================================================================
// APPROVERS
// =============================================================================

func (m *Memory) CreateApprover(_ context.Context, a *claims.Approver) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextApproverID++
	a.ID = m.nextApproverID
	cp := *a
	m.approvers[a.ID] = &cp
	return nil
}

func (m *Memory) ListApprovers(_ context.Context) ([]claims.Approver, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.listApproversLocked()
}

func (m *Memory) listApproversLocked() ([]claims.Approver, error) {
	out := make([]claims.Approver, 0, len(m.approvers))
	for _, a := range m.approvers {
		out = append(out, *a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// =============================================================================
// TRANSACTIONS
// =============================================================================

// WithTx executes fn against a snapshot-backed view. On error the
// snapshot is restored, simulating a rollback.
func (m *Memory) WithTx(ctx context.Context, fn func(claims.Store) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	snap := m.snapshot()
	view := &txMemoryView{parent: m}

	if err := fn(view); err != nil {
		m.restore(snap)
		return err
	}
	return nil
}

type memorySnapshot struct {
	claims         map[int64]*claims.Claim
	documents      map[int64]*claims.SupportingDocument
	lecturers      map[int64]*claims.Lecturer
	approvers      map[int64]*claims.Approver
	nextClaimID    int64
	nextDocumentID int64
	nextLecturerID int64
	nextApproverID int64
}

func (m *Memory) snapshot() memorySnapshot {
	s := memorySnapshot{
		claims:         make(map[int64]*claims.Claim, len(m.claims)),
		documents:      make(map[int64]*claims.SupportingDocument, len(m.documents)),
		lecturers:      make(map[int64]*claims.Lecturer, len(m.lecturers)),
		approvers:      make(map[int64]*claims.Approver, len(m.approvers)),
		nextClaimID:    m.nextClaimID,
		nextDocumentID: m.nextDocumentID,
		nextLecturerID: m.nextLecturerID,
		nextApproverID: m.nextApproverID,
	}
	for id, c := range m.claims {
		cp := *c
		s.claims[id] = &cp
	}
	for id, d := range m.documents {
		cp := *d
		s.documents[id] = &cp
	}
	for id, l := range m.lecturers {
		cp := *l
		s.lecturers[id] = &cp
	}
	for id, a := range m.approvers {
		cp := *a
		s.approvers[id] = &cp
	}
	return s
}

func (m *Memory) restore(s memorySnapshot) {
	m.claims = s.claims
	m.documents = s.documents
	m.lecturers = s.lecturers
	m.approvers = s.approvers
	m.nextClaimID = s.nextClaimID
	m.nextDocumentID = s.nextDocumentID
	m.nextLecturerID = s.nextLecturerID
	m.nextApproverID = s.nextApproverID
}

// txMemoryView operates on the parent while its lock is held.
type txMemoryView struct {
	parent *Memory
}

func (tv *txMemoryView) CreateClaim(_ context.Context, c *claims.Claim) error {
	return tv.parent.createClaimLocked(c)
}

func (tv *txMemoryView) GetClaim(_ context.Context, id int64) (*claims.Claim, error) {
	return tv.parent.getClaimLocked(id)
}

func (tv *txMemoryView) ListClaimsByLecturer(ctx context.Context, lecturerID int64) ([]claims.Claim, error) {
	var out []claims.Claim
	for id, c := range tv.parent.claims {
		if c.LecturerID != lecturerID {
			continue
		}
		cl, _ := tv.parent.getClaimLocked(id)
		out = append(out, *cl)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ClaimDate.After(out[j].ClaimDate) })
	return out, nil
}

func (tv *txMemoryView) ListClaimsByStatus(_ context.Context, status claims.Status) ([]claims.Claim, error) {
	return tv.parent.listByStatusLocked(status)
}

func (tv *txMemoryView) UpdateStatus(_ context.Context, id int64, from, to claims.Status, notes *string) error {
	return tv.parent.updateStatusLocked(id, from, to, notes)
}

func (tv *txMemoryView) UpdateAmount(_ context.Context, id int64, amount decimal.Decimal) error {
	return tv.parent.updateAmountLocked(id, amount)
}

func (tv *txMemoryView) AddDocument(_ context.Context, d *claims.SupportingDocument) error {
	return tv.parent.addDocumentLocked(d)
}

func (tv *txMemoryView) GetDocument(_ context.Context, id int64) (*claims.SupportingDocument, error) {
	d, ok := tv.parent.documents[id]
	if !ok {
		return nil, claims.ErrDocumentNotFound
	}
	out := *d
	return &out, nil
}

func (tv *txMemoryView) CreateLecturer(_ context.Context, l *claims.Lecturer) error {
	tv.parent.nextLecturerID++
	l.ID = tv.parent.nextLecturerID
	cp := *l
	tv.parent.lecturers[l.ID] = &cp
	return nil
}

func (tv *txMemoryView) GetLecturer(_ context.Context, id int64) (*claims.Lecturer, error) {
	return tv.parent.getLecturerLocked(id)
}

func (tv *txMemoryView) ListLecturers(_ context.Context) ([]claims.Lecturer, error) {
	out := make([]claims.Lecturer, 0, len(tv.parent.lecturers))
	for _, l := range tv.parent.lecturers {
		out = append(out, *l)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (tv *txMemoryView) CreateApprover(_ context.Context, a *claims.Approver) error {
	tv.parent.nextApproverID++
	a.ID = tv.parent.nextApproverID
	cp := *a
	tv.parent.approvers[a.ID] = &cp
	return nil
}

func (tv *txMemoryView) ListApprovers(_ context.Context) ([]claims.Approver, error) {
	return tv.parent.listApproversLocked()
}
