package docstore_test

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/claims-engine/claims"
	"github.com/warp/claims-engine/docstore"
)

func newTestDisk(t *testing.T, opts ...docstore.Option) *docstore.Disk {
	t.Helper()
	d, err := docstore.NewDisk(t.TempDir(), opts...)
	require.NoError(t, err)
	return d
}

func save(t *testing.T, d *docstore.Disk, name, content string) (claims.StoredFile, error) {
	t.Helper()
	return d.Save(context.Background(), name, int64(len(content)), bytes.NewReader([]byte(content)))
}

// =============================================================================
// SCREENING
// =============================================================================

func TestSave_AllowedExtensions(t *testing.T) {
	d := newTestDisk(t)
	for _, name := range []string{"a.pdf", "b.docx", "c.xlsx", "SHOUTY.PDF"} {
		_, err := save(t, d, name, "content")
		assert.NoError(t, err, name)
	}
}

func TestSave_DisallowedExtension(t *testing.T) {
	d := newTestDisk(t)
	for _, name := range []string{"evil.exe", "script.sh", "archive.zip", "noext"} {
		_, err := save(t, d, name, "content")
		assert.ErrorIs(t, err, claims.ErrFileRejected, name)
		assert.ErrorIs(t, err, docstore.ErrExtensionNotAllowed, name)
	}
}

func TestSave_EmptyFile(t *testing.T) {
	d := newTestDisk(t)
	_, err := save(t, d, "empty.pdf", "")
	assert.ErrorIs(t, err, docstore.ErrEmptyFile)
}

func TestSave_OverSizeCeiling(t *testing.T) {
	d := newTestDisk(t, docstore.WithMaxFileBytes(10))
	_, err := save(t, d, "big.pdf", strings.Repeat("x", 11))
	assert.ErrorIs(t, err, docstore.ErrFileTooLarge)
}

func TestSave_DeclaredSizeUndershootsStream(t *testing.T) {
	// The declared size passes screening but the actual stream is over
	// the ceiling; the partial write must not survive.
	d := newTestDisk(t, docstore.WithMaxFileBytes(10))
	_, err := d.Save(context.Background(), "liar.pdf", 5,
		bytes.NewReader([]byte(strings.Repeat("x", 50))))
	assert.ErrorIs(t, err, docstore.ErrFileTooLarge)
}

func TestSave_CustomAllowList(t *testing.T) {
	d := newTestDisk(t, docstore.WithAllowedExtensions([]string{"txt", ".CSV"}))

	_, err := save(t, d, "notes.txt", "hello")
	assert.NoError(t, err)
	_, err = save(t, d, "data.csv", "a,b")
	assert.NoError(t, err)
	_, err = save(t, d, "doc.pdf", "no longer allowed")
	assert.ErrorIs(t, err, docstore.ErrExtensionNotAllowed)
}

// =============================================================================
// ROUND TRIP
// =============================================================================

func TestSaveOpenRemove_RoundTrip(t *testing.T) {
	d := newTestDisk(t)
	ctx := context.Background()

	sf, err := save(t, d, "timesheet.pdf", "%PDF-1.4 body")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(sf.Path, "uploads/"))
	assert.True(t, strings.HasSuffix(sf.Path, ".pdf"))
	assert.NotContains(t, sf.Path, "timesheet", "stored name must not leak the display name")

	f, err := d.Open(ctx, sf.Path)
	require.NoError(t, err)
	data, err := io.ReadAll(f)
	require.NoError(t, err)
	require.NoError(t, f.Close())
	assert.Equal(t, "%PDF-1.4 body", string(data))

	require.NoError(t, d.Remove(ctx, sf.Path))
	_, err = d.Open(ctx, sf.Path)
	assert.ErrorIs(t, err, claims.ErrDocumentNotFound)

	// Removing again is a no-op.
	assert.NoError(t, d.Remove(ctx, sf.Path))
}

func TestSave_UniqueNamesForSameDisplayName(t *testing.T) {
	d := newTestDisk(t)
	a, err := save(t, d, "report.pdf", "one")
	require.NoError(t, err)
	b, err := save(t, d, "report.pdf", "two")
	require.NoError(t, err)
	assert.NotEqual(t, a.Path, b.Path)
}

// =============================================================================
// PATH TRAVERSAL
// =============================================================================

func TestOpen_RefusesTraversal(t *testing.T) {
	d := newTestDisk(t)
	for _, path := range []string{
		"uploads/../secrets.pdf",
		"uploads/../../etc/passwd",
		"../outside.pdf",
		"uploads/",
	} {
		_, err := d.Open(context.Background(), path)
		assert.ErrorIs(t, err, claims.ErrDocumentNotFound, path)
	}
}
