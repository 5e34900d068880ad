/*
Package docstore stores supporting-document uploads on local disk.

PURPOSE:
  Implements the claims.FileStore boundary. Uploads are screened
  against an extension allow-list and a size ceiling, then written
  under a uuid-based name so display names can never collide or
  traverse out of the uploads directory.

SCREENING RULES (both configurable):
  - extension must be one of .pdf, .docx, .xlsx (case-insensitive)
  - size must be > 0 and <= 5 MiB

Rejections wrap claims.ErrFileRejected so the lifecycle engine can
skip the file without failing the submission.
*/
package docstore

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/warp/claims-engine/claims"
)

// Defaults matching the usual departmental upload rules.
const DefaultMaxFileBytes = 5 * 1024 * 1024 // 5 MiB

// DefaultAllowedExtensions returns the default allow-list.
func DefaultAllowedExtensions() []string {
	return []string{".pdf", ".docx", ".xlsx"}
}

// =============================================================================
// REJECTION ERRORS
// =============================================================================

var (
	ErrExtensionNotAllowed = fmt.Errorf("%w: extension not allowed", claims.ErrFileRejected)
	ErrFileTooLarge        = fmt.Errorf("%w: exceeds size ceiling", claims.ErrFileRejected)
	ErrEmptyFile           = fmt.Errorf("%w: empty file", claims.ErrFileRejected)
)

// =============================================================================
// DISK STORE
// =============================================================================

// Disk is a claims.FileStore writing under a root directory.
type Disk struct {
	root         string
	maxFileBytes int64
	allowedExts  map[string]bool
}

// Option customizes a Disk store.
type Option func(*Disk)

// WithMaxFileBytes overrides the 5 MiB ceiling.
func WithMaxFileBytes(n int64) Option {
	return func(d *Disk) { d.maxFileBytes = n }
}

// WithAllowedExtensions overrides the allow-list. Extensions are
// normalized to lower case with a leading dot.
func WithAllowedExtensions(exts []string) Option {
	return func(d *Disk) {
		d.allowedExts = make(map[string]bool, len(exts))
		for _, e := range exts {
			e = strings.ToLower(strings.TrimSpace(e))
			if e == "" {
				continue
			}
			if !strings.HasPrefix(e, ".") {
				e = "." + e
			}
			d.allowedExts[e] = true
		}
	}
}

// NewDisk creates the uploads directory if needed.
func NewDisk(root string, opts ...Option) (*Disk, error) {
	d := &Disk{
		root:         root,
		maxFileBytes: DefaultMaxFileBytes,
	}
	WithAllowedExtensions(DefaultAllowedExtensions())(d)
	for _, opt := range opts {
		opt(d)
	}

	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, errors.Wrap(err, "creating uploads directory")
	}
	return d, nil
}

// Save screens and stores an upload. The stored reference is
// "uploads/<uuid><ext>" with forward slashes, independent of OS.
func (d *Disk) Save(_ context.Context, fileName string, size int64, content io.Reader) (claims.StoredFile, error) {
	if size == 0 {
		return claims.StoredFile{}, ErrEmptyFile
	}
	if size > d.maxFileBytes {
		return claims.StoredFile{}, ErrFileTooLarge
	}

	ext := strings.ToLower(filepath.Ext(fileName))
	if ext == "" || !d.allowedExts[ext] {
		return claims.StoredFile{}, ErrExtensionNotAllowed
	}

	unique := uuid.NewString() + ext
	savePath := filepath.Join(d.root, unique)

	f, err := os.OpenFile(savePath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return claims.StoredFile{}, errors.Wrapf(err, "creating %s", unique)
	}

	// LimitReader guards against callers whose declared size undershoots
	// the actual stream.
	written, err := io.Copy(f, io.LimitReader(content, d.maxFileBytes+1))
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(savePath)
		return claims.StoredFile{}, errors.Wrapf(err, "writing %s", unique)
	}
	if written > d.maxFileBytes {
		os.Remove(savePath)
		return claims.StoredFile{}, ErrFileTooLarge
	}

	return claims.StoredFile{Path: "uploads/" + unique}, nil
}

// Open returns the stored bytes for a reference produced by Save.
func (d *Disk) Open(_ context.Context, path string) (io.ReadCloser, error) {
	full, err := d.resolve(path)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(full)
	if os.IsNotExist(err) {
		return nil, errors.Wrap(claims.ErrDocumentNotFound, path)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "opening %s", path)
	}
	return f, nil
}

// Remove deletes a stored file. Missing files are not an error; the
// caller is cleaning up and the outcome is the same.
func (d *Disk) Remove(_ context.Context, path string) error {
	full, err := d.resolve(path)
	if err != nil {
		return err
	}
	if err := os.Remove(full); err != nil && !os.IsNotExist(err) {
		return errors.Wrapf(err, "removing %s", path)
	}
	return nil
}

// resolve maps a stored reference back to a disk path, refusing
// anything that escapes the uploads directory.
func (d *Disk) resolve(path string) (string, error) {
	name := strings.TrimPrefix(path, "uploads/")
	if name == "" || name != filepath.Base(name) {
		return "", errors.Wrap(claims.ErrDocumentNotFound, path)
	}
	return filepath.Join(d.root, name), nil
}
