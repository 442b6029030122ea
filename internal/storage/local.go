package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/rs/xid"
)

// publicPrefix is the URL path under which the server exposes the upload
// directory as static files.
const publicPrefix = "/uploads/"

// Local stores blobs as files in a single directory. References look like
// "/uploads/cv37rs3pp9olc6atsptg.jpg" and are served by the static file
// route.
type Local struct {
	dir string
}

var _ Storage = (*Local)(nil)

// NewLocal creates the upload directory if needed and returns a Local store.
func NewLocal(dir string) (*Local, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("storage: creating upload dir %s: %w", dir, err)
	}
	return &Local{dir: dir}, nil
}

// Save writes the blob under a generated xid filename. xid values are
// globally unique, so concurrent uploads cannot collide and no locking is
// needed around the write.
func (l *Local) Save(ctx context.Context, blob Blob) (string, error) {
	name := xid.New().String() + extensionFor(blob.ContentType)
	dst := filepath.Join(l.dir, name)

	f, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", fmt.Errorf("storage: creating %s: %w", dst, err)
	}

	if _, err := io.Copy(f, blob.Reader); err != nil {
		f.Close()
		os.Remove(dst) // don't leave a truncated file behind
		return "", fmt.Errorf("storage: writing %s: %w", dst, err)
	}
	if err := f.Close(); err != nil {
		os.Remove(dst)
		return "", fmt.Errorf("storage: closing %s: %w", dst, err)
	}

	return publicPrefix + name, nil
}

// Delete removes the file a reference points at. The filename is reduced to
// its base component so a crafted reference cannot escape the upload dir.
func (l *Local) Delete(ctx context.Context, ref string) error {
	if !strings.HasPrefix(ref, publicPrefix) {
		return fmt.Errorf("storage: reference %q is not a local upload", ref)
	}

	name := path.Base(strings.TrimPrefix(ref, publicPrefix))
	if name == "." || name == "/" {
		return fmt.Errorf("storage: invalid reference %q", ref)
	}

	// A reference whose file is already gone is fine — Delete is best-effort
	// cleanup and must be idempotent.
	if err := os.Remove(filepath.Join(l.dir, name)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("storage: removing %s: %w", name, err)
	}
	return nil
}
