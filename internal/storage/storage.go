// Package storage provides the blob-storage capability for uploaded photos.
//
// The service layer talks to the Storage interface only; the concrete
// backend — local disk or an S3-compatible image host — is selected once at
// startup. A stored blob is addressed by an opaque string reference (a local
// URL path or a remote URL) that is persisted in the photo column and handed
// back to clients verbatim.
package storage

import (
	"context"
	"io"
)

// MaxPhotoSize is the upload size ceiling: 5 MiB.
const MaxPhotoSize = 5 << 20

// Blob is a single file to persist. Size must be the exact number of bytes
// readable from Reader.
type Blob struct {
	Reader      io.Reader
	Size        int64
	ContentType string
}

// Storage persists uploaded files and yields retrievable references.
type Storage interface {
	// Save stores the blob and returns its reference. The generated name is
	// collision-resistant, so concurrent saves need no coordination.
	Save(ctx context.Context, blob Blob) (ref string, err error)
	// Delete removes a previously stored blob by its reference.
	// Deleting a reference that no longer exists is not an error.
	Delete(ctx context.Context, ref string) error
}

// imageExtensions maps the accepted image MIME types to file extensions.
// Anything not in this map is rejected before it reaches a backend.
var imageExtensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// AllowedImageType reports whether contentType is an accepted image type.
func AllowedImageType(contentType string) bool {
	_, ok := imageExtensions[contentType]
	return ok
}

// extensionFor returns the file extension for an accepted image MIME type.
func extensionFor(contentType string) string {
	return imageExtensions[contentType]
}
