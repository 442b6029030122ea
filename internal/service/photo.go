package service

import (
	"fmt"

	"github.com/sakif/urban-reports/internal/apperror"
	"github.com/sakif/urban-reports/internal/storage"
)

// validatePhoto enforces the upload contract shared by registration,
// profile update, and report submission: an accepted image MIME type and a
// size under the 5 MiB ceiling. The content type is the sniffed one, not the
// client-declared one (see handler/upload.go).
func validatePhoto(photo *storage.Blob) error {
	if !storage.AllowedImageType(photo.ContentType) {
		return apperror.UploadFailed(fmt.Sprintf("unsupported file type %q: photo must be a JPEG, PNG, GIF, or WebP image", photo.ContentType))
	}
	if photo.Size > storage.MaxPhotoSize {
		return apperror.UploadFailed(fmt.Sprintf("photo exceeds the %d MB size limit", storage.MaxPhotoSize>>20))
	}
	return nil
}
