package handler

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/sakif/urban-reports/internal/apperror"
	"github.com/sakif/urban-reports/internal/storage"
)

// maxRequestSize bounds a whole multipart request: the photo ceiling plus
// headroom for the text fields.
const maxRequestSize = storage.MaxPhotoSize + 1<<20

// parsePhoto extracts the optional "photo" multipart field.
//
// Returns (nil, nil) when the field is absent — an upload is never required.
// The content type is sniffed from the first bytes of the file, not taken
// from the part header; clients can claim anything there.
//
// The file is read fully into memory before returning: the service layer may
// hand the blob to a remote store that needs a deterministic Size, and the
// 5 MiB ceiling keeps the buffer small. Reading stops one byte past the
// ceiling so oversized uploads are detected without buffering the rest.
func parsePhoto(r *http.Request) (*storage.Blob, error) {
	file, _, err := r.FormFile("photo")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return nil, nil
		}
		return nil, apperror.ValidationFailed("photo", "invalid photo field")
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, storage.MaxPhotoSize+1))
	if err != nil {
		return nil, apperror.UploadFailed("could not read the uploaded photo")
	}
	if len(data) == 0 {
		return nil, apperror.UploadFailed("uploaded photo is empty")
	}
	if len(data) > storage.MaxPhotoSize {
		return nil, apperror.UploadFailed(fmt.Sprintf("photo exceeds the %d MB size limit", storage.MaxPhotoSize>>20))
	}

	return &storage.Blob{
		Reader:      bytes.NewReader(data),
		Size:        int64(len(data)),
		ContentType: http.DetectContentType(data),
	}, nil
}

// isMultipart reports whether the request body is multipart/form-data.
func isMultipart(r *http.Request) bool {
	return strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data")
}
