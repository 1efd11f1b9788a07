package storage

import (
	"context"
	"io"
	"mime/multipart"

	"github.com/yoockh/cvstudio/internal/models"
)

// Uploader archives an object and returns a URL clients can fetch it from.
type Uploader interface {
	Upload(ctx context.Context, objectName string, contentType string, r io.Reader) (url string, err error)
}

// TempStore holds request files until the upload pipeline is done with them.
type TempStore interface {
	Save(field string, fh *multipart.FileHeader) (*models.UploadedFile, error)
	// Remove is idempotent: a missing file is not an error.
	Remove(path string) error
}
