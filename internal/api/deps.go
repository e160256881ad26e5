package api

import (
	"context"
	"io"

	"solarsite/internal/storage"
)

// ObjectStore is the slice of the storage client the handlers use. Tests
// substitute an in-memory fake.
type ObjectStore interface {
	UploadFile(ctx context.Context, objectKey string, reader io.Reader, size int64, contentType string) error
	OpenObject(ctx context.Context, objectKey string) (io.ReadCloser, storage.ObjectInfo, error)
	DeleteObject(ctx context.Context, objectKey string) error
}
