package firebase

import "context"

// StoredObject is an uploaded file and its public URL.
type StoredObject struct {
	Path string
	URL  string
}

// StorageClient abstracts Firebase Storage operations for dependency injection and testing.
type StorageClient interface {
	UploadStaticMap(ctx context.Context, imageURL, name string) (StoredObject, error)
	DeleteFile(ctx context.Context, objectPath string) error
}

var _ StorageClient = (*Storage)(nil)
