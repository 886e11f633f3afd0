package port

import "context"

// FileStorage stores document content under a generated name
type FileStorage interface {
	// Save stores content under name and returns the path to retrieve it by
	Save(ctx context.Context, name string, content []byte) (string, error)
	Read(ctx context.Context, path string) ([]byte, error)
	Delete(ctx context.Context, path string) error
}
