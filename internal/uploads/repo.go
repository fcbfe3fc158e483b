package uploads

import "context"

// Repo defines storage operations for uploaded files. Implementations must be
// safe for concurrent use and List must return files in upload order.
type Repo interface {
	Put(ctx context.Context, f File) error
	Get(ctx context.Context, id string) (File, error)
	List(ctx context.Context) ([]Summary, error)
	Delete(ctx context.Context, id string) error
}
