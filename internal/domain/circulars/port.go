package circulars

import "context"

// Repository port (interface for persistence)
type Repository interface {
	ListCirculars(ctx context.Context) ([]Circular, error)
	ListSEBICirculars(ctx context.Context) ([]Circular, error)
	GetCircular(ctx context.Context, id CircularID) (*Circular, error)

	ListReferences(ctx context.Context, circularID CircularID) ([]Reference, error)
	GetReference(ctx context.Context, circularID CircularID, refID int64) (*Reference, error)
	// GetReferenceByID looks a reference up without the circular scope;
	// chapter endpoints only carry the reference id.
	GetReferenceByID(ctx context.Context, refID int64) (*Reference, error)

	// Ingest side: insert-or-update keyed on circular_number / reference URL.
	UpsertCircular(ctx context.Context, c *Circular) (CircularID, error)
	UpsertSEBICircular(ctx context.Context, c *Circular) (CircularID, error)
	UpsertReference(ctx context.Context, r *Reference) (int64, error)
}
