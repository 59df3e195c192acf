package route

import "context"

// Store is the persistence contract for routes. The SQLite implementation
// lives in the store sub-package; tests use an in-memory implementation.
type Store interface {
	// Insert persists a new route and returns it with ID and timestamps
	// populated. Returns ErrDuplicatePath when the path is already taken.
	Insert(ctx context.Context, r *Route) (*Route, error)

	// FindAll returns every route. Ordering is unspecified.
	FindAll(ctx context.Context) ([]*Route, error)

	// FindByID returns the route with the given id, or ErrNotFound.
	FindByID(ctx context.Context, id int64) (*Route, error)

	// FindByPath returns the route whose path exactly matches, or ErrNotFound.
	FindByPath(ctx context.Context, path string) (*Route, error)

	// Update overwrites the mutable fields of the route with the given id
	// and bumps UpdatedAt. Returns the updated route, ErrNotFound when the
	// id does not exist, or ErrDuplicatePath when the new path collides.
	Update(ctx context.Context, id int64, r *Route) (*Route, error)

	// Delete removes the route with the given id. The boolean reports
	// whether a route existed.
	Delete(ctx context.Context, id int64) (bool, error)

	// Close releases storage resources.
	Close() error
}
