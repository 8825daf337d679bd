package session

import "context"

// UpdateFunc mutates a session in place. Returning an error aborts the
// update and leaves stored state unchanged.
type UpdateFunc func(*State) error

// Repository defines the interface for session storage.
type Repository interface {
	// Get retrieves a session by ID and counts as an access.
	Get(ctx context.Context, id string) (*State, error)

	// Peek retrieves a session without counting as an access.
	Peek(ctx context.Context, id string) (*State, error)

	// Create stores a new session. Returns ErrSessionExists on ID collision.
	Create(ctx context.Context, state *State) error

	// Update applies fn atomically and returns the resulting state.
	Update(ctx context.Context, id string, fn UpdateFunc) (*State, error)

	// Apply is Update for background work: the idle clock keeps running.
	Apply(ctx context.Context, id string, fn UpdateFunc) (*State, error)

	// Delete removes a session. Deleting a missing session is not an error.
	Delete(ctx context.Context, id string) error

	// List returns all live sessions.
	List(ctx context.Context) ([]*State, error)

	// EvictIdle removes sessions not accessed within the idle TTL and
	// returns how many were removed.
	EvictIdle(ctx context.Context) (int, error)
}
