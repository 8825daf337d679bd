package session

import (
	"context"
	"sort"
	"sync"
	"time"
)

// InMemoryRepository is an in-memory implementation of Repository.
// Sessions idle for longer than the TTL are dropped by EvictIdle and are
// invisible to reads in the meantime.
type InMemoryRepository struct {
	mu       sync.RWMutex
	sessions map[string]*State
	idleTTL  time.Duration
	now      func() time.Time
}

// NewInMemoryRepository creates a repository. A non-positive idleTTL keeps
// sessions forever.
func NewInMemoryRepository(idleTTL time.Duration) *InMemoryRepository {
	return &InMemoryRepository{
		sessions: make(map[string]*State),
		idleTTL:  idleTTL,
		now:      time.Now,
	}
}

// WithClock replaces the repository clock (tests).
func (r *InMemoryRepository) WithClock(now func() time.Time) *InMemoryRepository {
	r.now = now
	return r
}

func (r *InMemoryRepository) expired(s *State, now time.Time) bool {
	return r.idleTTL > 0 && now.Sub(s.AccessedAt) > r.idleTTL
}

// Get retrieves a session by ID and marks it accessed.
func (r *InMemoryRepository) Get(_ context.Context, id string) (*State, error) {
	return r.get(id, true)
}

// Peek retrieves a session without marking it accessed.
func (r *InMemoryRepository) Peek(_ context.Context, id string) (*State, error) {
	return r.get(id, false)
}

func (r *InMemoryRepository) get(id string, touch bool) (*State, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[id]
	now := r.now()
	if !ok || r.expired(s, now) {
		return nil, ErrSessionNotFound
	}
	if touch {
		s.AccessedAt = now
	}
	return s.clone(), nil
}

// Create stores a new session.
func (r *InMemoryRepository) Create(_ context.Context, state *State) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.sessions[state.ID]; ok && !r.expired(existing, r.now()) {
		return ErrSessionExists
	}
	cpy := state.clone()
	if cpy.AccessedAt.IsZero() {
		cpy.AccessedAt = r.now()
	}
	r.sessions[state.ID] = cpy
	return nil
}

// Update applies fn to a copy and stores it only when fn succeeds.
func (r *InMemoryRepository) Update(_ context.Context, id string, fn UpdateFunc) (*State, error) {
	return r.update(id, fn, true)
}

// Apply is Update without marking the session accessed.
func (r *InMemoryRepository) Apply(_ context.Context, id string, fn UpdateFunc) (*State, error) {
	return r.update(id, fn, false)
}

func (r *InMemoryRepository) update(id string, fn UpdateFunc, touch bool) (*State, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[id]
	now := r.now()
	if !ok || r.expired(s, now) {
		return nil, ErrSessionNotFound
	}

	cpy := s.clone()
	if err := fn(cpy); err != nil {
		return s.clone(), err
	}
	cpy.ID = id
	if touch {
		cpy.AccessedAt = now
	} else {
		cpy.AccessedAt = s.AccessedAt
	}
	r.sessions[id] = cpy
	return cpy.clone(), nil
}

// Delete removes a session.
func (r *InMemoryRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, id)
	return nil
}

// List returns live sessions ordered by creation time.
func (r *InMemoryRepository) List(_ context.Context) ([]*State, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	now := r.now()
	out := make([]*State, 0, len(r.sessions))
	for _, s := range r.sessions {
		if !r.expired(s, now) {
			out = append(out, s.clone())
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

// EvictIdle removes expired sessions.
func (r *InMemoryRepository) EvictIdle(_ context.Context) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	removed := 0
	for id, s := range r.sessions {
		if r.expired(s, now) {
			delete(r.sessions, id)
			removed++
		}
	}
	return removed, nil
}

// Count returns the number of stored sessions, expired ones included.
func (r *InMemoryRepository) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}
