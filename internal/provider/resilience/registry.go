package resilience

import (
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/sony/gobreaker/v2"
)

// Breaker exposes the circuit state of a registered provider. *Client
// satisfies it.
type Breaker interface {
	CircuitBreakerState() gobreaker.State
	CircuitBreakerCounts() gobreaker.Counts
}

// ProviderHealth is a point-in-time view of one provider. Zero times mean
// the provider has not yet succeeded or failed.
type ProviderHealth struct {
	Name          string
	CircuitState  gobreaker.State
	Counts        gobreaker.Counts
	LastSuccessAt time.Time
	LastFailureAt time.Time
	LastError     string
}

// IsHealthy reports a closed circuit.
func (h ProviderHealth) IsHealthy() bool { return h.CircuitState == gobreaker.StateClosed }

// IsDegraded reports a half-open circuit that is probing the provider.
func (h ProviderHealth) IsDegraded() bool { return h.CircuitState == gobreaker.StateHalfOpen }

// IsUnhealthy reports an open circuit.
func (h ProviderHealth) IsUnhealthy() bool { return h.CircuitState == gobreaker.StateOpen }

// Status returns "healthy", "degraded" or "unhealthy".
func (h ProviderHealth) Status() string {
	if h.IsUnhealthy() {
		return "unhealthy"
	}
	if h.IsDegraded() {
		return "degraded"
	}
	return "healthy"
}

type tracked struct {
	breaker   Breaker
	okAt      time.Time
	failedAt  time.Time
	lastError string
}

// Registry records the outcome of every call made through registered
// providers so the ops endpoints can report on them. It is safe for
// concurrent use.
type Registry struct {
	mu      sync.RWMutex
	entries map[string]*tracked
	now     func() time.Time
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{entries: map[string]*tracked{}, now: time.Now}
}

// Register tracks b under name, replacing any earlier entry and its history.
func (r *Registry) Register(name string, b Breaker) {
	r.mu.Lock()
	r.entries[name] = &tracked{breaker: b}
	r.mu.Unlock()
}

// Unregister stops tracking name.
func (r *Registry) Unregister(name string) {
	r.mu.Lock()
	delete(r.entries, name)
	r.mu.Unlock()
}

// Observe records the outcome of one call: success when err is nil.
// Unknown names are ignored.
func (r *Registry) Observe(name string, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.entries[name]
	if !ok {
		return
	}
	if err == nil {
		e.okAt = r.now()
		return
	}
	e.failedAt = r.now()
	e.lastError = err.Error()
}

// Health returns the current view of name.
func (r *Registry) Health(name string) (ProviderHealth, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.entries[name]
	if !ok {
		return ProviderHealth{}, false
	}
	return e.view(name), true
}

// Snapshot returns every provider ordered by name.
func (r *Registry) Snapshot() []ProviderHealth {
	r.mu.RLock()
	out := make([]ProviderHealth, 0, len(r.entries))
	for name, e := range r.entries {
		out = append(out, e.view(name))
	}
	r.mu.RUnlock()

	slices.SortFunc(out, func(a, b ProviderHealth) int { return strings.Compare(a.Name, b.Name) })
	return out
}

// Open returns the names of providers whose circuit is open, in order.
func (r *Registry) Open() []string {
	var names []string
	for _, h := range r.Snapshot() {
		if h.IsUnhealthy() {
			names = append(names, h.Name)
		}
	}
	return names
}

// Len returns the number of tracked providers.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}

func (e *tracked) view(name string) ProviderHealth {
	return ProviderHealth{
		Name:          name,
		CircuitState:  e.breaker.CircuitBreakerState(),
		Counts:        e.breaker.CircuitBreakerCounts(),
		LastSuccessAt: e.okAt,
		LastFailureAt: e.failedAt,
		LastError:     e.lastError,
	}
}
