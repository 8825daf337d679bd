package resilience

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"
)

// Predefined errors for resilient operations.
var (
	// ErrCircuitOpen is returned when the circuit breaker is open.
	ErrCircuitOpen = errors.New("circuit breaker is open")

	// ErrRateLimited is returned when the outbound limiter cannot admit the
	// request before the context ends.
	ErrRateLimited = errors.New("outbound rate limit exceeded")
)

// ClientConfig holds configuration for the resilient HTTP client.
type ClientConfig struct {
	// Name identifies this client for circuit breaker naming and the registry.
	Name string

	// Timeout is the request timeout for individual HTTP calls.
	// Default: 10 seconds
	Timeout time.Duration

	// MaxRetries is the number of retries after the first attempt.
	// Zero sends each request exactly once.
	MaxRetries uint64

	// InitialInterval is the initial retry backoff interval.
	// Default: 100ms
	InitialInterval time.Duration

	// MaxInterval is the maximum retry backoff interval.
	// Default: 5 seconds
	MaxInterval time.Duration

	// CircuitBreaker is the circuit breaker configuration.
	// If nil, uses DefaultCircuitBreakerConfig.
	CircuitBreaker *CircuitBreakerConfig

	// Limiter throttles outbound attempts, retries included. Nil disables it.
	Limiter *rate.Limiter

	// Registry, when set, registers the client and records each outcome.
	Registry *Registry

	// Transport overrides the underlying round tripper (tests).
	Transport http.RoundTripper
}

// DefaultClientConfig returns sensible defaults for the resilient client.
func DefaultClientConfig(name string) ClientConfig {
	cbConfig := DefaultCircuitBreakerConfig(name)
	return ClientConfig{
		Name:            name,
		Timeout:         10 * time.Second,
		MaxRetries:      3,
		InitialInterval: 100 * time.Millisecond,
		MaxInterval:     5 * time.Second,
		CircuitBreaker:  &cbConfig,
	}
}

// Client is a resilient HTTP client with circuit breaker and retry logic.
type Client struct {
	httpClient     *http.Client
	circuitBreaker *gobreaker.CircuitBreaker[*http.Response]
	limiter        *rate.Limiter
	registry       *Registry
	config         ClientConfig
}

// NewClient creates a new resilient HTTP client.
func NewClient(cfg ClientConfig) *Client {
	if cfg.Timeout == 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.InitialInterval == 0 {
		cfg.InitialInterval = 100 * time.Millisecond
	}
	if cfg.MaxInterval == 0 {
		cfg.MaxInterval = 5 * time.Second
	}

	cbConfig := DefaultCircuitBreakerConfig(cfg.Name)
	if cfg.CircuitBreaker != nil {
		cbConfig = *cfg.CircuitBreaker
	}
	cb := NewCircuitBreaker[*http.Response](cbConfig) //nolint:bodyclose // type param, not response

	c := &Client{
		httpClient: &http.Client{
			Timeout:   cfg.Timeout,
			Transport: cfg.Transport,
		},
		circuitBreaker: cb,
		limiter:        cfg.Limiter,
		registry:       cfg.Registry,
		config:         cfg,
	}

	if c.registry != nil {
		c.registry.Register(cfg.Name, c)
	}

	return c
}

// Name returns the client name.
func (c *Client) Name() string {
	return c.config.Name
}

// Do sends req through the limiter and the circuit breaker, retrying
// transport errors and 5xx responses with exponential backoff until
// MaxRetries is spent or req's context ends. An open circuit fails fast with
// ErrCircuitOpen. A 5xx that outlives the retries comes back as a response,
// not an error, so callers can read the provider's error body.
func (c *Client) Do(req *http.Request) (*http.Response, error) {
	ctx := req.Context()

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = c.config.InitialInterval
	bo.MaxInterval = c.config.MaxInterval
	bo.MaxElapsedTime = 0

	var last *http.Response
	keep := func(resp *http.Response) {
		if last != nil && last != resp {
			last.Body.Close()
		}
		last = resp
	}

	err := backoff.Retry(func() error {
		resp, err := c.attempt(ctx, req)
		if resp != nil {
			keep(resp)
		}
		return err
	}, backoff.WithContext(backoff.WithMaxRetries(bo, c.config.MaxRetries), ctx))

	c.observe(err)

	var serverErr *ServerError
	switch {
	case err == nil:
		return last, nil
	case last != nil && errors.As(err, &serverErr):
		return last, nil
	}
	keep(nil)
	return nil, err
}

// attempt makes one call. 5xx responses are reported to the breaker as
// failures but still returned.
func (c *Client) attempt(ctx context.Context, req *http.Request) (*http.Response, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, backoff.Permanent(fmt.Errorf("%w: %v", ErrRateLimited, err))
		}
	}

	//nolint:bodyclose // the caller owns the body
	resp, err := c.circuitBreaker.Execute(func() (*http.Response, error) {
		r, err := c.httpClient.Do(req.Clone(ctx))
		if err != nil {
			return nil, err
		}
		if r.StatusCode >= http.StatusInternalServerError {
			return r, &ServerError{StatusCode: r.StatusCode}
		}
		return r, nil
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return nil, backoff.Permanent(ErrCircuitOpen)
	}
	return resp, err
}

func (c *Client) observe(err error) {
	if c.registry != nil {
		c.registry.Observe(c.config.Name, err)
	}
}

// ServerError represents an HTTP 5xx server error.
type ServerError struct {
	StatusCode int
}

func (e *ServerError) Error() string {
	return "server error: " + http.StatusText(e.StatusCode)
}

// CircuitBreakerState returns the current state of the circuit breaker.
func (c *Client) CircuitBreakerState() gobreaker.State {
	return c.circuitBreaker.State()
}

// CircuitBreakerCounts returns the current counts of the circuit breaker.
func (c *Client) CircuitBreakerCounts() gobreaker.Counts {
	return c.circuitBreaker.Counts()
}
