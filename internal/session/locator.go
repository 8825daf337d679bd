package session

import (
	"context"
	"fmt"
	"net"

	"github.com/breezy/breezy/internal/weather"
)

// Locator resolves the client's position into a provider location query.
type Locator interface {
	Locate(ctx context.Context) (string, error)
}

// LocatorFunc adapts a function to Locator.
type LocatorFunc func(ctx context.Context) (string, error)

// Locate implements Locator.
func (f LocatorFunc) Locate(ctx context.Context) (string, error) {
	return f(ctx)
}

// Coordinates locates a client that reported its own position.
type Coordinates struct {
	Lat float64
	Lon float64
}

// Locate implements Locator.
func (c Coordinates) Locate(_ context.Context) (string, error) {
	return weather.CoordinatesQuery(c.Lat, c.Lon)
}

// ClientIP locates a client by its public address, which the provider
// resolves to an approximate position.
type ClientIP string

// Locate implements Locator.
func (ip ClientIP) Locate(_ context.Context) (string, error) {
	addr := net.ParseIP(string(ip))
	if addr == nil {
		return "", fmt.Errorf("parsing client address %q: %w", string(ip), ErrLocationUnavailable)
	}
	if addr.IsLoopback() || addr.IsPrivate() || addr.IsUnspecified() || addr.IsLinkLocalUnicast() {
		return "", fmt.Errorf("client address %s is not routable: %w", addr, ErrLocationUnavailable)
	}
	return addr.String(), nil
}
