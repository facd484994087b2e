package sources

import (
	"context"
	"fmt"
	"io"
	"strings"

	"subclash/internal/fetch"
)

// Source reads a raw subscription body from a location.
type Source interface {
	Read(ctx context.Context, location string) (string, error)
}

// Deps are the shared resources handed to every plugin.
type Deps struct {
	Fetcher *fetch.Fetcher
	Stdin   io.Reader
}

type Factory func(deps Deps) Source

var registry = make(map[string]Factory)

// Register makes a plugin available under a location scheme.
func Register(scheme string, factory Factory) {
	registry[scheme] = factory
}

// Get returns the plugin responsible for location. Locations without a
// scheme, and "-", are handled by the "file" plugin.
func Get(location string, deps Deps) (Source, error) {
	scheme := SchemeOf(location)
	factory, ok := registry[scheme]
	if !ok {
		return nil, fmt.Errorf("source plugin '%s' not found", scheme)
	}
	return factory(deps), nil
}

// SchemeOf returns the lower-cased scheme of location, or "file".
func SchemeOf(location string) string {
	scheme, _, ok := strings.Cut(location, "://")
	if !ok || scheme == "" {
		return "file"
	}
	return strings.ToLower(scheme)
}
