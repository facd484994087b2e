package http

import (
	"context"
	"fmt"

	"subclash/internal/fetch"
	"subclash/internal/history"
	"subclash/internal/logger"
	"subclash/internal/sources"
)

type URLSource struct {
	fetcher *fetch.Fetcher
}

func (s *URLSource) Read(ctx context.Context, location string) (string, error) {
	if s.fetcher == nil {
		return "", fmt.Errorf("http source has no fetcher")
	}
	// Paths and queries often carry access tokens; only the host is logged.
	logger.Log.Debugf("Reading subscription over http from %s", history.HostOf(location))
	return s.fetcher.Fetch(ctx, location)
}

func init() {
	factory := func(deps sources.Deps) sources.Source {
		return &URLSource{fetcher: deps.Fetcher}
	}
	sources.Register("http", factory)
	sources.Register("https", factory)
}
