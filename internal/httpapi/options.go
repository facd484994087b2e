package httpapi

import (
	"time"

	"subclash/internal/fetch"
	"subclash/internal/history"
	"subclash/internal/metrics"
)

const DefaultCacheMaxAge = 300

// Options controls HTTP API runtime behavior. Nil collaborators are replaced
// with defaults, except History which stays disabled.
type Options struct {
	// ConvertTimeout bounds a single request: fetch, decode and render.
	ConvertTimeout time.Duration
	// CacheMaxAge is the max-age, in seconds, sent with generated documents.
	// Zero selects DefaultCacheMaxAge.
	CacheMaxAge int

	Fetcher *fetch.Fetcher
	Metrics *metrics.Collector
	History history.Recorder
}

func (o Options) withDefaults() Options {
	if o.ConvertTimeout <= 0 {
		o.ConvertTimeout = 60 * time.Second
	}
	if o.CacheMaxAge <= 0 {
		o.CacheMaxAge = DefaultCacheMaxAge
	}
	if o.Fetcher == nil {
		// Without a proxy URL New cannot fail.
		o.Fetcher, _ = fetch.New(fetch.Options{})
	}
	if o.Metrics == nil {
		o.Metrics = metrics.New()
	}
	return o
}
