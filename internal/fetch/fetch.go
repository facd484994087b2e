package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"time"

	"subclash/internal/logger"

	"golang.org/x/net/proxy"
)

const (
	DefaultUserAgent    = "ClashConverter/1.0"
	DefaultTimeout      = 15 * time.Second
	DefaultMaxBytes     = 5 * 1024 * 1024
	DefaultMaxRedirects = 5
)

// Error codes carried by FetchError.
const (
	CodeInvalidArgument = "INVALID_ARGUMENT"
	CodeFetchFailed     = "UPSTREAM_FETCH_FAILED"
	CodeFetchTimeout    = "UPSTREAM_TIMEOUT"
	CodeTooLarge        = "UPSTREAM_TOO_LARGE"
)

// Options bounds a single fetch. Zero values select the defaults above.
type Options struct {
	UserAgent    string
	Timeout      time.Duration
	MaxBytes     int64
	MaxRedirects int
	// ProxyURL routes upstream requests through an http, https or socks5 proxy.
	ProxyURL string
}

func (o Options) withDefaults() Options {
	if o.UserAgent == "" {
		o.UserAgent = DefaultUserAgent
	}
	if o.Timeout <= 0 {
		o.Timeout = DefaultTimeout
	}
	if o.MaxBytes <= 0 {
		o.MaxBytes = DefaultMaxBytes
	}
	if o.MaxRedirects <= 0 {
		o.MaxRedirects = DefaultMaxRedirects
	}
	return o
}

// FetchError is a failed upstream fetch. Status is the HTTP status the API
// layer should answer with.
type FetchError struct {
	Status  int
	Code    string
	Message string
	Cause   error
}

func (e *FetchError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Cause == nil {
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
}

func (e *FetchError) Unwrap() error { return e.Cause }

var (
	errTooManyRedirects  = errors.New("too many redirects")
	errRedirectBadScheme = errors.New("redirect target scheme is not http/https")
)

// Fetcher downloads subscription bodies. It is safe for concurrent use.
type Fetcher struct {
	opts   Options
	client *http.Client
}

// New builds a Fetcher. It fails only when opts.ProxyURL cannot be used.
func New(opts Options) (*Fetcher, error) {
	opts = opts.withDefaults()

	transport := http.DefaultTransport.(*http.Transport).Clone()
	if opts.ProxyURL != "" {
		if err := applyProxy(transport, opts.ProxyURL); err != nil {
			return nil, err
		}
	}

	maxRedirects := opts.MaxRedirects
	client := &http.Client{
		Timeout:   opts.Timeout,
		Transport: transport,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) > maxRedirects {
				return errTooManyRedirects
			}
			if req.URL.Scheme != "http" && req.URL.Scheme != "https" {
				return errRedirectBadScheme
			}
			return nil
		},
	}
	return &Fetcher{opts: opts, client: client}, nil
}

func applyProxy(t *http.Transport, rawProxy string) error {
	u, err := url.Parse(rawProxy)
	if err != nil {
		return fmt.Errorf("invalid proxy url: %w", err)
	}
	switch u.Scheme {
	case "http", "https":
		t.Proxy = http.ProxyURL(u)
	case "socks5", "socks5h":
		d, err := proxy.FromURL(u, proxy.Direct)
		if err != nil {
			return fmt.Errorf("socks proxy: %w", err)
		}
		cd, ok := d.(proxy.ContextDialer)
		if !ok {
			return fmt.Errorf("socks proxy %s does not support contexts", u.Host)
		}
		t.Proxy = nil
		t.DialContext = cd.DialContext
	default:
		return fmt.Errorf("unsupported proxy scheme %q", u.Scheme)
	}
	logger.Log.Debugf("Fetcher using proxy: %s://%s", u.Scheme, u.Host)
	return nil
}

// Options returns the effective options, defaults applied.
func (f *Fetcher) Options() Options { return f.opts }

// Fetch GETs rawURL and returns the body as text.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return "", &FetchError{
			Status:  http.StatusBadRequest,
			Code:    CodeInvalidArgument,
			Message: "subscription url must be an absolute http or https url",
			Cause:   err,
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", &FetchError{
			Status:  http.StatusBadRequest,
			Code:    CodeInvalidArgument,
			Message: "invalid subscription url",
			Cause:   err,
		}
	}
	req.Header.Set("User-Agent", f.opts.UserAgent)

	logger.Log.Debugf("Fetching subscription from %s", u.Host)
	resp, err := f.client.Do(req)
	if err != nil {
		return "", classifyTransportError(err, f.opts.MaxRedirects)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", &FetchError{
			Status:  http.StatusBadGateway,
			Code:    CodeFetchFailed,
			Message: fmt.Sprintf("Failed to fetch subscription: %s", resp.Status),
		}
	}

	// Read one byte past the cap so overflow is detected deterministically.
	body, err := io.ReadAll(io.LimitReader(resp.Body, f.opts.MaxBytes+1))
	if err != nil {
		return "", classifyTransportError(err, f.opts.MaxRedirects)
	}
	if int64(len(body)) > f.opts.MaxBytes {
		return "", &FetchError{
			Status:  http.StatusBadGateway,
			Code:    CodeTooLarge,
			Message: fmt.Sprintf("subscription larger than %d bytes", f.opts.MaxBytes),
		}
	}
	return string(body), nil
}

func classifyTransportError(err error, maxRedirects int) *FetchError {
	switch {
	case errors.Is(err, errTooManyRedirects):
		return &FetchError{
			Status:  http.StatusBadGateway,
			Code:    CodeFetchFailed,
			Message: fmt.Sprintf("more than %d redirects", maxRedirects),
			Cause:   err,
		}
	case errors.Is(err, errRedirectBadScheme):
		return &FetchError{
			Status:  http.StatusBadGateway,
			Code:    CodeFetchFailed,
			Message: "redirect target must be http or https",
			Cause:   err,
		}
	case isTimeout(err):
		return &FetchError{
			Status:  http.StatusGatewayTimeout,
			Code:    CodeFetchTimeout,
			Message: "timed out fetching subscription",
			Cause:   err,
		}
	default:
		return &FetchError{
			Status:  http.StatusBadGateway,
			Code:    CodeFetchFailed,
			Message: "Failed to fetch subscription",
			Cause:   err,
		}
	}
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}
