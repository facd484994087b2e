package httpapi

import (
	"net/http"
	"strings"
	"time"

	"subclash/internal/logger"
)

// Server routes /healthz and /metrics through a ServeMux and every other path
// to the converter. The converter path embeds a full URL ("https://...") and
// must not go through ServeMux, which would clean the double slash.
type Server struct {
	opt Options
	mux *http.ServeMux
}

func NewServer(opt Options) *Server {
	s := &Server{opt: opt.withDefaults()}

	s.mux = http.NewServeMux()
	s.mux.HandleFunc("GET /healthz", handleHealthz)
	s.mux.HandleFunc("GET /metrics", s.handleMetrics)
	return s
}

// NewHandler returns the production handler (router + observability middleware).
func NewHandler(opt Options) http.Handler {
	s := NewServer(opt)
	return s.withObservability(s)
}

// Options returns the effective options, defaults applied.
func (s *Server) Options() Options { return s.opt }

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.URL.Path {
	case "/healthz", "/metrics":
		s.mux.ServeHTTP(w, r)
		return
	}

	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.Header().Set("Allow", "GET, HEAD")
		s.writeErr(w, &APIError{
			Status: http.StatusMethodNotAllowed,
			AppError: AppError{
				Code:    CodeMethodNotAllowed,
				Message: "only GET is supported",
				Stage:   stageRequest,
			},
		})
		return
	}
	s.handleConvert(w, r)
}

func handleHealthz(w http.ResponseWriter, r *http.Request) {
	WriteText(w, http.StatusOK, "ok\n")
}

func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; version=0.0.4; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	if err := s.opt.Metrics.WritePrometheus(w); err != nil {
		logger.Log.Warnf("Writing metrics failed: %v", err)
	}
}

// writeErr answers with the classified error and counts it.
func (s *Server) writeErr(w http.ResponseWriter, err error) (int, AppError) {
	status, app := classify(err)
	if status == http.StatusInternalServerError {
		logger.Log.Errorf("Conversion failed: %v", err)
	}
	s.opt.Metrics.RecordAppError(app.Stage, app.Code)
	WriteError(w, status, app)
	return status, app
}

type statusWriter struct {
	http.ResponseWriter
	status int
	bytes  int
}

func (w *statusWriter) Unwrap() http.ResponseWriter { return w.ResponseWriter }

func (w *statusWriter) WriteHeader(statusCode int) {
	w.status = statusCode
	w.ResponseWriter.WriteHeader(statusCode)
}

func (w *statusWriter) Write(p []byte) (int, error) {
	if w.status == 0 {
		w.status = http.StatusOK
	}
	n, err := w.ResponseWriter.Write(p)
	w.bytes += n
	return n, err
}

// routeOf keeps metric labels low-cardinality.
func routeOf(path string) string {
	switch {
	case path == "/healthz":
		return "healthz"
	case path == "/metrics":
		return "metrics"
	case strings.HasPrefix(path, "/"+blacklistPrefix):
		return "convert_blacklist"
	case strings.HasPrefix(path, "/"+whitelistPrefix):
		return "convert_whitelist"
	default:
		return "other"
	}
}

func (s *Server) withObservability(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		sw := &statusWriter{ResponseWriter: w}
		next.ServeHTTP(sw, r)

		status := sw.status
		if status == 0 {
			status = http.StatusOK
		}
		route := routeOf(r.URL.Path)
		s.opt.Metrics.RecordRequest(route, status)

		// The path carries the subscription URL, which often embeds an
		// access token. Only the route is logged.
		if route != "healthz" && route != "metrics" {
			logger.Log.Infow("http",
				"method", r.Method,
				"route", route,
				"status", status,
				"dur", time.Since(start).Round(time.Millisecond),
				"bytes", sw.bytes,
			)
		}
	})
}
