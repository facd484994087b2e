package httpapi

import (
	"context"
	"net/http"
	"strings"
	"time"

	"subclash/internal/clash"
	"subclash/internal/convert"
	"subclash/internal/history"
	"subclash/internal/logger"
	"subclash/internal/model"
)

const (
	blacklistPrefix = "blacklist/"
	whitelistPrefix = "whitelist/"
)

// parseTarget extracts the mode and subscription URL from a request of the
// shape /{mode}/{subscriptionURL}{?query}. The query belongs to the
// subscription URL and is appended verbatim.
func parseTarget(r *http.Request) (clash.Mode, string, error) {
	path := strings.TrimPrefix(r.URL.EscapedPath(), "/")

	var mode clash.Mode
	switch {
	case strings.HasPrefix(path, blacklistPrefix):
		mode = clash.Blacklist
		path = strings.TrimPrefix(path, blacklistPrefix)
	case strings.HasPrefix(path, whitelistPrefix):
		mode = clash.Whitelist
		path = strings.TrimPrefix(path, whitelistPrefix)
	default:
		return "", "", requestError("path must start with /whitelist/ or /blacklist/")
	}
	if path == "" {
		return "", "", requestError("subscription url is missing")
	}

	if r.URL.RawQuery != "" {
		path += "?" + r.URL.RawQuery
	}
	return mode, path, nil
}

func (s *Server) handleConvert(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	mode, subURL, err := parseTarget(r)
	if err != nil {
		s.writeErr(w, err)
		return
	}

	rec := model.Conversion{
		Mode:       mode.String(),
		SourceHost: history.HostOf(subURL),
	}
	defer func() {
		rec.DurationMS = time.Since(start).Milliseconds()
		s.record(rec)
	}()

	ctx, cancel := context.WithTimeout(r.Context(), s.opt.ConvertTimeout)
	defer cancel()

	body, err := s.opt.Fetcher.Fetch(ctx, subURL)
	if err != nil {
		rec.Status, rec.Code = s.fail(w, err)
		return
	}

	res, err := convert.Convert(body, mode)
	if res != nil {
		rec.Proxies = res.Proxies
		rec.Dropped = len(res.Dropped)
	}
	if err != nil {
		if res != nil {
			s.opt.Metrics.RecordDrops(dropCounts(res))
		}
		rec.Status, rec.Code = s.fail(w, err)
		return
	}

	out, err := clash.Marshal(res.Config)
	if err != nil {
		rec.Status, rec.Code = s.fail(w, &APIError{
			Status:   http.StatusInternalServerError,
			AppError: AppError{Code: CodeInternal, Message: "Internal error", Stage: stageRender},
			Cause:    err,
		})
		return
	}

	s.opt.Metrics.RecordConversion(mode.String(), res.Proxies, dropCounts(res), time.Since(start))
	WriteYAML(w, mode, s.opt.CacheMaxAge, out)
	rec.Status = http.StatusOK
}

func (s *Server) fail(w http.ResponseWriter, err error) (int, string) {
	status, app := s.writeErr(w, err)
	return status, app.Code
}

func (s *Server) record(c model.Conversion) {
	if s.opt.History == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.opt.History.Record(ctx, c); err != nil {
		logger.Log.Warnf("Recording conversion failed: %v", err)
	}
}

func dropCounts(res *convert.Result) map[string]int {
	out := make(map[string]int)
	for kind, n := range res.DropsByKind() {
		out[kind.String()] = n
	}
	return out
}
