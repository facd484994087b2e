package link

import (
	"errors"
	"strings"

	"subclash/internal/logger"
)

// Drop records a subscription line that did not produce a proxy.
type Drop struct {
	Line   int // 1-based, counted after trimming the body
	Kind   Kind
	Reason string
}

// Report is the outcome of splitting a subscription body.
type Report struct {
	Proxies []Proxy
	Dropped []Drop
}

// SplitReport decodes every non-empty line of raw and keeps the successes in
// input order. Failed lines are collected in Dropped and never abort the batch.
func SplitReport(raw string) Report {
	var rep Report
	lines := strings.Split(strings.TrimSpace(raw), "\n")
	for i, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		p, err := Decode(line)
		if err != nil {
			drop := Drop{Line: i + 1, Kind: KindMalformedLink, Reason: err.Error()}
			var de *DecodeError
			if errors.As(err, &de) {
				drop.Kind = de.Kind
			}
			logger.Log.Debugf("Dropped line %d (%s): %v", drop.Line, drop.Kind, err)
			rep.Dropped = append(rep.Dropped, drop)
			continue
		}
		rep.Proxies = append(rep.Proxies, Normalize(p))
	}
	return rep
}

// Split is SplitReport without the drop list.
func Split(raw string) []Proxy {
	return SplitReport(raw).Proxies
}
