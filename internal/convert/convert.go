package convert

import (
	"errors"

	"subclash/internal/clash"
	"subclash/internal/link"
	"subclash/internal/logger"
)

// ErrEmptySubscription means no line of the subscription produced a proxy.
var ErrEmptySubscription = errors.New("no valid proxies found in subscription")

// Result carries the assembled document together with the split statistics.
type Result struct {
	Config  *clash.Config
	Proxies int
	Dropped []link.Drop
}

// Convert runs the full pipeline on a fetched subscription body: whole-body
// base64 attempt, line split, per-link decode and assembly under mode.
// When nothing survives the split it returns ErrEmptySubscription along with
// a Result holding the drop list.
func Convert(body string, mode clash.Mode) (*Result, error) {
	rep := link.SplitReport(link.DecodeBody(body))
	res := &Result{
		Proxies: len(rep.Proxies),
		Dropped: rep.Dropped,
	}

	logger.Log.Debugf("Split subscription: %d proxies, %d dropped", res.Proxies, len(res.Dropped))

	if len(rep.Proxies) == 0 {
		return res, ErrEmptySubscription
	}
	res.Config = clash.Assemble(rep.Proxies, mode)
	return res, nil
}

// DropsByKind tallies r.Dropped per failure kind.
func (r *Result) DropsByKind() map[link.Kind]int {
	out := make(map[link.Kind]int)
	for _, d := range r.Dropped {
		out[d.Kind]++
	}
	return out
}
