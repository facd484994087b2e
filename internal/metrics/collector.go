package metrics

import (
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"sync"
	"text/tabwriter"
	"time"

	"github.com/fatih/color"
)

type reqKey struct {
	Route  string
	Status int
}

type errKey struct {
	Stage string
	Code  string
}

// Collector keeps process-local counters. A handful of counters is all the
// service exposes, so the text format is written by hand.
type Collector struct {
	mu sync.Mutex

	requestsTotal uint64
	requests      map[reqKey]uint64
	appErrors     map[errKey]uint64

	conversions   map[string]uint64 // by mode
	proxiesTotal  uint64
	dropsByKind   map[string]uint64
	convCount       uint64
	convDurationSum time.Duration
}

func New() *Collector {
	return &Collector{
		requests:    make(map[reqKey]uint64),
		appErrors:   make(map[errKey]uint64),
		conversions: make(map[string]uint64),
		dropsByKind: make(map[string]uint64),
	}
}

func (c *Collector) RecordRequest(route string, status int) {
	if route == "" {
		route = "(unknown)"
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.requestsTotal++
	c.requests[reqKey{Route: route, Status: status}]++
}

func (c *Collector) RecordAppError(stage, code string) {
	stage = strings.TrimSpace(stage)
	code = strings.TrimSpace(code)
	if stage == "" {
		stage = "(unknown)"
	}
	if code == "" {
		code = "(unknown)"
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.appErrors[errKey{Stage: stage, Code: code}]++
}

// RecordConversion counts one successful conversion. drops is keyed by the
// drop kind name.
func (c *Collector) RecordConversion(mode string, proxies int, drops map[string]int, d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.conversions[mode]++
	c.proxiesTotal += uint64(proxies)
	for k, n := range drops {
		c.dropsByKind[k] += uint64(n)
	}
	c.convCount++
	c.convDurationSum += d
}

// RecordDrops counts dropped links without a successful conversion.
func (c *Collector) RecordDrops(drops map[string]int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for k, n := range drops {
		c.dropsByKind[k] += uint64(n)
	}
}

type counter struct {
	labels string
	n      uint64
}

func sortedCounters[K comparable](m map[K]uint64, format func(K) string) []counter {
	out := make([]counter, 0, len(m))
	for k, n := range m {
		out = append(out, counter{labels: format(k), n: n})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].labels < out[j].labels })
	return out
}

// WritePrometheus writes all counters in the Prometheus text format.
func (c *Collector) WritePrometheus(w io.Writer) error {
	c.mu.Lock()
	total := c.requestsTotal
	reqs := sortedCounters(c.requests, func(k reqKey) string {
		return fmt.Sprintf(`route="%s",status="%d"`, labelEscape(k.Route), k.Status)
	})
	errs := sortedCounters(c.appErrors, func(k errKey) string {
		return fmt.Sprintf(`stage="%s",code="%s"`, labelEscape(k.Stage), labelEscape(k.Code))
	})
	convs := sortedCounters(c.conversions, func(k string) string {
		return fmt.Sprintf(`mode="%s"`, labelEscape(k))
	})
	drops := sortedCounters(c.dropsByKind, func(k string) string {
		return fmt.Sprintf(`kind="%s"`, labelEscape(k))
	})
	proxies := c.proxiesTotal
	c.mu.Unlock()

	var b strings.Builder
	writeFamily(&b, "subclash_http_requests_total", "Total HTTP requests.", []counter{{n: total}})
	writeFamily(&b, "subclash_http_requests_by_route_total", "HTTP requests by route and status.", reqs)
	writeFamily(&b, "subclash_app_errors_total", "Application errors returned to clients.", errs)
	writeFamily(&b, "subclash_conversions_total", "Successful conversions by mode.", convs)
	writeFamily(&b, "subclash_proxies_emitted_total", "Proxies written into generated documents.", []counter{{n: proxies}})
	writeFamily(&b, "subclash_links_dropped_total", "Subscription lines dropped by reason.", drops)

	_, err := io.WriteString(w, b.String())
	return err
}

func writeFamily(b *strings.Builder, name, help string, cs []counter) {
	b.WriteString("# HELP " + name + " " + help + "\n")
	b.WriteString("# TYPE " + name + " counter\n")
	for _, c := range cs {
		b.WriteString(name)
		if c.labels != "" {
			b.WriteString("{" + c.labels + "}")
		}
		b.WriteByte(' ')
		b.WriteString(strconv.FormatUint(c.n, 10))
		b.WriteByte('\n')
	}
}

func labelEscape(s string) string {
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, "\"", "\\\"")
	s = strings.ReplaceAll(s, "\n", "\\n")
	return s
}

// PrintReport writes a human summary of the conversion counters.
func (c *Collector) PrintReport(out io.Writer) {
	c.mu.Lock()
	defer c.mu.Unlock()

	heading := color.New(color.FgCyan, color.Bold)
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)

	var convTotal uint64
	for _, n := range c.conversions {
		convTotal += n
	}
	heading.Fprintln(w, "[ CONVERSION ]")
	fmt.Fprintf(w, "  Conversions:\t%d\n", convTotal)
	fmt.Fprintf(w, "  Proxies emitted:\t%d\n", c.proxiesTotal)
	if c.convCount > 0 {
		fmt.Fprintf(w, "  Avg duration:\t%v\n", c.averageDuration().Round(time.Microsecond))
	}

	var kinds []string
	for k := range c.dropsByKind {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)
	if len(kinds) == 0 {
		fmt.Fprintf(w, "  Dropped lines:\t0\n")
	}
	for _, k := range kinds {
		fmt.Fprintf(w, "  Dropped (%s):\t%s\n", k, color.YellowString("%d", c.dropsByKind[k]))
	}
	w.Flush()
}

// averageDuration is the mean conversion time. Callers hold c.mu.
func (c *Collector) averageDuration() time.Duration {
	if c.convCount == 0 {
		return 0
	}
	return time.Duration(uint64(c.convDurationSum) / c.convCount)
}
