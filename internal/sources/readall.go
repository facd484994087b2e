package sources

import (
	"context"
	"fmt"
	"strings"

	"subclash/internal/link"

	"github.com/alitto/pond/v2"
)

// ReadAll reads every location on a pool of at most workers goroutines and
// concatenates the bodies in argument order. Each body is base64-decoded on
// its own first, since encoded subscriptions cannot be joined as text. onDone, when
// set, is called once per finished location. The first error in argument
// order is returned.
func ReadAll(ctx context.Context, locations []string, deps Deps, workers int, onDone func()) (string, error) {
	if workers <= 0 {
		workers = 4
	}

	bodies := make([]string, len(locations))
	errs := make([]error, len(locations))

	pool := pond.NewPool(workers)
	for i, loc := range locations {
		pool.Submit(func() {
			defer func() {
				if onDone != nil {
					onDone()
				}
			}()
			src, err := Get(loc, deps)
			if err != nil {
				errs[i] = err
				return
			}
			bodies[i], errs[i] = src.Read(ctx, loc)
		})
	}
	pool.StopAndWait()

	var b strings.Builder
	for i, body := range bodies {
		if errs[i] != nil {
			return "", fmt.Errorf("source %s: %w", locations[i], errs[i])
		}
		b.WriteString(strings.TrimRight(link.DecodeBody(body), "\r\n"))
		b.WriteByte('\n')
	}
	return b.String(), nil
}
