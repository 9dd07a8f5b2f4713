// Package twin builds the in-memory service twins by name and runs them on
// loopback listeners for offline suite runs.
package twin

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"sort"

	"github.com/leicam1995/teste-api-ebac/internal/twin/jsonplaceholder"
	"github.com/leicam1995/teste-api-ebac/internal/twin/serverest"
	"github.com/leicam1995/teste-api-ebac/internal/twin/twincore"
)

// Twin names, matching the suite names they stand in for.
const (
	ServeRest       = "serverest"
	JSONPlaceholder = "jsonplaceholder"
)

// Options tunes a twin beyond twincore.Config.
type Options struct {
	// StrictAuth makes the ServeRest twin reject unauthenticated writes.
	StrictAuth bool
}

type builder func(cfg *twincore.Config, logger *slog.Logger, opts Options) (*twincore.Twin, error)

var builders = map[string]builder{
	ServeRest: func(cfg *twincore.Config, logger *slog.Logger, opts Options) (*twincore.Twin, error) {
		var extra []serverest.Option
		if opts.StrictAuth {
			extra = append(extra, serverest.WithRequireAuth())
		}
		t, _, err := serverest.New(cfg, logger, extra...)
		return t, err
	},
	JSONPlaceholder: func(cfg *twincore.Config, logger *slog.Logger, _ Options) (*twincore.Twin, error) {
		t, _, err := jsonplaceholder.New(cfg, logger)
		return t, err
	},
}

// Names returns the known twin names, sorted.
func Names() []string {
	names := make([]string, 0, len(builders))
	for n := range builders {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Build creates the named twin. cfg.Name is set to name when empty.
func Build(name string, cfg twincore.Config, logger *slog.Logger, opts Options) (*twincore.Twin, error) {
	b, ok := builders[name]
	if !ok {
		return nil, fmt.Errorf("unknown twin %q (known: %v)", name, Names())
	}
	if cfg.Name == "" {
		cfg.Name = name
	}
	return b(&cfg, logger, opts)
}

// Running is a twin serving on a loopback port.
type Running struct {
	Name string
	URL  string
	done chan error
}

// Wait blocks until the twin has shut down and returns its serve error.
func (r *Running) Wait() error {
	return <-r.done
}

// StartLocal builds the named twin and serves it on 127.0.0.1 with an
// ephemeral port until ctx is done.
func StartLocal(ctx context.Context, name string, cfg twincore.Config, logger *slog.Logger, opts Options) (*Running, error) {
	t, err := Build(name, cfg, logger, opts)
	if err != nil {
		return nil, err
	}
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return nil, fmt.Errorf("listen for twin %s: %w", name, err)
	}
	r := &Running{
		Name: name,
		URL:  "http://" + ln.Addr().String(),
		done: make(chan error, 1),
	}
	go func() {
		r.done <- t.ServeListener(ctx, ln)
		close(r.done)
	}()
	return r, nil
}
