// Package serverest assembles the ServeRest twin: store, API routes and the
// admin control plane on top of twincore.
package serverest

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/leicam1995/teste-api-ebac/internal/twin/admin"
	"github.com/leicam1995/teste-api-ebac/internal/twin/serverest/api"
	"github.com/leicam1995/teste-api-ebac/internal/twin/serverest/store"
	"github.com/leicam1995/teste-api-ebac/internal/twin/twincore"
)

// Option customises the twin.
type Option func(*api.Handler)

// WithRequireAuth makes POST/PUT/DELETE on /usuarios demand a login token.
func WithRequireAuth() Option {
	return func(h *api.Handler) { h.RequireAuth = true }
}

// New builds a ServeRest twin. When cfg.SeedFile is set it replaces the
// built-in seed; .yaml and .yml files are read as YAML, anything else as JSON.
func New(cfg *twincore.Config, logger *slog.Logger, opts ...Option) (*twincore.Twin, *store.MemoryStore, error) {
	memStore := store.New()
	if cfg.SeedFile != "" {
		if err := loadSeed(memStore, cfg.SeedFile); err != nil {
			return nil, nil, err
		}
	}

	twin := twincore.New(cfg, logger)
	handler := api.NewHandler(memStore, twin.Middleware())
	for _, opt := range opts {
		opt(handler)
	}
	handler.Routes(twin.Router)
	admin.NewHandler(memStore, twin.Middleware()).Routes(twin.Router)

	return twin, memStore, nil
}

func loadSeed(s *store.MemoryStore, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading seed file: %w", err)
	}
	switch filepath.Ext(path) {
	case ".yaml", ".yml":
		err = s.LoadSeedYAML(data)
	default:
		err = s.LoadState(data)
	}
	if err != nil {
		return fmt.Errorf("loading seed file %s: %w", path, err)
	}
	return nil
}
