// Package jsonplaceholder assembles the JSONPlaceholder twin.
package jsonplaceholder

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/leicam1995/teste-api-ebac/internal/twin/admin"
	"github.com/leicam1995/teste-api-ebac/internal/twin/jsonplaceholder/api"
	"github.com/leicam1995/teste-api-ebac/internal/twin/jsonplaceholder/store"
	"github.com/leicam1995/teste-api-ebac/internal/twin/twincore"
)

// New builds a JSONPlaceholder twin, optionally seeded from cfg.SeedFile.
func New(cfg *twincore.Config, logger *slog.Logger) (*twincore.Twin, *store.MemoryStore, error) {
	memStore := store.New()
	if cfg.SeedFile != "" {
		data, err := os.ReadFile(cfg.SeedFile)
		if err != nil {
			return nil, nil, fmt.Errorf("reading seed file: %w", err)
		}
		switch filepath.Ext(cfg.SeedFile) {
		case ".yaml", ".yml":
			err = memStore.LoadSeedYAML(data)
		default:
			err = memStore.LoadState(data)
		}
		if err != nil {
			return nil, nil, fmt.Errorf("loading seed file %s: %w", cfg.SeedFile, err)
		}
	}

	twin := twincore.New(cfg, logger)
	api.NewHandler(memStore, twin.Middleware()).Routes(twin.Router)
	admin.NewHandler(memStore, twin.Middleware()).Routes(twin.Router)
	return twin, memStore, nil
}
