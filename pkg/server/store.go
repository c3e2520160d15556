package server

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/getmockd/apisim/pkg/logging"
	"github.com/getmockd/apisim/pkg/store"
	"github.com/getmockd/apisim/pkg/store/memory"
	"github.com/getmockd/apisim/pkg/store/sqlite"
)

// OpenStore opens the backend named by cfg. SQLite databases are created in
// cfg.DataDir, which is created if missing.
func OpenStore(ctx context.Context, cfg store.Config, log *slog.Logger) (store.Store, error) {
	if log == nil {
		log = logging.Nop()
	}
	backend, err := store.ParseBackend(string(cfg.Backend))
	if err != nil {
		return nil, err
	}

	switch backend {
	case store.BackendMemory:
		log.Info("using in-memory store; data will not persist")
		return memory.New(), nil
	default:
		dir := cfg.DataDir
		if dir == "" {
			dir = store.DefaultDataDir()
			cfg.DataDir = dir
		}
		if err := store.EnsureDir(dir); err != nil {
			return nil, fmt.Errorf("failed to create data directory %s: %w", dir, err)
		}
		path := cfg.DatabasePath()
		st, err := sqlite.Open(ctx, path, sqlite.WithLogger(log))
		if err != nil {
			return nil, fmt.Errorf("failed to open database %s: %w", path, err)
		}
		log.Info("opened sqlite store", "path", path)
		return st, nil
	}
}
