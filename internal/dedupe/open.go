package dedupe

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
)

const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
	BackendBadger = "badger"
)

// Open builds the store for the named backend. An empty backend means file.
func Open(ctx context.Context, backend, path string, dryRun bool, logger *slog.Logger) (Store, error) {
	switch strings.ToLower(strings.TrimSpace(backend)) {
	case "", BackendFile:
		return NewFileStore(path, dryRun, logger)
	case BackendSQLite:
		return NewSQLiteStore(ctx, path, "", dryRun, logger)
	case BackendBadger:
		return NewBadgerStore(path, dryRun, logger)
	default:
		return nil, fmt.Errorf("unsupported dedup backend %q (expected file, sqlite or badger)", backend)
	}
}
