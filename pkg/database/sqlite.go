package database

import (
	"fmt"
	"log/slog"

	"github.com/SscSPs/gl_engine/internal/repositories/database/sqlite"
)

// OpenSQLite opens the embedded store; its schema is applied on open.
func OpenSQLite(path string) (*sqlite.Store, error) {
	store, err := sqlite.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite store %s: %w", path, err)
	}
	slog.Info("SQLite store opened", slog.String("path", path))
	return store, nil
}
