// Package sqlite provides the single-file issuance ledger on the pure Go
// modernc.org/sqlite driver.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"labcert/internal/infra/ledger/sqlstore"
	"labcert/internal/ledger/core"

	_ "modernc.org/sqlite" // pure go sqlite driver
)

// DefaultPath is used when no path is configured.
const DefaultPath = "labcert-ledger.db"

// Dialect is the sqlite placeholder style.
var Dialect = sqlstore.Dialect{Driver: core.DriverSQLite, Placeholder: sqlstore.QuestionMark}

// Open creates the database file and its parent directories as needed.
func Open(ctx context.Context, path string) (*sqlstore.Store, error) {
	if path == "" {
		path = DefaultPath
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return nil, fmt.Errorf("create dirs: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// One writer at a time keeps sqlite from returning SQLITE_BUSY.
	db.SetMaxOpenConns(1)
	store, err := sqlstore.New(ctx, db, Dialect)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}
