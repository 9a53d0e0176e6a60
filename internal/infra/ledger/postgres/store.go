// Package postgres provides the shared issuance ledger on Postgres through
// the pgx database/sql driver.
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"sync"

	_ "github.com/jackc/pgx/v5/stdlib" // register pgx as a database/sql driver

	"labcert/internal/infra/ledger/sqlstore"
	"labcert/internal/ledger/core"
)

const (
	defaultDriver = "pgx"
	defaultDSN    = "postgres://localhost/labcert?sslmode=disable"
)

// Dialect is the Postgres placeholder style.
var Dialect = sqlstore.Dialect{Driver: core.DriverPostgres, Placeholder: sqlstore.Dollar}

var (
	sqlOpen = sql.Open
	openMu  sync.Mutex
)

// Open connects to dsn (defaultDSN when empty), pings, and applies the schema.
func Open(ctx context.Context, dsn string) (*sqlstore.Store, error) {
	if dsn == "" {
		dsn = defaultDSN
	}
	openMu.Lock()
	db, err := sqlOpen(defaultDriver, dsn)
	openMu.Unlock()
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	store, err := sqlstore.New(ctx, db, Dialect)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// OverrideSQLOpen swaps the sqlOpen function for tests and returns a restore function.
func OverrideSQLOpen(fn func(driverName, dataSourceName string) (*sql.DB, error)) func() {
	openMu.Lock()
	defer openMu.Unlock()
	prev := sqlOpen
	sqlOpen = fn
	return func() {
		openMu.Lock()
		defer openMu.Unlock()
		sqlOpen = prev
	}
}
