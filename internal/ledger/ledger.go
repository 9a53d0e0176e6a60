// Package ledger records issued certificates. It re-exports the core model
// and is the only package that constructs ledger drivers.
package ledger

import (
	"context"
	"fmt"
	"strings"

	"labcert/internal/infra/ledger/memory"
	"labcert/internal/infra/ledger/postgres"
	"labcert/internal/infra/ledger/sqlite"
	"labcert/internal/ledger/core"
)

type (
	// Entry records one issued certificate.
	Entry = core.Entry
	// Query filters List.
	Query = core.Query
	// Ledger stores entries.
	Ledger = core.Ledger
	// Driver identifies a ledger backend.
	Driver = core.Driver
)

const (
	DriverMemory   = core.DriverMemory
	DriverSQLite   = core.DriverSQLite
	DriverPostgres = core.DriverPostgres
)

var (
	ErrNotFound     = core.ErrNotFound
	ErrDuplicate    = core.ErrDuplicate
	ErrInvalidEntry = core.ErrInvalidEntry
)

// Config selects and parameterises a ledger driver.
type Config struct {
	Driver Driver
	// Path is the sqlite database file.
	Path string
	// DSN is the postgres connection string.
	DSN string
}

// Open constructs the configured ledger. An empty driver selects sqlite.
func Open(ctx context.Context, cfg Config) (Ledger, error) {
	switch Driver(strings.ToLower(string(cfg.Driver))) {
	case DriverSQLite, "":
		return sqlite.Open(ctx, cfg.Path)
	case DriverPostgres:
		return postgres.Open(ctx, cfg.DSN)
	case DriverMemory:
		return memory.New(), nil
	default:
		return nil, fmt.Errorf("unknown ledger driver %q", cfg.Driver)
	}
}

// NewMemory returns an in-memory ledger for tests and dry runs.
func NewMemory() Ledger { return memory.New() }
