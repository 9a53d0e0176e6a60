// Package sqlstore implements the issuance ledger over database/sql. The
// sqlite and postgres drivers supply the connection and a Dialect.
package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"labcert/internal/ledger/core"
)

// timeLayout is fixed width so issued_at sorts lexically on every backend.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

const columns = "id, reference, report_type, filename, main_pages, appendix_pages, external_pages, size_bytes, sha256, attachment_key, archive_key, issued_at"

// Dialect captures the per-backend SQL differences.
type Dialect struct {
	Driver core.Driver
	// Placeholder renders the n-th (1-based) bind parameter.
	Placeholder func(n int) string
}

// QuestionMark renders `?` placeholders.
func QuestionMark(int) string { return "?" }

// Dollar renders `$n` placeholders.
func Dollar(n int) string { return "$" + strconv.Itoa(n) }

// Schema is applied on open; statements are idempotent.
var Schema = []string{
	`CREATE TABLE IF NOT EXISTS issuances (
		id TEXT PRIMARY KEY,
		reference TEXT NOT NULL,
		report_type TEXT NOT NULL,
		filename TEXT NOT NULL,
		main_pages INTEGER NOT NULL,
		appendix_pages INTEGER NOT NULL,
		external_pages INTEGER NOT NULL,
		size_bytes BIGINT NOT NULL,
		sha256 TEXT NOT NULL,
		attachment_key TEXT NOT NULL,
		archive_key TEXT NOT NULL,
		issued_at TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS issuances_reference_idx ON issuances (reference, issued_at)`,
}

// Store is a SQL-backed ledger.
type Store struct {
	db      *sql.DB
	dialect Dialect
	now     func() time.Time

	insertSQL string
	existsSQL string
	getSQL    string
}

// New applies the schema and returns a Store. The Store owns db.
func New(ctx context.Context, db *sql.DB, dialect Dialect) (*Store, error) {
	for _, stmt := range Schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return nil, fmt.Errorf("apply ledger schema: %w", err)
		}
	}
	ph := make([]string, 12)
	for i := range ph {
		ph[i] = dialect.Placeholder(i + 1)
	}
	return &Store{
		db:        db,
		dialect:   dialect,
		now:       time.Now,
		insertSQL: "INSERT INTO issuances (" + columns + ") VALUES (" + strings.Join(ph, ", ") + ")",
		existsSQL: "SELECT COUNT(1) FROM issuances WHERE id = " + ph[0],
		getSQL:    "SELECT " + columns + " FROM issuances WHERE id = " + ph[0],
	}, nil
}

// DB exposes the underlying handle for tests.
func (s *Store) DB() *sql.DB { return s.db }

func (s *Store) Driver() core.Driver { return s.dialect.Driver }

func (s *Store) Record(ctx context.Context, e core.Entry) (_ core.Entry, retErr error) {
	e, err := core.Prepare(e, s.now)
	if err != nil {
		return core.Entry{}, err
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return core.Entry{}, fmt.Errorf("begin: %w", err)
	}
	defer func() {
		if retErr != nil {
			_ = tx.Rollback()
		}
	}()
	var n int
	if err := tx.QueryRowContext(ctx, s.existsSQL, e.ID).Scan(&n); err != nil {
		return core.Entry{}, fmt.Errorf("check %s: %w", e.ID, err)
	}
	if n > 0 {
		return core.Entry{}, fmt.Errorf("%w: %s", core.ErrDuplicate, e.ID)
	}
	if _, err := tx.ExecContext(ctx, s.insertSQL,
		e.ID, e.Reference, e.ReportType, e.Filename,
		e.MainPages, e.AppendixPages, e.ExternalPages, e.SizeBytes,
		e.SHA256, e.AttachmentKey, e.ArchiveKey, e.IssuedAt.Format(timeLayout),
	); err != nil {
		return core.Entry{}, fmt.Errorf("insert %s: %w", e.ID, err)
	}
	if err := tx.Commit(); err != nil {
		return core.Entry{}, fmt.Errorf("commit: %w", err)
	}
	return e, nil
}

func (s *Store) Get(ctx context.Context, id string) (core.Entry, error) {
	e, err := scanEntry(s.db.QueryRowContext(ctx, s.getSQL, id))
	if errors.Is(err, sql.ErrNoRows) {
		return core.Entry{}, fmt.Errorf("%w: %s", core.ErrNotFound, id)
	}
	return e, err
}

func (s *Store) List(ctx context.Context, q core.Query) ([]core.Entry, error) {
	query := "SELECT " + columns + " FROM issuances"
	var args []any
	if q.Reference != "" {
		args = append(args, q.Reference)
		query += " WHERE reference = " + s.dialect.Placeholder(len(args))
	}
	query += " ORDER BY issued_at, id"
	if q.Limit > 0 {
		args = append(args, q.Limit)
		query += " LIMIT " + s.dialect.Placeholder(len(args))
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list issuances: %w", err)
	}
	defer func() { _ = rows.Close() }()
	var out []core.Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (s *Store) Close() error { return s.db.Close() }

type scanner interface {
	Scan(dest ...any) error
}

func scanEntry(row scanner) (core.Entry, error) {
	var (
		e      core.Entry
		issued string
	)
	if err := row.Scan(&e.ID, &e.Reference, &e.ReportType, &e.Filename,
		&e.MainPages, &e.AppendixPages, &e.ExternalPages, &e.SizeBytes,
		&e.SHA256, &e.AttachmentKey, &e.ArchiveKey, &issued); err != nil {
		return core.Entry{}, err
	}
	t, err := time.Parse(timeLayout, issued)
	if err != nil {
		return core.Entry{}, fmt.Errorf("decode issued_at %q: %w", issued, err)
	}
	e.IssuedAt = t
	return e, nil
}
