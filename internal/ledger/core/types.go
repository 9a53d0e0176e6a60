// Package core defines the issuance ledger model shared by the ledger
// facade and its drivers.
package core

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Driver identifies a ledger backend.
type Driver string

const (
	DriverMemory   Driver = "memory"
	DriverSQLite   Driver = "sqlite"
	DriverPostgres Driver = "postgres"
)

var (
	// ErrNotFound marks lookups of unknown entry IDs.
	ErrNotFound = errors.New("ledger: entry not found")
	// ErrDuplicate marks a record whose ID is already stored.
	ErrDuplicate = errors.New("ledger: duplicate entry")
	// ErrInvalidEntry marks entries missing required fields.
	ErrInvalidEntry = errors.New("ledger: invalid entry")
)

// Entry records one issued certificate.
type Entry struct {
	ID            string    `json:"id"`
	Reference     string    `json:"reference"`
	ReportType    string    `json:"report_type"`
	Filename      string    `json:"filename"`
	MainPages     int       `json:"main_pages"`
	AppendixPages int       `json:"appendix_pages"`
	ExternalPages int       `json:"external_pages"`
	SizeBytes     int64     `json:"size_bytes"`
	SHA256        string    `json:"sha256"`
	AttachmentKey string    `json:"attachment_key,omitempty"`
	ArchiveKey    string    `json:"archive_key,omitempty"`
	IssuedAt      time.Time `json:"issued_at"`
}

// TotalPages is the page count of the issued document.
func (e Entry) TotalPages() int { return e.MainPages + e.AppendixPages + e.ExternalPages }

// Validate reports missing required fields.
func (e Entry) Validate() error {
	switch {
	case strings.TrimSpace(e.Reference) == "":
		return fmt.Errorf("%w: reference required", ErrInvalidEntry)
	case strings.TrimSpace(e.Filename) == "":
		return fmt.Errorf("%w: filename required", ErrInvalidEntry)
	case e.MainPages < 1:
		return fmt.Errorf("%w: main pages must be positive", ErrInvalidEntry)
	case e.AppendixPages < 0 || e.ExternalPages < 0:
		return fmt.Errorf("%w: negative page count", ErrInvalidEntry)
	}
	return nil
}

// Prepare fills the ID and issue time when unset, normalises the time to
// UTC and validates the result. Drivers call it before storing.
func Prepare(e Entry, now func() time.Time) (Entry, error) {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.IssuedAt.IsZero() {
		e.IssuedAt = now()
	}
	e.IssuedAt = e.IssuedAt.UTC()
	return e, e.Validate()
}

// Query filters List. A zero Limit means no limit.
type Query struct {
	Reference string
	Limit     int
}

// Ledger stores issuance entries. List returns entries ordered by issue
// time, oldest first.
type Ledger interface {
	Record(ctx context.Context, e Entry) (Entry, error)
	Get(ctx context.Context, id string) (Entry, error)
	List(ctx context.Context, q Query) ([]Entry, error)
	Driver() Driver
	Close() error
}
