package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"labcert/internal/ledger/core"
)

func TestLedgerPersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "ledger.db")
	store, err := Open(ctx, path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if store.Driver() != core.DriverSQLite {
		t.Fatalf("unexpected driver %s", store.Driver())
	}
	issued := time.Date(2024, 6, 3, 8, 30, 15, 123456789, time.UTC)
	first, err := store.Record(ctx, core.Entry{
		Reference: "J-77", ReportType: "Report", Filename: "Report - J-77 (20240603).pdf",
		MainPages: 2, AppendixPages: 1, ExternalPages: 3, SizeBytes: 4096,
		SHA256: "abc", AttachmentKey: "attachments/J-77/lab-certificate.pdf", IssuedAt: issued,
	})
	if err != nil {
		t.Fatalf("Record: %v", err)
	}
	if _, err := store.Record(ctx, core.Entry{Reference: "J-78", Filename: "x.pdf", MainPages: 1, IssuedAt: issued.Add(time.Minute)}); err != nil {
		t.Fatalf("Record second: %v", err)
	}
	if _, err := store.Record(ctx, core.Entry{ID: first.ID, Reference: "J-77", Filename: "y.pdf", MainPages: 1}); !errors.Is(err, core.ErrDuplicate) {
		t.Fatalf("expected duplicate, got %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	reopened, err := Open(ctx, path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	t.Cleanup(func() { _ = reopened.Close() })
	got, err := reopened.Get(ctx, first.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got != first {
		t.Fatalf("round trip mismatch:\n got %+v\nwant %+v", got, first)
	}
	if _, err := reopened.Get(ctx, "missing"); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	all, err := reopened.List(ctx, core.Query{})
	if err != nil || len(all) != 2 || all[0].ID != first.ID {
		t.Fatalf("List: %v %+v", err, all)
	}
	byRef, err := reopened.List(ctx, core.Query{Reference: "J-78", Limit: 5})
	if err != nil || len(byRef) != 1 || byRef[0].Reference != "J-78" {
		t.Fatalf("List by reference: %v %+v", err, byRef)
	}
	limited, err := reopened.List(ctx, core.Query{Limit: 1})
	if err != nil || len(limited) != 1 {
		t.Fatalf("List limit: %v %+v", err, limited)
	}
}

func TestRecordRejectsInvalidEntry(t *testing.T) {
	store, err := Open(context.Background(), filepath.Join(t.TempDir(), "l.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	if _, err := store.Record(context.Background(), core.Entry{Reference: "J"}); !errors.Is(err, core.ErrInvalidEntry) {
		t.Fatalf("expected invalid entry, got %v", err)
	}
}
