package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"labcert/internal/ledger/core"
)

func TestStoreRecordGetList(t *testing.T) {
	ctx := context.Background()
	s := New()
	if s.Driver() != core.DriverMemory {
		t.Fatalf("unexpected driver %s", s.Driver())
	}
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	for i, ref := range []string{"J-2", "J-1", "J-2"} {
		if _, err := s.Record(ctx, core.Entry{Reference: ref, Filename: "f.pdf", MainPages: 1, IssuedAt: base.Add(time.Duration(i) * time.Hour)}); err != nil {
			t.Fatalf("record %d: %v", i, err)
		}
	}
	all, err := s.List(ctx, core.Query{})
	if err != nil || len(all) != 3 || all[0].Reference != "J-2" || all[1].Reference != "J-1" {
		t.Fatalf("list all: %v %+v", err, all)
	}
	byRef, err := s.List(ctx, core.Query{Reference: "J-2", Limit: 1})
	if err != nil || len(byRef) != 1 || !byRef[0].IssuedAt.Equal(base) {
		t.Fatalf("list by reference: %v %+v", err, byRef)
	}
	got, err := s.Get(ctx, all[1].ID)
	if err != nil || got != all[1] {
		t.Fatalf("get: %v %+v", err, got)
	}
	if _, err := s.Get(ctx, "nope"); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if _, err := s.Record(ctx, core.Entry{ID: all[0].ID, Reference: "J", Filename: "f", MainPages: 1}); !errors.Is(err, core.ErrDuplicate) {
		t.Fatalf("expected duplicate, got %v", err)
	}
	if _, err := s.Record(ctx, core.Entry{Reference: "J"}); !errors.Is(err, core.ErrInvalidEntry) {
		t.Fatalf("expected invalid, got %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
}

func TestStoreHonoursCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	s := New()
	if _, err := s.Record(ctx, core.Entry{Reference: "J", Filename: "f", MainPages: 1}); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected canceled, got %v", err)
	}
	if _, err := s.List(ctx, core.Query{}); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected canceled list, got %v", err)
	}
}
