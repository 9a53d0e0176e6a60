package blob

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func TestAttachments_SaveFetch(t *testing.T) {
	ctx := context.Background()
	a := NewAttachments(NewMemory())
	key := AttachmentKey("J-2024/17")
	if key != "attachments/J-2024-17/lab-certificate.pdf" {
		t.Fatalf("unexpected key %q", key)
	}
	if _, err := a.Fetch(ctx, key); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	info, err := a.Save(ctx, key, []byte("%PDF-1.7"), map[string]string{"reference": "J-2024/17"}, false)
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if info.ContentType != "application/pdf" || info.URL != "" {
		t.Fatalf("unexpected info %+v", info)
	}
	if _, err := a.Save(ctx, key, []byte("x"), nil, false); !errors.Is(err, ErrExists) {
		t.Fatalf("expected exists, got %v", err)
	}
	if _, err := a.Save(ctx, key, []byte("%PDF-2"), nil, true); err != nil {
		t.Fatalf("replace: %v", err)
	}
	data, err := a.Fetch(ctx, key)
	if err != nil || string(data) != "%PDF-2" {
		t.Fatalf("fetch: %q %v", data, err)
	}
	list, err := a.List(ctx, "attachments/")
	if err != nil || len(list) != 1 {
		t.Fatalf("list: %+v %v", list, err)
	}
}

func TestAttachments_SizeLimit(t *testing.T) {
	ctx := context.Background()
	a := NewAttachments(NewMemory(), WithMaxBytes(4))
	if _, err := a.Save(ctx, "k", []byte("12345"), nil, false); err != nil {
		t.Fatalf("save: %v", err)
	}
	if _, err := a.Fetch(ctx, "k"); !errors.Is(err, ErrTooLarge) {
		t.Fatalf("expected too large, got %v", err)
	}
}

func TestAttachments_SaveSignsURL(t *testing.T) {
	ctx := context.Background()
	store, err := NewFilesystem(t.TempDir())
	if err != nil {
		t.Fatalf("fs: %v", err)
	}
	a := NewAttachments(store)
	key := IssuedKey("R/9", "Report - R-9 (20240102).pdf")
	info, err := a.Save(ctx, key, []byte("%PDF"), nil, false)
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if !strings.HasPrefix(info.URL, "http://local.blob/issued/R-9/") {
		t.Fatalf("unexpected url %q", info.URL)
	}
	if a.Store() != store {
		t.Fatalf("store accessor mismatch")
	}
}

func TestKeySegment(t *testing.T) {
	cases := map[string]string{"": "_", " a ": "a", "../x": "--x", `a\b`: "a-b"}
	for in, want := range cases {
		if got := keySegment(in); got != want {
			t.Fatalf("keySegment(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestAttachments_Remove(t *testing.T) {
	ctx := context.Background()
	a := NewAttachments(NewMemory())
	if _, err := a.Save(ctx, "issued/R/x.pdf", []byte("%PDF"), nil, false); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := a.Remove(ctx, "issued/R/x.pdf"); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if _, err := a.Fetch(ctx, "issued/R/x.pdf"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected not found after remove, got %v", err)
	}
	if err := a.Remove(ctx, "issued/R/x.pdf"); err != nil {
		t.Fatalf("removing a missing key should succeed: %v", err)
	}
}
