package fs

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"labcert/internal/blob/core"
)

func newTempStore(t *testing.T) *Store {
	t.Helper()
	store, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return store
}

func TestStore_PutGetHeadListDelete(t *testing.T) {
	ctx := context.Background()
	store := newTempStore(t)
	info, err := store.Put(ctx, "attachments/J-100/lab.pdf", bytes.NewReader([]byte("hello")), core.PutOptions{ContentType: "application/pdf", Metadata: map[string]string{"k": "v"}})
	if err != nil {
		t.Fatalf("put: %v", err)
	}
	if info.Key != "attachments/J-100/lab.pdf" || info.Size != 5 || len(info.ETag) != 64 {
		t.Fatalf("unexpected info %+v", info)
	}
	if _, err := store.Put(ctx, "attachments/J-100/lab.pdf", bytes.NewReader([]byte("x")), core.PutOptions{}); !errors.Is(err, core.ErrExists) {
		t.Fatalf("expected exists error, got %v", err)
	}
	h, err := store.Head(ctx, "attachments/J-100/lab.pdf")
	if err != nil {
		t.Fatalf("head: %v", err)
	}
	g, rc, err := store.Get(ctx, "attachments/J-100/lab.pdf")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	b, _ := io.ReadAll(rc)
	if err := rc.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if string(b) != "hello" || g.ETag != h.ETag || g.Metadata["k"] != "v" {
		t.Fatalf("unexpected get %q %+v %+v", b, g, h)
	}
	if _, err := store.Put(ctx, "issued/R-1.pdf", bytes.NewReader([]byte("y")), core.PutOptions{}); err != nil {
		t.Fatalf("put second: %v", err)
	}
	all, err := store.List(ctx, "")
	if err != nil || len(all) != 2 || all[0].Key != "attachments/J-100/lab.pdf" {
		t.Fatalf("list all: %v %+v", err, all)
	}
	some, err := store.List(ctx, "issued/")
	if err != nil || len(some) != 1 || some[0].Key != "issued/R-1.pdf" {
		t.Fatalf("list prefix: %v %+v", err, some)
	}
	url, err := store.PresignURL(ctx, "issued/R-1.pdf", core.SignedURLOptions{})
	if err != nil || url != "http://local.blob/issued/R-1.pdf" {
		t.Fatalf("presign: %q %v", url, err)
	}
	if _, err := store.PresignURL(ctx, "issued/R-1.pdf", core.SignedURLOptions{Method: "PUT"}); !errors.Is(err, core.ErrUnsupported) {
		t.Fatalf("expected unsupported, got %v", err)
	}
	if ok, err := store.Delete(ctx, "issued/R-1.pdf"); err != nil || !ok {
		t.Fatalf("delete: %v %v", ok, err)
	}
	if ok, err := store.Delete(ctx, "issued/R-1.pdf"); err != nil || ok {
		t.Fatalf("second delete should report false: %v %v", ok, err)
	}
	if _, err := os.Stat(filepath.Join(store.root, "issued", "R-1.pdf.meta")); !os.IsNotExist(err) {
		t.Fatalf("sidecar not removed: %v", err)
	}
}

func TestStore_NotFound(t *testing.T) {
	ctx := context.Background()
	store := newTempStore(t)
	if _, _, err := store.Get(ctx, "missing.pdf"); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("get: expected not found, got %v", err)
	}
	if _, err := store.Head(ctx, "missing.pdf"); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("head: expected not found, got %v", err)
	}
}

func TestStore_InvalidKeys(t *testing.T) {
	ctx := context.Background()
	store := newTempStore(t)
	for _, key := range []string{"", "  ", "/abs", "../escape", "a/../../b", "x.meta"} {
		if _, err := store.Put(ctx, key, bytes.NewReader(nil), core.PutOptions{}); !errors.Is(err, core.ErrInvalidKey) {
			t.Fatalf("key %q: expected invalid key, got %v", key, err)
		}
	}
	if _, err := store.PresignURL(ctx, "../x", core.SignedURLOptions{}); !errors.Is(err, core.ErrInvalidKey) {
		t.Fatalf("presign invalid key: %v", err)
	}
}

func TestStore_DefaultRootAndDriver(t *testing.T) {
	t.Chdir(t.TempDir())
	store, err := New("")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if store.root != "./blobdata" || store.Driver() != core.DriverFilesystem {
		t.Fatalf("unexpected store %+v", store)
	}
	if _, err := os.Stat("blobdata"); err != nil {
		t.Fatalf("root not created: %v", err)
	}
}

func TestStore_CorruptSidecar(t *testing.T) {
	ctx := context.Background()
	store := newTempStore(t)
	if _, err := store.Put(ctx, "k.pdf", bytes.NewReader([]byte("z")), core.PutOptions{}); err != nil {
		t.Fatalf("put: %v", err)
	}
	if err := os.WriteFile(filepath.Join(store.root, "k.pdf.meta"), []byte("{"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := store.Head(ctx, "k.pdf"); err == nil || errors.Is(err, core.ErrNotFound) {
		t.Fatalf("expected decode error, got %v", err)
	}
}
