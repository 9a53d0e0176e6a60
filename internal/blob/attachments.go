package blob

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"
)

// DefaultMaxAttachmentBytes bounds how much of a stored certificate Fetch reads.
const DefaultMaxAttachmentBytes int64 = 64 << 20

const pdfContentType = "application/pdf"

// Attachments stores external lab certificates and issued reports on top of
// a Store under stable key layouts.
type Attachments struct {
	store    Store
	maxBytes int64
	expiry   time.Duration
}

// AttachmentOption customises an Attachments.
type AttachmentOption func(*Attachments)

// WithMaxBytes overrides DefaultMaxAttachmentBytes. Non-positive values are ignored.
func WithMaxBytes(n int64) AttachmentOption {
	return func(a *Attachments) {
		if n > 0 {
			a.maxBytes = n
		}
	}
}

// WithURLExpiry sets the lifetime of URLs returned by Save.
func WithURLExpiry(d time.Duration) AttachmentOption {
	return func(a *Attachments) { a.expiry = d }
}

// NewAttachments wraps store.
func NewAttachments(store Store, opts ...AttachmentOption) *Attachments {
	a := &Attachments{store: store, maxBytes: DefaultMaxAttachmentBytes}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Store returns the underlying Store.
func (a *Attachments) Store() Store { return a.store }

// AttachmentKey is where the external lab certificate for reference lives.
func AttachmentKey(reference string) string {
	return "attachments/" + keySegment(reference) + "/lab-certificate.pdf"
}

// IssuedKey is where an issued report for reference is archived.
func IssuedKey(reference, filename string) string {
	return "issued/" + keySegment(reference) + "/" + keySegment(filename)
}

func keySegment(s string) string {
	s = strings.TrimSpace(s)
	s = strings.NewReplacer("/", "-", `\`, "-", "..", "-").Replace(s)
	if s == "" {
		return "_"
	}
	return s
}

// Fetch returns the full content stored under key. Missing keys yield an
// error matching ErrNotFound.
func (a *Attachments) Fetch(ctx context.Context, key string) ([]byte, error) {
	info, rc, err := a.store.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rc.Close() }()
	if info.Size > a.maxBytes {
		return nil, fmt.Errorf("%w: %s is %d bytes (limit %d)", ErrTooLarge, key, info.Size, a.maxBytes)
	}
	data, err := io.ReadAll(io.LimitReader(rc, a.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", key, err)
	}
	if int64(len(data)) > a.maxBytes {
		return nil, fmt.Errorf("%w: %s exceeds %d bytes", ErrTooLarge, key, a.maxBytes)
	}
	return data, nil
}

// Save writes data under key as a PDF. With replace set an existing object is
// removed first; otherwise an existing key yields an error matching ErrExists.
// The returned Info carries a retrieval URL when the driver can sign one.
func (a *Attachments) Save(ctx context.Context, key string, data []byte, metadata map[string]string, replace bool) (Info, error) {
	if replace {
		if _, err := a.store.Delete(ctx, key); err != nil {
			return Info{}, fmt.Errorf("replace %s: %w", key, err)
		}
	}
	info, err := a.store.Put(ctx, key, bytes.NewReader(data), PutOptions{ContentType: pdfContentType, Metadata: metadata})
	if err != nil {
		return Info{}, err
	}
	url, err := a.store.PresignURL(ctx, key, SignedURLOptions{Expiry: a.expiry})
	switch {
	case err == nil:
		info.URL = url
	case !errors.Is(err, ErrUnsupported):
		return info, fmt.Errorf("sign %s: %w", key, err)
	}
	return info, nil
}

// Remove deletes the object under key. A missing key is not an error.
func (a *Attachments) Remove(ctx context.Context, key string) error {
	if _, err := a.store.Delete(ctx, key); err != nil {
		return fmt.Errorf("remove %s: %w", key, err)
	}
	return nil
}

// List returns stored objects under prefix.
func (a *Attachments) List(ctx context.Context, prefix string) ([]Info, error) {
	return a.store.List(ctx, prefix)
}
