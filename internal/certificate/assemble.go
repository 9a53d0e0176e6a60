package certificate

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"time"

	blobcore "labcert/internal/blob/core"
	"labcert/internal/content"
	ledgercore "labcert/internal/ledger/core"
	"labcert/internal/logging"
	"labcert/internal/observability"
	"labcert/internal/render"
)

// Assembly is everything needed to issue one certificate. External nil
// means no lab certificate was attached.
type Assembly struct {
	ReportType    string
	Reference     string
	Date          time.Time
	Primary       content.Document
	AppendixCover content.Document
	External      []byte
	Footer        FooterTemplate
}

// Output is an issued certificate. It is only ever returned whole.
type Output struct {
	Bytes         []byte
	Filename      string
	MainPages     int
	AppendixPages int
	ExternalPages int
	SHA256        string
	AttachmentKey string
	ArchiveKey    string
	ArchiveURL    string
	LedgerID      string
}

// TotalPages is the page count of Bytes.
func (o Output) TotalPages() int { return o.MainPages + o.AppendixPages + o.ExternalPages }

// AttachmentSource fetches a stored external certificate. A missing key
// yields an error matching blobcore.ErrNotFound.
type AttachmentSource interface {
	Fetch(ctx context.Context, key string) ([]byte, error)
}

// Archiver stores issued certificates. Remove is called when an archived
// certificate was not issued after all.
type Archiver interface {
	Save(ctx context.Context, key string, data []byte, metadata map[string]string, replace bool) (blobcore.Info, error)
	Remove(ctx context.Context, key string) error
}

// IssuanceRecorder receives one entry per issued certificate.
type IssuanceRecorder interface {
	Record(ctx context.Context, e ledgercore.Entry) (ledgercore.Entry, error)
}

// ArchiveKeyFunc maps a reference and filename to an archive key.
type ArchiveKeyFunc func(reference, filename string) string

// Assembler runs paginate then merge and records the result.
type Assembler struct {
	paginator   *Paginator
	merger      *Merger
	logger      *slog.Logger
	metrics     observability.Recorder
	tracer      observability.Tracer
	ledger      IssuanceRecorder
	attachments AttachmentSource
	archive     Archiver
	archiveKey  ArchiveKeyFunc
	replace     bool
}

// Option configures an Assembler.
type Option func(*Assembler)

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(a *Assembler) {
		if l != nil {
			a.logger = l
		}
	}
}

// WithMetrics sets the metrics recorder.
func WithMetrics(r observability.Recorder) Option {
	return func(a *Assembler) {
		if r != nil {
			a.metrics = r
		}
	}
}

// WithTracer sets the span tracer.
func WithTracer(t observability.Tracer) Option {
	return func(a *Assembler) {
		if t != nil {
			a.tracer = t
		}
	}
}

// WithLedger records every issued certificate. A ledger failure fails the
// assembly.
func WithLedger(l IssuanceRecorder) Option {
	return func(a *Assembler) { a.ledger = l }
}

// WithAttachments sets the source used by AssembleFromStore.
func WithAttachments(src AttachmentSource) Option {
	return func(a *Assembler) { a.attachments = src }
}

// WithArchive stores issued certificates under keyFn(reference, filename).
// With replace set an earlier issue under the same key is overwritten.
func WithArchive(ar Archiver, keyFn ArchiveKeyFunc, replace bool) Option {
	return func(a *Assembler) {
		a.archive = ar
		a.archiveKey = keyFn
		a.replace = replace
	}
}

// NewAssembler builds an Assembler over the given layout engine.
func NewAssembler(r render.Renderer, opts ...Option) *Assembler {
	a := &Assembler{
		merger:  NewMerger(),
		logger:  logging.NewNop(),
		metrics: observability.Noop{},
		tracer:  observability.Noop{},
	}
	for _, opt := range opts {
		opt(a)
	}
	a.logger = logging.NewComponentLogger(a.logger, "certificate")
	a.paginator = NewPaginator(r, a.logger)
	return a
}

// AssembleFromStore fetches the external certificate stored under key and
// assembles with it, replacing in.External.
func (a *Assembler) AssembleFromStore(ctx context.Context, in Assembly, key string) (Output, error) {
	if a.attachments == nil {
		return Output{}, wrap(ErrMissingAttachment, "fetch", "no attachment store configured", nil)
	}
	var data []byte
	err := a.step(ctx, observability.OpFetch, func(ctx context.Context) error {
		var err error
		data, err = a.attachments.Fetch(ctx, key)
		return err
	})
	switch {
	case errors.Is(err, blobcore.ErrNotFound):
		return Output{}, wrap(ErrMissingAttachment, "fetch", "no lab certificate stored at "+key+"; "+attachHint, err)
	case errors.Is(err, blobcore.ErrTooLarge):
		return Output{}, wrap(ErrCorruptAttachment, "fetch", "", err)
	case err != nil:
		return Output{}, err
	}
	if data == nil {
		data = []byte{}
	}
	in.External = data
	return a.assemble(ctx, in, key)
}

// Assemble paginates the primary and appendix sections, merges the external
// certificate and returns the finished document. Any failure returns an empty
// Output.
func (a *Assembler) Assemble(ctx context.Context, in Assembly) (Output, error) {
	return a.assemble(ctx, in, "")
}

func (a *Assembler) assemble(ctx context.Context, in Assembly, attachmentKey string) (out Output, err error) {
	started := time.Now()
	ctx = logging.WithReference(ctx, in.Reference)
	ctx = observability.WithTraceReference(ctx, in.Reference)
	ctx, span := a.tracer.Start(ctx, observability.OpAssemble)
	logger := logging.WithContext(ctx, a.logger)
	defer func() {
		elapsed := time.Since(started)
		span.End(err)
		a.metrics.Observe(ctx, observability.OpAssemble, Kind(err), elapsed)
		if err != nil {
			out = Output{}
			logger.Warn("certificate not issued",
				slog.String(logging.FieldErrorKind, Kind(err)),
				slog.Any("error", err),
			)
			return
		}
		logger.Info("certificate issued",
			slog.String("filename", out.Filename),
			slog.Int(logging.FieldPages, out.TotalPages()),
			slog.Duration(logging.FieldDuration, elapsed),
		)
	}()

	if err = ctx.Err(); err != nil {
		return Output{}, err
	}
	if _, err = CheckAttachment(in.External); err != nil {
		return Output{}, err
	}

	var pag Pagination
	err = a.step(ctx, observability.OpPaginate, func(ctx context.Context) error {
		var err error
		pag, err = a.paginator.Paginate(ctx, in.Primary, in.AppendixCover, in.Footer)
		return err
	})
	if err != nil {
		return Output{}, err
	}
	if err = ctx.Err(); err != nil {
		return Output{}, err
	}

	var merged Merged
	err = a.step(ctx, observability.OpMerge, func(ctx context.Context) error {
		var err error
		merged, err = a.merger.MergeCounted(ctx, pag.Bytes, in.External)
		return err
	})
	if err != nil {
		return Output{}, err
	}
	if merged.PrimaryPages != pag.TotalPages() {
		return Output{}, wrap(ErrLayoutEngine, "merge", "rendered page count changed during merge", nil)
	}

	sum := sha256.Sum256(merged.Bytes)
	out = Output{
		Bytes:         merged.Bytes,
		Filename:      FileName(in.ReportType, in.Reference, in.Date),
		MainPages:     pag.MainPages,
		AppendixPages: pag.AppendixPages,
		ExternalPages: merged.ExternalPages,
		SHA256:        hex.EncodeToString(sum[:]),
		AttachmentKey: attachmentKey,
	}

	if err = a.archiveOutput(ctx, in, &out); err != nil {
		return Output{}, err
	}
	if err = a.recordOutput(ctx, in, &out); err == nil {
		err = ctx.Err()
	}
	if err != nil {
		a.discardArchive(ctx, logger, out.ArchiveKey)
		return Output{}, err
	}
	return out, nil
}

func (a *Assembler) archiveOutput(ctx context.Context, in Assembly, out *Output) error {
	if a.archive == nil || a.archiveKey == nil {
		return nil
	}
	key := a.archiveKey(in.Reference, out.Filename)
	md := map[string]string{"reference": in.Reference, "sha256": out.SHA256}
	info, err := a.archive.Save(ctx, key, out.Bytes, md, a.replace)
	if err != nil {
		return wrapPlain("archive", err)
	}
	out.ArchiveKey = key
	out.ArchiveURL = info.URL
	return nil
}

// discardArchive removes an archived copy whose issue did not complete, so
// the archive never holds a certificate the ledger does not know about.
func (a *Assembler) discardArchive(ctx context.Context, logger *slog.Logger, key string) {
	if key == "" {
		return
	}
	if err := a.archive.Remove(context.WithoutCancel(ctx), key); err != nil {
		logger.Warn("archived certificate left behind", slog.String("archive_key", key), slog.Any("error", err))
	}
}

func (a *Assembler) recordOutput(ctx context.Context, in Assembly, out *Output) error {
	if a.ledger == nil {
		return nil
	}
	return a.step(ctx, observability.OpRecord, func(ctx context.Context) error {
		entry, err := a.ledger.Record(ctx, ledgercore.Entry{
			Reference:     in.Reference,
			ReportType:    reportTypeOrDefault(in.ReportType),
			Filename:      out.Filename,
			MainPages:     out.MainPages,
			AppendixPages: out.AppendixPages,
			ExternalPages: out.ExternalPages,
			SizeBytes:     int64(len(out.Bytes)),
			SHA256:        out.SHA256,
			AttachmentKey: out.AttachmentKey,
			ArchiveKey:    out.ArchiveKey,
		})
		if err != nil {
			return wrapPlain("record issuance", err)
		}
		out.LedgerID = entry.ID
		return nil
	})
}

// step runs fn inside a span and records its latency and outcome.
func (a *Assembler) step(ctx context.Context, op string, fn func(context.Context) error) error {
	started := time.Now()
	ctx, span := a.tracer.Start(ctx, op)
	err := fn(ctx)
	span.End(err)
	a.metrics.Observe(ctx, op, Kind(err), time.Since(started))
	return err
}

func wrapPlain(operation string, err error) error {
	if isContextErr(err) {
		return err
	}
	return fmt.Errorf("%s: %w", operation, err)
}

func reportTypeOrDefault(rt string) string {
	if rt == "" {
		return DefaultReportType
	}
	return rt
}
