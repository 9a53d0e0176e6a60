package logging

import (
	"context"
	"io"
	"log/slog"
)

const (
	// FieldComponent names the emitting component; the console handler hoists it.
	FieldComponent = "component"
	// FieldReference is the report or job reference being processed.
	FieldReference = "reference"
	// FieldSampleID identifies the sample a line is about.
	FieldSampleID = "sample_id"
	// FieldErrorKind carries the stable error classification.
	FieldErrorKind = "error_kind"
	// FieldPass is the paginator pass number.
	FieldPass = "pass"
	// FieldPages is a page count.
	FieldPages = "pages"
	// FieldDuration is an elapsed time.
	FieldDuration = "duration"
)

type contextKey int

const (
	referenceKey contextKey = iota
	sampleIDKey
)

// WithReference stores the report reference on ctx.
func WithReference(ctx context.Context, reference string) context.Context {
	return context.WithValue(ctx, referenceKey, reference)
}

// ReferenceFromContext returns the reference stored by WithReference.
func ReferenceFromContext(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(referenceKey).(string)
	return v, ok && v != ""
}

// WithSampleID stores a sample identifier on ctx.
func WithSampleID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, sampleIDKey, id)
}

// SampleIDFromContext returns the identifier stored by WithSampleID.
func SampleIDFromContext(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(sampleIDKey).(string)
	return v, ok && v != ""
}

// ContextFields extracts standardized slog attributes from ctx.
func ContextFields(ctx context.Context) []slog.Attr {
	if ctx == nil {
		return nil
	}
	var fields []slog.Attr
	if ref, ok := ReferenceFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldReference, ref))
	}
	if id, ok := SampleIDFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldSampleID, id))
	}
	return fields
}

// WithContext returns logger augmented with fields derived from ctx.
func WithContext(ctx context.Context, logger *slog.Logger) *slog.Logger {
	if logger == nil {
		logger = NewNop()
	}
	fields := ContextFields(ctx)
	if len(fields) == 0 {
		return logger
	}
	args := make([]any, 0, len(fields))
	for _, f := range fields {
		args = append(args, f)
	}
	return logger.With(args...)
}

// NewComponentLogger tags logger with a component name.
func NewComponentLogger(logger *slog.Logger, component string) *slog.Logger {
	if logger == nil {
		logger = NewNop()
	}
	return logger.With(slog.String(FieldComponent, component))
}

// NewNop returns a logger that discards everything.
func NewNop() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError + 1}))
}
