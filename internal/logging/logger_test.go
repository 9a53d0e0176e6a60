package logging_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"labcert/internal/logging"
)

func TestConsoleLoggerFormatsComponentAndFields(t *testing.T) {
	var buf bytes.Buffer
	logger, err := logging.New(logging.Options{Level: "info", Format: "console", Writer: &buf})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	logger = logging.NewComponentLogger(logger, "paginator")
	logger.Info("rendered", slog.Int(logging.FieldPages, 3), slog.String("note", "two words"))
	logger.Debug("hidden")

	line := buf.String()
	if !strings.Contains(line, " INFO paginator: rendered pages=3 note=\"two words\"") {
		t.Fatalf("unexpected console line %q", line)
	}
	if strings.Contains(line, "hidden") || strings.Contains(line, ".go:") {
		t.Fatalf("debug line or caller leaked: %q", line)
	}
}

func TestJSONLoggerUsesTSAndLowercaseLevel(t *testing.T) {
	var buf bytes.Buffer
	logger, err := logging.New(logging.Options{Level: "warn", Format: "json", Writer: &buf})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	logger.Info("skipped")
	logger.Warn("drift", slog.Group("pass", slog.Int("n", 2)))

	var entry map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry); err != nil {
		t.Fatalf("decode %q: %v", buf.String(), err)
	}
	if entry["level"] != "warn" || entry["msg"] != "drift" || entry["ts"] == nil {
		t.Fatalf("unexpected entry %v", entry)
	}
}

func TestNewRejectsUnknownFormatAndLevel(t *testing.T) {
	if _, err := logging.New(logging.Options{Format: "xml"}); err == nil {
		t.Fatal("expected format error")
	}
	if _, err := logging.New(logging.Options{Level: "loud"}); err == nil {
		t.Fatal("expected level error")
	}
}

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{"": slog.LevelInfo, "DEBUG": slog.LevelDebug, "warning": slog.LevelWarn, " error ": slog.LevelError}
	for in, want := range cases {
		got, err := logging.ParseLevel(in)
		if err != nil || got != want {
			t.Fatalf("ParseLevel(%q) = %v, %v", in, got, err)
		}
	}
}

func TestFileOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "certgen.log")
	logger, err := logging.New(logging.Options{Level: "debug", OutputPaths: []string{path, path}})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	logger.Debug("with caller")
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if strings.Count(string(content), "with caller") != 1 || !strings.Contains(string(content), "logger_test.go:") {
		t.Fatalf("unexpected file content %q", content)
	}
}

func TestWithContextAddsFields(t *testing.T) {
	var buf bytes.Buffer
	logger, err := logging.New(logging.Options{Writer: &buf})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	ctx := logging.WithSampleID(logging.WithReference(context.Background(), "J-42"), "S1")
	logging.WithContext(ctx, logger).Info("assembled")
	if out := buf.String(); !strings.Contains(out, "reference=J-42") || !strings.Contains(out, "sample_id=S1") {
		t.Fatalf("missing context fields: %q", out)
	}
	if got := logging.WithContext(context.Background(), logger); got != logger {
		t.Fatal("expected same logger when context has no fields")
	}
	if logging.WithContext(ctx, nil) == nil {
		t.Fatal("expected nop fallback")
	}
}

func TestNewNopDiscards(t *testing.T) {
	logger := logging.NewNop()
	if logger.Enabled(context.Background(), slog.LevelError) {
		t.Fatal("nop logger should not be enabled")
	}
}
