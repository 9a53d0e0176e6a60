package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"labcert/internal/blob"
	"labcert/internal/config"
	"labcert/internal/ledger"
)

var envKeys = []string{
	"LABCERT_BLOB_DRIVER", "LABCERT_BLOB_FS_ROOT", "LABCERT_BLOB_S3_BUCKET",
	"LABCERT_BLOB_S3_REGION", "LABCERT_BLOB_S3_ENDPOINT", "LABCERT_BLOB_S3_PATH_STYLE",
	"LABCERT_BLOB_MAX_ATTACHMENT_MIB", "LABCERT_LEDGER_DRIVER", "LABCERT_LEDGER_PATH",
	"LABCERT_LEDGER_DSN", "LABCERT_REPORT_TYPE", "LABCERT_FOOTER_LEFT",
	"LABCERT_LOG_LEVEL", "LABCERT_LOG_FORMAT",
}

// isolate points HOME and the working directory at empty temp dirs and
// blanks every override variable.
func isolate(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Chdir(t.TempDir())
	for _, k := range envKeys {
		t.Setenv(k, "")
	}
	return home
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadDefaultsWhenNoFile(t *testing.T) {
	home := isolate(t)

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}
	if resolved != filepath.Join(home, ".config", "labcert", "config.toml") {
		t.Fatalf("unexpected resolved path %q", resolved)
	}
	if cfg.Blob.Driver != "fs" || cfg.Ledger.Driver != "sqlite" {
		t.Fatalf("unexpected drivers: blob=%q ledger=%q", cfg.Blob.Driver, cfg.Ledger.Driver)
	}
	if want := filepath.Join(home, ".local", "share", "labcert", "blobs"); cfg.Blob.FSRoot != want {
		t.Fatalf("unexpected fs root: got %q want %q", cfg.Blob.FSRoot, want)
	}
	if cfg.MaxAttachmentBytes() != 64<<20 {
		t.Fatalf("unexpected attachment limit %d", cfg.MaxAttachmentBytes())
	}
	if got := cfg.FooterTemplate().PageText(2, 5); got != "Page 2 of 5" {
		t.Fatalf("unexpected page text %q", got)
	}
	if cfg.Logging.Format != "console" || cfg.Logging.Level != "info" {
		t.Fatalf("unexpected logging defaults %+v", cfg.Logging)
	}
	if !cfg.RenderOptions().CreationDate.IsZero() {
		t.Fatal("expected render creation date to be left to the renderer default")
	}
}

func TestLoadProjectFile(t *testing.T) {
	isolate(t)
	if err := os.WriteFile("labcert.toml", []byte("[report]\nreport_type = \"Clearance Certificate\"\n"), 0o600); err != nil {
		t.Fatalf("write project config: %v", err)
	}
	cfg, _, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists || cfg.Report.ReportType != "Clearance Certificate" {
		t.Fatalf("expected project config to load, got exists=%v type=%q", exists, cfg.Report.ReportType)
	}
}

func TestLoadFileValues(t *testing.T) {
	isolate(t)
	path := writeConfig(t, `
[blob]
driver = "S3"
max_attachment_mib = 8

[blob.s3]
bucket = "certs"
region = "eu-west-2"
endpoint = "http://minio:9000"
path_style = true

[ledger]
driver = "postgres"
dsn = "postgres://labcert@db/labcert"

[render]
page_size = "Letter"
orientation = "landscape"
compress = false
author = "Harbour Labs"
creation_date = "2024-03-07"

[report]
footer_left = "Harbour Labs Ltd"
page_format = "%d / %d"
archive_issued = true

[logging]
format = "JSON"
level = "debug"
`)
	cfg, resolved, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists || resolved != path {
		t.Fatalf("expected %q to be used, got %q exists=%v", path, resolved, exists)
	}

	bc := cfg.BlobConfig()
	if bc.Driver != blob.DriverS3 || bc.S3.Bucket != "certs" || bc.S3.Region != "eu-west-2" || !bc.S3.PathStyle {
		t.Fatalf("unexpected blob config %+v", bc)
	}
	if cfg.MaxAttachmentBytes() != 8<<20 {
		t.Fatalf("unexpected attachment limit %d", cfg.MaxAttachmentBytes())
	}
	lc := cfg.LedgerConfig()
	if lc.Driver != ledger.DriverPostgres || lc.DSN != "postgres://labcert@db/labcert" {
		t.Fatalf("unexpected ledger config %+v", lc)
	}
	ro := cfg.RenderOptions()
	if ro.PageSize != "Letter" || ro.Orientation != "L" || ro.Compress || ro.Author != "Harbour Labs" {
		t.Fatalf("unexpected render options %+v", ro)
	}
	if ro.CreationDate.Format("2006-01-02") != "2024-03-07" {
		t.Fatalf("unexpected creation date %v", ro.CreationDate)
	}
	ft := cfg.FooterTemplate()
	if ft.Left != "Harbour Labs Ltd" || ft.PageText(1, 3) != "1 / 3" {
		t.Fatalf("unexpected footer %+v", ft)
	}
	if !cfg.Report.ArchiveIssued || cfg.Report.ReplaceArchived {
		t.Fatalf("unexpected archive flags %+v", cfg.Report)
	}
	lo := cfg.LoggingOptions()
	if lo.Format != "json" || lo.Level != "debug" {
		t.Fatalf("unexpected logging options %+v", lo)
	}
}

func TestEnvironmentOverridesFile(t *testing.T) {
	isolate(t)
	path := writeConfig(t, "[ledger]\ndriver = \"sqlite\"\n[logging]\nlevel = \"warn\"\n")
	t.Setenv("LABCERT_LEDGER_DRIVER", "memory")
	t.Setenv("LABCERT_LOG_LEVEL", "error")
	t.Setenv("LABCERT_BLOB_DRIVER", "memory")
	t.Setenv("LABCERT_BLOB_MAX_ATTACHMENT_MIB", "2")
	t.Setenv("LABCERT_FOOTER_LEFT", "From env")

	cfg, _, _, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Ledger.Driver != "memory" || cfg.Blob.Driver != "memory" {
		t.Fatalf("expected env drivers, got ledger=%q blob=%q", cfg.Ledger.Driver, cfg.Blob.Driver)
	}
	if cfg.Logging.Level != "error" {
		t.Fatalf("expected env log level, got %q", cfg.Logging.Level)
	}
	if cfg.MaxAttachmentBytes() != 2<<20 {
		t.Fatalf("unexpected attachment limit %d", cfg.MaxAttachmentBytes())
	}
	if cfg.Report.FooterLeft != "From env" {
		t.Fatalf("unexpected footer %q", cfg.Report.FooterLeft)
	}
}

func TestEnvironmentRejectsMalformedNumbers(t *testing.T) {
	isolate(t)
	t.Setenv("LABCERT_BLOB_S3_PATH_STYLE", "maybe")
	if _, _, _, err := config.Load(""); err == nil || !strings.Contains(err.Error(), "LABCERT_BLOB_S3_PATH_STYLE") {
		t.Fatalf("expected path style error, got %v", err)
	}
}

func TestValidationErrors(t *testing.T) {
	cases := map[string]struct {
		body string
		want string
	}{
		"s3 without bucket":    {"[blob]\ndriver = \"s3\"\n", "blob.s3.bucket"},
		"unknown blob driver":  {"[blob]\ndriver = \"ftp\"\n", "blob.driver"},
		"postgres without dsn": {"[ledger]\ndriver = \"postgres\"\n", "ledger.dsn"},
		"unknown ledger":       {"[ledger]\ndriver = \"mysql\"\n", "ledger.driver"},
		"page size":            {"[render]\npage_size = \"B9\"\n", "render.page_size"},
		"orientation":          {"[render]\norientation = \"sideways\"\n", "render.orientation"},
		"creation date":        {"[render]\ncreation_date = \"07/03/2024\"\n", "render.creation_date"},
		"page format":          {"[report]\npage_format = \"Page %d\"\n", "report.page_format"},
		"log level":            {"[logging]\nlevel = \"chatty\"\n", "logging.level"},
		"bad toml":             {"[blob\n", "parse config"},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			isolate(t)
			_, _, _, err := config.Load(writeConfig(t, tc.body))
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("expected error mentioning %q, got %v", tc.want, err)
			}
		})
	}
}

func TestCreateSampleLoads(t *testing.T) {
	isolate(t)
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample: %v", err)
	}
	cfg, _, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("sample config should load: %v", err)
	}
	if !exists {
		t.Fatal("expected sample file to exist")
	}
	if cfg.Render.Orientation != "P" || cfg.Report.PageFormat != "Page %d of %d" {
		t.Fatalf("unexpected sample values %+v %+v", cfg.Render, cfg.Report)
	}
}

func TestEnsureDirectories(t *testing.T) {
	home := isolate(t)
	cfg, _, _, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories: %v", err)
	}
	for _, dir := range []string{
		filepath.Join(home, ".local", "share", "labcert", "blobs"),
		filepath.Join(home, ".local", "share", "labcert"),
	} {
		if info, err := os.Stat(dir); err != nil || !info.IsDir() {
			t.Fatalf("expected directory %q: %v", dir, err)
		}
	}
}
