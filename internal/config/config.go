package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"

	"labcert/internal/blob"
	"labcert/internal/certificate"
	"labcert/internal/ledger"
	"labcert/internal/logging"
	"labcert/internal/render"
)

//go:embed sample_config.toml
var sampleConfig string

// S3 configures the s3 blob driver. Credentials come from the default AWS
// chain.
type S3 struct {
	Bucket    string `toml:"bucket"`
	Region    string `toml:"region"`
	Endpoint  string `toml:"endpoint"`
	PathStyle bool   `toml:"path_style"`
}

// Blob selects where lab certificates and issued reports are stored.
type Blob struct {
	Driver           string `toml:"driver"`
	FSRoot           string `toml:"fs_root"`
	MaxAttachmentMiB int    `toml:"max_attachment_mib"`
	S3               S3     `toml:"s3"`
}

// Ledger selects the issuance ledger backend.
type Ledger struct {
	Driver string `toml:"driver"`
	Path   string `toml:"path"`
	DSN    string `toml:"dsn"`
}

// Render holds page geometry and document metadata.
type Render struct {
	PageSize    string `toml:"page_size"`
	Orientation string `toml:"orientation"`
	Compress    bool   `toml:"compress"`
	Author      string `toml:"author"`
	// CreationDate is a YYYY-MM-DD date stamped into PDF metadata. Empty
	// keeps the fixed default so output stays reproducible.
	CreationDate string `toml:"creation_date"`
}

// Report holds certificate naming and footer text.
type Report struct {
	ReportType string `toml:"report_type"`
	FooterLeft string `toml:"footer_left"`
	PageFormat string `toml:"page_format"`
	// ArchiveIssued stores each issued certificate in the blob store.
	ArchiveIssued bool `toml:"archive_issued"`
	// ReplaceArchived overwrites an earlier archived copy with the same name.
	ReplaceArchived bool `toml:"replace_archived"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format  string   `toml:"format"`
	Level   string   `toml:"level"`
	Outputs []string `toml:"outputs"`
}

// Config is the complete labcert configuration.
type Config struct {
	Blob    Blob    `toml:"blob"`
	Ledger  Ledger  `toml:"ledger"`
	Render  Render  `toml:"render"`
	Report  Report  `toml:"report"`
	Logging Logging `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath(defaultConfigPath)
}

// Load locates, parses, and validates a configuration file. A missing file
// is not an error; defaults and environment overrides still apply. It returns
// the resolved path and whether that file existed.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := expandPath(defaultConfigPath)
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs(projectConfigName)
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}

// EnsureDirectories creates the local directories the configured drivers
// write into.
func (c *Config) EnsureDirectories() error {
	var dirs []string
	if c.Blob.Driver == string(blob.DriverFilesystem) {
		dirs = append(dirs, c.Blob.FSRoot)
	}
	if c.Ledger.Driver == string(ledger.DriverSQLite) {
		dirs = append(dirs, filepath.Dir(c.Ledger.Path))
	}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// BlobConfig returns the blob store settings.
func (c *Config) BlobConfig() blob.Config {
	return blob.Config{
		Driver: blob.Driver(c.Blob.Driver),
		FSRoot: c.Blob.FSRoot,
		S3: blob.S3Config{
			Bucket:    c.Blob.S3.Bucket,
			Region:    c.Blob.S3.Region,
			Endpoint:  c.Blob.S3.Endpoint,
			PathStyle: c.Blob.S3.PathStyle,
		},
	}
}

// MaxAttachmentBytes is the largest lab certificate accepted.
func (c *Config) MaxAttachmentBytes() int64 {
	return int64(c.Blob.MaxAttachmentMiB) << 20
}

// LedgerConfig returns the issuance ledger settings.
func (c *Config) LedgerConfig() ledger.Config {
	return ledger.Config{
		Driver: ledger.Driver(c.Ledger.Driver),
		Path:   c.Ledger.Path,
		DSN:    c.Ledger.DSN,
	}
}

// RenderOptions returns the layout engine options.
func (c *Config) RenderOptions() render.Options {
	opts := render.Options{
		PageSize:    c.Render.PageSize,
		Orientation: c.Render.Orientation,
		Compress:    c.Render.Compress,
		Author:      c.Render.Author,
	}
	if c.Render.CreationDate != "" {
		// Validated in Validate.
		opts.CreationDate, _ = time.Parse(time.DateOnly, c.Render.CreationDate)
	}
	return opts
}

// FooterTemplate returns the certificate footer.
func (c *Config) FooterTemplate() certificate.FooterTemplate {
	return certificate.FooterTemplate{Left: c.Report.FooterLeft, PageFormat: c.Report.PageFormat}
}

// LoggingOptions returns logger construction options.
func (c *Config) LoggingOptions() logging.Options {
	return logging.Options{
		Level:       c.Logging.Level,
		Format:      c.Logging.Format,
		OutputPaths: c.Logging.Outputs,
	}
}

// LogValue summarises the configuration without secrets.
func (c *Config) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("blob_driver", c.Blob.Driver),
		slog.String("ledger_driver", c.Ledger.Driver),
		slog.String("page_size", c.Render.PageSize),
		slog.String("report_type", c.Report.ReportType),
	)
}
