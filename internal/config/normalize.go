package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.applyEnv(); err != nil {
		return err
	}
	if err := c.normalizeBlob(); err != nil {
		return err
	}
	if err := c.normalizeLedger(); err != nil {
		return err
	}
	c.normalizeRender()
	c.normalizeReport()
	c.normalizeLogging()
	return nil
}

// applyEnv overrides file values with any LABCERT_* variables that are set
// and non-empty.
func (c *Config) applyEnv() error {
	str := func(key string, dst *string) {
		if v, ok := os.LookupEnv(key); ok && strings.TrimSpace(v) != "" {
			*dst = strings.TrimSpace(v)
		}
	}
	str("LABCERT_BLOB_DRIVER", &c.Blob.Driver)
	str("LABCERT_BLOB_FS_ROOT", &c.Blob.FSRoot)
	str("LABCERT_BLOB_S3_BUCKET", &c.Blob.S3.Bucket)
	str("LABCERT_BLOB_S3_REGION", &c.Blob.S3.Region)
	str("LABCERT_BLOB_S3_ENDPOINT", &c.Blob.S3.Endpoint)
	str("LABCERT_LEDGER_DRIVER", &c.Ledger.Driver)
	str("LABCERT_LEDGER_PATH", &c.Ledger.Path)
	str("LABCERT_LEDGER_DSN", &c.Ledger.DSN)
	str("LABCERT_REPORT_TYPE", &c.Report.ReportType)
	str("LABCERT_FOOTER_LEFT", &c.Report.FooterLeft)
	str("LABCERT_LOG_LEVEL", &c.Logging.Level)
	str("LABCERT_LOG_FORMAT", &c.Logging.Format)

	if v, ok := os.LookupEnv("LABCERT_BLOB_S3_PATH_STYLE"); ok && strings.TrimSpace(v) != "" {
		b, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("LABCERT_BLOB_S3_PATH_STYLE: %w", err)
		}
		c.Blob.S3.PathStyle = b
	}
	if v, ok := os.LookupEnv("LABCERT_BLOB_MAX_ATTACHMENT_MIB"); ok && strings.TrimSpace(v) != "" {
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("LABCERT_BLOB_MAX_ATTACHMENT_MIB: %w", err)
		}
		c.Blob.MaxAttachmentMiB = n
	}
	return nil
}

func (c *Config) normalizeBlob() error {
	c.Blob.Driver = strings.ToLower(strings.TrimSpace(c.Blob.Driver))
	if c.Blob.Driver == "" {
		c.Blob.Driver = defaultBlobDriver
	}
	if strings.TrimSpace(c.Blob.FSRoot) == "" {
		c.Blob.FSRoot = defaultBlobFSRoot
	}
	var err error
	if c.Blob.FSRoot, err = expandPath(c.Blob.FSRoot); err != nil {
		return fmt.Errorf("blob.fs_root: %w", err)
	}
	if c.Blob.MaxAttachmentMiB == 0 {
		c.Blob.MaxAttachmentMiB = defaultMaxAttachMiB
	}
	c.Blob.S3.Bucket = strings.TrimSpace(c.Blob.S3.Bucket)
	c.Blob.S3.Region = strings.TrimSpace(c.Blob.S3.Region)
	c.Blob.S3.Endpoint = strings.TrimSpace(c.Blob.S3.Endpoint)
	return nil
}

func (c *Config) normalizeLedger() error {
	c.Ledger.Driver = strings.ToLower(strings.TrimSpace(c.Ledger.Driver))
	if c.Ledger.Driver == "" {
		c.Ledger.Driver = defaultLedgerDriver
	}
	if strings.TrimSpace(c.Ledger.Path) == "" {
		c.Ledger.Path = defaultLedgerPath
	}
	var err error
	if c.Ledger.Path, err = expandPath(c.Ledger.Path); err != nil {
		return fmt.Errorf("ledger.path: %w", err)
	}
	c.Ledger.DSN = strings.TrimSpace(c.Ledger.DSN)
	return nil
}

func (c *Config) normalizeRender() {
	c.Render.PageSize = strings.TrimSpace(c.Render.PageSize)
	if c.Render.PageSize == "" {
		c.Render.PageSize = defaultPageSize
	}
	c.Render.Orientation = strings.ToUpper(strings.TrimSpace(c.Render.Orientation))
	switch c.Render.Orientation {
	case "", "PORTRAIT":
		c.Render.Orientation = "P"
	case "LANDSCAPE":
		c.Render.Orientation = "L"
	}
	c.Render.CreationDate = strings.TrimSpace(c.Render.CreationDate)
}

func (c *Config) normalizeReport() {
	c.Report.ReportType = strings.TrimSpace(c.Report.ReportType)
	if c.Report.ReportType == "" {
		c.Report.ReportType = defaultReportType
	}
	if strings.TrimSpace(c.Report.PageFormat) == "" {
		c.Report.PageFormat = defaultPageFormat
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console", "text":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
