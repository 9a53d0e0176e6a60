package config

import (
	"errors"
	"fmt"
	"time"

	"labcert/internal/logging"
)

var knownPageSizes = map[string]struct{}{
	"A3": {}, "A4": {}, "A5": {}, "Letter": {}, "Legal": {},
}

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateBlob(); err != nil {
		return err
	}
	if err := c.validateLedger(); err != nil {
		return err
	}
	if err := c.validateRender(); err != nil {
		return err
	}
	if err := c.validateReport(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateBlob() error {
	switch c.Blob.Driver {
	case "fs", "memory":
	case "s3":
		if c.Blob.S3.Bucket == "" {
			return errors.New("blob.s3.bucket is required when blob.driver is s3 (or set LABCERT_BLOB_S3_BUCKET)")
		}
	default:
		return fmt.Errorf("blob.driver %q is not supported (fs, s3, memory)", c.Blob.Driver)
	}
	if c.Blob.MaxAttachmentMiB < 0 {
		return fmt.Errorf("blob.max_attachment_mib must be positive, got %d", c.Blob.MaxAttachmentMiB)
	}
	return nil
}

func (c *Config) validateLedger() error {
	switch c.Ledger.Driver {
	case "sqlite", "memory":
	case "postgres":
		if c.Ledger.DSN == "" {
			return errors.New("ledger.dsn is required when ledger.driver is postgres (or set LABCERT_LEDGER_DSN)")
		}
	default:
		return fmt.Errorf("ledger.driver %q is not supported (sqlite, postgres, memory)", c.Ledger.Driver)
	}
	return nil
}

func (c *Config) validateRender() error {
	if _, ok := knownPageSizes[c.Render.PageSize]; !ok {
		return fmt.Errorf("render.page_size %q is not supported (A3, A4, A5, Letter, Legal)", c.Render.PageSize)
	}
	if c.Render.Orientation != "P" && c.Render.Orientation != "L" {
		return fmt.Errorf("render.orientation %q must be portrait or landscape", c.Render.Orientation)
	}
	if c.Render.CreationDate != "" {
		if _, err := time.Parse(time.DateOnly, c.Render.CreationDate); err != nil {
			return fmt.Errorf("render.creation_date must be YYYY-MM-DD: %w", err)
		}
	}
	return nil
}

func (c *Config) validateReport() error {
	if err := c.FooterTemplate().Validate(); err != nil {
		return fmt.Errorf("report.page_format: %w", err)
	}
	return nil
}

func (c *Config) validateLogging() error {
	if _, err := logging.ParseLevel(c.Logging.Level); err != nil {
		return fmt.Errorf("logging.level: %w", err)
	}
	return nil
}
