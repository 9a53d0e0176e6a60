package config

const (
	defaultConfigPath   = "~/.config/labcert/config.toml"
	projectConfigName   = "labcert.toml"
	defaultBlobDriver   = "fs"
	defaultBlobFSRoot   = "~/.local/share/labcert/blobs"
	defaultMaxAttachMiB = 64
	defaultLedgerDriver = "sqlite"
	defaultLedgerPath   = "~/.local/share/labcert/ledger.db"
	defaultPageSize     = "A4"
	defaultOrientation  = "P"
	defaultReportType   = "Air Monitoring Report"
	defaultPageFormat   = "Page %d of %d"
	defaultLogFormat    = "console"
	defaultLogLevel     = "info"
)

// Default returns the configuration used when no file is present.
func Default() Config {
	return Config{
		Blob: Blob{
			Driver:           defaultBlobDriver,
			FSRoot:           defaultBlobFSRoot,
			MaxAttachmentMiB: defaultMaxAttachMiB,
		},
		Ledger: Ledger{
			Driver: defaultLedgerDriver,
			Path:   defaultLedgerPath,
		},
		Render: Render{
			PageSize:    defaultPageSize,
			Orientation: defaultOrientation,
			Compress:    true,
		},
		Report: Report{
			ReportType: defaultReportType,
			PageFormat: defaultPageFormat,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
