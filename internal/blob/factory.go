package blob

import (
	"context"
	"fmt"
	"os"
	"strings"
)

// Config selects and parameterises a blob driver.
type Config struct {
	Driver Driver
	FSRoot string
	S3     S3Config
}

// Open constructs the Store described by cfg. An empty driver selects the
// filesystem driver.
func Open(ctx context.Context, cfg Config) (Store, error) {
	driver := cfg.Driver
	if driver == "" {
		driver = DriverFilesystem
	}
	switch driver {
	case DriverFilesystem:
		return NewFilesystem(cfg.FSRoot)
	case DriverS3:
		return NewS3(ctx, cfg.S3)
	case DriverMemory:
		return NewMemory(), nil
	default:
		return nil, fmt.Errorf("unknown blob driver %q", driver)
	}
}

// ConfigFromEnv reads a Config from the process environment.
//
//	LABCERT_BLOB_DRIVER: fs|s3|memory (default fs)
//	LABCERT_BLOB_FS_ROOT: directory root when driver=fs (default ./blobdata)
//	LABCERT_BLOB_S3_BUCKET / _REGION / _ENDPOINT / _PATH_STYLE: s3 driver
func ConfigFromEnv() Config {
	return Config{
		Driver: Driver(strings.ToLower(strings.TrimSpace(os.Getenv("LABCERT_BLOB_DRIVER")))),
		FSRoot: os.Getenv("LABCERT_BLOB_FS_ROOT"),
		S3: S3Config{
			Bucket:    os.Getenv("LABCERT_BLOB_S3_BUCKET"),
			Region:    os.Getenv("LABCERT_BLOB_S3_REGION"),
			Endpoint:  os.Getenv("LABCERT_BLOB_S3_ENDPOINT"),
			PathStyle: strings.EqualFold(os.Getenv("LABCERT_BLOB_S3_PATH_STYLE"), "true"),
		},
	}
}

// OpenFromEnv is Open(ctx, ConfigFromEnv()).
func OpenFromEnv(ctx context.Context) (Store, error) {
	return Open(ctx, ConfigFromEnv())
}
