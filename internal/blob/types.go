// Package blob is the entry point for blob storage. It re-exports the core
// abstractions and is the only package allowed to construct infra drivers.
package blob

import (
	"labcert/internal/blob/core"
)

type (
	// Driver identifies a blob backend driver.
	Driver = core.Driver
	// PutOptions configures a blob write.
	PutOptions = core.PutOptions
	// SignedURLOptions configures URL pre-signing.
	SignedURLOptions = core.SignedURLOptions
	// Info describes stored blob metadata.
	Info = core.Info
	// Store is the interface for blob storage backends.
	Store = core.Store
)

const (
	// DriverFilesystem is the local filesystem driver.
	DriverFilesystem = core.DriverFilesystem
	// DriverS3 is the S3-compatible driver.
	DriverS3 = core.DriverS3
	// DriverMemory is the in-memory test driver.
	DriverMemory = core.DriverMemory
)

var (
	// ErrUnsupported indicates an operation isn't supported by a driver.
	ErrUnsupported = core.ErrUnsupported
	// ErrNotFound indicates the requested key is not stored.
	ErrNotFound = core.ErrNotFound
	// ErrExists indicates a create-only write hit an existing key.
	ErrExists = core.ErrExists
	// ErrInvalidKey indicates a key the backend cannot store.
	ErrInvalidKey = core.ErrInvalidKey
	// ErrTooLarge indicates an object exceeds the read limit.
	ErrTooLarge = core.ErrTooLarge
)
