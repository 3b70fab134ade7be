// Package localstore selects and wraps the keyed snapshot storage drivers.
// Callers depend on Store; only this package imports the infra drivers.
package localstore

import (
	"cemeterycore/internal/infra/localstore/fs"
	memorystore "cemeterycore/internal/infra/localstore/memory"
	infraS3 "cemeterycore/internal/infra/localstore/s3"
	"cemeterycore/internal/localstore/core"
	"context"
	"fmt"
)

type (
	// Driver identifies a snapshot storage backend.
	Driver = core.Driver
	// Store persists snapshots under fixed keys.
	Store = core.Store
	// S3Config configures the S3 driver.
	S3Config = infraS3.Config
)

const (
	DriverFilesystem = core.DriverFilesystem
	DriverS3         = core.DriverS3
	DriverMemory     = core.DriverMemory
)

// ErrInvalidKey is returned for keys a driver cannot store.
var ErrInvalidKey = core.ErrInvalidKey

// Config selects a driver and carries its settings.
type Config struct {
	Driver Driver
	FSRoot string
	S3     S3Config
}

// Open constructs the Store named by cfg.Driver (default fs).
func Open(ctx context.Context, cfg Config) (Store, error) {
	driver := cfg.Driver
	if driver == "" {
		driver = DriverFilesystem
	}
	switch driver {
	case DriverFilesystem:
		return fs.New(cfg.FSRoot)
	case DriverS3:
		return infraS3.New(ctx, cfg.S3)
	case DriverMemory:
		return memorystore.New(), nil
	default:
		return nil, fmt.Errorf("unknown localstore driver %s", driver)
	}
}

// NewMemory returns an in-process Store.
func NewMemory() Store { return memorystore.New() }

// NewMockS3ForTests exposes the fake-transport S3 store for cross-package tests.
func NewMockS3ForTests() Store { return infraS3.NewMockForTests() }
