// Package core defines the keyed snapshot storage contract shared by the
// localstore drivers.
package core

import (
	"context"
	"errors"
)

// Driver identifies a concrete snapshot storage backend.
type Driver string

const (
	// DriverFilesystem stores one file per key under a root directory.
	DriverFilesystem Driver = "fs"
	// DriverS3 stores one object per key in an S3 / MinIO bucket.
	DriverS3     Driver = "s3"
	DriverMemory Driver = "memory" // in-process, lost on exit
)

// Store persists opaque snapshots under fixed keys. Save always overwrites.
type Store interface {
	// Load returns the payload stored under key; ok is false when the key is absent.
	Load(ctx context.Context, key string) (data []byte, ok bool, err error)
	Save(ctx context.Context, key string, data []byte) error
	// Remove deletes key. Removing an absent key is not an error.
	Remove(ctx context.Context, key string) error
	Driver() Driver
}

// ErrInvalidKey is returned for empty keys or keys that would escape the store root.
var ErrInvalidKey = errors.New("localstore: invalid key")
