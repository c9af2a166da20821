// Package blob provides storage drivers that hold opaque values under
// well-known keys. The visit store keeps its whole collection in one of them.
package blob

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Get when no value is stored under the key.
var ErrNotFound = errors.New("blob not found")

// Driver identifies a storage backend.
type Driver string

const (
	DriverMemory Driver = "memory"
	DriverFile   Driver = "file"
	DriverSQLite Driver = "sqlite"
	DriverS3     Driver = "s3"
)

// ValidDrivers is the set of recognized drivers.
var ValidDrivers = []Driver{DriverMemory, DriverFile, DriverSQLite, DriverS3}

// IsValid checks if a driver is recognized.
func (d Driver) IsValid() bool {
	for _, v := range ValidDrivers {
		if d == v {
			return true
		}
	}
	return false
}

// Store reads and replaces whole values by key.
// Put overwrites any previous value.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, data []byte) error
}
