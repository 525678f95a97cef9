// Package store persists encoded table snapshots. The engine never sees a
// store; the host loads a blob, decodes it, applies an operation and saves the
// re-encoded result.
package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ErrNotFound is returned when no snapshot exists for a table.
var ErrNotFound = errors.New("table not found")

// Store is a key-value store of table snapshots keyed by game id.
type Store interface {
	Load(ctx context.Context, id string) ([]byte, error)
	Save(ctx context.Context, id string, blob []byte) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]string, error)
	Close() error
}

// Drivers accepted by Open.
const (
	DriverMemory = "memory"
	DriverFile   = "file"
	DriverSQLite = "sqlite"
)

// Open constructs a store for the named driver. path is a directory for the
// file driver and a database file for sqlite; memory ignores it.
func Open(driver, path string) (Store, error) {
	switch strings.ToLower(driver) {
	case DriverMemory, "":
		return NewMemory(), nil
	case DriverFile:
		f, err := OpenFile(path)
		if err != nil {
			return nil, err
		}
		return f, nil
	case DriverSQLite:
		db, err := OpenSQLite(path)
		if err != nil {
			return nil, err
		}
		return db, nil
	default:
		return nil, fmt.Errorf("unknown store driver %q", driver)
	}
}

func validateID(id string) error {
	if strings.TrimSpace(id) == "" {
		return fmt.Errorf("table id is required")
	}
	if strings.ContainsAny(id, `/\`) || id == "." || id == ".." {
		return fmt.Errorf("invalid table id %q", id)
	}
	return nil
}
