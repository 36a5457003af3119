package store

import (
	"errors"
	"fmt"
)

var (
	// ErrStorage wraps failures of the underlying database: I/O, SQL or
	// constraint errors. The operation failed but the store stays usable.
	ErrStorage = errors.New("storage error")

	// ErrIntegrity is returned when a persisted row cannot be turned back
	// into a valid record. Such rows are reported, never defaulted.
	ErrIntegrity = errors.New("integrity error")
)

func storageErr(op string, err error) error {
	return fmt.Errorf("%w: failed to %s: %w", ErrStorage, op, err)
}
