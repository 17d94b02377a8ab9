package records

import (
	"errors"
	"fmt"
)

var (
	// ErrRecordNotFound indicates no record with the given id is held by the store.
	ErrRecordNotFound = errors.New("record not found")

	// ErrNoDirectory indicates neither the remote nor the local directory is usable.
	ErrNoDirectory = errors.New("no usable record directory")
)

// StorageError wraps record store failures with the operation and record involved.
type StorageError struct {
	Op       string
	RecordID string
	Err      error
}

func (e *StorageError) Error() string {
	if e.RecordID == "" {
		return fmt.Sprintf("records: %s: %v", e.Op, e.Err)
	}

	return fmt.Sprintf("records: %s %s: %v", e.Op, e.RecordID, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

func (e *StorageError) Is(target error) bool {
	return errors.Is(e.Err, target)
}

func newStorageError(op, id string, err error) *StorageError {
	return &StorageError{Op: op, RecordID: id, Err: err}
}

// IsNotFound reports whether err indicates an unknown record.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrRecordNotFound)
}
