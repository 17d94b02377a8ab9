// Package persistence provides standardized error types for persistence operations.
package persistence

import (
	"errors"
	"fmt"
)

// Standard persistence error types that all implementations should use.
var (
	// ErrKeyNotFound indicates no value is stored under the given key.
	ErrKeyNotFound = errors.New("key not found")

	// ErrCorruptValue indicates a stored value could not be decoded.
	ErrCorruptValue = errors.New("corrupt stored value")

	// ErrInvalidKey indicates a key that the store cannot represent.
	ErrInvalidKey = errors.New("invalid key")
)

// StoreError wraps settings store errors with additional context.
type StoreError struct {
	Op  string // Operation being performed (e.g., "Get", "Set", "Delete")
	Key string // Key if applicable
	Err error  // Underlying error
}

func (e *StoreError) Error() string {
	if e.Key == "" {
		return fmt.Sprintf("%s operation failed: %v", e.Op, e.Err)
	}

	return fmt.Sprintf("%s operation failed for key %s: %v", e.Op, e.Key, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

// Is implements error comparison for store errors.
func (e *StoreError) Is(target error) bool {
	return errors.Is(e.Err, target)
}

// NewStoreError creates a new store error with context.
func NewStoreError(op, key string, err error) *StoreError {
	return &StoreError{
		Op:  op,
		Key: key,
		Err: err,
	}
}

// IsKeyNotFound checks if an error indicates a missing key.
func IsKeyNotFound(err error) bool {
	return errors.Is(err, ErrKeyNotFound)
}
