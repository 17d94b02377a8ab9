// Package persistence provides the key-value settings store abstraction used for workflow state.
package persistence

import (
	"context"
	"encoding/json"
	"fmt"
)

// SettingsStore is a simple key-value store for serialized application state.
type SettingsStore interface {
	// Get returns the value stored under key or ErrKeyNotFound.
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	HealthCheck(ctx context.Context) error

	Close(ctx context.Context) error
}

// GetJSON reads key from store and decodes it into a value of type T.
func GetJSON[T any](ctx context.Context, store SettingsStore, key string) (T, error) {
	var value T

	data, err := store.Get(ctx, key)
	if err != nil {
		return value, err
	}

	if err := json.Unmarshal(data, &value); err != nil {
		return value, NewStoreError("GetJSON", key, fmt.Errorf("%w: %w", ErrCorruptValue, err))
	}

	return value, nil
}

// SetJSON encodes value and stores it under key.
func SetJSON[T any](ctx context.Context, store SettingsStore, key string, value T) error {
	data, err := json.Marshal(value)
	if err != nil {
		return NewStoreError("SetJSON", key, err)
	}

	return store.Set(ctx, key, data)
}
