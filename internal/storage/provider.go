// Package storage defines the key-value string store that backs persistence.
package storage

import "errors"

// ErrKeyNotFound is returned by Get when the key has never been written.
var ErrKeyNotFound = errors.New("storage: key not found")

// Provider is a small key-value string store.
type Provider interface {
	// Get returns the value stored under key, or ErrKeyNotFound.
	Get(key string) (string, error)
	// Put replaces the value stored under key.
	Put(key, value string) error
	// Delete removes key. Deleting a missing key is not an error.
	Delete(key string) error
	// Close releases the underlying resources.
	Close() error
}

// Backend names accepted by Open.
const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
	BackendBadger = "badger"
	BackendMemory = "memory"
)
