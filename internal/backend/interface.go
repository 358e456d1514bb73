package backend

import (
	"context"

	"desayunos/internal/store"
)

// CleanupFunc releases resources held by a backend.
type CleanupFunc func() error

// BackendResult contains a ready store and its optional cleanup.
type BackendResult struct {
	Store   store.EntryStore
	Cleanup CleanupFunc
}

// Factory creates entry stores based on configuration.
type Factory interface {
	CreateBackend(ctx context.Context, config Config) (*BackendResult, error)
}

// Config holds the settings backend creation needs.
type Config struct {
	Type BackendType

	// SQLite specific
	SQLiteDBPath string
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	// Firestore specific
	FirestoreProjectID  string
	FirestoreCollection string
}

// BackendType names which store implementation backs the ledger.
type BackendType string

const (
	SQLiteBackend    BackendType = "sqlite"
	FirestoreBackend BackendType = "firestore"
	MemoryBackend    BackendType = "memory"
)

// String implements fmt.Stringer.
func (bt BackendType) String() string {
	return string(bt)
}

// IsValid returns true if the backend type is valid.
func (bt BackendType) IsValid() bool {
	switch bt {
	case SQLiteBackend, FirestoreBackend, MemoryBackend:
		return true
	default:
		return false
	}
}
