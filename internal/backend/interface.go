package backend

import (
	"context"
	"time"

	"tranxledger/internal/history"
	"tranxledger/internal/services"
)

// CleanupFunc represents a cleanup function for resources
type CleanupFunc func() error

// BackendResult contains the ready ledger service and its cleanup function
type BackendResult struct {
	Service *services.LedgerService
	Cleanup CleanupFunc
}

// Factory creates ledger stores based on configuration
type Factory interface {
	// StoreFactory returns the opener that history.Init calls once.
	StoreFactory(config Config) (history.StoreFactory, error)
	// CreateLedger opens the store, initializes the history and connects
	// the optional broker.
	CreateLedger(ctx context.Context, config Config) (*BackendResult, error)
}

// Config holds configuration for backend creation
type Config struct {
	Type BackendType

	// SQLite specific
	SQLiteDBPath string
	FixtureImage string

	// Compiled filter cache
	HistoryCacheSize int
	HistoryCacheTTL  time.Duration

	// Optional notifications
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string
}

// BackendType represents the type of backend
type BackendType string

const (
	SQLiteBackend BackendType = "sqlite"
	MemoryBackend BackendType = "memory"
)

// String implements fmt.Stringer
func (bt BackendType) String() string {
	return string(bt)
}

// IsValid returns true if the backend type is valid
func (bt BackendType) IsValid() bool {
	switch bt {
	case SQLiteBackend, MemoryBackend:
		return true
	default:
		return false
	}
}
