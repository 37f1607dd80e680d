package database

import (
	"context"
)

// Backend identifies a key-value database implementation.
type Backend string

// Supported backends.
const (
	BackendPebble  Backend = "pebble"
	BackendLevelDB Backend = "leveldb"
	BackendMemory  Backend = "memory"
)

// DB defines the basic operations any database implementation must support
type DB interface {
	// Basic operations
	Read(ctx context.Context, key []byte) ([]byte, error)
	Write(ctx context.Context, key []byte, value []byte) error
	Delete(ctx context.Context, key []byte) error

	// Batch applies a set of operations atomically
	Batch(ctx context.Context, ops []BatchOperation) error

	// Iteration
	Iterator(ctx context.Context, start, end []byte) (Iterator, error)

	// Close releases the underlying resources
	Close() error
}

// Iterator allows traversing over database entries
type Iterator interface {
	Next() bool
	Key() []byte
	Value() []byte
	Error() error
	Close() error
}

// BatchOperation represents a single operation in a batch
type BatchOperation struct {
	Type  BatchOpType
	Key   []byte
	Value []byte
}

type BatchOpType int

const (
	BatchPut BatchOpType = iota
	BatchDelete
)
