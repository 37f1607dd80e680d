package store

import (
	"context"
	"errors"
	"fmt"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/LeJamon/marketd/internal/core/ledger/keylet"
	"github.com/LeJamon/marketd/internal/storage/database"
	"github.com/LeJamon/marketd/internal/storage/database/leveldb"
	"github.com/LeJamon/marketd/internal/storage/database/pebble"
)

// Value framing: first byte marks the compression applied to the remainder.
const (
	frameRaw byte = 0
	frameLZ4 byte = 1
)

// Config holds ledger store configuration.
type Config struct {
	// CacheSize is the maximum number of entries held in the read cache.
	CacheSize int

	// Compression enables lz4 compression of stored values.
	Compression bool
}

// DefaultConfig returns the default store configuration.
func DefaultConfig() Config {
	return Config{CacheSize: 4096, Compression: false}
}

// Store is the persistent ledger state store. It fronts a key-value database
// with an LRU entry cache and optional value compression, and serves as the
// base view the market engine's state table commits into.
type Store struct {
	mu       sync.RWMutex
	db       database.DB
	cache    *lru.Cache[[32]byte, []byte]
	lz4      *LZ4Compressor
	compress bool
}

// OpenDatabase opens the configured key-value backend.
func OpenDatabase(backend database.Backend, dir string) (database.DB, error) {
	switch backend {
	case database.BackendPebble:
		return pebble.Open(dir)
	case database.BackendLevelDB:
		return leveldb.Open(dir)
	case database.BackendMemory:
		return database.NewMemoryDB(), nil
	default:
		return nil, fmt.Errorf("%w: %q", database.ErrUnknownBackend, backend)
	}
}

// New creates a Store over an open database.
func New(db database.DB, cfg Config) (*Store, error) {
	if cfg.CacheSize <= 0 {
		cfg.CacheSize = DefaultConfig().CacheSize
	}
	cache, err := lru.New[[32]byte, []byte](cfg.CacheSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create entry cache: %w", err)
	}
	return &Store{
		db:       db,
		cache:    cache,
		lz4:      &LZ4Compressor{},
		compress: cfg.Compression,
	}, nil
}

// Read reads a ledger entry. Returns nil with no error when the entry does
// not exist.
func (s *Store) Read(k keylet.Keylet) ([]byte, error) {
	s.mu.RLock()
	if data, ok := s.cache.Get(k.Key); ok {
		s.mu.RUnlock()
		return data, nil
	}
	s.mu.RUnlock()

	raw, err := s.db.Read(context.Background(), k.Key[:])
	if err != nil {
		if errors.Is(err, database.ErrKeyNotFound) {
			return nil, nil
		}
		return nil, err
	}

	data, err := s.unframe(raw)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.cache.Add(k.Key, data)
	s.mu.Unlock()
	return data, nil
}

// Exists checks if an entry exists.
func (s *Store) Exists(k keylet.Keylet) (bool, error) {
	data, err := s.Read(k)
	if err != nil {
		return false, err
	}
	return data != nil, nil
}

// Insert adds a new entry directly to the store.
func (s *Store) Insert(k keylet.Keylet, data []byte) error {
	return s.write(k, data)
}

// Update modifies an existing entry directly in the store.
func (s *Store) Update(k keylet.Keylet, data []byte) error {
	return s.write(k, data)
}

// Erase removes an entry directly from the store.
func (s *Store) Erase(k keylet.Keylet) error {
	s.mu.Lock()
	s.cache.Remove(k.Key)
	s.mu.Unlock()
	return s.db.Delete(context.Background(), k.Key[:])
}

func (s *Store) write(k keylet.Keylet, data []byte) error {
	framed, err := s.frame(data)
	if err != nil {
		return err
	}
	if err := s.db.Write(context.Background(), k.Key[:], framed); err != nil {
		return err
	}
	s.mu.Lock()
	s.cache.Add(k.Key, data)
	s.mu.Unlock()
	return nil
}

// Change is one element of an atomic commit.
type Change struct {
	Key    [32]byte
	Data   []byte // nil means delete
	Delete bool
}

// Commit applies a set of changes as one atomic batch. This is the commit
// path for the market engine's state table: either every change lands or
// none do.
func (s *Store) Commit(changes []Change) error {
	ops := make([]database.BatchOperation, 0, len(changes))
	for _, c := range changes {
		if c.Delete {
			ops = append(ops, database.BatchOperation{Type: database.BatchDelete, Key: c.Key[:]})
			continue
		}
		framed, err := s.frame(c.Data)
		if err != nil {
			return err
		}
		ops = append(ops, database.BatchOperation{Type: database.BatchPut, Key: c.Key[:], Value: framed})
	}

	if err := s.db.Batch(context.Background(), ops); err != nil {
		return fmt.Errorf("%w: %v", database.ErrBatchOperationFailed, err)
	}

	s.mu.Lock()
	for _, c := range changes {
		if c.Delete {
			s.cache.Remove(c.Key)
		} else {
			s.cache.Add(c.Key, c.Data)
		}
	}
	s.mu.Unlock()
	return nil
}

// ApplyChanges commits puts and deletes as one atomic batch. It satisfies
// the ledger.ChangeApplier interface used by the state table commit path.
func (s *Store) ApplyChanges(puts map[[32]byte][]byte, deletes [][32]byte) error {
	changes := make([]Change, 0, len(puts)+len(deletes))
	for key, data := range puts {
		changes = append(changes, Change{Key: key, Data: data})
	}
	for _, key := range deletes {
		changes = append(changes, Change{Key: key, Delete: true})
	}
	return s.Commit(changes)
}

// ForEach iterates over all state entries. If fn returns false, iteration
// stops early.
func (s *Store) ForEach(fn func(key [32]byte, data []byte) bool) error {
	iter, err := s.db.Iterator(context.Background(), nil, nil)
	if err != nil {
		return err
	}
	defer iter.Close()

	for iter.Next() {
		kb := iter.Key()
		if len(kb) != 32 {
			continue
		}
		var key [32]byte
		copy(key[:], kb)

		data, err := s.unframe(iter.Value())
		if err != nil {
			return err
		}
		if !fn(key, data) {
			break
		}
	}
	return iter.Error()
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) frame(data []byte) ([]byte, error) {
	if s.compress {
		compressed, err := s.lz4.Compress(data)
		if err == nil {
			return append([]byte{frameLZ4}, compressed...), nil
		}
		if !errors.Is(err, errIncompressible) {
			return nil, err
		}
	}
	return append([]byte{frameRaw}, data...), nil
}

func (s *Store) unframe(raw []byte) ([]byte, error) {
	if len(raw) == 0 {
		return nil, fmt.Errorf("empty stored value")
	}
	switch raw[0] {
	case frameRaw:
		out := make([]byte, len(raw)-1)
		copy(out, raw[1:])
		return out, nil
	case frameLZ4:
		return s.lz4.Decompress(raw[1:])
	default:
		return nil, fmt.Errorf("unknown value frame marker 0x%02x", raw[0])
	}
}
