package ledger

import (
	"github.com/LeJamon/marketd/internal/core/ledger/keylet"
)

// View provides read/write access to ledger state.
type View interface {
	// Read reads a ledger entry. A missing entry yields (nil, nil).
	Read(k keylet.Keylet) ([]byte, error)

	// Exists checks if an entry exists
	Exists(k keylet.Keylet) (bool, error)

	// Insert adds a new entry
	Insert(k keylet.Keylet, data []byte) error

	// Update modifies an existing entry
	Update(k keylet.Keylet, data []byte) error

	// Erase removes an entry
	Erase(k keylet.Keylet) error

	// ForEach iterates over all state entries.
	// If fn returns false, iteration stops early.
	ForEach(fn func(key [32]byte, data []byte) bool) error
}

// ChangeApplier is implemented by base views that can commit a whole set of
// changes as one atomic batch. The state table prefers this path so a crash
// mid-commit cannot leave a half-applied operation on disk.
type ChangeApplier interface {
	ApplyChanges(puts map[[32]byte][]byte, deletes [][32]byte) error
}
