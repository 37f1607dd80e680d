package ledger

import (
	"bytes"
	"fmt"

	"github.com/LeJamon/marketd/internal/core/ledger/keylet"
)

// Action represents the type of modification to a ledger entry
type Action int

const (
	// ActionCache means the entry was read but not modified
	ActionCache Action = iota
	// ActionInsert means a new entry was created
	ActionInsert
	// ActionModify means an existing entry was modified
	ActionModify
	// ActionErase means an entry was deleted
	ActionErase
)

// TrackedEntry represents a ledger entry being tracked for changes
type TrackedEntry struct {
	Action   Action
	Original []byte // Original state (nil for inserts)
	Current  []byte // Current state (nil after erase)
}

// Metadata summarizes the entries an applied operation touched.
type Metadata struct {
	Created  [][32]byte
	Modified [][32]byte
	Deleted  [][32]byte
}

// StateTable wraps a View and tracks all modifications so an in-flight
// operation can be committed as one unit or discarded wholesale. Every
// state-mutating marketplace call runs against a StateTable; nothing reaches
// the base view until Apply, which is what makes a failed call free of
// partial state change.
type StateTable struct {
	base  View
	items map[[32]byte]*TrackedEntry
}

// NewStateTable creates a new StateTable wrapping the given base view
func NewStateTable(base View) *StateTable {
	return &StateTable{
		base:  base,
		items: make(map[[32]byte]*TrackedEntry),
	}
}

// Read reads a ledger entry, tracking it as cached
func (t *StateTable) Read(k keylet.Keylet) ([]byte, error) {
	if entry, exists := t.items[k.Key]; exists {
		if entry.Action == ActionErase {
			return nil, nil
		}
		return entry.Current, nil
	}

	data, err := t.base.Read(k)
	if err != nil {
		return nil, err
	}

	// Only track entries that exist in the base
	if data != nil {
		t.items[k.Key] = &TrackedEntry{
			Action:   ActionCache,
			Original: data,
			Current:  data,
		}
	}

	return data, nil
}

// Exists checks if an entry exists
func (t *StateTable) Exists(k keylet.Keylet) (bool, error) {
	if entry, exists := t.items[k.Key]; exists {
		return entry.Action != ActionErase, nil
	}
	return t.base.Exists(k)
}

// Insert adds a new entry
func (t *StateTable) Insert(k keylet.Keylet, data []byte) error {
	if entry, exists := t.items[k.Key]; exists {
		if entry.Action != ActionErase {
			return fmt.Errorf("entry already exists")
		}
		// Re-inserting a deleted entry becomes a modify
		entry.Action = ActionModify
		entry.Current = data
		return nil
	}

	exists, err := t.base.Exists(k)
	if err != nil {
		return err
	}
	if exists {
		return fmt.Errorf("entry already exists")
	}

	t.items[k.Key] = &TrackedEntry{
		Action:   ActionInsert,
		Original: nil,
		Current:  data,
	}
	return nil
}

// Update modifies an existing entry
func (t *StateTable) Update(k keylet.Keylet, data []byte) error {
	if entry, exists := t.items[k.Key]; exists {
		if entry.Action == ActionErase {
			return fmt.Errorf("cannot update erased entry")
		}
		if entry.Action == ActionCache {
			entry.Action = ActionModify
		}
		entry.Current = data
		return nil
	}

	original, err := t.base.Read(k)
	if err != nil {
		return err
	}
	if original == nil {
		return fmt.Errorf("entry does not exist")
	}

	t.items[k.Key] = &TrackedEntry{
		Action:   ActionModify,
		Original: original,
		Current:  data,
	}
	return nil
}

// Erase removes an entry
func (t *StateTable) Erase(k keylet.Keylet) error {
	if entry, exists := t.items[k.Key]; exists {
		if entry.Action == ActionErase {
			return fmt.Errorf("entry already erased")
		}
		if entry.Action == ActionInsert {
			// Inserting then erasing within one call cancels out
			delete(t.items, k.Key)
			return nil
		}
		entry.Action = ActionErase
		entry.Current = nil
		return nil
	}

	original, err := t.base.Read(k)
	if err != nil {
		return err
	}
	if original == nil {
		return fmt.Errorf("entry does not exist")
	}

	t.items[k.Key] = &TrackedEntry{
		Action:   ActionErase,
		Original: original,
		Current:  nil,
	}
	return nil
}

// ForEach iterates over the overlaid state: base entries as modified by this
// table, plus entries inserted by this table.
func (t *StateTable) ForEach(fn func(key [32]byte, data []byte) bool) error {
	stopped := false
	err := t.base.ForEach(func(key [32]byte, data []byte) bool {
		if entry, exists := t.items[key]; exists {
			switch entry.Action {
			case ActionErase:
				return true
			case ActionModify:
				data = entry.Current
			}
		}
		if !fn(key, data) {
			stopped = true
			return false
		}
		return true
	})
	if err != nil || stopped {
		return err
	}

	for key, entry := range t.items {
		if entry.Action != ActionInsert {
			continue
		}
		if !fn(key, entry.Current) {
			break
		}
	}
	return nil
}

// Apply commits all tracked changes to the base view and returns a summary
// of the affected entries. When the base supports atomic batches the whole
// commit lands as one; otherwise changes are written entry by entry.
func (t *StateTable) Apply() (*Metadata, error) {
	metadata := &Metadata{}

	puts := make(map[[32]byte][]byte)
	var deletes [][32]byte

	for key, entry := range t.items {
		switch entry.Action {
		case ActionCache:
			continue

		case ActionInsert:
			metadata.Created = append(metadata.Created, key)
			puts[key] = entry.Current

		case ActionModify:
			if bytes.Equal(entry.Original, entry.Current) {
				continue
			}
			metadata.Modified = append(metadata.Modified, key)
			puts[key] = entry.Current

		case ActionErase:
			metadata.Deleted = append(metadata.Deleted, key)
			deletes = append(deletes, key)
		}
	}

	if applier, ok := t.base.(ChangeApplier); ok {
		if err := applier.ApplyChanges(puts, deletes); err != nil {
			return nil, err
		}
		return metadata, nil
	}

	for _, key := range metadata.Created {
		if err := t.base.Insert(keylet.Keylet{Key: key}, t.items[key].Current); err != nil {
			return nil, err
		}
	}
	for _, key := range metadata.Modified {
		if err := t.base.Update(keylet.Keylet{Key: key}, t.items[key].Current); err != nil {
			return nil, err
		}
	}
	for _, key := range deletes {
		if err := t.base.Erase(keylet.Keylet{Key: key}); err != nil {
			return nil, err
		}
	}
	return metadata, nil
}
