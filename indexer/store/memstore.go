// Copyright (C) 2024 Creditor Corp. Group.
// See LICENSE for copying information.

package store

import (
	"bytes"
	"sync"

	"github.com/google/btree"
)

// item is one btree node: a byte-ordered key with its value.
type item struct {
	key   []byte
	value []byte
}

func (a item) Less(b btree.Item) bool {
	return bytes.Compare(a.key, b.(item).key) < 0
}

// MemTable is an in-memory Table backed by a google/btree ordered
// tree, giving tests the same ordered-iteration contract a real
// embedded store provides, without needing one.
type MemTable struct {
	mu   sync.RWMutex
	tree *btree.BTree
}

// NewMemTable returns an empty in-memory table.
func NewMemTable() *MemTable {
	return &MemTable{tree: btree.New(32)}
}

// Get implements Table.
func (m *MemTable) Get(key []byte) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	found := m.tree.Get(item{key: key})
	if found == nil {
		return nil, ErrNotFound
	}

	return found.(item).value, nil
}

// Put implements Table.
func (m *MemTable) Put(key, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	k := append([]byte(nil), key...)
	v := append([]byte(nil), value...)
	m.tree.ReplaceOrInsert(item{key: k, value: v})

	return nil
}

// Delete implements Table.
func (m *MemTable) Delete(key []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.tree.Delete(item{key: key})

	return nil
}

// Last implements Table.
func (m *MemTable) Last() (key, value []byte, ok bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	max := m.tree.Max()
	if max == nil {
		return nil, nil, false
	}

	it := max.(item)

	return it.key, it.value, true
}

// NewMemTables builds a full Tables set backed by in-memory btrees,
// suitable for unit tests and for an indexer run with no durability
// requirement.
func NewMemTables() *Tables {
	return &Tables{
		RuneToID:                      NewMemTable(),
		IDToEntry:                     NewMemTable(),
		TxidToRune:                    NewMemTable(),
		OutPointToBalances:            NewMemTable(),
		StatisticToCount:              NewMemTable(),
		SequenceNumberToRuneEvent:     NewMemTable(),
		InscriptionIDToSequenceNumber: NewMemTable(),
		SequenceNumberToRuneID:        NewMemTable(),
	}
}
