// Copyright (C) 2024 Creditor Corp. Group.
// See LICENSE for copying information.

package store

import (
	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/util"
)

// LevelTable is a Table backed by a goleveldb keyspace, namespaced by
// a single-byte prefix so one leveldb.DB can host every table in a
// Tables set.
type LevelTable struct {
	db     *leveldb.DB
	prefix byte
}

// NewLevelTable returns a Table scoped to prefix within db.
func NewLevelTable(db *leveldb.DB, prefix byte) *LevelTable {
	return &LevelTable{db: db, prefix: prefix}
}

func (t *LevelTable) prefixed(key []byte) []byte {
	out := make([]byte, 0, len(key)+1)
	out = append(out, t.prefix)
	return append(out, key...)
}

// Get implements Table.
func (t *LevelTable) Get(key []byte) ([]byte, error) {
	value, err := t.db.Get(t.prefixed(key), nil)
	if err == leveldb.ErrNotFound {
		return nil, ErrNotFound
	}

	return value, err
}

// Put implements Table.
func (t *LevelTable) Put(key, value []byte) error {
	return t.db.Put(t.prefixed(key), value, nil)
}

// Delete implements Table.
func (t *LevelTable) Delete(key []byte) error {
	return t.db.Delete(t.prefixed(key), nil)
}

// Last implements Table.
func (t *LevelTable) Last() (key, value []byte, ok bool) {
	iter := t.db.NewIterator(util.BytesPrefix([]byte{t.prefix}), nil)
	defer iter.Release()

	if !iter.Last() {
		return nil, nil, false
	}

	k := append([]byte(nil), iter.Key()[1:]...)
	v := append([]byte(nil), iter.Value()...)

	return k, v, true
}

// table prefixes, one byte each, namespacing the eight tables within a
// single leveldb.DB.
const (
	prefixRuneToID byte = iota
	prefixIDToEntry
	prefixTxidToRune
	prefixOutPointToBalances
	prefixStatisticToCount
	prefixSequenceNumberToRuneEvent
	prefixInscriptionIDToSequenceNumber
	prefixSequenceNumberToRuneID
)

// OpenLevelTables opens (creating if absent) a leveldb database at
// path and returns a full Tables set backed by it.
func OpenLevelTables(path string) (*Tables, *leveldb.DB, error) {
	db, err := leveldb.OpenFile(path, nil)
	if err != nil {
		return nil, nil, err
	}

	tables := &Tables{
		RuneToID:                      NewLevelTable(db, prefixRuneToID),
		IDToEntry:                     NewLevelTable(db, prefixIDToEntry),
		TxidToRune:                    NewLevelTable(db, prefixTxidToRune),
		OutPointToBalances:            NewLevelTable(db, prefixOutPointToBalances),
		StatisticToCount:              NewLevelTable(db, prefixStatisticToCount),
		SequenceNumberToRuneEvent:     NewLevelTable(db, prefixSequenceNumberToRuneEvent),
		InscriptionIDToSequenceNumber: NewLevelTable(db, prefixInscriptionIDToSequenceNumber),
		SequenceNumberToRuneID:        NewLevelTable(db, prefixSequenceNumberToRuneID),
	}

	return tables, db, nil
}
