// Copyright (C) 2024 Creditor Corp. Group.
// See LICENSE for copying information.

package store_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/creditorcorp/runestone/indexer/store"
)

func TestMemTable(t *testing.T) {
	table := store.NewMemTable()

	_, err := table.Get([]byte("a"))
	require.ErrorIs(t, err, store.ErrNotFound)

	require.NoError(t, table.Put([]byte("b"), []byte("1")))
	require.NoError(t, table.Put([]byte("a"), []byte("2")))
	require.NoError(t, table.Put([]byte("c"), []byte("3")))

	value, err := table.Get([]byte("a"))
	require.NoError(t, err)
	require.Equal(t, []byte("2"), value)

	key, value, ok := table.Last()
	require.True(t, ok)
	require.Equal(t, []byte("c"), key)
	require.Equal(t, []byte("3"), value)

	require.NoError(t, table.Delete([]byte("c")))
	key, _, ok = table.Last()
	require.True(t, ok)
	require.Equal(t, []byte("b"), key)
}

func TestNewMemTables(t *testing.T) {
	tables := store.NewMemTables()

	require.NoError(t, tables.RuneToID.Put([]byte("x"), []byte("y")))
	value, err := tables.RuneToID.Get([]byte("x"))
	require.NoError(t, err)
	require.Equal(t, []byte("y"), value)

	_, err = tables.IDToEntry.Get([]byte("x"))
	require.ErrorIs(t, err, store.ErrNotFound)
}
