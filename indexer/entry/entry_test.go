// Copyright (C) 2024 Creditor Corp. Group.
// See LICENSE for copying information.

package entry_test

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/creditorcorp/runestone/bitcoin/ord/runes"
	"github.com/creditorcorp/runestone/indexer/entry"
)

func u64(v uint64) *uint64 { return &v }

func TestMintable(t *testing.T) {
	t.Run("no terms", func(t *testing.T) {
		e := &entry.RuneEntry{Mints: big.NewInt(0)}
		_, err := e.Mintable(900000)
		require.ErrorIs(t, err, entry.ErrNotMintable)
	})

	t.Run("cap reached", func(t *testing.T) {
		e := &entry.RuneEntry{
			Mints: big.NewInt(10),
			Terms: &runes.Terms{Amount: big.NewInt(1), Cap: big.NewInt(10)},
		}
		_, err := e.Mintable(900000)
		require.ErrorIs(t, err, entry.ErrNotMintable)
	})

	t.Run("before height start", func(t *testing.T) {
		e := &entry.RuneEntry{
			Mints: big.NewInt(0),
			Terms: &runes.Terms{Amount: big.NewInt(1), HeightStart: u64(900000)},
		}
		_, err := e.Mintable(899999)
		require.ErrorIs(t, err, entry.ErrNotMintable)
	})

	t.Run("at or after height end", func(t *testing.T) {
		e := &entry.RuneEntry{
			Mints: big.NewInt(0),
			Terms: &runes.Terms{Amount: big.NewInt(1), HeightEnd: u64(900000)},
		}
		_, err := e.Mintable(900000)
		require.ErrorIs(t, err, entry.ErrNotMintable)
	})

	t.Run("within window via offsets", func(t *testing.T) {
		e := &entry.RuneEntry{
			Block: 840000,
			Mints: big.NewInt(0),
			Terms: &runes.Terms{Amount: big.NewInt(25), OffsetStart: u64(0), OffsetEnd: u64(1000)},
		}
		amount, err := e.Mintable(840500)
		require.NoError(t, err)
		require.Equal(t, big.NewInt(25), amount)
	})

	t.Run("at or after block + offset end", func(t *testing.T) {
		e := &entry.RuneEntry{
			Block: 840000,
			Mints: big.NewInt(0),
			Terms: &runes.Terms{Amount: big.NewInt(25), OffsetEnd: u64(1000)},
		}
		_, err := e.Mintable(841000)
		require.ErrorIs(t, err, entry.ErrNotMintable)
	})
}

func TestState(t *testing.T) {
	t.Run("burned at birth", func(t *testing.T) {
		e := &entry.RuneEntry{BurnedAtBirth: true}
		require.Equal(t, entry.BurnedAtBirth, e.State(900000))
	})

	t.Run("closed without terms", func(t *testing.T) {
		e := &entry.RuneEntry{Mints: big.NewInt(0)}
		require.Equal(t, entry.Closed, e.State(900000))
	})

	t.Run("open while mintable", func(t *testing.T) {
		e := &entry.RuneEntry{
			Mints: big.NewInt(0),
			Terms: &runes.Terms{Amount: big.NewInt(1)},
		}
		require.Equal(t, entry.Open, e.State(900000))
	})
}
