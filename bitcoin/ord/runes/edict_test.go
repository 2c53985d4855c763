// Copyright (C) 2024 Creditor Corp. Group.
// See LICENSE for copying information.

package runes_test

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/creditorcorp/runestone/bitcoin/ord/runes"
)

func TestEdicts(t *testing.T) {
	t.Run("ToIntSeq", func(t *testing.T) {
		edict := runes.Edict{
			RuneID: runes.RuneId{Block: 12, TxID: 2},
			Amount: big.NewInt(1000),
			Output: 1,
		}
		seq := []*big.Int{big.NewInt(12), big.NewInt(2), big.NewInt(1000), big.NewInt(1)}
		require.Equal(t, seq, edict.ToIntSeq())
	})

	t.Run("SortEdicts", func(t *testing.T) {
		edicts := []runes.Edict{
			{RuneID: runes.RuneId{Block: 12, TxID: 2}, Amount: big.NewInt(1000), Output: 1},
			{RuneID: runes.RuneId{Block: 9, TxID: 13}, Amount: big.NewInt(1200), Output: 3},
			{RuneID: runes.RuneId{Block: 9, TxID: 12}, Amount: big.NewInt(10000), Output: 4},
			{RuneID: runes.RuneId{Block: 13, TxID: 45}, Amount: big.NewInt(100), Output: 3},
		}

		sortedEdicts := []runes.Edict{
			{RuneID: runes.RuneId{Block: 9, TxID: 12}, Amount: big.NewInt(10000), Output: 4},
			{RuneID: runes.RuneId{Block: 9, TxID: 13}, Amount: big.NewInt(1200), Output: 3},
			{RuneID: runes.RuneId{Block: 12, TxID: 2}, Amount: big.NewInt(1000), Output: 1},
			{RuneID: runes.RuneId{Block: 13, TxID: 45}, Amount: big.NewInt(100), Output: 3},
		}

		runes.SortEdicts(edicts)
		require.Equal(t, sortedEdicts, edicts)
	})

	t.Run("UseDelta", func(t *testing.T) {
		sortedEdicts := []runes.Edict{
			{RuneID: runes.RuneId{Block: 9, TxID: 12}, Amount: big.NewInt(10000), Output: 4},
			{RuneID: runes.RuneId{Block: 9, TxID: 13}, Amount: big.NewInt(1200), Output: 3},
			{RuneID: runes.RuneId{Block: 12, TxID: 2}, Amount: big.NewInt(1000), Output: 1},
			{RuneID: runes.RuneId{Block: 13, TxID: 45}, Amount: big.NewInt(100), Output: 3},
		}

		deltaEdicts := []runes.Edict{
			{RuneID: runes.RuneId{Block: 9, TxID: 12}, Amount: big.NewInt(10000), Output: 4},
			{RuneID: runes.RuneId{Block: 0, TxID: 1}, Amount: big.NewInt(1200), Output: 3},
			{RuneID: runes.RuneId{Block: 3, TxID: 2}, Amount: big.NewInt(1000), Output: 1},
			{RuneID: runes.RuneId{Block: 1, TxID: 45}, Amount: big.NewInt(100), Output: 3},
		}

		require.Equal(t, deltaEdicts, runes.UseDelta(sortedEdicts))
	})

	t.Run("EdictsToIntSeq", func(t *testing.T) {
		edicts := []runes.Edict{
			{RuneID: runes.RuneId{Block: 12, TxID: 2}, Amount: big.NewInt(1000), Output: 1},
			{RuneID: runes.RuneId{Block: 9, TxID: 13}, Amount: big.NewInt(1200), Output: 3},
			{RuneID: runes.RuneId{Block: 9, TxID: 12}, Amount: big.NewInt(10000), Output: 4},
			{RuneID: runes.RuneId{Block: 13, TxID: 45}, Amount: big.NewInt(100), Output: 3},
		}

		seq := []*big.Int{
			big.NewInt(9), big.NewInt(12), big.NewInt(10000), big.NewInt(4),
			big.NewInt(0), big.NewInt(1), big.NewInt(1200), big.NewInt(3),
			big.NewInt(3), big.NewInt(2), big.NewInt(1000), big.NewInt(1),
			big.NewInt(1), big.NewInt(45), big.NewInt(100), big.NewInt(3),
		}

		require.Equal(t, seq, runes.EdictsToIntSeq(edicts))
	})
}
