// Copyright (C) 2024 Creditor Corp. Group.
// See LICENSE for copying information.

package commitment_test

import (
	"math/big"
	"testing"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/txscript"
	"github.com/btcsuite/btcd/wire"
	"github.com/stretchr/testify/require"

	"github.com/creditorcorp/runestone/bitcoin/ord/runes"
	"github.com/creditorcorp/runestone/indexer/commitment"
)

func TestCommits(t *testing.T) {
	rune_, err := runes.NewRuneFromNumber(big.NewInt(123456789))
	require.NoError(t, err)

	tapscript, err := txscript.NewScriptBuilder().AddFullData(rune_.Commitment()).Script()
	require.NoError(t, err)

	op := wire.OutPoint{Hash: chainhash.Hash{}, Index: 0}
	tx := wire.NewMsgTx(2)
	tx.AddTxIn(&wire.TxIn{
		PreviousOutPoint: op,
		Witness:          wire.TxWitness{[]byte{0x01}, tapscript, []byte{0xc0}},
	})

	t.Run("mature p2tr commits", func(t *testing.T) {
		lookup := func(wire.OutPoint) (commitment.PrevOutputInfo, bool) {
			return commitment.PrevOutputInfo{IsP2TR: true, Confirmations: 6}, true
		}
		require.True(t, commitment.Commits(tx, rune_, lookup))
	})

	t.Run("immature p2tr does not commit", func(t *testing.T) {
		lookup := func(wire.OutPoint) (commitment.PrevOutputInfo, bool) {
			return commitment.PrevOutputInfo{IsP2TR: true, Confirmations: 5}, true
		}
		require.False(t, commitment.Commits(tx, rune_, lookup))
	})

	t.Run("non-p2tr does not commit", func(t *testing.T) {
		lookup := func(wire.OutPoint) (commitment.PrevOutputInfo, bool) {
			return commitment.PrevOutputInfo{IsP2TR: false, Confirmations: 100}, true
		}
		require.False(t, commitment.Commits(tx, rune_, lookup))
	})

	t.Run("no witness does not commit", func(t *testing.T) {
		plainTx := wire.NewMsgTx(2)
		plainTx.AddTxIn(&wire.TxIn{PreviousOutPoint: op})

		lookup := func(wire.OutPoint) (commitment.PrevOutputInfo, bool) {
			return commitment.PrevOutputInfo{IsP2TR: true, Confirmations: 100}, true
		}
		require.False(t, commitment.Commits(plainTx, rune_, lookup))
	})
}
