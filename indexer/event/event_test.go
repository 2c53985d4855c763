// Copyright (C) 2024 Creditor Corp. Group.
// See LICENSE for copying information.

package event_test

import (
	"math/big"
	"testing"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/stretchr/testify/require"

	"github.com/creditorcorp/runestone/bitcoin/ord/runes"
	"github.com/creditorcorp/runestone/indexer/chain"
	"github.com/creditorcorp/runestone/indexer/event"
)

func TestRuneEventEntryRoundTrip(t *testing.T) {
	var source, txid chainhash.Hash
	source[0] = 0xAB
	txid[31] = 0xCD

	entry := &event.RuneEventEntry{
		RuneID:       runes.RuneId{Block: 840000, TxID: 1},
		Network:      chain.Mainnet,
		Event:        event.Transfer,
		Source:       source,
		TxID:         txid,
		Height:       840001,
		ScriptPubkey: []byte{0x00, 0x14, 0x01, 0x02, 0x03},
		Amount:       big.NewInt(123456789),
		Timestamp:    1700000000,
		Vout:         2,
	}

	packed := entry.Pack()
	unpacked := event.Unpack(packed)

	require.Equal(t, entry.RuneID, unpacked.RuneID)
	require.Equal(t, entry.Network, unpacked.Network)
	require.Equal(t, entry.Event, unpacked.Event)
	require.Equal(t, entry.Source, unpacked.Source)
	require.Equal(t, entry.TxID, unpacked.TxID)
	require.Equal(t, entry.Height, unpacked.Height)
	require.Equal(t, entry.ScriptPubkey, unpacked.ScriptPubkey)
	require.Equal(t, entry.Amount, unpacked.Amount)
	require.Equal(t, entry.Timestamp, unpacked.Timestamp)
	require.Equal(t, entry.Vout, unpacked.Vout)
}

func TestRuneEventString(t *testing.T) {
	require.Equal(t, "mint", event.Mint.String())
	require.Equal(t, "transfer", event.Transfer.String())
	require.Equal(t, "burn", event.Burn.String())
	require.Equal(t, "used", event.Used.String())
}
