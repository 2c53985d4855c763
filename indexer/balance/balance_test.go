// Copyright (C) 2024 Creditor Corp. Group.
// See LICENSE for copying information.

package balance_test

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/creditorcorp/runestone/bitcoin/ord/runes"
	"github.com/creditorcorp/runestone/indexer/balance"
)

func TestEncodeDecode(t *testing.T) {
	balances := []balance.Balance{
		{RuneID: runes.RuneId{Block: 840010, TxID: 4}, Amount: big.NewInt(500)},
		{RuneID: runes.RuneId{Block: 840000, TxID: 1}, Amount: big.NewInt(1000)},
	}

	row := balance.Encode(balances)

	decoded, err := balance.Decode(row)
	require.NoError(t, err)
	require.Len(t, decoded, 2)
	require.Equal(t, runes.RuneId{Block: 840000, TxID: 1}, decoded[0].RuneID)
	require.Equal(t, big.NewInt(1000), decoded[0].Amount)
	require.Equal(t, runes.RuneId{Block: 840010, TxID: 4}, decoded[1].RuneID)
	require.Equal(t, big.NewInt(500), decoded[1].Amount)
}

func TestEmpty(t *testing.T) {
	decoded, err := balance.Decode(balance.Encode(nil))
	require.NoError(t, err)
	require.Empty(t, decoded)
}
