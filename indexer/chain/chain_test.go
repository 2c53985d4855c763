// Copyright (C) 2024 Creditor Corp. Group.
// See LICENSE for copying information.

package chain_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/creditorcorp/runestone/indexer/chain"
)

func TestFirstHeight(t *testing.T) {
	tests := []struct {
		network            chain.Network
		indexInscriptions  bool
		firstInscription   uint32
		firstRune          uint32
		expected           uint32
	}{
		{chain.Mainnet, false, 0, 0, 840000},
		{chain.Mainnet, true, 100, 0, 100},
		{chain.Testnet, false, 0, 0, 2583200},
		{chain.Signet, false, 0, 0, 188710},
		{chain.Regtest, false, 0, 42, 42},
		{chain.Regtest, true, 7, 42, 7},
	}

	for _, test := range tests {
		actual := chain.FirstHeight(test.network, test.indexInscriptions, test.firstInscription, test.firstRune)
		require.Equal(t, test.expected, actual, test.network.String())
	}
}
