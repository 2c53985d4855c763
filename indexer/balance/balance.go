// Copyright (C) 2024 Creditor Corp. Group.
// See LICENSE for copying information.

// Package balance packs and unpacks the per-outpoint rune balance rows
// stored in the OutPointToBalances table (spec §4.6).
package balance

import (
	"math/big"
	"sort"

	"github.com/creditorcorp/runestone/bitcoin/ord/runes"
	"github.com/creditorcorp/runestone/varint"
)

// Balance is one (rune, amount) pair held at an outpoint.
type Balance struct {
	RuneID runes.RuneId
	Amount *big.Int
}

// Encode packs balances, sorted ascending by RuneId, as a concatenation
// of (varint(block), varint(tx), varint(amount)) triples.
func Encode(balances []Balance) []byte {
	sorted := make([]Balance, len(balances))
	copy(sorted, balances)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].RuneID.Less(sorted[j].RuneID) })

	buf := make([]byte, 0, len(sorted)*3)
	for _, b := range sorted {
		buf = varint.Encode(buf, new(big.Int).SetUint64(b.RuneID.Block))
		buf = varint.Encode(buf, new(big.Int).SetUint64(uint64(b.RuneID.TxID)))
		buf = varint.Encode(buf, b.Amount)
	}

	return buf
}

// Decode unpacks a row written by Encode, reading triples until the
// buffer is exhausted.
func Decode(row []byte) ([]Balance, error) {
	var balances []Balance

	for len(row) > 0 {
		block, n, err := varint.Decode(row)
		if err != nil {
			return nil, err
		}
		row = row[n:]

		tx, n, err := varint.Decode(row)
		if err != nil {
			return nil, err
		}
		row = row[n:]

		amount, n, err := varint.Decode(row)
		if err != nil {
			return nil, err
		}
		row = row[n:]

		balances = append(balances, Balance{
			RuneID: runes.RuneId{Block: block.Uint64(), TxID: uint32(tx.Uint64())},
			Amount: amount,
		})
	}

	return balances, nil
}
