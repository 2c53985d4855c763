// Copyright (C) 2024 Creditor Corp. Group.
// See LICENSE for copying information.

package runes

import (
	"math/big"
	"slices"
)

// Edict is a single transfer instruction carried in a runestone's body.
type Edict struct {
	RuneID RuneId
	Amount *big.Int
	Output uint32
}

// ToIntSeq returns Edict as a sequence of integers (absolute RuneId, amount, output).
func (edict *Edict) ToIntSeq() []*big.Int {
	seq := edict.RuneID.ToIntSeq()
	return append(seq, new(big.Int).Set(edict.Amount), new(big.Int).SetUint64(uint64(edict.Output)))
}

// SortEdicts sorts edicts ascending by RuneId, the order the encoder emits them in.
func SortEdicts(edicts []Edict) {
	slices.SortFunc(edicts, func(a, b Edict) int {
		if a.RuneID.Less(b.RuneID) {
			return -1
		}
		if b.RuneID.Less(a.RuneID) {
			return 1
		}

		return 0
	})
}

// UseDelta converts a sorted list of edicts into delta-encoded RuneId form.
func UseDelta(sortedEdicts []Edict) []Edict {
	var (
		deltaEdicts   = make([]Edict, len(sortedEdicts))
		previousBlock uint64
		previousTx    uint32
		blockDelta    uint64
		txDelta       uint32
	)

	for idx, edict := range sortedEdicts {
		blockDelta = edict.RuneID.Block - previousBlock
		if blockDelta == 0 {
			txDelta = edict.RuneID.TxID - previousTx
		} else {
			txDelta = edict.RuneID.TxID
		}

		deltaEdicts[idx] = Edict{
			RuneID: RuneId{
				Block: blockDelta,
				TxID:  txDelta,
			},
			Amount: edict.Amount,
			Output: edict.Output,
		}

		previousBlock = edict.RuneID.Block
		previousTx = edict.RuneID.TxID
	}

	return deltaEdicts
}

// EdictsToIntSeq sorts edicts and converts them to delta-encoded integers.
func EdictsToIntSeq(edicts []Edict) []*big.Int {
	sorted := make([]Edict, len(edicts))
	copy(sorted, edicts)
	SortEdicts(sorted)

	sequence := make([]*big.Int, 0, len(sorted)*4)
	for _, edict := range UseDelta(sorted) {
		sequence = append(sequence, edict.ToIntSeq()...)
	}

	return sequence
}
