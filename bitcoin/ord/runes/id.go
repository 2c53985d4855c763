// Copyright (C) 2024 Creditor Corp. Group.
// See LICENSE for copying information.

package runes

import (
	"fmt"
	"math/big"
	"strconv"
	"strings"
)

// RuneId identifies a rune by the height and transaction index of its
// etching transaction.
type RuneId struct {
	Block uint64
	TxID  uint32
}

// NewRuneIDFromString parses a "block:tx" formatted RuneId.
func NewRuneIDFromString(s string) (RuneId, error) {
	parts := strings.Split(s, ":")
	if len(parts) != 2 {
		return RuneId{}, fmt.Errorf("invalid rune id format: %s", s)
	}

	block, err := strconv.ParseUint(parts[0], 10, 64)
	if err != nil {
		return RuneId{}, err
	}

	txID, err := strconv.ParseUint(parts[1], 10, 32)
	if err != nil {
		return RuneId{}, err
	}

	return RuneId{Block: block, TxID: uint32(txID)}, nil
}

// IsZero reports whether the id is the (0,0) sentinel used for "this
// transaction's own etching" references.
func (id RuneId) IsZero() bool {
	return id.Block == 0 && id.TxID == 0
}

// Next applies a delta-encoded successor as used by the edict body: a zero
// block delta carries the previous block forward and accumulates the tx
// delta onto the previous tx index; a non-zero block delta resets the tx
// index to the delta itself. The second return value is false on u64/u32
// overflow.
func (id RuneId) Next(blockDelta uint64, txDelta uint32) (RuneId, bool) {
	if blockDelta == 0 {
		tx := id.TxID + txDelta
		if tx < id.TxID {
			return RuneId{}, false
		}

		return RuneId{Block: id.Block, TxID: tx}, true
	}

	block := id.Block + blockDelta
	if block < id.Block {
		return RuneId{}, false
	}

	return RuneId{Block: block, TxID: txDelta}, true
}

// Set copies runeID's fields into id.
func (id *RuneId) Set(runeID RuneId) {
	id.Block = runeID.Block
	id.TxID = runeID.TxID
}

// String returns the "block:tx" representation.
func (id RuneId) String() string {
	return fmt.Sprintf("%d:%d", id.Block, id.TxID)
}

// ToIntSeq returns RuneId as a two-element integer sequence.
func (id RuneId) ToIntSeq() []*big.Int {
	return []*big.Int{new(big.Int).SetUint64(id.Block), new(big.Int).SetUint64(uint64(id.TxID))}
}

// Less orders ids by block, then by tx index.
func (id RuneId) Less(other RuneId) bool {
	if id.Block != other.Block {
		return id.Block < other.Block
	}

	return id.TxID < other.TxID
}
