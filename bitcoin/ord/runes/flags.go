// Copyright (C) 2024 Creditor Corp. Group.
// See LICENSE for copying information.

package runes

import (
	"math/big"
)

var (
	// FlagEtching marks that the message declares a new rune.
	FlagEtching = big.NewInt(1)
	// FlagTerms marks that the etching has open mint terms.
	FlagTerms = new(big.Int).Lsh(big.NewInt(1), 1)
	// FlagTurbo marks that the etching opts into future protocol changes.
	FlagTurbo = new(big.Int).Lsh(big.NewInt(1), 2)
	// FlagCenotaph is a reserved, always-unrecognized sentinel bit.
	FlagCenotaph = new(big.Int).Lsh(big.NewInt(1), 127)
)

// HasFlag returns true if value has flag set.
func HasFlag(value *big.Int, flag *big.Int) bool {
	return new(big.Int).And(value, flag).Cmp(flag) == 0
}

// AddFlag adds flag to value, returns the same (mutated) value.
func AddFlag(value *big.Int, flag *big.Int) *big.Int {
	return value.Or(value, flag)
}

// TakeFlag clears flag in value if set and reports whether it was set.
func TakeFlag(value *big.Int, flag *big.Int) bool {
	if !HasFlag(value, flag) {
		return false
	}

	value.Sub(value, flag)

	return true
}
