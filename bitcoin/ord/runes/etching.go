// Copyright (C) 2024 Creditor Corp. Group.
// See LICENSE for copying information.

package runes

import (
	"math/big"

	"github.com/creditorcorp/runestone/internal/numbers"
)

// MaxDivisibility is the largest divisibility a rune may declare.
const MaxDivisibility byte = 38

// MaxSpacers is the largest spacer bitfield a rune may declare (2^27-1).
const MaxSpacers uint32 = 0b00000111_11111111_11111111_11111111

// Etching declares the creation of a new rune.
type Etching struct {
	Divisibility *byte
	Premine      *big.Int
	Rune         *Rune
	Spacers      *uint32
	Symbol       *rune
	Terms        *Terms
	Turbo        bool
}

// Terms describes the mint-eligibility window and supply cap of an Etching.
type Terms struct {
	Amount      *big.Int
	Cap         *big.Int
	HeightStart *uint64
	HeightEnd   *uint64
	OffsetStart *uint64
	OffsetEnd   *uint64
}

// SpacedRune is a Rune together with its display spacer bitfield.
type SpacedRune struct {
	Rune    *Rune
	Spacers uint32
}

// String renders the spaced rune name.
func (s SpacedRune) String() string {
	return s.Rune.StringWithSeparator(s.Spacers)
}

// Supply returns the maximum total supply the terms can ever produce
// (premine + cap*amount), or false if that would overflow 128 bits.
func (e *Etching) Supply() (*big.Int, bool) {
	premine := big.NewInt(0)
	if e.Premine != nil {
		premine = e.Premine
	}

	if e.Terms == nil || e.Terms.Cap == nil || e.Terms.Amount == nil {
		return new(big.Int).Set(premine), true
	}

	minted, ok := numbers.CheckedMulU128(e.Terms.Cap, e.Terms.Amount)
	if !ok {
		return nil, false
	}

	return numbers.CheckedAddU128(premine, minted)
}
