// Copyright (C) 2024 Creditor Corp. Group.
// See LICENSE for copying information.

// Package entry implements RuneEntry, the registry row a rune's
// etching produces, and its mint-eligibility rule (spec §3, §4.5,
// §4.7).
package entry

import (
	"errors"
	"math/big"

	"github.com/btcsuite/btcd/chaincfg/chainhash"

	"github.com/creditorcorp/runestone/bitcoin/ord/runes"
	"github.com/creditorcorp/runestone/internal/numbers"
)

// ErrNotMintable reports that a rune currently refuses mints: no terms,
// cap reached, or outside the height/offset eligibility window.
var ErrNotMintable = errors.New("rune is not mintable at this height")

// RuneEntry is the persisted registry row for one etched rune.
type RuneEntry struct {
	Block        uint64
	Burned       *big.Int
	Divisibility byte
	Etching      chainhash.Hash
	Terms        *runes.Terms
	Mints        *big.Int
	Number       uint64
	Premine      *big.Int
	SpacedRune   runes.SpacedRune
	Symbol       *rune
	Timestamp    uint32
	// BurnedAtBirth marks an entry created from a Cenotaph that named an
	// etching: the rune exists, but entered the BurnedAtBirth state
	// directly, never having been Open.
	BurnedAtBirth bool
}

// Mintable reports the amount a single mint produces at height, or
// ErrNotMintable if no terms are set, the cap is already reached, or
// height falls outside the eligibility window (spec §4.5 "Mint").
func (e *RuneEntry) Mintable(height uint64) (*big.Int, error) {
	if e.Terms == nil || e.Terms.Amount == nil {
		return nil, ErrNotMintable
	}

	if e.Terms.Cap != nil && numbers.IsGreaterOrEqual(e.Mints, e.Terms.Cap) {
		return nil, ErrNotMintable
	}

	start, end := e.heightRange()

	if start != nil && height < *start {
		return nil, ErrNotMintable
	}
	if end != nil && height >= *end {
		return nil, ErrNotMintable
	}

	return new(big.Int).Set(e.Terms.Amount), nil
}

// heightRange resolves the terms' absolute height window, folding the
// offset fields in relative to this entry's etching block.
func (e *RuneEntry) heightRange() (start, end *uint64) {
	t := e.Terms

	if t.HeightStart != nil {
		start = t.HeightStart
	}
	if t.OffsetStart != nil {
		v := e.Block + *t.OffsetStart
		if start == nil || v > *start {
			start = &v
		}
	}

	if t.HeightEnd != nil {
		end = t.HeightEnd
	}
	if t.OffsetEnd != nil {
		v := e.Block + *t.OffsetEnd
		if end == nil || v < *end {
			end = &v
		}
	}

	return start, end
}

// State describes where in a rune's lifecycle (spec §4.7) this entry
// currently sits.
type State byte

const (
	Open State = iota
	Closed
	BurnedAtBirth
)

// State reports the entry's current lifecycle state at height.
func (e *RuneEntry) State(height uint64) State {
	if e.BurnedAtBirth {
		return BurnedAtBirth
	}

	if e.Terms == nil {
		return Closed
	}

	if _, err := e.Mintable(height); err != nil {
		return Closed
	}

	return Open
}
