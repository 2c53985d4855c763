// Copyright (C) 2024 Creditor Corp. Group.
// See LICENSE for copying information.

// Package event defines the indexer's append-only rune-event log: the
// RuneEvent classification and the fixed-tuple RuneEventEntry record
// shape described in spec §3/§6.
package event

import (
	"math/big"

	"github.com/btcsuite/btcd/chaincfg/chainhash"

	"github.com/creditorcorp/runestone/bitcoin/ord/runes"
	"github.com/creditorcorp/runestone/indexer/chain"
	"github.com/creditorcorp/runestone/internal/reverse"
)

// RuneEvent classifies why a balance moved.
type RuneEvent byte

const (
	Mint RuneEvent = iota
	Transfer
	Burn
	// Used marks one consumed input balance; emitted in addition to
	// Transfer so downstream consumers can attribute burns to specific
	// inputs (§ SUPPLEMENTED FEATURES).
	Used
)

// String names the event.
func (e RuneEvent) String() string {
	switch e {
	case Mint:
		return "mint"
	case Transfer:
		return "transfer"
	case Burn:
		return "burn"
	case Used:
		return "used"
	default:
		return "unknown"
	}
}

// RuneEventEntry is one append-only log row.
type RuneEventEntry struct {
	RuneID       runes.RuneId
	Network      chain.Network
	Event        RuneEvent
	Source       chainhash.Hash
	TxID         chainhash.Hash
	Height       uint32
	ScriptPubkey []byte
	Amount       *big.Int
	Timestamp    uint32
	Vout         int32
}

// scriptPubkeyCap is the fixed width a script_pubkey is packed into:
// three u128 columns, 48 bytes, zero-padded.
const scriptPubkeyCap = 48

// Pack serializes the entry into the fixed-tuple column layout from
// §6: rune_id as (u64,u32), network/event as u8, source/txid as two
// u128 halves each, script_pubkey as three u128s padded to 48 bytes,
// amount as u128, height/timestamp as u32, vout as i32.
func (e *RuneEventEntry) Pack() RuneEventEntryValue {
	var scriptPubkey [scriptPubkeyCap]byte
	copy(scriptPubkey[:], e.ScriptPubkey)

	amount := e.Amount
	if amount == nil {
		amount = big.NewInt(0)
	}

	return RuneEventEntryValue{
		RuneIDBlock:    e.RuneID.Block,
		RuneIDTx:       e.RuneID.TxID,
		Network:        byte(e.Network),
		Event:          byte(e.Event),
		SourceLo:       halfLE(e.Source[:16]),
		SourceHi:       halfLE(e.Source[16:]),
		TxIDLo:         halfLE(e.TxID[:16]),
		TxIDHi:         halfLE(e.TxID[16:]),
		ScriptPubkeyLo: halfLE(scriptPubkey[:16]),
		ScriptPubkeyMi: halfLE(scriptPubkey[16:32]),
		ScriptPubkeyHi: halfLE(scriptPubkey[32:]),
		Amount:         new(big.Int).Set(amount),
		Height:         e.Height,
		Timestamp:      e.Timestamp,
		Vout:           e.Vout,
	}
}

// Unpack reconstructs a RuneEventEntry from its packed tuple.
func Unpack(v RuneEventEntryValue) *RuneEventEntry {
	var source, txid chainhash.Hash
	copy(source[:16], leBytes(v.SourceLo, 16))
	copy(source[16:], leBytes(v.SourceHi, 16))
	copy(txid[:16], leBytes(v.TxIDLo, 16))
	copy(txid[16:], leBytes(v.TxIDHi, 16))

	scriptPubkey := make([]byte, 0, scriptPubkeyCap)
	scriptPubkey = append(scriptPubkey, leBytes(v.ScriptPubkeyLo, 16)...)
	scriptPubkey = append(scriptPubkey, leBytes(v.ScriptPubkeyMi, 16)...)
	scriptPubkey = append(scriptPubkey, leBytes(v.ScriptPubkeyHi, 16)...)

	return &RuneEventEntry{
		RuneID:       runes.RuneId{Block: v.RuneIDBlock, TxID: v.RuneIDTx},
		Network:      chain.Network(v.Network),
		Event:        RuneEvent(v.Event),
		Source:       source,
		TxID:         txid,
		Height:       v.Height,
		ScriptPubkey: trimTrailingZeros(scriptPubkey),
		Amount:       v.Amount,
		Timestamp:    v.Timestamp,
		Vout:         v.Vout,
	}
}

// RuneEventEntryValue is the packed, storage-ready shape of a RuneEventEntry.
type RuneEventEntryValue struct {
	RuneIDBlock    uint64
	RuneIDTx       uint32
	Network        byte
	Event          byte
	SourceLo       *big.Int
	SourceHi       *big.Int
	TxIDLo         *big.Int
	TxIDHi         *big.Int
	ScriptPubkeyLo *big.Int
	ScriptPubkeyMi *big.Int
	ScriptPubkeyHi *big.Int
	Amount         *big.Int
	Height         uint32
	Timestamp      uint32
	Vout           int32
}

func halfLE(b []byte) *big.Int {
	le := make([]byte, len(b))
	copy(le, b)
	reverse.Bytes(le)

	return new(big.Int).SetBytes(le)
}

func leBytes(n *big.Int, width int) []byte {
	be := n.Bytes()
	out := make([]byte, width)
	copy(out[width-len(be):], be)
	reverse.Bytes(out)

	return out
}

func trimTrailingZeros(b []byte) []byte {
	i := len(b)
	for i > 0 && b[i-1] == 0 {
		i--
	}

	return b[:i]
}
