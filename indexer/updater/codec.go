// Copyright (C) 2024 Creditor Corp. Group.
// See LICENSE for copying information.

package updater

import (
	"encoding/binary"
	"errors"
	"math/big"

	"github.com/creditorcorp/runestone/bitcoin/ord/runes"
	"github.com/creditorcorp/runestone/indexer/entry"
	"github.com/creditorcorp/runestone/indexer/event"
	"github.com/creditorcorp/runestone/varint"
)

// errShortEntry reports a RuneEntry row too short to hold its fixed
// fields; a table corrupted outside the updater would trip this.
var errShortEntry = errors.New("updater: truncated rune entry row")

// encodeEntry serializes a RuneEntry into the bytes stored under
// IDToEntry: a run of fixed-width fields followed by varint-packed
// big.Int columns and an optional Terms block, mirroring the row
// layout balance.Encode uses for balances.
func encodeEntry(e *entry.RuneEntry) []byte {
	buf := make([]byte, 0, 128)

	u64 := make([]byte, 8)
	binary.BigEndian.PutUint64(u64, e.Block)
	buf = append(buf, u64...)

	binary.BigEndian.PutUint64(u64, e.Number)
	buf = append(buf, u64...)

	buf = append(buf, e.Divisibility)
	buf = append(buf, boolByte(e.BurnedAtBirth))
	buf = append(buf, e.Etching[:]...)

	var timestamp [4]byte
	binary.BigEndian.PutUint32(timestamp[:], e.Timestamp)
	buf = append(buf, timestamp[:]...)

	var spacers [4]byte
	binary.BigEndian.PutUint32(spacers[:], e.SpacedRune.Spacers)
	buf = append(buf, spacers[:]...)

	if e.Symbol != nil {
		buf = append(buf, 1)
		var s [4]byte
		binary.BigEndian.PutUint32(s[:], uint32(*e.Symbol))
		buf = append(buf, s[:]...)
	} else {
		buf = append(buf, 0)
	}

	buf = varint.Encode(buf, orZero(e.Burned))
	buf = varint.Encode(buf, orZero(e.Mints))
	buf = varint.Encode(buf, orZero(e.Premine))
	buf = varint.Encode(buf, runeValueOrZero(e.SpacedRune.Rune))

	if e.Terms != nil {
		buf = append(buf, 1)
		buf = appendOptionalBigInt(buf, e.Terms.Amount)
		buf = appendOptionalBigInt(buf, e.Terms.Cap)
		buf = appendOptionalU64(buf, e.Terms.HeightStart)
		buf = appendOptionalU64(buf, e.Terms.HeightEnd)
		buf = appendOptionalU64(buf, e.Terms.OffsetStart)
		buf = appendOptionalU64(buf, e.Terms.OffsetEnd)
	} else {
		buf = append(buf, 0)
	}

	return buf
}

// decodeEntry is the inverse of encodeEntry.
func decodeEntry(row []byte) (*entry.RuneEntry, error) {
	if len(row) < 8+8+1+1+32+4+4+1 {
		return nil, errShortEntry
	}

	e := &entry.RuneEntry{}

	e.Block = binary.BigEndian.Uint64(row[:8])
	row = row[8:]

	e.Number = binary.BigEndian.Uint64(row[:8])
	row = row[8:]

	e.Divisibility = row[0]
	row = row[1:]

	e.BurnedAtBirth = row[0] != 0
	row = row[1:]

	copy(e.Etching[:], row[:32])
	row = row[32:]

	e.Timestamp = binary.BigEndian.Uint32(row[:4])
	row = row[4:]

	spacers := binary.BigEndian.Uint32(row[:4])
	row = row[4:]

	hasSymbol := row[0] != 0
	row = row[1:]
	if hasSymbol {
		if len(row) < 4 {
			return nil, errShortEntry
		}
		s := rune(binary.BigEndian.Uint32(row[:4]))
		e.Symbol = &s
		row = row[4:]
	}

	var err error
	var burned, mints, premine, runeValue *big.Int

	burned, row, err = readBigInt(row)
	if err != nil {
		return nil, err
	}
	mints, row, err = readBigInt(row)
	if err != nil {
		return nil, err
	}
	premine, row, err = readBigInt(row)
	if err != nil {
		return nil, err
	}
	runeValue, row, err = readBigInt(row)
	if err != nil {
		return nil, err
	}

	e.Burned = burned
	e.Mints = mints
	e.Premine = premine

	rune_, err := runes.NewRuneFromNumber(runeValue)
	if err != nil {
		return nil, err
	}
	e.SpacedRune = runes.SpacedRune{Rune: rune_, Spacers: spacers}

	if len(row) < 1 {
		return nil, errShortEntry
	}
	hasTerms := row[0] != 0
	row = row[1:]

	if hasTerms {
		terms := &runes.Terms{}

		terms.Amount, row, err = readOptionalBigInt(row)
		if err != nil {
			return nil, err
		}
		terms.Cap, row, err = readOptionalBigInt(row)
		if err != nil {
			return nil, err
		}
		terms.HeightStart, row, err = readOptionalU64(row)
		if err != nil {
			return nil, err
		}
		terms.HeightEnd, row, err = readOptionalU64(row)
		if err != nil {
			return nil, err
		}
		terms.OffsetStart, row, err = readOptionalU64(row)
		if err != nil {
			return nil, err
		}
		terms.OffsetEnd, row, err = readOptionalU64(row)
		if err != nil {
			return nil, err
		}

		e.Terms = terms
	}

	return e, nil
}

// encodeEventEntry packs a RuneEventEntry's Pack()'d column tuple into
// an append-only log row.
func encodeEventEntry(e *event.RuneEventEntry) []byte {
	v := e.Pack()

	buf := make([]byte, 0, 96)

	u64 := make([]byte, 8)
	binary.BigEndian.PutUint64(u64, v.RuneIDBlock)
	buf = append(buf, u64...)

	var u32 [4]byte
	binary.BigEndian.PutUint32(u32[:], v.RuneIDTx)
	buf = append(buf, u32[:]...)

	buf = append(buf, v.Network, v.Event)

	binary.BigEndian.PutUint32(u32[:], v.Height)
	buf = append(buf, u32[:]...)
	binary.BigEndian.PutUint32(u32[:], v.Timestamp)
	buf = append(buf, u32[:]...)
	binary.BigEndian.PutUint32(u32[:], uint32(v.Vout))
	buf = append(buf, u32[:]...)

	buf = varint.Encode(buf, v.SourceLo)
	buf = varint.Encode(buf, v.SourceHi)
	buf = varint.Encode(buf, v.TxIDLo)
	buf = varint.Encode(buf, v.TxIDHi)
	buf = varint.Encode(buf, v.ScriptPubkeyLo)
	buf = varint.Encode(buf, v.ScriptPubkeyMi)
	buf = varint.Encode(buf, v.ScriptPubkeyHi)
	buf = varint.Encode(buf, v.Amount)

	return buf
}

// decodeEventEntry is the inverse of encodeEventEntry.
func decodeEventEntry(row []byte) (*event.RuneEventEntry, error) {
	if len(row) < 8+4+1+1+4+4+4 {
		return nil, errShortEntry
	}

	var v event.RuneEventEntryValue

	v.RuneIDBlock = binary.BigEndian.Uint64(row[:8])
	row = row[8:]
	v.RuneIDTx = binary.BigEndian.Uint32(row[:4])
	row = row[4:]
	v.Network = row[0]
	v.Event = row[1]
	row = row[2:]
	v.Height = binary.BigEndian.Uint32(row[:4])
	row = row[4:]
	v.Timestamp = binary.BigEndian.Uint32(row[:4])
	row = row[4:]
	v.Vout = int32(binary.BigEndian.Uint32(row[:4]))
	row = row[4:]

	var err error
	v.SourceLo, row, err = readBigInt(row)
	if err != nil {
		return nil, err
	}
	v.SourceHi, row, err = readBigInt(row)
	if err != nil {
		return nil, err
	}
	v.TxIDLo, row, err = readBigInt(row)
	if err != nil {
		return nil, err
	}
	v.TxIDHi, row, err = readBigInt(row)
	if err != nil {
		return nil, err
	}
	v.ScriptPubkeyLo, row, err = readBigInt(row)
	if err != nil {
		return nil, err
	}
	v.ScriptPubkeyMi, row, err = readBigInt(row)
	if err != nil {
		return nil, err
	}
	v.ScriptPubkeyHi, row, err = readBigInt(row)
	if err != nil {
		return nil, err
	}
	v.Amount, _, err = readBigInt(row)
	if err != nil {
		return nil, err
	}

	return event.Unpack(v), nil
}

func boolByte(b bool) byte {
	if b {
		return 1
	}

	return 0
}

func orZero(n *big.Int) *big.Int {
	if n == nil {
		return big.NewInt(0)
	}

	return n
}

func runeValueOrZero(r *runes.Rune) *big.Int {
	if r == nil {
		return big.NewInt(0)
	}

	return r.Value()
}

func readBigInt(row []byte) (*big.Int, []byte, error) {
	n, consumed, err := varint.Decode(row)
	if err != nil {
		return nil, nil, err
	}

	return n, row[consumed:], nil
}

func appendOptionalBigInt(buf []byte, n *big.Int) []byte {
	if n == nil {
		return append(buf, 0)
	}

	buf = append(buf, 1)

	return varint.Encode(buf, n)
}

func readOptionalBigInt(row []byte) (*big.Int, []byte, error) {
	if len(row) < 1 {
		return nil, nil, errShortEntry
	}

	present := row[0] != 0
	row = row[1:]

	if !present {
		return nil, row, nil
	}

	n, rest, err := readBigInt(row)

	return n, rest, err
}

func appendOptionalU64(buf []byte, n *uint64) []byte {
	if n == nil {
		return append(buf, 0)
	}

	buf = append(buf, 1)
	u64 := make([]byte, 8)
	binary.BigEndian.PutUint64(u64, *n)

	return append(buf, u64...)
}

func readOptionalU64(row []byte) (*uint64, []byte, error) {
	if len(row) < 1 {
		return nil, nil, errShortEntry
	}

	present := row[0] != 0
	row = row[1:]

	if !present {
		return nil, row, nil
	}

	if len(row) < 8 {
		return nil, nil, errShortEntry
	}

	v := binary.BigEndian.Uint64(row[:8])

	return &v, row[8:], nil
}
