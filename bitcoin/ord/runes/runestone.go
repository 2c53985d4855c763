// Copyright (C) 2024 Creditor Corp. Group.
// See LICENSE for copying information.

package runes

import (
	"math/big"
	"unicode/utf8"

	"github.com/btcsuite/btcd/txscript"

	"github.com/creditorcorp/runestone/internal/sequencereader"
	"github.com/creditorcorp/runestone/varint"
)

// ErrTruncated reports a tag whose value argument is missing from the
// integer sequence.
var ErrTruncated = errTruncated{}

type errTruncated struct{}

func (errTruncated) Error() string { return "truncated payload" }

// MaxPushChunk is the maximum size of a single script data push, per the
// Bitcoin consensus rule limiting script elements to 520 bytes.
const MaxPushChunk = 520

// Runestone is a well-formed rune protocol message.
type Runestone struct {
	Edicts  []Edict
	Etching *Etching
	Mint    *RuneId
	Pointer *uint32
}

// Decipher scans a transaction's output scripts for a runestone and decodes
// it, following the scanner (§4.2) and decoder (§4.3) algorithm: the first
// output whose script opens with OP_RETURN OP_13 is the candidate; malformed
// input anywhere along the way produces a Cenotaph rather than an error. A
// transaction carrying no candidate output returns (nil, nil).
func Decipher(outputScripts [][]byte) (Artifact, error) {
	var (
		data  []byte
		found bool
	)

	for _, script := range outputScripts {
		d, flaw, candidate := payload(script)
		if !candidate {
			continue
		}

		found = true
		if flaw != nil {
			return &Cenotaph{Flaw: flaw}, nil
		}

		data = d
		break
	}

	if !found {
		return nil, nil
	}

	integers, err := varint.Integers(data)
	if err != nil {
		flaw := FlawVarint
		return &Cenotaph{Flaw: &flaw}, nil
	}

	message, err := ParseMessage(sequencereader.New(integers))
	if err != nil {
		flaw := FlawTruncatedField
		return &Cenotaph{Flaw: &flaw}, nil
	}

	if message.Cenotaph != nil {
		return &Cenotaph{Flaw: message.Cenotaph}, nil
	}

	return interpret(message, len(outputScripts))
}

// interpret implements §4.3 steps 5-11: flag extraction, etching/mint/
// pointer narrowing, edict output bound and supply overflow checks, and
// final unknown-tag and unknown-flag detection. The first flaw encountered
// wins.
func interpret(message *Message, outputsCount int) (Artifact, error) {
	var recordedFlaw *Flaw
	record := func(f Flaw) {
		if recordedFlaw == nil {
			ff := f
			recordedFlaw = &ff
		}
	}

	fields := message.Fields

	flags := big.NewInt(0)
	if fl, ok := fields[TagFlags]; ok {
		if len(fl) != 1 {
			record(FlawUnrecognizedEvenTag)
		} else {
			flags = new(big.Int).Set(fl[0])
		}
		delete(fields, TagFlags)
	}

	etching := TakeFlag(flags, FlagEtching)
	terms := TakeFlag(flags, FlagTerms)
	turbo := TakeFlag(flags, FlagTurbo)
	cenotaphFlag := TakeFlag(flags, FlagCenotaph)

	if terms && !etching {
		record(FlawUnrecognizedFlag)
	}

	takeOne := func(tag Tag) (*big.Int, bool) {
		vs, ok := fields[tag]
		if !ok || len(vs) == 0 {
			return nil, false
		}

		delete(fields, tag)

		return vs[0], true
	}

	var etch *Etching
	if etching {
		etch = &Etching{Turbo: turbo}

		if v, ok := takeOne(TagRune); ok {
			r, err := NewRuneFromNumber(v)
			if err != nil {
				record(FlawUnrecognizedEvenTag)
			} else {
				etch.Rune = r
			}
		}

		if v, ok := takeOne(TagDivisibility); ok {
			if v.IsUint64() && v.Uint64() <= uint64(MaxDivisibility) {
				d := byte(v.Uint64())
				etch.Divisibility = &d
			}
			// narrowing failure on this odd tag is silently ignored.
		}

		if v, ok := takeOne(TagSpacers); ok {
			if v.IsUint64() && v.Uint64() <= uint64(MaxSpacers) {
				s := uint32(v.Uint64())
				etch.Spacers = &s
			}
		}

		if v, ok := takeOne(TagSymbol); ok {
			if v.IsUint64() && v.Uint64() <= utf8.MaxRune && utf8.ValidRune(rune(v.Uint64())) {
				s := rune(v.Uint64())
				etch.Symbol = &s
			}
		}

		if v, ok := takeOne(TagPremine); ok {
			etch.Premine = v
		}

		if terms {
			t := &Terms{}

			if v, ok := takeOne(TagAmount); ok {
				t.Amount = v
			}
			if v, ok := takeOne(TagCap); ok {
				t.Cap = v
			}
			if v, ok := takeOne(TagHeightStart); ok && v.IsUint64() {
				h := v.Uint64()
				t.HeightStart = &h
			}
			if v, ok := takeOne(TagHeightEnd); ok && v.IsUint64() {
				h := v.Uint64()
				t.HeightEnd = &h
			}
			if v, ok := takeOne(TagOffsetStart); ok && v.IsUint64() {
				h := v.Uint64()
				t.OffsetStart = &h
			}
			if v, ok := takeOne(TagOffsetEnd); ok && v.IsUint64() {
				h := v.Uint64()
				t.OffsetEnd = &h
			}

			etch.Terms = t
		}
	}

	var mint *RuneId
	if vs, ok := fields[TagMint]; ok {
		delete(fields, TagMint)

		if len(vs) != 2 || !vs[0].IsUint64() || !vs[1].IsUint64() || vs[1].Cmp(bigMaxUint32) > 0 {
			record(FlawUnrecognizedEvenTag)
		} else {
			mint = &RuneId{Block: vs[0].Uint64(), TxID: uint32(vs[1].Uint64())}
		}
	}

	var pointer *uint32
	if v, ok := takeOne(TagPointer); ok {
		if !v.IsUint64() || v.Uint64() >= uint64(outputsCount) {
			record(FlawUnrecognizedEvenTag)
		} else {
			p := uint32(v.Uint64())
			pointer = &p
		}
	}

	for _, e := range message.Edicts {
		if int(e.Output) > outputsCount {
			record(FlawEdictOutput)
			break
		}
	}

	if etch != nil {
		if _, ok := etch.Supply(); !ok {
			record(FlawSupplyOverflow)
		}
	}

	for tag := range fields {
		if !tag.IsOdd() {
			record(FlawUnrecognizedEvenTag)
			break
		}
	}

	if cenotaphFlag || flags.Sign() != 0 {
		record(FlawUnrecognizedFlag)
	}

	if recordedFlaw != nil {
		var etchedRune *Rune
		if etch != nil {
			etchedRune = etch.Rune
		}

		return &Cenotaph{Flaw: recordedFlaw, Etching: etchedRune, Mint: mint}, nil
	}

	return &Runestone{
		Edicts:  message.Edicts,
		Etching: etch,
		Mint:    mint,
		Pointer: pointer,
	}, nil
}

// Encipher serializes the Runestone to its canonical OP_RETURN script, per
// §4.4: flags, etching fields in fixed order, mint, pointer, then body and
// edicts sorted by ascending RuneId with delta encoding. The payload is
// split across as many ≤520-byte pushes as required.
func (runestone *Runestone) Encipher() ([]byte, error) {
	payload, err := runestone.serialize()
	if err != nil {
		return nil, err
	}

	builder := txscript.NewScriptBuilder()
	builder.AddOp(txscript.OP_RETURN)
	builder.AddOp(MagicOpcode)

	for len(payload) > 0 {
		n := len(payload)
		if n > MaxPushChunk {
			n = MaxPushChunk
		}

		builder.AddFullData(payload[:n])
		payload = payload[n:]
	}

	return builder.Script()
}

// serialize produces the canonical varint payload (everything between
// OP_13 and the end of the script).
func (runestone *Runestone) serialize() ([]byte, error) {
	message := Message{
		Edicts: runestone.Edicts,
		Fields: map[Tag][]*big.Int{},
	}

	flags := big.NewInt(0)
	if runestone.Etching != nil {
		e := runestone.Etching
		AddFlag(flags, FlagEtching)

		if e.Rune != nil {
			message.Fields[TagRune] = []*big.Int{e.Rune.Value()}
		}
		if e.Divisibility != nil {
			message.Fields[TagDivisibility] = []*big.Int{big.NewInt(int64(*e.Divisibility))}
		}
		if e.Spacers != nil {
			message.Fields[TagSpacers] = []*big.Int{new(big.Int).SetUint64(uint64(*e.Spacers))}
		}
		if e.Symbol != nil {
			message.Fields[TagSymbol] = []*big.Int{big.NewInt(int64(*e.Symbol))}
		}
		if e.Premine != nil {
			message.Fields[TagPremine] = []*big.Int{e.Premine}
		}

		if e.Terms != nil {
			AddFlag(flags, FlagTerms)

			t := e.Terms
			if t.Amount != nil {
				message.Fields[TagAmount] = []*big.Int{t.Amount}
			}
			if t.Cap != nil {
				message.Fields[TagCap] = []*big.Int{t.Cap}
			}
			if t.HeightStart != nil {
				message.Fields[TagHeightStart] = []*big.Int{new(big.Int).SetUint64(*t.HeightStart)}
			}
			if t.HeightEnd != nil {
				message.Fields[TagHeightEnd] = []*big.Int{new(big.Int).SetUint64(*t.HeightEnd)}
			}
			if t.OffsetStart != nil {
				message.Fields[TagOffsetStart] = []*big.Int{new(big.Int).SetUint64(*t.OffsetStart)}
			}
			if t.OffsetEnd != nil {
				message.Fields[TagOffsetEnd] = []*big.Int{new(big.Int).SetUint64(*t.OffsetEnd)}
			}
		}

		if e.Turbo {
			AddFlag(flags, FlagTurbo)
		}

		message.Fields[TagFlags] = []*big.Int{flags}
	}

	if runestone.Mint != nil {
		message.Fields[TagMint] = runestone.Mint.ToIntSeq()
	}

	if runestone.Pointer != nil {
		message.Fields[TagPointer] = []*big.Int{new(big.Int).SetUint64(uint64(*runestone.Pointer))}
	}

	payload := make([]byte, 0)
	for _, tag := range []Tag{TagFlags, TagRune, TagDivisibility, TagSpacers, TagSymbol, TagPremine,
		TagAmount, TagCap, TagHeightStart, TagHeightEnd, TagOffsetStart, TagOffsetEnd, TagMint, TagPointer} {
		for _, v := range message.Fields[tag] {
			payload = varint.Encode(varint.Encode(payload, tag.BigInt()), v)
		}
	}
	if message.Edicts != nil {
		payload = varint.Encode(payload, TagBody.BigInt())
		for _, n := range EdictsToIntSeq(message.Edicts) {
			payload = varint.Encode(payload, n)
		}
	}

	return payload, nil
}
