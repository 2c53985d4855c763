// Copyright (C) 2024 Creditor Corp. Group.
// See LICENSE for copying information.

package runes

import (
	"math/big"
	"slices"

	"github.com/creditorcorp/runestone/internal/sequencereader"
)

// fieldType pairs a tag with its emitted values, used only to order fields
// deterministically when serializing a Message.
type fieldType struct {
	Tag  Tag
	Nums []*big.Int
}

// Message is the tag/value and edict sequence decoded from a runestone
// payload, before flaw interpretation.
type Message struct {
	Edicts []Edict
	Fields map[Tag][]*big.Int
	// Cenotaph is set if the body's integer count was not a multiple of 4,
	// or an edict's RuneId delta overflowed.
	Cenotaph *Flaw
}

var bigMaxUint32 = big.NewInt(0xffffffff)

// ParseMessage parses a Message from an integer sequence: tag/value pairs
// until the Body tag, after which come edicts. A repeated tag accumulates
// all of its values in order; interpret reads the first one (two for Mint).
// Tags above 255 are folded into TagCenotaph when even and TagNop when odd.
func ParseMessage(sr *sequencereader.SequenceReader[*big.Int]) (*Message, error) {
	message := &Message{
		Fields: make(map[Tag][]*big.Int),
	}

	for sr.HasNext() {
		tagBigInt, _ := sr.Next() // HasNext already checked above.

		var tag Tag
		if tagBigInt.IsUint64() && tagBigInt.Uint64() <= 0xff {
			tag = Tag(tagBigInt.Uint64())
		} else if tagBigInt.Bit(0) == 0 {
			tag = TagCenotaph
		} else {
			tag = TagNop
		}

		if tag == TagBody {
			edicts, flaw := parseEdicts(sr)
			message.Edicts = edicts
			message.Cenotaph = flaw

			break
		}

		value, err := sr.Next()
		if err != nil {
			return nil, ErrTruncated
		}

		message.Fields[tag] = append(message.Fields[tag], value)
	}

	if len(message.Fields) == 0 {
		message.Fields = nil
	}

	return message, nil
}

// parseEdicts decodes the flat (block_delta, tx_delta, amount, output)*
// sequence trailing the Body tag. A count not divisible by 4 or an
// overflowing delta yields a flaw instead of an error, matching the
// decoder's "never abort, always cenotaph" policy.
func parseEdicts(sr *sequencereader.SequenceReader[*big.Int]) ([]Edict, *Flaw) {
	if sr.Len()%4 != 0 {
		flaw := FlawTrailingIntegers
		return nil, &flaw
	}

	var previous RuneId
	edicts := make([]Edict, 0, sr.Len()/4)
	for sr.HasNext() {
		block, _ := sr.Next()
		tx, _ := sr.Next()
		amount, _ := sr.Next()
		output, _ := sr.Next()

		if !block.IsUint64() || !tx.IsUint64() || tx.Cmp(bigMaxUint32) > 0 {
			flaw := FlawEdictRuneId
			return nil, &flaw
		}

		id, ok := previous.Next(block.Uint64(), uint32(tx.Uint64()))
		if !ok {
			flaw := FlawEdictRuneId
			return nil, &flaw
		}

		if !output.IsUint64() || output.Cmp(bigMaxUint32) > 0 {
			flaw := FlawEdictOutput
			return nil, &flaw
		}

		edicts = append(edicts, Edict{
			RuneID: id,
			Amount: amount,
			Output: uint32(output.Uint64()),
		})

		previous.Set(id)
	}

	return edicts, nil
}

// ToIntSeq returns Message as a sequence of integers: sorted tag/value
// pairs, then Body and the delta-encoded edicts.
func (message *Message) ToIntSeq() []*big.Int {
	ordered := make([]fieldType, 0, len(message.Fields))
	for tag, ints := range message.Fields {
		ordered = append(ordered, fieldType{tag, ints})
	}

	// sort ordered for immutability.
	slices.SortFunc(ordered, func(a, b fieldType) int {
		return int(a.Tag) - int(b.Tag)
	})

	// key/value -> 2 ints + 1 extra for mint 2nd value + edicts*4 for
	// edicts values - 1 because edicts key value is group of 4 ints.
	sequence := make([]*big.Int, 0, len(message.Fields)*2+len(message.Edicts)*4)
	for _, field := range ordered {
		for _, val := range field.Nums {
			sequence = append(sequence, field.Tag.BigInt(), val)
		}
	}

	if message.Edicts != nil {
		sequence = append(sequence, TagBody.BigInt())
		sequence = append(sequence, EdictsToIntSeq(message.Edicts)...)
	}

	return sequence
}
