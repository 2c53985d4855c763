// Copyright (C) 2024 Creditor Corp. Group.
// See LICENSE for copying information.

// Package varint implements the LEB128-style unsigned varint codec used to
// pack the integer fields of a runestone payload. Every value fits a u128:
// each byte carries 7 data bits in its low bits and a continuation flag in
// its high bit, so a value needs at most ceil(128/7) = 19 bytes.
package varint

import (
	"bytes"
	"errors"
	"io"
	"math/big"

	"github.com/aviate-labs/leb128"
)

// MaxEncodedLen is the largest number of bytes a single u128 varint may
// occupy.
const MaxEncodedLen = 19

// ErrOverrun reports that a continuation bit required a byte past the end of
// the input.
var ErrOverrun = errors.New("varint: truncated")

// ErrOverflow reports that a decoded value does not fit in 128 bits.
var ErrOverflow = errors.New("varint: overflow")

var maxValue = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 128), big.NewInt(1))

// MaxValue returns 2^128 - 1, the largest value the codec can carry.
func MaxValue() *big.Int {
	return new(big.Int).Set(maxValue)
}

// Fits reports whether n is a valid u128, i.e. 0 <= n <= MaxValue().
func Fits(n *big.Int) bool {
	return n.Sign() >= 0 && n.Cmp(maxValue) <= 0
}

// Encode appends the canonical LEB128 encoding of n to dst and returns the
// extended slice. Encode never emits redundant zero continuation groups.
// n must already be a valid u128; callers are expected to have validated
// that upstream, since every field that reaches the wire format has already
// been bounds-checked against MaxValue.
func Encode(dst []byte, n *big.Int) []byte {
	if !Fits(n) {
		panic("varint: value out of u128 range")
	}

	encoded, err := leb128.EncodeUnsigned(n)
	if err != nil {
		panic(err)
	}

	return append(dst, encoded...)
}

// Decode reads a single varint from the front of data, returning the decoded
// value and the number of bytes it consumed.
//
// It reports ErrOverrun when a continuation bit is set on the last byte this
// codec permits without the input supplying a further byte to continue into,
// and ErrOverflow when the decoded value (or the group count required to
// reach it) would exceed 128 bits.
func Decode(data []byte) (*big.Int, int, error) {
	bounded := data
	if len(bounded) > MaxEncodedLen {
		bounded = bounded[:MaxEncodedLen]
	}

	r := bytes.NewReader(bounded)
	before := r.Len()

	value, err := leb128.DecodeUnsigned(r)
	if err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, 0, ErrOverrun
		}
		return nil, 0, err
	}

	if !Fits(value) {
		return nil, 0, ErrOverflow
	}

	return value, before - r.Len(), nil
}

// Integers decodes payload into the complete sequence of varints it encodes,
// failing on the first malformed group.
func Integers(payload []byte) ([]*big.Int, error) {
	integers := make([]*big.Int, 0, len(payload))

	for i := 0; i < len(payload); {
		value, n, err := Decode(payload[i:])
		if err != nil {
			return nil, err
		}

		integers = append(integers, value)
		i += n
	}

	return integers, nil
}
