// Copyright (C) 2024 Creditor Corp. Group.
// See LICENSE for copying information.

package runes

import (
	"github.com/btcsuite/btcd/txscript"
)

// MagicOpcode is the protocol marker opcode, OP_PUSHNUM_13 (a.k.a. OP_13),
// required immediately after OP_RETURN.
const MagicOpcode = txscript.OP_13

// isPushdata reports whether op is a pushdata opcode (OP_0 through
// OP_PUSHDATA4, opcodes 0-78); every other opcode (79-255) is not pushdata.
func isPushdata(op byte) bool {
	return op <= txscript.OP_PUSHDATA4
}

// payload scans a single output script for a runestone payload.
//
// It returns (nil, nil, false) if the script is not a candidate (does not
// start with OP_RETURN OP_13). Once a candidate is found, every subsequent
// pushdata instruction is concatenated into the payload; a non-pushdata
// opcode after the magic number yields FlawOpcode, and a script the
// tokenizer itself rejects yields FlawInvalidScript.
func payload(script []byte) (data []byte, flaw *Flaw, candidate bool) {
	tokenizer := txscript.MakeScriptTokenizer(0, script)

	if !tokenizer.Next() || tokenizer.Opcode() != txscript.OP_RETURN {
		return nil, nil, false
	}

	if !tokenizer.Next() || tokenizer.Opcode() != MagicOpcode {
		return nil, nil, false
	}

	buf := make([]byte, 0, len(script))
	for tokenizer.Next() {
		op := tokenizer.Opcode()
		if !isPushdata(op) {
			f := FlawOpcode
			return nil, &f, true
		}

		buf = append(buf, tokenizer.Data()...)
	}

	if err := tokenizer.Err(); err != nil {
		f := FlawInvalidScript
		return nil, &f, true
	}

	return buf, nil, true
}
