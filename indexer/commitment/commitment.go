// Copyright (C) 2024 Creditor Corp. Group.
// See LICENSE for copying information.

// Package commitment checks whether a transaction's inputs commit to a
// rune's name, per spec's "Commitment format": a taproot input witness
// tapscript push equal to the rune's little-endian minimal encoding,
// spending a mature (>= 6 confirmations) P2TR output.
package commitment

import (
	"github.com/btcsuite/btcd/txscript"
	"github.com/btcsuite/btcd/wire"

	"github.com/creditorcorp/runestone/bitcoin/ord/runes"
)

// MinConfirmations is the maturity threshold a commitment's spent
// output must have reached.
const MinConfirmations = 6

// PrevOutputInfo is the caller-supplied fact about a spent outpoint the
// updater needs to judge a commitment; the indexer does not own a UTXO
// set or RPC client (out of scope), so this is provided by the caller.
type PrevOutputInfo struct {
	IsP2TR        bool
	Confirmations uint32
}

// PrevOutputLookup resolves the PrevOutputInfo for a spent outpoint.
type PrevOutputLookup func(op wire.OutPoint) (PrevOutputInfo, bool)

// Commits reports whether tx commits to rune: at least one input's
// tapscript contains a push equal to the rune's commitment bytes, and
// that input spends a mature P2TR output.
func Commits(tx *wire.MsgTx, rune_ *runes.Rune, lookup PrevOutputLookup) bool {
	commitment := rune_.Commitment()

	for _, in := range tx.TxIn {
		tapscript, ok := extractTapscript(in.Witness)
		if !ok {
			continue
		}

		if !witnessCommits(tapscript, commitment) {
			continue
		}

		info, ok := lookup(in.PreviousOutPoint)
		if !ok {
			continue
		}

		if info.IsP2TR && info.Confirmations >= MinConfirmations {
			return true
		}
	}

	return false
}

// extractTapscript returns the second-to-last witness element, which is
// the tapscript of a script-path spend (the last element being the
// control block); an annex (present iff the last element starts with
// 0x50) is skipped first.
func extractTapscript(witness wire.TxWitness) ([]byte, bool) {
	n := len(witness)
	if n < 2 {
		return nil, false
	}

	if n >= 1 && len(witness[n-1]) > 0 && witness[n-1][0] == 0x50 {
		n--
	}

	if n < 2 {
		return nil, false
	}

	return witness[n-2], true
}

// witnessCommits reports whether any pushdata instruction in script
// equals commitment, ignoring scripts the tokenizer cannot parse (an
// extracted tapscript candidate need not itself be valid).
func witnessCommits(script, commitment []byte) bool {
	tokenizer := txscript.MakeScriptTokenizer(0, script)

	for tokenizer.Next() {
		if len(tokenizer.Data()) == 0 {
			continue
		}

		if byteEqual(tokenizer.Data(), commitment) {
			return true
		}
	}

	return false
}

func byteEqual(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}

	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}

	return true
}
