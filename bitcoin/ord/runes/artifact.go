// Copyright (C) 2024 Creditor Corp. Group.
// See LICENSE for copying information.

package runes

// Artifact is the result of deciphering a transaction's runestone: either a
// well-formed Runestone or a malformed Cenotaph.
type Artifact interface {
	isArtifact()
}

// Cenotaph is a malformed runestone. All runes it references are burned.
type Cenotaph struct {
	Flaw    *Flaw
	Etching *Rune
	Mint    *RuneId
}

func (*Cenotaph) isArtifact() {}

func (*Runestone) isArtifact() {}

// AsCenotaph returns a's Cenotaph view, or nil if a is a well-formed Runestone.
func AsCenotaph(a Artifact) *Cenotaph {
	c, _ := a.(*Cenotaph)
	return c
}

// AsRunestone returns a's Runestone view, or nil if a is a Cenotaph.
func AsRunestone(a Artifact) *Runestone {
	r, _ := a.(*Runestone)
	return r
}
