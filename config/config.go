// Copyright (C) 2024 Creditor Corp. Group.
// See LICENSE for copying information.

// Package config declares the indexer's recognised runtime options.
package config

import (
	"github.com/jessevdk/go-flags"

	"github.com/creditorcorp/runestone/indexer/chain"
)

// Config holds the options in §6's "recognised options" list.
type Config struct {
	Network                chain.Network `long:"network" description:"bitcoin network to index" default:"mainnet"`
	IndexInscriptions      bool          `long:"index-inscriptions" description:"also index ordinal inscriptions"`
	FirstInscriptionHeight uint32        `long:"first-inscription-height" description:"height to start indexing inscriptions from"`
	FirstRuneHeight        uint32        `long:"first-rune-height" description:"height to start indexing runes from, on networks with no well-known height"`
}

// Parse parses args (typically os.Args[1:]) into a Config.
func Parse(args []string) (*Config, error) {
	cfg := &Config{}

	parser := flags.NewParser(cfg, flags.Default)
	if _, err := parser.ParseArgs(args); err != nil {
		return nil, err
	}

	return cfg, nil
}

// FirstHeight resolves the indexer's starting height for this config,
// per chain.FirstHeight.
func (cfg *Config) FirstHeight() uint32 {
	return chain.FirstHeight(cfg.Network, cfg.IndexInscriptions, cfg.FirstInscriptionHeight, cfg.FirstRuneHeight)
}
