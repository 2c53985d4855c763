// Copyright (C) 2024 Creditor Corp. Group.
// See LICENSE for copying information.

// Package updater implements the rune indexer's transition function
// (spec §4.5): applied once per confirmed transaction, it consumes
// input balances, mints, etches, allocates edicts, and burns
// remainders, writing new balance rows, registry entries, and
// append-only events.
package updater

import (
	"encoding/binary"
	"fmt"
	"math/big"
	"sort"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/txscript"
	"github.com/btcsuite/btcd/wire"
	"github.com/decred/dcrd/lru"

	"github.com/creditorcorp/runestone/bitcoin/ord/inscriptions"
	"github.com/creditorcorp/runestone/bitcoin/ord/runes"
	"github.com/creditorcorp/runestone/indexer/balance"
	"github.com/creditorcorp/runestone/indexer/chain"
	"github.com/creditorcorp/runestone/indexer/commitment"
	"github.com/creditorcorp/runestone/indexer/entry"
	"github.com/creditorcorp/runestone/indexer/event"
	"github.com/creditorcorp/runestone/indexer/store"
	"github.com/creditorcorp/runestone/internal/numbers"
	rlog "github.com/creditorcorp/runestone/log"
)

// Updater is the apex component: it writes to the persisted tables
// while indexing a block, applying Index once per transaction in block
// order. Its writes go straight to the tables; it does not group a
// block's writes into one atomic transaction.
type Updater struct {
	Tables  *store.Tables
	Network chain.Network
	Height  uint64
	// BlockTime is the timestamp stamped onto every event this block
	// produces.
	BlockTime uint32
	// Minimum is the network floor below which an explicit rune name
	// is rejected (it is reserved for the network's own use).
	Minimum *runes.Rune
	// Lookup resolves the commitment-check facts for a spent outpoint.
	Lookup commitment.PrevOutputLookup

	// etchedNames caches rune names etched earlier in this process's
	// lifetime, sparing a store round trip for the common case of a
	// repeat submission of the same etching within a short window.
	etchedNames *lru.Cache

	nextEventSeq uint32
	seqInit      bool

	nextRuneSeq uint32
	runeSeqInit bool
}

// NewUpdater constructs an Updater ready to index transactions at
// height, against tables, for the given network.
func NewUpdater(tables *store.Tables, network chain.Network, height uint64, blockTime uint32, minimum *runes.Rune, lookup commitment.PrevOutputLookup) *Updater {
	return &Updater{
		Tables:      tables,
		Network:     network,
		Height:      height,
		BlockTime:   blockTime,
		Minimum:     minimum,
		Lookup:      lookup,
		etchedNames: lru.NewCache(4096),
	}
}

// Index applies the transition function to one transaction (spec
// §4.5). txIndex is the transaction's position within the block.
// inscriptionID, when the indexer is also tracking inscriptions (spec
// §6 IndexInscriptions), names the reveal inscription this transaction
// carries, if any; an etching in the same transaction is cross
// referenced against it in the shared sequence-number space.
func (u *Updater) Index(tx *wire.MsgTx, txIndex uint32, inscriptionID ...*inscriptions.ID) error {
	if err := u.initSequence(); err != nil {
		return err
	}
	if err := u.initRuneSeq(); err != nil {
		return err
	}

	var insc *inscriptions.ID
	if len(inscriptionID) > 0 {
		insc = inscriptionID[0]
	}

	txid := tx.TxHash()

	artifact, err := runes.Decipher(outputScripts(tx))
	if err != nil {
		return fmt.Errorf("decipher tx %s: %w", txid, err)
	}
	if artifact == nil {
		return nil
	}

	runeActions := make(map[runes.RuneId]event.RuneEvent)
	runeInputs := make(map[runes.RuneId][]wire.OutPoint)

	unallocated, err := u.unallocated(tx, txid, runeActions, runeInputs)
	if err != nil {
		return err
	}

	allocated := make([]map[runes.RuneId]*big.Int, len(tx.TxOut))
	for i := range allocated {
		allocated[i] = make(map[runes.RuneId]*big.Int)
	}

	if mintID, ok := mintOf(artifact); ok {
		if amount, err := u.mint(mintID); err != nil {
			return err
		} else if amount != nil {
			addTo(unallocated, mintID, amount)
		}
	}

	etchedID, etchedRune, etched, err := u.etched(txIndex, tx, artifact)
	if err != nil {
		return err
	}

	if runestone, ok := artifact.(*runes.Runestone); ok {
		if etched && runestone.Etching != nil && runestone.Etching.Premine != nil {
			addTo(unallocated, etchedID, runestone.Etching.Premine)
		}

		u.applyEdicts(runestone, etchedID, etched, unallocated, allocated, tx)
	}

	if etched {
		if err := u.createRuneEntry(txid, artifact, etchedID, etchedRune, insc); err != nil {
			return err
		}
	}

	burned := make(map[runes.RuneId]*big.Int)

	if _, isCenotaph := artifact.(*runes.Cenotaph); isCenotaph {
		for id, amount := range unallocated {
			addTo(burned, id, amount)
		}
	} else {
		u.disposeRemainder(artifact.(*runes.Runestone), tx, unallocated, allocated, burned)
	}

	if err := u.commitOutputs(tx, txid, allocated, burned, runeActions); err != nil {
		return err
	}

	return u.commitBurns(tx.TxHash(), burned, runeInputs)
}

// initSequence loads the next monotonic event sequence number from the
// tail of SequenceNumberToRuneEvent, once per Updater.
func (u *Updater) initSequence() error {
	if u.seqInit {
		return nil
	}

	key, _, ok := u.Tables.SequenceNumberToRuneEvent.Last()
	if ok {
		u.nextEventSeq = binary.BigEndian.Uint32(key) + 1
	}

	u.seqInit = true

	return nil
}

func (u *Updater) nextSeq() uint32 {
	seq := u.nextEventSeq
	u.nextEventSeq++

	return seq
}

// initRuneSeq loads the next sequence number in the rune/inscription
// shared numbering space from the tail of SequenceNumberToRuneID.
func (u *Updater) initRuneSeq() error {
	if u.runeSeqInit {
		return nil
	}

	key, _, ok := u.Tables.SequenceNumberToRuneID.Last()
	if ok {
		u.nextRuneSeq = binary.BigEndian.Uint32(key) + 1
	}

	u.runeSeqInit = true

	return nil
}

func (u *Updater) nextRuneSeqNum() uint32 {
	seq := u.nextRuneSeq
	u.nextRuneSeq++

	return seq
}

func outputScripts(tx *wire.MsgTx) [][]byte {
	scripts := make([][]byte, len(tx.TxOut))
	for i, out := range tx.TxOut {
		scripts[i] = out.PkScript
	}

	return scripts
}

func mintOf(artifact runes.Artifact) (runes.RuneId, bool) {
	switch a := artifact.(type) {
	case *runes.Runestone:
		if a.Mint != nil {
			return *a.Mint, true
		}
	case *runes.Cenotaph:
		if a.Mint != nil {
			return *a.Mint, true
		}
	}

	return runes.RuneId{}, false
}

func addTo(m map[runes.RuneId]*big.Int, id runes.RuneId, amount *big.Int) {
	if existing, ok := m[id]; ok {
		m[id] = new(big.Int).Add(existing, amount)
	} else {
		m[id] = new(big.Int).Set(amount)
	}
}

func subFrom(m map[runes.RuneId]*big.Int, id runes.RuneId, amount *big.Int) {
	existing := m[id]
	m[id] = new(big.Int).Sub(existing, amount)
}

// mint credits a mint's output to unallocated, consuming one unit of
// the rune's mint terms (spec §4.5 "Mint"). A failed mint is silent,
// matching the protocol's "not a flaw" rule.
func (u *Updater) mint(id runes.RuneId) (*big.Int, error) {
	key := idKey(id)

	raw, err := u.Tables.IDToEntry.Get(key)
	if err == store.ErrNotFound {
		return nil, nil
	} else if err != nil {
		return nil, err
	}

	e, err := decodeEntry(raw)
	if err != nil {
		return nil, err
	}

	amount, err := e.Mintable(u.Height)
	if err != nil {
		return nil, nil
	}

	e.Mints = new(big.Int).Add(e.Mints, numbers.OneBigInt)

	if err := u.Tables.IDToEntry.Put(key, encodeEntry(e)); err != nil {
		return nil, err
	}

	rlog.Logger().Debugf("rune %s minted %s at height %d", id, amount, u.Height)

	return amount, nil
}

// etched resolves the rune name an artifact declares (explicit or
// reserved), validates it against the registry, and assigns it a
// fresh RuneId. ok is false if the artifact declares no etching, or
// the explicit name fails validation.
func (u *Updater) etched(txIndex uint32, tx *wire.MsgTx, artifact runes.Artifact) (id runes.RuneId, rune_ *runes.Rune, ok bool, err error) {
	var declared *runes.Rune

	switch a := artifact.(type) {
	case *runes.Runestone:
		if a.Etching == nil {
			return runes.RuneId{}, nil, false, nil
		}
		declared = a.Etching.Rune
	case *runes.Cenotaph:
		if a.Etching == nil {
			return runes.RuneId{}, nil, false, nil
		}
		declared = a.Etching
	}

	if declared != nil {
		if u.Minimum != nil && declared.Value().Cmp(u.Minimum.Value()) < 0 {
			return runes.RuneId{}, nil, false, nil
		}
		if declared.IsReserved() {
			return runes.RuneId{}, nil, false, nil
		}

		name := declared.String()
		if u.etchedNames.Contains(name) {
			return runes.RuneId{}, nil, false, nil
		}

		if _, err := u.Tables.RuneToID.Get(runeKey(declared)); err == nil {
			u.etchedNames.Add(name)
			return runes.RuneId{}, nil, false, nil
		} else if err != store.ErrNotFound {
			return runes.RuneId{}, nil, false, err
		}

		if !commitment.Commits(tx, declared, u.Lookup) {
			return runes.RuneId{}, nil, false, nil
		}

		rune_ = declared
	} else {
		reserved, err := u.incrementStatistic(store.StatisticReservedRunes)
		if err != nil {
			return runes.RuneId{}, nil, false, err
		}

		rlog.Logger().Debugf("assigned reserved rune #%d at height %d", reserved, u.Height)
		rune_ = runes.Reserved(runes.RuneId{Block: u.Height, TxID: txIndex})
	}

	return runes.RuneId{Block: u.Height, TxID: txIndex}, rune_, true, nil
}

// createRuneEntry writes the registry rows for a freshly etched rune,
// and, when inscriptionID is non-nil, cross references it in the
// sequence-number space the indexer shares with inscriptions.
func (u *Updater) createRuneEntry(txid chainhash.Hash, artifact runes.Artifact, id runes.RuneId, rune_ *runes.Rune, inscriptionID *inscriptions.ID) error {
	if err := u.Tables.RuneToID.Put(runeKey(rune_), idKey(id)); err != nil {
		return err
	}
	u.etchedNames.Add(rune_.String())
	if err := u.Tables.TxidToRune.Put(txid[:], rune_.Value().Bytes()); err != nil {
		return err
	}

	seqKey := make([]byte, 4)
	binary.BigEndian.PutUint32(seqKey, u.nextRuneSeqNum())
	if err := u.Tables.SequenceNumberToRuneID.Put(seqKey, idKey(id)); err != nil {
		return err
	}
	if inscriptionID != nil {
		if err := u.Tables.InscriptionIDToSequenceNumber.Put(inscriptionID.IntoDataPush(), seqKey); err != nil {
			return err
		}
	}

	number, err := u.incrementStatistic(store.StatisticRunes)
	if err != nil {
		return err
	}

	e := &entry.RuneEntry{
		Block:      id.Block,
		Burned:     big.NewInt(0),
		Mints:      big.NewInt(0),
		Number:     number,
		Premine:    big.NewInt(0),
		Etching:    txid,
		SpacedRune: runes.SpacedRune{Rune: rune_},
		Timestamp:  u.BlockTime,
	}

	switch a := artifact.(type) {
	case *runes.Cenotaph:
		e.BurnedAtBirth = true
	case *runes.Runestone:
		et := a.Etching
		if et.Divisibility != nil {
			e.Divisibility = *et.Divisibility
		}
		if et.Premine != nil {
			e.Premine = et.Premine
		}
		if et.Spacers != nil {
			e.SpacedRune.Spacers = *et.Spacers
		}
		e.Symbol = et.Symbol
		e.Terms = et.Terms
	}

	return u.Tables.IDToEntry.Put(idKey(id), encodeEntry(e))
}

func (u *Updater) incrementStatistic(stat store.Statistic) (uint64, error) {
	key := []byte{byte(stat)}

	current := uint64(0)
	if raw, err := u.Tables.StatisticToCount.Get(key); err == nil {
		current = binary.BigEndian.Uint64(raw)
	} else if err != store.ErrNotFound {
		return 0, err
	}

	next := current + 1

	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, next)

	if err := u.Tables.StatisticToCount.Put(key, buf); err != nil {
		return 0, err
	}

	return current, nil
}

// unallocated consumes each input's prior balance row, crediting it to
// the running unallocated map and emitting a Used event per rune per
// input (spec §4.5 "Consume inputs").
func (u *Updater) unallocated(tx *wire.MsgTx, txid chainhash.Hash, runeActions map[runes.RuneId]event.RuneEvent, runeInputs map[runes.RuneId][]wire.OutPoint) (map[runes.RuneId]*big.Int, error) {
	unallocated := make(map[runes.RuneId]*big.Int)

	for _, in := range tx.TxIn {
		key := outpointKey(in.PreviousOutPoint)

		raw, err := u.Tables.OutPointToBalances.Get(key)
		if err == store.ErrNotFound {
			continue
		} else if err != nil {
			return nil, err
		}

		balances, err := balance.Decode(raw)
		if err != nil {
			return nil, err
		}

		if err := u.Tables.OutPointToBalances.Delete(key); err != nil {
			return nil, err
		}

		for _, b := range balances {
			addTo(unallocated, b.RuneID, b.Amount)
			runeInputs[b.RuneID] = append(runeInputs[b.RuneID], in.PreviousOutPoint)

			if _, ok := runeActions[b.RuneID]; !ok {
				runeActions[b.RuneID] = event.Mint
			}
			runeActions[b.RuneID] = event.Transfer

			seq := u.nextSeq()
			e := &event.RuneEventEntry{
				RuneID:       b.RuneID,
				Network:      u.Network,
				Event:        event.Used,
				Source:       txid,
				TxID:         in.PreviousOutPoint.Hash,
				Height:       uint32(u.Height),
				ScriptPubkey: nil,
				Amount:       b.Amount,
				Timestamp:    u.BlockTime,
				Vout:         int32(in.PreviousOutPoint.Index),
			}
			if err := u.writeEvent(seq, e); err != nil {
				return nil, err
			}
		}
	}

	return unallocated, nil
}

// applyEdicts distributes a Runestone's edicts from unallocated into
// allocated, per the three output policies in spec §4.5. The
// distribute-to-all-outputs policy (edict.Output == len(tx.TxOut))
// splits only across the transaction's non-OP_RETURN outputs, matching
// how the runestone itself is excluded from its own edict's reach.
func (u *Updater) applyEdicts(runestone *runes.Runestone, etchedID runes.RuneId, etched bool, unallocated map[runes.RuneId]*big.Int, allocated []map[runes.RuneId]*big.Int, tx *wire.MsgTx) {
	outputCount := len(tx.TxOut)

	for _, edict := range runestone.Edicts {
		id := edict.RuneID
		if id.IsZero() {
			if !etched {
				continue
			}
			id = etchedID
		}

		balance, ok := unallocated[id]
		if !ok {
			continue
		}

		allocate := func(amount *big.Int, output int) {
			if numbers.IsZero(amount) {
				return
			}

			subFrom(unallocated, id, amount)
			if allocated[output][id] == nil {
				allocated[output][id] = big.NewInt(0)
			}
			allocated[output][id].Add(allocated[output][id], amount)
		}

		if int(edict.Output) == outputCount {
			destinations := make([]int, 0, outputCount)
			for i, out := range tx.TxOut {
				if !isOpReturn(out.PkScript) {
					destinations = append(destinations, i)
				}
			}

			if numbers.IsZero(edict.Amount) {
				count := big.NewInt(int64(len(destinations)))
				if count.Sign() == 0 {
					continue
				}

				share := new(big.Int).Div(balance, count)
				remainder := new(big.Int).Mod(balance, count).Int64()

				for i, output := range destinations {
					amount := new(big.Int).Set(share)
					if int64(i) < remainder {
						amount.Add(amount, numbers.OneBigInt)
					}
					allocate(amount, output)
				}
			} else {
				for _, output := range destinations {
					amount := numbers.Min(edict.Amount, unallocated[id])
					allocate(amount, output)
				}
			}
		} else {
			amount := edict.Amount
			if numbers.IsZero(amount) {
				amount = balance
			} else {
				amount = numbers.Min(amount, balance)
			}

			allocate(amount, int(edict.Output))
		}
	}
}

// disposeRemainder sends every unallocated balance to the runestone's
// pointer output, or burns it if there is none (spec §4.5 "Dispose
// remainder").
func (u *Updater) disposeRemainder(runestone *runes.Runestone, tx *wire.MsgTx, unallocated map[runes.RuneId]*big.Int, allocated []map[runes.RuneId]*big.Int, burned map[runes.RuneId]*big.Int) {
	vout, ok := destinationVout(runestone, tx)
	if !ok {
		for id, amount := range unallocated {
			if !numbers.IsZero(amount) {
				addTo(burned, id, amount)
			}
		}

		return
	}

	for id, amount := range unallocated {
		if numbers.IsZero(amount) {
			continue
		}

		if allocated[vout][id] == nil {
			allocated[vout][id] = big.NewInt(0)
		}
		allocated[vout][id].Add(allocated[vout][id], amount)
	}
}

func destinationVout(runestone *runes.Runestone, tx *wire.MsgTx) (int, bool) {
	if runestone.Pointer != nil {
		return int(*runestone.Pointer), true
	}

	for i, out := range tx.TxOut {
		if !isOpReturn(out.PkScript) {
			return i, true
		}
	}

	return 0, false
}

func isOpReturn(script []byte) bool {
	tokenizer := txscript.MakeScriptTokenizer(0, script)
	return tokenizer.Next() && tokenizer.Opcode() == txscript.OP_RETURN
}

// commitOutputs writes the packed balance row for each output with a
// non-empty allocation and emits the corresponding events (spec §4.5
// "Commit outputs & emit events").
func (u *Updater) commitOutputs(tx *wire.MsgTx, txid chainhash.Hash, allocated []map[runes.RuneId]*big.Int, burned map[runes.RuneId]*big.Int, runeActions map[runes.RuneId]event.RuneEvent) error {
	for vout, balances := range allocated {
		if len(balances) == 0 {
			continue
		}

		if isOpReturn(tx.TxOut[vout].PkScript) {
			for id, amount := range balances {
				addTo(burned, id, amount)
			}

			continue
		}

		rows := make([]balance.Balance, 0, len(balances))
		for id, amount := range balances {
			rows = append(rows, balance.Balance{RuneID: id, Amount: amount})
		}
		sort.Slice(rows, func(i, j int) bool { return rows[i].RuneID.Less(rows[j].RuneID) })

		op := wire.OutPoint{Hash: txid, Index: uint32(vout)}
		if err := u.Tables.OutPointToBalances.Put(outpointKey(op), balance.Encode(rows)); err != nil {
			return err
		}

		for _, row := range rows {
			action, ok := runeActions[row.RuneID]
			if !ok {
				action = event.Mint
			}

			seq := u.nextSeq()
			e := &event.RuneEventEntry{
				RuneID:       row.RuneID,
				Network:      u.Network,
				Event:        action,
				Source:       txid,
				TxID:         txid,
				Height:       uint32(u.Height),
				ScriptPubkey: tx.TxOut[vout].PkScript,
				Amount:       row.Amount,
				Timestamp:    u.BlockTime,
				Vout:         int32(vout),
			}
			if err := u.writeEvent(seq, e); err != nil {
				return err
			}
		}
	}

	return nil
}

// commitBurns accumulates burned amounts onto each rune's registry
// entry and emits one burn event per contributing input, or a single
// synthetic event if the burned amount was created this transaction
// (spec §4.5 "Commit outputs & emit events", final paragraph).
func (u *Updater) commitBurns(txid chainhash.Hash, burned map[runes.RuneId]*big.Int, runeInputs map[runes.RuneId][]wire.OutPoint) error {
	for id, amount := range burned {
		key := idKey(id)

		raw, err := u.Tables.IDToEntry.Get(key)
		if err != nil {
			return fmt.Errorf("burn: load entry %s: %w", id, err)
		}

		e, err := decodeEntry(raw)
		if err != nil {
			return err
		}

		e.Burned = new(big.Int).Add(e.Burned, amount)

		if err := u.Tables.IDToEntry.Put(key, encodeEntry(e)); err != nil {
			return err
		}

		inputs := runeInputs[id]
		if len(inputs) == 0 {
			seq := u.nextSeq()
			ev := &event.RuneEventEntry{
				RuneID: id, Network: u.Network, Event: event.Burn,
				Source: txid, TxID: txid, Height: uint32(u.Height),
				Amount: amount, Timestamp: u.BlockTime, Vout: -1,
			}
			if err := u.writeEvent(seq, ev); err != nil {
				return err
			}

			continue
		}

		for _, in := range inputs {
			seq := u.nextSeq()
			ev := &event.RuneEventEntry{
				RuneID: id, Network: u.Network, Event: event.Burn,
				Source: txid, TxID: in.Hash, Height: uint32(u.Height),
				Amount: amount, Timestamp: u.BlockTime, Vout: int32(in.Index),
			}
			if err := u.writeEvent(seq, ev); err != nil {
				return err
			}
		}
	}

	return nil
}

func (u *Updater) writeEvent(seq uint32, e *event.RuneEventEntry) error {
	key := make([]byte, 4)
	binary.BigEndian.PutUint32(key, seq)

	return u.Tables.SequenceNumberToRuneEvent.Put(key, encodeEventEntry(e))
}

// ReadEvent returns the event written at sequence number seq.
func ReadEvent(tables *store.Tables, seq uint32) (*event.RuneEventEntry, error) {
	key := make([]byte, 4)
	binary.BigEndian.PutUint32(key, seq)

	raw, err := tables.SequenceNumberToRuneEvent.Get(key)
	if err != nil {
		return nil, err
	}

	return decodeEventEntry(raw)
}

// ReadEntry returns the registry entry for id.
func ReadEntry(tables *store.Tables, id runes.RuneId) (*entry.RuneEntry, error) {
	raw, err := tables.IDToEntry.Get(idKey(id))
	if err != nil {
		return nil, err
	}

	return decodeEntry(raw)
}

func idKey(id runes.RuneId) []byte {
	key := make([]byte, 12)
	binary.BigEndian.PutUint64(key[:8], id.Block)
	binary.BigEndian.PutUint32(key[8:], id.TxID)

	return key
}

func runeKey(rune_ *runes.Rune) []byte {
	return rune_.Value().Bytes()
}

func outpointKey(op wire.OutPoint) []byte {
	key := make([]byte, 36)
	copy(key[:32], op.Hash[:])
	binary.BigEndian.PutUint32(key[32:], op.Index)

	return key
}
