// Package storage implements the storage overlay: a sparse, memoizing view of contract storage in which slots of
// arbitrary-mode addresses lazily resolve to generated words, and explicit writes always win over generation.
package storage

import (
	"bytes"

	"github.com/crytic/arbiter/logging"
	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
	"golang.org/x/exp/slices"
)

// ErrArbitraryTarget indicates a storage copy whose target address is in arbitrary mode.
var ErrArbitraryTarget = errors.New("target address cannot have arbitrary storage")

// KeyedGenerator describes the generation dependency of the Overlay: a pure function from key bytes to a word.
type KeyedGenerator interface {
	// KeyedWord returns the word for the key. It must return the same word for the same key until a reseed.
	KeyedWord(key []byte) common.Hash
}

// Origin describes how an overlay entry came to hold its value.
type Origin uint8

const (
	// OriginGenerated marks an entry lazily filled with a generated word.
	OriginGenerated Origin = iota + 1
	// OriginExplicit marks an entry set by an explicit write.
	OriginExplicit
)

// String returns a human-readable name for the origin.
func (o Origin) String() string {
	switch o {
	case OriginGenerated:
		return "generated"
	case OriginExplicit:
		return "explicit"
	default:
		return "unknown"
	}
}

// Entry is a memoized storage value together with its origin. The origin is tracked explicitly rather than inferred
// from the value, since a generated zero and an explicit zero are different things.
type Entry struct {
	Value  common.Hash
	Origin Origin
}

// SlotEntry pairs an Entry with its slot, for snapshots.
type SlotEntry struct {
	Slot common.Hash
	Entry
}

// Stats counts overlay activity.
type Stats struct {
	// Reads is the number of Read calls served.
	Reads uint64
	// Writes is the number of explicit writes applied.
	Writes uint64
	// Generated is the number of slots filled by generation. Each key is generated at most once per run.
	Generated uint64
}

// StorageKey returns the generation key for a storage slot: the 20 address bytes followed by the 32 slot bytes.
func StorageKey(addr common.Address, slot common.Hash) []byte {
	key := make([]byte, 0, common.AddressLength+common.HashLength)
	key = append(key, addr[:]...)
	return append(key, slot[:]...)
}

// Overlay is the memoizing storage view. It exclusively owns its entries. It is not safe for concurrent use; each
// test case owns its own Overlay.
type Overlay struct {
	// generator produces the words for unset slots of arbitrary-mode addresses.
	generator KeyedGenerator

	// registry describes which addresses are in arbitrary mode.
	registry *Registry

	// entries maps address -> slot -> memoized entry.
	entries map[common.Address]map[common.Hash]Entry

	// copies maps a copy target to the arbitrary-mode source it lazily mirrors.
	copies map[common.Address]common.Address

	// stats counts overlay activity.
	stats Stats

	// logger describes the logger used to trace overlay activity.
	logger *logging.Logger
}

// NewOverlay creates an Overlay resolving arbitrary slots through the provided generator and registry.
func NewOverlay(generator KeyedGenerator, registry *Registry) *Overlay {
	return &Overlay{
		generator: generator,
		registry:  registry,
		entries:   make(map[common.Address]map[common.Hash]Entry),
		copies:    make(map[common.Address]common.Address),
		logger:    logging.GlobalLogger.NewSubLogger("module", logging.STORAGE_SERVICE),
	}
}

// SetLogger replaces the logger used to trace overlay activity.
func (o *Overlay) SetLogger(logger *logging.Logger) {
	o.logger = logger
}

// Registry returns the arbitrary-mode registry consulted by the overlay.
func (o *Overlay) Registry() *Registry {
	return o.registry
}

// EnableArbitrary places the address in arbitrary mode. Idempotent. Slots already memoized keep their values; only
// later reads of unmemoized slots are generated. A copy target enabled this way stops mirroring its copy source.
func (o *Overlay) EnableArbitrary(addr common.Address) {
	// An arbitrary-mode address generates its own slots rather than mirroring a copy source
	delete(o.copies, addr)
	if o.registry.Enable(addr) {
		o.logger.Debug("Enabled arbitrary storage for ", addr.Hex())
	}
}

// IsArbitrary indicates whether the address is in arbitrary mode.
func (o *Overlay) IsArbitrary(addr common.Address) bool {
	return o.registry.IsEnabled(addr)
}

// Entry returns the memoized entry for the slot, if one exists.
func (o *Overlay) Entry(addr common.Address, slot common.Hash) (Entry, bool) {
	slots, ok := o.entries[addr]
	if !ok {
		return Entry{}, false
	}
	entry, ok := slots[slot]
	return entry, ok
}

// store memoizes an entry.
func (o *Overlay) store(addr common.Address, slot common.Hash, entry Entry) {
	slots, ok := o.entries[addr]
	if !ok {
		slots = make(map[common.Hash]Entry)
		o.entries[addr] = slots
	}
	slots[slot] = entry
}

// Read returns the value of the slot. Memoized entries are returned unchanged. An unmemoized slot of an address that
// is not in arbitrary mode reads as zero and is not memoized, so enabling arbitrary mode later still generates it.
// An unmemoized slot of an arbitrary-mode address is generated from (address, slot), memoized as generated and
// returned.
func (o *Overlay) Read(addr common.Address, slot common.Hash) common.Hash {
	o.stats.Reads++
	return o.resolve(addr, slot)
}

// resolve implements Read without counting it, so mirrored reads count once.
func (o *Overlay) resolve(addr common.Address, slot common.Hash) common.Hash {
	if entry, ok := o.Entry(addr, slot); ok {
		return entry.Value
	}
	if o.registry.IsEnabled(addr) {
		return o.generate(addr, slot)
	}

	// Copy targets mirror their source's lazily generated storage.
	if source, isCopy := o.copies[addr]; isCopy {
		value := o.generatedValue(source, slot)
		o.store(addr, slot, Entry{Value: value, Origin: OriginGenerated})
		return value
	}
	return common.Hash{}
}

// generate derives the word of an unmemoized slot and memoizes it as generated.
func (o *Overlay) generate(addr common.Address, slot common.Hash) common.Hash {
	value := o.generator.KeyedWord(StorageKey(addr, slot))
	o.store(addr, slot, Entry{Value: value, Origin: OriginGenerated})
	o.stats.Generated++
	o.logger.Trace("Generated storage ", addr.Hex(), "[", slot.Hex(), "] = ", value.Hex())
	return value
}

// generatedValue returns the generated word of a copy source's slot, ignoring explicit writes made to the source
// after the copy. Explicit entries present at copy time were already copied to the target.
func (o *Overlay) generatedValue(source common.Address, slot common.Hash) common.Hash {
	entry, ok := o.Entry(source, slot)
	switch {
	case !ok:
		return o.generate(source, slot)
	case entry.Origin == OriginGenerated:
		return entry.Value
	default:
		o.stats.Generated++
		return o.generator.KeyedWord(StorageKey(source, slot))
	}
}

// Write stores an explicit value for the slot, overwriting any generated or explicit entry. A subsequent Read returns
// exactly this value, including when it is zero.
func (o *Overlay) Write(addr common.Address, slot common.Hash, value common.Hash) {
	o.stats.Writes++
	o.store(addr, slot, Entry{Value: value, Origin: OriginExplicit})
}

// CopyStorage copies the memoized storage of from into to, preserving origins. If from is in arbitrary mode, to
// additionally becomes a lazy mirror of its generated storage: an unmemoized read of to returns the word from
// generates for the slot, memoizing it in both unless from already holds an explicit value there. Later writes to
// either address are not propagated to the other.
// Returns ErrArbitraryTarget if to is in arbitrary mode.
func (o *Overlay) CopyStorage(from common.Address, to common.Address) error {
	if o.registry.IsEnabled(to) {
		return errors.Wrapf(ErrArbitraryTarget, "cannot copy storage of %s into %s", from.Hex(), to.Hex())
	}
	if from == to {
		return nil
	}

	// The target's previous storage is replaced wholesale.
	delete(o.entries, to)
	delete(o.copies, to)
	for slot, entry := range o.entries[from] {
		o.store(to, slot, entry)
	}

	// Mirror either an arbitrary source directly or whatever the source itself mirrors.
	if o.registry.IsEnabled(from) {
		o.copies[to] = from
	} else if source, isCopy := o.copies[from]; isCopy {
		o.copies[to] = source
	}
	o.logger.Debug("Copied storage from ", from.Hex(), " to ", to.Hex())
	return nil
}

// Entries returns the memoized entries of the address ordered by slot.
func (o *Overlay) Entries(addr common.Address) []SlotEntry {
	slots := o.entries[addr]
	snapshot := make([]SlotEntry, 0, len(slots))
	for slot, entry := range slots {
		snapshot = append(snapshot, SlotEntry{Slot: slot, Entry: entry})
	}
	slices.SortFunc(snapshot, func(a, b SlotEntry) int {
		return bytes.Compare(a.Slot[:], b.Slot[:])
	})
	return snapshot
}

// Stats returns the overlay activity counters.
func (o *Overlay) Stats() Stats {
	return o.stats
}
