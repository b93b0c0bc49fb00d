package openaddressing

import (
	"bytes"
	"fmt"

	"github.com/gostonefire/memhashmap/crt"
	"github.com/gostonefire/memhashmap/digest"
	"github.com/gostonefire/memhashmap/internal/model"
	"github.com/gostonefire/memhashmap/internal/storage"
	"github.com/gostonefire/memhashmap/internal/utils"
)

// checkUsable - Returns crt.Freed if the table has been freed or consumed by Resize
func (Q *OATable) checkUsable() (err error) {
	if Q.states == nil {
		err = crt.Freed{}
	}

	return
}

// homeIndex - Returns the slot where the probe sequence for key starts
func (Q *OATable) homeIndex(key []byte) uint64 {
	return digest.Index(Q.hashAlgorithm, key, Q.masterKey, Q.numberOfSlots)
}

// probe - Returns slot number i of the probe sequence starting at home
func (Q *OATable) probe(home, i uint64) uint64 {
	return (home + i) % Q.numberOfSlots
}

// cell - Returns the record bytes of slot
func (Q *OATable) cell(slot uint64) []byte {
	offset := slot * uint64(Q.cellLength)
	return Q.cells[offset : offset+uint64(Q.cellLength) : offset+uint64(Q.cellLength)]
}

// key - Returns the key part of slot
func (Q *OATable) key(slot uint64) []byte {
	return Q.cell(slot)[:Q.keyLength]
}

// value - Returns the value part of slot
func (Q *OATable) value(slot uint64) []byte {
	return Q.cell(slot)[Q.keyLength:]
}

// distance - Returns how many steps the record in slot is from its home slot
func (Q *OATable) distance(slot uint64) uint64 {
	home := Q.homeIndex(Q.key(slot))
	return (slot + Q.numberOfSlots - home) % Q.numberOfSlots
}

// probingForGet - Is the Linear Probing Collision Resolution Technique algorithm for finding a record.
// An empty slot ends the search, tombstones are passed over.
func (Q *OATable) probingForGet(key []byte) (slot uint64, found bool) {
	home := Q.homeIndex(key)

	for i := uint64(0); i < Q.numberOfSlots; i++ {
		slot = Q.probe(home, i)

		switch Q.states[slot] {
		case model.SlotEmpty:
			return
		case model.SlotOccupied:
			if bytes.Equal(key, Q.key(slot)) {
				found = true
				return
			}
		}
	}

	return
}

// probingForSet - Is the Linear Probing Collision Resolution Technique algorithm for finding a slot for set.
// The first tombstone passed is remembered and used unless the key is found further along the sequence.
//
// It returns:
//   - slot is the slot to write to
//   - update is true if slot already holds key
//   - err is of type crt.TableFull if every slot is occupied by other keys
func (Q *OATable) probingForSet(key []byte) (slot uint64, update bool, err error) {
	var tombstone uint64
	var hasCached bool

	home := Q.homeIndex(key)

	for i := uint64(0); i < Q.numberOfSlots; i++ {
		slot = Q.probe(home, i)

		switch Q.states[slot] {
		case model.SlotEmpty:
			if hasCached {
				slot = tombstone
			}
			return

		case model.SlotOccupied:
			if bytes.Equal(key, Q.key(slot)) {
				update = true
				return
			}

		case model.SlotTombstone:
			if !hasCached {
				tombstone = slot
				hasCached = true
			}
		}
	}

	if hasCached {
		slot = tombstone
		return
	}

	err = crt.TableFull{}

	return
}

// insert - Writes key and value to the slot given by probingForSet. Lengths are assumed to be checked.
func (Q *OATable) insert(key, value []byte) (err error) {
	slot, update, err := Q.probingForSet(key)
	if err != nil {
		log.Debugf("no slot for key among %d slots: %s", Q.numberOfSlots, err)
		return
	}

	if !update {
		Q.states[slot] = model.SlotOccupied
		_ = copy(Q.key(slot), key)
	}
	_ = copy(Q.value(slot), value)

	return
}

// rehash - Builds a new table from conf and moves every occupied slot into it.
//   - destructive set to true frees the receiver whatever the outcome
func (Q *OATable) rehash(conf model.Conf, destructive bool) (oaTable *OATable, err error) {
	err = Q.checkUsable()
	if err != nil {
		return
	}

	conf = storage.InheritConf(conf, Q.hashAlgorithm, Q.internalAlgorithm, model.Growth{})
	target, err := NewOATable(conf)
	if err != nil {
		err = fmt.Errorf("error while creating resized table: %w", err)
		return
	}

	if destructive {
		defer Q.Free()
	}

	var key, value []byte
	for i, state := range Q.states {
		if state != model.SlotOccupied {
			continue
		}
		slot := uint64(i)
		key = utils.ResizeBytes(Q.key(slot), target.keyLength)
		value = utils.ResizeBytes(Q.value(slot), target.valueLength)
		err = target.insert(key, value)
		if err != nil {
			target.Free()
			err = fmt.Errorf("error while moving record from slot %d: %w", i, err)
			return
		}
	}

	oaTable = target

	return
}
