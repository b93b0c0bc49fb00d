package openaddressing

import (
	"github.com/gostonefire/memhashmap/crt"
	"github.com/gostonefire/memhashmap/hashfunc"
	"github.com/gostonefire/memhashmap/internal/logs"
	"github.com/gostonefire/memhashmap/internal/model"
	"github.com/gostonefire/memhashmap/internal/storage"
	"github.com/gostonefire/memhashmap/internal/utils"
)

var log = logs.MustGetLogger("openaddressing")

// OATable - Represents an implementation of the Linear Probing Collision Resolution Technique.
// The table is one flat array of slots, each slot has a state and room for one record. Deleted slots are
// turned into tombstones so that probe chains passing through them stay intact.
type OATable struct {
	keyLength         int
	valueLength       int
	cellLength        int
	numberOfSlots     uint64
	masterKey         hashfunc.MasterKey
	hashAlgorithm     hashfunc.KeyedHash
	internalAlgorithm bool
	states            []uint8
	cells             []byte
}

// NewOATable - Returns a pointer to a new instance of the linear probing implementation with all slots empty.
//   - conf is a model.Conf struct, Buckets is the number of slots, Tolerance and Growth are not used
//
// It returns:
//   - oaTable which is a pointer to the created instance
//   - err which is of type crt.InvalidArgument or crt.DomainError if conf is not valid,
//     or crt.OutOfMemory if the slots can't be allocated
func NewOATable(conf model.Conf) (oaTable *OATable, err error) {
	err = conf.Validate(false)
	if err != nil {
		log.Debugf("refusing to create open addressing table: %s", err)
		return
	}
	// one state byte plus one cell per slot
	_, err = storage.CheckAllocation("slots", conf.Buckets, uint64(conf.CellLength())+1)
	if err != nil {
		log.Debugf("refusing to create open addressing table: %s", err)
		return
	}

	hashAlgorithm, internalAlg := storage.HashAlgorithm(conf.HashAlgorithm)

	oaTable = &OATable{
		keyLength:         conf.KeyLength,
		valueLength:       conf.ValueLength,
		cellLength:        conf.CellLength(),
		numberOfSlots:     conf.Buckets,
		masterKey:         conf.MasterKey,
		hashAlgorithm:     hashAlgorithm,
		internalAlgorithm: internalAlg,
		states:            make([]uint8, conf.Buckets),
		cells:             make([]byte, conf.Buckets*uint64(conf.CellLength())),
	}

	return
}

// Free - Releases the slot array. Any later call on the table returns crt.Freed.
func (Q *OATable) Free() {
	Q.states = nil
	Q.cells = nil
}

// GetStorageParameters - Returns a struct with storage parameters from OATable
func (Q *OATable) GetStorageParameters() (params model.StorageParameters) {
	params = model.StorageParameters{
		CollisionResolutionTechnique: crt.LinearProbing,
		KeyLength:                    Q.keyLength,
		ValueLength:                  Q.valueLength,
		NumberOfBuckets:              Q.numberOfSlots,
		InternalAlgorithm:            Q.internalAlgorithm,
	}

	return
}

// Get - Returns a copy of the value stored under key.
//   - key is the identifier of a record, it has to be of same length as given in call to NewOATable
//
// It returns:
//   - value is a fresh copy of the stored value if found, if not found an error of type crt.NoRecordFound is also returned.
//   - err is either of type crt.NoRecordFound or a standard error, if something went wrong
func (Q *OATable) Get(key []byte) (value []byte, err error) {
	value, err = Q.View(key)
	if err != nil {
		return
	}

	value = utils.Clone(value)

	return
}

// View - Like Get but returns the value bytes of the slot itself. The slice is only valid while the table is
// not mutated and must not be written to.
func (Q *OATable) View(key []byte) (value []byte, err error) {
	err = Q.checkUsable()
	if err != nil {
		return
	}
	err = storage.CheckKey(key, Q.keyLength)
	if err != nil {
		return
	}

	slot, found := Q.probingForGet(key)
	if !found {
		err = crt.NoRecordFound{}
		return
	}

	value = Q.value(slot)

	return
}

// Exists - Returns true if key is stored in the table
func (Q *OATable) Exists(key []byte) (exists bool, err error) {
	err = Q.checkUsable()
	if err != nil {
		return
	}
	err = storage.CheckKey(key, Q.keyLength)
	if err != nil {
		return
	}

	_, exists = Q.probingForGet(key)

	return
}

// Set - Updates an existing record with new data or claims the first free slot along the probe sequence.
//   - key and value have to conform to lengths given when creating the OATable
//
// It returns:
//   - err is of type crt.TableFull if no slot could be claimed, else a standard error if something went wrong
func (Q *OATable) Set(key, value []byte) (err error) {
	err = Q.checkUsable()
	if err != nil {
		return
	}
	err = storage.CheckRecord(key, value, Q.keyLength, Q.valueLength)
	if err != nil {
		return
	}

	err = Q.insert(key, value)

	return
}

// Delete - Turns the slot holding key into a tombstone.
//
// It returns:
//   - found is true if there was a record to remove
//   - err is a standard error, if something went wrong
func (Q *OATable) Delete(key []byte) (found bool, err error) {
	err = Q.checkUsable()
	if err != nil {
		return
	}
	err = storage.CheckKey(key, Q.keyLength)
	if err != nil {
		return
	}

	slot, found := Q.probingForGet(key)
	if !found {
		return
	}

	Q.states[slot] = model.SlotTombstone
	clear(Q.cell(slot))

	return
}

// Resize - Rebuilds the table with new lengths, slot count and/or master key and consumes the receiver.
// Tombstones are not carried over.
//
// Keys and values are truncated or zero extended at the end to the new lengths. Shortening keys can make
// distinct keys equal, when that happens the value of the record moved last wins.
//   - conf is the new configuration, a nil HashAlgorithm keeps the current one
func (Q *OATable) Resize(conf model.Conf) (oaTable *OATable, err error) {
	oaTable, err = Q.rehash(conf, true)
	if err != nil {
		log.Debugf("destructive resize failed: %s", err)
	}

	return
}

// ResizeSafe - Like Resize but leaves the receiver intact, it is up to the caller to Free it.
func (Q *OATable) ResizeSafe(conf model.Conf) (oaTable *OATable, err error) {
	oaTable, err = Q.rehash(conf, false)
	if err != nil {
		log.Debugf("resize failed, source table kept: %s", err)
	}

	return
}

// Clone - Returns a raw copy of the slot array, states included
func (Q *OATable) Clone() (oaTable *OATable, err error) {
	err = Q.checkUsable()
	if err != nil {
		return
	}

	clone := *Q
	clone.states = utils.Clone(Q.states)
	clone.cells = utils.Clone(Q.cells)
	oaTable = &clone

	return
}

// Stats - Walks through every slot and classifies it as empty, optimal, colliding or garbage
func (Q *OATable) Stats() (stats Stats, err error) {
	err = Q.checkUsable()
	if err != nil {
		return
	}

	stats.Slots = Q.numberOfSlots
	for i, state := range Q.states {
		switch state {
		case model.SlotEmpty:
			stats.EmptySlots++
		case model.SlotTombstone:
			stats.GarbageSlots++
		case model.SlotOccupied:
			stats.TotalEntries++
			distance := Q.distance(uint64(i))
			if distance == 0 {
				stats.OptimalSlots++
			} else {
				stats.CollidingSlots++
			}
			if distance+1 > stats.MaxProbeLen {
				stats.MaxProbeLen = distance + 1
			}
		}
	}
	stats.Load = storage.Load(stats.TotalEntries, stats.Slots)

	err = stats.Summary().CheckSum()
	if err != nil {
		log.Debugf("inconsistent open addressing statistics: %s", err)
	}

	return
}

// Summary - Returns the engine independent statistics snapshot
func (Q *OATable) Summary() (stats model.Stats, err error) {
	s, err := Q.Stats()
	if err != nil {
		return
	}

	stats = s.Summary()

	return
}
