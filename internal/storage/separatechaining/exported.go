package separatechaining

import (
	"github.com/gostonefire/memhashmap/crt"
	"github.com/gostonefire/memhashmap/hashfunc"
	"github.com/gostonefire/memhashmap/internal/logs"
	"github.com/gostonefire/memhashmap/internal/model"
	"github.com/gostonefire/memhashmap/internal/storage"
	"github.com/gostonefire/memhashmap/internal/utils"
)

var log = logs.MustGetLogger("separatechaining")

// SCTable - Represents an implementation of the Separate Chaining Collision Resolution Technique.
// Every bucket is the head of a singly linked list of nodes, each node owns exactly one record.
type SCTable struct {
	keyLength         int
	valueLength       int
	cellLength        int
	numberOfBuckets   uint64
	masterKey         hashfunc.MasterKey
	hashAlgorithm     hashfunc.KeyedHash
	internalAlgorithm bool
	buckets           []*node
	freed             bool
}

// NewSCTable - Returns a pointer to a new instance of the separate chaining implementation.
//   - conf is a model.Conf struct, Tolerance and Growth are not used since chains grow without bounds
//
// It returns:
//   - scTable which is a pointer to the created instance
//   - err which is of type crt.InvalidArgument or crt.DomainError if conf is not valid,
//     or crt.OutOfMemory if the chain heads can't be allocated
func NewSCTable(conf model.Conf) (scTable *SCTable, err error) {
	err = conf.Validate(false)
	if err != nil {
		log.Debugf("refusing to create separate chaining table: %s", err)
		return
	}
	_, err = storage.CheckAllocation("chain heads", conf.Buckets, storage.PointerSize)
	if err != nil {
		log.Debugf("refusing to create separate chaining table: %s", err)
		return
	}

	hashAlgorithm, internalAlg := storage.HashAlgorithm(conf.HashAlgorithm)

	scTable = &SCTable{
		keyLength:         conf.KeyLength,
		valueLength:       conf.ValueLength,
		cellLength:        conf.CellLength(),
		numberOfBuckets:   conf.Buckets,
		masterKey:         conf.MasterKey,
		hashAlgorithm:     hashAlgorithm,
		internalAlgorithm: internalAlg,
		buckets:           make([]*node, conf.Buckets),
	}

	return
}

// Free - Unlinks every node of every chain. Any later call on the table returns crt.Freed.
func (S *SCTable) Free() {
	for i := range S.buckets {
		S.freeChain(uint64(i))
	}
	S.buckets = nil
	S.freed = true
}

// GetStorageParameters - Returns a struct with storage parameters from SCTable
func (S *SCTable) GetStorageParameters() (params model.StorageParameters) {
	params = model.StorageParameters{
		CollisionResolutionTechnique: crt.SeparateChaining,
		KeyLength:                    S.keyLength,
		ValueLength:                  S.valueLength,
		NumberOfBuckets:              S.numberOfBuckets,
		InternalAlgorithm:            S.internalAlgorithm,
	}

	return
}

// Get - Returns a copy of the value stored under key.
//   - key is the identifier of a record, it has to be of same length as given in call to NewSCTable
//
// It returns:
//   - value is a fresh copy of the stored value if found, if not found an error of type crt.NoRecordFound is also returned.
//   - err is either of type crt.NoRecordFound or a standard error, if something went wrong
func (S *SCTable) Get(key []byte) (value []byte, err error) {
	value, err = S.View(key)
	if err != nil {
		return
	}

	value = utils.Clone(value)

	return
}

// View - Like Get but returns the value bytes of the matching node itself. The slice is only valid while the
// table is not mutated and must not be written to.
func (S *SCTable) View(key []byte) (value []byte, err error) {
	err = S.checkUsable()
	if err != nil {
		return
	}
	err = storage.CheckKey(key, S.keyLength)
	if err != nil {
		return
	}

	n, _ := S.find(S.bucketNo(key), key)
	if n == nil {
		err = crt.NoRecordFound{}
		return
	}

	value = n.value(S.keyLength)

	return
}

// Exists - Returns true if key is stored in the table
func (S *SCTable) Exists(key []byte) (exists bool, err error) {
	err = S.checkUsable()
	if err != nil {
		return
	}
	err = storage.CheckKey(key, S.keyLength)
	if err != nil {
		return
	}

	n, _ := S.find(S.bucketNo(key), key)
	exists = n != nil

	return
}

// Set - Updates an existing record with new data or links a new node at the head of the chain.
//   - key and value have to conform to lengths given when creating the SCTable
//
// It returns:
//   - err is either of type crt.InvalidArgument or a standard error, if something went wrong
func (S *SCTable) Set(key, value []byte) (err error) {
	err = S.checkUsable()
	if err != nil {
		return
	}
	err = storage.CheckRecord(key, value, S.keyLength, S.valueLength)
	if err != nil {
		return
	}

	S.insert(key, value)

	return
}

// Delete - Unlinks the node holding key from its chain.
//
// It returns:
//   - found is true if there was a record to remove
//   - err is a standard error, if something went wrong
func (S *SCTable) Delete(key []byte) (found bool, err error) {
	err = S.checkUsable()
	if err != nil {
		return
	}
	err = storage.CheckKey(key, S.keyLength)
	if err != nil {
		return
	}

	bucketNo := S.bucketNo(key)
	n, prev := S.find(bucketNo, key)
	if n == nil {
		return
	}

	if prev == nil {
		S.buckets[bucketNo] = n.next
	} else {
		prev.next = n.next
	}
	n.next = nil
	found = true

	return
}

// Resize - Rebuilds the table with new lengths, bucket count and/or master key and consumes the receiver.
// Every node is unlinked as soon as it has been moved.
//
// Keys and values are truncated or zero extended at the end to the new lengths. Shortening keys can make
// distinct keys equal, when that happens the value of the record moved last wins.
//   - conf is the new configuration, a nil HashAlgorithm keeps the current one
func (S *SCTable) Resize(conf model.Conf) (scTable *SCTable, err error) {
	scTable, err = S.rehash(conf, true)
	if err != nil {
		log.Debugf("destructive resize failed: %s", err)
	}

	return
}

// ResizeSafe - Like Resize but leaves the receiver intact, it is up to the caller to Free it.
func (S *SCTable) ResizeSafe(conf model.Conf) (scTable *SCTable, err error) {
	scTable, err = S.rehash(conf, false)
	if err != nil {
		log.Debugf("resize failed, source table kept: %s", err)
	}

	return
}

// Clone - Returns an independent copy with every chain deep copied in its traversal order
func (S *SCTable) Clone() (scTable *SCTable, err error) {
	err = S.checkUsable()
	if err != nil {
		return
	}

	clone := *S
	clone.buckets = make([]*node, len(S.buckets))
	for i, head := range S.buckets {
		clone.buckets[i] = cloneChain(head)
	}
	scTable = &clone

	return
}

// Stats - Walks through every chain and classifies its bucket as null, optimal or chained
func (S *SCTable) Stats() (stats Stats, err error) {
	err = S.checkUsable()
	if err != nil {
		return
	}

	stats.Buckets = S.numberOfBuckets
	for _, head := range S.buckets {
		length := chainLength(head)
		switch length {
		case 0:
			stats.NullBuckets++
		case 1:
			stats.OptimalBuckets++
		default:
			stats.ChainedBuckets++
		}
		stats.TotalEntries += length
		if length > stats.MaxChainLen {
			stats.MaxChainLen = length
		}
	}
	stats.Load = storage.Load(stats.TotalEntries, stats.Buckets)

	err = stats.Summary().CheckSum()
	if err != nil {
		log.Debugf("inconsistent separate chaining statistics: %s", err)
	}

	return
}

// Summary - Returns the engine independent statistics snapshot
func (S *SCTable) Summary() (stats model.Stats, err error) {
	s, err := S.Stats()
	if err != nil {
		return
	}

	stats = s.Summary()

	return
}
