package dense

import (
	"fmt"

	"github.com/gostonefire/memhashmap/crt"
	"github.com/gostonefire/memhashmap/hashfunc"
	"github.com/gostonefire/memhashmap/internal/logs"
	"github.com/gostonefire/memhashmap/internal/model"
	"github.com/gostonefire/memhashmap/internal/storage"
	"github.com/gostonefire/memhashmap/internal/utils"
)

var log = logs.MustGetLogger("dense")

// DATable - Represents an implementation of the Dense Array Collision Resolution Technique.
// Every bucket is an independently growable array of records. Records in a bucket are kept contiguous,
// new records are appended and deleted records are replaced by the last record in the bucket.
type DATable struct {
	keyLength         int
	valueLength       int
	cellLength        int
	numberOfBuckets   uint64
	tolerance         uint8
	growth            model.Growth
	masterKey         hashfunc.MasterKey
	hashAlgorithm     hashfunc.KeyedHash
	internalAlgorithm bool
	buckets           []*bucket
}

// NewDATable - Returns a pointer to a new instance of the dense array implementation.
//   - conf is a model.Conf struct, Tolerance is the initial record capacity of every bucket
//
// It returns:
//   - daTable which is a pointer to the created instance
//   - err which is of type crt.InvalidArgument or crt.DomainError if conf is not valid,
//     or crt.OutOfMemory if the buckets can't be allocated even when fully grown
func NewDATable(conf model.Conf) (daTable *DATable, err error) {
	err = conf.Validate(true)
	if err != nil {
		log.Debugf("refusing to create dense table: %s", err)
		return
	}
	err = checkAllocation(conf)
	if err != nil {
		log.Debugf("refusing to create dense table: %s", err)
		return
	}

	hashAlgorithm, internalAlg := storage.HashAlgorithm(conf.HashAlgorithm)

	daTable = &DATable{
		keyLength:         conf.KeyLength,
		valueLength:       conf.ValueLength,
		cellLength:        conf.CellLength(),
		numberOfBuckets:   conf.Buckets,
		tolerance:         conf.Tolerance,
		growth:            conf.GrowthPolicy(),
		masterKey:         conf.MasterKey,
		hashAlgorithm:     hashAlgorithm,
		internalAlgorithm: internalAlg,
		buckets:           make([]*bucket, conf.Buckets),
	}

	for i := range daTable.buckets {
		daTable.buckets[i] = newBucket(conf.Tolerance, daTable.cellLength)
	}

	return
}

// Free - Releases all buckets. Any later call on the table returns crt.Freed.
func (D *DATable) Free() {
	for i := range D.buckets {
		D.buckets[i] = nil
	}
	D.buckets = nil
}

// GetStorageParameters - Returns a struct with storage parameters from DATable
func (D *DATable) GetStorageParameters() (params model.StorageParameters) {
	params = model.StorageParameters{
		CollisionResolutionTechnique: crt.Dense,
		KeyLength:                    D.keyLength,
		ValueLength:                  D.valueLength,
		NumberOfBuckets:              D.numberOfBuckets,
		Tolerance:                    D.tolerance,
		Growth:                       D.growth,
		InternalAlgorithm:            D.internalAlgorithm,
	}

	return
}

// Get - Returns a copy of the value stored under key.
//   - key is the identifier of a record, it has to be of same length as given in call to NewDATable
//
// It returns:
//   - value is a fresh copy of the stored value if found, if not found an error of type crt.NoRecordFound is also returned.
//   - err is either of type crt.NoRecordFound or a standard error, if something went wrong
func (D *DATable) Get(key []byte) (value []byte, err error) {
	value, err = D.View(key)
	if err != nil {
		return
	}

	value = utils.Clone(value)

	return
}

// View - Like Get but returns the stored value bytes themselves. The slice is only valid until the
// table is mutated next and must not be written to.
func (D *DATable) View(key []byte) (value []byte, err error) {
	err = D.checkUsable()
	if err != nil {
		return
	}
	err = storage.CheckKey(key, D.keyLength)
	if err != nil {
		return
	}

	b := D.buckets[D.bucketNo(key)]
	i := b.find(key, D.keyLength, D.cellLength)
	if i < 0 {
		err = crt.NoRecordFound{}
		return
	}

	value = b.value(i, D.keyLength, D.cellLength)

	return
}

// Exists - Returns true if key is stored in the table
func (D *DATable) Exists(key []byte) (exists bool, err error) {
	err = D.checkUsable()
	if err != nil {
		return
	}
	err = storage.CheckKey(key, D.keyLength)
	if err != nil {
		return
	}

	exists = D.buckets[D.bucketNo(key)].find(key, D.keyLength, D.cellLength) >= 0

	return
}

// Set - Updates an existing record with new data or adds it if no existing is found with same key.
//   - key and value have to conform to lengths given when creating the DATable
//
// It returns:
//   - err is of type crt.CapacityExceeded if the bucket is full and at its growth limit, else a standard error if something went wrong
func (D *DATable) Set(key, value []byte) (err error) {
	err = D.checkUsable()
	if err != nil {
		return
	}
	err = storage.CheckRecord(key, value, D.keyLength, D.valueLength)
	if err != nil {
		return
	}

	err = D.insert(key, value)

	return
}

// Delete - Removes the record stored under key, compacting its bucket.
// Bucket capacity is never given back.
//
// It returns:
//   - found is true if there was a record to remove
//   - err is a standard error, if something went wrong
func (D *DATable) Delete(key []byte) (found bool, err error) {
	err = D.checkUsable()
	if err != nil {
		return
	}
	err = storage.CheckKey(key, D.keyLength)
	if err != nil {
		return
	}

	b := D.buckets[D.bucketNo(key)]
	i := b.find(key, D.keyLength, D.cellLength)
	if i < 0 {
		return
	}

	b.remove(i, D.cellLength)
	found = true

	return
}

// Resize - Rebuilds the table with new lengths, bucket count, tolerance and/or master key and consumes the
// receiver. An invalid or unallocatable conf leaves the receiver untouched. Once moving has started every
// old bucket is released as soon as it has been drained, so a later error leaves the records gone.
//
// Keys and values are truncated or zero extended at the end to the new lengths. Shortening keys can make
// distinct keys equal, when that happens the value of the record moved last wins.
//   - conf is the new configuration, a nil HashAlgorithm keeps the current one
func (D *DATable) Resize(conf model.Conf) (daTable *DATable, err error) {
	daTable, err = D.rehash(conf, true)
	if err != nil {
		log.Debugf("destructive resize failed: %s", err)
	}

	return
}

// ResizeSafe - Like Resize but leaves the receiver intact, it is up to the caller to Free it.
func (D *DATable) ResizeSafe(conf model.Conf) (daTable *DATable, err error) {
	daTable, err = D.rehash(conf, false)
	if err != nil {
		log.Debugf("resize failed, source table kept: %s", err)
	}

	return
}

// Clone - Returns an independent, bucket for bucket identical copy of the table
func (D *DATable) Clone() (daTable *DATable, err error) {
	err = D.checkUsable()
	if err != nil {
		return
	}

	clone := *D
	clone.buckets = make([]*bucket, len(D.buckets))
	for i, b := range D.buckets {
		clone.buckets[i] = b.clone()
	}
	daTable = &clone

	return
}

// Stats - Walks through every bucket and classifies it as empty, optimal or colliding
func (D *DATable) Stats() (stats Stats, err error) {
	err = D.checkUsable()
	if err != nil {
		return
	}

	stats.Buckets = D.numberOfBuckets
	for _, b := range D.buckets {
		n := uint64(b.n)
		switch {
		case n == 0:
			stats.EmptyBuckets++
		case n == 1:
			stats.OptimalBuckets++
		default:
			stats.CollidingBuckets++
		}
		stats.TotalEntries += n
		if n > stats.MaxBucketSize {
			stats.MaxBucketSize = n
		}
	}
	stats.Load = storage.Load(stats.TotalEntries, stats.Buckets)

	err = stats.Summary().CheckSum()
	if err != nil {
		log.Debugf("inconsistent dense statistics: %s", err)
	}

	return
}

// Summary - Returns the engine independent statistics snapshot
func (D *DATable) Summary() (stats model.Stats, err error) {
	s, err := D.Stats()
	if err != nil {
		return
	}

	stats = s.Summary()

	return
}

// checkUsable - Returns crt.Freed if the table has been freed or consumed by Resize
func (D *DATable) checkUsable() (err error) {
	if D.buckets == nil {
		err = crt.Freed{}
	}

	return
}

// capacityError - Formats a capacity error for the bucket at bucketNo
func (D *DATable) capacityError(bucketNo uint64, capacity uint8) error {
	return crt.NewCapacityExceeded(fmt.Sprintf("unmanageable collision, bucket %d already holds %d records", bucketNo, capacity))
}
