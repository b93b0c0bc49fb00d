package dense

import (
	"bytes"
	"fmt"
	"unsafe"

	"github.com/gostonefire/memhashmap/digest"
	"github.com/gostonefire/memhashmap/internal/model"
	"github.com/gostonefire/memhashmap/internal/storage"
	"github.com/gostonefire/memhashmap/internal/utils"
)

// bucket - One growable array of records
//   - n is the number of records in use, always the first n cells
//   - capacity is the number of cells allocated
//   - cells holds capacity records of cellLength bytes each, key first then value
type bucket struct {
	n        uint8
	capacity uint8
	cells    []byte
}

// newBucket - Returns an empty bucket with room for capacity records
func newBucket(capacity uint8, cellLength int) *bucket {
	return &bucket{
		n:        0,
		capacity: capacity,
		cells:    make([]byte, int(capacity)*cellLength),
	}
}

// checkAllocation - Returns crt.OutOfMemory unless a bucket grown to the limit and all initial buckets fit
func checkAllocation(conf model.Conf) (err error) {
	cellLength := uint64(conf.CellLength())

	_, err = storage.CheckAllocation("records in a fully grown bucket", uint64(conf.GrowthPolicy().Limit), cellLength)
	if err != nil {
		return
	}

	perBucket := storage.PointerSize + uint64(unsafe.Sizeof(bucket{})) + uint64(conf.Tolerance)*cellLength
	_, err = storage.CheckAllocation("buckets", conf.Buckets, perBucket)

	return
}

// cell - Returns record i of the bucket
func (B *bucket) cell(i, cellLength int) []byte {
	offset := i * cellLength
	return B.cells[offset : offset+cellLength : offset+cellLength]
}

// key - Returns the key part of record i
func (B *bucket) key(i, keyLength, cellLength int) []byte {
	return B.cell(i, cellLength)[:keyLength]
}

// value - Returns the value part of record i
func (B *bucket) value(i, keyLength, cellLength int) []byte {
	return B.cell(i, cellLength)[keyLength:]
}

// find - Returns the index of the record holding key, or -1
func (B *bucket) find(key []byte, keyLength, cellLength int) int {
	for i := 0; i < int(B.n); i++ {
		if bytes.Equal(key, B.key(i, keyLength, cellLength)) {
			return i
		}
	}

	return -1
}

// grow - Extends capacity by up to step records, never beyond limit
func (B *bucket) grow(cellLength int, growth model.Growth) (ok bool) {
	if B.capacity >= growth.Limit {
		return false
	}

	capacity := int(B.capacity) + int(growth.Step)
	if capacity > int(growth.Limit) {
		capacity = int(growth.Limit)
	}

	cells := make([]byte, capacity*cellLength)
	_ = copy(cells, B.cells[:int(B.n)*cellLength])
	B.cells = cells
	B.capacity = uint8(capacity)

	return true
}

// append - Writes a new record after the last one in use, the caller has checked capacity
func (B *bucket) append(key, value []byte, cellLength int) {
	c := B.cell(int(B.n), cellLength)
	_ = copy(c, key)
	_ = copy(c[len(key):], value)
	B.n++
}

// remove - Overwrites record i with the last record in use and shrinks the count
func (B *bucket) remove(i, cellLength int) {
	last := int(B.n) - 1
	if i != last {
		_ = copy(B.cell(i, cellLength), B.cell(last, cellLength))
	}
	clear(B.cell(last, cellLength))
	B.n--
}

// clone - Returns a byte identical copy of the bucket, unused capacity included
func (B *bucket) clone() *bucket {
	return &bucket{
		n:        B.n,
		capacity: B.capacity,
		cells:    utils.Clone(B.cells),
	}
}

// bucketNo - Returns the home bucket of key
func (D *DATable) bucketNo(key []byte) uint64 {
	return digest.Index(D.hashAlgorithm, key, D.masterKey, D.numberOfBuckets)
}

// insert - Updates the value for key in place or appends a new record, growing the bucket if needed.
// Lengths are assumed to be checked.
func (D *DATable) insert(key, value []byte) (err error) {
	bucketNo := D.bucketNo(key)
	b := D.buckets[bucketNo]

	i := b.find(key, D.keyLength, D.cellLength)
	if i >= 0 {
		_ = copy(b.value(i, D.keyLength, D.cellLength), value)
		return
	}

	if b.n == b.capacity {
		if !b.grow(D.cellLength, D.growth) {
			err = D.capacityError(bucketNo, b.capacity)
			log.Debugf("bucket growth refused: %s", err)
			return
		}
	}

	b.append(key, value, D.cellLength)

	return
}

// rehash - Builds a new table from conf and moves every live record into it.
//   - destructive set to true releases each old bucket once drained and frees the receiver whatever the outcome
func (D *DATable) rehash(conf model.Conf, destructive bool) (daTable *DATable, err error) {
	err = D.checkUsable()
	if err != nil {
		return
	}

	conf = storage.InheritConf(conf, D.hashAlgorithm, D.internalAlgorithm, D.growth)
	target, err := NewDATable(conf)
	if err != nil {
		err = fmt.Errorf("error while creating resized table: %w", err)
		return
	}

	if destructive {
		defer D.Free()
	}

	var key, value []byte
	for i, b := range D.buckets {
		for j := 0; j < int(b.n); j++ {
			key = utils.ResizeBytes(b.key(j, D.keyLength, D.cellLength), target.keyLength)
			value = utils.ResizeBytes(b.value(j, D.keyLength, D.cellLength), target.valueLength)
			err = target.insert(key, value)
			if err != nil {
				target.Free()
				err = fmt.Errorf("error while moving records from bucket %d: %w", i, err)
				return
			}
		}
		if destructive {
			D.buckets[i] = nil
		}
	}

	daTable = target

	return
}
