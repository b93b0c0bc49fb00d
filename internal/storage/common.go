package storage

import (
	"fmt"
	"math"
	"math/bits"

	"github.com/gostonefire/memhashmap/crt"
	"github.com/gostonefire/memhashmap/digest"
	"github.com/gostonefire/memhashmap/hashfunc"
	"github.com/gostonefire/memhashmap/internal/model"
)

// CheckKey - Returns crt.InvalidArgument unless key is exactly keyLength bytes
func CheckKey(key []byte, keyLength int) (err error) {
	if len(key) != keyLength {
		err = crt.NewInvalidArgument(fmt.Sprintf("wrong length of key, should be %d", keyLength))
	}

	return
}

// CheckRecord - Returns crt.InvalidArgument unless key and value conform to the table lengths
func CheckRecord(key, value []byte, keyLength, valueLength int) (err error) {
	err = CheckKey(key, keyLength)
	if err != nil {
		return
	}
	if len(value) != valueLength {
		err = crt.NewInvalidArgument(fmt.Sprintf("wrong length of value, should be %d", valueLength))
	}

	return
}

// MaxAllocation - Upper bound in bytes for any single table allocation
const MaxAllocation uint64 = 1 << 40

// PointerSize - Size in bytes of a bucket or chain head pointer
const PointerSize uint64 = bits.UintSize / 8

// CheckAllocation - Returns crt.OutOfMemory if count items of size bytes each overflow or exceed MaxAllocation.
//   - what names the items in the error message
//
// It returns:
//   - total is the number of bytes needed, only valid when err is nil
//   - err is of type crt.OutOfMemory if the allocation is not possible
func CheckAllocation(what string, count, size uint64) (total uint64, err error) {
	hi, total := bits.Mul64(count, size)
	if hi != 0 || total > MaxAllocation || total > math.MaxInt {
		total = 0
		err = crt.NewOutOfMemory(fmt.Sprintf("cannot allocate %d %s of %d bytes each", count, what, size))
	}

	return
}

// HashAlgorithm - Returns the hash algorithm to use and whether it is the internal one
func HashAlgorithm(hashAlgorithm hashfunc.KeyedHash) (alg hashfunc.KeyedHash, internal bool) {
	if hashAlgorithm == nil {
		return digest.ARX{}, true
	}

	return hashAlgorithm, false
}

// InheritConf - Fills in what a resize configuration leaves out from the current table.
// A nil HashAlgorithm keeps the current one, the growth policy is kept unless a new one is given.
func InheritConf(conf model.Conf, current hashfunc.KeyedHash, internal bool, growth model.Growth) model.Conf {
	if conf.HashAlgorithm == nil && !internal {
		conf.HashAlgorithm = current
	}
	if conf.Growth == (model.Growth{}) {
		conf.Growth = growth
	}

	return conf
}

// Load - Returns entries divided by buckets
func Load(entries, buckets uint64) float64 {
	if buckets == 0 {
		return 0
	}

	return float64(entries) / float64(buckets)
}
