package model

import (
	"fmt"
	"math"

	"github.com/hashicorp/go-multierror"

	"github.com/gostonefire/memhashmap/crt"
	"github.com/gostonefire/memhashmap/hashfunc"
)

// SlotEmpty - State indicating a slot that is or has never been in use
const SlotEmpty uint8 = 0

// SlotOccupied - State indicating a slot that is in use
const SlotOccupied uint8 = 1

// SlotTombstone - State indicating a slot that has been in use but was deleted
const SlotTombstone uint8 = 2

// MaxBucketCapacity - Upper bound for records in one dense bucket, bounded by its one byte counters
const MaxBucketCapacity uint8 = math.MaxUint8

// Growth - Growth policy for dense buckets. When a full bucket receives a new key its capacity is
// increased by Step records, but never beyond Limit.
type Growth struct {
	Step  uint8
	Limit uint8
}

// DefaultGrowth - Linear growth by one record up to MaxBucketCapacity
var DefaultGrowth = Growth{Step: 1, Limit: MaxBucketCapacity}

// Conf - Is a struct to be passed in the call to NewXX engine constructors and to resize operations
//   - KeyLength is the fixed length of keys to store, at least 1
//   - ValueLength is the fixed length of values to store, may be 0
//   - Buckets is the number of buckets (or slots) in the table, at least 1
//   - Tolerance is the initial record capacity of each dense bucket, ignored by other engines
//   - MasterKey is the 16 byte key for the digest
//   - HashAlgorithm is the keyed digest to use, nil gives the internal one
//   - Growth is the dense bucket growth policy, the zero value gives DefaultGrowth
type Conf struct {
	KeyLength     int
	ValueLength   int
	Buckets       uint64
	Tolerance     uint8
	MasterKey     hashfunc.MasterKey
	HashAlgorithm hashfunc.KeyedHash
	Growth        Growth
}

// CellLength - Returns key length plus value length
func (C Conf) CellLength() int {
	return C.KeyLength + C.ValueLength
}

// Validate - Checks the configuration and returns every violation found.
//   - withTolerance set to true also checks Tolerance and Growth, which only the dense engine uses
//
// The returned error matches crt.InvalidArgument and/or crt.DomainError through errors.Is.
func (C Conf) Validate(withTolerance bool) (err error) {
	var result *multierror.Error

	if C.KeyLength <= 0 {
		result = multierror.Append(result, crt.NewInvalidArgument(
			fmt.Sprintf("key length must be a positive value higher than 0 (zero), got %d", C.KeyLength)))
	}
	if C.ValueLength < 0 {
		result = multierror.Append(result, crt.NewInvalidArgument(
			fmt.Sprintf("value length must not be negative, got %d", C.ValueLength)))
	}
	if C.KeyLength > 0 && C.ValueLength > math.MaxInt-C.KeyLength {
		result = multierror.Append(result, crt.NewDomainError(
			fmt.Sprintf("key length %d plus value length %d overflows", C.KeyLength, C.ValueLength)))
	}
	if C.Buckets == 0 {
		result = multierror.Append(result, crt.NewInvalidArgument("number of buckets must be higher than 0 (zero)"))
	}

	if withTolerance {
		if C.Tolerance == 0 {
			result = multierror.Append(result, crt.NewInvalidArgument("tolerance must be higher than 0 (zero)"))
		}
		g := C.GrowthPolicy()
		if g.Step == 0 {
			result = multierror.Append(result, crt.NewInvalidArgument("growth step must be higher than 0 (zero)"))
		}
		if C.Tolerance > g.Limit {
			result = multierror.Append(result, crt.NewInvalidArgument(
				fmt.Sprintf("tolerance %d is above growth limit %d", C.Tolerance, g.Limit)))
		}
	}

	return result.ErrorOrNil()
}

// GrowthPolicy - Returns the configured growth policy or DefaultGrowth if none was given
func (C Conf) GrowthPolicy() Growth {
	if C.Growth == (Growth{}) {
		return DefaultGrowth
	}
	return C.Growth
}

// Stats - Engine independent statistics snapshot
//   - TotalEntries is the number of live records
//   - EmptyBuckets, OptimalBuckets, CollidingBuckets and GarbageBuckets always sum to the bucket count
//   - MaxCrowding is the largest bucket size, longest chain or longest probe distance plus one
//   - Load is TotalEntries divided by the bucket count
type Stats struct {
	Buckets          uint64
	TotalEntries     uint64
	EmptyBuckets     uint64
	OptimalBuckets   uint64
	CollidingBuckets uint64
	GarbageBuckets   uint64
	MaxCrowding      uint64
	Load             float64
}

// CheckSum - Verifies that the bucket categories add up to the bucket count
func (S Stats) CheckSum() (err error) {
	sum := S.EmptyBuckets + S.OptimalBuckets + S.CollidingBuckets + S.GarbageBuckets
	if sum != S.Buckets {
		err = fmt.Errorf("sum of bucket types %d not equal to bucket count %d", sum, S.Buckets)
	}

	return
}

// StorageParameters - Represents parameters specific for any engine implementation
type StorageParameters struct {
	CollisionResolutionTechnique int
	KeyLength                    int
	ValueLength                  int
	NumberOfBuckets              uint64
	Tolerance                    uint8
	Growth                       Growth
	InternalAlgorithm            bool
}
