// Package memhashmap provides an in-memory hash map for fixed length keys and values with a choice of
// collision resolution techniques. All engines place records by a keyed 64-bit digest so that bucket
// placement can not be predicted without knowing the 16 byte master key.
package memhashmap

import (
	"fmt"

	"github.com/gostonefire/memhashmap/crt"
	"github.com/gostonefire/memhashmap/internal/model"
	"github.com/gostonefire/memhashmap/internal/storage/dense"
	"github.com/gostonefire/memhashmap/internal/storage/openaddressing"
	"github.com/gostonefire/memhashmap/internal/storage/separatechaining"
)

// Conf - Configuration for NewHashMap and for resize operations
//   - KeyLength is the fixed length of keys, at least 1
//   - ValueLength is the fixed length of values, may be 0
//   - Buckets is the number of buckets, or slots for crt.LinearProbing, at least 1
//   - Tolerance is the initial record capacity of each bucket, only used by crt.Dense
//   - MasterKey is the 16 byte digest key, digest.NewKey can produce one
//   - HashAlgorithm is an optional custom keyed digest, nil gives the internal one
//   - Growth is the crt.Dense bucket growth policy, the zero value grows by one record up to 255
type Conf = model.Conf

// Growth - Dense bucket growth policy
type Growth = model.Growth

// DefaultGrowth - Grows a full dense bucket by one record up to 255 records
var DefaultGrowth = model.DefaultGrowth

// HashMapStat - Engine independent statistics on usage and distribution over buckets
//   - EmptyBuckets, OptimalBuckets, CollidingBuckets and GarbageBuckets always add up to Buckets
//   - GarbageBuckets is only used by crt.LinearProbing and counts tombstones
//   - MaxCrowding is the largest bucket, the longest chain or the longest probe sequence
type HashMapStat = model.Stats

// Storage - Interface for any engine implementation
type Storage interface {
	Get(key []byte) (value []byte, err error)
	View(key []byte) (value []byte, err error)
	Exists(key []byte) (exists bool, err error)
	Set(key, value []byte) (err error)
	Delete(key []byte) (found bool, err error)
	Summary() (stats model.Stats, err error)
	GetStorageParameters() (params model.StorageParameters)
	Free()
}

// engine - A Storage that can produce resized and cloned instances of its own type
type engine[T Storage] interface {
	Storage
	Resize(conf model.Conf) (T, error)
	ResizeSafe(conf model.Conf) (T, error)
	Clone() (T, error)
}

// HashMapInfo - Information structure describing the hash map created
//   - CollisionResolutionTechnique is one of the crt identifiers
//   - NumberOfBuckets is the number of buckets or slots
//   - Tolerance and Growth are only set for crt.Dense
//   - InternalAlgorithm is true if the internal keyed digest is used
type HashMapInfo struct {
	CollisionResolutionTechnique int
	KeyLength                    int
	ValueLength                  int
	NumberOfBuckets              uint64
	Tolerance                    uint8
	Growth                       Growth
	InternalAlgorithm            bool
}

// HashMap - The main implementation struct
type HashMap struct {
	storage Storage
}

// NewHashMap - Returns a new hash map using the given collision resolution technique.
//   - crtType is one of crt.Dense, crt.SeparateChaining or crt.LinearProbing
//   - conf is the Conf struct with lengths, bucket count, tolerance and master key
//
// It returns:
//   - hashMap is a pointer to a HashMap struct
//   - hashMapInfo is a HashMapInfo struct describing the hash map created
//   - err is of type crt.InvalidArgument or crt.DomainError for a bad conf, crt.NotImplemented for
//     crt.QuadraticProbing and crt.Cuckoo
func NewHashMap(crtType int, conf Conf) (hashMap *HashMap, hashMapInfo HashMapInfo, err error) {
	var s Storage

	switch crtType {
	case crt.Dense:
		var t *dense.DATable
		t, err = dense.NewDATable(conf)
		if err == nil {
			s = t
		}
	case crt.SeparateChaining:
		var t *separatechaining.SCTable
		t, err = separatechaining.NewSCTable(conf)
		if err == nil {
			s = t
		}
	case crt.LinearProbing:
		var t *openaddressing.OATable
		t, err = openaddressing.NewOATable(conf)
		if err == nil {
			s = t
		}
	case crt.QuadraticProbing, crt.Cuckoo:
		err = crt.NewNotImplemented(fmt.Sprintf("collision resolution technique %s is not implemented", crt.Name(crtType)))
	default:
		err = crt.NewInvalidArgument(fmt.Sprintf("unknown collision resolution technique %d", crtType))
	}
	if err != nil {
		return
	}

	hashMap = &HashMap{storage: s}
	hashMapInfo = hashMap.Info()

	return
}

// Info - Returns a HashMapInfo struct describing the hash map
func (H *HashMap) Info() (hashMapInfo HashMapInfo) {
	sp := H.storage.GetStorageParameters()

	hashMapInfo = HashMapInfo{
		CollisionResolutionTechnique: sp.CollisionResolutionTechnique,
		KeyLength:                    sp.KeyLength,
		ValueLength:                  sp.ValueLength,
		NumberOfBuckets:              sp.NumberOfBuckets,
		Tolerance:                    sp.Tolerance,
		Growth:                       sp.Growth,
		InternalAlgorithm:            sp.InternalAlgorithm,
	}

	return
}

// resizeEngine - Runs the destructive or safe resize of an engine and hands back the result as a Storage
func resizeEngine[T Storage](e engine[T], conf Conf, destructive bool) (s Storage, err error) {
	var t T
	if destructive {
		t, err = e.Resize(conf)
	} else {
		t, err = e.ResizeSafe(conf)
	}
	if err != nil {
		return
	}

	s = t

	return
}

// cloneEngine - Clones an engine and hands back the result as a Storage
func cloneEngine[T Storage](e engine[T]) (s Storage, err error) {
	t, err := e.Clone()
	if err != nil {
		return
	}

	s = t

	return
}
