package memhashmap

import (
	"fmt"

	"github.com/gostonefire/memhashmap/crt"
	"github.com/gostonefire/memhashmap/internal/storage/dense"
	"github.com/gostonefire/memhashmap/internal/storage/openaddressing"
	"github.com/gostonefire/memhashmap/internal/storage/separatechaining"
	"github.com/gostonefire/memhashmap/internal/utils"
)

// Get - Gets a copy of the value stored under key.
//   - key is the identifier of a record, it has to be of same length as given in call to NewHashMap
//
// It returns:
//   - value is a fresh copy of the value of the matching record if found, if not found an error of type crt.NoRecordFound is also returned.
//   - err is either of type crt.NoRecordFound or any other error if something went wrong
func (H *HashMap) Get(key []byte) (value []byte, err error) {
	value, err = H.storage.Get(key)

	return
}

// View - Like Get but without copying. The returned slice refers to the stored bytes, it is only valid until the
// hash map is mutated next and must not be written to.
func (H *HashMap) View(key []byte) (value []byte, err error) {
	value, err = H.storage.View(key)

	return
}

// Exists - Returns true if a record with key is stored in the hash map
func (H *HashMap) Exists(key []byte) (exists bool, err error) {
	exists, err = H.storage.Exists(key)

	return
}

// Set - Updates an existing record with new data or adds it if no existing is found with same key.
//   - key is the identifier of a record, it has to be of same length as given in call to NewHashMap
//   - value is the bytes to be stored along with its key, it has to be of same length as given in call to NewHashMap
//
// It returns:
//   - err is of type crt.CapacityExceeded (crt.Dense) or crt.TableFull (crt.LinearProbing) if there is no room for
//     the record, crt.InvalidArgument for wrong lengths or any other error if something went wrong
func (H *HashMap) Set(key []byte, value []byte) (err error) {
	err = H.storage.Set(key, value)

	return
}

// Pop - Returns the value stored under key and removes the record from the hash map.
//   - key is the identifier of a record, it has to be of same length as given in call to NewHashMap
//
// It returns:
//   - value is the value of the matching record if found, if not found an error of type crt.NoRecordFound is also returned.
//   - err is either of type crt.NoRecordFound or any other error if something went wrong
func (H *HashMap) Pop(key []byte) (value []byte, err error) {
	view, err := H.storage.View(key)
	if err != nil {
		return
	}
	value = utils.Clone(view)

	_, err = H.storage.Delete(key)
	if err != nil {
		value = nil
		err = fmt.Errorf("error while deleting popped record: %w", err)
	}

	return
}

// Delete - Removes the record stored under key.
//
// It returns:
//   - found is true if a record was removed
//   - err is any error if something went wrong
func (H *HashMap) Delete(key []byte) (found bool, err error) {
	found, err = H.storage.Delete(key)

	return
}

// Resize - Moves every record into a new hash map built from conf and consumes the receiver, any later call on
// it returns crt.Freed. If moving fails part way the records are lost. An invalid or unallocatable conf leaves
// the receiver untouched.
//
// Keys and values are truncated or zero extended at the end to the new lengths. Shortening keys can make distinct
// keys equal, only the value of the record moved last is then kept.
//   - conf is the new configuration, a nil HashAlgorithm keeps the current digest and a zero Growth keeps the current policy
func (H *HashMap) Resize(conf Conf) (hashMap *HashMap, err error) {
	hashMap, err = H.resize(conf, true)

	return
}

// ResizeSafe - Like Resize but the receiver is left intact, on success both hash maps are usable and the caller may
// Free the receiver.
func (H *HashMap) ResizeSafe(conf Conf) (hashMap *HashMap, err error) {
	hashMap, err = H.resize(conf, false)

	return
}

// Clone - Returns an independent deep copy of the hash map
func (H *HashMap) Clone() (hashMap *HashMap, err error) {
	var s Storage

	switch t := H.storage.(type) {
	case *dense.DATable:
		s, err = cloneEngine[*dense.DATable](t)
	case *separatechaining.SCTable:
		s, err = cloneEngine[*separatechaining.SCTable](t)
	case *openaddressing.OATable:
		s, err = cloneEngine[*openaddressing.OATable](t)
	default:
		err = crt.NewNotImplemented(fmt.Sprintf("clone not supported for %T", t))
	}
	if err != nil {
		return
	}

	hashMap = &HashMap{storage: s}

	return
}

// Stat - Walks through every bucket and produces a HashMapStat. The call fails if the bucket categories do not add
// up to the number of buckets.
func (H *HashMap) Stat() (hashMapStat HashMapStat, err error) {
	hashMapStat, err = H.storage.Summary()

	return
}

// StatReport - Returns the engine specific statistics as human readable text
func (H *HashMap) StatReport() (report string, err error) {
	var stats fmt.Stringer

	switch t := H.storage.(type) {
	case *dense.DATable:
		stats, err = t.Stats()
	case *separatechaining.SCTable:
		stats, err = t.Stats()
	case *openaddressing.OATable:
		stats, err = t.Stats()
	default:
		err = crt.NewNotImplemented(fmt.Sprintf("statistics report not supported for %T", t))
	}
	if err != nil {
		return
	}

	report = stats.String()

	return
}

// Free - Releases all storage held by the hash map. Any later call on it returns crt.Freed.
func (H *HashMap) Free() {
	H.storage.Free()
}

// resize - Dispatches a destructive or safe resize to the engine
func (H *HashMap) resize(conf Conf, destructive bool) (hashMap *HashMap, err error) {
	var s Storage

	switch t := H.storage.(type) {
	case *dense.DATable:
		s, err = resizeEngine[*dense.DATable](t, conf, destructive)
	case *separatechaining.SCTable:
		s, err = resizeEngine[*separatechaining.SCTable](t, conf, destructive)
	case *openaddressing.OATable:
		s, err = resizeEngine[*openaddressing.OATable](t, conf, destructive)
	default:
		err = crt.NewNotImplemented(fmt.Sprintf("resize not supported for %T", t))
	}
	if err != nil {
		return
	}

	hashMap = &HashMap{storage: s}

	return
}
