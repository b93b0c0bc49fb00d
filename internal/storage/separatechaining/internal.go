package separatechaining

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
func (S *SCTable) checkUsable() (err error) {
	if S.freed {
		err = crt.Freed{}
	}

	return
}

// bucketNo - Returns the home bucket of key
func (S *SCTable) bucketNo(key []byte) uint64 {
	return digest.Index(S.hashAlgorithm, key, S.masterKey, S.numberOfBuckets)
}

// find - Walks the chain of bucketNo looking for key.
//
// It returns:
//   - n is the matching node or nil if not found
//   - prev is the node before n, nil if n is the head of the chain
func (S *SCTable) find(bucketNo uint64, key []byte) (n, prev *node) {
	for n = S.buckets[bucketNo]; n != nil; prev, n = n, n.next {
		if bytes.Equal(key, n.key(S.keyLength)) {
			return
		}
	}
	prev = nil

	return
}

// insert - Updates the value for key in place or links a new node as head of the chain.
// Lengths are assumed to be checked.
func (S *SCTable) insert(key, value []byte) {
	bucketNo := S.bucketNo(key)

	n, _ := S.find(bucketNo, key)
	if n != nil {
		_ = copy(n.value(S.keyLength), value)
		return
	}

	S.buckets[bucketNo] = recordToNode(key, value, S.cellLength, S.buckets[bucketNo])
}

// freeChain - Unlinks all nodes in the chain of bucketNo
func (S *SCTable) freeChain(bucketNo uint64) {
	n := S.buckets[bucketNo]
	S.buckets[bucketNo] = nil
	for n != nil {
		next := n.next
		n.next = nil
		n = next
	}
}

// rehash - Builds a new table from conf and moves every record into it.
//   - destructive set to true unlinks each old node once moved and frees the receiver
func (S *SCTable) rehash(conf model.Conf, destructive bool) (scTable *SCTable, err error) {
	err = S.checkUsable()
	if err != nil {
		return
	}

	conf = storage.InheritConf(conf, S.hashAlgorithm, S.internalAlgorithm, model.Growth{})
	target, err := NewSCTable(conf)
	if err != nil {
		err = fmt.Errorf("error while creating resized table: %w", err)
		return
	}

	var key, value []byte
	for i, head := range S.buckets {
		for n := head; n != nil; {
			key = utils.ResizeBytes(n.key(S.keyLength), target.keyLength)
			value = utils.ResizeBytes(n.value(S.keyLength), target.valueLength)
			target.insert(key, value)

			next := n.next
			if destructive {
				S.buckets[i] = next
				n.next = nil
			}
			n = next
		}
	}

	if destructive {
		S.Free()
	}

	scTable = target

	return
}
