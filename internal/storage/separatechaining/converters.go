package separatechaining

import (
	"github.com/gostonefire/memhashmap/internal/utils"
)

// node - One chain link holding a single record, key first then value
type node struct {
	next   *node
	record []byte
}

// recordToNode - Builds a node from key and value, the record is a fresh allocation of cellLength bytes
func recordToNode(key, value []byte, cellLength int, next *node) (n *node) {
	record := make([]byte, cellLength)
	_ = copy(record, key)
	_ = copy(record[len(key):], value)

	n = &node{next: next, record: record}

	return
}

// key - Returns the key part of the node record
func (N *node) key(keyLength int) []byte {
	return N.record[:keyLength:keyLength]
}

// value - Returns the value part of the node record
func (N *node) value(keyLength int) []byte {
	return N.record[keyLength:]
}

// cloneChain - Deep copies a chain keeping its traversal order
func cloneChain(head *node) (clone *node) {
	var tail *node
	for n := head; n != nil; n = n.next {
		c := &node{record: utils.Clone(n.record)}
		if tail == nil {
			clone = c
		} else {
			tail.next = c
		}
		tail = c
	}

	return
}

// chainLength - Returns the number of nodes in a chain
func chainLength(head *node) (length uint64) {
	for n := head; n != nil; n = n.next {
		length++
	}

	return
}
