// Package digest implements the keyed 64-bit digest used by every engine for bucket placement, together
// with alternative KeyedHash implementations and master key generation.
//
// The default digest is an ARX permutation over four 64-bit words with two compression rounds per 8 byte
// block and four finalization rounds (the SipHash-2-4 construction).
package digest

import (
	"encoding/binary"
	"math/bits"

	"github.com/gostonefire/memhashmap/hashfunc"
)

const (
	init0 uint64 = 0x736f6d6570736575
	init1 uint64 = 0x646f72616e646f6d
	init2 uint64 = 0x6c7967656e657261
	init3 uint64 = 0x7465646279746573
)

// state - The four word internal state
type state struct {
	v0, v1, v2, v3 uint64
}

// round - Applies one ARX round to the state
func (s *state) round() {
	s.v0 += s.v1
	s.v1 = bits.RotateLeft64(s.v1, 13)
	s.v1 ^= s.v0
	s.v0 = bits.RotateLeft64(s.v0, 32)
	s.v2 += s.v3
	s.v3 = bits.RotateLeft64(s.v3, 16)
	s.v3 ^= s.v2
	s.v0 += s.v3
	s.v3 = bits.RotateLeft64(s.v3, 21)
	s.v3 ^= s.v0
	s.v2 += s.v1
	s.v1 = bits.RotateLeft64(s.v1, 17)
	s.v1 ^= s.v2
	s.v2 = bits.RotateLeft64(s.v2, 32)
}

// compress - Mixes one 64-bit message word into the state
func (s *state) compress(m uint64) {
	s.v3 ^= m
	s.round()
	s.round()
	s.v0 ^= m
}

// Sum64 - Returns the keyed digest of input under masterKey.
//   - input is any byte string, including the empty one
//   - masterKey is the 16 byte key, read as two little endian words
func Sum64(input []byte, masterKey hashfunc.MasterKey) uint64 {
	k0 := binary.LittleEndian.Uint64(masterKey[0:8])
	k1 := binary.LittleEndian.Uint64(masterKey[8:16])

	s := state{
		v0: init0 ^ k0,
		v1: init1 ^ k1,
		v2: init2 ^ k0,
		v3: init3 ^ k1,
	}

	length := len(input)
	for len(input) >= 8 {
		s.compress(binary.LittleEndian.Uint64(input))
		input = input[8:]
	}

	// Trailing 0-7 bytes with the total length in the top byte
	last := uint64(length) << 56
	for i := len(input) - 1; i >= 0; i-- {
		last |= uint64(input[i]) << (8 * uint(i))
	}
	s.compress(last)

	s.v2 ^= 0xff
	s.round()
	s.round()
	s.round()
	s.round()

	return s.v0 ^ s.v1 ^ s.v2 ^ s.v3
}

// Index - Returns the home bucket index of key in a table of bucketCount buckets
func Index(hashAlgorithm hashfunc.KeyedHash, key []byte, masterKey hashfunc.MasterKey, bucketCount uint64) uint64 {
	return hashAlgorithm.Sum64(key, masterKey) % bucketCount
}

// ARX - The internally used keyed digest, implements hashfunc.KeyedHash through Sum64
type ARX struct{}

// Sum64 - Implements hashfunc.KeyedHash
func (ARX) Sum64(input []byte, masterKey hashfunc.MasterKey) uint64 {
	return Sum64(input, masterKey)
}
