package digest

import (
	"encoding/binary"

	"github.com/cespare/xxhash/v2"
	"github.com/dchest/siphash"

	"github.com/gostonefire/memhashmap/hashfunc"
)

// SipHash - KeyedHash backed by github.com/dchest/siphash. It computes the same values as ARX,
// using the assembler implementation where the platform has one.
type SipHash struct{}

// Sum64 - Implements hashfunc.KeyedHash
func (SipHash) Sum64(input []byte, masterKey hashfunc.MasterKey) uint64 {
	k0 := binary.LittleEndian.Uint64(masterKey[0:8])
	k1 := binary.LittleEndian.Uint64(masterKey[8:16])
	return siphash.Hash(k0, k1, input)
}

// XXHash - KeyedHash backed by xxhash64 over masterKey followed by input.
// It is faster than ARX on long keys but gives no collision resistance against an adversary who can
// observe outputs, so prefer it only for trusted key sets.
type XXHash struct{}

// Sum64 - Implements hashfunc.KeyedHash
func (XXHash) Sum64(input []byte, masterKey hashfunc.MasterKey) uint64 {
	d := xxhash.New()
	_, _ = d.Write(masterKey[:])
	_, _ = d.Write(input)
	return d.Sum64()
}
