package hashfunc

// KeyLength - Number of bytes in a master key
const KeyLength = 16

// MasterKey - Secret key material that seeds the keyed digest. Keys are supplied by the caller, a
// convenience generator lives in the digest package.
type MasterKey [KeyLength]byte

// KeyedHash - Interface that permits an implementation using the HashMap to supply a custom keyed digest.
// Whatever is supplied, different master keys must give outputs with no practical correlation, otherwise
// an adversary can engineer collisions and degrade every engine to its worst case.
type KeyedHash interface {
	// Sum64 - Returns a 64-bit digest of input under masterKey.
	// Bucket selection is always Sum64(key, masterKey) % bucketCount.
	Sum64(input []byte, masterKey MasterKey) uint64
}
