package digest

import (
	"encoding/hex"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/gostonefire/memhashmap/hashfunc"
)

// keySource - Process wide generator, seeded once from the wall clock
var keySource = struct {
	sync.Mutex
	r *rand.Rand
}{r: rand.New(rand.NewSource(time.Now().UnixNano()))}

// NewKey - Returns fresh master key material from a pseudo random generator seeded with the wall clock.
// This is a convenience for callers that just need distinct keys per table, not a source of secrets.
func NewKey() (masterKey hashfunc.MasterKey) {
	keySource.Lock()
	defer keySource.Unlock()

	_, _ = keySource.r.Read(masterKey[:])

	return
}

// ParseKey - Parses a master key from its 32 character hexadecimal form
func ParseKey(s string) (masterKey hashfunc.MasterKey, err error) {
	b, err := hex.DecodeString(s)
	if err != nil {
		err = fmt.Errorf("master key is not hexadecimal: %w", err)
		return
	}
	if len(b) != hashfunc.KeyLength {
		err = fmt.Errorf("master key must be %d bytes, got %d", hashfunc.KeyLength, len(b))
		return
	}

	copy(masterKey[:], b)

	return
}
