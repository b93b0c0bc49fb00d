package memhashmap

import (
	"bytes"
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gostonefire/memhashmap/crt"
	"github.com/gostonefire/memhashmap/digest"
)

func testKey(i int) []byte {
	return []byte(fmt.Sprintf("key-%012d", i))
}

func testValue(i int) []byte {
	return []byte(fmt.Sprintf("val-%06d", i))
}

func newTestHashMap(t *testing.T, test TestCaseHashMap, records int) *HashMap {
	hashMap, _, err := NewHashMap(test.crt, test.conf)
	require.NoError(t, err, "create new hash map")

	for i := 0; i < records; i++ {
		err = hashMap.Set(testKey(i), testValue(i))
		require.NoError(t, err, "set record")
	}

	return hashMap
}

func TestHashMap_Set(t *testing.T) {
	for _, test := range testCases(100) {
		t.Run(fmt.Sprintf("sets and gets records for %s", test.crtName), func(t *testing.T) {
			// Prepare
			hashMap := newTestHashMap(t, test, 0)

			// Execute
			for i := 0; i < 50; i++ {
				err := hashMap.Set(testKey(i), testValue(i))
				assert.NoError(t, err, "set record")
			}

			// Check
			for i := 0; i < 50; i++ {
				value, err := hashMap.Get(testKey(i))
				assert.NoError(t, err, "get record")
				assert.Equal(t, testValue(i), value, "value matches")
			}
			_, err := hashMap.Get(testKey(50))
			assert.ErrorIs(t, err, crt.NoRecordFound{}, "unknown key")

			stat, err := hashMap.Stat()
			assert.NoError(t, err, "get stat")
			assert.Equal(t, uint64(50), stat.TotalEntries, "entries")
		})

		t.Run(fmt.Sprintf("set is idempotent for %s", test.crtName), func(t *testing.T) {
			// Prepare
			hashMap := newTestHashMap(t, test, 10)

			// Execute
			err := hashMap.Set(testKey(3), testValue(3))

			// Check
			assert.NoError(t, err, "repeated set")
			stat, err := hashMap.Stat()
			assert.NoError(t, err, "get stat")
			assert.Equal(t, uint64(10), stat.TotalEntries, "entries unchanged")
		})

		t.Run(fmt.Sprintf("refuses wrong lengths for %s", test.crtName), func(t *testing.T) {
			// Prepare
			hashMap := newTestHashMap(t, test, 0)

			// Execute
			errKey := hashMap.Set([]byte("short"), testValue(0))
			errValue := hashMap.Set(testKey(0), []byte("short"))
			_, errGet := hashMap.Get([]byte("short"))

			// Check
			assert.ErrorIs(t, errKey, crt.InvalidArgument{}, "short key")
			assert.ErrorIs(t, errValue, crt.InvalidArgument{}, "short value")
			assert.ErrorIs(t, errGet, crt.InvalidArgument{}, "short key on get")
		})
	}
}

func TestHashMap_View(t *testing.T) {
	for _, test := range testCases(100) {
		t.Run(fmt.Sprintf("views stored bytes for %s", test.crtName), func(t *testing.T) {
			// Prepare
			hashMap := newTestHashMap(t, test, 5)

			// Execute
			view, err := hashMap.View(testKey(2))

			// Check
			assert.NoError(t, err, "view record")
			assert.Equal(t, testValue(2), view, "value matches")
			_, err = hashMap.View(testKey(9))
			assert.ErrorIs(t, err, crt.NoRecordFound{}, "unknown key")
		})
	}
}

func TestHashMap_Pop(t *testing.T) {
	for _, test := range testCases(100) {
		t.Run(fmt.Sprintf("pops records for %s", test.crtName), func(t *testing.T) {
			// Prepare
			hashMap := newTestHashMap(t, test, 20)

			// Execute
			value, err := hashMap.Pop(testKey(7))

			// Check
			assert.NoError(t, err, "pop record")
			assert.Equal(t, testValue(7), value, "popped value")
			exists, err := hashMap.Exists(testKey(7))
			assert.NoError(t, err, "exists")
			assert.False(t, exists, "popped key gone")

			_, err = hashMap.Pop(testKey(7))
			assert.ErrorIs(t, err, crt.NoRecordFound{}, "pop again")
		})
	}
}

func TestHashMap_Delete(t *testing.T) {
	for _, test := range testCases(100) {
		t.Run(fmt.Sprintf("deletes and reinserts records for %s", test.crtName), func(t *testing.T) {
			// Prepare
			hashMap := newTestHashMap(t, test, 30)

			// Execute
			for i := 0; i < 30; i += 2 {
				found, err := hashMap.Delete(testKey(i))
				assert.NoError(t, err, "delete record")
				assert.True(t, found, "record was found")
			}

			// Check
			for i := 0; i < 30; i++ {
				exists, err := hashMap.Exists(testKey(i))
				assert.NoError(t, err, "exists")
				assert.Equal(t, i%2 == 1, exists, "only odd keys remain")
			}

			err := hashMap.Set(testKey(4), testValue(4))
			assert.NoError(t, err, "reinsert")
			value, err := hashMap.Get(testKey(4))
			assert.NoError(t, err, "get reinserted")
			assert.Equal(t, testValue(4), value, "reinserted value")

			stat, err := hashMap.Stat()
			assert.NoError(t, err, "get stat")
			assert.Equal(t, uint64(16), stat.TotalEntries, "entries")
		})
	}
}

func TestHashMap_Resize(t *testing.T) {
	for _, test := range testCases(100) {
		t.Run(fmt.Sprintf("resizes destructively for %s", test.crtName), func(t *testing.T) {
			// Prepare
			hashMap := newTestHashMap(t, test, 40)
			conf := test.conf
			conf.Buckets = 61
			conf.MasterKey = digest.NewKey()

			// Execute
			resized, err := hashMap.Resize(conf)

			// Check
			require.NoError(t, err, "resize")
			assert.Equal(t, uint64(61), resized.Info().NumberOfBuckets, "new bucket count")
			for i := 0; i < 40; i++ {
				value, err := resized.Get(testKey(i))
				assert.NoError(t, err, "get record")
				assert.Equal(t, testValue(i), value, "value preserved")
			}
			_, err = hashMap.Get(testKey(0))
			assert.ErrorIs(t, err, crt.Freed{}, "source consumed")
		})

		t.Run(fmt.Sprintf("resizes safely for %s", test.crtName), func(t *testing.T) {
			// Prepare
			hashMap := newTestHashMap(t, test, 40)
			conf := test.conf
			conf.Buckets = 200
			conf.ValueLength = 12

			// Execute
			resized, err := hashMap.ResizeSafe(conf)

			// Check
			require.NoError(t, err, "resize")
			for i := 0; i < 40; i++ {
				value, err := resized.Get(testKey(i))
				assert.NoError(t, err, "get from resized")
				assert.Equal(t, append(testValue(i), 0, 0), value, "value zero extended")
				value, err = hashMap.Get(testKey(i))
				assert.NoError(t, err, "get from source")
				assert.Equal(t, testValue(i), value, "source value")
			}
			hashMap.Free()
			_, err = resized.Get(testKey(0))
			assert.NoError(t, err, "resized independent of source")
		})
	}
}

func TestHashMap_Clone(t *testing.T) {
	for _, test := range testCases(100) {
		t.Run(fmt.Sprintf("clones for %s", test.crtName), func(t *testing.T) {
			// Prepare
			hashMap := newTestHashMap(t, test, 25)
			_, err := hashMap.Delete(testKey(3))
			require.NoError(t, err, "delete record")

			// Execute
			clone, err := hashMap.Clone()

			// Check
			require.NoError(t, err, "clone")
			statSource, err := hashMap.Stat()
			assert.NoError(t, err, "source stat")
			statClone, err := clone.Stat()
			assert.NoError(t, err, "clone stat")
			assert.Empty(t, cmp.Diff(statSource, statClone), "same statistics")
			assert.Equal(t, hashMap.Info(), clone.Info(), "same info")

			err = clone.Set(testKey(0), bytes.Repeat([]byte{'c'}, 10))
			assert.NoError(t, err, "mutate clone")
			value, err := hashMap.Get(testKey(0))
			assert.NoError(t, err, "get from source")
			assert.Equal(t, testValue(0), value, "source unaffected")
		})
	}
}

func TestHashMap_Stat(t *testing.T) {
	for _, test := range testCases(64) {
		t.Run(fmt.Sprintf("statistics add up for %s", test.crtName), func(t *testing.T) {
			// Prepare
			hashMap := newTestHashMap(t, test, 48)
			for i := 0; i < 48; i += 3 {
				_, err := hashMap.Delete(testKey(i))
				require.NoError(t, err, "delete record")
			}

			// Execute
			stat, err := hashMap.Stat()
			report, errReport := hashMap.StatReport()

			// Check
			assert.NoError(t, err, "get stat")
			assert.NoError(t, errReport, "get report")
			assert.Equal(t, uint64(64), stat.Buckets, "bucket count")
			assert.Equal(t, stat.Buckets, stat.EmptyBuckets+stat.OptimalBuckets+stat.CollidingBuckets+stat.GarbageBuckets, "sum")
			assert.Equal(t, uint64(32), stat.TotalEntries, "entries")
			assert.Equal(t, 0.5, stat.Load, "load")
			assert.GreaterOrEqual(t, stat.MaxCrowding, uint64(1), "crowding")
			assert.Contains(t, report, "statistics", "report header")
			if test.crt == crt.LinearProbing {
				assert.Equal(t, uint64(16), stat.GarbageBuckets, "tombstones")
			} else {
				assert.Zero(t, stat.GarbageBuckets, "no tombstones")
			}
		})
	}
}

func TestHashMap_Free(t *testing.T) {
	for _, test := range testCases(16) {
		t.Run(fmt.Sprintf("refuses use after free for %s", test.crtName), func(t *testing.T) {
			// Prepare
			hashMap := newTestHashMap(t, test, 4)

			// Execute
			hashMap.Free()

			// Check
			_, err := hashMap.Get(testKey(0))
			assert.ErrorIs(t, err, crt.Freed{}, "get")
			_, err = hashMap.View(testKey(0))
			assert.ErrorIs(t, err, crt.Freed{}, "view")
			assert.ErrorIs(t, hashMap.Set(testKey(0), testValue(0)), crt.Freed{}, "set")
			_, err = hashMap.Exists(testKey(0))
			assert.ErrorIs(t, err, crt.Freed{}, "exists")
			_, err = hashMap.Pop(testKey(0))
			assert.ErrorIs(t, err, crt.Freed{}, "pop")
			_, err = hashMap.Delete(testKey(0))
			assert.ErrorIs(t, err, crt.Freed{}, "delete")
			_, err = hashMap.Resize(test.conf)
			assert.ErrorIs(t, err, crt.Freed{}, "resize")
			_, err = hashMap.ResizeSafe(test.conf)
			assert.ErrorIs(t, err, crt.Freed{}, "resize safe")
			_, err = hashMap.Clone()
			assert.ErrorIs(t, err, crt.Freed{}, "clone")
			_, err = hashMap.Stat()
			assert.ErrorIs(t, err, crt.Freed{}, "stat")
			_, err = hashMap.StatReport()
			assert.ErrorIs(t, err, crt.Freed{}, "report")
		})
	}
}
