package openaddressing

import (
	"bytes"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"

	"github.com/gostonefire/memhashmap/crt"
	"github.com/gostonefire/memhashmap/digest"
	"github.com/gostonefire/memhashmap/hashfunc"
	"github.com/gostonefire/memhashmap/internal/model"
)

var (
	keyA = []byte("abcdefg\x00")
	keyB = []byte("bcdefgh\x00")
	keyC = []byte("cdefghi\x00")
)

// constantHash - Sends every key to the same home slot
type constantHash struct {
	home uint64
}

func (C constantHash) Sum64(_ []byte, _ hashfunc.MasterKey) uint64 {
	return C.home
}

func testConf(slots uint64) model.Conf {
	return model.Conf{
		KeyLength:   8,
		ValueLength: 64,
		Buckets:     slots,
		MasterKey:   digest.NewKey(),
	}
}

func populate(t *testing.T, oaTable *OATable) map[string][]byte {
	records := map[string][]byte{
		string(keyA): bytes.Repeat([]byte{'1'}, 64),
		string(keyB): bytes.Repeat([]byte{'2'}, 64),
		string(keyC): bytes.Repeat([]byte{'3'}, 64),
	}
	for _, k := range [][]byte{keyA, keyB, keyC} {
		err := oaTable.Set(k, records[string(k)])
		assert.NoError(t, err, "set record")
	}

	return records
}

func TestNewOATable(t *testing.T) {
	t.Run("creates a new OATable instance", func(t *testing.T) {
		// Execute
		oaTable, err := NewOATable(testConf(16))

		// Check
		assert.NoError(t, err, "create new OATable instance")
		assert.Equal(t, 16, len(oaTable.states), "number of slots")
		assert.Equal(t, 16*72, len(oaTable.cells), "cell storage")
		for _, state := range oaTable.states {
			assert.Equal(t, model.SlotEmpty, state, "slot is empty")
		}
	})

	t.Run("refuses invalid configurations", func(t *testing.T) {
		// Execute
		_, err := NewOATable(testConf(0))

		// Check
		assert.ErrorIs(t, err, crt.InvalidArgument{}, "zero slots")
	})
}

func TestOATable_Allocation(t *testing.T) {
	t.Run("refuses a slot count that can't be allocated", func(t *testing.T) {
		// Execute
		oaTable, err := NewOATable(testConf(1 << 50))

		// Check
		assert.ErrorIs(t, err, crt.OutOfMemory{}, "too many slots")
		assert.Nil(t, oaTable, "no table on failure")
	})

	t.Run("refuses cell storage whose size overflows", func(t *testing.T) {
		// Prepare
		conf := testConf(1 << 33)
		conf.KeyLength = 1<<31 - 1
		conf.ValueLength = 1

		// Execute
		oaTable, err := NewOATable(conf)

		// Check
		assert.ErrorIs(t, err, crt.OutOfMemory{}, "slots times cell length overflows")
		assert.Nil(t, oaTable, "no table on failure")
	})

	t.Run("keeps the source when the resized table can't be allocated", func(t *testing.T) {
		// Prepare
		oaTable, err := NewOATable(testConf(16))
		assert.NoError(t, err, "create new OATable instance")
		records := populate(t, oaTable)

		// Execute
		_, err = oaTable.Resize(testConf(1 << 50))

		// Check
		assert.ErrorIs(t, err, crt.OutOfMemory{}, "destructive resize")
		value, err := oaTable.Get(keyC)
		assert.NoError(t, err, "source still usable")
		assert.Equal(t, records[string(keyC)], value, "source content")
	})
}

func TestOATable_Set(t *testing.T) {
	t.Run("stores and fetches records", func(t *testing.T) {
		// Prepare
		oaTable, err := NewOATable(testConf(128))
		assert.NoError(t, err, "create new OATable instance")

		// Execute
		records := populate(t, oaTable)

		// Check
		for k, v := range records {
			value, err := oaTable.Get([]byte(k))
			assert.NoError(t, err, "get record")
			assert.Equal(t, v, value, "value matches")
		}
		exists, err := oaTable.Exists([]byte("zfeuids\n"))
		assert.NoError(t, err, "exists")
		assert.False(t, exists, "unknown key")
	})

	t.Run("probes linearly from the home slot", func(t *testing.T) {
		// Prepare
		conf := testConf(8)
		conf.HashAlgorithm = constantHash{home: 6}
		oaTable, err := NewOATable(conf)
		assert.NoError(t, err, "create new OATable instance")

		// Execute
		_ = populate(t, oaTable)

		// Check
		assert.Equal(t, keyA, oaTable.key(6), "home slot")
		assert.Equal(t, keyB, oaTable.key(7), "next slot")
		assert.Equal(t, keyC, oaTable.key(0), "wraps around")
	})

	t.Run("fails when every slot is taken", func(t *testing.T) {
		// Prepare
		oaTable, err := NewOATable(testConf(2))
		assert.NoError(t, err, "create new OATable instance")
		err = oaTable.Set(keyA, make([]byte, 64))
		assert.NoError(t, err, "set first")
		err = oaTable.Set(keyB, make([]byte, 64))
		assert.NoError(t, err, "set second")

		// Execute
		errFull := oaTable.Set(keyC, make([]byte, 64))
		errUpdate := oaTable.Set(keyA, bytes.Repeat([]byte{'u'}, 64))

		// Check
		assert.ErrorIs(t, errFull, crt.TableFull{}, "table full")
		assert.NoError(t, errUpdate, "update still possible")
		value, err := oaTable.Get(keyA)
		assert.NoError(t, err, "get updated")
		assert.Equal(t, bytes.Repeat([]byte{'u'}, 64), value, "updated value")
	})

	t.Run("reuses tombstones in a full table", func(t *testing.T) {
		// Prepare
		oaTable, err := NewOATable(testConf(2))
		assert.NoError(t, err, "create new OATable instance")
		_ = oaTable.Set(keyA, make([]byte, 64))
		_ = oaTable.Set(keyB, make([]byte, 64))
		_, _ = oaTable.Delete(keyA)

		// Execute
		err = oaTable.Set(keyC, make([]byte, 64))

		// Check
		assert.NoError(t, err, "tombstone claimed")
		stats, err := oaTable.Stats()
		assert.NoError(t, err, "get stats")
		assert.Equal(t, uint64(2), stats.TotalEntries, "entries")
		assert.Zero(t, stats.GarbageSlots, "no tombstones")
	})

	t.Run("does not duplicate keys behind a tombstone", func(t *testing.T) {
		// Prepare
		conf := testConf(8)
		conf.HashAlgorithm = constantHash{}
		oaTable, err := NewOATable(conf)
		assert.NoError(t, err, "create new OATable instance")
		_ = populate(t, oaTable)
		_, err = oaTable.Delete(keyB)
		assert.NoError(t, err, "delete")

		// Execute
		err = oaTable.Set(keyC, bytes.Repeat([]byte{'n'}, 64))

		// Check
		assert.NoError(t, err, "update")
		assert.Equal(t, model.SlotTombstone, oaTable.states[1], "tombstone kept")
		stats, err := oaTable.Stats()
		assert.NoError(t, err, "get stats")
		assert.Equal(t, uint64(2), stats.TotalEntries, "no duplicate")
		value, err := oaTable.Get(keyC)
		assert.NoError(t, err, "get updated")
		assert.Equal(t, bytes.Repeat([]byte{'n'}, 64), value, "updated in place")
	})
}

func TestOATable_Delete(t *testing.T) {
	t.Run("turns the slot into a tombstone", func(t *testing.T) {
		// Prepare
		oaTable, err := NewOATable(testConf(128))
		assert.NoError(t, err, "create new OATable instance")
		records := populate(t, oaTable)
		slot, found := oaTable.probingForGet(keyB)
		assert.True(t, found, "located record")

		// Execute
		found, err = oaTable.Delete(keyB)

		// Check
		assert.NoError(t, err, "delete")
		assert.True(t, found, "record was found")
		assert.Equal(t, model.SlotTombstone, oaTable.states[slot], "tombstone")
		exists, err := oaTable.Exists(keyB)
		assert.NoError(t, err, "exists")
		assert.False(t, exists, "deleted key gone")
		for _, k := range [][]byte{keyA, keyC} {
			value, err := oaTable.Get(k)
			assert.NoError(t, err, "remaining record")
			assert.Equal(t, records[string(k)], value, "remaining value")
		}
	})

	t.Run("keeps probe chains through tombstones", func(t *testing.T) {
		// Prepare
		conf := testConf(8)
		conf.HashAlgorithm = constantHash{}
		oaTable, err := NewOATable(conf)
		assert.NoError(t, err, "create new OATable instance")
		records := populate(t, oaTable)

		// Execute
		found, err := oaTable.Delete(keyB)

		// Check
		assert.NoError(t, err, "delete")
		assert.True(t, found, "record was found")
		assert.Equal(t, model.SlotTombstone, oaTable.states[1], "middle slot tombstoned")
		value, err := oaTable.Get(keyC)
		assert.NoError(t, err, "probed past tombstone")
		assert.Equal(t, records[string(keyC)], value, "value reachable")

		found, err = oaTable.Delete(keyB)
		assert.NoError(t, err, "delete again")
		assert.False(t, found, "already gone")
	})
}

func TestOATable_Resize(t *testing.T) {
	t.Run("keeps content and drops tombstones", func(t *testing.T) {
		// Prepare
		oaTable, err := NewOATable(testConf(16))
		assert.NoError(t, err, "create new OATable instance")
		records := populate(t, oaTable)
		_, _ = oaTable.Delete(keyB)

		// Execute
		resized, err := oaTable.Resize(testConf(4))

		// Check
		assert.NoError(t, err, "resize")
		for _, k := range [][]byte{keyA, keyC} {
			value, err := resized.Get(k)
			assert.NoError(t, err, "get record")
			assert.Equal(t, records[string(k)], value, "value preserved")
		}
		stats, err := resized.Stats()
		assert.NoError(t, err, "get stats")
		assert.Zero(t, stats.GarbageSlots, "no tombstones")
		_, err = oaTable.Get(keyA)
		assert.ErrorIs(t, err, crt.Freed{}, "source consumed")
	})

	t.Run("fails into a table that is too small", func(t *testing.T) {
		// Prepare
		oaTable, err := NewOATable(testConf(16))
		assert.NoError(t, err, "create new OATable instance")
		records := populate(t, oaTable)

		// Execute
		_, errSafe := oaTable.ResizeSafe(testConf(2))
		value, errGet := oaTable.Get(keyA)
		_, errDestructive := oaTable.Resize(testConf(2))

		// Check
		assert.ErrorIs(t, errSafe, crt.TableFull{}, "safe resize refused")
		assert.NoError(t, errGet, "source kept after safe resize")
		assert.Equal(t, records[string(keyA)], value, "source value")
		assert.ErrorIs(t, errDestructive, crt.TableFull{}, "destructive resize refused")
		_, err = oaTable.Get(keyA)
		assert.ErrorIs(t, err, crt.Freed{}, "source lost after destructive resize")
	})
}

func TestOATable_Clone(t *testing.T) {
	t.Run("copies slots and states", func(t *testing.T) {
		// Prepare
		oaTable, err := NewOATable(testConf(8))
		assert.NoError(t, err, "create new OATable instance")
		_ = populate(t, oaTable)
		_, _ = oaTable.Delete(keyA)

		// Execute
		clone, err := oaTable.Clone()

		// Check
		assert.NoError(t, err, "clone")
		assert.Empty(t, cmp.Diff(oaTable, clone, cmp.AllowUnexported(OATable{})), "identical copy")

		_, err = clone.Delete(keyB)
		assert.NoError(t, err, "delete in clone")
		exists, err := oaTable.Exists(keyB)
		assert.NoError(t, err, "exists in source")
		assert.True(t, exists, "source unaffected")
	})
}

func TestOATable_Stats(t *testing.T) {
	t.Run("classifies slots", func(t *testing.T) {
		// Prepare
		conf := testConf(8)
		conf.HashAlgorithm = constantHash{home: 3}
		oaTable, err := NewOATable(conf)
		assert.NoError(t, err, "create new OATable instance")
		_ = populate(t, oaTable)
		_, _ = oaTable.Delete(keyB)

		// Execute
		stats, err := oaTable.Stats()

		// Check
		assert.NoError(t, err, "get stats")
		assert.Equal(t, uint64(2), stats.TotalEntries, "entries")
		assert.Equal(t, uint64(5), stats.EmptySlots, "empty")
		assert.Equal(t, uint64(1), stats.OptimalSlots, "optimal")
		assert.Equal(t, uint64(1), stats.CollidingSlots, "colliding")
		assert.Equal(t, uint64(1), stats.GarbageSlots, "garbage")
		assert.Equal(t, uint64(3), stats.MaxProbeLen, "probe length")
		assert.Equal(t, 0.25, stats.Load, "load")
		assert.Contains(t, stats.String(), "garbage slots:    1", "printable")
	})
}

func TestOATable_Free(t *testing.T) {
	t.Run("refuses use after free", func(t *testing.T) {
		// Prepare
		oaTable, err := NewOATable(testConf(16))
		assert.NoError(t, err, "create new OATable instance")
		_ = populate(t, oaTable)

		// Execute
		oaTable.Free()

		// Check
		_, err = oaTable.Get(keyA)
		assert.ErrorIs(t, err, crt.Freed{}, "get")
		err = oaTable.Set(keyA, bytes.Repeat([]byte{'4'}, 64))
		assert.ErrorIs(t, err, crt.Freed{}, "set")
		_, err = oaTable.Delete(keyA)
		assert.ErrorIs(t, err, crt.Freed{}, "delete")
		_, err = oaTable.Clone()
		assert.ErrorIs(t, err, crt.Freed{}, "clone")
		_, err = oaTable.Summary()
		assert.ErrorIs(t, err, crt.Freed{}, "summary")
	})
}
