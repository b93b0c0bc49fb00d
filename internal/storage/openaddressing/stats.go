package openaddressing

import (
	"fmt"
	"strings"

	"github.com/gostonefire/memhashmap/internal/model"
)

// Stats - Statistics snapshot of an OATable
//   - OptimalSlots holds a record in its home slot
//   - CollidingSlots holds a record that had to probe past its home slot
//   - GarbageSlots are tombstones
//   - MaxProbeLen is the longest probe sequence needed to reach any record
type Stats struct {
	Slots          uint64
	TotalEntries   uint64
	EmptySlots     uint64
	OptimalSlots   uint64
	CollidingSlots uint64
	GarbageSlots   uint64
	MaxProbeLen    uint64
	Load           float64
}

// Summary - Maps the open addressing statistics onto the engine independent snapshot
func (S Stats) Summary() model.Stats {
	return model.Stats{
		Buckets:          S.Slots,
		TotalEntries:     S.TotalEntries,
		EmptyBuckets:     S.EmptySlots,
		OptimalBuckets:   S.OptimalSlots,
		CollidingBuckets: S.CollidingSlots,
		GarbageBuckets:   S.GarbageSlots,
		MaxCrowding:      S.MaxProbeLen,
		Load:             S.Load,
	}
}

func (S Stats) String() string {
	var sb strings.Builder
	fmt.Fprintln(&sb, "Linear probing statistics")
	fmt.Fprintf(&sb, "  slots:            %d\n", S.Slots)
	fmt.Fprintf(&sb, "  entries:          %d\n", S.TotalEntries)
	fmt.Fprintf(&sb, "  empty slots:      %d\n", S.EmptySlots)
	fmt.Fprintf(&sb, "  optimal slots:    %d\n", S.OptimalSlots)
	fmt.Fprintf(&sb, "  colliding slots:  %d\n", S.CollidingSlots)
	fmt.Fprintf(&sb, "  garbage slots:    %d\n", S.GarbageSlots)
	fmt.Fprintf(&sb, "  max probe length: %d\n", S.MaxProbeLen)
	fmt.Fprintf(&sb, "  load:             %.4f\n", S.Load)

	return sb.String()
}
