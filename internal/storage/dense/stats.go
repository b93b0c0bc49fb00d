package dense

import (
	"fmt"
	"strings"

	"github.com/gostonefire/memhashmap/internal/model"
)

// Stats - Statistics snapshot of a DATable
//   - EmptyBuckets holds no records
//   - OptimalBuckets holds exactly one record
//   - CollidingBuckets holds more than one record
//   - MaxBucketSize is the largest number of records seen in one bucket
type Stats struct {
	Buckets          uint64
	TotalEntries     uint64
	EmptyBuckets     uint64
	OptimalBuckets   uint64
	CollidingBuckets uint64
	MaxBucketSize    uint64
	Load             float64
}

// Summary - Maps the dense statistics onto the engine independent snapshot
func (S Stats) Summary() model.Stats {
	return model.Stats{
		Buckets:          S.Buckets,
		TotalEntries:     S.TotalEntries,
		EmptyBuckets:     S.EmptyBuckets,
		OptimalBuckets:   S.OptimalBuckets,
		CollidingBuckets: S.CollidingBuckets,
		MaxCrowding:      S.MaxBucketSize,
		Load:             S.Load,
	}
}

func (S Stats) String() string {
	var sb strings.Builder
	fmt.Fprintln(&sb, "Dense array statistics")
	fmt.Fprintf(&sb, "  buckets:           %d\n", S.Buckets)
	fmt.Fprintf(&sb, "  entries:           %d\n", S.TotalEntries)
	fmt.Fprintf(&sb, "  empty buckets:     %d\n", S.EmptyBuckets)
	fmt.Fprintf(&sb, "  optimal buckets:   %d\n", S.OptimalBuckets)
	fmt.Fprintf(&sb, "  colliding buckets: %d\n", S.CollidingBuckets)
	fmt.Fprintf(&sb, "  max bucket size:   %d\n", S.MaxBucketSize)
	fmt.Fprintf(&sb, "  load:              %.4f\n", S.Load)

	return sb.String()
}
