package separatechaining

import (
	"fmt"
	"strings"

	"github.com/gostonefire/memhashmap/internal/model"
)

// Stats - Statistics snapshot of an SCTable
//   - NullBuckets has no chain
//   - OptimalBuckets has a chain of one node
//   - ChainedBuckets has a chain of more than one node
//   - MaxChainLen is the longest chain seen
type Stats struct {
	Buckets        uint64
	TotalEntries   uint64
	NullBuckets    uint64
	OptimalBuckets uint64
	ChainedBuckets uint64
	MaxChainLen    uint64
	Load           float64
}

// Summary - Maps the chaining statistics onto the engine independent snapshot
func (S Stats) Summary() model.Stats {
	return model.Stats{
		Buckets:          S.Buckets,
		TotalEntries:     S.TotalEntries,
		EmptyBuckets:     S.NullBuckets,
		OptimalBuckets:   S.OptimalBuckets,
		CollidingBuckets: S.ChainedBuckets,
		MaxCrowding:      S.MaxChainLen,
		Load:             S.Load,
	}
}

func (S Stats) String() string {
	var sb strings.Builder
	fmt.Fprintln(&sb, "Separate chaining statistics")
	fmt.Fprintf(&sb, "  buckets:          %d\n", S.Buckets)
	fmt.Fprintf(&sb, "  entries:          %d\n", S.TotalEntries)
	fmt.Fprintf(&sb, "  null buckets:     %d\n", S.NullBuckets)
	fmt.Fprintf(&sb, "  optimal buckets:  %d\n", S.OptimalBuckets)
	fmt.Fprintf(&sb, "  chained buckets:  %d\n", S.ChainedBuckets)
	fmt.Fprintf(&sb, "  max chain length: %d\n", S.MaxChainLen)
	fmt.Fprintf(&sb, "  load:             %.4f\n", S.Load)

	return sb.String()
}
