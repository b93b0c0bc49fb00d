package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"strings"
	"time"

	"github.com/natefinch/atomic"
	flag "github.com/spf13/pflag"
	"golang.org/x/sync/errgroup"

	"github.com/gostonefire/memhashmap"
	"github.com/gostonefire/memhashmap/crt"
	"github.com/gostonefire/memhashmap/digest"
)

var (
	keyA = []byte("abcdefg\x00")
	keyB = []byte("bcdefgh\x00")
	keyC = []byte("cdefghi\x00")
)

// scenario - One fixed check of an engine, returning the statistics report of the map it ends with
type scenario struct {
	name string
	run  func() (report string, err error)
}

func scenarios() []scenario {
	return []scenario{
		{name: "A dense fetch and exists", run: scenarioA},
		{name: "B probing tombstones", run: scenarioB},
		{name: "C single bucket chain", run: scenarioC},
		{name: "D dense resize to one bucket", run: scenarioD},
	}
}

// scenarioConf - Conf for the fixed scenarios, eight byte keys and 64 byte values
func scenarioConf(buckets uint64, tolerance uint8) memhashmap.Conf {
	return memhashmap.Conf{
		KeyLength:   8,
		ValueLength: 64,
		Buckets:     buckets,
		Tolerance:   tolerance,
		MasterKey:   digest.NewKey(),
	}
}

// fillScenario - Stores the three scenario records and returns them by key
func fillScenario(hashMap *memhashmap.HashMap) (records map[string][]byte, err error) {
	records = map[string][]byte{}
	for i, k := range [][]byte{keyA, keyB, keyC} {
		v := bytes.Repeat([]byte{byte('1' + i)}, 64)
		err = hashMap.Set(k, v)
		if err != nil {
			err = fmt.Errorf("set %q: %w", k, err)
			return
		}
		records[string(k)] = v
	}

	return
}

// checkRecords - Verifies that every record can be fetched with its exact value
func checkRecords(hashMap *memhashmap.HashMap, records map[string][]byte) (err error) {
	for k, v := range records {
		var value []byte
		value, err = hashMap.Get([]byte(k))
		if err != nil {
			err = fmt.Errorf("get %q: %w", k, err)
			return
		}
		if !bytes.Equal(v, value) {
			err = fmt.Errorf("get %q: value mismatch", k)
			return
		}
	}

	return
}

func scenarioA() (report string, err error) {
	hashMap, _, err := memhashmap.NewHashMap(crt.Dense, scenarioConf(128, 1))
	if err != nil {
		return
	}
	defer hashMap.Free()

	records, err := fillScenario(hashMap)
	if err != nil {
		return
	}
	for k := range records {
		exists, e := hashMap.Exists([]byte(k))
		if e != nil || !exists {
			err = fmt.Errorf("exists %q: %t, %v", k, exists, e)
			return
		}
	}
	exists, err := hashMap.Exists([]byte("zfeuids\n"))
	if err != nil {
		return
	}
	if exists {
		err = fmt.Errorf("unknown key reported as existing")
		return
	}
	err = checkRecords(hashMap, records)
	if err != nil {
		return
	}

	report, err = hashMap.StatReport()

	return
}

func scenarioB() (report string, err error) {
	hashMap, _, err := memhashmap.NewHashMap(crt.LinearProbing, scenarioConf(128, 0))
	if err != nil {
		return
	}
	defer hashMap.Free()

	records, err := fillScenario(hashMap)
	if err != nil {
		return
	}
	found, err := hashMap.Delete(keyB)
	if err != nil {
		return
	}
	if !found {
		err = fmt.Errorf("delete %q: not found", keyB)
		return
	}
	delete(records, string(keyB))

	stat, err := hashMap.Stat()
	if err != nil {
		return
	}
	if stat.GarbageBuckets != 1 {
		err = fmt.Errorf("expected one tombstone, got %d", stat.GarbageBuckets)
		return
	}
	err = checkRecords(hashMap, records)
	if err != nil {
		return
	}

	report, err = hashMap.StatReport()

	return
}

func scenarioC() (report string, err error) {
	hashMap, _, err := memhashmap.NewHashMap(crt.SeparateChaining, scenarioConf(1, 0))
	if err != nil {
		return
	}
	defer hashMap.Free()

	records, err := fillScenario(hashMap)
	if err != nil {
		return
	}
	err = checkRecords(hashMap, records)
	if err != nil {
		return
	}

	stat, err := hashMap.Stat()
	if err != nil {
		return
	}
	if stat.CollidingBuckets != 1 || stat.MaxCrowding != 3 {
		err = fmt.Errorf("expected one chain of three, got %d chained and longest %d", stat.CollidingBuckets, stat.MaxCrowding)
		return
	}

	report, err = hashMap.StatReport()

	return
}

func scenarioD() (report string, err error) {
	hashMap, _, err := memhashmap.NewHashMap(crt.Dense, scenarioConf(128, 1))
	if err != nil {
		return
	}

	records, err := fillScenario(hashMap)
	if err != nil {
		hashMap.Free()
		return
	}

	resized, err := hashMap.Resize(scenarioConf(1, 3))
	if err != nil {
		return
	}
	defer resized.Free()

	err = checkRecords(resized, records)
	if err != nil {
		return
	}

	report, err = resized.StatReport()

	return
}

// loadResult - Outcome of a random load run on one engine
type loadResult struct {
	engine  string
	records int
	elapsed time.Duration
	report  string
}

// loadRun - Fills a fresh map with random records, verifies them against a reference map, deletes half of
// them and verifies again
func loadRun(ctx context.Context, crtType int, conf memhashmap.Conf, records int, seed int64) (result loadResult, err error) {
	result = loadResult{engine: crt.Name(crtType), records: records}
	start := time.Now()

	hashMap, _, err := memhashmap.NewHashMap(crtType, conf)
	if err != nil {
		return
	}
	defer hashMap.Free()

	rnd := rand.New(rand.NewSource(seed))
	reference := make(map[string][]byte, records)
	keys := make([][]byte, 0, records)

	for i := 0; i < records; i++ {
		if i%1024 == 0 && ctx.Err() != nil {
			err = ctx.Err()
			return
		}
		key := make([]byte, conf.KeyLength)
		value := make([]byte, conf.ValueLength)
		_, _ = rnd.Read(key)
		_, _ = rnd.Read(value)

		err = hashMap.Set(key, value)
		if err != nil {
			err = fmt.Errorf("set record %d: %w", i, err)
			return
		}
		if _, ok := reference[string(key)]; !ok {
			keys = append(keys, key)
		}
		reference[string(key)] = value
	}

	err = checkRecords(hashMap, reference)
	if err != nil {
		return
	}

	for i := 0; i < len(keys); i += 2 {
		_, err = hashMap.Delete(keys[i])
		if err != nil {
			err = fmt.Errorf("delete record %d: %w", i, err)
			return
		}
		delete(reference, string(keys[i]))
	}

	err = checkRecords(hashMap, reference)
	if err != nil {
		return
	}
	for i := 0; i < len(keys); i += 2 {
		_, err = hashMap.Get(keys[i])
		if !errors.Is(err, crt.NoRecordFound{}) {
			err = fmt.Errorf("deleted record %d still reachable: %v", i, err)
			return
		}
	}
	err = nil

	result.report, err = hashMap.StatReport()
	result.elapsed = time.Since(start)

	return
}

// runLoad - Runs loadRun for every implemented engine concurrently, each on a map of its own
func runLoad(ctx context.Context, conf memhashmap.Conf, records int) (results []loadResult, err error) {
	engines := []int{crt.Dense, crt.SeparateChaining, crt.LinearProbing}
	results = make([]loadResult, len(engines))

	g, ctx := errgroup.WithContext(ctx)
	for i, crtType := range engines {
		i, crtType := i, crtType
		c := conf
		if crtType == crt.LinearProbing && c.Buckets < uint64(2*records) {
			c.Buckets = uint64(2 * records)
		}
		g.Go(func() error {
			r, err := loadRun(ctx, crtType, c, records, int64(i+1))
			if err != nil {
				return fmt.Errorf("%s: %w", crt.Name(crtType), err)
			}
			results[i] = r
			return nil
		})
	}

	err = g.Wait()

	return
}

// runBench - The bench command, runs the fixed scenarios and a random load on every engine
func runBench(ctx context.Context, args []string, out, errOut io.Writer) int {
	flagSet := flag.NewFlagSet("bench", flag.ContinueOnError)
	flagSet.SetOutput(errOut)
	mapFlags(flagSet)
	records := flagSet.Int("records", 10000, "Random records per engine in the load run")
	reportPath := flagSet.String("report", "", "Also write the report to this file")

	err := flagSet.Parse(args)
	if errors.Is(err, flag.ErrHelp) {
		return 0
	}
	if err != nil {
		fmt.Fprintln(errOut, "error:", err)
		return 2
	}
	setupLogging(errOut, flagSet)

	cfg, err := configFromFlags(flagSet)
	if err != nil {
		fmt.Fprintln(errOut, "error:", err)
		return 1
	}
	_, conf, err := cfg.Resolve()
	if err != nil {
		fmt.Fprintln(errOut, "error:", err)
		return 1
	}
	if *records <= 0 {
		fmt.Fprintln(errOut, "error: --records must be positive")
		return 1
	}

	var sb strings.Builder
	failed := false

	for _, s := range scenarios() {
		report, err := s.run()
		if err != nil {
			failed = true
			fmt.Fprintf(&sb, "scenario %s: FAIL: %s\n\n", s.name, err)
			continue
		}
		fmt.Fprintf(&sb, "scenario %s: ok\n%s\n", s.name, report)
	}

	results, err := runLoad(ctx, conf, *records)
	if err != nil {
		failed = true
		fmt.Fprintf(&sb, "load: FAIL: %s\n", err)
	} else {
		for _, r := range results {
			fmt.Fprintf(&sb, "load %s: %d records in %s\n%s\n", r.engine, r.records, r.elapsed.Round(time.Microsecond), r.report)
		}
	}

	text := sb.String()
	fmt.Fprint(out, text)

	if *reportPath != "" {
		err = atomic.WriteFile(*reportPath, strings.NewReader(text))
		if err != nil {
			fmt.Fprintln(errOut, "error: writing report:", err)
			return 1
		}
	}

	if failed {
		return 1
	}

	return 0
}
