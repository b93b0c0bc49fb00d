package main

import (
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/peterh/liner"
	flag "github.com/spf13/pflag"

	"github.com/gostonefire/memhashmap"
	"github.com/gostonefire/memhashmap/crt"
	"github.com/gostonefire/memhashmap/digest"
)

var replCommands = []string{"put", "get", "pop", "del", "has", "stats", "info", "resize", "clone", "swap", "help", "quit"}

// REPL - Interactive command loop over one hash map, plus an optional clone to compare against
type REPL struct {
	hashMap   *memhashmap.HashMap
	clone     *memhashmap.HashMap
	conf      memhashmap.Conf
	cloneConf memhashmap.Conf
	out       io.Writer
	liner     *liner.State
}

// historyFile - Returns the path to the history file
func historyFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}

	return filepath.Join(home, ".mhm_history")
}

// Run - Starts the REPL loop
func (r *REPL) Run() error {
	r.liner = liner.NewLiner()
	defer r.liner.Close()

	r.liner.SetCtrlCAborts(true)
	r.liner.SetCompleter(r.completer)

	if f, err := os.Open(historyFile()); err == nil {
		_, _ = r.liner.ReadHistory(f)
		_ = f.Close()
	}
	defer r.saveHistory()

	info := r.hashMap.Info()
	fmt.Fprintf(r.out, "mhm - %s hash map (key_length=%d, value_length=%d, buckets=%d)\n",
		crt.Name(info.CollisionResolutionTechnique), info.KeyLength, info.ValueLength, info.NumberOfBuckets)
	fmt.Fprintln(r.out, "Type 'help' for available commands.")

	for {
		line, err := r.liner.Prompt("mhm> ")
		if err != nil {
			if errors.Is(err, liner.ErrPromptAborted) || errors.Is(err, io.EOF) {
				fmt.Fprintln(r.out, "\nBye!")
				return nil
			}
			return fmt.Errorf("reading input: %w", err)
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		r.liner.AppendHistory(line)

		if !r.Exec(line) {
			fmt.Fprintln(r.out, "Bye!")
			return nil
		}
	}
}

// Exec - Runs one command line, returns false when the loop should end
func (r *REPL) Exec(line string) bool {
	parts := strings.Fields(line)
	if len(parts) == 0 {
		return true
	}
	cmd := strings.ToLower(parts[0])
	args := parts[1:]

	var err error

	switch cmd {
	case "quit", "exit", "q":
		return false
	case "help", "?":
		r.printHelp()
	case "put", "set":
		err = r.cmdPut(args)
	case "get":
		err = r.cmdGet(args)
	case "pop":
		err = r.cmdPop(args)
	case "del", "delete":
		err = r.cmdDelete(args)
	case "has", "exists":
		err = r.cmdHas(args)
	case "stats":
		err = r.cmdStats()
	case "info":
		r.cmdInfo()
	case "resize":
		err = r.cmdResize(args)
	case "clone":
		err = r.cmdClone()
	case "swap":
		err = r.cmdSwap()
	default:
		fmt.Fprintf(r.out, "Unknown command: %s (type 'help' for commands)\n", cmd)
	}

	if err != nil {
		fmt.Fprintln(r.out, "error:", err)
	}

	return true
}

func (r *REPL) printHelp() {
	fmt.Fprintln(r.out, `Commands:
  put <key> <value>      store a record, keys and values are padded or cut to the fixed lengths
  get <key>              fetch a record
  pop <key>              fetch and remove a record
  del <key>              remove a record
  has <key>              tell whether a record exists
  stats                  print statistics
  info                   print hash map parameters
  resize <buckets> [tolerance] [safe]
                         rebuild with a new bucket count and a fresh master key
  clone                  keep a copy of the current map
  swap                   exchange current map and clone
  quit                   leave

Keys and values prefixed with 0x are read as hex.`)
}

// completer - Provides tab completion for commands
func (r *REPL) completer(line string) (c []string) {
	for _, cmd := range replCommands {
		if strings.HasPrefix(cmd, strings.ToLower(line)) {
			c = append(c, cmd)
		}
	}

	return
}

func (r *REPL) saveHistory() {
	if path := historyFile(); path != "" {
		if f, err := os.Create(path); err == nil {
			_, _ = r.liner.WriteHistory(f)
			_ = f.Close()
		}
	}
}

// fixed - Parses an argument as text or 0x prefixed hex and pads or cuts it to length bytes
func fixed(arg string, length int) (b []byte, err error) {
	raw := []byte(arg)
	if strings.HasPrefix(arg, "0x") {
		raw, err = hex.DecodeString(arg[2:])
		if err != nil {
			return
		}
	}

	b = make([]byte, length)
	_ = copy(b, raw)

	return
}

// printable - Formats bytes as text when they are printable, else as hex
func printable(b []byte) string {
	trimmed := strings.TrimRight(string(b), "\x00")
	if strconv.CanBackquote(trimmed) {
		return trimmed
	}

	return "0x" + hex.EncodeToString(b)
}

func (r *REPL) key(args []string) (key []byte, err error) {
	if len(args) < 1 {
		err = fmt.Errorf("missing key")
		return
	}

	return fixed(args[0], r.conf.KeyLength)
}

func (r *REPL) cmdPut(args []string) (err error) {
	if len(args) < 2 {
		return fmt.Errorf("usage: put <key> <value>")
	}
	key, err := r.key(args)
	if err != nil {
		return
	}
	value, err := fixed(strings.Join(args[1:], " "), r.conf.ValueLength)
	if err != nil {
		return
	}

	err = r.hashMap.Set(key, value)
	if err == nil {
		fmt.Fprintln(r.out, "OK")
	}

	return
}

func (r *REPL) cmdGet(args []string) (err error) {
	key, err := r.key(args)
	if err != nil {
		return
	}

	value, err := r.hashMap.Get(key)
	if errors.Is(err, crt.NoRecordFound{}) {
		fmt.Fprintln(r.out, "(not found)")
		return nil
	}
	if err != nil {
		return
	}
	fmt.Fprintln(r.out, printable(value))

	return
}

func (r *REPL) cmdPop(args []string) (err error) {
	key, err := r.key(args)
	if err != nil {
		return
	}

	value, err := r.hashMap.Pop(key)
	if errors.Is(err, crt.NoRecordFound{}) {
		fmt.Fprintln(r.out, "(not found)")
		return nil
	}
	if err != nil {
		return
	}
	fmt.Fprintln(r.out, printable(value))

	return
}

func (r *REPL) cmdDelete(args []string) (err error) {
	key, err := r.key(args)
	if err != nil {
		return
	}

	found, err := r.hashMap.Delete(key)
	if err != nil {
		return
	}
	if found {
		fmt.Fprintln(r.out, "Deleted")
	} else {
		fmt.Fprintln(r.out, "(not found)")
	}

	return
}

func (r *REPL) cmdHas(args []string) (err error) {
	key, err := r.key(args)
	if err != nil {
		return
	}

	exists, err := r.hashMap.Exists(key)
	if err != nil {
		return
	}
	fmt.Fprintln(r.out, exists)

	return
}

func (r *REPL) cmdStats() (err error) {
	report, err := r.hashMap.StatReport()
	if err != nil {
		return
	}
	fmt.Fprint(r.out, report)

	return
}

func (r *REPL) cmdInfo() {
	info := r.hashMap.Info()
	fmt.Fprintf(r.out, "engine:        %s\n", crt.Name(info.CollisionResolutionTechnique))
	fmt.Fprintf(r.out, "key length:    %d\n", info.KeyLength)
	fmt.Fprintf(r.out, "value length:  %d\n", info.ValueLength)
	fmt.Fprintf(r.out, "buckets:       %d\n", info.NumberOfBuckets)
	if info.CollisionResolutionTechnique == crt.Dense {
		fmt.Fprintf(r.out, "tolerance:     %d\n", info.Tolerance)
		fmt.Fprintf(r.out, "growth:        +%d up to %d\n", info.Growth.Step, info.Growth.Limit)
	}
	fmt.Fprintf(r.out, "internal hash: %t\n", info.InternalAlgorithm)
	fmt.Fprintf(r.out, "has clone:     %t\n", r.clone != nil)
}

func (r *REPL) cmdResize(args []string) (err error) {
	if len(args) < 1 {
		return fmt.Errorf("usage: resize <buckets> [tolerance] [safe]")
	}
	buckets, err := strconv.ParseUint(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("buckets: %w", err)
	}

	conf := r.conf
	conf.Buckets = buckets
	conf.MasterKey = digest.NewKey()
	safe := false
	for _, a := range args[1:] {
		if a == "safe" {
			safe = true
			continue
		}
		var tolerance uint64
		tolerance, err = strconv.ParseUint(a, 10, 8)
		if err != nil {
			return fmt.Errorf("tolerance: %w", err)
		}
		conf.Tolerance = uint8(tolerance)
	}

	var resized *memhashmap.HashMap
	if safe {
		resized, err = r.hashMap.ResizeSafe(conf)
		if err != nil {
			return
		}
		r.hashMap.Free()
	} else {
		resized, err = r.hashMap.Resize(conf)
		if err != nil {
			if !sourceKept(err) {
				err = fmt.Errorf("%w (the map is lost, start again)", err)
			}
			return
		}
	}

	r.hashMap = resized
	r.conf = conf
	fmt.Fprintln(r.out, "OK")

	return
}

// sourceKept - Returns true if a failed destructive resize refused conf before touching the map
func sourceKept(err error) bool {
	return errors.Is(err, crt.InvalidArgument{}) || errors.Is(err, crt.DomainError{}) || errors.Is(err, crt.OutOfMemory{})
}

func (r *REPL) cmdClone() (err error) {
	clone, err := r.hashMap.Clone()
	if err != nil {
		return
	}
	if r.clone != nil {
		r.clone.Free()
	}
	r.clone = clone
	r.cloneConf = r.conf
	fmt.Fprintln(r.out, "OK")

	return
}

func (r *REPL) cmdSwap() (err error) {
	if r.clone == nil {
		return fmt.Errorf("no clone, use 'clone' first")
	}
	r.hashMap, r.clone = r.clone, r.hashMap
	r.conf, r.cloneConf = r.cloneConf, r.conf
	fmt.Fprintln(r.out, "OK")

	return
}

// runRepl - The repl command
func runRepl(args []string, out, errOut io.Writer) int {
	flagSet := flag.NewFlagSet("repl", flag.ContinueOnError)
	flagSet.SetOutput(errOut)
	mapFlags(flagSet)

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
	crtType, conf, err := cfg.Resolve()
	if err != nil {
		fmt.Fprintln(errOut, "error:", err)
		return 1
	}

	hashMap, _, err := memhashmap.NewHashMap(crtType, conf)
	if err != nil {
		fmt.Fprintln(errOut, "error:", err)
		return 1
	}

	r := &REPL{hashMap: hashMap, conf: conf, out: out}
	err = r.Run()
	if err != nil {
		fmt.Fprintln(errOut, "error:", err)
		return 1
	}

	return 0
}
