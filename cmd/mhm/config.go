package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	flag "github.com/spf13/pflag"
	"github.com/tailscale/hujson"

	"github.com/gostonefire/memhashmap"
	"github.com/gostonefire/memhashmap/crt"
	"github.com/gostonefire/memhashmap/digest"
	"github.com/gostonefire/memhashmap/hashfunc"
)

// Config - Hash map settings read from a JSONC file and overridden by flags
type Config struct {
	Engine      string `json:"engine"`
	KeyLength   int    `json:"key_length"`
	ValueLength int    `json:"value_length"`
	Buckets     uint64 `json:"buckets"`
	Tolerance   uint8  `json:"tolerance"`
	GrowthStep  uint8  `json:"growth_step,omitempty"`
	GrowthLimit uint8  `json:"growth_limit,omitempty"`
	MasterKey   string `json:"master_key,omitempty"`
	Hash        string `json:"hash,omitempty"`
}

// DefaultConfig - Returns the settings used when neither file nor flags say otherwise
func DefaultConfig() Config {
	return Config{
		Engine:      "dense",
		KeyLength:   8,
		ValueLength: 64,
		Buckets:     128,
		Tolerance:   1,
		Hash:        "arx",
	}
}

// parseConfig - Parses JSONC data on top of base
func parseConfig(data []byte, base Config) (cfg Config, err error) {
	standardized, err := hujson.Standardize(data)
	if err != nil {
		err = fmt.Errorf("invalid JSONC: %w", err)
		return
	}

	cfg = base
	err = json.Unmarshal(standardized, &cfg)
	if err != nil {
		err = fmt.Errorf("invalid JSON: %w", err)
		return
	}

	return
}

// loadConfig - Reads the config file at path on top of DefaultConfig, an empty path gives the defaults
func loadConfig(path string) (cfg Config, err error) {
	cfg = DefaultConfig()
	if path == "" {
		return
	}

	data, err := os.ReadFile(path)
	if err != nil {
		err = fmt.Errorf("reading config: %w", err)
		return
	}

	cfg, err = parseConfig(data, cfg)
	if err != nil {
		err = fmt.Errorf("config %s: %w", path, err)
	}

	return
}

// mapFlags - Registers the hash map flags shared by all commands
func mapFlags(flagSet *flag.FlagSet) {
	flagSet.String("config", "", "Path to JSONC config file")
	flagSet.String("engine", "", "Engine: dense, chaining or probing")
	flagSet.Int("key-length", 0, "Key length in bytes")
	flagSet.Int("value-length", 0, "Value length in bytes")
	flagSet.Uint64("buckets", 0, "Number of buckets or slots")
	flagSet.Uint8("tolerance", 0, "Initial dense bucket capacity")
	flagSet.String("master-key", "", "Master key as 32 hex characters, random if empty")
	flagSet.String("hash", "", "Keyed digest: arx, siphash or xxhash")
	flagSet.BoolP("verbose", "v", false, "Log engine debug messages")
}

// configFromFlags - Loads the config file named by --config and applies every flag given explicitly
func configFromFlags(flagSet *flag.FlagSet) (cfg Config, err error) {
	path, _ := flagSet.GetString("config")
	cfg, err = loadConfig(path)
	if err != nil {
		return
	}

	if flagSet.Changed("engine") {
		cfg.Engine, _ = flagSet.GetString("engine")
	}
	if flagSet.Changed("key-length") {
		cfg.KeyLength, _ = flagSet.GetInt("key-length")
	}
	if flagSet.Changed("value-length") {
		cfg.ValueLength, _ = flagSet.GetInt("value-length")
	}
	if flagSet.Changed("buckets") {
		cfg.Buckets, _ = flagSet.GetUint64("buckets")
	}
	if flagSet.Changed("tolerance") {
		cfg.Tolerance, _ = flagSet.GetUint8("tolerance")
	}
	if flagSet.Changed("master-key") {
		cfg.MasterKey, _ = flagSet.GetString("master-key")
	}
	if flagSet.Changed("hash") {
		cfg.Hash, _ = flagSet.GetString("hash")
	}

	return
}

// engineType - Maps an engine name to its crt identifier
func engineType(name string) (crtType int, err error) {
	switch strings.ToLower(name) {
	case "dense", "":
		crtType = crt.Dense
	case "chaining", "linked", "separatechaining":
		crtType = crt.SeparateChaining
	case "probing", "open", "linearprobing":
		crtType = crt.LinearProbing
	case "quadratic", "quadraticprobing":
		crtType = crt.QuadraticProbing
	case "cuckoo":
		crtType = crt.Cuckoo
	default:
		err = fmt.Errorf("unknown engine %q", name)
	}

	return
}

// hashAlgorithm - Maps a digest name to its implementation, nil selects the internal one
func hashAlgorithm(name string) (alg hashfunc.KeyedHash, err error) {
	switch strings.ToLower(name) {
	case "arx", "":
		alg = nil
	case "siphash":
		alg = digest.SipHash{}
	case "xxhash":
		alg = digest.XXHash{}
	default:
		err = fmt.Errorf("unknown hash %q", name)
	}

	return
}

// Resolve - Turns the settings into an engine type and a memhashmap.Conf
func (C Config) Resolve() (crtType int, conf memhashmap.Conf, err error) {
	crtType, err = engineType(C.Engine)
	if err != nil {
		return
	}

	alg, err := hashAlgorithm(C.Hash)
	if err != nil {
		return
	}

	masterKey := digest.NewKey()
	if C.MasterKey != "" {
		masterKey, err = digest.ParseKey(C.MasterKey)
		if err != nil {
			return
		}
	}

	growth := memhashmap.Growth{Step: C.GrowthStep, Limit: C.GrowthLimit}
	if growth != (memhashmap.Growth{}) {
		if growth.Step == 0 {
			growth.Step = memhashmap.DefaultGrowth.Step
		}
		if growth.Limit == 0 {
			growth.Limit = memhashmap.DefaultGrowth.Limit
		}
	}

	conf = memhashmap.Conf{
		KeyLength:     C.KeyLength,
		ValueLength:   C.ValueLength,
		Buckets:       C.Buckets,
		Tolerance:     C.Tolerance,
		MasterKey:     masterKey,
		HashAlgorithm: alg,
		Growth:        growth,
	}

	return
}
