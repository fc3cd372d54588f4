package run

import (
	"errors"
	"fmt"
	"math/big"
	"os"
	"strings"

	"github.com/hashicorp/go-hclog"
	"github.com/hashicorp/go-multierror"
	"github.com/hashicorp/hcl"
	jsoniter "github.com/json-iterator/go"
	"gopkg.in/yaml.v3"

	"github.com/0xPolygon/wasm-vm/chain"
)

// storage backends
const (
	StorageMemory  = "memory"
	StorageLevelDB = "leveldb"
	StorageBoltDB  = "boltdb"
)

var (
	errUnknownStorage  = errors.New("unknown storage backend")
	errMissingDataDir  = errors.New("a data dir is required by persistent storage")
	errInvalidLogLevel = errors.New("invalid log level")
	errInvalidCost     = errors.New("issue cost is not a decimal number")
)

// Config defines the run configuration params
type Config struct {
	LogLevel       string `json:"log_level" yaml:"log_level" hcl:"log_level"`
	JSONLogFormat  bool   `json:"json_log_format" yaml:"json_log_format" hcl:"json_log_format"`
	DataDir        string `json:"data_dir" yaml:"data_dir" hcl:"data_dir"`
	Storage        string `json:"storage" yaml:"storage" hcl:"storage"`
	GasSchedule    string `json:"gas_schedule" yaml:"gas_schedule" hcl:"gas_schedule"`
	PrometheusAddr string `json:"prometheus_addr" yaml:"prometheus_addr" hcl:"prometheus_addr"`
	Workers        int    `json:"workers" yaml:"workers" hcl:"workers"`

	VM *VM `json:"vm" yaml:"vm" hcl:"vm"`
}

// VM holds the protocol parameters of the vm
type VM struct {
	EIVersion           string `json:"ei_version" yaml:"ei_version" hcl:"ei_version"`
	IssueCost           string `json:"issue_cost" yaml:"issue_cost" hcl:"issue_cost"`
	InsertGhostAccounts *bool  `json:"insert_ghost_accounts" yaml:"insert_ghost_accounts" hcl:"insert_ghost_accounts"`
	MaxCallDepth        int    `json:"max_call_depth" yaml:"max_call_depth" hcl:"max_call_depth"`
	MaxMemoryPages      uint32 `json:"max_memory_pages" yaml:"max_memory_pages" hcl:"max_memory_pages"`
	ModuleCacheSize     int    `json:"module_cache_size" yaml:"module_cache_size" hcl:"module_cache_size"`
	BigFloatPrecision   uint   `json:"big_float_precision" yaml:"big_float_precision" hcl:"big_float_precision"`
	NumShards           uint32 `json:"num_shards" yaml:"num_shards" hcl:"num_shards"`
}

// DefaultConfig returns the default run configuration
func DefaultConfig() *Config {
	p := chain.DefaultParams()
	ghostAccounts := p.InsertGhostAccounts

	return &Config{
		LogLevel: "INFO",
		Storage:  StorageMemory,
		Workers:  4,
		VM: &VM{
			EIVersion:           p.EIVersion,
			IssueCost:           p.IssueCost.String(),
			InsertGhostAccounts: &ghostAccounts,
			MaxCallDepth:        p.MaxCallDepth,
			MaxMemoryPages:      p.MaxMemoryPages,
			ModuleCacheSize:     p.ModuleCacheSize,
			BigFloatPrecision:   p.BigFloatPrecision,
			NumShards:           p.NumShards,
		},
	}
}

// ReadConfigFile reads the config file from the specified path, builds a Config object
// and returns it. Missing values keep their defaults.
//
// Supported file types: .json, .hcl, .yaml, .yml
func ReadConfigFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var unmarshalFunc func([]byte, interface{}) error

	switch {
	case strings.HasSuffix(path, ".hcl"):
		unmarshalFunc = hcl.Unmarshal
	case strings.HasSuffix(path, ".json"):
		unmarshalFunc = jsoniter.ConfigCompatibleWithStandardLibrary.Unmarshal
	case strings.HasSuffix(path, ".yaml"), strings.HasSuffix(path, ".yml"):
		unmarshalFunc = yaml.Unmarshal
	default:
		return nil, fmt.Errorf("suffix of %s is neither hcl, json, yaml nor yml", path)
	}

	config := DefaultConfig()

	if err := unmarshalFunc(data, config); err != nil {
		return nil, err
	}

	config.fillDefaults()

	return config, nil
}

// fillDefaults sets the settings a config file left empty. Some decoders replace
// nested blocks instead of merging them into the defaults.
func (c *Config) fillDefaults() {
	def := DefaultConfig()

	if c.LogLevel == "" {
		c.LogLevel = def.LogLevel
	}

	if c.Storage == "" {
		c.Storage = def.Storage
	}

	if c.VM == nil {
		c.VM = def.VM

		return
	}

	vm, defVM := c.VM, def.VM

	if vm.EIVersion == "" {
		vm.EIVersion = defVM.EIVersion
	}

	if vm.IssueCost == "" {
		vm.IssueCost = defVM.IssueCost
	}

	if vm.InsertGhostAccounts == nil {
		vm.InsertGhostAccounts = defVM.InsertGhostAccounts
	}

	if vm.MaxCallDepth == 0 {
		vm.MaxCallDepth = defVM.MaxCallDepth
	}

	if vm.MaxMemoryPages == 0 {
		vm.MaxMemoryPages = defVM.MaxMemoryPages
	}

	if vm.ModuleCacheSize == 0 {
		vm.ModuleCacheSize = defVM.ModuleCacheSize
	}

	if vm.BigFloatPrecision == 0 {
		vm.BigFloatPrecision = defVM.BigFloatPrecision
	}

	if vm.NumShards == 0 {
		vm.NumShards = defVM.NumShards
	}
}

// Validate reports every invalid setting at once
func (c *Config) Validate() error {
	var result *multierror.Error

	if hclog.LevelFromString(c.LogLevel) == hclog.NoLevel {
		result = multierror.Append(result, fmt.Errorf("%w: %q", errInvalidLogLevel, c.LogLevel))
	}

	switch c.Storage {
	case StorageMemory:
	case StorageLevelDB, StorageBoltDB:
		if c.DataDir == "" {
			result = multierror.Append(result, errMissingDataDir)
		}
	default:
		result = multierror.Append(result, fmt.Errorf("%w: %q", errUnknownStorage, c.Storage))
	}

	if c.Workers < 0 {
		result = multierror.Append(result, errors.New("workers must not be negative"))
	}

	if _, err := c.Params(); err != nil {
		result = multierror.Append(result, err)
	}

	return result.ErrorOrNil()
}

// Params builds the vm parameters
func (c *Config) Params() (*chain.Params, error) {
	cost, ok := new(big.Int).SetString(c.VM.IssueCost, 10)
	if !ok {
		return nil, fmt.Errorf("%w: %q", errInvalidCost, c.VM.IssueCost)
	}

	ghostAccounts := chain.DefaultParams().InsertGhostAccounts
	if c.VM.InsertGhostAccounts != nil {
		ghostAccounts = *c.VM.InsertGhostAccounts
	}

	p := &chain.Params{
		EIVersion:           c.VM.EIVersion,
		IssueCost:           cost,
		InsertGhostAccounts: ghostAccounts,
		MaxCallDepth:        c.VM.MaxCallDepth,
		MaxMemoryPages:      c.VM.MaxMemoryPages,
		ModuleCacheSize:     c.VM.ModuleCacheSize,
		BigFloatPrecision:   c.VM.BigFloatPrecision,
		NumShards:           c.VM.NumShards,
	}

	if err := p.Validate(); err != nil {
		return nil, err
	}

	return p, nil
}
