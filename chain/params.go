package chain

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/hashicorp/go-multierror"
)

const (
	// EIVersion is the version of the host function surface exposed to contracts
	EIVersion = "1.3"

	DefaultMaxCallDepth      = 20
	DefaultMaxMemoryPages    = 20
	DefaultModuleCacheSize   = 64
	DefaultBigFloatPrecision = 53
	DefaultNumShards         = 1
)

var (
	// DefaultIssueCost is the EGLD fee paid to the system contract for issuing a token (0.05 EGLD)
	DefaultIssueCost = new(big.Int).Mul(big.NewInt(5), new(big.Int).Exp(big.NewInt(10), big.NewInt(16), nil))

	ErrUnsupportedEIVersion = errors.New("unsupported environment interface version")
)

// SupportedEIVersions lists the environment interface versions a module may declare
var SupportedEIVersions = map[string]struct{}{
	"1.2":     {},
	EIVersion: {},
}

// Params are the protocol parameters of the vm
type Params struct {
	// EIVersion is the environment interface version modules are validated against
	EIVersion string `json:"ei_version" yaml:"ei_version"`

	// IssueCost is the fee, in EGLD, charged by the token issuing builtin functions
	IssueCost *big.Int `json:"-" yaml:"-"`

	// InsertGhostAccounts creates missing destinations of async calls instead of failing them
	InsertGhostAccounts bool `json:"insert_ghost_accounts" yaml:"insert_ghost_accounts"`

	MaxCallDepth      int    `json:"max_call_depth" yaml:"max_call_depth"`
	MaxMemoryPages    uint32 `json:"max_memory_pages" yaml:"max_memory_pages"`
	ModuleCacheSize   int    `json:"module_cache_size" yaml:"module_cache_size"`
	BigFloatPrecision uint   `json:"big_float_precision" yaml:"big_float_precision"`
	NumShards         uint32 `json:"num_shards" yaml:"num_shards"`
}

// DefaultParams returns the default protocol parameters
func DefaultParams() *Params {
	return &Params{
		EIVersion:           EIVersion,
		IssueCost:           new(big.Int).Set(DefaultIssueCost),
		InsertGhostAccounts: true,
		MaxCallDepth:        DefaultMaxCallDepth,
		MaxMemoryPages:      DefaultMaxMemoryPages,
		ModuleCacheSize:     DefaultModuleCacheSize,
		BigFloatPrecision:   DefaultBigFloatPrecision,
		NumShards:           DefaultNumShards,
	}
}

// Validate checks every parameter and reports all the problems at once
func (p *Params) Validate() error {
	var result *multierror.Error

	if _, ok := SupportedEIVersions[p.EIVersion]; !ok {
		result = multierror.Append(result, fmt.Errorf("%w: %q", ErrUnsupportedEIVersion, p.EIVersion))
	}

	if p.IssueCost == nil || p.IssueCost.Sign() < 0 {
		result = multierror.Append(result, errors.New("issue cost must be a non negative amount"))
	}

	if p.MaxCallDepth <= 0 {
		result = multierror.Append(result, errors.New("max call depth must be positive"))
	}

	if p.MaxMemoryPages == 0 || p.MaxMemoryPages > 65536 {
		result = multierror.Append(result, errors.New("max memory pages must be within (0, 65536]"))
	}

	if p.ModuleCacheSize <= 0 {
		result = multierror.Append(result, errors.New("module cache size must be positive"))
	}

	if p.BigFloatPrecision == 0 || p.BigFloatPrecision > 4096 {
		result = multierror.Append(result, errors.New("big float precision must be within (0, 4096] bits"))
	}

	if p.NumShards == 0 {
		result = multierror.Append(result, errors.New("number of shards must be positive"))
	}

	return result.ErrorOrNil()
}
