package run

import (
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/0xPolygon/wasm-vm/command"
)

const (
	configFlag         = "config"
	dataDirFlag        = "data-dir"
	storageFlag        = "storage"
	gasScheduleFlag    = "gas-schedule"
	prometheusFlag     = "prometheus"
	workersFlag        = "workers"
	eiVersionFlag      = "ei-version"
	ghostAccountsFlag  = "ghost-accounts"
	maxCallDepthFlag   = "max-call-depth"
	moduleCacheFlag    = "module-cache-size"
	numShardsFlag      = "num-shards"
	issueCostFlag      = "issue-cost"
	bigFloatPrecFlag   = "big-float-precision"
	maxMemoryPagesFlag = "max-memory-pages"
)

var (
	params = &runParams{
		rawConfig: DefaultConfig(),
	}
)

type runParams struct {
	rawConfig     *Config
	configPath    string
	ghostAccounts bool

	config *Config
	paths  []string
}

// initRawParams loads the config file, if any, and applies every flag the user set on top of it
func (p *runParams) initRawParams(cmd *cobra.Command, args []string) error {
	config := DefaultConfig()

	if p.configPath != "" {
		fileConfig, err := ReadConfigFile(p.configPath)
		if err != nil {
			return err
		}

		config = fileConfig
	}

	cmd.Flags().Visit(func(f *pflag.Flag) {
		p.overrideFlag(config, f)
	})

	p.config = config
	p.paths = args

	return config.Validate()
}

// overrideFlag copies the value of a set flag into config. The log flags are
// persistent flags of the root command.
func (p *runParams) overrideFlag(config *Config, f *pflag.Flag) {
	raw := p.rawConfig

	switch f.Name {
	case command.LogLevelFlag:
		config.LogLevel = f.Value.String()
	case command.JSONLogFlag:
		config.JSONLogFormat = f.Value.String() == "true"
	case dataDirFlag:
		config.DataDir = raw.DataDir
	case storageFlag:
		config.Storage = raw.Storage
	case gasScheduleFlag:
		config.GasSchedule = raw.GasSchedule
	case prometheusFlag:
		config.PrometheusAddr = raw.PrometheusAddr
	case workersFlag:
		config.Workers = raw.Workers
	case eiVersionFlag:
		config.VM.EIVersion = raw.VM.EIVersion
	case issueCostFlag:
		config.VM.IssueCost = raw.VM.IssueCost
	case ghostAccountsFlag:
		ghostAccounts := p.ghostAccounts
		config.VM.InsertGhostAccounts = &ghostAccounts
	case maxCallDepthFlag:
		config.VM.MaxCallDepth = raw.VM.MaxCallDepth
	case maxMemoryPagesFlag:
		config.VM.MaxMemoryPages = raw.VM.MaxMemoryPages
	case moduleCacheFlag:
		config.VM.ModuleCacheSize = raw.VM.ModuleCacheSize
	case bigFloatPrecFlag:
		config.VM.BigFloatPrecision = raw.VM.BigFloatPrecision
	case numShardsFlag:
		config.VM.NumShards = raw.VM.NumShards
	}
}
