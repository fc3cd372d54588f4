package run

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/hashicorp/go-hclog"
	"github.com/spf13/cobra"

	"github.com/0xPolygon/wasm-vm/command"
	"github.com/0xPolygon/wasm-vm/helper/common"
	"github.com/0xPolygon/wasm-vm/scenario"
	"github.com/0xPolygon/wasm-vm/state/runtime/gas"
	"github.com/0xPolygon/wasm-vm/state/runtime/native"
	"github.com/0xPolygon/wasm-vm/state/runtime/native/contracts"
	"github.com/0xPolygon/wasm-vm/state/runtime/wasm"
	"github.com/0xPolygon/wasm-vm/storage"
	"github.com/0xPolygon/wasm-vm/storage/boltdb"
	"github.com/0xPolygon/wasm-vm/storage/leveldb"
	"github.com/0xPolygon/wasm-vm/storage/memory"
)

var errScenariosFailed = errors.New("scenarios failed")

func GetCommand() *cobra.Command {
	runCmd := &cobra.Command{
		Use:          "run [files or directories]",
		Short:        "Runs scenario files against the vm and checks their expectations",
		Args:         cobra.MinimumNArgs(1),
		PreRunE:      runPreRun,
		RunE:         runCommand,
		SilenceUsage: true,
	}

	setFlags(runCmd)

	return runCmd
}

func setFlags(cmd *cobra.Command) {
	defaultConfig := DefaultConfig()

	cmd.Flags().StringVar(
		&params.configPath,
		configFlag,
		"",
		"the path to the run config. Supports .json, .hcl and .yaml",
	)

	cmd.Flags().StringVar(
		&params.rawConfig.DataDir,
		dataDirFlag,
		defaultConfig.DataDir,
		"the directory holding the state of persistent storage backends",
	)

	cmd.Flags().StringVar(
		&params.rawConfig.Storage,
		storageFlag,
		defaultConfig.Storage,
		fmt.Sprintf("the state storage backend (%s, %s or %s)", StorageMemory, StorageLevelDB, StorageBoltDB),
	)

	cmd.Flags().StringVar(
		&params.rawConfig.GasSchedule,
		gasScheduleFlag,
		defaultConfig.GasSchedule,
		"the gas schedule file. The built-in schedule is used when empty",
	)

	cmd.Flags().StringVar(
		&params.rawConfig.PrometheusAddr,
		prometheusFlag,
		"",
		"the address and port for the prometheus instrumentation service (address:port). "+
			"If only port is defined (:port) it will bind to 0.0.0.0:port",
	)

	cmd.Flags().IntVar(
		&params.rawConfig.Workers,
		workersFlag,
		defaultConfig.Workers,
		"the number of scenario files run at the same time. 0 means no limit",
	)

	cmd.Flags().StringVar(
		&params.rawConfig.VM.EIVersion,
		eiVersionFlag,
		defaultConfig.VM.EIVersion,
		"the executor interface version exposed to contracts",
	)

	cmd.Flags().StringVar(
		&params.rawConfig.VM.IssueCost,
		issueCostFlag,
		defaultConfig.VM.IssueCost,
		"the EGLD cost of issuing a token",
	)

	cmd.Flags().BoolVar(
		&params.ghostAccounts,
		ghostAccountsFlag,
		*defaultConfig.VM.InsertGhostAccounts,
		"create missing cross-shard destinations instead of failing",
	)

	cmd.Flags().IntVar(
		&params.rawConfig.VM.MaxCallDepth,
		maxCallDepthFlag,
		defaultConfig.VM.MaxCallDepth,
		"the maximum depth of nested contract calls",
	)

	cmd.Flags().Uint32Var(
		&params.rawConfig.VM.MaxMemoryPages,
		maxMemoryPagesFlag,
		defaultConfig.VM.MaxMemoryPages,
		"the maximum number of 64KiB memory pages of an instance",
	)

	cmd.Flags().IntVar(
		&params.rawConfig.VM.ModuleCacheSize,
		moduleCacheFlag,
		defaultConfig.VM.ModuleCacheSize,
		"the number of compiled modules kept in memory",
	)

	cmd.Flags().UintVar(
		&params.rawConfig.VM.BigFloatPrecision,
		bigFloatPrecFlag,
		defaultConfig.VM.BigFloatPrecision,
		"the mantissa precision of managed big floats, in bits",
	)

	cmd.Flags().Uint32Var(
		&params.rawConfig.VM.NumShards,
		numShardsFlag,
		defaultConfig.VM.NumShards,
		"the number of shards addresses are split into",
	)
}

func runPreRun(cmd *cobra.Command, args []string) error {
	return params.initRawParams(cmd, args)
}

func runCommand(cmd *cobra.Command, _ []string) error {
	outputter := command.InitializeOutputter(cmd)
	defer outputter.WriteOutput()

	// errors are printed by the root command
	result, err := run(cmd, params.config, params.paths)
	if result == nil {
		return err
	}

	outputter.SetCommandResult(result)

	if result.Failed > 0 {
		return fmt.Errorf("%w: %d of %d", errScenariosFailed, result.Failed, len(result.Scenarios))
	}

	return nil
}

func newLogger(config *Config) hclog.Logger {
	return hclog.New(&hclog.LoggerOptions{
		Name:       "wasm-vm",
		Level:      hclog.LevelFromString(config.LogLevel),
		JSONFormat: config.JSONLogFormat,
		Output:     os.Stderr,
	})
}

func run(cmd *cobra.Command, config *Config, paths []string) (*RunResult, error) {
	logger := newLogger(config)

	stopTelemetry, err := setupTelemetry(logger, config.PrometheusAddr)
	if err != nil {
		return nil, fmt.Errorf("could not setup telemetry: %w", err)
	}
	defer stopTelemetry()

	chainParams, err := config.Params()
	if err != nil {
		return nil, err
	}

	schedule := gas.DefaultSchedule()
	if config.GasSchedule != "" {
		if schedule, err = gas.LoadSchedule(config.GasSchedule); err != nil {
			return nil, fmt.Errorf("could not load gas schedule: %w", err)
		}
	}

	nativeRuntime := native.NewNative(logger, schedule, chainParams)
	contracts.Register(nativeRuntime)

	wasmRuntime, err := wasm.NewWASM(logger, schedule, chainParams)
	if err != nil {
		return nil, err
	}

	defer func() {
		if err := wasmRuntime.Close(); err != nil {
			logger.Error("failed to close the wasm runtime", "err", err)
		}
	}()

	runner := scenario.NewRunner(logger, chainParams, schedule, nativeRuntime, wasmRuntime)
	runner.SetStorage(storageFactory(logger, config))

	files, err := scenario.Find(paths...)
	if err != nil {
		return nil, err
	}

	logger.Info("running scenarios", "files", len(files), "storage", config.Storage)

	// failed scenarios are reported by the result
	reports, err := runner.RunFiles(cmd.Context(), config.Workers, files...)
	if reports == nil {
		return nil, err
	}

	return newRunResult(reports), nil
}

// storageFactory opens a fresh store per scenario. Persistent stores live in their
// own directory below the data dir.
func storageFactory(logger hclog.Logger, config *Config) scenario.StorageFactory {
	return func(name string) (storage.KV, error) {
		var open func(string, hclog.Logger) (storage.KV, error)

		switch config.Storage {
		case StorageLevelDB:
			open = leveldb.NewLevelDBStorage
		case StorageBoltDB:
			open = boltdb.NewBoltDBStorage
		default:
			return memory.NewMemoryStorage(), nil
		}

		if err := common.SetupDataDir(config.DataDir); err != nil {
			return nil, err
		}

		dir, err := os.MkdirTemp(config.DataDir, filepath.Base(name)+"-")
		if err != nil {
			return nil, err
		}

		if config.Storage == StorageBoltDB {
			dir = filepath.Join(dir, "state.db")
		}

		return open(dir, logger)
	}
}
