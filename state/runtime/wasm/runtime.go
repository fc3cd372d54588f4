package wasm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/armon/go-metrics"
	"github.com/hashicorp/go-hclog"
	lru "github.com/hashicorp/golang-lru"
	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"

	"github.com/0xPolygon/wasm-vm/chain"
	"github.com/0xPolygon/wasm-vm/helper/keccak"
	"github.com/0xPolygon/wasm-vm/state/runtime"
	"github.com/0xPolygon/wasm-vm/state/runtime/gas"
	"github.com/0xPolygon/wasm-vm/state/runtime/vmhooks"
	"github.com/0xPolygon/wasm-vm/types"
)

var _ runtime.Runtime = &WASM{}

// WASM runs metered wasm contracts on wazero
type WASM struct {
	logger   hclog.Logger
	schedule *gas.Schedule
	params   *chain.Params

	ctx     context.Context
	runtime wazero.Runtime
	hooks   map[string]*hookFunction

	lock  sync.Mutex
	cache *lru.Cache
}

// NewWASM creates the wasm runtime and registers the host functions
func NewWASM(logger hclog.Logger, schedule *gas.Schedule, params *chain.Params) (*WASM, error) {
	ctx := context.Background()

	config := wazero.NewRuntimeConfigInterpreter().
		WithCoreFeatures(api.CoreFeaturesV2).
		WithMemoryLimitPages(params.MaxMemoryPages)

	w := &WASM{
		logger:   logger.Named("wasm"),
		schedule: schedule,
		params:   params,
		ctx:      ctx,
		runtime:  wazero.NewRuntimeWithConfig(ctx, config),
		hooks:    map[string]*hookFunction{},
	}

	cache, err := lru.NewWithEvict(params.ModuleCacheSize, func(_, value interface{}) {
		if cm, ok := value.(wazero.CompiledModule); ok {
			_ = cm.Close(w.ctx)
		}
	})
	if err != nil {
		return nil, err
	}

	w.cache = cache

	builder := w.runtime.NewHostModuleBuilder(HostModuleName)

	for _, hf := range hookFunctions() {
		w.hooks[hf.name] = hf

		builder.NewFunctionBuilder().
			WithGoModuleFunction(hf.goFunction(), hf.params, hf.results).
			WithName(hf.name).
			Export(hf.name)
	}

	if _, err := builder.Instantiate(ctx); err != nil {
		return nil, fmt.Errorf("failed to instantiate host module: %w", err)
	}

	w.logger.Debug("host module ready", "functions", len(w.hooks), "ei", params.EIVersion)

	return w, nil
}

// Close releases the compiled modules and the wazero runtime
func (w *WASM) Close() error {
	w.lock.Lock()
	defer w.lock.Unlock()

	w.cache.Purge()

	return w.runtime.Close(w.ctx)
}

// CanRun implements the runtime interface
func (w *WASM) CanRun(code []byte) bool {
	return isWASM(code)
}

// Name implements the runtime interface
func (w *WASM) Name() string {
	return "wasm"
}

// Run implements the runtime interface
func (w *WASM) Run(c *runtime.Contract, host runtime.Host) *runtime.ExecutionResult {
	hooks, err := vmhooks.New(host, c, w.schedule, w.params)
	if err != nil {
		return runtime.NewFailedResult(c.Gas, err)
	}

	return hooks.Result(w.run(hooks, c))
}

func (w *WASM) run(hooks *vmhooks.VMHooks, c *runtime.Contract) error {
	meter := hooks.Meter()

	if err := meter.UseGas(w.schedule.BaseOperationCost.CompilePerByte * uint64(len(c.Code))); err != nil {
		return err
	}

	compiled, err := w.compile(c.Code)
	if err != nil {
		return err
	}

	fn, ok := compiled.ExportedFunctions()[c.Function]
	if !ok {
		return runtime.ErrFunctionNotFound
	}

	if len(fn.ParamTypes()) != 0 || len(fn.ResultTypes()) != 0 {
		return runtime.ErrFunctionWrongSignature
	}

	f := &frame{hooks: hooks}
	ctx := context.WithValue(w.ctx, frameKey{}, f)

	// instances are anonymous so that nested frames may run the same code
	mod, err := w.runtime.InstantiateModule(ctx, compiled, wazero.NewModuleConfig().WithName("").WithStartFunctions())
	if err != nil {
		return invalidContract(err)
	}

	defer mod.Close(ctx)

	if mem := mod.Memory(); mem != nil {
		hooks.SetMemory(mem)
	}

	global, ok := mod.ExportedGlobal(GasGlobalName).(api.MutableGlobal)
	if !ok {
		return invalidContract(errors.New("missing gas global"))
	}

	global.Set(meter.GasLeft())

	_, callErr := mod.ExportedFunction(c.Function).Call(ctx)

	left := int64(global.Get())

	if f.exitErr != nil {
		return f.exitErr
	}

	if left < 0 {
		meter.SetGasLeft(0)

		return runtime.ErrOutOfGas
	}

	meter.SetGasLeft(uint64(left))

	if callErr != nil {
		return runtime.NewExecutionFailed(trapMessage(callErr))
	}

	return nil
}

// compile instruments, compiles and validates the code, reusing the cached module
// of identical code
func (w *WASM) compile(code []byte) (wazero.CompiledModule, error) {
	key := types.BytesToHash(keccak.Keccak256(nil, code))

	w.lock.Lock()
	defer w.lock.Unlock()

	if v, ok := w.cache.Get(key); ok {
		metrics.IncrCounter([]string{"vm", "wasm", "cache_hit"}, 1)

		return v.(wazero.CompiledModule), nil //nolint:forcetypeassert
	}

	metrics.IncrCounter([]string{"vm", "wasm", "cache_miss"}, 1)

	compiled, err := w.compileUncached(code)
	if err != nil {
		metrics.IncrCounter([]string{"vm", "wasm", "invalid_module"}, 1)
		w.logger.Debug("rejected module", "hash", key, "err", err)

		return nil, invalidContract(err)
	}

	w.cache.Add(key, compiled)

	return compiled, nil
}

func (w *WASM) compileUncached(code []byte) (wazero.CompiledModule, error) {
	instrumented, err := Instrument(code, &w.schedule.WASMOpcodeCost)
	if err != nil {
		return nil, err
	}

	compiled, err := w.runtime.CompileModule(w.ctx, instrumented)
	if err != nil {
		return nil, err
	}

	if err := w.validateImports(compiled); err != nil {
		_ = compiled.Close(w.ctx)

		return nil, err
	}

	return compiled, nil
}

// validateImports accepts only functions of the host module known to the
// configured interface version, with their exact signature
func (w *WASM) validateImports(compiled wazero.CompiledModule) error {
	if len(compiled.ImportedMemories()) > 0 {
		return errors.New("memory imports are not allowed")
	}

	for _, def := range compiled.ImportedFunctions() {
		module, name, _ := def.Import()
		if module != HostModuleName {
			return fmt.Errorf("unknown import module %q", module)
		}

		hf, ok := w.hooks[name]
		if !ok || !hf.availableIn(w.params.EIVersion) {
			return fmt.Errorf("unknown import %q", name)
		}

		if !sameTypes(hf.params, def.ParamTypes()) || !sameTypes(hf.results, def.ResultTypes()) {
			return fmt.Errorf("wrong signature for import %q", name)
		}
	}

	return nil
}

func invalidContract(err error) error {
	return runtime.NewError(runtime.ContractInvalid, runtime.ErrContractInvalid.Message+": "+err.Error())
}

// trapMessage keeps the first line of a wazero error, without the stack trace
func trapMessage(err error) string {
	msg := err.Error()
	if i := strings.IndexByte(msg, '\n'); i >= 0 {
		msg = msg[:i]
	}

	return strings.TrimPrefix(msg, "wasm error: ")
}

type frameKey struct{}

// frame is the state shared by the host functions of one instance
type frame struct {
	hooks   *vmhooks.VMHooks
	exitErr error
}

// exitSignal unwinds the instance once a hook failed
type exitSignal struct{}

func frameFrom(ctx context.Context) *frame {
	return ctx.Value(frameKey{}).(*frame) //nolint:forcetypeassert
}

// syncIn lowers the meter to the gas left in the global of the instance
func (f *frame) syncIn(mod api.Module) {
	global, ok := mod.ExportedGlobal(GasGlobalName).(api.MutableGlobal)
	if !ok {
		return
	}

	left := int64(global.Get())
	if left < 0 {
		left = 0
	}

	f.hooks.Meter().SetGasLeft(uint64(left))
}

// syncOut copies the meter, which hooks charge and refund, back into the global
func (f *frame) syncOut(mod api.Module) {
	if global, ok := mod.ExportedGlobal(GasGlobalName).(api.MutableGlobal); ok {
		global.Set(f.hooks.Meter().GasLeft())
	}
}

func (f *frame) exit(err error) {
	f.exitErr = err

	panic(exitSignal{})
}
