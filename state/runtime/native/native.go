package native

import (
	"bytes"
	"errors"
	"fmt"
	"sync"

	"github.com/hashicorp/go-hclog"

	"github.com/0xPolygon/wasm-vm/chain"
	"github.com/0xPolygon/wasm-vm/state/runtime"
	"github.com/0xPolygon/wasm-vm/state/runtime/gas"
	"github.com/0xPolygon/wasm-vm/state/runtime/managed"
	"github.com/0xPolygon/wasm-vm/state/runtime/vmhooks"
)

// CodePrefix marks the code of a contract implemented in Go
const CodePrefix = "native:"

var _ runtime.Runtime = &Native{}

// Endpoint is an exported function of a native contract
type Endpoint func(ctx *Context)

// Contract maps endpoint names to their implementation
type Contract map[string]Endpoint

// Native runs contracts written in Go against the same hooks as wasm contracts
type Native struct {
	logger   hclog.Logger
	schedule *gas.Schedule
	params   *chain.Params

	lock      sync.RWMutex
	contracts map[string]Contract
}

// NewNative creates an empty native runtime
func NewNative(logger hclog.Logger, schedule *gas.Schedule, params *chain.Params) *Native {
	return &Native{
		logger:    logger.Named("native"),
		schedule:  schedule,
		params:    params,
		contracts: map[string]Contract{},
	}
}

// Code is the deployable code of the contract registered under name
func Code(name string) []byte {
	return []byte(CodePrefix + name)
}

// Register makes the contract available under Code(name)
func (n *Native) Register(name string, c Contract) {
	n.lock.Lock()
	defer n.lock.Unlock()

	n.contracts[name] = c
}

// Contracts returns the names of the registered contracts
func (n *Native) Contracts() []string {
	n.lock.RLock()
	defer n.lock.RUnlock()

	names := make([]string, 0, len(n.contracts))
	for name := range n.contracts {
		names = append(names, name)
	}

	return names
}

// CanRun implements the runtime interface
func (n *Native) CanRun(code []byte) bool {
	return bytes.HasPrefix(code, []byte(CodePrefix))
}

// Name implements the runtime interface
func (n *Native) Name() string {
	return "native"
}

// Run implements the runtime interface
func (n *Native) Run(c *runtime.Contract, host runtime.Host) *runtime.ExecutionResult {
	hooks, err := vmhooks.New(host, c, n.schedule, n.params)
	if err != nil {
		return runtime.NewFailedResult(c.Gas, err)
	}

	return hooks.Result(n.run(hooks, c))
}

func (n *Native) run(hooks *vmhooks.VMHooks, c *runtime.Contract) error {
	if err := hooks.Meter().UseGas(n.schedule.BaseOperationCost.CompilePerByte * uint64(len(c.Code))); err != nil {
		return err
	}

	name := string(c.Code[len(CodePrefix):])

	n.lock.RLock()
	contract, ok := n.contracts[name]
	n.lock.RUnlock()

	if !ok {
		return runtime.NewError(runtime.ContractInvalid, fmt.Sprintf("unknown native contract %q", name))
	}

	endpoint, ok := contract[c.Function]
	if !ok {
		return runtime.ErrFunctionNotFound
	}

	ctx := newContext(hooks)
	hooks.SetMemory(ctx.memory)

	return invoke(endpoint, ctx)
}

// exitSignal carries the error of a failed hook out of the endpoint
type exitSignal struct {
	err error
}

func invoke(endpoint Endpoint, ctx *Context) (err error) {
	defer func() {
		r := recover()
		if r == nil {
			return
		}

		if sig, ok := r.(exitSignal); ok {
			err = sig.err

			return
		}

		if e, ok := r.(error); ok && errors.Is(e, managed.ErrTooManyHandles) {
			err = e

			return
		}

		panic(r)
	}()

	endpoint(ctx)

	return nil
}
