package wasm

import (
	"context"
	"errors"
	"reflect"
	"sort"
	"strings"

	"github.com/tetratelabs/wazero/api"

	"github.com/0xPolygon/wasm-vm/state/runtime/managed"
	"github.com/0xPolygon/wasm-vm/state/runtime/vmhooks"
)

// HostModuleName is the only module contracts may import from
const HostModuleName = "env"

// hooks added by environment interface version 1.3, everything else is available from 1.2
var hooksSince13 = map[string]struct{}{
	"managedGetBackTransfers":                    {},
	"managedGetCallbackClosure":                  {},
	"managedCreateAsyncCall":                     {},
	"createAsyncCall":                            {},
	"setAsyncContextCallback":                    {},
	"managedExecuteOnDestContextWithErrorReturn": {},
	"managedExecuteOnSameContextWithErrorReturn": {},
	"managedExecuteReadOnlyWithErrorReturn":      {},
	"managedIsBuiltinFunction":                   {},
	"isReservedFunctionName":                     {},
	"managedGetOriginalTxHash":                   {},
	"bigFloatLn":                                 {},
	"bigFloatLog2":                               {},
	"bigFloatExp":                                {},
}

// hookFunction is a VMHooks method exposed to contracts under its wire name
type hookFunction struct {
	name    string
	method  reflect.Value
	params  []api.ValueType
	results []api.ValueType
}

var (
	errorType = reflect.TypeOf((*error)(nil)).Elem()
	int32Type = reflect.TypeOf(int32(0))
	int64Type = reflect.TypeOf(int64(0))
)

func valueType(t reflect.Type) (api.ValueType, bool) {
	switch t {
	case int32Type:
		return api.ValueTypeI32, true
	case int64Type:
		return api.ValueTypeI64, true
	default:
		return 0, false
	}
}

// wireName is the method name with its first letter in lower case
func wireName(method string) string {
	return strings.ToLower(method[:1]) + method[1:]
}

// hookFunctions collects the methods of VMHooks taking only i32/i64 arguments and
// returning an error, optionally preceded by an i32/i64 result
func hookFunctions() []*hookFunction {
	t := reflect.TypeOf(&vmhooks.VMHooks{})

	var out []*hookFunction

	for i := 0; i < t.NumMethod(); i++ {
		m := t.Method(i)
		ft := m.Type

		if ft.NumOut() == 0 || ft.NumOut() > 2 || ft.Out(ft.NumOut()-1) != errorType {
			continue
		}

		hf := &hookFunction{name: wireName(m.Name), method: m.Func}

		ok := true

		// In(0) is the receiver
		for j := 1; j < ft.NumIn() && ok; j++ {
			var vt api.ValueType
			if vt, ok = valueType(ft.In(j)); ok {
				hf.params = append(hf.params, vt)
			}
		}

		if ft.NumOut() == 2 {
			var vt api.ValueType
			if vt, ok = valueType(ft.Out(0)); ok {
				hf.results = []api.ValueType{vt}
			}
		}

		if ok {
			out = append(out, hf)
		}
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].name < out[j].name
	})

	return out
}

// availableIn reports whether the hook exists in the given environment interface version
func (hf *hookFunction) availableIn(eiVersion string) bool {
	if _, ok := hooksSince13[hf.name]; ok {
		return eiVersion >= "1.3"
	}

	return true
}

func sameTypes(a, b []api.ValueType) bool {
	if len(a) != len(b) {
		return false
	}

	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}

	return true
}

// goFunction adapts the hook to the wazero stack calling convention. The gas
// global of the caller is synced with the meter around the call and a hook
// error unwinds the instance.
func (hf *hookFunction) goFunction() api.GoModuleFunc {
	return func(ctx context.Context, mod api.Module, stack []uint64) {
		f := frameFrom(ctx)
		f.syncIn(mod)

		defer func() {
			// the arena panics once the frame runs out of handles
			if r := recover(); r != nil {
				if err, ok := r.(error); ok && errors.Is(err, managed.ErrTooManyHandles) {
					f.exitErr = err
				}

				panic(r)
			}
		}()

		args := make([]reflect.Value, 1+len(hf.params))
		args[0] = reflect.ValueOf(f.hooks)

		for i, vt := range hf.params {
			if vt == api.ValueTypeI32 {
				args[i+1] = reflect.ValueOf(api.DecodeI32(stack[i]))
			} else {
				args[i+1] = reflect.ValueOf(int64(stack[i]))
			}
		}

		out := hf.method.Call(args)

		f.syncOut(mod)

		if errValue := out[len(out)-1]; !errValue.IsNil() {
			f.exit(errValue.Interface().(error))
		}

		if len(hf.results) == 1 {
			switch v := out[0].Interface().(type) {
			case int32:
				stack[0] = api.EncodeI32(v)
			case int64:
				stack[0] = api.EncodeI64(v)
			}
		}
	}
}
