package engine

import (
	"context"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
	"go.uber.org/zap"

	scenebridge "github.com/lumekit/scenebridge"
	"github.com/lumekit/scenebridge/errors"
)

// Config holds configuration for engine creation
type Config struct {
	// MemoryLimitPages sets the maximum memory per instance in pages
	// (64KB each). 0 means the wazero default (65536 pages = 4GB).
	MemoryLimitPages uint32

	// Manifest is an optional WIT text describing the runtime's exported
	// API. When set, it is validated against the FuncID table before any
	// export is resolved, so ABI drift fails with a readable error.
	Manifest string
}

// Engine executes the compiled scene runtime with wazero and implements the
// Bridge contract the binding layer consumes: one synchronous call
// primitive plus linear memory access.
type Engine struct {
	runtime wazero.Runtime
	module  api.Module
	mem     *wazeroMemory
	alloc   *wazeroAllocator
	funcs   [scenebridge.FuncCount]api.Function
}

// Load compiles and instantiates a scene runtime binary with defaults.
func Load(ctx context.Context, wasmBytes []byte) (*Engine, error) {
	return LoadWithConfig(ctx, wasmBytes, nil)
}

// LoadWithConfig compiles and instantiates a scene runtime binary. Every
// entry of the native API surface is resolved eagerly; a missing export is
// a load error.
func LoadWithConfig(ctx context.Context, wasmBytes []byte, cfg *Config) (*Engine, error) {
	runtimeCfg := wazero.NewRuntimeConfig()
	if cfg != nil && cfg.MemoryLimitPages > 0 {
		runtimeCfg = runtimeCfg.WithMemoryLimitPages(cfg.MemoryLimitPages)
	}

	if cfg != nil && cfg.Manifest != "" {
		if err := ValidateManifest(cfg.Manifest); err != nil {
			return nil, err
		}
	}

	rt := wazero.NewRuntimeWithConfig(ctx, runtimeCfg)

	compiled, err := rt.CompileModule(ctx, wasmBytes)
	if err != nil {
		rt.Close(ctx)
		return nil, errors.Load("compile runtime module", err)
	}

	module, err := rt.InstantiateModule(ctx, compiled,
		wazero.NewModuleConfig().WithName("scene-runtime").WithStartFunctions("_initialize"))
	if err != nil {
		rt.Close(ctx)
		return nil, errors.Load("instantiate runtime module", err)
	}

	e := &Engine{runtime: rt, module: module}

	if module.Memory() == nil {
		rt.Close(ctx)
		return nil, errors.InvalidInput(errors.PhaseLoad, "runtime module exports no memory")
	}
	e.mem = &wazeroMemory{mem: module.Memory()}

	allocFn := module.ExportedFunction(allocExportName)
	freeFn := module.ExportedFunction(freeExportName)
	if allocFn == nil || freeFn == nil {
		rt.Close(ctx)
		return nil, errors.NotFound(errors.PhaseLoad, "allocator export", allocExportName)
	}
	e.alloc = &wazeroAllocator{alloc: allocFn, free: freeFn}

	for fn := scenebridge.FuncID(0); fn < scenebridge.FuncCount; fn++ {
		f := module.ExportedFunction(apiTable[fn].name)
		if f == nil {
			rt.Close(ctx)
			return nil, errors.NotFound(errors.PhaseLoad, "runtime export", apiTable[fn].name)
		}
		e.funcs[fn] = f
	}

	Logger().Debug("scene runtime loaded",
		zap.Uint32("memory_bytes", module.Memory().Size()),
		zap.Int("exports", int(scenebridge.FuncCount)))

	return e, nil
}

// Bridge returns the engine as the Bridge contract consumed by sessions.
func (e *Engine) Bridge() scenebridge.Bridge { return e }

// Call invokes one native API function. The caller encodes signed handles
// and floats into the uint64 slots with the root package helpers.
func (e *Engine) Call(ctx context.Context, fn scenebridge.FuncID, args ...uint64) (uint64, error) {
	if fn >= scenebridge.FuncCount {
		return 0, errors.InvalidInput(errors.PhaseCall, "unknown function id")
	}
	res, err := e.funcs[fn].Call(ctx, args...)
	if err != nil {
		return 0, errors.CallFailed(apiTable[fn].name, err)
	}
	if len(res) == 0 {
		return 0, nil
	}
	return res[0], nil
}

// Memory returns the runtime's linear memory.
func (e *Engine) Memory() scenebridge.Memory { return e.mem }

// Allocator returns the runtime's exported allocator.
func (e *Engine) Allocator() scenebridge.Allocator { return e.alloc }

// Close releases the wazero runtime and everything instantiated in it.
func (e *Engine) Close(ctx context.Context) error {
	return e.runtime.Close(ctx)
}
