// Package wasmhost runs extracted decoder binaries in a wazero runtime.
//
// The runtime is deny-by-default: no filesystem, no network, no environment.
// The only host surface is the emscripten env import set the vendor binary
// expects plus WASI fd_write, which lands in a discard writer. Memory is
// capped and execution is bounded by the caller's context deadline.
package wasmhost

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
	"github.com/tetratelabs/wazero/imports/wasi_snapshot_preview1"

	"flipfetch/internal/destring"
	"flipfetch/internal/logging"
)

const (
	wasmPageSize = 65536
	// memoryLimitPages caps instance memory at 64 MiB. The real decoder
	// binary stays far below this; the cap bounds a misbehaving artifact.
	memoryLimitPages = 1024
)

// Runtime implements destring.Runtime on wazero.
type Runtime struct {
	runtime wazero.Runtime
	logger  *slog.Logger
}

// New creates a runtime ready to instantiate decoder binaries.
func New(ctx context.Context, logger *slog.Logger) (*Runtime, error) {
	cfg := wazero.NewRuntimeConfig().
		WithMemoryLimitPages(memoryLimitPages).
		WithCloseOnContextDone(true)
	r := wazero.NewRuntimeWithConfig(ctx, cfg)

	// fd_write (informational text from the binary) lands in the default
	// discard writers; nothing else from WASI is reachable.
	wasi_snapshot_preview1.MustInstantiate(ctx, r)

	_, err := r.NewHostModuleBuilder("env").
		NewFunctionBuilder().
		WithFunc(func(ctx context.Context, mod api.Module, scriptPtr int32) {
			// The decode path does not depend on script eval side effects.
		}).
		Export("emscripten_run_script").
		NewFunctionBuilder().
		WithFunc(memcpyBig).
		Export("emscripten_memcpy_big").
		NewFunctionBuilder().
		WithFunc(resizeHeap).
		Export("emscripten_resize_heap").
		Instantiate(ctx)
	if err != nil {
		_ = r.Close(ctx)
		return nil, fmt.Errorf("instantiate env host module: %w", err)
	}

	return &Runtime{
		runtime: r,
		logger:  logging.NewComponentLogger(logger, "wasmhost"),
	}, nil
}

// Instantiate compiles and instantiates an extracted binary and runs its
// constructors, returning the FFI instance the bridge decodes through.
func (r *Runtime) Instantiate(ctx context.Context, binary []byte) (destring.Instance, error) {
	compiled, err := r.runtime.CompileModule(ctx, binary)
	if err != nil {
		return nil, fmt.Errorf("compile binary: %w", err)
	}

	modCfg := wazero.NewModuleConfig().
		WithName("destring").
		WithStartFunctions() // constructors are invoked explicitly below
	mod, err := r.runtime.InstantiateModule(ctx, compiled, modCfg)
	if err != nil {
		return nil, fmt.Errorf("instantiate binary: %w", err)
	}

	inst, err := newInstance(mod)
	if err != nil {
		_ = mod.Close(ctx)
		return nil, err
	}
	if err := inst.initialize(ctx); err != nil {
		_ = mod.Close(ctx)
		return nil, err
	}

	r.logger.Debug("decoder binary instantiated",
		logging.Int("binary_bytes", len(binary)),
		logging.Int64("memory_bytes", int64(mod.Memory().Size())))
	return inst, nil
}

// Close shuts down the runtime and every live instance.
func (r *Runtime) Close(ctx context.Context) error {
	return r.runtime.Close(ctx)
}

func memcpyBig(ctx context.Context, mod api.Module, dest, src, size int32) {
	if size <= 0 {
		return
	}
	memory := mod.Memory()
	view, ok := memory.Read(uint32(src), uint32(size))
	if !ok {
		panic(fmt.Sprintf("memcpy source out of range: %d+%d", src, size))
	}
	// The view aliases instance memory; copy before writing in case the
	// ranges overlap.
	chunk := make([]byte, len(view))
	copy(chunk, view)
	if !memory.Write(uint32(dest), chunk) {
		panic(fmt.Sprintf("memcpy destination out of range: %d+%d", dest, size))
	}
}

func resizeHeap(ctx context.Context, mod api.Module, requestedSize int32) int32 {
	memory := mod.Memory()
	current := memory.Size()
	if uint32(requestedSize) <= current {
		return 1
	}
	delta := (uint32(requestedSize) - current + wasmPageSize - 1) / wasmPageSize
	if _, ok := memory.Grow(delta); !ok {
		return 0
	}
	return 1
}
