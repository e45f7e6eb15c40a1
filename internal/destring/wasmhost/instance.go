package wasmhost

import (
	"context"
	"fmt"

	"github.com/tetratelabs/wazero/api"
)

// Exports the decoder binary must provide in addition to its memory.
const (
	exportMalloc    = "malloc"
	exportFree      = "free"
	exportDecode    = "DeString"
	exportStackInit = "emscripten_stack_init"
	exportCtors     = "__wasm_call_ctors"
)

// instance is the narrow string FFI over one instantiated binary. All raw
// offset arithmetic lives here and nowhere else.
type instance struct {
	mod       api.Module
	malloc    api.Function
	free      api.Function
	decode    api.Function
	stackInit api.Function
	ctors     api.Function
	allocated []uint32
}

func newInstance(mod api.Module) (*instance, error) {
	if mod.Memory() == nil {
		return nil, fmt.Errorf("binary does not export memory")
	}
	inst := &instance{mod: mod}
	for _, export := range []struct {
		name string
		dest *api.Function
	}{
		{exportMalloc, &inst.malloc},
		{exportFree, &inst.free},
		{exportDecode, &inst.decode},
		{exportStackInit, &inst.stackInit},
		{exportCtors, &inst.ctors},
	} {
		fn := mod.ExportedFunction(export.name)
		if fn == nil {
			return nil, fmt.Errorf("binary does not export %q", export.name)
		}
		*export.dest = fn
	}
	return inst, nil
}

func (i *instance) initialize(ctx context.Context) error {
	if _, err := i.stackInit.Call(ctx); err != nil {
		return fmt.Errorf("%s: %w", exportStackInit, err)
	}
	if _, err := i.ctors.Call(ctx); err != nil {
		return fmt.Errorf("%s: %w", exportCtors, err)
	}
	return nil
}

// WriteString copies value, NUL-terminated, into instance memory and returns
// the offset.
func (i *instance) WriteString(ctx context.Context, value string) (uint32, error) {
	data := append([]byte(value), 0)
	results, err := i.malloc.Call(ctx, uint64(len(data)))
	if err != nil {
		return 0, fmt.Errorf("malloc %d bytes: %w", len(data), err)
	}
	ptr := uint32(results[0])
	if ptr == 0 {
		return 0, fmt.Errorf("malloc %d bytes returned null", len(data))
	}
	if !i.mod.Memory().Write(ptr, data) {
		return 0, fmt.Errorf("write %d bytes at offset %d out of range", len(data), ptr)
	}
	i.allocated = append(i.allocated, ptr)
	return ptr, nil
}

// Decode invokes the exported decode symbol and returns the result offset.
func (i *instance) Decode(ctx context.Context, ptr uint32) (uint32, error) {
	results, err := i.decode.Call(ctx, uint64(ptr))
	if err != nil {
		return 0, fmt.Errorf("%s(%d): %w", exportDecode, ptr, err)
	}
	return uint32(results[0]), nil
}

// ReadString reads the NUL-terminated string at the given offset. An offset
// of zero or past the end of memory reads as empty, matching the binary's
// failure convention.
func (i *instance) ReadString(ctx context.Context, ptr uint32) (string, error) {
	memory := i.mod.Memory()
	size := memory.Size()
	if ptr == 0 || ptr >= size {
		return "", nil
	}
	view, ok := memory.Read(ptr, size-ptr)
	if !ok {
		return "", fmt.Errorf("read at offset %d out of range", ptr)
	}
	return string(cString(view)), nil
}

// Close frees every offset handed out by WriteString, then the module.
func (i *instance) Close(ctx context.Context) error {
	for _, ptr := range i.allocated {
		if _, err := i.free.Call(ctx, uint64(ptr)); err != nil {
			return fmt.Errorf("free offset %d: %w", ptr, err)
		}
	}
	i.allocated = nil
	return i.mod.Close(ctx)
}

// cString truncates a memory view at its first NUL.
func cString(view []byte) []byte {
	for idx, b := range view {
		if b == 0 {
			return view[:idx]
		}
	}
	return view
}
