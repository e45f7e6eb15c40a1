package destring

import (
	"fmt"

	"github.com/dop251/goja"
)

// Shim is the execution environment one session hands to the artifact
// scaffold: ambient global aliases, a Module configuration object carrying
// the extracted binary bytes, a deferred-job queue standing in for timers,
// and a WebAssembly facade whose instantiate path is supplied by the bridge.
// Nothing else — no filesystem, no network, no DOM.
type Shim struct {
	vm          *goja.Runtime
	module      *goja.Object
	jobs        []shimJob
	nextJobID   int64
	instantiate func() error
}

type shimJob struct {
	id        int64
	fn        goja.Callable
	cancelled bool
}

// readyFlagKey is the slot on the Module object the artifact sets when its
// binary finishes loading (the emscripten convention).
const readyFlagKey = "calledRun"

// NewShim constructs a fresh execution context for one session. The binary
// bytes are pre-populated on the Module object so the artifact's loader does
// not attempt its own fetch.
func NewShim(binary []byte) (*Shim, error) {
	vm := goja.New()
	s := &Shim{vm: vm, instantiate: func() error { return nil }}

	module := vm.NewObject()
	if err := module.Set("wasmBinary", vm.NewArrayBuffer(binary)); err != nil {
		return nil, fmt.Errorf("shim: populate module binary: %w", err)
	}
	s.module = module

	global := vm.GlobalObject()
	bindings := map[string]any{
		"Module": module,
		"window": global,
		"self":   global,
		"global": global,
	}
	for name, value := range bindings {
		if err := vm.Set(name, value); err != nil {
			return nil, fmt.Errorf("shim: bind %s: %w", name, err)
		}
	}

	if err := s.installConsole(); err != nil {
		return nil, err
	}
	if err := s.installTimers(); err != nil {
		return nil, err
	}
	if err := s.installWebAssembly(); err != nil {
		return nil, err
	}
	return s, nil
}

// Run executes artifact text inside the shim.
func (s *Shim) Run(text string) error {
	_, err := s.vm.RunString(text)
	return err
}

// Bind exposes a Go function to the artifact under the given global name.
func (s *Shim) Bind(name string, fn func()) error {
	return s.vm.Set(name, fn)
}

// SetInstantiate registers the bridge's binary instantiation path behind the
// WebAssembly facade.
func (s *Shim) SetInstantiate(fn func() error) {
	if fn != nil {
		s.instantiate = fn
	}
}

// ReadySet reports whether the artifact has set the initialization-complete
// flag on the Module object.
func (s *Shim) ReadySet() bool {
	value := s.module.Get(readyFlagKey)
	return value != nil && value.ToBoolean()
}

// RunNextJob executes the oldest queued deferred job. The bool reports
// whether a job ran; false with nil error means the queue is empty.
func (s *Shim) RunNextJob() (bool, error) {
	for len(s.jobs) > 0 {
		job := s.jobs[0]
		s.jobs = s.jobs[1:]
		if job.cancelled {
			continue
		}
		if _, err := job.fn(goja.Undefined()); err != nil {
			return true, err
		}
		return true, nil
	}
	return false, nil
}

// Interrupt aborts any running artifact code with the given reason.
func (s *Shim) Interrupt(reason string) {
	s.vm.Interrupt(reason)
}

func (s *Shim) installConsole() error {
	console := s.vm.NewObject()
	noop := func(goja.FunctionCall) goja.Value { return goja.Undefined() }
	for _, method := range []string{"log", "info", "warn", "error", "debug"} {
		if err := console.Set(method, noop); err != nil {
			return fmt.Errorf("shim: console.%s: %w", method, err)
		}
	}
	return s.vm.Set("console", console)
}

func (s *Shim) installTimers() error {
	setTimeout := func(call goja.FunctionCall) goja.Value {
		fn, ok := goja.AssertFunction(call.Argument(0))
		if !ok {
			panic(s.vm.NewTypeError("setTimeout callback is not a function"))
		}
		s.nextJobID++
		s.jobs = append(s.jobs, shimJob{id: s.nextJobID, fn: fn})
		return s.vm.ToValue(s.nextJobID)
	}
	clearTimeout := func(call goja.FunctionCall) goja.Value {
		id := call.Argument(0).ToInteger()
		for i := range s.jobs {
			if s.jobs[i].id == id {
				s.jobs[i].cancelled = true
			}
		}
		return goja.Undefined()
	}
	if err := s.vm.Set("setTimeout", setTimeout); err != nil {
		return fmt.Errorf("shim: setTimeout: %w", err)
	}
	if err := s.vm.Set("clearTimeout", clearTimeout); err != nil {
		return fmt.Errorf("shim: clearTimeout: %w", err)
	}
	return nil
}

// installWebAssembly provides the one WebAssembly operation the scaffold's
// loader uses. Instantiation runs through the bridge-held runtime against
// the canonical extracted bytes; the scaffold only receives an opaque token
// instance, never a capability.
func (s *Shim) installWebAssembly() error {
	wasm := s.vm.NewObject()
	instantiate := func(call goja.FunctionCall) goja.Value {
		if err := s.instantiate(); err != nil {
			panic(s.vm.NewGoError(err))
		}
		exports := s.vm.NewObject()
		instance := s.vm.NewObject()
		_ = instance.Set("exports", exports)
		result := s.vm.NewObject()
		_ = result.Set("instance", instance)

		thenable := s.vm.NewObject()
		_ = thenable.Set("then", func(c goja.FunctionCall) goja.Value {
			if cb, ok := goja.AssertFunction(c.Argument(0)); ok {
				if _, err := cb(goja.Undefined(), result); err != nil {
					panic(s.vm.NewGoError(err))
				}
			}
			return thenable
		})
		return thenable
	}
	if err := wasm.Set("instantiate", instantiate); err != nil {
		return fmt.Errorf("shim: WebAssembly.instantiate: %w", err)
	}
	return s.vm.Set("WebAssembly", wasm)
}
