package destring

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/dop251/goja"

	"flipfetch/internal/logging"
)

// The initialization-complete hook as it appears in the vendor scaffold.
// This exact text is a versioned contract: the patch below anchors on it and
// fails with ErrHookNotFound when the vendor changes it.
const (
	readyHook        = "onReady(){}"
	readyBinding     = "__manifestReady"
	readyHookPatched = "onReady(){" + readyBinding + "();}"
)

// State identifies where a session is in its lifecycle.
type State int

const (
	StateIdle State = iota
	StateArtifactLoading
	StateReady
	StateDecoded
	StateDone
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateArtifactLoading:
		return "artifact-loading"
	case StateReady:
		return "ready"
	case StateDecoded:
		return "decoded"
	case StateDone:
		return "done"
	case StateFailed:
		return "failed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Session binds one artifact to one ciphertext for a single decode attempt.
// Sessions are single-use; create a new one per manifest.
type Session struct {
	runtime Runtime
	logger  *slog.Logger
	timeout time.Duration

	state     State
	shim      *Shim
	binary    []byte
	instance  Instance
	fired     bool
	plaintext string
	failure   error
}

// NewSession creates a session backed by the given binary runtime. A zero
// timeout falls back to 30 seconds.
func NewSession(runtime Runtime, logger *slog.Logger, timeout time.Duration) *Session {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Session{
		runtime: runtime,
		logger:  logging.NewComponentLogger(logger, "destring"),
		timeout: timeout,
		state:   StateIdle,
	}
}

// State returns the session's current lifecycle state.
func (s *Session) State() State {
	return s.state
}

// PatchReadyHook rewrites the scaffold's initialization-complete hook so it
// additionally invokes the session's ready callback. The substitution must
// succeed exactly once; a missing hook means vendor drift and an un-patched
// artifact would hang forever waiting for a callback that never fires.
func PatchReadyHook(artifactText string) (string, error) {
	if !strings.Contains(artifactText, readyHook) {
		return "", fmt.Errorf("%w: expected %q in artifact", ErrHookNotFound, readyHook)
	}
	return strings.Replace(artifactText, readyHook, readyHookPatched, 1), nil
}

// Decode runs the full bridge pipeline: patch the hook, execute the artifact
// in a fresh shim, wait for the ready signal, push the ciphertext through the
// binary's decode entry point, and return the plaintext. Exactly one decode
// happens regardless of whether the ready signal fires during execution,
// from a deferred job, or only as the Module flag (the synchronous-ready
// race path).
func (s *Session) Decode(ctx context.Context, artifactText string, binary []byte, ciphertext string) (string, error) {
	if s.state != StateIdle {
		return "", fmt.Errorf("%w: session already used (state %s)", ErrExecution, s.state)
	}

	patched, err := PatchReadyHook(artifactText)
	if err != nil {
		return "", s.fail(err)
	}

	shim, err := NewShim(binary)
	if err != nil {
		return "", s.fail(fmt.Errorf("%w: %v", ErrExecution, err))
	}
	s.shim = shim
	s.binary = binary

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	defer s.close(ctx)

	// Watchdog: interrupt artifact code that never yields.
	watchdogDone := make(chan struct{})
	defer close(watchdogDone)
	go func() {
		select {
		case <-ctx.Done():
			shim.Interrupt("decode deadline exceeded")
		case <-watchdogDone:
		}
	}()

	if err := shim.Bind(readyBinding, func() { s.onReady(ctx, ciphertext) }); err != nil {
		return "", s.fail(fmt.Errorf("%w: bind ready callback: %v", ErrExecution, err))
	}
	shim.SetInstantiate(func() error { return s.ensureInstance(ctx) })

	s.state = StateArtifactLoading
	if err := shim.Run(patched); err != nil {
		return "", s.fail(s.classifyVMError(ctx, err))
	}

	// Drain deferred jobs until the hook fires or nothing is left to run.
	for !s.fired {
		if ctx.Err() != nil {
			return "", s.fail(fmt.Errorf("%w: %v", ErrTimeout, ctx.Err()))
		}
		ran, err := shim.RunNextJob()
		if err != nil {
			return "", s.fail(s.classifyVMError(ctx, err))
		}
		if !ran {
			break
		}
	}

	// Synchronous-ready race path: the binary finished loading before our
	// callback registration took effect and the hook will never fire again.
	// The flag check here is a hard requirement, not an optimization.
	if !s.fired && s.shim.ReadySet() {
		s.onReady(ctx, ciphertext)
	}

	if !s.fired {
		return "", s.fail(fmt.Errorf("%w: artifact never signalled ready", ErrTimeout))
	}
	if s.failure != nil {
		return "", s.failure
	}
	if s.state != StateDecoded {
		return "", s.fail(fmt.Errorf("%w: session ended in state %s", ErrExecution, s.state))
	}
	s.state = StateDone
	return s.plaintext, nil
}

// onReady performs the decode on first invocation only. The hook could in
// principle fire more than once; the guard makes every later invocation a
// no-op so exactly one decode occurs and one output is produced.
func (s *Session) onReady(ctx context.Context, ciphertext string) {
	if s.fired {
		return
	}
	s.fired = true
	s.state = StateReady

	if err := s.ensureInstance(ctx); err != nil {
		s.failWith(fmt.Errorf("%w: %v", ErrExecution, err))
		return
	}
	instance := s.instance

	inPtr, err := instance.WriteString(ctx, ciphertext)
	if err != nil {
		s.failWith(fmt.Errorf("%w: marshal ciphertext: %v", ErrExecution, err))
		return
	}
	outPtr, err := instance.Decode(ctx, inPtr)
	if err != nil {
		s.failWith(fmt.Errorf("%w: decode call: %v", ErrExecution, err))
		return
	}
	plaintext, err := instance.ReadString(ctx, outPtr)
	if err != nil {
		s.failWith(fmt.Errorf("%w: read plaintext: %v", ErrExecution, err))
		return
	}

	s.plaintext = plaintext
	s.state = StateDecoded
	s.logger.Debug("manifest decoded",
		logging.Int("ciphertext_bytes", len(ciphertext)),
		logging.Int("plaintext_bytes", len(plaintext)))
}

func (s *Session) ensureInstance(ctx context.Context) error {
	if s.instance != nil {
		return nil
	}
	inst, err := s.runtime.Instantiate(ctx, s.binary)
	if err != nil {
		return fmt.Errorf("instantiate binary: %w", err)
	}
	s.instance = inst
	return nil
}

func (s *Session) classifyVMError(ctx context.Context, err error) error {
	var interrupted *goja.InterruptedError
	if errors.As(err, &interrupted) || ctx.Err() != nil {
		return fmt.Errorf("%w: %v", ErrTimeout, err)
	}
	return fmt.Errorf("%w: %v", ErrExecution, err)
}

func (s *Session) fail(err error) error {
	s.failWith(err)
	return s.failure
}

func (s *Session) failWith(err error) {
	if s.state == StateDone || s.state == StateFailed {
		return
	}
	s.state = StateFailed
	s.failure = err
}

func (s *Session) close(ctx context.Context) {
	if s.instance != nil {
		if err := s.instance.Close(ctx); err != nil {
			s.logger.Debug("close binary instance", logging.Error(err))
		}
		s.instance = nil
	}
}
