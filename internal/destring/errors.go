package destring

import "errors"

// Decode failure classes. Each is unrecoverable for the current session; the
// Service may re-fetch the artifact once on the two vendor-drift errors.
var (
	// ErrConfig indicates no artifact location was supplied.
	ErrConfig = errors.New("decoder not configured")
	// ErrPayloadNotFound indicates the embedded binary marker is absent:
	// the vendor changed the artifact format.
	ErrPayloadNotFound = errors.New("embedded binary payload not found")
	// ErrHookNotFound indicates the initialization hook text is absent:
	// the vendor changed the scaffold.
	ErrHookNotFound = errors.New("initialization hook not found")
	// ErrExecution indicates the sandboxed run raised or crashed.
	ErrExecution = errors.New("artifact execution failed")
	// ErrTimeout indicates no ready signal arrived within the bound.
	ErrTimeout = errors.New("decode timed out")
)

// Helper process exit codes. The flipdecode binary reports failures through
// these so the runner can reconstruct the error class across the process
// boundary.
const (
	ExitUsage           = 2
	ExitPayloadNotFound = 3
	ExitHookNotFound    = 4
	ExitExecution       = 5
	ExitTimeout         = 6
)

// ExitCode maps a decode error to the helper process exit code.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, ErrConfig):
		return ExitUsage
	case errors.Is(err, ErrPayloadNotFound):
		return ExitPayloadNotFound
	case errors.Is(err, ErrHookNotFound):
		return ExitHookNotFound
	case errors.Is(err, ErrTimeout):
		return ExitTimeout
	default:
		return ExitExecution
	}
}

// ErrorFromExitCode reconstructs the sentinel for a helper exit code.
func ErrorFromExitCode(code int) error {
	switch code {
	case 0:
		return nil
	case ExitUsage:
		return ErrConfig
	case ExitPayloadNotFound:
		return ErrPayloadNotFound
	case ExitHookNotFound:
		return ErrHookNotFound
	case ExitTimeout:
		return ErrTimeout
	default:
		return ErrExecution
	}
}
