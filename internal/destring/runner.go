package destring

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"flipfetch/internal/logging"
)

// HelperName is the decode helper binary installed next to flipfetch.
const HelperName = "flipdecode"

// RunFunc performs one isolated decode of ciphertext against the artifact at
// artifactPath and returns the plaintext.
type RunFunc func(ctx context.Context, artifactPath, ciphertext string) (string, error)

// SubprocessRunner executes decode sessions in the flipdecode helper process.
// The helper has no network capability; it only reads the cached artifact,
// decodes, and writes the plaintext to stdout.
type SubprocessRunner struct {
	helperPath string
	timeout    time.Duration
	logger     *slog.Logger
}

// NewSubprocessRunner creates a runner. An empty helperPath resolves to the
// flipdecode binary next to the current executable.
func NewSubprocessRunner(helperPath string, timeout time.Duration, logger *slog.Logger) *SubprocessRunner {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &SubprocessRunner{
		helperPath: helperPath,
		timeout:    timeout,
		logger:     logging.NewComponentLogger(logger, "destring"),
	}
}

// Run decodes one ciphertext through the helper subprocess. Absence of output
// is failure, never an empty-but-valid manifest.
func (r *SubprocessRunner) Run(ctx context.Context, artifactPath, ciphertext string) (string, error) {
	helper, err := r.resolveHelper()
	if err != nil {
		return "", err
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, helper, "--artifact", artifactPath)
	cmd.Stdin = strings.NewReader(ciphertext)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	runErr := cmd.Run()
	if runErr != nil {
		if ctx.Err() != nil {
			return "", fmt.Errorf("%w: helper exceeded %s", ErrTimeout, r.timeout)
		}
		var exitErr *exec.ExitError
		if errors.As(runErr, &exitErr) {
			marker := ErrorFromExitCode(exitErr.ExitCode())
			return "", fmt.Errorf("%w: helper: %s", marker, stderrTail(stderr.String()))
		}
		return "", fmt.Errorf("%w: run helper: %v", ErrExecution, runErr)
	}

	plaintext := stdout.String()
	if strings.TrimSpace(plaintext) == "" {
		return "", fmt.Errorf("%w: helper produced no output", ErrExecution)
	}

	r.logger.Debug("helper decode complete",
		logging.String("helper", helper),
		logging.Duration("elapsed", time.Since(start)),
		logging.Int("plaintext_bytes", len(plaintext)))
	return plaintext, nil
}

func (r *SubprocessRunner) resolveHelper() (string, error) {
	if r.helperPath != "" {
		if _, err := os.Stat(r.helperPath); err != nil {
			return "", fmt.Errorf("%w: helper %s: %v", ErrConfig, r.helperPath, err)
		}
		return r.helperPath, nil
	}

	self, err := os.Executable()
	if err != nil {
		return "", fmt.Errorf("%w: locate executable: %v", ErrConfig, err)
	}
	candidate := filepath.Join(filepath.Dir(self), HelperName)
	if _, err := os.Stat(candidate); err == nil {
		return candidate, nil
	}
	// Fall back to PATH for installs that split the binaries.
	if found, err := exec.LookPath(HelperName); err == nil {
		return found, nil
	}
	return "", fmt.Errorf("%w: %s helper not found next to %s or on PATH", ErrConfig, HelperName, self)
}

func stderrTail(text string) string {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return "(no diagnostics)"
	}
	lines := strings.Split(trimmed, "\n")
	if len(lines) > 3 {
		lines = lines[len(lines)-3:]
	}
	return strings.Join(lines, "; ")
}

// InProcessRunner decodes inside the current process. It backs the helper
// binary itself and the in_process debugging path.
type InProcessRunner struct {
	Runtime Runtime
	Timeout time.Duration
	Logger  *slog.Logger
}

// Run reads the artifact, extracts the binary payload, and drives one
// bridge session.
func (r *InProcessRunner) Run(ctx context.Context, artifactPath, ciphertext string) (string, error) {
	data, err := os.ReadFile(artifactPath)
	if err != nil {
		return "", fmt.Errorf("%w: read artifact %s: %v", ErrExecution, artifactPath, err)
	}
	artifactText := string(data)

	binary, err := ExtractBinary(artifactText)
	if err != nil {
		return "", err
	}

	session := NewSession(r.Runtime, r.Logger, r.Timeout)
	return session.Decode(ctx, artifactText, binary, ciphertext)
}
