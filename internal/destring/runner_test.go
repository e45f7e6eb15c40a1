package destring

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"flipfetch/internal/logging"
)

func TestSubprocessRunnerRejectsMissingHelper(t *testing.T) {
	runner := NewSubprocessRunner(filepath.Join(t.TempDir(), "nope"), time.Second, logging.NewNop())
	_, err := runner.Run(context.Background(), "artifact.js", "x")
	if !errors.Is(err, ErrConfig) {
		t.Fatalf("error = %v, want ErrConfig", err)
	}
}

func TestStderrTail(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", "(no diagnostics)"},
		{"whitespace", "  \n\t", "(no diagnostics)"},
		{"single line", "boom\n", "boom"},
		{"keeps last three", "a\nb\nc\nd\ne", "c; d; e"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := stderrTail(tt.in); got != tt.want {
				t.Errorf("stderrTail(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestInProcessRunnerDecodesArtifactFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "deString.js")
	if err := os.WriteFile(path, []byte(asyncArtifact), 0o644); err != nil {
		t.Fatal(err)
	}

	runner := &InProcessRunner{Runtime: &fakeRuntime{}, Timeout: 5 * time.Second, Logger: logging.NewNop()}
	plaintext, err := runner.Run(context.Background(), path, "hello")
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if plaintext != "HELLO" {
		t.Errorf("plaintext = %q, want HELLO", plaintext)
	}
}

func TestInProcessRunnerSurfacesPayloadError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "deString.js")
	if err := os.WriteFile(path, []byte("var Decoder = { onReady(){} };"), 0o644); err != nil {
		t.Fatal(err)
	}

	runner := &InProcessRunner{Runtime: &fakeRuntime{}, Timeout: time.Second}
	_, err := runner.Run(context.Background(), path, "x")
	if !errors.Is(err, ErrPayloadNotFound) {
		t.Fatalf("error = %v, want ErrPayloadNotFound", err)
	}
}

func TestExitCodeRoundTrip(t *testing.T) {
	tests := []struct {
		err  error
		code int
	}{
		{ErrConfig, ExitUsage},
		{ErrPayloadNotFound, ExitPayloadNotFound},
		{ErrHookNotFound, ExitHookNotFound},
		{ErrExecution, ExitExecution},
		{ErrTimeout, ExitTimeout},
	}
	for _, tt := range tests {
		if got := ExitCode(tt.err); got != tt.code {
			t.Errorf("ExitCode(%v) = %d, want %d", tt.err, got, tt.code)
		}
		if back := ErrorFromExitCode(tt.code); !errors.Is(back, tt.err) {
			t.Errorf("ErrorFromExitCode(%d) = %v, want wrapping %v", tt.code, back, tt.err)
		}
	}
	if got := ExitCode(errors.New("misc")); got != ExitExecution {
		t.Errorf("unclassified error exit = %d, want %d", got, ExitExecution)
	}
}
