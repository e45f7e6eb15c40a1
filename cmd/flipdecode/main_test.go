package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"flipfetch/internal/destring"
)

func runHelper(t *testing.T, args []string, stdin string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := run(args, strings.NewReader(stdin), &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func TestRunRequiresArtifactFlag(t *testing.T) {
	code, stdout, stderr := runHelper(t, nil, "cipher")
	if code != destring.ExitUsage {
		t.Fatalf("exit = %d, want %d", code, destring.ExitUsage)
	}
	if stdout != "" {
		t.Errorf("stdout = %q, want empty on failure", stdout)
	}
	if !strings.Contains(stderr, "--artifact") {
		t.Errorf("stderr should mention the missing flag: %q", stderr)
	}
}

func TestRunRejectsEmptyStdin(t *testing.T) {
	code, _, _ := runHelper(t, []string{"--artifact", "x.js"}, "  \n")
	if code != destring.ExitUsage {
		t.Fatalf("exit = %d, want %d", code, destring.ExitUsage)
	}
}

func TestRunReportsMissingArtifact(t *testing.T) {
	code, stdout, _ := runHelper(t,
		[]string{"--artifact", filepath.Join(t.TempDir(), "absent.js")}, "cipher")
	if code != destring.ExitExecution {
		t.Fatalf("exit = %d, want %d", code, destring.ExitExecution)
	}
	if stdout != "" {
		t.Errorf("stdout = %q, want empty on failure", stdout)
	}
}

func TestRunReportsMissingPayload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "deString.js")
	if err := os.WriteFile(path, []byte("var Decoder = { onReady(){} };"), 0o644); err != nil {
		t.Fatal(err)
	}
	code, _, stderr := runHelper(t, []string{"--artifact", path}, "cipher")
	if code != destring.ExitPayloadNotFound {
		t.Fatalf("exit = %d, want %d (stderr: %s)", code, destring.ExitPayloadNotFound, stderr)
	}
}
