// Command flipdecode decodes one obfuscated page manifest.
//
// It reads the ciphertext from stdin, runs the cached decoder artifact in a
// sandboxed session, and writes the plaintext to stdout exactly once. The
// flipfetch orchestrator drives it as a subprocess so artifact execution
// never shares an address space with the network-facing code; exit codes
// carry the failure class back across the process boundary.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"flipfetch/internal/destring"
	"flipfetch/internal/destring/wasmhost"
	"flipfetch/internal/logging"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	flags := flag.NewFlagSet("flipdecode", flag.ContinueOnError)
	flags.SetOutput(stderr)
	artifactPath := flags.String("artifact", "", "path to the cached decoder artifact")
	timeoutSeconds := flags.Int("timeout", 30, "decode deadline in seconds")
	logLevel := flags.String("log-level", "warn", "log verbosity (debug, info, warn, error)")
	if err := flags.Parse(args); err != nil {
		return destring.ExitUsage
	}
	if strings.TrimSpace(*artifactPath) == "" {
		fmt.Fprintln(stderr, "flipdecode: --artifact is required")
		return destring.ExitUsage
	}

	logger, err := logging.New(logging.Options{Level: *logLevel, Format: "console", OutputPaths: []string{"stderr"}})
	if err != nil {
		fmt.Fprintf(stderr, "flipdecode: %v\n", err)
		return destring.ExitUsage
	}

	ciphertext, err := io.ReadAll(stdin)
	if err != nil {
		fmt.Fprintf(stderr, "flipdecode: read stdin: %v\n", err)
		return destring.ExitExecution
	}
	trimmed := strings.TrimSpace(string(ciphertext))
	if trimmed == "" {
		fmt.Fprintln(stderr, "flipdecode: empty ciphertext on stdin")
		return destring.ExitUsage
	}

	ctx := contextWithSignals()
	runtime, err := wasmhost.New(ctx, logger)
	if err != nil {
		fmt.Fprintf(stderr, "flipdecode: init runtime: %v\n", err)
		return destring.ExitExecution
	}
	defer func() { _ = runtime.Close(ctx) }()

	runner := &destring.InProcessRunner{
		Runtime: runtime,
		Timeout: time.Duration(*timeoutSeconds) * time.Second,
		Logger:  logger,
	}
	plaintext, err := runner.Run(ctx, *artifactPath, trimmed)
	if err != nil {
		fmt.Fprintf(stderr, "flipdecode: %v\n", err)
		return destring.ExitCode(err)
	}

	// The plaintext goes to stdout exactly once, with no framing.
	fmt.Fprint(stdout, plaintext)
	return 0
}
