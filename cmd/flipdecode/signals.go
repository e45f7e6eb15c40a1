package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

// contextWithSignals cancels on SIGINT/SIGTERM so an interrupted decode tears
// the binary runtime down instead of leaving the process wedged.
func contextWithSignals() context.Context {
	ctx, _ := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	return ctx
}
