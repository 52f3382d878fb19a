package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
)

// Exit codes: 1 for operational failures, 2 when a schema does not match.
const (
	exitFailure  = 1
	exitMismatch = 2
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	err := newRootCmd().ExecuteContext(ctx)
	switch {
	case err == nil:
	case errors.Is(err, errMismatch):
		cancel()
		os.Exit(exitMismatch)
	default:
		fmt.Fprintln(os.Stderr, "error:", err)
		cancel()
		os.Exit(exitFailure)
	}
}
