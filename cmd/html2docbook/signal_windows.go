//go:build windows

package main

import (
	"context"
	"os"
	"os/signal"
)

// interruptContext derives a context that cancels on interrupt.
// SIGTERM does not exist on Windows, so only os.Interrupt is watched.
func interruptContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, os.Interrupt)
}
