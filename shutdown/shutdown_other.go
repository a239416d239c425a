//go:build !windows

// Package shutdown registers the signals that end a dictation session.
package shutdown

import (
	"os"
	"os/signal"
	"syscall"
)

// Notify forwards termination signals to ch. SIGHUP is included so a
// closed terminal still runs the graceful shutdown path.
func Notify(ch chan os.Signal) {
	signal.Notify(ch, os.Interrupt, syscall.SIGTERM, syscall.SIGHUP)
}
