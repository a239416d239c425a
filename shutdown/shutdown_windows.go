//go:build windows

// Package shutdown registers the signals that end a dictation session.
package shutdown

import (
	"os"
	"os/signal"
)

func Notify(ch chan os.Signal) {
	signal.Notify(ch, os.Interrupt)
}
