//go:build !windows

package doctor

import (
	"fmt"
	"os"
	"os/exec"
	"os/signal"
	"syscall"
)

// The microphone check reads raw input, so put the terminal back into a
// sane state before printing results.
func resetTerminal() {
	exec.Command("stty", "sane").Run()
}

func setupInterruptHandler() {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		resetTerminal()
		fmt.Fprintln(os.Stderr, "\ndiagnostics interrupted")
		os.Exit(1)
	}()
}
