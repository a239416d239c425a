//go:build windows

package doctor

import (
	"fmt"
	"os"
	"os/signal"
)

func resetTerminal() {}

func setupInterruptHandler() {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt)
	go func() {
		<-sigChan
		fmt.Fprintln(os.Stderr, "\ndiagnostics interrupted")
		os.Exit(1)
	}()
}
