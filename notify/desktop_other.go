//go:build !linux

package notify

import (
	"fmt"
	"os/exec"
	"runtime"

	"dicto/log"
)

// Desktop sends native notifications where a mechanism exists and falls
// back to the diagnostics log elsewhere.
type Desktop struct{}

func NewDesktop() *Desktop {
	return &Desktop{}
}

func (d *Desktop) Send(title, body string) error {
	if runtime.GOOS == "darwin" {
		script := fmt.Sprintf("display notification %q with title %q", body, title)
		return exec.Command("osascript", "-e", script).Run()
	}
	log.Warnf("notification (no desktop surface): %s: %s", title, body)
	return nil
}
