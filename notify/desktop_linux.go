//go:build linux

package notify

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

const notifyTimeout = 3 * time.Second

// Desktop sends freedesktop notifications over DBus via busctl.
type Desktop struct{}

func NewDesktop() *Desktop {
	return &Desktop{}
}

func (d *Desktop) Send(title, body string) error {
	ctx, cancel := context.WithTimeout(context.Background(), notifyTimeout)
	defer cancel()

	args := []string{
		"--user",
		"call",
		"org.freedesktop.Notifications",
		"/org/freedesktop/Notifications",
		"org.freedesktop.Notifications",
		"Notify",
		"susssasa{sv}i",
		appName,
		"0",
		"",
		title,
		body,
		"0", // actions array length
		"0", // hints map length
		"5000",
	}

	out, err := exec.CommandContext(ctx, "busctl", args...).CombinedOutput()
	if err != nil {
		trimmed := strings.TrimSpace(string(out))
		if trimmed == "" {
			return fmt.Errorf("desktop notify failed: %w", err)
		}
		return fmt.Errorf("desktop notify failed: %w (%s)", err, trimmed)
	}
	return nil
}
