// Package notify delivers desktop notifications and rate-limits repeated
// failure alerts per error category.
package notify

const appName = "dicto"

// Notifier posts a desktop notification.
type Notifier interface {
	Send(title, body string) error
}
