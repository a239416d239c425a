// Package paste delivers transcribed text into the focused application
// through the clipboard and a synthetic paste keystroke.
package paste

import (
	"strings"
	"time"
	"unicode"

	"dicto/clipboard"
	"dicto/log"
	"dicto/notify"
)

// SettleDelay is the pause between the clipboard write and the synthetic
// keystroke, giving the clipboard manager time to pick up the new content.
const SettleDelay = 150 * time.Millisecond

// Strategy selects how delivery decides between keystroke and clipboard.
type Strategy string

const (
	// StrategyFocus checks for a focused editable target first and falls
	// back to clipboard-only delivery when none is found.
	StrategyFocus Strategy = "focus"
	// StrategyAlways sends the keystroke unconditionally.
	StrategyAlways Strategy = "always"
)

// Focus inspects the focused UI element. TextBeforeCursor returns the text
// preceding the cursor in the focused editable element; ok is false when
// no editable element has focus.
type Focus interface {
	TextBeforeCursor() (string, bool)
}

// Clipboard is the subset of clipboard operations delivery needs.
type Clipboard interface {
	Copy(text string) error
}

// Keystroke sends the platform paste chord.
type Keystroke interface {
	Paste() error
}

// Dispatcher owns the delivery protocol for one transcription result.
type Dispatcher struct {
	focus    Focus
	clip     Clipboard
	keys     Keystroke
	notifier notify.Notifier
	strategy Strategy
	sleep    func(time.Duration)
}

func NewDispatcher(focus Focus, clip Clipboard, keys Keystroke, notifier notify.Notifier, strategy Strategy) *Dispatcher {
	if strategy == "" {
		strategy = StrategyFocus
	}
	return &Dispatcher{
		focus:    focus,
		clip:     clip,
		keys:     keys,
		notifier: notifier,
		strategy: strategy,
		sleep:    time.Sleep,
	}
}

// Deliver pushes text to the user. Empty or whitespace-only text is a
// no-op that leaves the clipboard untouched. When a focused editable
// element is found the text is pasted with smart spacing; otherwise it
// lands on the clipboard with a notification and no keystroke is sent.
func (d *Dispatcher) Deliver(text string) error {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return nil
	}

	out := trimmed
	if d.strategy == StrategyFocus {
		prefix, focused := d.focus.TextBeforeCursor()
		if !focused {
			if err := d.clip.Copy(trimmed); err != nil {
				return err
			}
			d.notifyFallback(trimmed)
			return nil
		}
		if needsLeadingSpace(prefix) {
			out = " " + trimmed
		}
	}

	if err := d.clip.Copy(out); err != nil {
		return err
	}

	d.sleep(SettleDelay)

	if err := d.keys.Paste(); err != nil {
		log.Warnf("paste keystroke failed, falling back to clipboard: %v", err)
		d.notifyFallback(trimmed)
	}
	return nil
}

// fallbackBodyLimit caps the transcript length shown in the fallback
// notification; the full text is already on the clipboard.
const fallbackBodyLimit = 200

// notifyFallback shows the transcript so the text is never silently lost
// when the keystroke path is unavailable. The notification is
// informational: the clipboard write has already happened.
func (d *Dispatcher) notifyFallback(text string) {
	if d.notifier == nil {
		log.Warnf("no notification surface, transcript on clipboard: %s", text)
		return
	}
	if err := d.notifier.Send("Copied to clipboard", TruncateBody(text)); err != nil {
		log.Warnf("fallback notification failed: %v", err)
		log.Info("transcript on clipboard: " + text)
	}
}

// TruncateBody shortens text to fit a notification body.
func TruncateBody(text string) string {
	runes := []rune(text)
	if len(runes) <= fallbackBodyLimit {
		return text
	}
	return string(runes[:fallbackBodyLimit]) + "…"
}

// needsLeadingSpace reports whether pasted text should be separated from
// the text already before the cursor.
func needsLeadingSpace(prefix string) bool {
	if prefix == "" {
		return false
	}
	runes := []rune(prefix)
	return !unicode.IsSpace(runes[len(runes)-1])
}

// System wires the real clipboard and keystroke backends.
func System() (Clipboard, Keystroke) {
	return systemClipboard{}, systemKeystroke{}
}

type systemClipboard struct{}

func (systemClipboard) Copy(text string) error { return clipboard.Copy(text) }

type systemKeystroke struct{}

func (systemKeystroke) Paste() error { return clipboard.Paste() }
