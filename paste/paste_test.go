package paste

import (
	"errors"
	"strings"
	"testing"
	"time"

	"dicto/notify"
)

func newTestDispatcher(focus *FakeFocus, strategy Strategy) (*Dispatcher, *FakeClipboard, *FakeKeystroke, *notify.Fake) {
	clip := &FakeClipboard{}
	keys := &FakeKeystroke{}
	notifier := notify.NewFakeNotifier()
	d := NewDispatcher(focus, clip, keys, notifier, strategy)
	d.sleep = func(time.Duration) {}
	return d, clip, keys, notifier
}

func TestDeliverSmartSpacing(t *testing.T) {
	for _, tt := range []struct {
		name   string
		prefix string
		text   string
		want   string
	}{
		{"after word", "Say:", "hello world", " hello world"},
		{"after space", "Say: ", "hello world", "hello world"},
		{"after newline", "line one\n", "hello", "hello"},
		{"empty field", "", "hello", "hello"},
		{"trims input", "Say:", "  hello  ", " hello"},
	} {
		t.Run(tt.name, func(t *testing.T) {
			d, clip, keys, _ := newTestDispatcher(&FakeFocus{Prefix: tt.prefix, Focused: true}, StrategyFocus)
			if err := d.Deliver(tt.text); err != nil {
				t.Fatalf("Deliver: %v", err)
			}
			if len(clip.Copied) != 1 || clip.Copied[0] != tt.want {
				t.Errorf("copied = %q, want [%q]", clip.Copied, tt.want)
			}
			if keys.Pastes != 1 {
				t.Errorf("pastes = %d, want 1", keys.Pastes)
			}
		})
	}
}

func TestDeliverEmptyIsNoOp(t *testing.T) {
	for _, text := range []string{"", "   ", "\n\t "} {
		d, clip, keys, notifier := newTestDispatcher(&FakeFocus{Focused: true}, StrategyFocus)
		if err := d.Deliver(text); err != nil {
			t.Fatalf("Deliver(%q): %v", text, err)
		}
		if len(clip.Copied) != 0 {
			t.Errorf("Deliver(%q) touched the clipboard: %q", text, clip.Copied)
		}
		if keys.Pastes != 0 || len(notifier.Sent()) != 0 {
			t.Errorf("Deliver(%q) sent keystroke or notification", text)
		}
	}
}

func TestDeliverNoFocusFallsBackToClipboard(t *testing.T) {
	d, clip, keys, notifier := newTestDispatcher(&FakeFocus{Focused: false}, StrategyFocus)
	if err := d.Deliver("  hello  "); err != nil {
		t.Fatalf("Deliver: %v", err)
	}
	if len(clip.Copied) != 1 || clip.Copied[0] != "hello" {
		t.Errorf("copied = %q, want trimmed [hello]", clip.Copied)
	}
	if keys.Pastes != 0 {
		t.Errorf("pastes = %d, want 0 without focus", keys.Pastes)
	}
	sent := notifier.Sent()
	if len(sent) != 1 {
		t.Fatalf("notifications = %d, want 1", len(sent))
	}
	if !strings.Contains(sent[0].Body, "hello") {
		t.Errorf("notification body = %q, want the transcript", sent[0].Body)
	}
}

func TestDeliverKeystrokeFailureNotifies(t *testing.T) {
	d, clip, keys, notifier := newTestDispatcher(&FakeFocus{Focused: true}, StrategyFocus)
	keys.Err = errors.New("uinput denied")

	if err := d.Deliver("hello"); err != nil {
		t.Fatalf("Deliver: %v", err)
	}
	if len(clip.Copied) != 1 {
		t.Errorf("copied = %q, want text on clipboard", clip.Copied)
	}
	sent := notifier.Sent()
	if len(sent) != 1 {
		t.Fatalf("notifications = %d, want fallback notification", len(sent))
	}
	if !strings.Contains(sent[0].Body, "hello") {
		t.Errorf("notification body = %q, want the transcript", sent[0].Body)
	}
}

func TestTruncateBody(t *testing.T) {
	long := strings.Repeat("a", 300)
	got := TruncateBody(long)
	if len([]rune(got)) != fallbackBodyLimit+1 {
		t.Errorf("truncated length = %d, want %d", len([]rune(got)), fallbackBodyLimit+1)
	}
	if short := TruncateBody("hello"); short != "hello" {
		t.Errorf("short text changed: %q", short)
	}
}

func TestDeliverClipboardErrorPropagates(t *testing.T) {
	d, clip, keys, _ := newTestDispatcher(&FakeFocus{Focused: true}, StrategyFocus)
	clip.Err = errors.New("no clipboard")

	if err := d.Deliver("hello"); err == nil {
		t.Fatal("want error when clipboard write fails")
	}
	if keys.Pastes != 0 {
		t.Error("keystroke sent after clipboard failure")
	}
}

func TestDeliverAlwaysStrategySkipsFocusCheck(t *testing.T) {
	d, clip, keys, _ := newTestDispatcher(&FakeFocus{Focused: false}, StrategyAlways)
	if err := d.Deliver("hello"); err != nil {
		t.Fatalf("Deliver: %v", err)
	}
	if len(clip.Copied) != 1 || clip.Copied[0] != "hello" {
		t.Errorf("copied = %q", clip.Copied)
	}
	if keys.Pastes != 1 {
		t.Errorf("pastes = %d, want 1 regardless of focus", keys.Pastes)
	}
}
