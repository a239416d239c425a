//go:build linux

package hotkey

import (
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

const (
	evKey      = 1
	keyPress   = 1
	keyRelease = 0
	keyLCtrl   = 29
	keyRCtrl   = 97
	keyLShift  = 42
	keyRShift  = 54
	keySpace   = 57
)

const inputEventSize = 24

// evdevHotkey reads raw key events from every keyboard device and tracks
// the chord state per device.
type evdevHotkey struct {
	keydown chan struct{}
	keyup   chan struct{}
	files   []*os.File
	stop    chan struct{}
	once    sync.Once
}

func New() Hotkey {
	return &evdevHotkey{
		keydown: make(chan struct{}, 1),
		keyup:   make(chan struct{}, 1),
	}
}

func (h *evdevHotkey) Register() error {
	keyboards, err := findKeyboards()
	if err != nil {
		return fmt.Errorf("finding keyboards: %w", err)
	}
	if len(keyboards) == 0 {
		return fmt.Errorf("no keyboard devices found (is user in 'input' group?)")
	}

	h.stop = make(chan struct{})

	for _, path := range keyboards {
		f, err := os.Open(path)
		if err != nil {
			continue
		}
		h.files = append(h.files, f)
		go h.readEvents(f)
	}

	if len(h.files) == 0 {
		return fmt.Errorf("could not open any keyboard device (run: sudo usermod -aG input $USER, then re-login)")
	}

	return nil
}

type chordState struct {
	ctrl, shift, space bool
}

func (h *evdevHotkey) readEvents(f *os.File) {
	buf := make([]byte, inputEventSize*16)
	var state chordState

	for {
		select {
		case <-h.stop:
			return
		default:
		}

		n, err := f.Read(buf)
		if err != nil {
			return
		}

		for i := 0; i+inputEventSize <= n; i += inputEventSize {
			evType := binary.LittleEndian.Uint16(buf[i+16:])
			evCode := binary.LittleEndian.Uint16(buf[i+18:])
			evValue := int32(binary.LittleEndian.Uint32(buf[i+20:]))

			if evType != evKey {
				continue
			}
			h.applyEvent(&state, evCode, evValue)
		}
	}
}

func (h *evdevHotkey) applyEvent(state *chordState, code uint16, value int32) {
	pressed := value == keyPress
	released := value == keyRelease

	switch code {
	case keyLCtrl, keyRCtrl:
		state.ctrl = pressed || (!released && state.ctrl)
	case keyLShift, keyRShift:
		state.shift = pressed || (!released && state.shift)
	case keySpace:
		if pressed && !state.space && state.ctrl && state.shift {
			state.space = true
			select {
			case h.keydown <- struct{}{}:
			default:
			}
		} else if released && state.space {
			state.space = false
			select {
			case h.keyup <- struct{}{}:
			default:
			}
		}
	}
}

func (h *evdevHotkey) Unregister() {
	h.once.Do(func() {
		if h.stop != nil {
			close(h.stop)
		}
		for _, f := range h.files {
			f.Close()
		}
	})
}

func (h *evdevHotkey) Keydown() <-chan struct{} {
	return h.keydown
}

func (h *evdevHotkey) Keyup() <-chan struct{} {
	return h.keyup
}

func findKeyboards() ([]string, error) {
	entries, err := os.ReadDir("/dev/input")
	if err != nil {
		return nil, err
	}

	var keyboards []string
	for _, e := range entries {
		if !strings.HasPrefix(e.Name(), "event") {
			continue
		}
		if isKeyboard(e.Name()) {
			keyboards = append(keyboards, filepath.Join("/dev/input", e.Name()))
		}
	}
	return keyboards, nil
}

// isKeyboard checks the key capability bitmap; real keyboards advertise a
// long one.
func isKeyboard(eventName string) bool {
	capsPath := filepath.Join("/sys/class/input", eventName, "device", "capabilities", "key")
	data, err := os.ReadFile(capsPath)
	if err != nil {
		return false
	}
	return len(strings.TrimSpace(string(data))) > 10
}

// Diagnose reports whether keyboard devices can be scanned and opened.
func Diagnose() (string, error) {
	keyboards, err := findKeyboards()
	if err != nil {
		return "", fmt.Errorf("cannot scan input devices: %w", err)
	}
	if len(keyboards) == 0 {
		return "", fmt.Errorf("no keyboard devices found (is user in 'input' group?)")
	}

	var opened string
	for _, path := range keyboards {
		f, err := os.Open(path)
		if err == nil {
			f.Close()
			opened = path
			break
		}
	}
	if opened == "" {
		return "", fmt.Errorf("found %d keyboard(s) but cannot open any (run: sudo usermod -aG input $USER)", len(keyboards))
	}

	return fmt.Sprintf("%d keyboard(s) found, opened %s", len(keyboards), opened), nil
}
