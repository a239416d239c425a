//go:build !linux

package clipboard

import (
	"runtime"
	"sync"

	"github.com/micmonay/keybd_event"
)

var (
	kb     keybd_event.KeyBonding
	kbOnce sync.Once
	kbErr  error
)

func Init() error {
	kbOnce.Do(func() {
		kb, kbErr = keybd_event.NewKeyBonding()
	})
	return kbErr
}

func CanPaste() bool {
	return Init() == nil
}

// Paste sends the platform paste chord, Cmd+V on macOS and Ctrl+V elsewhere.
func Paste() error {
	if err := Init(); err != nil {
		return err
	}
	kb.SetKeys(keybd_event.VK_V)
	if runtime.GOOS == "darwin" {
		kb.HasSuper(true)
	} else {
		kb.HasCTRL(true)
	}
	return kb.Launching()
}

// Verify checks that the keyboard event binding is initialized.
func Verify() (string, error) {
	if err := Init(); err != nil {
		return "", err
	}
	return "keyboard event binding OK", nil
}
