// Package doctor runs interactive system diagnostics: hotkey access,
// microphone capture, API credential, clipboard, and paste keystroke.
package doctor

import (
	"context"
	"fmt"
	"sync"
	"time"

	"dicto/audio"
	"dicto/clipboard"
	"dicto/config"
	"dicto/encoder"
	"dicto/hotkey"
	"dicto/transcriber"
)

// Run executes the checks and returns an exit code (0=all pass, 1=any fail).
func Run() int {
	resetTerminal()
	setupInterruptHandler()

	fmt.Println("dicto doctor - system diagnostics")
	fmt.Println("=================================")

	allPass := true
	for _, check := range []func() bool{
		checkHotkey,
		checkMicrophone,
		checkCredential,
		checkClipboard,
		checkPaste,
	} {
		if !check() {
			allPass = false
		}
	}

	fmt.Println()
	if allPass {
		fmt.Println("All checks passed!")
		return 0
	}
	fmt.Println("Some checks failed. See details above.")
	return 1
}

func checkHotkey() bool {
	fmt.Println()
	fmt.Println("[1/5] Hotkey access")

	msg, err := hotkey.Diagnose()
	if err != nil {
		fmt.Printf("  FAIL: %v\n", err)
		return false
	}
	fmt.Printf("  PASS: %s\n", msg)
	return true
}

func checkMicrophone() bool {
	fmt.Println()
	fmt.Println("[2/5] Microphone capture")

	ctx, err := audio.NewContext()
	if err != nil {
		fmt.Printf("  FAIL: cannot connect to audio: %v\n", err)
		return false
	}
	defer ctx.Close()

	devices, err := ctx.Devices()
	if err != nil {
		fmt.Printf("  FAIL: cannot list devices: %v\n", err)
		return false
	}
	if len(devices) == 0 {
		fmt.Println("  FAIL: no capture devices found")
		return false
	}
	fmt.Printf("  Found %d capture device(s), recording 2s from default...\n", len(devices))

	captured, err := recordSample(ctx, 2*time.Second)
	if err != nil {
		fmt.Printf("  FAIL: recording error: %v\n", err)
		return false
	}
	if captured == 0 {
		fmt.Println("  FAIL: no audio captured")
		return false
	}
	fmt.Printf("  PASS: captured %.1f KB\n", float64(captured)/1024)
	return true
}

func recordSample(ctx audio.Context, dur time.Duration) (int, error) {
	capture, err := ctx.NewCapture(nil, audio.CaptureConfig{
		SampleRate: encoder.SampleRate,
		Channels:   encoder.Channels,
	})
	if err != nil {
		return 0, err
	}
	defer capture.Close()

	var mu sync.Mutex
	var captured int
	capture.SetCallback(func(data []byte, _ uint32) {
		mu.Lock()
		captured += len(data)
		mu.Unlock()
	})

	if err := capture.Start(); err != nil {
		capture.ClearCallback()
		return 0, err
	}
	time.Sleep(dur)
	capture.Stop()
	capture.ClearCallback()

	mu.Lock()
	defer mu.Unlock()
	return captured, nil
}

func checkCredential() bool {
	fmt.Println()
	fmt.Println("[3/5] API credential")

	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("  FAIL: config load: %v\n", err)
		return false
	}

	client := transcriber.NewClient(cfg.BaseURL, cfg.Credentials(), cfg.UploadFormat)
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := client.Validate(ctx); err != nil {
		fmt.Printf("  FAIL: %v\n", err)
		fmt.Println("  Set GROQ_API_KEY or point api_key_file at a key file.")
		return false
	}
	fmt.Println("  PASS: API key accepted")
	return true
}

func checkClipboard() bool {
	fmt.Println()
	fmt.Println("[4/5] Clipboard")

	testStr := fmt.Sprintf("dicto-doctor-%d", time.Now().UnixNano())

	type cbResult struct {
		readback string
		err      error
		phase    string
	}
	ch := make(chan cbResult, 1)
	go func() {
		if err := clipboard.Copy(testStr); err != nil {
			ch <- cbResult{err: err, phase: "write"}
			return
		}
		got, err := clipboard.Read()
		if err != nil {
			ch <- cbResult{err: err, phase: "read"}
			return
		}
		ch <- cbResult{readback: got}
	}()

	select {
	case res := <-ch:
		if res.err != nil {
			fmt.Printf("  FAIL: clipboard %s failed: %v\n", res.phase, res.err)
			return false
		}
		if res.readback != testStr {
			fmt.Printf("  FAIL: clipboard mismatch: wrote %q, got %q\n", testStr, res.readback)
			return false
		}
		fmt.Println("  PASS: clipboard write/read verified")
		return true
	case <-time.After(3 * time.Second):
		fmt.Println("  FAIL: clipboard timed out (clipboard tool hung?)")
		return false
	}
}

func checkPaste() bool {
	fmt.Println()
	fmt.Println("[5/5] Paste keystroke")

	if err := clipboard.Init(); err != nil {
		fmt.Printf("  FAIL: %v\n", err)
		fmt.Println("  Fix with: sudo chmod 660 /dev/uinput && sudo chgrp input /dev/uinput")
		return false
	}

	msg, err := clipboard.Verify()
	if err != nil {
		fmt.Printf("  FAIL: %v\n", err)
		return false
	}
	fmt.Printf("  PASS: %s\n", msg)
	return true
}
