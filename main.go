package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"runtime/debug"
	"strings"
	"sync"
	"time"

	"dicto/audio"
	"dicto/beep"
	"dicto/clipboard"
	"dicto/config"
	"dicto/doctor"
	"dicto/encoder"
	"dicto/history"
	"dicto/hotkey"
	"dicto/log"
	"dicto/notify"
	"dicto/paste"
	"dicto/pipeline"
	"dicto/shutdown"
	"dicto/transcriber"
	"dicto/update"
)

var version = "dev"

var (
	shutdownOnce sync.Once
	runCountMu   sync.Mutex
	runCount     int
)

func gracefulShutdown() {
	shutdownOnce.Do(func() {
		runCountMu.Lock()
		n := runCount
		runCountMu.Unlock()
		if n > 0 {
			log.SessionEnd(n)
		}
		log.Close()
		if tuiProgram != nil {
			tuiProgram.Quit()
		}
		os.Exit(0)
	})
}

// clipboardDeliverer is the -autopaste=false delivery path: text lands on
// the clipboard only, no keystroke.
type clipboardDeliverer struct {
	clip     paste.Clipboard
	notifier notify.Notifier
}

func (d *clipboardDeliverer) Deliver(text string) error {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return nil
	}
	if err := d.clip.Copy(trimmed); err != nil {
		return err
	}
	if d.notifier != nil {
		d.notifier.Send("Copied to clipboard", paste.TruncateBody(trimmed))
	}
	return nil
}

func historyDir() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "dicto", "history"), nil
}

func run() {
	if len(os.Args) > 1 && os.Args[1] == "update" {
		runUpdateCommand()
		return
	}

	langFlag := flag.String("lang", "", "Language code for transcription (e.g. en, es, fr). Empty = config value")
	formatFlag := flag.String("format", "", "Upload format: wav or flac (empty = config value)")
	deviceFlag := flag.String("device", "", "Use named microphone device")
	setupFlag := flag.Bool("setup", false, "Select microphone device interactively")
	autoPasteFlag := flag.Bool("autopaste", true, "Paste into the focused window after transcription")
	validateFlag := flag.Bool("validate", false, "Validate the API key and exit")
	historyFlag := flag.Int("history", 0, "Print the N most recent transcriptions and exit")
	clearHistoryFlag := flag.Bool("clear-history", false, "Delete all stored transcriptions and exit")
	versionFlag := flag.Bool("version", false, "Print version and exit")
	doctorFlag := flag.Bool("doctor", false, "Run system diagnostics and exit")
	logPathFlag := flag.String("logpath", "", "log directory path (default: OS-specific location)")
	tuiFlag := flag.Bool("tui", true, "Run with terminal UI")
	flag.Parse()

	if *versionFlag {
		fmt.Printf("dicto %s\n", version)
		os.Exit(0)
	}

	logPath, err := log.ResolveDir(*logPathFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to resolve log directory: %v\n", err)
		os.Exit(1)
	}
	log.SetDir(logPath)
	if err := log.EnsureDir(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not create log directory: %v\n", err)
	}

	crashPath := filepath.Join(log.Dir(), "crash_log.txt")
	crashFile, err := os.OpenFile(crashPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err == nil {
		fmt.Fprintf(crashFile, "\n=== Session %s [pid=%d] ===\n", time.Now().Format("2006-01-02 15:04:05"), os.Getpid())
		debug.SetCrashOutput(crashFile, debug.CrashOptions{})
	}

	if *doctorFlag {
		os.Exit(doctor.Run())
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	language := cfg.Language
	if *langFlag != "" {
		language = *langFlag
	}
	format := cfg.UploadFormat
	if *formatFlag != "" {
		format = *formatFlag
	}
	switch format {
	case "wav", "flac":
	default:
		fmt.Printf("Error: unknown format %q (use wav or flac)\n", format)
		os.Exit(1)
	}

	client := transcriber.NewClient(cfg.BaseURL, cfg.Credentials(), format)

	if *validateFlag {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := client.Validate(ctx); err != nil {
			fmt.Printf("API key check failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("API key is valid.")
		os.Exit(0)
	}

	if *historyFlag > 0 || *clearHistoryFlag {
		runHistoryCommand(*historyFlag, *clearHistoryFlag)
		return
	}

	if err := log.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not init logging: %v\n", err)
	}
	log.SessionStart(language, format)

	if *autoPasteFlag {
		if err := clipboard.Init(); err != nil {
			fmt.Printf("Warning: paste init failed: %v\n", err)
			fmt.Println("Fix with: sudo chmod 660 /dev/uinput && sudo chgrp input /dev/uinput")
		}
	}

	audioCtx, err := audio.NewContext()
	if err != nil {
		log.Errorf("audio context init error: %v", err)
		fmt.Printf("Error initializing audio context: %v\n", err)
		os.Exit(1)
	}
	defer audioCtx.Close()

	deviceName := cfg.Device
	if *deviceFlag != "" {
		deviceName = *deviceFlag
	}
	var selectedDevice *audio.DeviceInfo
	if *setupFlag {
		selectedDevice, err = audio.SelectDevice(audioCtx)
		if err != nil {
			log.Warnf("device selection failed: %v", err)
			fmt.Printf("Warning: device selection failed: %v\n", err)
			fmt.Println("Falling back to default device")
		}
	} else if deviceName != "" {
		if devices, derr := audioCtx.Devices(); derr == nil {
			for i := range devices {
				if devices[i].Name == deviceName {
					selectedDevice = &devices[i]
					break
				}
			}
		}
		if selectedDevice == nil {
			log.Warnf("device not found, using default: %s", deviceName)
		}
	}

	captureDevice, err := audioCtx.NewCapture(selectedDevice, audio.CaptureConfig{
		SampleRate: encoder.SampleRate,
		Channels:   encoder.Channels,
	})
	if err != nil {
		log.Errorf("capture device init error: %v", err)
		fmt.Printf("Error initializing capture device: %v\n", err)
		os.Exit(1)
	}
	defer captureDevice.Close()

	session := audio.NewSession(captureDevice)
	notifier := notify.NewDesktop()

	var hist pipeline.History
	if dir, herr := historyDir(); herr == nil {
		if store, herr := history.Open(dir); herr == nil {
			defer store.Close()
			hist = store
		} else {
			log.Warnf("history store unavailable: %v", herr)
		}
	}

	clip, keys := paste.System()
	var deliverer pipeline.Deliverer
	if *autoPasteFlag && cfg.AutoPasteEnabled() {
		deliverer = paste.NewDispatcher(paste.NewFocus(), clip, keys, notifier, paste.Strategy(cfg.PasteStrategy))
	} else {
		deliverer = &clipboardDeliverer{clip: clip, notifier: notifier}
	}

	// Language comes from config at the start of every run, so edits to
	// the config file apply without a restart. The flag pins it.
	languageFn := func() string {
		if *langFlag != "" {
			return *langFlag
		}
		if fresh, cerr := config.Load(); cerr == nil {
			return fresh.Language
		}
		return language
	}

	controller := pipeline.NewController(pipeline.Options{
		Recorder:    session,
		Transcriber: client,
		Deliverer:   deliverer,
		Notifier:    notifier,
		History:     hist,
		Language:    languageFn,
	})
	defer controller.Close()

	if !*tuiFlag {
		tuiReadyOnce.Do(func() { close(tuiReady) })
	} else {
		tuiMu.Lock()
		tuiProgram = NewTUIProgram()
		tuiMu.Unlock()

		go func() {
			if _, err := tuiProgram.Run(); err != nil {
				log.Errorf("TUI error: %v", err)
				os.Exit(1)
			}
			gracefulShutdown()
		}()

		<-tuiReady
	}

	go beep.Init()
	go observeChanges(controller)

	update.StartBackgroundCheck(version, log.Dir(), func(rel update.Release) {
		log.Info("update_available: " + rel.Version)
		tuiSend(UpdateAvailableMsg{Version: rel.Version})
	})

	hk := hotkey.New()
	if err := hk.Register(); err != nil {
		log.Errorf("hotkey register error: %v", err)
		fmt.Printf("Error registering hotkey: %v\n", err)
		os.Exit(1)
	}
	defer hk.Unregister()

	toggle := hotkey.NewToggle(hk)
	defer toggle.Close()

	sigChan := make(chan os.Signal, 1)
	shutdown.Notify(sigChan)

	tuiSend(ModeLineMsg{Text: modeLineText(language, format)})
	tuiSend(DeviceLineMsg{Text: deviceLineText(selectedDevice)})

	for {
		select {
		case <-toggle.Events():
			controller.Toggle()
		case <-sigChan:
			gracefulShutdown()
		}
	}
}

// observeChanges fans pipeline transitions out to sound cues and the TUI.
func observeChanges(c *pipeline.Controller) {
	for change := range c.Changes() {
		switch change.To {
		case pipeline.StateRecording:
			go beep.PlayStart()
		case pipeline.StateTranscribing:
			go beep.PlayEnd()
		case pipeline.StateError:
			go beep.PlayError()
		case pipeline.StateIdle:
			if change.From == pipeline.StateTranscribing {
				runCountMu.Lock()
				runCount++
				runCountMu.Unlock()
			}
		}
		tuiSend(StateMsg{State: change.To, Err: change.Err})
	}
}

func modeLineText(language, format string) string {
	if language == "" || language == transcriber.LanguageAuto {
		language = "auto"
	}
	return fmt.Sprintf("[%s | %s (%s)]", format, transcriber.Model, language)
}

func deviceLineText(dev *audio.DeviceInfo) string {
	name := "system default"
	if dev != nil {
		name = dev.Name
	}
	return "mic: " + name
}

func runHistoryCommand(n int, clear bool) {
	dir, err := historyDir()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	store, err := history.Open(dir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening history: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()

	if clear {
		if err := store.Clear(); err != nil {
			fmt.Fprintf(os.Stderr, "Error clearing history: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("History cleared.")
		return
	}

	entries, err := store.Recent(n)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading history: %v\n", err)
		os.Exit(1)
	}
	if len(entries) == 0 {
		fmt.Println("No transcriptions stored.")
		return
	}
	for _, e := range entries {
		fmt.Printf("%s  (%.1fs)\n  %s\n", e.CreatedAt.Format("2006-01-02 15:04:05"), e.AudioSeconds, e.Text)
	}
}

func runUpdateCommand() {
	if version == "dev" {
		fmt.Println("Dev build — cannot check for updates.")
		os.Exit(0)
	}
	fmt.Printf("dicto %s — checking for updates...\n", version)
	rel, err := update.CheckLatest(version)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
	if rel == nil {
		fmt.Println("Already up to date.")
		os.Exit(0)
	}
	fmt.Printf("Update available: %s -> %s\n", version, rel.Version)
	fmt.Print("Continue? [y/N] ")
	var answer string
	fmt.Scanln(&answer)
	if answer != "y" && answer != "Y" {
		fmt.Println("Aborted.")
		os.Exit(0)
	}
	fmt.Printf("Downloading %s...\n", rel.Version)
	if err := update.Apply(rel); err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Updated to %s\n", rel.Version)
	os.Exit(0)
}
