package log

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

var (
	diagLog        zerolog.Logger
	diagFile       *os.File
	transcribeFile *os.File
	logMu          sync.Mutex
	logReady       bool
	pid            int
	dir            string
)

// RunMetrics is the per-pipeline-run summary written to the diagnostics log.
type RunMetrics struct {
	AudioLengthS float64
	PayloadKB    float64
	Format       string
	DNSTimeMs    float64
	TLSTimeMs    float64
	TTFBMs       float64
	TotalTimeMs  float64
	StatusCode   int
	ConnReused   bool
}

func ResolveDir(flagPath string) (string, error) {
	// Priority 1: -logpath flag
	if flagPath != "" {
		if !filepath.IsAbs(flagPath) {
			wd, err := os.Getwd()
			if err != nil {
				return "", err
			}
			return filepath.Join(wd, flagPath), nil
		}
		return flagPath, nil
	}

	// Priority 2: DICTO_LOG_PATH environment variable
	envPath := os.Getenv("DICTO_LOG_PATH")
	if envPath != "" {
		if !filepath.IsAbs(envPath) {
			wd, err := os.Getwd()
			if err != nil {
				return "", err
			}
			return filepath.Join(wd, envPath), nil
		}
		return envPath, nil
	}

	// Priority 3: Default OS-specific location
	return getDefaultDir()
}

func SetDir(d string) {
	dir = d
}

func Dir() string {
	return dir
}

func EnsureDir() error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create log directory: %w", err)
	}
	return nil
}

func Init() error {
	logMu.Lock()
	defer logMu.Unlock()

	if err := EnsureDir(); err != nil {
		return err
	}

	pid = os.Getpid()

	var err error

	diagPath := filepath.Join(dir, "diagnostics_log.txt")
	diagFile, err = os.OpenFile(diagPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}

	transcribePath := filepath.Join(dir, "transcribe_log.txt")
	transcribeFile, err = os.OpenFile(transcribePath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		diagFile.Close()
		return err
	}

	consoleWriter := zerolog.ConsoleWriter{
		Out:        diagFile,
		TimeFormat: "2006-01-02 15:04:05",
		NoColor:    true,
	}
	diagLog = zerolog.New(consoleWriter).With().Timestamp().Int("pid", pid).Logger()

	logReady = true
	return nil
}

func Close() {
	logMu.Lock()
	defer logMu.Unlock()
	if diagFile != nil {
		diagFile.Close()
		diagFile = nil
	}
	if transcribeFile != nil {
		transcribeFile.Close()
		transcribeFile = nil
	}
	logReady = false
}

func Info(msg string) {
	if logReady {
		diagLog.Info().Msg(msg)
	}
}

func Error(msg string) {
	if logReady {
		diagLog.Error().Msg(msg)
	}
}

func Errorf(format string, args ...any) {
	if logReady {
		diagLog.Error().Msg(fmt.Sprintf(format, args...))
	}
}

func Warn(msg string) {
	if logReady {
		diagLog.Warn().Msg(msg)
	}
}

func Warnf(format string, args ...any) {
	if logReady {
		diagLog.Warn().Msg(fmt.Sprintf(format, args...))
	}
}

// StateChange records a pipeline state transition.
func StateChange(runID, state string) {
	if !logReady {
		return
	}
	diagLog.Info().
		Str("run", runID).
		Str("state", state).
		Msg("pipeline_state")
}

// Transcription records the per-run upload metrics after a transcription call.
func Transcription(runID string, m RunMetrics) {
	if !logReady {
		return
	}

	connStatus := "new"
	if m.ConnReused {
		connStatus = "reused"
	}

	diagLog.Info().
		Str("run", runID).
		Str("format", m.Format).
		Str("conn", connStatus).
		Int("status", m.StatusCode).
		Float64("audio_s", m.AudioLengthS).
		Float64("payload_kb", m.PayloadKB).
		Float64("dns_ms", m.DNSTimeMs).
		Float64("tls_ms", m.TLSTimeMs).
		Float64("ttfb_ms", m.TTFBMs).
		Float64("total_ms", m.TotalTimeMs).
		Msg("transcription")
}

func TranscriptionText(text string) {
	if !logReady {
		return
	}
	logMu.Lock()
	defer logMu.Unlock()
	line := fmt.Sprintf("%s\t[%d]\t%s\n", time.Now().Format("2006-01-02 15:04:05"), pid, text)
	transcribeFile.WriteString(line)
}

func SessionStart(language, format string) {
	if !logReady {
		return
	}
	diagLog.Info().
		Str("language", language).
		Str("format", format).
		Msg("session_start")
}

func SessionEnd(count int) {
	if !logReady {
		return
	}
	diagLog.Info().
		Int("count", count).
		Msg("session_end")
}
