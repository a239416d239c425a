package audio

import (
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	"dicto/encoder"
)

// Artifact is the recording a finished capture session produced. It is
// owned by exactly one pipeline run and removed when that run resolves.
type Artifact struct {
	ID         uuid.UUID
	Path       string
	Size       int64
	Duration   time.Duration
	SampleRate uint32
	Channels   uint16
}

// Remove deletes the artifact file. Safe to call more than once.
func (a *Artifact) Remove() {
	if a != nil && a.Path != "" {
		os.Remove(a.Path)
	}
}

// Session records microphone audio into a uniquely named WAV artifact.
// Start and Stop pair up around one recording; Stop is idempotent and
// returns nil rather than an error when there is nothing to transcribe.
type Session struct {
	capture CaptureDevice
	tempDir string

	mu        sync.Mutex
	recording bool
	id        uuid.UUID
	path      string
	writer    *wavWriter
	writeErr  error
}

func NewSession(capture CaptureDevice) *Session {
	return &Session{
		capture: capture,
		tempDir: os.TempDir(),
	}
}

func (s *Session) Start() error {
	s.mu.Lock()
	if s.recording {
		s.mu.Unlock()
		return nil
	}

	id := uuid.New()
	path := filepath.Join(s.tempDir, "recording-"+id.String()+".wav")

	w, err := newWAVWriter(path, encoder.SampleRate, encoder.Channels)
	if err != nil {
		s.mu.Unlock()
		return err
	}

	s.capture.SetCallback(func(data []byte, _ uint32) {
		s.mu.Lock()
		defer s.mu.Unlock()
		if !s.recording || s.writeErr != nil {
			return
		}
		if err := s.writer.Write(data); err != nil {
			s.writeErr = err
		}
	})

	s.id = id
	s.path = path
	s.writer = w
	s.writeErr = nil
	s.recording = true
	s.mu.Unlock()

	if err := s.capture.Start(); err != nil {
		s.capture.ClearCallback()
		s.mu.Lock()
		s.recording = false
		s.writer = nil
		s.mu.Unlock()
		w.Finalize()
		os.Remove(path)
		return err
	}
	return nil
}

// Stop finalizes the in-flight recording and returns its artifact, or nil
// when not recording or when the recording came out empty.
func (s *Session) Stop() *Artifact {
	s.mu.Lock()
	if !s.recording {
		s.mu.Unlock()
		return nil
	}
	s.mu.Unlock()

	// Stop the device outside the lock: the data callback takes it.
	s.capture.Stop()
	s.capture.ClearCallback()

	s.mu.Lock()
	defer s.mu.Unlock()

	s.recording = false
	writer := s.writer
	s.writer = nil

	dataBytes, err := writer.Finalize()
	if err != nil || s.writeErr != nil || dataBytes == 0 {
		os.Remove(s.path)
		return nil
	}

	info, err := os.Stat(s.path)
	if err != nil || info.Size() <= WAVHeaderSize {
		os.Remove(s.path)
		return nil
	}

	frames := uint64(dataBytes) / 2
	return &Artifact{
		ID:         s.id,
		Path:       s.path,
		Size:       info.Size(),
		Duration:   time.Duration(float64(frames) / float64(encoder.SampleRate) * float64(time.Second)),
		SampleRate: encoder.SampleRate,
		Channels:   encoder.Channels,
	}
}
