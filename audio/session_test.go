package audio

import (
	"encoding/binary"
	"errors"
	"os"
	"testing"
	"time"

	"dicto/encoder"
)

func fakePCM(seconds float64) []byte {
	n := int(seconds * encoder.SampleRate)
	pcm := make([]byte, n*2)
	for i := 0; i < n; i++ {
		binary.LittleEndian.PutUint16(pcm[i*2:], uint16(i%1000))
	}
	return pcm
}

func newTestSession(t *testing.T, pcm []byte) (*Session, *FakeCapture) {
	t.Helper()
	cap := &FakeCapture{pcm: pcm}
	s := NewSession(cap)
	s.tempDir = t.TempDir()
	return s, cap
}

func TestSessionStartStop(t *testing.T) {
	s, _ := newTestSession(t, fakePCM(2.0))

	if err := s.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}

	art := s.Stop()
	if art == nil {
		t.Fatal("Stop returned nil, want artifact")
	}
	t.Cleanup(art.Remove)

	info, err := os.Stat(art.Path)
	if err != nil {
		t.Fatalf("artifact file missing: %v", err)
	}
	wantSize := int64(WAVHeaderSize + 2*2*encoder.SampleRate)
	if info.Size() != wantSize {
		t.Errorf("artifact size = %d, want %d", info.Size(), wantSize)
	}
	if art.Size != wantSize {
		t.Errorf("Artifact.Size = %d, want %d", art.Size, wantSize)
	}
	if art.Duration != 2*time.Second {
		t.Errorf("Duration = %v, want 2s", art.Duration)
	}
	if art.SampleRate != encoder.SampleRate {
		t.Errorf("SampleRate = %d, want %d", art.SampleRate, encoder.SampleRate)
	}
}

func TestSessionStopIdempotent(t *testing.T) {
	s, _ := newTestSession(t, fakePCM(0.5))

	if err := s.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}

	first := s.Stop()
	if first == nil {
		t.Fatal("first Stop returned nil")
	}
	t.Cleanup(first.Remove)

	if second := s.Stop(); second != nil {
		t.Errorf("second Stop = %+v, want nil", second)
	}
}

func TestSessionStopWithoutStart(t *testing.T) {
	s, _ := newTestSession(t, nil)
	if art := s.Stop(); art != nil {
		t.Errorf("Stop without Start = %+v, want nil", art)
	}
}

func TestSessionEmptyRecordingDiscarded(t *testing.T) {
	s, _ := newTestSession(t, nil)

	if err := s.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}

	if art := s.Stop(); art != nil {
		t.Errorf("Stop = %+v, want nil for empty recording", art)
	}

	entries, err := os.ReadDir(s.tempDir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Errorf("empty artifact not cleaned up: %v", entries)
	}
}

func TestSessionStartDeviceError(t *testing.T) {
	cap := &FakeCapture{StartErr: ErrDeviceUnavailable}
	s := NewSession(cap)
	s.tempDir = t.TempDir()

	err := s.Start()
	if !errors.Is(err, ErrDeviceUnavailable) {
		t.Fatalf("Start error = %v, want ErrDeviceUnavailable", err)
	}

	entries, readErr := os.ReadDir(s.tempDir)
	if readErr != nil {
		t.Fatal(readErr)
	}
	if len(entries) != 0 {
		t.Errorf("artifact left behind after failed start: %v", entries)
	}

	if art := s.Stop(); art != nil {
		t.Errorf("Stop after failed Start = %+v, want nil", art)
	}
}

func TestSessionUniqueArtifactNames(t *testing.T) {
	s, _ := newTestSession(t, fakePCM(0.2))

	if err := s.Start(); err != nil {
		t.Fatal(err)
	}
	a := s.Stop()
	if a == nil {
		t.Fatal("first artifact nil")
	}
	t.Cleanup(a.Remove)

	if err := s.Start(); err != nil {
		t.Fatal(err)
	}
	b := s.Stop()
	if b == nil {
		t.Fatal("second artifact nil")
	}
	t.Cleanup(b.Remove)

	if a.Path == b.Path {
		t.Errorf("artifact paths collide: %s", a.Path)
	}
	if a.ID == b.ID {
		t.Errorf("artifact IDs collide: %s", a.ID)
	}
}

func TestWAVWriterHeader(t *testing.T) {
	path := t.TempDir() + "/out.wav"
	w, err := newWAVWriter(path, encoder.SampleRate, encoder.Channels)
	if err != nil {
		t.Fatal(err)
	}

	pcm := fakePCM(0.1)
	if err := w.Write(pcm); err != nil {
		t.Fatal(err)
	}
	n, err := w.Finalize()
	if err != nil {
		t.Fatal(err)
	}
	if int(n) != len(pcm) {
		t.Errorf("data bytes = %d, want %d", n, len(pcm))
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(data[0:4]) != "RIFF" || string(data[8:12]) != "WAVE" {
		t.Fatal("missing RIFF/WAVE magic")
	}
	gotRate := binary.LittleEndian.Uint32(data[24:28])
	if gotRate != encoder.SampleRate {
		t.Errorf("sample rate = %d, want %d", gotRate, encoder.SampleRate)
	}
	gotData := binary.LittleEndian.Uint32(data[40:44])
	if int(gotData) != len(pcm) {
		t.Errorf("data chunk size = %d, want %d", gotData, len(pcm))
	}
}
