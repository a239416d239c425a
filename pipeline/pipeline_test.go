package pipeline

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"dicto/audio"
	"dicto/history"
	"dicto/notify"
	"dicto/transcriber"
)

type fakeRecorder struct {
	mu       sync.Mutex
	startErr error
	artifact *audio.Artifact
	starts   int
	stops    int
}

func (f *fakeRecorder) Start() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.startErr != nil {
		return f.startErr
	}
	f.starts++
	return nil
}

func (f *fakeRecorder) Stop() *audio.Artifact {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stops++
	a := f.artifact
	f.artifact = nil
	return a
}

type fakeDeliverer struct {
	mu        sync.Mutex
	delivered []string
	done      chan struct{}
}

func newFakeDeliverer() *fakeDeliverer {
	return &fakeDeliverer{done: make(chan struct{}, 8)}
}

func (f *fakeDeliverer) Deliver(text string) error {
	f.mu.Lock()
	f.delivered = append(f.delivered, text)
	f.mu.Unlock()
	f.done <- struct{}{}
	return nil
}

func (f *fakeDeliverer) texts() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.delivered))
	copy(out, f.delivered)
	return out
}

type blockingTranscriber struct {
	release chan struct{}
}

func (b *blockingTranscriber) Transcribe(ctx context.Context, _ *audio.Artifact, _ string) (*transcriber.Transcription, error) {
	select {
	case <-b.release:
		return &transcriber.Transcription{Text: "done", Format: "wav"}, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

type memHistory struct {
	mu      sync.Mutex
	entries []history.Entry
}

func (m *memHistory) Save(e history.Entry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries, e)
	return nil
}

func tempArtifact(t *testing.T) *audio.Artifact {
	t.Helper()
	path := filepath.Join(t.TempDir(), "recording.wav")
	if err := os.WriteFile(path, make([]byte, 100), 0600); err != nil {
		t.Fatal(err)
	}
	return &audio.Artifact{
		ID:       uuid.New(),
		Path:     path,
		Size:     100,
		Duration: 2 * time.Second,
	}
}

func waitState(t *testing.T, c *Controller, want State) StateChange {
	t.Helper()
	deadline := time.After(3 * time.Second)
	for {
		select {
		case change := <-c.Changes():
			if change.To == want {
				return change
			}
		case <-deadline:
			t.Fatalf("timed out waiting for state %v (current %v)", want, c.State())
		}
	}
}

func TestToggleHappyPath(t *testing.T) {
	artifact := tempArtifact(t)
	rec := &fakeRecorder{artifact: artifact}
	trans := transcriber.NewFake("hello world", nil)
	deliver := newFakeDeliverer()
	hist := &memHistory{}

	c := NewController(Options{
		Recorder:    rec,
		Transcriber: trans,
		Deliverer:   deliver,
		History:     hist,
		Language:    func() string { return "en" },
	})
	defer c.Close()

	c.Toggle()
	waitState(t, c, StateRecording)

	c.Toggle()
	waitState(t, c, StateTranscribing)
	waitState(t, c, StateIdle)

	select {
	case <-deliver.done:
	case <-time.After(3 * time.Second):
		t.Fatal("delivery never happened")
	}
	if got := deliver.texts(); len(got) != 1 || got[0] != "hello world" {
		t.Errorf("delivered = %q", got)
	}
	if trans.LastLang != "en" {
		t.Errorf("language = %q, want en", trans.LastLang)
	}

	if _, err := os.Stat(artifact.Path); !os.IsNotExist(err) {
		t.Error("artifact not removed after run")
	}

	hist.mu.Lock()
	defer hist.mu.Unlock()
	if len(hist.entries) != 1 || hist.entries[0].Text != "hello world" {
		t.Errorf("history = %+v", hist.entries)
	}
}

func TestToggleWhileTranscribingIgnored(t *testing.T) {
	rec := &fakeRecorder{artifact: tempArtifact(t)}
	trans := &blockingTranscriber{release: make(chan struct{})}
	deliver := newFakeDeliverer()

	c := NewController(Options{Recorder: rec, Transcriber: trans, Deliverer: deliver})
	defer c.Close()

	c.Toggle()
	waitState(t, c, StateRecording)
	c.Toggle()
	waitState(t, c, StateTranscribing)

	c.Toggle() // must be a no-op
	time.Sleep(50 * time.Millisecond)
	if got := c.State(); got != StateTranscribing {
		t.Fatalf("state after mid-run toggle = %v, want transcribing", got)
	}
	rec.mu.Lock()
	starts := rec.starts
	rec.mu.Unlock()
	if starts != 1 {
		t.Errorf("recorder starts = %d, want 1", starts)
	}

	close(trans.release)
	waitState(t, c, StateIdle)
}

func TestErrorAutoRevert(t *testing.T) {
	rec := &fakeRecorder{artifact: tempArtifact(t)}
	trans := transcriber.NewFake("", errors.New("boom"))

	c := NewController(Options{Recorder: rec, Transcriber: trans, Deliverer: newFakeDeliverer()})
	c.errorHold = 50 * time.Millisecond
	defer c.Close()

	c.Toggle()
	waitState(t, c, StateRecording)
	c.Toggle()

	change := waitState(t, c, StateError)
	if change.Err == nil {
		t.Error("error transition missing cause")
	}

	waitState(t, c, StateIdle)
}

func TestToggleDuringErrorStartsRecording(t *testing.T) {
	rec := &fakeRecorder{artifact: tempArtifact(t)}
	trans := transcriber.NewFake("", errors.New("boom"))

	c := NewController(Options{Recorder: rec, Transcriber: trans, Deliverer: newFakeDeliverer()})
	c.errorHold = time.Hour
	defer c.Close()

	c.Toggle()
	waitState(t, c, StateRecording)
	c.Toggle()
	waitState(t, c, StateError)

	c.Toggle()
	waitState(t, c, StateRecording)
}

func TestEmptyRecordingReturnsToIdle(t *testing.T) {
	rec := &fakeRecorder{} // Stop returns nil artifact
	trans := transcriber.NewFake("never", nil)

	c := NewController(Options{Recorder: rec, Transcriber: trans, Deliverer: newFakeDeliverer()})
	defer c.Close()

	c.Toggle()
	waitState(t, c, StateRecording)
	c.Toggle()
	waitState(t, c, StateIdle)

	if trans.Calls != 0 {
		t.Errorf("transcriber called %d times for empty recording", trans.Calls)
	}
}

func TestStartErrorStaysIdle(t *testing.T) {
	rec := &fakeRecorder{startErr: audio.ErrDeviceUnavailable}
	trans := transcriber.NewFake("never", nil)
	c := NewController(Options{Recorder: rec, Transcriber: trans, Deliverer: newFakeDeliverer()})
	defer c.Close()

	c.Toggle()
	time.Sleep(50 * time.Millisecond)

	if got := c.State(); got != StateIdle {
		t.Fatalf("state after capture failure = %v, want idle", got)
	}
	select {
	case change := <-c.Changes():
		t.Errorf("unexpected state change %+v after capture failure", change)
	default:
	}
	if trans.Calls != 0 {
		t.Errorf("transcriber called %d times after capture failure", trans.Calls)
	}
}

type fakePermissions struct {
	status    PermissionStatus
	grant     bool
	requested bool
}

func (f *fakePermissions) Microphone() PermissionStatus { return f.status }

func (f *fakePermissions) RequestMicrophone() bool {
	f.requested = true
	return f.grant
}

func TestPermissionDeniedAbortsToggle(t *testing.T) {
	rec := &fakeRecorder{artifact: tempArtifact(t)}
	c := NewController(Options{
		Recorder:    rec,
		Transcriber: transcriber.NewFake("never", nil),
		Deliverer:   newFakeDeliverer(),
		Permissions: &fakePermissions{status: PermissionDenied},
	})
	defer c.Close()

	c.Toggle()

	if got := c.State(); got != StateIdle {
		t.Fatalf("state = %v, want idle", got)
	}
	rec.mu.Lock()
	defer rec.mu.Unlock()
	if rec.starts != 0 {
		t.Errorf("recorder started %d times without permission", rec.starts)
	}
}

func TestPermissionUndeterminedIsRequested(t *testing.T) {
	perms := &fakePermissions{status: PermissionUndetermined, grant: true}
	rec := &fakeRecorder{artifact: tempArtifact(t)}
	c := NewController(Options{
		Recorder:    rec,
		Transcriber: transcriber.NewFake("never", nil),
		Deliverer:   newFakeDeliverer(),
		Permissions: perms,
	})
	defer c.Close()

	c.Toggle()
	waitState(t, c, StateRecording)

	if !perms.requested {
		t.Error("undetermined permission was never requested")
	}

	perms.grant = false
	perms.requested = false
	c.Toggle() // stop
	waitState(t, c, StateTranscribing)
}

func TestErrorNotificationsThrottled(t *testing.T) {
	notifier := notify.NewFakeNotifier()
	rec := &fakeRecorder{artifact: tempArtifact(t)}
	trans := transcriber.NewFake("", errors.New("boom"))

	c := NewController(Options{
		Recorder:    rec,
		Transcriber: trans,
		Deliverer:   newFakeDeliverer(),
		Notifier:    notifier,
	})
	c.errorHold = 10 * time.Millisecond
	defer c.Close()

	for i := 0; i < 2; i++ {
		rec.mu.Lock()
		rec.artifact = tempArtifact(t)
		rec.mu.Unlock()

		c.Toggle()
		waitState(t, c, StateRecording)
		c.Toggle()
		waitState(t, c, StateError)
		waitState(t, c, StateIdle)
	}

	if got := len(notifier.Sent()); got != 1 {
		t.Errorf("notifications = %d, want 1 (second failure inside throttle window)", got)
	}
}

func TestCloseCancelsInFlightRun(t *testing.T) {
	rec := &fakeRecorder{artifact: tempArtifact(t)}
	trans := &blockingTranscriber{release: make(chan struct{})}

	c := NewController(Options{Recorder: rec, Transcriber: trans, Deliverer: newFakeDeliverer()})

	c.Toggle()
	waitState(t, c, StateRecording)
	c.Toggle()
	waitState(t, c, StateTranscribing)

	done := make(chan struct{})
	go func() {
		c.Close()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(3 * time.Second):
		t.Fatal("Close did not cancel the in-flight run")
	}
}
