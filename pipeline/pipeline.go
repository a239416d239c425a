// Package pipeline drives the recording lifecycle: a single hotkey toggle
// moves the app between idle, recording, transcribing, and a short-lived
// error state.
package pipeline

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"dicto/audio"
	"dicto/history"
	"dicto/log"
	"dicto/notify"
	"dicto/transcriber"
)

// ErrorHold is how long the error state lingers before reverting to idle.
const ErrorHold = 2 * time.Second

type State int

const (
	StateIdle State = iota
	StateRecording
	StateTranscribing
	StateError
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRecording:
		return "recording"
	case StateTranscribing:
		return "transcribing"
	case StateError:
		return "error"
	default:
		return "unknown"
	}
}

// StateChange is emitted on every transition. Err is set when To is
// StateError.
type StateChange struct {
	RunID uuid.UUID
	From  State
	To    State
	Err   error
}

// Recorder owns microphone capture for one recording at a time.
type Recorder interface {
	Start() error
	Stop() *audio.Artifact
}

// Transcriber turns one artifact into text.
type Transcriber interface {
	Transcribe(ctx context.Context, artifact *audio.Artifact, language string) (*transcriber.Transcription, error)
}

// Deliverer pushes the transcribed text to the user.
type Deliverer interface {
	Deliver(text string) error
}

// History persists finished transcriptions. Optional.
type History interface {
	Save(e history.Entry) error
}

// Options wires a Controller. Recorder, Transcriber, and Deliverer are
// required; the rest may be nil.
type Options struct {
	Recorder    Recorder
	Transcriber Transcriber
	Deliverer   Deliverer
	Notifier    notify.Notifier
	History     History
	// Permissions gates the idle-to-recording transition. Nil means
	// always granted.
	Permissions Permissions
	// Language is read at the start of every run so config edits apply
	// without a restart. Nil means auto-detect.
	Language func() string
}

// Controller is the toggle-driven state machine. At most one run is in
// flight; a toggle while transcribing is ignored.
type Controller struct {
	rec      Recorder
	trans    Transcriber
	deliver  Deliverer
	notifier notify.Notifier
	throttle *notify.Throttler
	hist     History
	perms    Permissions
	language func() string

	errorHold time.Duration
	changes   chan StateChange

	mu        sync.Mutex
	state     State
	runID     uuid.UUID
	errTimer  *time.Timer
	cancelRun context.CancelFunc
	closed    bool
	wg        sync.WaitGroup
}

func NewController(opts Options) *Controller {
	lang := opts.Language
	if lang == nil {
		lang = func() string { return transcriber.LanguageAuto }
	}
	perms := opts.Permissions
	if perms == nil {
		perms = grantedPermissions{}
	}
	return &Controller{
		rec:       opts.Recorder,
		trans:     opts.Transcriber,
		deliver:   opts.Deliverer,
		notifier:  opts.Notifier,
		throttle:  notify.NewThrottler(),
		hist:      opts.History,
		perms:     perms,
		language:  lang,
		errorHold: ErrorHold,
		changes:   make(chan StateChange, 16),
	}
}

// Changes streams state transitions to observers. Slow observers drop
// events rather than stall the pipeline.
func (c *Controller) Changes() <-chan StateChange {
	return c.changes
}

func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Toggle handles one hotkey press.
func (c *Controller) Toggle() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}

	switch c.state {
	case StateTranscribing:
		// A run is in flight, ignore.
	case StateError:
		c.stopErrTimerLocked()
		c.setStateLocked(StateIdle, nil)
		c.startRecordingLocked()
	case StateIdle:
		c.startRecordingLocked()
	case StateRecording:
		c.stopRecordingLocked()
	}
}

func (c *Controller) startRecordingLocked() {
	switch c.perms.Microphone() {
	case PermissionDenied:
		log.Warn("microphone permission denied")
		return
	case PermissionUndetermined:
		if !c.perms.RequestMicrophone() {
			log.Warn("microphone permission denied")
			return
		}
	}

	c.runID = uuid.New()
	if err := c.rec.Start(); err != nil {
		// Capture failures abort the run; the network is never touched.
		log.Errorf("recording start failed: %v", err)
		return
	}
	c.setStateLocked(StateRecording, nil)
}

func (c *Controller) stopRecordingLocked() {
	artifact := c.rec.Stop()
	if artifact == nil {
		// Nothing usable was captured.
		c.setStateLocked(StateIdle, nil)
		return
	}

	c.setStateLocked(StateTranscribing, nil)

	ctx, cancel := context.WithCancel(context.Background())
	c.cancelRun = cancel
	c.wg.Add(1)
	go c.run(ctx, artifact, c.runID)
}

// run is the single in-flight pipeline run.
func (c *Controller) run(ctx context.Context, artifact *audio.Artifact, runID uuid.UUID) {
	defer c.wg.Done()
	defer artifact.Remove()

	lang := c.language()
	result, err := c.trans.Transcribe(ctx, artifact, lang)

	if err != nil {
		c.notifyError(err)
	}

	c.mu.Lock()
	c.cancelRun = nil
	if c.closed {
		c.mu.Unlock()
		return
	}
	if err != nil {
		log.Errorf("transcription failed: %v", err)
		c.enterErrorLocked(err)
		c.mu.Unlock()
		return
	}
	c.setStateLocked(StateIdle, nil)
	c.mu.Unlock()

	log.TranscriptionText(result.Text)
	if result.Metrics != nil {
		log.Transcription(runID.String(), log.RunMetrics{
			AudioLengthS: artifact.Duration.Seconds(),
			PayloadKB:    float64(result.Bytes) / 1024,
			Format:       result.Format,
			DNSTimeMs:    float64(result.Metrics.DNS.Milliseconds()),
			TLSTimeMs:    float64(result.Metrics.TLS.Milliseconds()),
			TTFBMs:       float64(result.Metrics.TTFB.Milliseconds()),
			TotalTimeMs:  float64(result.Metrics.Total.Milliseconds()),
			StatusCode:   200,
			ConnReused:   result.Metrics.ConnReused,
		})
	}

	if c.hist != nil {
		entry := history.Entry{
			ID:           artifact.ID,
			Text:         result.Text,
			AudioSeconds: artifact.Duration.Seconds(),
			Language:     lang,
		}
		if herr := c.hist.Save(entry); herr != nil {
			log.Warnf("history save failed: %v", herr)
		}
	}

	// Delivery is fire and forget: a paste failure must not block the
	// next recording.
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		if derr := c.deliver.Deliver(result.Text); derr != nil {
			log.Errorf("delivery failed: %v", derr)
		}
	}()
}

// notifyError posts a throttled desktop notification for a failed run.
func (c *Controller) notifyError(err error) {
	if c.notifier == nil {
		return
	}

	title := "Transcription failed"
	category := transcriber.CategoryGeneral
	var terr *transcriber.Error
	if errors.As(err, &terr) {
		title = terr.Title()
		category = terr.Category()
	}

	if !c.throttle.Allow(category) {
		return
	}
	if nerr := c.notifier.Send(title, err.Error()); nerr != nil {
		log.Warnf("error notification failed: %v", nerr)
	}
}

func (c *Controller) enterErrorLocked(err error) {
	c.setStateLocked(StateError, err)
	c.errTimer = time.AfterFunc(c.errorHold, func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		if c.state == StateError && !c.closed {
			c.errTimer = nil
			c.setStateLocked(StateIdle, nil)
		}
	})
}

func (c *Controller) stopErrTimerLocked() {
	if c.errTimer != nil {
		c.errTimer.Stop()
		c.errTimer = nil
	}
}

func (c *Controller) setStateLocked(to State, err error) {
	from := c.state
	c.state = to
	log.StateChange(c.runID.String(), to.String())

	change := StateChange{RunID: c.runID, From: from, To: to, Err: err}
	select {
	case c.changes <- change:
	default:
	}
}

// Close cancels any in-flight run and waits for goroutines to settle.
func (c *Controller) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	c.stopErrTimerLocked()
	if c.cancelRun != nil {
		c.cancelRun()
	}
	if c.state == StateRecording {
		if artifact := c.rec.Stop(); artifact != nil {
			artifact.Remove()
		}
	}
	c.mu.Unlock()

	c.wg.Wait()
}
