package transcriber

import (
	"context"

	"dicto/audio"
)

// StaticKey is a fixed-string credential source for wiring and tests.
type StaticKey string

func (s StaticKey) APIKey() (string, bool) {
	return string(s), s != ""
}

// Fake returns a canned transcription or error without touching the network.
type Fake struct {
	Text string
	Err  error

	Calls     int
	LastLang  string
	LastBytes int64
}

func NewFake(text string, err error) *Fake {
	return &Fake{Text: text, Err: err}
}

func (f *Fake) Transcribe(_ context.Context, artifact *audio.Artifact, language string) (*Transcription, error) {
	f.Calls++
	f.LastLang = language
	if artifact != nil {
		f.LastBytes = artifact.Size
	}
	if f.Err != nil {
		return nil, f.Err
	}
	return &Transcription{
		Text:    f.Text,
		Format:  "wav",
		Bytes:   f.LastBytes,
		Metrics: &NetworkMetrics{},
	}, nil
}
