// Package encoder converts captured PCM into the upload formats the
// transcription API accepts.
package encoder

const (
	SampleRate    = 16000
	Channels      = 1
	BitsPerSample = 16
	BlockSize     = 4096
)
