// Package beep plays short synthesized tones marking dictation state
// changes: one tick when recording starts, another when audio is sent
// for transcription, and a low double pulse on failure.
package beep

var disabled bool

// Disable turns all cues off for the rest of the process.
func Disable() { disabled = true }

const sampleRate = 44100

// cue describes one synthesized tone.
type cue struct {
	freq   float64
	volume float64
	decay  float64 // exponential envelope rate, higher fades faster
	pulses int
}

var (
	recordCue = cue{freq: 1200, volume: 0.5, decay: 60, pulses: 1}
	sendCue   = cue{freq: 900, volume: 0.5, decay: 40, pulses: 1}
	failCue   = cue{freq: 350, volume: 0.6, decay: 30, pulses: 2}
)
