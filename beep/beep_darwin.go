//go:build darwin

package beep

import (
	"math"
	"sync"
	"sync/atomic"

	"github.com/gen2brain/malgo"
)

var (
	malgoCtx      *malgo.AllocatedContext
	device        *malgo.Device
	recordSamples []byte
	sendSamples   []byte
	failSamples   []byte
	soundOnce     sync.Once

	// Playback state, read from the audio callback.
	playing atomic.Pointer[[]byte]
	playPos atomic.Uint32
	playMu  sync.Mutex
)

// Shorter tones than on Linux: CoreAudio keeps the device open between
// cues, so longer tails overlap rapid state changes.
const (
	tickDuration = 0.04
	failDuration = 0.08
	failGap      = 0.05
)

func initDevice() error {
	config := malgo.DefaultDeviceConfig(malgo.Playback)
	config.Playback.Format = malgo.FormatS16
	config.Playback.Channels = 1
	config.SampleRate = sampleRate

	callbacks := malgo.DeviceCallbacks{
		Data: dataCallback,
	}

	var err error
	device, err = malgo.InitDevice(malgoCtx.Context, config, callbacks)
	return err
}

func initSound() {
	var err error
	malgoCtx, err = malgo.InitContext(nil, malgo.ContextConfig{}, nil)
	if err != nil {
		return
	}

	recordSamples = synth(recordCue, tickDuration, 0)
	sendSamples = synth(sendCue, tickDuration, 0)
	failSamples = synth(failCue, failDuration, failGap)

	if err := initDevice(); err != nil {
		malgoCtx.Uninit()
		malgoCtx = nil
		return
	}
}

func dataCallback(pOutput, _ []byte, frameCount uint32) {
	samples := playing.Load()
	if samples == nil || len(*samples) == 0 {
		for i := range pOutput {
			pOutput[i] = 0
		}
		return
	}

	pos := playPos.Load()
	total := uint32(len(*samples))
	bytesToWrite := frameCount * 2
	remaining := total - pos

	if remaining == 0 {
		playing.Store(nil)
		for i := range pOutput {
			pOutput[i] = 0
		}
		return
	}

	if bytesToWrite > remaining {
		bytesToWrite = remaining
	}

	copy(pOutput[:bytesToWrite], (*samples)[pos:pos+bytesToWrite])
	playPos.Store(pos + bytesToWrite)

	for i := bytesToWrite; i < frameCount*2; i++ {
		pOutput[i] = 0
	}
}

// synth renders a cue as mono s16 little-endian bytes.
func synth(c cue, duration, gap float64) []byte {
	n := int(float64(sampleRate) * duration)
	pulse := make([]byte, n*2)
	for i := 0; i < n; i++ {
		t := float64(i) / float64(sampleRate)
		envelope := math.Exp(-t * c.decay)
		sample := int16(math.Sin(2*math.Pi*c.freq*t) * 32767 * c.volume * envelope)
		pulse[i*2] = byte(sample)
		pulse[i*2+1] = byte(sample >> 8)
	}
	if c.pulses <= 1 {
		return pulse
	}
	silence := make([]byte, int(float64(sampleRate)*gap)*2)
	out := make([]byte, 0, c.pulses*len(pulse)+(c.pulses-1)*len(silence))
	for i := 0; i < c.pulses; i++ {
		if i > 0 {
			out = append(out, silence...)
		}
		out = append(out, pulse...)
	}
	return out
}

func play(samples []byte) {
	if malgoCtx == nil || len(samples) == 0 {
		return
	}

	playMu.Lock()
	defer playMu.Unlock()

	if device == nil {
		return
	}

	device.Stop()

	playPos.Store(0)
	playing.Store(&samples)

	if err := device.Start(); err != nil {
		// Recreate the device, it goes stale across sleep/wake.
		device.Uninit()
		if err := initDevice(); err != nil {
			playing.Store(nil)
			return
		}
		if err := device.Start(); err != nil {
			playing.Store(nil)
			return
		}
	}
}

func Init() {
	soundOnce.Do(initSound)
}

func PlayStart() {
	if disabled {
		return
	}
	soundOnce.Do(initSound)
	play(recordSamples)
}

func PlayEnd() {
	if disabled {
		return
	}
	soundOnce.Do(initSound)
	play(sendSamples)
}

func PlayError() {
	if disabled {
		return
	}
	soundOnce.Do(initSound)
	play(failSamples)
}
