//go:build linux

package beep

import (
	"math"
	"sync"

	"github.com/jfreymuth/pulse"
	"github.com/jfreymuth/pulse/proto"
)

var (
	recordSamples []int16
	sendSamples   []int16
	failSamples   []int16
	soundOnce     sync.Once
)

const (
	tickDuration = 0.2
	failDuration = 0.08
	failGap      = 0.05
)

func initSound() {
	recordSamples = synth(recordCue, tickDuration, 0)
	sendSamples = synth(sendCue, tickDuration, 0)
	failSamples = synth(failCue, failDuration, failGap)
}

// synth renders a cue as interleaved stereo s16 samples. Multi-pulse
// cues repeat the tone with gap seconds of silence between pulses.
func synth(c cue, duration, gap float64) []int16 {
	n := int(float64(sampleRate) * duration)
	pulse := make([]int16, n*2)
	for i := 0; i < n; i++ {
		t := float64(i) / float64(sampleRate)
		envelope := math.Exp(-t * c.decay)
		s := int16(math.Sin(2*math.Pi*c.freq*t) * 32767 * c.volume * envelope)
		pulse[i*2] = s
		pulse[i*2+1] = s
	}
	if c.pulses <= 1 {
		return pulse
	}
	silence := make([]int16, int(float64(sampleRate)*gap)*2)
	out := make([]int16, 0, c.pulses*len(pulse)+(c.pulses-1)*len(silence))
	for i := 0; i < c.pulses; i++ {
		if i > 0 {
			out = append(out, silence...)
		}
		out = append(out, pulse...)
	}
	return out
}

func play(samples []int16) {
	if len(samples) == 0 {
		return
	}
	c, err := pulse.NewClient()
	if err != nil {
		return
	}
	defer c.Close()

	pos := 0
	reader := pulse.Int16Reader(func(buf []int16) (int, error) {
		if pos >= len(samples) {
			return 0, pulse.EndOfData
		}
		n := copy(buf, samples[pos:])
		pos += n
		return n, nil
	})
	stream, err := c.NewPlayback(reader,
		pulse.PlaybackStereo,
		pulse.PlaybackSampleRate(sampleRate),
		pulse.PlaybackLatency(0.1),
		pulse.PlaybackRawOption(func(p *proto.CreatePlaybackStream) {
			p.ChannelVolumes = proto.ChannelVolumes{uint32(proto.VolumeNorm), uint32(proto.VolumeNorm)}
		}),
	)
	if err != nil {
		return
	}
	stream.Start()
	stream.Drain()
	stream.Stop()
	stream.Close()
}

func Init() {
	soundOnce.Do(initSound)
}

func PlayStart() {
	if disabled {
		return
	}
	soundOnce.Do(initSound)
	go play(recordSamples)
}

func PlayEnd() {
	if disabled {
		return
	}
	soundOnce.Do(initSound)
	go play(sendSamples)
}

func PlayError() {
	if disabled {
		return
	}
	soundOnce.Do(initSound)
	go play(failSamples)
}
