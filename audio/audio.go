// Package audio owns microphone capture: device enumeration, the capture
// session lifecycle, and the WAV artifact a finished recording produces.
package audio

import "errors"

const WAVHeaderSize = 44

// ErrDeviceUnavailable is returned when the capture device cannot be opened.
var ErrDeviceUnavailable = errors.New("capture device unavailable")

type DataCallback func(data []byte, frameCount uint32)

type CaptureConfig struct {
	SampleRate uint32
	Channels   uint32
}

type DeviceInfo struct {
	ID   string // opaque platform-specific identifier
	Name string
}

type Context interface {
	Devices() ([]DeviceInfo, error)
	NewCapture(device *DeviceInfo, config CaptureConfig) (CaptureDevice, error)
	Close()
}

type CaptureDevice interface {
	Start() error
	Stop()
	Close()
	SetCallback(cb DataCallback)
	ClearCallback()
}
