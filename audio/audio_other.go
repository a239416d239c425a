//go:build !linux

package audio

import (
	"encoding/hex"
	"fmt"
	"sync/atomic"

	"github.com/gen2brain/malgo"
)

type malgoContext struct {
	ctx *malgo.AllocatedContext
}

func NewContext() (Context, error) {
	ctx, err := malgo.InitContext(nil, malgo.ContextConfig{}, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: malgo: %v", ErrDeviceUnavailable, err)
	}
	return &malgoContext{ctx: ctx}, nil
}

func (m *malgoContext) Devices() ([]DeviceInfo, error) {
	devices, err := m.ctx.Devices(malgo.Capture)
	if err != nil {
		return nil, fmt.Errorf("malgo devices: %w", err)
	}
	var result []DeviceInfo
	for _, d := range devices {
		result = append(result, DeviceInfo{
			ID:   hex.EncodeToString(d.ID.Pointer()[:]),
			Name: d.Name(),
		})
	}
	return result, nil
}

func (m *malgoContext) NewCapture(device *DeviceInfo, config CaptureConfig) (CaptureDevice, error) {
	return &malgoCapture{
		ctx:    m.ctx,
		device: device,
		config: config,
	}, nil
}

func (m *malgoContext) Close() {
	m.ctx.Uninit()
	m.ctx.Free()
}

type malgoCapture struct {
	ctx      *malgo.AllocatedContext
	device   *DeviceInfo
	config   CaptureConfig
	callback atomic.Pointer[DataCallback]

	dev *malgo.Device
}

func (c *malgoCapture) Start() error {
	deviceConfig := malgo.DefaultDeviceConfig(malgo.Capture)
	deviceConfig.Capture.Format = malgo.FormatS16
	deviceConfig.Capture.Channels = c.config.Channels
	deviceConfig.SampleRate = c.config.SampleRate

	if c.device != nil {
		idBytes, err := hex.DecodeString(c.device.ID)
		if err != nil {
			return fmt.Errorf("invalid device ID: %w", err)
		}
		var devID malgo.DeviceID
		copy(devID[:], idBytes)
		deviceConfig.Capture.DeviceID = devID.Pointer()
	}

	callbacks := malgo.DeviceCallbacks{
		Data: func(_, data []byte, frameCount uint32) {
			cb := c.callback.Load()
			if cb != nil {
				(*cb)(data, frameCount)
			}
		},
	}

	dev, err := malgo.InitDevice(c.ctx.Context, deviceConfig, callbacks)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrDeviceUnavailable, err)
	}
	c.dev = dev

	if err := dev.Start(); err != nil {
		dev.Uninit()
		c.dev = nil
		return fmt.Errorf("%w: %v", ErrDeviceUnavailable, err)
	}
	return nil
}

func (c *malgoCapture) Stop() {
	if c.dev != nil {
		c.dev.Stop()
		c.dev.Uninit()
		c.dev = nil
	}
}

func (c *malgoCapture) Close() {
	c.Stop()
}

func (c *malgoCapture) SetCallback(cb DataCallback) {
	c.callback.Store(&cb)
}

func (c *malgoCapture) ClearCallback() {
	c.callback.Store(nil)
}
