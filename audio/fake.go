package audio

import "sync"

const (
	fakeFrameSize     = 1024
	fakeBytesPerFrame = 2 // 16-bit mono
)

// FakeContext serves canned PCM to capture sessions in tests.
type FakeContext struct {
	pcm []byte
}

func NewFakeContext(pcm []byte) *FakeContext {
	return &FakeContext{pcm: pcm}
}

func (f *FakeContext) Devices() ([]DeviceInfo, error) {
	return []DeviceInfo{{ID: "fake", Name: "fake"}}, nil
}

func (f *FakeContext) Close() {}

func (f *FakeContext) NewCapture(_ *DeviceInfo, _ CaptureConfig) (CaptureDevice, error) {
	return &FakeCapture{pcm: f.pcm}, nil
}

// FakeCapture delivers its PCM to the callback synchronously on Start,
// then stays silent until stopped.
type FakeCapture struct {
	pcm      []byte
	StartErr error

	mu     sync.Mutex
	cb     DataCallback
	starts int
}

func (f *FakeCapture) SetCallback(cb DataCallback) {
	f.mu.Lock()
	f.cb = cb
	f.mu.Unlock()
}

func (f *FakeCapture) ClearCallback() {
	f.mu.Lock()
	f.cb = nil
	f.mu.Unlock()
}

func (f *FakeCapture) Start() error {
	if f.StartErr != nil {
		return f.StartErr
	}

	f.mu.Lock()
	cb := f.cb
	f.starts++
	f.mu.Unlock()

	if cb == nil {
		return nil
	}

	chunkBytes := fakeFrameSize * fakeBytesPerFrame
	for pos := 0; pos < len(f.pcm); {
		end := min(pos+chunkBytes, len(f.pcm))
		chunk := make([]byte, end-pos)
		copy(chunk, f.pcm[pos:end])
		cb(chunk, uint32(len(chunk)/fakeBytesPerFrame))
		pos = end
	}
	return nil
}

func (f *FakeCapture) Stop()  {}
func (f *FakeCapture) Close() {}

// Starts reports how many times Start succeeded.
func (f *FakeCapture) Starts() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.starts
}
