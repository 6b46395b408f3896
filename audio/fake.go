package audio

import (
	"fmt"
	"os"
	"sync"
	"time"
)

const fakeChunkFrames = 320 // 20ms at 16 kHz

// FakeContext replays a fixed PCM buffer (16 kHz mono s16le) through every
// capture it creates. Once the buffer is exhausted the capture keeps
// delivering silence until stopped, like an idle microphone.
type FakeContext struct {
	pcm      []byte
	realtime bool
	devices  []DeviceInfo
}

// NewFakeContext loads a canonical 44-byte-header WAV file.
func NewFakeContext(wavPath string, realtime bool) (*FakeContext, error) {
	data, err := os.ReadFile(wavPath)
	if err != nil {
		return nil, fmt.Errorf("read wav: %w", err)
	}
	if len(data) > WAVHeaderSize {
		data = data[WAVHeaderSize:]
	}
	return NewFakeContextPCM(data, realtime), nil
}

func NewFakeContextPCM(pcm []byte, realtime bool) *FakeContext {
	return &FakeContext{pcm: pcm, realtime: realtime}
}

// WithDevices sets what Devices reports.
func (f *FakeContext) WithDevices(devices ...DeviceInfo) *FakeContext {
	f.devices = devices
	return f
}

func (f *FakeContext) Devices() ([]DeviceInfo, error) { return f.devices, nil }
func (f *FakeContext) Close()                         {}

func (f *FakeContext) NewCapture(_ *DeviceInfo, _ CaptureConfig) (CaptureDevice, error) {
	return &FakeCapture{pcm: f.pcm, realtime: f.realtime, audioDone: make(chan struct{})}, nil
}

// FakeCapture delivers its buffer in 20ms chunks. The read position survives
// Stop/Start so a second capture continues where the first one ended.
type FakeCapture struct {
	pcm       []byte
	realtime  bool
	audioDone chan struct{}
	doneOnce  sync.Once

	mu     sync.Mutex
	cb     DataCallback
	pos    int
	stopCh chan struct{}
	feedWG sync.WaitGroup
}

// AudioDone is closed once the whole buffer has been delivered.
func (f *FakeCapture) AudioDone() <-chan struct{} { return f.audioDone }

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

func (f *FakeCapture) DeviceName() string { return "fake" }

// next returns the next chunk and the callback to deliver it to.
func (f *FakeCapture) next(chunkBytes int) ([]byte, DataCallback) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.cb == nil {
		return nil, nil
	}
	if f.pos >= len(f.pcm) {
		f.doneOnce.Do(func() { close(f.audioDone) })
		return make([]byte, chunkBytes), f.cb
	}
	end := min(f.pos+chunkBytes, len(f.pcm))
	chunk := make([]byte, end-f.pos)
	copy(chunk, f.pcm[f.pos:end])
	f.pos = end
	if f.pos >= len(f.pcm) {
		f.doneOnce.Do(func() { close(f.audioDone) })
	}
	return chunk, f.cb
}

func (f *FakeCapture) Start() error {
	f.mu.Lock()
	if f.stopCh != nil {
		f.mu.Unlock()
		return nil
	}
	stop := make(chan struct{})
	f.stopCh = stop
	f.mu.Unlock()

	chunkBytes := fakeChunkFrames * BytesPerSample
	interval := time.Millisecond
	if f.realtime {
		interval = time.Duration(fakeChunkFrames) * time.Second / SampleRate
	}

	f.feedWG.Add(1)
	go func() {
		defer f.feedWG.Done()
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
			}
			if chunk, cb := f.next(chunkBytes); cb != nil {
				cb(chunk, uint32(len(chunk)/BytesPerSample))
			}
		}
	}()
	return nil
}

func (f *FakeCapture) Stop() {
	f.mu.Lock()
	stop := f.stopCh
	f.stopCh = nil
	f.mu.Unlock()
	if stop == nil {
		return
	}
	close(stop)
	f.feedWG.Wait()
}

func (f *FakeCapture) Close() { f.Stop() }
