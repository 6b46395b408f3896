package audio

// Capture format shared by every backend: 16 kHz mono signed 16-bit LE.
const (
	SampleRate     = 16000
	Channels       = 1
	BytesPerSample = 2
	WAVHeaderSize  = 44
)

type DataCallback func(data []byte, frameCount uint32)

type CaptureConfig struct {
	SampleRate uint32
	Channels   uint32
	// Gain multiplies every sample before delivery; 0 means 1.
	Gain int
}

func DefaultCaptureConfig() CaptureConfig {
	return CaptureConfig{SampleRate: SampleRate, Channels: Channels, Gain: 1}
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
	DeviceName() string
}

func applyGain(s int16, gain int) int16 {
	if gain <= 1 {
		return s
	}
	v := int32(s) * int32(gain)
	if v > 32767 {
		return 32767
	}
	if v < -32768 {
		return -32768
	}
	return int16(v)
}
