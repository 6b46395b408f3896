package phrase

import (
	"encoding/binary"
	"fmt"
	"math"

	webrtcvad "github.com/maxhawkins/go-webrtcvad"

	"notewriter/audio"
)

const (
	FrameMs    = 20
	FrameBytes = audio.SampleRate * FrameMs / 1000 * audio.BytesPerSample // 640 bytes

	// DefaultThreshold is the RMS floor used until Calibrate measures the room.
	DefaultThreshold = 300.0
	minThreshold     = 50.0
	ambientFactor    = 1.5

	vadMode = 2
)

// Detector classifies 20ms frames of 16 kHz mono s16le audio.
type Detector interface {
	IsSpeech(frame []byte) bool
	SetThreshold(rms float64)
	Threshold() float64
}

// RMS returns the root mean square of s16le samples.
func RMS(pcm []byte) float64 {
	n := len(pcm) / 2
	if n == 0 {
		return 0
	}
	var sum float64
	for i := 0; i < n; i++ {
		s := float64(int16(binary.LittleEndian.Uint16(pcm[i*2:])))
		sum += s * s
	}
	return math.Sqrt(sum / float64(n))
}

// Energy treats any frame louder than the threshold as speech.
type Energy struct {
	threshold float64
}

func NewEnergy(threshold float64) *Energy {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	return &Energy{threshold: threshold}
}

func (e *Energy) IsSpeech(frame []byte) bool { return RMS(frame) >= e.threshold }
func (e *Energy) SetThreshold(rms float64)   { e.threshold = rms }
func (e *Energy) Threshold() float64         { return e.threshold }

// VAD runs WebRTC voice activity detection behind an energy gate, so that
// quiet voiced background (a distant radio) stays below the onset.
type VAD struct {
	vad  *webrtcvad.VAD
	gate Energy
}

func NewVAD() (*VAD, error) {
	v, err := webrtcvad.New()
	if err != nil {
		return nil, fmt.Errorf("webrtcvad: %w", err)
	}
	if err := v.SetMode(vadMode); err != nil {
		return nil, fmt.Errorf("webrtcvad mode: %w", err)
	}
	return &VAD{vad: v, gate: Energy{threshold: DefaultThreshold}}, nil
}

func (v *VAD) IsSpeech(frame []byte) bool {
	if !v.gate.IsSpeech(frame) {
		return false
	}
	active, err := v.vad.Process(audio.SampleRate, frame)
	if err != nil {
		return false
	}
	return active
}

func (v *VAD) SetThreshold(rms float64) { v.gate.SetThreshold(rms) }
func (v *VAD) Threshold() float64       { return v.gate.Threshold() }
