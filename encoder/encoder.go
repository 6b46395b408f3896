package encoder

import (
	"encoding/binary"
	"fmt"
	"time"

	"notewriter/audio"
)

const (
	SampleRate    = audio.SampleRate
	Channels      = audio.Channels
	BitsPerSample = 16
	BlockSize     = 4096
)

// Encoder consumes 16 kHz mono samples block by block and produces a
// complete upload body on Close.
type Encoder interface {
	EncodeBlock(block []int16) error
	Close() error
	Bytes() []byte
	TotalFrames() uint64
	AddEncodeTime(d time.Duration)
	EncodeTime() time.Duration
	ContentType() string
}

func New(format string) (Encoder, error) {
	switch format {
	case "", "flac":
		return NewFlac()
	case "wav":
		return NewWav(), nil
	default:
		return nil, fmt.Errorf("unknown encoding format %q", format)
	}
}

// Samples converts s16le bytes to samples. A trailing odd byte is dropped.
func Samples(pcm []byte) []int16 {
	out := make([]int16, len(pcm)/2)
	for i := range out {
		out[i] = int16(binary.LittleEndian.Uint16(pcm[i*2:]))
	}
	return out
}

// EncodePCM feeds a whole capture through enc in BlockSize blocks and closes it.
func EncodePCM(enc Encoder, pcm []byte) error {
	start := time.Now()
	samples := Samples(pcm)
	for i := 0; i < len(samples); i += BlockSize {
		end := min(i+BlockSize, len(samples))
		if err := enc.EncodeBlock(samples[i:end]); err != nil {
			return err
		}
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("closing encoder: %w", err)
	}
	enc.AddEncodeTime(time.Since(start))
	return nil
}
