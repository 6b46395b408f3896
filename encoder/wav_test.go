package encoder

import (
	"bytes"
	"encoding/binary"
	"testing"
)

func TestWavHeader(t *testing.T) {
	samples := sineSamples(1000)
	enc := NewWav()
	if err := EncodePCM(enc, toPCM(samples)); err != nil {
		t.Fatal(err)
	}

	data := enc.Bytes()
	if len(data) != 44+len(samples)*2 {
		t.Fatalf("len = %d, want %d", len(data), 44+len(samples)*2)
	}
	checks := []struct {
		name string
		ok   bool
	}{
		{"RIFF", string(data[0:4]) == "RIFF"},
		{"riff size", binary.LittleEndian.Uint32(data[4:8]) == uint32(36+len(samples)*2)},
		{"WAVE", string(data[8:12]) == "WAVE"},
		{"pcm format", binary.LittleEndian.Uint16(data[20:22]) == 1},
		{"channels", binary.LittleEndian.Uint16(data[22:24]) == 1},
		{"rate", binary.LittleEndian.Uint32(data[24:28]) == SampleRate},
		{"bits", binary.LittleEndian.Uint16(data[34:36]) == 16},
		{"data size", binary.LittleEndian.Uint32(data[40:44]) == uint32(len(samples)*2)},
	}
	for _, c := range checks {
		if !c.ok {
			t.Errorf("header check %s failed", c.name)
		}
	}
	if !bytes.Equal(data[44:], toPCM(samples)) {
		t.Error("payload differs from input pcm")
	}
	if enc.TotalFrames() != 1000 {
		t.Errorf("TotalFrames = %d", enc.TotalFrames())
	}
}
