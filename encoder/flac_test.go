package encoder

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"
	"math"
	"testing"

	"github.com/mewkiz/flac"
)

func sineSamples(n int) []int16 {
	out := make([]int16, n)
	for i := range out {
		out[i] = int16(6000 * math.Sin(2*math.Pi*220*float64(i)/SampleRate))
	}
	return out
}

func toPCM(samples []int16) []byte {
	pcm := make([]byte, len(samples)*2)
	for i, s := range samples {
		binary.LittleEndian.PutUint16(pcm[i*2:], uint16(s))
	}
	return pcm
}

func decodeFlac(t *testing.T, data []byte) []int16 {
	t.Helper()
	stream, err := flac.New(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("flac.New: %v", err)
	}
	defer stream.Close()
	if stream.Info.SampleRate != SampleRate || stream.Info.NChannels != Channels {
		t.Fatalf("stream info %d Hz/%d ch", stream.Info.SampleRate, stream.Info.NChannels)
	}
	var out []int16
	for {
		f, err := stream.ParseNext()
		if errors.Is(err, io.EOF) {
			return out
		}
		if err != nil {
			t.Fatalf("ParseNext: %v", err)
		}
		for _, s := range f.Subframes[0].Samples {
			out = append(out, int16(s))
		}
	}
}

func TestFlacEncoderRoundTrip(t *testing.T) {
	samples := sineSamples(SampleRate*3/2 + 123) // 1.5s plus a partial block

	enc, err := NewFlac()
	if err != nil {
		t.Fatalf("NewFlac: %v", err)
	}
	if err := EncodePCM(enc, toPCM(samples)); err != nil {
		t.Fatalf("EncodePCM: %v", err)
	}
	if enc.TotalFrames() != uint64(len(samples)) {
		t.Errorf("TotalFrames = %d, want %d", enc.TotalFrames(), len(samples))
	}

	data := enc.Bytes()
	if len(data) < 4 || string(data[:4]) != "fLaC" {
		t.Fatal("output does not start with FLAC magic")
	}
	if len(data) >= len(samples)*2 {
		t.Errorf("FLAC %d bytes not smaller than raw %d", len(data), len(samples)*2)
	}

	got := decodeFlac(t, data)
	if len(got) != len(samples) {
		t.Fatalf("decoded %d samples, want %d", len(got), len(samples))
	}
	for i := range samples {
		if got[i] != samples[i] {
			t.Fatalf("sample %d = %d, want %d", i, got[i], samples[i])
		}
	}
}

func TestFlacEncoderEmpty(t *testing.T) {
	enc, err := NewFlac()
	if err != nil {
		t.Fatalf("NewFlac: %v", err)
	}
	if err := enc.EncodeBlock(nil); err != nil {
		t.Fatalf("EncodeBlock(nil): %v", err)
	}
	if err := enc.Close(); err != nil {
		t.Fatalf("Close on empty encoder: %v", err)
	}
	if enc.TotalFrames() != 0 {
		t.Errorf("TotalFrames = %d, want 0", enc.TotalFrames())
	}
	if len(enc.Bytes()) == 0 {
		t.Error("expected non-empty FLAC output (at least header)")
	}
}

func TestFlacEncoderCloseTwice(t *testing.T) {
	enc, err := NewFlac()
	if err != nil {
		t.Fatal(err)
	}
	if err := enc.EncodeBlock(sineSamples(BlockSize / 4)); err != nil {
		t.Fatal(err)
	}
	if err := enc.Close(); err != nil {
		t.Fatal(err)
	}
	n := len(enc.Bytes())
	if err := enc.Close(); err != nil {
		t.Fatalf("second Close: %v", err)
	}
	if len(enc.Bytes()) != n {
		t.Error("second Close changed output")
	}
}

func TestNew(t *testing.T) {
	tests := []struct {
		format, contentType string
	}{
		{"", "audio/flac"},
		{"flac", "audio/flac"},
		{"wav", "audio/wav"},
	}
	for _, tt := range tests {
		enc, err := New(tt.format)
		if err != nil {
			t.Fatalf("New(%q): %v", tt.format, err)
		}
		if enc.ContentType() != tt.contentType {
			t.Errorf("New(%q).ContentType() = %q, want %q", tt.format, enc.ContentType(), tt.contentType)
		}
	}
	if _, err := New("mp3"); err == nil {
		t.Error("expected error for mp3")
	}
}

func TestSamplesOddLength(t *testing.T) {
	got := Samples([]byte{0x01, 0x00, 0xff, 0xff, 0x07})
	if len(got) != 2 || got[0] != 1 || got[1] != -1 {
		t.Fatalf("Samples = %v, want [1 -1]", got)
	}
}
