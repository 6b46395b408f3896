package audio

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

var pickerDevices = []DeviceInfo{
	{ID: "1", Name: "Built-in Microphone"},
	{ID: "2", Name: "Blue Yeti USB"},
	{ID: "3", Name: "AirPods Pro"},
}

func TestPickerStartsOnConfiguredDevice(t *testing.T) {
	tests := []struct {
		current string
		want    int
	}{
		{"", 0},
		{"yeti", 1},
		{"AIRPODS", 2},
		{"webcam", 0},
	}
	for _, tt := range tests {
		if got := newPicker(pickerDevices, tt.current).cursor; got != tt.want {
			t.Errorf("newPicker(%q).cursor = %d, want %d", tt.current, got, tt.want)
		}
	}
}

func TestPickerKeys(t *testing.T) {
	p := newPicker(pickerDevices, "")
	down := []byte{0x1b, '[', 'B'}
	up := []byte{0x1b, '[', 'A'}

	for _, k := range [][]byte{down, down, down, []byte("j")} {
		if done, err := p.key(k); done || err != nil {
			t.Fatalf("key %q: done=%v err=%v", k, done, err)
		}
	}
	if p.cursor != 2 {
		t.Errorf("cursor = %d after moving past the end, want 2", p.cursor)
	}
	p.key(up)
	p.key([]byte("k"))
	p.key([]byte("k"))
	if p.cursor != 0 {
		t.Errorf("cursor = %d after moving past the top, want 0", p.cursor)
	}
	if done, _ := p.key([]byte("\r")); !done {
		t.Error("enter did not pick")
	}
	if _, err := p.key([]byte{3}); !errors.Is(err, ErrSelectionCancelled) {
		t.Errorf("ctrl+c err = %v", err)
	}
}

func TestRunPicker(t *testing.T) {
	var out bytes.Buffer
	in := &chunkReader{chunks: [][]byte{{0x1b, '[', 'B'}, {'\r'}}}
	dev, err := runPicker(newPicker(pickerDevices, "built-in"), in, &out)
	if err != nil {
		t.Fatal(err)
	}
	if dev.ID != "2" {
		t.Errorf("picked %+v, want Blue Yeti", dev)
	}
	s := out.String()
	if !strings.Contains(s, `configured listen.device: "built-in"`) {
		t.Errorf("configured device not shown:\n%s", s)
	}
	if !strings.Contains(s, "AirPods Pro \x1b[33m("+BluetoothWarning+")") {
		t.Errorf("bluetooth warning missing:\n%s", s)
	}
}

func TestRunPickerCancelled(t *testing.T) {
	in := &chunkReader{chunks: [][]byte{[]byte("q")}}
	if _, err := runPicker(newPicker(pickerDevices, ""), in, &bytes.Buffer{}); !errors.Is(err, ErrSelectionCancelled) {
		t.Errorf("err = %v", err)
	}
}

// chunkReader returns one key per Read, like a raw terminal.
type chunkReader struct {
	chunks [][]byte
}

func (r *chunkReader) Read(p []byte) (int, error) {
	if len(r.chunks) == 0 {
		return 0, errors.New("no more keys")
	}
	n := copy(p, r.chunks[0])
	r.chunks = r.chunks[1:]
	return n, nil
}
