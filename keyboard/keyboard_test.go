package keyboard

import (
	"bytes"
	"errors"
	"sync"
	"testing"
	"time"
)

func TestNewUnknownBackend(t *testing.T) {
	if _, err := New("xdotool"); err == nil {
		t.Fatal("expected error for unknown backend")
	}
}

func TestNewPasteBackend(t *testing.T) {
	typer, err := New("paste")
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := typer.(*Paste); !ok {
		t.Fatalf("got %T, want *Paste", typer)
	}
}

func TestRecorder(t *testing.T) {
	r := NewRecorder()
	if err := r.Type("a", 20*time.Millisecond); err != nil {
		t.Fatal(err)
	}
	boom := errors.New("boom")
	r.FailWith(boom)
	if err := r.Type("b", 0); !errors.Is(err, boom) {
		t.Fatalf("got %v, want boom", err)
	}

	texts := r.Texts()
	if len(texts) != 2 || texts[0] != "a" || texts[1] != "b" {
		t.Errorf("texts = %q", texts)
	}
	if iv := r.Intervals(); iv[0] != 20*time.Millisecond {
		t.Errorf("interval = %s", iv[0])
	}
}

func TestRecorderWaitFor(t *testing.T) {
	r := NewRecorder()
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 3; i++ {
			time.Sleep(5 * time.Millisecond)
			r.Type("x", 0)
		}
	}()
	if !r.WaitFor(3, 2*time.Second) {
		t.Fatal("WaitFor timed out")
	}
	wg.Wait()
	if r.WaitFor(4, 20*time.Millisecond) {
		t.Fatal("WaitFor(4) returned true with 3 calls")
	}
}

func TestWriter(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	w.Type("[10:00:00] one\n", time.Millisecond)
	w.Type("[10:00:01] two\n", 0)
	if got := buf.String(); got != "[10:00:00] one\n[10:00:01] two\n" {
		t.Errorf("got %q", got)
	}
}

func TestCharToKey(t *testing.T) {
	tests := []struct {
		c     byte
		code  uint16
		shift bool
		ok    bool
	}{
		{'a', 30, false, true},
		{'Z', 44, true, true},
		{'0', 11, false, true},
		{'1', 2, false, true},
		{' ', 57, false, true},
		{'\n', 28, false, true},
		{'?', 53, true, true},
		{'.', 52, false, true},
		{0xc3, 0, false, false},
	}
	for _, tt := range tests {
		code, shift, ok := charToKey(tt.c)
		if code != tt.code || shift != tt.shift || ok != tt.ok {
			t.Errorf("charToKey(%q) = %d,%v,%v want %d,%v,%v", tt.c, code, shift, ok, tt.code, tt.shift, tt.ok)
		}
	}
}

func TestRobotPacing(t *testing.T) {
	if testing.Short() {
		t.Skip("types into the focused window")
	}
	t.Skip("requires a desktop session")
}
