package doctor

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"math"
	"strings"
	"testing"
	"time"

	"notewriter/audio"
	"notewriter/config"
	"notewriter/editor"
	"notewriter/keyboard"
	"notewriter/transcriber"
)

func spokenPCM() []byte {
	silence := make([]byte, 16000)
	n := audio.SampleRate / 2
	tone := make([]byte, n*2)
	for i := 0; i < n; i++ {
		s := int16(6000 * math.Sin(2*math.Pi*300*float64(i)/audio.SampleRate))
		binary.LittleEndian.PutUint16(tone[i*2:], uint16(s))
	}
	pcm := append(silence, tone...)
	return append(pcm, make([]byte, 32000)...)
}

func newTestDoctor(input string, out *bytes.Buffer) (*Doctor, *keyboard.Recorder) {
	cfg := config.Default()
	cfg.Editor.Name = "gedit"
	cfg.Listen.Calibrate = 0
	cfg.Listen.PauseThreshold = 200 * time.Millisecond

	typed := keyboard.NewRecorder()
	d := New(cfg, strings.NewReader(input), out)
	d.procs = editor.StaticProcesses{"bash", "gedit"}
	d.audio = audio.NewFakeContextPCM(spokenPCM(), false)
	d.transcriber = transcriber.NewFake("testing one two", nil)
	d.typer = typed
	d.countdown = 1
	d.tick = time.Millisecond
	return d, typed
}

func TestRunAllPass(t *testing.T) {
	var out bytes.Buffer
	d, typed := newTestDoctor("\ny\ny\n", &out)

	if code := d.Run(context.Background()); code != 0 {
		t.Fatalf("exit code %d\n%s", code, out.String())
	}
	for _, want := range []string{
		"PASS: gedit is running",
		"Recognized text: testing one two",
		"PASS: recognition verified by user",
		"PASS: typing verified by user",
		"All checks passed!",
	} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("output missing %q\n%s", want, out.String())
		}
	}
	if got := typed.Texts(); len(got) != 1 || got[0] != typingProbe+"\n" {
		t.Errorf("typed %q", got)
	}
}

func TestRunRecognitionRejected(t *testing.T) {
	var out bytes.Buffer
	d, typed := newTestDoctor("\nn\n", &out)

	if code := d.Run(context.Background()); code != 1 {
		t.Fatalf("exit code %d, want 1", code)
	}
	if !strings.Contains(out.String(), "FAIL: recognition not confirmed") {
		t.Errorf("output:\n%s", out.String())
	}
	if len(typed.Texts()) != 0 {
		t.Error("typing check ran after a failed step")
	}
}

func TestEditorNotRunningStillPasses(t *testing.T) {
	var out bytes.Buffer
	d, _ := newTestDoctor("", &out)
	d.procs = editor.StaticProcesses{"bash"}
	if !d.checkEditor(context.Background()) {
		t.Fatal("checkEditor failed")
	}
	if !strings.Contains(out.String(), "gedit not running") {
		t.Errorf("output:\n%s", out.String())
	}
}

type brokenLister struct{}

func (brokenLister) Names(context.Context) ([]string, error) { return nil, errors.New("denied") }

func TestEditorLookupFailure(t *testing.T) {
	var out bytes.Buffer
	d, _ := newTestDoctor("", &out)
	d.procs = brokenLister{}
	if d.checkEditor(context.Background()) {
		t.Fatal("checkEditor passed with a broken process list")
	}
}

func TestRecognitionServiceError(t *testing.T) {
	var out bytes.Buffer
	d, _ := newTestDoctor("\n", &out)
	d.transcriber = transcriber.NewFake("", &transcriber.ServiceError{Provider: "fake", StatusCode: 401})
	if d.checkRecognition(context.Background()) {
		t.Fatal("checkRecognition passed on a service error")
	}
	if !strings.Contains(out.String(), "FAIL: recognition error") {
		t.Errorf("output:\n%s", out.String())
	}
}

func TestTypingFailure(t *testing.T) {
	var out bytes.Buffer
	d, typed := newTestDoctor("", &out)
	typed.FailWith(errors.New("no display"))
	if d.checkTyping(context.Background()) {
		t.Fatal("checkTyping passed on a sink error")
	}
}

func TestPickTranscriberPrompt(t *testing.T) {
	for _, k := range []string{"GOOGLE_API_KEY", "GROQ_API_KEY", "OPENAI_API_KEY", "DEEPGRAM_API_KEY"} {
		t.Setenv(k, "")
	}
	var out bytes.Buffer
	d, _ := newTestDoctor("2\nsecret\n", &out)
	d.transcriber = nil

	tr, err := d.pickTranscriber()
	if err != nil {
		t.Fatal(err)
	}
	if tr.Name() != "groq" {
		t.Errorf("picked %s, want groq", tr.Name())
	}

	d, _ = newTestDoctor("9\n", &out)
	d.transcriber = nil
	if _, err := d.pickTranscriber(); err == nil {
		t.Error("expected error for out-of-range choice")
	}
}
