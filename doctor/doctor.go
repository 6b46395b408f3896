package doctor

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"notewriter/audio"
	"notewriter/config"
	"notewriter/editor"
	"notewriter/keyboard"
	"notewriter/phrase"
	"notewriter/shutdown"
	"notewriter/transcriber"
)

const typingProbe = "notewriter-doctor-test"

// Doctor walks the user through the three things dictation needs: the
// editor can be found, speech comes back as text, and typed keys land in
// the focused window.
type Doctor struct {
	cfg config.Config
	in  *bufio.Reader
	out io.Writer

	procs       editor.ProcessLister
	audio       audio.Context
	transcriber transcriber.Transcriber
	typer       keyboard.Typer
	countdown   int
	tick        time.Duration
}

func New(cfg config.Config, in io.Reader, out io.Writer) *Doctor {
	return &Doctor{
		cfg:       cfg,
		in:        bufio.NewReader(in),
		out:       out,
		procs:     editor.SystemProcesses{},
		countdown: 5,
		tick:      time.Second,
	}
}

// Run executes interactive diagnostic checks and returns an exit code (0=all pass, 1=any fail).
func Run(cfg config.Config) int {
	resetTerminal()
	ctx, stop := shutdown.Context(context.Background())
	defer stop()
	return New(cfg, os.Stdin, os.Stdout).Run(ctx)
}

func (d *Doctor) printf(format string, args ...any) {
	fmt.Fprintf(d.out, format, args...)
}

func (d *Doctor) readLine() string {
	line, _ := d.in.ReadString('\n')
	return strings.TrimSpace(line)
}

func (d *Doctor) confirm(question string) bool {
	d.printf("%s [y/n]: ", question)
	answer := strings.ToLower(d.readLine())
	return answer == "y" || answer == "yes"
}

func (d *Doctor) Run(ctx context.Context) int {
	d.printf("notewriter doctor - interactive system diagnostics\n")
	d.printf("==================================================\n")

	allPass := d.checkEditor(ctx)
	if allPass && !d.checkRecognition(ctx) {
		allPass = false
	}
	if allPass && !d.checkTyping(ctx) {
		allPass = false
	}

	d.printf("\n")
	if ctx.Err() != nil {
		d.printf("Interrupted\n")
		return 1
	}
	if allPass {
		d.printf("All checks passed!\n")
		return 0
	}
	d.printf("Some checks failed. See details above.\n")
	return 1
}

func (d *Doctor) checkEditor(ctx context.Context) bool {
	d.printf("\n[1/3] Editor detection\n")

	l := editor.NewLauncher(editor.Config{Name: d.cfg.Editor.Name, Command: d.cfg.Editor.Command}, nil).
		WithProcesses(d.procs)
	running, err := l.Running(ctx)
	if err != nil {
		d.printf("  FAIL: %v\n", err)
		return false
	}
	if running {
		d.printf("  PASS: %s is running\n", d.cfg.Editor.Name)
	} else {
		d.printf("  PASS: process list readable, %s not running (it will be started with %q)\n",
			d.cfg.Editor.Name, d.cfg.Editor.Command)
	}
	return true
}

func (d *Doctor) pickTranscriber() (transcriber.Transcriber, error) {
	if d.transcriber != nil {
		return d.transcriber, nil
	}
	if t, err := transcriber.New(d.cfg.Transcriber.Provider); err == nil {
		d.printf("Using provider: %s\n", t.Name())
		return t, nil
	}

	names := transcriber.Providers()
	d.printf("\nSelect transcription provider:\n")
	for i, n := range names {
		d.printf("  %d. %s\n", i+1, n)
	}
	d.printf("Choice [1-%d]: ", len(names))
	idx := 1
	if choice := d.readLine(); choice != "" {
		if _, err := fmt.Sscanf(choice, "%d", &idx); err != nil {
			return nil, fmt.Errorf("invalid choice %q", choice)
		}
	}
	if idx < 1 || idx > len(names) {
		return nil, fmt.Errorf("invalid choice %d", idx)
	}

	d.printf("Enter %s API key: ", names[idx-1])
	key := d.readLine()
	if key == "" {
		return nil, errors.New("API key required")
	}
	return transcriber.NewWithKey(names[idx-1], key)
}

func (d *Doctor) checkRecognition(ctx context.Context) bool {
	d.printf("\n[2/3] Microphone and recognition\n")

	actx := d.audio
	if actx == nil {
		var err error
		if actx, err = audio.NewContext(); err != nil {
			d.printf("  FAIL: cannot connect to audio: %v\n", err)
			return false
		}
		defer actx.Close()
	}

	dev, err := audio.FindDevice(actx, d.cfg.Listen.Device)
	if err != nil {
		d.printf("  FAIL: cannot list devices: %v\n", err)
		return false
	}
	capture, err := actx.NewCapture(dev, audio.DefaultCaptureConfig())
	if err != nil {
		d.printf("  FAIL: cannot open microphone: %v\n", err)
		return false
	}
	defer capture.Close()
	d.printf("Using device: %s\n", capture.DeviceName())
	if audio.IsBluetooth(capture.DeviceName()) {
		d.printf("  Warning: %s\n", audio.BluetoothWarning)
	}

	t, err := d.pickTranscriber()
	if err != nil {
		d.printf("  FAIL: %v\n", err)
		return false
	}
	if d.cfg.Transcriber.Language != "" {
		t.SetLanguage(d.cfg.Transcriber.Language)
	}

	cfg := phrase.Config{
		// give the user time to react to the prompt
		WaitTimeout:    5 * time.Second,
		PhraseLimit:    d.cfg.Listen.PhraseLimit,
		PauseThreshold: d.cfg.Listen.PauseThreshold,
		PreRoll:        d.cfg.Listen.PreRoll,
	}
	rec := phrase.NewRecorder(capture, phrase.NewEnergy(0), cfg)

	d.printf("\nPress Enter, stay quiet for a moment, then say a short sentence...")
	d.readLine()

	if d.cfg.Listen.Calibrate > 0 {
		if level, err := rec.Calibrate(ctx, d.cfg.Listen.Calibrate); err == nil {
			d.printf("  Ambient level %.0f, speak now\n", level)
		}
	}

	pcm, err := rec.Listen(ctx)
	if errors.Is(err, phrase.ErrWaitTimeout) {
		d.printf("  FAIL: no speech detected (check the input level)\n")
		return false
	}
	if err != nil {
		d.printf("  FAIL: recording error: %v\n", err)
		return false
	}
	d.printf("  Recorded %.1fs, recognizing...\n", float64(len(pcm)/audio.BytesPerSample)/audio.SampleRate)

	recognizer := transcriber.NewRecognizer(t, transcriber.SessionConfig{
		Format:   d.cfg.Transcriber.Format,
		Language: t.GetLanguage(),
	})
	text, err := recognizer.Recognize(ctx, pcm)
	switch {
	case errors.Is(err, transcriber.ErrNoSpeech):
		text = "(no speech detected)"
	case err != nil:
		d.printf("  FAIL: recognition error: %v\n", err)
		return false
	}

	d.printf("\n  Recognized text: %s\n\n", text)
	if d.confirm("Is this correct?") {
		d.printf("  PASS: recognition verified by user\n")
		return true
	}
	d.printf("  FAIL: recognition not confirmed\n")
	return false
}

func (d *Doctor) checkTyping(ctx context.Context) bool {
	d.printf("\n[3/3] Typing into the focused window (%s)\n", d.cfg.Typing.Backend)

	typer := d.typer
	if typer == nil {
		var err error
		if typer, err = keyboard.New(d.cfg.Typing.Backend); err != nil {
			d.printf("  FAIL: %v\n", err)
			if d.cfg.Typing.Backend == "uinput" {
				d.printf("  Fix with: sudo chmod 660 /dev/uinput && sudo chgrp input /dev/uinput\n")
			}
			return false
		}
	}

	if u, ok := typer.(*keyboard.Uinput); ok {
		msg, err := u.Verify()
		if err != nil {
			d.printf("  FAIL: %v\n", err)
			return false
		}
		d.printf("  %s\n", msg)
	}

	d.printf("Focus on a text editor window...\n")
	for i := d.countdown; i > 0; i-- {
		d.printf("  %d...\n", i)
		select {
		case <-time.After(d.tick):
		case <-ctx.Done():
			return false
		}
	}

	if err := typer.Type(typingProbe+"\n", d.cfg.Typing.Interval); err != nil {
		d.printf("  FAIL: typing failed: %v\n", err)
		return false
	}

	resetTerminal()
	d.printf("\n")
	if d.confirm(fmt.Sprintf("Did the text %q appear?", typingProbe)) {
		d.printf("  PASS: typing verified by user\n")
		return true
	}
	d.printf("  FAIL: typing not confirmed\n")
	return false
}
