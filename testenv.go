package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"notewriter/audio"
	"notewriter/beep"
	"notewriter/config"
	"notewriter/dictation"
	"notewriter/keyboard"
	"notewriter/log"
	"notewriter/phrase"
	"notewriter/transcriber"
)

// idleSource reports when a capture came back empty, which after the WAV
// has run out means the producer has nothing left to recognize.
type idleSource struct {
	rec  *phrase.Recorder
	idle chan struct{}
}

func (s *idleSource) Listen(ctx context.Context) ([]byte, error) {
	pcm, err := s.rec.Listen(ctx)
	if errors.Is(err, phrase.ErrWaitTimeout) {
		select {
		case s.idle <- struct{}{}:
		default:
		}
	}
	return pcm, err
}

// runTestMode replays a WAV file as the microphone and types into stdout.
// Commands on stdin: START, STOP, WAIT, TYPE <text>, SLEEP <ms>, QUIT.
func runTestMode(cfg config.Config, t transcriber.Transcriber, wavPath string) int {
	beep.Disable()

	if err := log.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not init logging: %v\n", err)
	}
	defer log.Close()
	log.SessionStart(t.Name(), "stdout", "test")

	fakeCtx, err := audio.NewFakeContext(wavPath, true)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading WAV: %v\n", err)
		return 1
	}
	capture, err := fakeCtx.NewCapture(nil, audio.DefaultCaptureConfig())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating capture: %v\n", err)
		return 1
	}
	defer capture.Close()
	fakeCapture := capture.(*audio.FakeCapture)

	if cfg.Transcriber.Language != "" {
		t.SetLanguage(cfg.Transcriber.Language)
	}
	src := &idleSource{
		rec: phrase.NewRecorder(capture, phrase.NewEnergy(0), phrase.Config{
			WaitTimeout:    cfg.Listen.WaitTimeout,
			PhraseLimit:    cfg.Listen.PhraseLimit,
			PauseThreshold: cfg.Listen.PauseThreshold,
			PreRoll:        cfg.Listen.PreRoll,
		}),
		idle: make(chan struct{}, 1),
	}
	rec := transcriber.NewRecognizer(t, transcriber.SessionConfig{
		Format:   cfg.Transcriber.Format,
		Language: t.GetLanguage(),
	})
	p := dictation.New(src, rec, keyboard.NewWriter(os.Stdout), dictation.Config{
		Interval:   0,
		PopWait:    cfg.Typing.PollWait,
		PollDelay:  cfg.Typing.PollDelay,
		ErrorPause: cfg.Listen.ErrorPause,
	})
	defer p.Close()

	wait := func() {
		<-fakeCapture.AudioDone()
		if p.Listening() {
			// drop a stale signal from before the audio ended
			select {
			case <-src.idle:
			default:
			}
			<-src.idle
		}
		for p.Pending() > 0 {
			time.Sleep(cfg.Typing.PollDelay)
		}
		// the consumer may still be typing the last popped line
		time.Sleep(2 * cfg.Typing.PollDelay)
	}

	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		cmd := strings.TrimSpace(scanner.Text())
		switch {
		case cmd == "START":
			if !p.Start() {
				log.Warn("test_start_ignored: already listening")
			}
		case cmd == "STOP":
			p.Stop()
		case cmd == "WAIT":
			wait()
		case cmd == "QUIT":
			log.SessionEnd(p.Typed())
			return 0
		case strings.HasPrefix(cmd, "TYPE "):
			if err := p.TypeManual(cmd[5:]); err != nil {
				log.Warnf("test_type_failed: %v", err)
			}
		case strings.HasPrefix(cmd, "SLEEP "):
			if ms, err := strconv.Atoi(cmd[6:]); err == nil {
				time.Sleep(time.Duration(ms) * time.Millisecond)
			}
		}
	}
	log.SessionEnd(p.Typed())
	return 0
}
