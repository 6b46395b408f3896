package main

import (
	"context"
	"fmt"

	"notewriter/audio"
	"notewriter/beep"
	"notewriter/config"
	"notewriter/dictation"
	"notewriter/editor"
	"notewriter/keyboard"
	"notewriter/log"
	"notewriter/panel"
	"notewriter/phrase"
	"notewriter/transcriber"
)

// app is the assembled program: one microphone, one recognizer, one typing
// sink, the pipeline that connects them and the editor launcher.
type app struct {
	cfg         config.Config
	capture     audio.CaptureDevice
	recorder    *phrase.Recorder
	transcriber transcriber.Transcriber
	pipeline    *dictation.Pipeline
	launcher    *editor.Launcher
	panel       *panel.Controller
}

func newApp(ctx context.Context, cfg config.Config, actx audio.Context, t transcriber.Transcriber, typer keyboard.Typer) (*app, error) {
	dev, err := audio.FindDevice(actx, cfg.Listen.Device)
	if err != nil {
		return nil, fmt.Errorf("find device: %w", err)
	}
	if cfg.Listen.Device != "" && dev == nil {
		log.Warnf("device_not_found name=%q using system default", cfg.Listen.Device)
	}
	capture, err := actx.NewCapture(dev, audio.DefaultCaptureConfig())
	if err != nil {
		return nil, fmt.Errorf("open microphone: %w", err)
	}
	log.Info("recording_device: " + capture.DeviceName())
	if audio.IsBluetooth(capture.DeviceName()) {
		log.Warn("bluetooth_microphone: " + audio.BluetoothWarning)
	}

	var detector phrase.Detector
	if vad, err := phrase.NewVAD(); err == nil {
		detector = vad
	} else {
		log.Warnf("vad_unavailable: %v", err)
		detector = phrase.NewEnergy(0)
	}
	recorder := phrase.NewRecorder(capture, detector, phrase.Config{
		WaitTimeout:    cfg.Listen.WaitTimeout,
		PhraseLimit:    cfg.Listen.PhraseLimit,
		PauseThreshold: cfg.Listen.PauseThreshold,
		PreRoll:        cfg.Listen.PreRoll,
	})
	if cfg.Listen.Calibrate > 0 {
		if _, err := recorder.Calibrate(ctx, cfg.Listen.Calibrate); err != nil {
			log.Warnf("calibration_failed: %v", err)
		}
	}

	if cfg.Transcriber.Language != "" {
		t.SetLanguage(cfg.Transcriber.Language)
	}
	go transcriber.Warm(ctx, t)
	recognizer := transcriber.NewRecognizer(t, transcriber.SessionConfig{
		Format:   cfg.Transcriber.Format,
		Language: t.GetLanguage(),
	})

	focus, err := editor.NewFocus(cfg.Editor.Focus.Strategy, cfg.Editor.Focus.X, cfg.Editor.Focus.Y, cfg.Editor.Name)
	if err != nil {
		capture.Close()
		return nil, err
	}
	launcher := editor.NewLauncher(editor.Config{
		Name:        cfg.Editor.Name,
		Command:     cfg.Editor.Command,
		SettleDelay: cfg.Editor.SettleDelay,
	}, focus)

	pipeline := dictation.New(recorder, recognizer, typer, dictation.Config{
		Interval:   cfg.Typing.Interval,
		PopWait:    cfg.Typing.PollWait,
		PollDelay:  cfg.Typing.PollDelay,
		ErrorPause: cfg.Listen.ErrorPause,
	})

	var cues panel.Cues
	if cfg.Beep {
		cues = beep.Cues{}
	}
	return &app{
		cfg:         cfg,
		capture:     capture,
		recorder:    recorder,
		transcriber: t,
		pipeline:    pipeline,
		launcher:    launcher,
		panel:       panel.NewController(launcher, pipeline, cfg.Editor.Name).WithCues(cues),
	}, nil
}

func (a *app) providerLine() string {
	label := a.transcriber.Name()
	if lang := a.transcriber.GetLanguage(); lang != "" {
		label += " (" + lang + ")"
	}
	return fmt.Sprintf("[%s | %s | mic: %s]", a.cfg.Transcriber.Format, label, a.capture.DeviceName())
}

// Close stops both pipeline loops and releases the microphone.
func (a *app) Close() {
	a.pipeline.Close()
	a.capture.Close()
	if c, ok := a.transcriber.(interface{ Close() error }); ok {
		c.Close()
	}
}
