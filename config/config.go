package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

var (
	ErrFocusStrategy = errors.New("focus strategy must be click or window")
	ErrTypingBackend = errors.New("typing backend must be robotgo, uinput or paste")
	ErrProvider      = errors.New("unknown transcriber provider")
	ErrFormat        = errors.New("transcriber format must be flac or wav")
	ErrDuration      = errors.New("duration out of range")
)

type Config struct {
	Editor      Editor      `yaml:"editor"`
	Listen      Listen      `yaml:"listen"`
	Typing      Typing      `yaml:"typing"`
	Transcriber Transcriber `yaml:"transcriber"`
	Beep        bool        `yaml:"beep"`
}

type Editor struct {
	Name        string        `yaml:"name"`
	Command     string        `yaml:"command"`
	SettleDelay time.Duration `yaml:"settle_delay"`
	Focus       Focus         `yaml:"focus"`
}

// Focus selects how the editor window receives input focus after launch.
// "click" presses the left button at X,Y; "window" activates by process name.
type Focus struct {
	Strategy string `yaml:"strategy"`
	X        int    `yaml:"x"`
	Y        int    `yaml:"y"`
}

type Listen struct {
	Device         string        `yaml:"device"`
	WaitTimeout    time.Duration `yaml:"wait_timeout"`
	PhraseLimit    time.Duration `yaml:"phrase_limit"`
	PauseThreshold time.Duration `yaml:"pause_threshold"`
	PreRoll        time.Duration `yaml:"pre_roll"`
	Calibrate      time.Duration `yaml:"calibrate"`
	ErrorPause     time.Duration `yaml:"error_pause"`
}

type Typing struct {
	Backend   string        `yaml:"backend"`
	Interval  time.Duration `yaml:"interval"`
	PollWait  time.Duration `yaml:"poll_wait"`
	PollDelay time.Duration `yaml:"poll_delay"`
}

type Transcriber struct {
	Provider string `yaml:"provider"`
	Language string `yaml:"language"`
	Format   string `yaml:"format"`
}

func Default() Config {
	return Config{
		Editor: Editor{
			Name:        defaultEditorName,
			Command:     defaultEditorCommand,
			SettleDelay: 2 * time.Second,
			Focus:       Focus{Strategy: "click", X: 500, Y: 300},
		},
		Listen: Listen{
			WaitTimeout:    time.Second,
			PhraseLimit:    5 * time.Second,
			PauseThreshold: 800 * time.Millisecond,
			PreRoll:        300 * time.Millisecond,
			Calibrate:      500 * time.Millisecond,
			ErrorPause:     time.Second,
		},
		Typing: Typing{
			Backend:   "robotgo",
			Interval:  20 * time.Millisecond,
			PollWait:  100 * time.Millisecond,
			PollDelay: 100 * time.Millisecond,
		},
		Transcriber: Transcriber{
			Language: "en",
			Format:   "flac",
		},
		Beep: true,
	}
}

// Load overlays the YAML file at path on top of Default. An empty path
// returns the defaults unchanged.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return cfg, fmt.Errorf("open config: %w", err)
	}
	defer f.Close()

	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, cfg.Validate()
}

func (c Config) Validate() error {
	switch c.Editor.Focus.Strategy {
	case "click", "window":
	default:
		return fmt.Errorf("%w: %q", ErrFocusStrategy, c.Editor.Focus.Strategy)
	}
	if c.Editor.Name == "" || c.Editor.Command == "" {
		return errors.New("editor name and command are required")
	}

	switch c.Typing.Backend {
	case "robotgo", "uinput", "paste":
	default:
		return fmt.Errorf("%w: %q", ErrTypingBackend, c.Typing.Backend)
	}

	switch c.Transcriber.Provider {
	case "", "google", "groq", "openai", "deepgram":
	default:
		return fmt.Errorf("%w: %q", ErrProvider, c.Transcriber.Provider)
	}
	switch c.Transcriber.Format {
	case "flac", "wav":
	default:
		return fmt.Errorf("%w: %q", ErrFormat, c.Transcriber.Format)
	}

	checks := []struct {
		name string
		d    time.Duration
		min  time.Duration
	}{
		{"listen.wait_timeout", c.Listen.WaitTimeout, 100 * time.Millisecond},
		{"listen.phrase_limit", c.Listen.PhraseLimit, 500 * time.Millisecond},
		{"listen.pause_threshold", c.Listen.PauseThreshold, 100 * time.Millisecond},
		{"listen.pre_roll", c.Listen.PreRoll, 0},
		{"listen.calibrate", c.Listen.Calibrate, 0},
		{"listen.error_pause", c.Listen.ErrorPause, 0},
		{"editor.settle_delay", c.Editor.SettleDelay, 0},
		{"typing.interval", c.Typing.Interval, 0},
		{"typing.poll_wait", c.Typing.PollWait, time.Millisecond},
		{"typing.poll_delay", c.Typing.PollDelay, 0},
	}
	for _, ch := range checks {
		if ch.d < ch.min {
			return fmt.Errorf("%w: %s=%s (min %s)", ErrDuration, ch.name, ch.d, ch.min)
		}
	}
	if c.Listen.PauseThreshold >= c.Listen.PhraseLimit {
		return fmt.Errorf("%w: listen.pause_threshold must be below listen.phrase_limit", ErrDuration)
	}
	return nil
}
