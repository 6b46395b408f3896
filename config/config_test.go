package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "notewriter.yaml")
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestDefaultValid(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults invalid: %v", err)
	}
	if cfg.Editor.Focus.X != 500 || cfg.Editor.Focus.Y != 300 {
		t.Errorf("focus = %d,%d, want 500,300", cfg.Editor.Focus.X, cfg.Editor.Focus.Y)
	}
	if cfg.Listen.WaitTimeout != time.Second || cfg.Listen.PhraseLimit != 5*time.Second {
		t.Errorf("listen timings = %s/%s", cfg.Listen.WaitTimeout, cfg.Listen.PhraseLimit)
	}
	if cfg.Typing.Interval != 20*time.Millisecond {
		t.Errorf("typing interval = %s", cfg.Typing.Interval)
	}
}

func TestLoadEmptyPath(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	if cfg != Default() {
		t.Error("empty path should return defaults")
	}
}

func TestLoadOverlay(t *testing.T) {
	path := writeConfig(t, `
editor:
  name: mousepad
  command: /usr/bin/mousepad
  focus:
    strategy: window
listen:
  phrase_limit: 8s
typing:
  backend: paste
transcriber:
  provider: groq
beep: false
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Editor.Name != "mousepad" || cfg.Editor.Command != "/usr/bin/mousepad" {
		t.Errorf("editor = %+v", cfg.Editor)
	}
	if cfg.Editor.Focus.Strategy != "window" {
		t.Errorf("strategy = %q", cfg.Editor.Focus.Strategy)
	}
	// untouched fields keep their defaults
	if cfg.Editor.Focus.X != 500 {
		t.Errorf("focus x = %d, want default 500", cfg.Editor.Focus.X)
	}
	if cfg.Listen.PhraseLimit != 8*time.Second {
		t.Errorf("phrase_limit = %s", cfg.Listen.PhraseLimit)
	}
	if cfg.Listen.WaitTimeout != time.Second {
		t.Errorf("wait_timeout = %s, want default", cfg.Listen.WaitTimeout)
	}
	if cfg.Typing.Backend != "paste" || cfg.Transcriber.Provider != "groq" || cfg.Beep {
		t.Errorf("unexpected overlay result %+v", cfg)
	}
}

func TestLoadUnknownField(t *testing.T) {
	path := writeConfig(t, "editor:\n  nmae: gedit\n")
	if _, err := Load(path); err == nil {
		t.Fatal("expected error for unknown field")
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   error
	}{
		{"bad strategy", func(c *Config) { c.Editor.Focus.Strategy = "hover" }, ErrFocusStrategy},
		{"bad backend", func(c *Config) { c.Typing.Backend = "xdotool" }, ErrTypingBackend},
		{"bad provider", func(c *Config) { c.Transcriber.Provider = "vosk" }, ErrProvider},
		{"bad format", func(c *Config) { c.Transcriber.Format = "mp3" }, ErrFormat},
		{"tiny wait", func(c *Config) { c.Listen.WaitTimeout = time.Millisecond }, ErrDuration},
		{"negative interval", func(c *Config) { c.Typing.Interval = -time.Millisecond }, ErrDuration},
		{"pause above limit", func(c *Config) { c.Listen.PauseThreshold = 6 * time.Second }, ErrDuration},
		{"auto provider", func(c *Config) { c.Transcriber.Provider = "" }, nil},
		{"window strategy", func(c *Config) { c.Editor.Focus.Strategy = "window" }, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.want == nil {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.want) {
				t.Fatalf("got %v, want %v", err, tt.want)
			}
		})
	}
}

func TestValidateMissingEditor(t *testing.T) {
	cfg := Default()
	cfg.Editor.Command = ""
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for empty editor command")
	}
}
