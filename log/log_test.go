package log

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func setupLogDir(t *testing.T) string {
	t.Helper()
	tmp := t.TempDir()
	SetDir(tmp)
	t.Cleanup(func() { Close(); SetDir(""); SetConsole(nil) })
	return tmp
}

func TestResolveDirFlag(t *testing.T) {
	got, err := ResolveDir("/tmp/notes-log")
	if err != nil {
		t.Fatal(err)
	}
	if got != "/tmp/notes-log" {
		t.Errorf("got %q, want /tmp/notes-log", got)
	}
}

func TestResolveDirFlagRelative(t *testing.T) {
	got, err := ResolveDir("logs")
	if err != nil {
		t.Fatal(err)
	}
	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if want := filepath.Join(wd, "logs"); got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestResolveDirEnv(t *testing.T) {
	t.Setenv("NOTEWRITER_LOG_PATH", "/tmp/notewriter-env-log")
	got, err := ResolveDir("")
	if err != nil {
		t.Fatal(err)
	}
	if got != "/tmp/notewriter-env-log" {
		t.Errorf("got %q, want /tmp/notewriter-env-log", got)
	}
}

func TestResolveDirDefault(t *testing.T) {
	t.Setenv("NOTEWRITER_LOG_PATH", "")
	got, err := ResolveDir("")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(got, "notewriter") {
		t.Errorf("default dir %q does not mention notewriter", got)
	}
}

func TestInitCreatesFiles(t *testing.T) {
	tmp := setupLogDir(t)

	if err := Init(); err != nil {
		t.Fatal(err)
	}

	for _, name := range []string{"diagnostics_log.txt", "dictation_log.txt"} {
		if _, err := os.Stat(filepath.Join(tmp, name)); err != nil {
			t.Errorf("%s not created: %v", name, err)
		}
	}
	if SessionID() == "" {
		t.Error("expected session id after Init")
	}
}

func TestTyped(t *testing.T) {
	tmp := setupLogDir(t)

	if err := Init(); err != nil {
		t.Fatal(err)
	}

	Typed("hello world", true)

	data, err := os.ReadFile(filepath.Join(tmp, "dictation_log.txt"))
	if err != nil {
		t.Fatal(err)
	}
	line := string(data)
	if !strings.Contains(line, "\tmanual\thello world\n") {
		t.Errorf("unexpected dictation log line: %q", line)
	}
}

func TestConsoleMirror(t *testing.T) {
	setupLogDir(t)

	var buf bytes.Buffer
	SetConsole(&buf)
	if err := Init(); err != nil {
		t.Fatal(err)
	}

	Info("listening_start")

	if !strings.Contains(buf.String(), "listening_start") {
		t.Errorf("console did not receive event, got %q", buf.String())
	}
}

func TestNoopBeforeInit(t *testing.T) {
	setupLogDir(t)
	// none of these may panic with nil files
	Info("x")
	Errorf("y %d", 1)
	Typed("z", false)
	SessionEnd(0)
}

func TestCloseIdempotent(t *testing.T) {
	setupLogDir(t)

	if err := Init(); err != nil {
		t.Fatal(err)
	}
	Close()
	Close()
}
