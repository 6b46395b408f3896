//go:build integration

package test_test

import (
	"encoding/binary"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strings"
	"testing"
)

var testBinary string

func TestMain(m *testing.M) {
	testBinary = os.Getenv("NOTEWRITER_TEST_BIN")
	if testBinary == "" {
		fmt.Fprintln(os.Stderr, "NOTEWRITER_TEST_BIN not set; build with: go build -o /tmp/notewriter . && NOTEWRITER_TEST_BIN=/tmp/notewriter go test -tags integration ./test")
		os.Exit(1)
	}

	if err := os.MkdirAll("data", 0755); err != nil {
		fmt.Fprintf(os.Stderr, "failed to create data dir: %v\n", err)
		os.Exit(1)
	}
	silencePath := filepath.Join("data", "silence.wav")
	if err := generateSilenceWAV(silencePath, 16000, 1.0); err != nil {
		fmt.Fprintf(os.Stderr, "failed to generate silence.wav: %v\n", err)
		os.Exit(1)
	}
	code := m.Run()
	os.Remove(silencePath)
	os.Exit(code)
}

func generateSilenceWAV(path string, sampleRate int, durationS float64) error {
	const headerSize = 44
	numSamples := int(float64(sampleRate) * durationS)
	dataSize := numSamples * 2

	buf := make([]byte, headerSize+dataSize)
	copy(buf[0:4], "RIFF")
	binary.LittleEndian.PutUint32(buf[4:8], uint32(headerSize-8+dataSize))
	copy(buf[8:12], "WAVE")
	copy(buf[12:16], "fmt ")
	binary.LittleEndian.PutUint32(buf[16:20], 16)
	binary.LittleEndian.PutUint16(buf[20:22], 1) // PCM
	binary.LittleEndian.PutUint16(buf[22:24], 1) // mono
	binary.LittleEndian.PutUint32(buf[24:28], uint32(sampleRate))
	binary.LittleEndian.PutUint32(buf[28:32], uint32(sampleRate*2))
	binary.LittleEndian.PutUint16(buf[32:34], 2)  // block align
	binary.LittleEndian.PutUint16(buf[34:36], 16) // bits per sample
	copy(buf[36:40], "data")
	binary.LittleEndian.PutUint32(buf[40:44], uint32(dataSize))

	return os.WriteFile(path, buf, 0644)
}

func cmds(parts ...string) string {
	return strings.Join(parts, "\n") + "\n"
}

// runNotewriter runs the binary in -test mode and returns its stdout, which
// is where the typing sink writes.
func runNotewriter(t *testing.T, stdin string, args ...string) (stdout, logDir string) {
	t.Helper()
	logDir = t.TempDir()
	cmdArgs := append([]string{"-logpath", logDir}, args...)

	cmd := exec.Command(testBinary, cmdArgs...)
	cmd.Stdin = strings.NewReader(stdin)
	cmd.Env = os.Environ()
	var errBuf strings.Builder
	cmd.Stderr = &errBuf

	out, err := cmd.Output()
	if err != nil {
		t.Fatalf("notewriter exited with error: %v\nstderr: %s", err, errBuf.String())
	}
	return string(out), logDir
}

func readLog(t *testing.T, logDir, filename string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(logDir, filename))
	if err != nil {
		if os.IsNotExist(err) {
			return ""
		}
		t.Fatalf("failed to read %s: %v", filename, err)
	}
	return string(data)
}

// The binary picks a provider at startup even when nothing is recognized.
func requireProviderKey(t *testing.T) {
	t.Helper()
	for _, env := range []string{"GOOGLE_API_KEY", "GROQ_API_KEY", "OPENAI_API_KEY", "DEEPGRAM_API_KEY"} {
		if os.Getenv(env) != "" {
			return
		}
	}
	t.Skip("no transcription provider key set")
}

var stamped = regexp.MustCompile(`^\[\d{2}:\d{2}:\d{2}\] `)

func TestVersion(t *testing.T) {
	out, err := exec.Command(testBinary, "-version").Output()
	if err != nil {
		t.Fatalf("-version: %v", err)
	}
	if !strings.HasPrefix(string(out), "notewriter ") {
		t.Errorf("version output = %q", out)
	}
}

func TestManualType(t *testing.T) {
	requireProviderKey(t)
	out, logDir := runNotewriter(t, cmds("TYPE hello world", "SLEEP 200", "QUIT"), "-test", "data/silence.wav")
	if !stamped.MatchString(out) || !strings.HasSuffix(out, "] hello world\n") {
		t.Errorf("stdout = %q, want a stamped hello world line", out)
	}
	if !strings.Contains(readLog(t, logDir, "dictation_log.txt"), "manual\thello world") {
		t.Error("manual text missing from dictation_log.txt")
	}
}

func TestSilenceTypesNothing(t *testing.T) {
	requireProviderKey(t)
	out, logDir := runNotewriter(t, cmds("START", "WAIT", "STOP", "QUIT"), "-test", "data/silence.wav")
	if out != "" {
		t.Errorf("silence produced output %q", out)
	}
	diag := readLog(t, logDir, "diagnostics_log.txt")
	for _, want := range []string{"listening_start", "listening_stop", "session_end"} {
		if !strings.Contains(diag, want) {
			t.Errorf("diagnostics missing %s", want)
		}
	}
}

func TestDoubleStartIgnored(t *testing.T) {
	requireProviderKey(t)
	_, logDir := runNotewriter(t, cmds("START", "START", "STOP", "QUIT"), "-test", "data/silence.wav")
	if !strings.Contains(readLog(t, logDir, "diagnostics_log.txt"), "test_start_ignored") {
		t.Error("second START was not ignored")
	}
}

// TestSpeech needs a recording at data/speech.wav.
func TestSpeech(t *testing.T) {
	requireProviderKey(t)
	if _, err := os.Stat(filepath.Join("data", "speech.wav")); err != nil {
		t.Skip("data/speech.wav not present")
	}
	out, _ := runNotewriter(t, cmds("START", "WAIT", "STOP", "QUIT"), "-test", "data/speech.wav")
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	if len(lines) == 0 || lines[0] == "" {
		t.Fatal("nothing was typed")
	}
	for _, l := range lines {
		if !stamped.MatchString(l) {
			t.Errorf("line %q has no timestamp prefix", l)
		}
	}
}
