package audio

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

var ErrSelectionCancelled = errors.New("microphone selection cancelled")

// BluetoothWarning is shown next to headsets that fall back to the
// narrowband hands-free profile while the microphone is open.
const BluetoothWarning = "bluetooth headset: recognition may suffer"

var btKeywords = []string{
	"airpods", "beats", "bose", "wh-1000", "wf-1000",
	"sony wh-", "sony wf-",
	"jabra", "galaxy buds", "pixel buds", "powerbeats",
	"jbl ", "sennheiser momentum", "plantronics",
	"tozo", "anker soundcore", "skullcandy",
	"bluetooth", " bt ", " bt)", " bt]",
}

// IsBluetooth guesses from the device name whether the microphone is a
// bluetooth headset.
func IsBluetooth(name string) bool {
	lower := strings.ToLower(name)
	for _, kw := range btKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

func matches(d DeviceInfo, name string) bool {
	return strings.Contains(strings.ToLower(d.Name), strings.ToLower(name))
}

// FindDevice returns the first capture device whose name contains name
// (case-insensitive). An empty name selects the system default (nil).
func FindDevice(ctx Context, name string) (*DeviceInfo, error) {
	if name == "" {
		return nil, nil
	}
	devices, err := ctx.Devices()
	if err != nil {
		return nil, fmt.Errorf("enumerating devices: %w", err)
	}
	for i := range devices {
		if matches(devices[i], name) {
			return &devices[i], nil
		}
	}
	return nil, fmt.Errorf("no capture device matching %q", name)
}

// picker is the state of the -setup microphone list.
type picker struct {
	devices []DeviceInfo
	current string
	cursor  int
}

// newPicker starts the cursor on the device named by listen.device, if any.
func newPicker(devices []DeviceInfo, current string) *picker {
	p := &picker{devices: devices, current: current}
	if current == "" {
		return p
	}
	for i, d := range devices {
		if matches(d, current) {
			p.cursor = i
			break
		}
	}
	return p
}

// key applies one read from the raw terminal. done is true once a device
// has been chosen.
func (p *picker) key(in []byte) (done bool, err error) {
	switch {
	case len(in) == 1 && (in[0] == '\r' || in[0] == '\n'):
		return true, nil
	case len(in) == 1 && (in[0] == 3 || in[0] == 'q'): // ctrl+c
		return false, ErrSelectionCancelled
	case len(in) == 1 && in[0] == 'j',
		len(in) == 3 && in[0] == 0x1b && in[1] == '[' && in[2] == 'B':
		if p.cursor < len(p.devices)-1 {
			p.cursor++
		}
	case len(in) == 1 && in[0] == 'k',
		len(in) == 3 && in[0] == 0x1b && in[1] == '[' && in[2] == 'A':
		if p.cursor > 0 {
			p.cursor--
		}
	}
	return false, nil
}

// render draws the list and returns how many lines it used.
func (p *picker) render(w io.Writer) int {
	lines := 2
	fmt.Fprint(w, "\r\x1b[J")
	fmt.Fprint(w, "Microphone for dictation (up/down or j/k, Enter to pick, q to cancel):\r\n")
	if p.current != "" {
		fmt.Fprintf(w, "configured listen.device: %q\r\n", p.current)
		lines++
	}
	fmt.Fprint(w, "\r\n")
	for i, d := range p.devices {
		note := ""
		if IsBluetooth(d.Name) {
			note = " \x1b[33m(" + BluetoothWarning + ")\x1b[0m"
		}
		if i == p.cursor {
			fmt.Fprintf(w, "  \x1b[1;36m> %s%s\x1b[0m\r\n", d.Name, note)
		} else {
			fmt.Fprintf(w, "    %s%s\r\n", d.Name, note)
		}
	}
	return lines + len(p.devices)
}

// SelectDevice lets the user pick the dictation microphone in the terminal.
// With a single device it returns that device without prompting.
func SelectDevice(ctx Context, current string) (*DeviceInfo, error) {
	devices, err := ctx.Devices()
	if err != nil {
		return nil, fmt.Errorf("enumerating devices: %w", err)
	}
	if len(devices) == 0 {
		return nil, errors.New("no microphone found")
	}
	if len(devices) == 1 {
		return &devices[0], nil
	}

	fd := int(os.Stdin.Fd())
	oldState, err := term.MakeRaw(fd)
	if err != nil {
		return nil, fmt.Errorf("terminal raw mode: %w", err)
	}
	defer term.Restore(fd, oldState)

	return runPicker(newPicker(devices, current), os.Stdin, os.Stdout)
}

func runPicker(p *picker, in io.Reader, out io.Writer) (*DeviceInfo, error) {
	lines := p.render(out)
	buf := make([]byte, 3)
	for {
		n, err := in.Read(buf)
		if err != nil {
			return nil, fmt.Errorf("reading key: %w", err)
		}
		done, err := p.key(buf[:n])
		if err != nil {
			fmt.Fprint(out, "\r\n")
			return nil, err
		}
		if done {
			fmt.Fprint(out, "\r\n")
			return &p.devices[p.cursor], nil
		}
		fmt.Fprintf(out, "\x1b[%dA", lines)
		lines = p.render(out)
	}
}
