//go:build linux

package keyboard

import (
	"encoding/binary"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"syscall"
	"time"
)

// ioctl constants from linux/uinput.h
const (
	uiSetEvbit  = 0x40045564 // UI_SET_EVBIT
	uiSetKeybit = 0x40045565 // UI_SET_KEYBIT
	uiDevCreate = 0x5501     // UI_DEV_CREATE
)

// input event types from linux/input-event-codes.h
const (
	evSyn = 0x00
	evKey = 0x01

	keyLeftShift = 42
)

const (
	busUSB     = 0x03
	deviceName = "notewriter-kbd"
)

type inputEvent struct {
	Time  syscall.Timeval
	Type  uint16
	Code  uint16
	Value int32
}

type inputID struct {
	Bustype uint16
	Vendor  uint16
	Product uint16
	Version uint16
}

type uinputUserDev struct {
	Name         [80]byte
	ID           inputID
	FfEffectsMax uint32
	Absmax       [64]int32
	Absmin       [64]int32
	Absfuzz      [64]int32
	Absflat      [64]int32
}

// Uinput types through a virtual keyboard created on /dev/uinput. It works
// under Wayland compositors where X11 synthetic input is ignored, but only
// covers the US layout ASCII set; other characters are skipped.
type Uinput struct {
	mu sync.Mutex
	fd *os.File
}

var (
	shared     *Uinput
	sharedOnce sync.Once
	sharedErr  error
)

// NewUinput opens the process-wide virtual keyboard, creating it on first use.
func NewUinput() (*Uinput, error) {
	sharedOnce.Do(func() {
		f, err := openUinput()
		if err != nil {
			sharedErr = err
			return
		}
		shared = &Uinput{fd: f}
		// Give compositor time to recognize the new input device
		time.Sleep(200 * time.Millisecond)
	})
	return shared, sharedErr
}

func ioctl(f *os.File, req, arg uintptr) error {
	if _, _, errno := syscall.Syscall(syscall.SYS_IOCTL, f.Fd(), req, arg); errno != 0 {
		return errno
	}
	return nil
}

func openUinput() (*os.File, error) {
	path := "/dev/uinput"
	if _, err := os.Stat(path); err != nil {
		path = "/dev/input/uinput"
		if _, err := os.Stat(path); err != nil {
			return nil, errors.New("uinput device not found, try: sudo modprobe uinput")
		}
	}
	f, err := os.OpenFile(path, os.O_WRONLY|syscall.O_NONBLOCK, os.ModeDevice)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}

	fail := func(err error) (*os.File, error) {
		f.Close()
		return nil, err
	}
	if err := ioctl(f, uiSetEvbit, evKey); err != nil {
		return fail(err)
	}
	if err := ioctl(f, uiSetEvbit, evSyn); err != nil {
		return fail(err)
	}
	// Register all standard keys so udev classifies this as a keyboard
	for i := uintptr(0); i < 256; i++ {
		if err := ioctl(f, uiSetKeybit, i); err != nil {
			return fail(err)
		}
	}

	dev := uinputUserDev{}
	copy(dev.Name[:], deviceName)
	dev.ID.Bustype = busUSB
	dev.ID.Vendor = 0x1234
	dev.ID.Product = 0x5679
	dev.ID.Version = 1
	if err := binary.Write(f, binary.LittleEndian, &dev); err != nil {
		return fail(err)
	}
	if err := ioctl(f, uiDevCreate, 0); err != nil {
		return fail(err)
	}
	return f, nil
}

func (u *Uinput) writeEvent(typ, code uint16, value int32) error {
	ev := inputEvent{Type: typ, Code: code, Value: value}
	return binary.Write(u.fd, binary.LittleEndian, &ev)
}

func (u *Uinput) key(code uint16, value int32) error {
	if err := u.writeEvent(evKey, code, value); err != nil {
		return err
	}
	return u.writeEvent(evSyn, 0, 0)
}

func (u *Uinput) tap(code uint16, shift bool) error {
	if shift {
		if err := u.key(keyLeftShift, 1); err != nil {
			return err
		}
	}
	if err := u.key(code, 1); err != nil {
		return err
	}
	if err := u.key(code, 0); err != nil {
		return err
	}
	if shift {
		return u.key(keyLeftShift, 0)
	}
	return nil
}

func (u *Uinput) Type(text string, interval time.Duration) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	for i := 0; i < len(text); i++ {
		code, shift, ok := charToKey(text[i])
		if !ok {
			continue
		}
		if err := u.tap(code, shift); err != nil {
			return fmt.Errorf("uinput key %q: %w", text[i], err)
		}
		if interval > 0 {
			time.Sleep(interval)
		}
	}
	return nil
}

// Verify types a single space and reads it back from the kernel input layer
// to confirm the virtual keyboard is delivering events.
func (u *Uinput) Verify() (string, error) {
	entries, err := os.ReadDir("/sys/class/input")
	if err != nil {
		return "", fmt.Errorf("cannot scan input devices: %w", err)
	}

	var evdevPath string
	for _, e := range entries {
		if !strings.HasPrefix(e.Name(), "event") {
			continue
		}
		data, err := os.ReadFile(filepath.Join("/sys/class/input", e.Name(), "device", "name"))
		if err != nil {
			continue
		}
		if strings.TrimSpace(string(data)) == deviceName {
			evdevPath = filepath.Join("/dev/input", e.Name())
			break
		}
	}
	if evdevPath == "" {
		return "", errors.New(deviceName + " evdev device not found")
	}

	evdev, err := os.Open(evdevPath)
	if err != nil {
		return "", fmt.Errorf("cannot open %s: %w", evdevPath, err)
	}
	defer evdev.Close()

	if err := u.Type(" ", 0); err != nil {
		return "", err
	}

	ch := make(chan error, 1)
	go func() {
		buf := make([]byte, 24*32)
		n, err := evdev.Read(buf)
		if err != nil {
			ch <- err
			return
		}
		for i := 0; i+24 <= n; i += 24 {
			if binary.LittleEndian.Uint16(buf[i+16:]) == evKey && binary.LittleEndian.Uint16(buf[i+18:]) == 57 {
				ch <- nil
				return
			}
		}
		ch <- errors.New("space key event missing")
	}()

	select {
	case err := <-ch:
		if err != nil {
			return "", err
		}
		return "keystroke verified via " + evdevPath, nil
	case <-time.After(500 * time.Millisecond):
		return "", errors.New("timed out waiting for keystroke events")
	}
}
