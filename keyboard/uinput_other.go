//go:build !linux

package keyboard

import (
	"errors"
	"time"
)

var errNoUinput = errors.New("uinput typing is only available on Linux")

type Uinput struct{}

func NewUinput() (*Uinput, error) { return nil, errNoUinput }

func (u *Uinput) Type(string, time.Duration) error { return errNoUinput }

func (u *Uinput) Verify() (string, error) { return "", errNoUinput }
