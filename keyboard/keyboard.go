// Package keyboard injects text into whichever window holds input focus.
package keyboard

import (
	"fmt"
	"time"
)

// Typer delivers text as synthetic input. interval is the pause between
// characters for backends that type one key at a time.
type Typer interface {
	Type(text string, interval time.Duration) error
}

// New returns the typing backend named in the config.
func New(backend string) (Typer, error) {
	switch backend {
	case "", "robotgo":
		return NewRobot(), nil
	case "uinput":
		u, err := NewUinput()
		if err != nil {
			return nil, err
		}
		return u, nil
	case "paste":
		return NewPaste(), nil
	default:
		return nil, fmt.Errorf("unknown typing backend %q", backend)
	}
}
