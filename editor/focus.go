package editor

import (
	"context"
	"fmt"

	"github.com/go-vgo/robotgo"
)

// ClickFocus clicks once at a fixed screen coordinate. It assumes the
// editor window covers that point.
type ClickFocus struct {
	X, Y int
}

func (c ClickFocus) Focus(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	robotgo.Move(c.X, c.Y)
	robotgo.Click("left")
	return nil
}

// WindowFocus raises the window owned by the named process.
type WindowFocus struct {
	Name string
}

func (w WindowFocus) Focus(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := robotgo.ActiveName(w.Name); err != nil {
		return fmt.Errorf("activate %s: %w", w.Name, err)
	}
	return nil
}

// NewFocus builds the focus strategy named in the config.
func NewFocus(strategy string, x, y int, name string) (Focuser, error) {
	switch strategy {
	case "", "click":
		return ClickFocus{X: x, Y: y}, nil
	case "window":
		return WindowFocus{Name: name}, nil
	}
	return nil, fmt.Errorf("unknown focus strategy %q", strategy)
}
