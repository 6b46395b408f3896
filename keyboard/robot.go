package keyboard

import (
	"fmt"
	"time"

	"github.com/go-vgo/robotgo"
)

// Robot types through robotgo one rune at a time so the target window sees
// ordinary key events at the configured pace.
type Robot struct {
	sleep func(time.Duration)
}

func NewRobot() *Robot {
	return &Robot{sleep: time.Sleep}
}

func (r *Robot) Type(text string, interval time.Duration) error {
	for _, ch := range text {
		switch ch {
		case '\n':
			if err := robotgo.KeyTap("enter"); err != nil {
				return fmt.Errorf("robotgo enter: %w", err)
			}
		case '\t':
			if err := robotgo.KeyTap("tab"); err != nil {
				return fmt.Errorf("robotgo tab: %w", err)
			}
		default:
			robotgo.TypeStr(string(ch))
		}
		if interval > 0 {
			r.sleep(interval)
		}
	}
	return nil
}
