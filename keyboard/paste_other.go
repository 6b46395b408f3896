//go:build !darwin

package keyboard

import (
	"runtime"
	"time"

	"github.com/micmonay/keybd_event"
)

var bondingDelay = func() time.Duration {
	if runtime.GOOS == "linux" {
		return 2 * time.Second
	}
	return 0
}()

func setPasteModifier(kb *keybd_event.KeyBonding) {
	kb.HasCTRL(true)
}
