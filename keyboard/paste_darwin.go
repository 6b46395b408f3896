package keyboard

import "github.com/micmonay/keybd_event"

const bondingDelay = 0

func setPasteModifier(kb *keybd_event.KeyBonding) {
	kb.HasSuper(true) // Cmd+V on macOS
}
