package keyboard

import (
	"fmt"
	"sync"
	"time"

	"github.com/atotto/clipboard"
	"github.com/micmonay/keybd_event"
)

// Paste puts the whole text on the clipboard and sends the paste chord,
// then restores the previous clipboard contents. It ignores the typing
// interval: the text arrives in one piece.
type Paste struct {
	mu      sync.Mutex
	once    sync.Once
	kb      keybd_event.KeyBonding
	kbErr   error
	settle  time.Duration
	restore bool
}

func NewPaste() *Paste {
	return &Paste{settle: 50 * time.Millisecond, restore: true}
}

func (p *Paste) init() error {
	p.once.Do(func() {
		p.kb, p.kbErr = keybd_event.NewKeyBonding()
		if p.kbErr == nil {
			// keybd_event registers a uinput device on Linux that needs a
			// moment before the compositor accepts its events
			time.Sleep(bondingDelay)
		}
	})
	return p.kbErr
}

func (p *Paste) Type(text string, _ time.Duration) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.init(); err != nil {
		return fmt.Errorf("keyboard binding: %w", err)
	}

	var previous string
	havePrevious := false
	if p.restore {
		if prev, err := clipboard.ReadAll(); err == nil {
			previous, havePrevious = prev, true
		}
	}

	if err := clipboard.WriteAll(text); err != nil {
		return fmt.Errorf("clipboard write: %w", err)
	}

	p.kb.Clear()
	p.kb.SetKeys(keybd_event.VK_V)
	setPasteModifier(&p.kb)
	if err := p.kb.Launching(); err != nil {
		return fmt.Errorf("paste chord: %w", err)
	}

	if havePrevious {
		// the target reads the clipboard asynchronously after the chord
		time.Sleep(p.settle)
		clipboard.WriteAll(previous)
	}
	return nil
}
