// Package panel holds the state behind the interactive control panel. The
// terminal and windowed front ends render it and forward button presses.
package panel

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"notewriter/dictation"
	"notewriter/log"
)

type Kind int

const (
	Info Kind = iota
	Warning
	Error
)

func (k Kind) String() string {
	switch k {
	case Warning:
		return "warning"
	case Error:
		return "error"
	}
	return "info"
}

// Color is the semantic color of the status line.
type Color string

const (
	Green  Color = "green"  // ready or success
	Blue   Color = "blue"   // listening
	Orange Color = "orange" // stopped
	Red    Color = "red"    // error
)

// Outcome is what the front end shows after an action: a modal
// acknowledgment plus the new status line.
type Outcome struct {
	Kind       Kind
	Title      string
	Message    string
	ClearInput bool
}

type State struct {
	Status    string
	Color     Color
	Listening bool
}

// CanStart and CanStop mirror the enabled state of the two listening
// buttons.
func (s State) CanStart() bool { return !s.Listening }
func (s State) CanStop() bool  { return s.Listening }

type Editor interface {
	EnsureOpen(ctx context.Context) bool
}

type Dictation interface {
	Start() bool
	Stop()
	Listening() bool
	TypeManual(text string) error
}

// Cues plays feedback sounds. Any method may be a no-op.
type Cues interface {
	Start()
	Stop()
	Error()
}

type silent struct{}

func (silent) Start() {}
func (silent) Stop()  {}
func (silent) Error() {}

const Title = "Notewriter"

const Instructions = `Instructions:
1. Click 'Open Editor' to open the text editor
2. Click 'Start Listening' to begin voice typing
3. Speak clearly into your microphone
4. Use manual input for specific text`

type Controller struct {
	editor     Editor
	dict       Dictation
	cues       Cues
	editorName string

	mu     sync.Mutex
	status string
	color  Color
}

func NewController(editor Editor, dict Dictation, editorName string) *Controller {
	return &Controller{
		editor:     editor,
		dict:       dict,
		cues:       silent{},
		editorName: editorName,
		status:     "Ready",
		color:      Green,
	}
}

func (c *Controller) WithCues(cues Cues) *Controller {
	if cues != nil {
		c.cues = cues
	}
	return c
}

func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return State{Status: c.status, Color: c.color, Listening: c.dict.Listening()}
}

// StatusLine is the status text as rendered by both front ends.
func (s State) StatusLine() string {
	return "Status: " + s.Status
}

func (c *Controller) setStatus(status string, color Color) {
	c.mu.Lock()
	c.status, c.color = status, color
	c.mu.Unlock()
}

func (c *Controller) OpenEditor(ctx context.Context) Outcome {
	if c.editor.EnsureOpen(ctx) {
		c.setStatus(c.editorName+" opened", Green)
		return Outcome{Kind: Info, Title: "Success", Message: c.editorName + " opened successfully!"}
	}
	c.setStatus("Failed to open "+c.editorName, Red)
	c.cues.Error()
	return Outcome{Kind: Error, Title: "Error", Message: "Failed to open " + c.editorName}
}

func (c *Controller) StartListening() Outcome {
	if !c.dict.Start() {
		return Outcome{Kind: Warning, Title: "Warning", Message: "Already listening!"}
	}
	c.setStatus("Listening for speech...", Blue)
	c.cues.Start()
	return Outcome{Kind: Info, Title: "Started", Message: "Started listening for speech. Speak into your microphone!"}
}

func (c *Controller) StopListening() Outcome {
	c.dict.Stop()
	c.setStatus("Stopped listening", Orange)
	c.cues.Stop()
	return Outcome{Kind: Info, Title: "Stopped", Message: "Stopped listening for speech"}
}

// TypeText types the manual input. The input is cleared only on success.
func (c *Controller) TypeText(input string) Outcome {
	text := strings.TrimSpace(input)
	err := c.dict.TypeManual(text)
	switch {
	case errors.Is(err, dictation.ErrEmptyText):
		return Outcome{Kind: Warning, Title: "Warning", Message: "Please enter some text first!"}
	case err != nil:
		log.Errorf("manual_type_failed: %v", err)
		c.setStatus("Typing failed", Red)
		c.cues.Error()
		return Outcome{Kind: Error, Title: "Error", Message: fmt.Sprintf("Failed to type text: %v", err)}
	}
	return Outcome{Kind: Info, Title: "Success", Message: "Text typed successfully!", ClearInput: true}
}
