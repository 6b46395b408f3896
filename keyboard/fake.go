package keyboard

import (
	"io"
	"sync"
	"time"
)

// Recorder is a Typer that keeps every call instead of typing.
type Recorder struct {
	mu        sync.Mutex
	texts     []string
	intervals []time.Duration
	err       error
	notify    chan struct{}
}

func NewRecorder() *Recorder {
	return &Recorder{notify: make(chan struct{}, 1)}
}

// FailWith makes subsequent Type calls record the text and return err.
func (r *Recorder) FailWith(err error) {
	r.mu.Lock()
	r.err = err
	r.mu.Unlock()
}

func (r *Recorder) Type(text string, interval time.Duration) error {
	r.mu.Lock()
	r.texts = append(r.texts, text)
	r.intervals = append(r.intervals, interval)
	err := r.err
	r.mu.Unlock()
	select {
	case r.notify <- struct{}{}:
	default:
	}
	return err
}

func (r *Recorder) Texts() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.texts...)
}

func (r *Recorder) Intervals() []time.Duration {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]time.Duration(nil), r.intervals...)
}

// WaitFor blocks until at least n calls were recorded or the timeout passes.
func (r *Recorder) WaitFor(n int, timeout time.Duration) bool {
	deadline := time.After(timeout)
	for {
		r.mu.Lock()
		got := len(r.texts)
		r.mu.Unlock()
		if got >= n {
			return true
		}
		select {
		case <-r.notify:
		case <-deadline:
			return false
		}
	}
}

// Writer types into an io.Writer, one write per call.
type Writer struct {
	mu sync.Mutex
	w  io.Writer
}

func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

func (w *Writer) Type(text string, _ time.Duration) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	_, err := io.WriteString(w.w, text)
	return err
}
