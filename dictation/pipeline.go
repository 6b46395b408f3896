// Package dictation runs the listen, recognize and type loop.
//
// A producer captures one bounded phrase at a time, recognizes it and
// queues the text. A consumer pops the queue and types each line with a
// timestamp prefix. The consumer lives as long as the pipeline so text
// recognized before Stop still reaches the editor.
package dictation

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"notewriter/log"
	"notewriter/phrase"
	"notewriter/transcriber"
)

var ErrEmptyText = errors.New("empty text")

// PhraseSource yields one bounded capture of raw PCM per call.
type PhraseSource interface {
	Listen(ctx context.Context) ([]byte, error)
}

type Recognizer interface {
	Recognize(ctx context.Context, pcm []byte) (string, error)
}

// Sink receives formatted lines. interval paces per-character backends.
type Sink interface {
	Type(text string, interval time.Duration) error
}

type Config struct {
	Interval   time.Duration // pause between typed characters
	PopWait    time.Duration // consumer wait for a queued phrase
	PollDelay  time.Duration // consumer delay after every iteration
	ErrorPause time.Duration // producer backoff after an unexpected error
}

func DefaultConfig() Config {
	return Config{
		Interval:   20 * time.Millisecond,
		PopWait:    100 * time.Millisecond,
		PollDelay:  100 * time.Millisecond,
		ErrorPause: time.Second,
	}
}

type Pipeline struct {
	src   PhraseSource
	rec   Recognizer
	sink  Sink
	cfg   Config
	queue *Queue
	now   func() time.Time

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu           sync.Mutex
	stop         chan struct{} // nil while idle
	producerDone chan struct{} // closed when the latest producer returns
	consumerOnce sync.Once

	typed atomic.Int64
}

func New(src PhraseSource, rec Recognizer, sink Sink, cfg Config) *Pipeline {
	ctx, cancel := context.WithCancel(context.Background())
	return &Pipeline{
		src:    src,
		rec:    rec,
		sink:   sink,
		cfg:    cfg,
		queue:  NewQueue(),
		now:    time.Now,
		ctx:    ctx,
		cancel: cancel,
	}
}

// Format prefixes text with the wall-clock time and ends it with a newline.
func Format(t time.Time, text string) string {
	return t.Format("[15:04:05] ") + text + "\n"
}

// Start begins a listening session. It returns false when one is already
// running or the pipeline is closed.
func (p *Pipeline) Start() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.stop != nil || p.ctx.Err() != nil {
		return false
	}
	stop := make(chan struct{})
	p.stop = stop
	prev := p.producerDone
	done := make(chan struct{})
	p.producerDone = done

	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		defer close(done)
		// a stopped producer may still be inside Listen or Recognize
		if prev != nil {
			select {
			case <-prev:
			case <-p.ctx.Done():
				return
			}
		}
		p.produce(stop)
	}()
	p.consumerOnce.Do(func() {
		p.wg.Add(1)
		go func() {
			defer p.wg.Done()
			p.consume()
		}()
	})
	log.Info("listening_start")
	return true
}

// Stop ends the session at the producer's next checkpoint. A capture or
// recognition already in flight completes and its text is still typed.
func (p *Pipeline) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.stop == nil {
		return
	}
	close(p.stop)
	p.stop = nil
	log.Infof("listening_stop queued=%d", p.queue.Len())
}

func (p *Pipeline) Listening() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.stop != nil
}

// Typed returns the number of lines delivered to the sink.
func (p *Pipeline) Typed() int {
	return int(p.typed.Load())
}

// Close stops listening, cancels in-flight work and waits for both loops.
func (p *Pipeline) Close() {
	p.Stop()
	p.cancel()
	p.wg.Wait()
}

// TypeManual types text immediately, bypassing the queue.
func (p *Pipeline) TypeManual(text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return ErrEmptyText
	}
	if err := p.sink.Type(Format(p.now(), text), p.cfg.Interval); err != nil {
		log.Errorf("type_failed manual: %v", err)
		return err
	}
	p.typed.Add(1)
	log.Typed(text, true)
	return nil
}

func stopped(stop <-chan struct{}) bool {
	select {
	case <-stop:
		return true
	default:
		return false
	}
}

func (p *Pipeline) produce(stop <-chan struct{}) {
	for !stopped(stop) && p.ctx.Err() == nil {
		pcm, err := p.src.Listen(p.ctx)
		if err == nil {
			var text string
			text, err = p.rec.Recognize(p.ctx, pcm)
			if err == nil {
				if text = strings.TrimSpace(text); text != "" {
					log.Recognized(text, p.queue.Push(text))
				}
				continue
			}
		}
		if !p.handleError(err, stop) {
			return
		}
	}
}

// handleError reports whether the producer should keep going.
func (p *Pipeline) handleError(err error, stop <-chan struct{}) bool {
	var svcErr *transcriber.ServiceError
	switch {
	case p.ctx.Err() != nil:
		return false
	case errors.Is(err, phrase.ErrWaitTimeout), errors.Is(err, transcriber.ErrNoSpeech):
		return true
	case errors.As(err, &svcErr):
		log.Warnf("recognition_service_error: %v", err)
		return true
	}
	log.Errorf("listen_loop_error: %v", err)
	t := time.NewTimer(p.cfg.ErrorPause)
	defer t.Stop()
	select {
	case <-t.C:
		return true
	case <-stop:
		return false
	case <-p.ctx.Done():
		return false
	}
}

func (p *Pipeline) consume() {
	for p.ctx.Err() == nil {
		if text, ok := p.queue.Pop(p.ctx, p.cfg.PopWait); ok {
			if err := p.sink.Type(Format(p.now(), text), p.cfg.Interval); err != nil {
				log.Errorf("type_failed: %v", err)
			} else {
				p.typed.Add(1)
				log.Typed(text, false)
			}
		}
		t := time.NewTimer(p.cfg.PollDelay)
		select {
		case <-t.C:
		case <-p.ctx.Done():
			t.Stop()
			return
		}
	}
}

// Pending returns the number of recognized phrases not yet typed.
func (p *Pipeline) Pending() int {
	return p.queue.Len()
}
