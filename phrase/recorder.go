package phrase

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"notewriter/audio"
	"notewriter/log"
)

// ErrWaitTimeout is returned by Listen when no speech starts within the
// wait timeout. It is an ordinary outcome, not a device failure.
var ErrWaitTimeout = errors.New("no speech before wait timeout")

type Config struct {
	WaitTimeout    time.Duration
	PhraseLimit    time.Duration
	PauseThreshold time.Duration
	PreRoll        time.Duration
}

func DefaultConfig() Config {
	return Config{
		WaitTimeout:    time.Second,
		PhraseLimit:    5 * time.Second,
		PauseThreshold: 800 * time.Millisecond,
		PreRoll:        300 * time.Millisecond,
	}
}

// Recorder turns a continuous capture device into bounded phrases.
// Only one Listen or Calibrate runs at a time; a second caller blocks until
// the device is free.
type Recorder struct {
	capture  audio.CaptureDevice
	detector Detector
	cfg      Config

	mu sync.Mutex

	// slack beyond the configured durations before a stalled device is
	// abandoned
	stallGrace time.Duration
}

func NewRecorder(capture audio.CaptureDevice, detector Detector, cfg Config) *Recorder {
	return &Recorder{
		capture:    capture,
		detector:   detector,
		cfg:        cfg,
		stallGrace: 2 * time.Second,
	}
}

func (r *Recorder) DeviceName() string { return r.capture.DeviceName() }

// frameFeed collects callback data and hands out whole frames.
type frameFeed struct {
	mu     sync.Mutex
	buf    []byte
	notify chan struct{}
}

func newFrameFeed() *frameFeed {
	return &frameFeed{notify: make(chan struct{}, 1)}
}

func (f *frameFeed) write(data []byte, _ uint32) {
	f.mu.Lock()
	f.buf = append(f.buf, data...)
	f.mu.Unlock()
	select {
	case f.notify <- struct{}{}:
	default:
	}
}

func (f *frameFeed) frames() [][]byte {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out [][]byte
	for len(f.buf) >= FrameBytes {
		frame := make([]byte, FrameBytes)
		copy(frame, f.buf[:FrameBytes])
		f.buf = f.buf[FrameBytes:]
		out = append(out, frame)
	}
	return out
}

func (r *Recorder) open() (*frameFeed, error) {
	feed := newFrameFeed()
	r.capture.SetCallback(feed.write)
	if err := r.capture.Start(); err != nil {
		r.capture.ClearCallback()
		return nil, fmt.Errorf("start capture: %w", err)
	}
	return feed, nil
}

func (r *Recorder) close() {
	r.capture.Stop()
	r.capture.ClearCallback()
}

// Listen captures one phrase: it waits up to WaitTimeout for speech to start,
// then records until PauseThreshold of silence or PhraseLimit. The returned
// PCM includes up to PreRoll of audio from before the onset.
func (r *Recorder) Listen(ctx context.Context) ([]byte, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	feed, err := r.open()
	if err != nil {
		return nil, err
	}
	defer r.close()

	ep := newEndpointer(r.cfg)
	ring := newPreRoll(framesFor(r.cfg.PreRoll) + onsetDebounce)
	var phrase []byte

	stall := time.NewTimer(r.cfg.WaitTimeout + r.cfg.PhraseLimit + r.stallGrace)
	defer stall.Stop()

	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-stall.C:
			if ep.Started() {
				log.Warn("phrase_stalled")
				return phrase, nil
			}
			return nil, ErrWaitTimeout
		case <-feed.notify:
		}

		for _, frame := range feed.frames() {
			if !ep.Started() {
				ring.push(frame)
			} else {
				phrase = append(phrase, frame...)
			}

			switch ep.Tick(r.detector.IsSpeech(frame)) {
			case endOnset:
				phrase = ring.bytes()
			case endPause, endLimit:
				return phrase, nil
			case endTimeout:
				return nil, ErrWaitTimeout
			}
		}
	}
}

// Calibrate listens to d of ambient sound and raises the detector threshold
// to ambient RMS times 1.5. It returns the new threshold.
func (r *Recorder) Calibrate(ctx context.Context, d time.Duration) (float64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if d <= 0 {
		return r.detector.Threshold(), nil
	}

	feed, err := r.open()
	if err != nil {
		return 0, err
	}
	defer r.close()

	want := framesFor(d)
	var sumSq float64
	n := 0
	stall := time.NewTimer(d + r.stallGrace)
	defer stall.Stop()

	for n < want {
		select {
		case <-ctx.Done():
			return 0, ctx.Err()
		case <-stall.C:
			return 0, errors.New("calibration: no audio from device")
		case <-feed.notify:
		}
		for _, frame := range feed.frames() {
			rms := RMS(frame)
			sumSq += rms * rms
			n++
		}
	}

	ambient := 0.0
	if n > 0 {
		ambient = math.Sqrt(sumSq / float64(n))
	}
	threshold := max(ambient*ambientFactor, minThreshold)
	r.detector.SetThreshold(threshold)
	log.Infof("ambient_calibrated rms=%.0f threshold=%.0f", ambient, threshold)
	return threshold, nil
}

// preRoll keeps the most recent frames before onset.
type preRoll struct {
	frames [][]byte
	size   int
}

func newPreRoll(size int) *preRoll {
	return &preRoll{size: size}
}

func (p *preRoll) push(frame []byte) {
	p.frames = append(p.frames, frame)
	if len(p.frames) > p.size {
		p.frames = p.frames[len(p.frames)-p.size:]
	}
}

func (p *preRoll) bytes() []byte {
	out := make([]byte, 0, len(p.frames)*FrameBytes)
	for _, f := range p.frames {
		out = append(out, f...)
	}
	return out
}
