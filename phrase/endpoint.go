package phrase

import "time"

const onsetDebounce = 3 // consecutive speech frames to confirm a phrase start

type endEvent int

const (
	endNone    endEvent = iota
	endOnset            // phrase started
	endPause            // trailing silence reached pause threshold
	endLimit            // phrase reached its length cap
	endTimeout          // no phrase started within the wait timeout
)

// endpointer is ticked once per frame. Frame counts are derived from the
// configured durations at FrameMs per tick.
type endpointer struct {
	waitFrames  int
	pauseFrames int
	limitFrames int

	ticks     int
	started   bool
	speechRun int
	silentRun int
	length    int
}

func framesFor(d time.Duration) int {
	n := int(d / (FrameMs * time.Millisecond))
	if n < 1 {
		n = 1
	}
	return n
}

func newEndpointer(cfg Config) *endpointer {
	return &endpointer{
		waitFrames:  framesFor(cfg.WaitTimeout),
		pauseFrames: framesFor(cfg.PauseThreshold),
		limitFrames: framesFor(cfg.PhraseLimit),
	}
}

func (e *endpointer) Started() bool { return e.started }

func (e *endpointer) Tick(speech bool) endEvent {
	e.ticks++

	if !e.started {
		if speech {
			e.speechRun++
			if e.speechRun >= onsetDebounce {
				e.started = true
				e.length = e.speechRun
				return endOnset
			}
			return endNone
		}
		e.speechRun = 0
		if e.ticks >= e.waitFrames {
			return endTimeout
		}
		return endNone
	}

	e.length++
	if speech {
		e.silentRun = 0
	} else {
		e.silentRun++
	}
	if e.length >= e.limitFrames {
		return endLimit
	}
	if e.silentRun >= e.pauseFrames {
		return endPause
	}
	return endNone
}
