// Package beep plays short cues when listening starts, stops or fails.
package beep

import (
	"math"
	"sync"
	"sync/atomic"
)

var disabled atomic.Bool

func Disable() { disabled.Store(true) }

const (
	sampleRate = 44100

	// Start: high pitch, short
	startFreq   = 1200
	startVolume = 0.5
	startDecay  = 60

	// Stop: medium pitch, slightly longer
	endFreq   = 900
	endVolume = 0.5
	endDecay  = 40

	// Error: low pitch double-beep
	errorFreq   = 350
	errorVolume = 0.6
	errorDecay  = 30
)

var (
	startSamples []int16
	endSamples   []int16
	errorSamples []int16
	samplesOnce  sync.Once
)

func initSamples() {
	startSamples = tick(startFreq, 0.12, startVolume, startDecay)
	endSamples = tick(endFreq, 0.2, endVolume, endDecay)
	errorSamples = doubleBeep(errorFreq, 0.08, 0.05, errorVolume, errorDecay)
}

// tick renders a mono sine with exponential decay.
func tick(freq, duration, volume, decay float64) []int16 {
	n := int(sampleRate * duration)
	samples := make([]int16, n)
	for i := range samples {
		t := float64(i) / sampleRate
		envelope := math.Exp(-t * decay)
		samples[i] = int16(math.Sin(2*math.Pi*freq*t) * 32767 * volume * envelope)
	}
	return samples
}

func doubleBeep(freq, beepDur, gapDur, volume, decay float64) []int16 {
	b := tick(freq, beepDur, volume, decay)
	gap := make([]int16, int(sampleRate*gapDur))
	out := make([]int16, 0, len(b)*2+len(gap))
	out = append(out, b...)
	out = append(out, gap...)
	return append(out, b...)
}

func playCue(samples *[]int16) {
	if disabled.Load() {
		return
	}
	samplesOnce.Do(initSamples)
	go play(*samples)
}

func PlayStart() { playCue(&startSamples) }
func PlayEnd()   { playCue(&endSamples) }
func PlayError() { playCue(&errorSamples) }

// Cues adapts the package functions to the control panel.
type Cues struct{}

func (Cues) Start() { PlayStart() }
func (Cues) Stop()  { PlayEnd() }
func (Cues) Error() { PlayError() }
