package beep

import "testing"

func TestTickLengthAndDecay(t *testing.T) {
	s := tick(1000, 0.1, 0.5, 40)
	if len(s) != 4410 {
		t.Fatalf("len = %d, want 4410", len(s))
	}
	peak := func(xs []int16) int16 {
		var m int16
		for _, x := range xs {
			if x > m {
				m = x
			}
		}
		return m
	}
	head, tail := peak(s[:441]), peak(s[len(s)-441:])
	if head <= tail {
		t.Errorf("no decay: head peak %d, tail peak %d", head, tail)
	}
	if head > 32767/2+1 {
		t.Errorf("peak %d exceeds volume", head)
	}
}

func TestDoubleBeep(t *testing.T) {
	one := tick(350, 0.08, 0.6, 30)
	d := doubleBeep(350, 0.08, 0.05, 0.6, 30)
	gap := int(sampleRate * 0.05)
	if len(d) != 2*len(one)+gap {
		t.Fatalf("len = %d, want %d", len(d), 2*len(one)+gap)
	}
	for _, s := range d[len(one) : len(one)+gap] {
		if s != 0 {
			t.Fatal("gap is not silent")
		}
	}
}

func TestDisabledSkipsPlayback(t *testing.T) {
	Disable()
	// must return without touching the audio server
	Cues{}.Start()
	Cues{}.Stop()
	Cues{}.Error()
}
