package audio

import (
	"math"
	"sync"

	"github.com/faiface/beep"
)

// Tap wraps a beep.Streamer and keeps the most recent output frames in a ring
// so the renderer can draw an output scope without touching the audio path.
type Tap struct {
	Source beep.Streamer

	mu   sync.RWMutex
	ring [][2]float64
	next int
}

// NewTap returns a tap remembering the last size frames of src.
func NewTap(src beep.Streamer, size int) *Tap {
	if size <= 0 {
		size = 1
	}
	return &Tap{
		Source: src,
		ring:   make([][2]float64, size),
	}
}

func (t *Tap) Stream(samples [][2]float64) (int, bool) {
	n, ok := t.Source.Stream(samples)
	if n == 0 {
		return n, ok
	}
	t.mu.Lock()
	for _, s := range samples[:n] {
		t.ring[t.next] = s
		t.next = (t.next + 1) % len(t.ring)
	}
	t.mu.Unlock()
	return n, ok
}

func (t *Tap) Err() error { return t.Source.Err() }

// Snapshot returns up to n of the latest frames, oldest first.
func (t *Tap) Snapshot(n int) [][2]float64 {
	t.mu.RLock()
	defer t.mu.RUnlock()

	size := len(t.ring)
	n = min(n, size)
	if n <= 0 {
		return nil
	}
	out := make([][2]float64, n)
	start := t.next - n
	for i := range out {
		out[i] = t.ring[((start+i)%size+size)%size]
	}
	return out
}

// Level returns the RMS of the latest n frames, mixed to mono.
func (t *Tap) Level(n int) float64 {
	frames := t.Snapshot(n)
	if len(frames) == 0 {
		return 0
	}
	var sum float64
	for _, f := range frames {
		mono := (f[0] + f[1]) / 2
		sum += mono * mono
	}
	return math.Sqrt(sum / float64(len(frames)))
}
