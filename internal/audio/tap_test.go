package audio

import (
	"math"
	"testing"
)

// rampSource emits 1, 2, 3, ... on both channels.
type rampSource struct{ next float64 }

func (r *rampSource) Stream(samples [][2]float64) (int, bool) {
	for i := range samples {
		r.next++
		samples[i] = [2]float64{r.next, r.next}
	}
	return len(samples), true
}

func (r *rampSource) Err() error { return nil }

func TestTap_SnapshotWrapsInOrder(t *testing.T) {
	tap := NewTap(&rampSource{}, 4)
	tap.Stream(make([][2]float64, 3))
	tap.Stream(make([][2]float64, 3))

	got := tap.Snapshot(4)
	want := []float64{3, 4, 5, 6}
	if len(got) != len(want) {
		t.Fatalf("len = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i][0] != want[i] {
			t.Fatalf("Snapshot = %v, want %v", got, want)
		}
	}
}

func TestTap_SnapshotClampsToRing(t *testing.T) {
	tap := NewTap(&rampSource{}, 4)
	tap.Stream(make([][2]float64, 2))
	if got := tap.Snapshot(100); len(got) != 4 {
		t.Fatalf("len = %d, want 4", len(got))
	}
	if got := tap.Snapshot(0); got != nil {
		t.Fatalf("Snapshot(0) = %v, want nil", got)
	}
}

func TestTap_Level(t *testing.T) {
	tap := NewTap(&constSource{value: 0.5, n: 100}, 16)
	tap.Stream(make([][2]float64, 16))
	if got := tap.Level(16); math.Abs(got-0.5) > 1e-12 {
		t.Fatalf("Level = %v, want 0.5", got)
	}
}
