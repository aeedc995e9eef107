package audio

import (
	"math"
	"math/rand/v2"
	"time"

	"gonum.org/v1/gonum/floats"
)

// DecayingNoise builds a reverb impulse response: white noise under a
// (1 - t)^1.5 envelope, normalised to unit energy.
func DecayingNoise(rng *rand.Rand, sampleRate int, length time.Duration) []float64 {
	n := int(float64(sampleRate) * length.Seconds())
	if n <= 0 {
		return nil
	}
	ir := make([]float64, n)
	for i := range ir {
		env := math.Pow(1-float64(i)/float64(n), 1.5)
		ir[i] = (rng.Float64()*2 - 1) * env
	}
	if norm := floats.Norm(ir, 2); norm > 0 {
		floats.Scale(1/norm, ir)
	}
	return ir
}
