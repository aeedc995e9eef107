package audio

import "math"

// oscillator is a phase accumulator shared by the chorus LFO and the drone.
type oscillator struct {
	phase float64 // [0, 1)
}

func (o *oscillator) advance(freq, sampleRate float64) float64 {
	p := o.phase
	o.phase += freq / sampleRate
	o.phase -= math.Floor(o.phase)
	return p
}

// sine returns sin at the current phase and advances.
func (o *oscillator) sine(freq, sampleRate float64) float64 {
	return math.Sin(2 * math.Pi * o.advance(freq, sampleRate))
}

// saw returns a rising sawtooth in [-1, 1) and advances.
func (o *oscillator) saw(freq, sampleRate float64) float64 {
	return 2*o.advance(freq, sampleRate) - 1
}
