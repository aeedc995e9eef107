package audio

import (
	"math"
	"time"
)

// SmoothedParam is a control value that glides exponentially towards its
// target, one sample at a time, like an AudioParam driven by setTargetAtTime.
type SmoothedParam struct {
	value      float64
	target     float64
	coeff      float64
	sampleRate float64
}

// NewSmoothedParam returns a parameter resting at initial.
func NewSmoothedParam(sampleRate, initial float64) *SmoothedParam {
	return &SmoothedParam{
		value:      initial,
		target:     initial,
		coeff:      1,
		sampleRate: sampleRate,
	}
}

// SetTargetAtTime starts an exponential approach to target with time
// constant tau. After tau the remaining distance is 1/e of the original.
// A non-positive tau jumps on the next sample.
func (p *SmoothedParam) SetTargetAtTime(target float64, tau time.Duration) {
	p.target = target
	p.coeff = approachCoeff(tau.Seconds(), p.sampleRate)
}

// SetValue jumps immediately. Only used while building the graph.
func (p *SmoothedParam) SetValue(v float64) {
	p.value = v
	p.target = v
}

// Next advances one sample and returns the new value.
func (p *SmoothedParam) Next() float64 {
	p.value += (p.target - p.value) * p.coeff
	return p.value
}

// Value returns the current (smoothed) value.
func (p *SmoothedParam) Value() float64 { return p.value }

// Target returns the value the parameter is approaching.
func (p *SmoothedParam) Target() float64 { return p.target }

func approachCoeff(tau, sampleRate float64) float64 {
	if tau <= 0 || sampleRate <= 0 {
		return 1
	}
	return 1 - math.Exp(-1/(tau*sampleRate))
}
