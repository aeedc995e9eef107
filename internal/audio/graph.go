package audio

import (
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/cwbudde/algo-dsp/dsp/delay"
	"github.com/cwbudde/algo-dsp/dsp/effects/reverb"
	"github.com/cwbudde/algo-dsp/dsp/filter/biquad"
	"github.com/faiface/beep"
)

// Knob names a parameter of the graph that can be driven from outside.
type Knob int

const (
	DelayTime Knob = iota
	Feedback
	ChorusDelay
	ReverbGain
	DroneGain
	DroneFrequency
)

func (k Knob) String() string {
	switch k {
	case DelayTime:
		return "delay_time"
	case Feedback:
		return "feedback"
	case ChorusDelay:
		return "chorus_delay"
	case ReverbGain:
		return "reverb_gain"
	case DroneGain:
		return "drone_gain"
	case DroneFrequency:
		return "drone_frequency"
	default:
		return fmt.Sprintf("knob(%d)", int(k))
	}
}

const (
	MasterGain = 0.8

	maxDelay      = 2 * time.Second
	maxChorus     = 60 * time.Millisecond
	reverbLength  = 2500 * time.Millisecond
	reverbLatency = 8 // 2^8 samples

	chorusLFORate  = 0.5
	chorusLFODepth = 0.003
	droneCutoff    = 150.0
	resampleQual   = 4
)

// ErrNoSource is returned when Capture is handed a nil streamer.
var ErrNoSource = errors.New("audio: no source to capture")

// Graph is the fixed effect graph:
//
//	source ─┬──────────────────────────────────────────────────┐
//	        └─ chorus ─ delay(+feedback) ─ reverb ─ reverbGain ─┼─ master
//	drone ─ lowpass ─ droneGain ───────────────────────────────┘
//
// It is a beep.Streamer pulled by the speaker. Knob targets are written from
// the frame loop under mu and read by Stream under the same lock. Stream only
// does in-memory work under mu: the captured source is decoded ahead by a
// prefetcher.
type Graph struct {
	mu sync.Mutex

	sampleRate beep.SampleRate
	sr         float64

	source *beep.Ctrl
	feed   *prefetcher
	srcBuf [][2]float64
	wet    []float64
	drone  []float64

	chorusLine  *delay.Line
	chorusDelay *SmoothedParam
	chorusLFO   oscillator

	delayLine *delay.Line
	delayTime *SmoothedParam
	feedback  *SmoothedParam

	reverb     *reverb.ConvolutionReverb
	reverbGain *SmoothedParam

	droneOsc     oscillator
	droneFreq    *SmoothedParam
	droneLowpass *biquad.Section
	droneGain    *SmoothedParam

	err error
}

// NewGraph builds the graph once with its initial parameter values.
func NewGraph(sampleRate beep.SampleRate, rng *rand.Rand) (*Graph, error) {
	if sampleRate <= 0 {
		return nil, fmt.Errorf("audio: invalid sample rate %d", sampleRate)
	}
	sr := float64(sampleRate)

	chorusLine, err := delay.New(sampleRate.N(maxChorus) + 4)
	if err != nil {
		return nil, fmt.Errorf("audio: chorus line: %w", err)
	}
	delayLine, err := delay.New(sampleRate.N(maxDelay) + 4)
	if err != nil {
		return nil, fmt.Errorf("audio: delay line: %w", err)
	}

	ir := DecayingNoise(rng, int(sampleRate), reverbLength)
	rev, err := reverb.NewConvolutionReverb(ir, reverbLatency)
	if err != nil {
		return nil, fmt.Errorf("audio: reverb: %w", err)
	}
	rev.SetWetDry(1, 0)

	return &Graph{
		sampleRate:   sampleRate,
		sr:           sr,
		chorusLine:   chorusLine,
		chorusDelay:  NewSmoothedParam(sr, 0.02),
		delayLine:    delayLine,
		delayTime:    NewSmoothedParam(sr, 0.4),
		feedback:     NewSmoothedParam(sr, 0.3),
		reverb:       rev,
		reverbGain:   NewSmoothedParam(sr, 0.5),
		droneFreq:    NewSmoothedParam(sr, 55),
		droneLowpass: biquad.NewSection(lowpass(droneCutoff, 1/math.Sqrt2, sr)),
		droneGain:    NewSmoothedParam(sr, 0),
	}, nil
}

// SampleRate returns the output rate of the graph.
func (g *Graph) SampleRate() beep.SampleRate { return g.sampleRate }

// SetTargetAtTime smooths knob k towards value with time constant tau.
func (g *Graph) SetTargetAtTime(k Knob, value float64, tau time.Duration) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if p := g.param(k); p != nil {
		p.SetTargetAtTime(value, tau)
	}
}

// Target returns the current target of knob k.
func (g *Graph) Target(k Knob) float64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	if p := g.param(k); p != nil {
		return p.Target()
	}
	return 0
}

// Value returns the current smoothed value of knob k.
func (g *Graph) Value(k Knob) float64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	if p := g.param(k); p != nil {
		return p.Value()
	}
	return 0
}

func (g *Graph) param(k Knob) *SmoothedParam {
	switch k {
	case DelayTime:
		return g.delayTime
	case Feedback:
		return g.feedback
	case ChorusDelay:
		return g.chorusDelay
	case ReverbGain:
		return g.reverbGain
	case DroneGain:
		return g.droneGain
	case DroneFrequency:
		return g.droneFreq
	default:
		return nil
	}
}

// Capture attaches src as the graph's input on both the dry and the wet path,
// replacing any previous source. Sources at another rate are resampled.
func (g *Graph) Capture(src beep.Streamer, format beep.Format) error {
	feed, err := g.prepare(src, format)
	if err != nil {
		return err
	}
	g.attach(feed)
	return nil
}

// prepare validates src and starts decoding it ahead. It takes no lock and may
// wait up to primeTimeout.
func (g *Graph) prepare(src beep.Streamer, format beep.Format) (*prefetcher, error) {
	if src == nil {
		return nil, ErrNoSource
	}
	if format.SampleRate <= 0 {
		return nil, fmt.Errorf("audio: source has invalid sample rate %d", format.SampleRate)
	}
	if format.SampleRate != g.sampleRate {
		src = beep.Resample(resampleQual, format.SampleRate, g.sampleRate, src)
	}
	return newPrefetcher(src), nil
}

func (g *Graph) attach(feed *prefetcher) {
	g.mu.Lock()
	prev := g.feed
	g.feed = feed
	g.source = &beep.Ctrl{Streamer: feed}
	g.mu.Unlock()

	if prev != nil {
		prev.Close()
	}
}

// Release detaches the current source. The effect tails keep ringing out.
func (g *Graph) Release() {
	g.mu.Lock()
	g.detach()
	g.mu.Unlock()
}

func (g *Graph) detach() {
	if g.feed != nil {
		g.feed.Close()
	}
	g.feed = nil
	g.source = nil
}

// TogglePause pauses or resumes the captured source and reports the new
// state. Without a source it reports false.
func (g *Graph) TogglePause() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.source == nil {
		return false
	}
	g.source.Paused = !g.source.Paused
	return g.source.Paused
}

// Captured reports whether a source is attached.
func (g *Graph) Captured() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.source != nil
}

// Stream renders the next len(samples) frames. It never drains.
func (g *Graph) Stream(samples [][2]float64) (int, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()

	n := len(samples)
	g.grow(n)
	src := g.srcBuf[:n]
	g.pullSource(src)

	wet := g.wet[:n]
	drone := g.drone[:n]
	for i := range n {
		in := (src[i][0] + src[i][1]) / 2

		cd := g.chorusDelay.Next() + g.chorusLFO.sine(chorusLFORate, g.sr)*chorusLFODepth
		chorused := g.chorusLine.ReadFractional(math.Max(1, cd*g.sr))
		g.chorusLine.Write(in)

		dt := g.delayTime.Next()
		fb := g.feedback.Next()
		echoed := g.delayLine.ReadFractional(math.Max(1, dt*g.sr))
		g.delayLine.Write(chorused + echoed*fb)
		wet[i] = echoed

		saw := g.droneOsc.saw(g.droneFreq.Next(), g.sr)
		drone[i] = g.droneLowpass.ProcessSample(saw) * g.droneGain.Next()
	}

	if err := g.reverb.ProcessInPlace(wet); err != nil {
		g.err = err
		clear(wet)
	}

	for i := range n {
		mono := wet[i]*g.reverbGain.Next() + drone[i]
		samples[i][0] = MasterGain * (src[i][0] + mono)
		samples[i][1] = MasterGain * (src[i][1] + mono)
	}
	return n, true
}

// Err returns the last reverb processing error, if any.
func (g *Graph) Err() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.err
}

func (g *Graph) grow(n int) {
	if len(g.srcBuf) < n {
		g.srcBuf = make([][2]float64, n)
		g.wet = make([]float64, n)
		g.drone = make([]float64, n)
	}
}

// pullSource fills buf from the source, padding an underrun with silence. A
// drained source is dropped.
func (g *Graph) pullSource(buf [][2]float64) {
	filled := 0
	if g.source != nil {
		n, ok := g.source.Stream(buf)
		filled = n
		if !ok {
			g.detach()
		}
	}
	clear(buf[filled:])
}

// lowpass returns RBJ cookbook lowpass coefficients normalised by a0.
func lowpass(freq, q, sampleRate float64) biquad.Coefficients {
	w0 := 2 * math.Pi * freq / sampleRate
	cw := math.Cos(w0)
	alpha := math.Sin(w0) / (2 * q)
	a0 := 1 + alpha

	return biquad.Coefficients{
		B0: (1 - cw) / 2 / a0,
		B1: (1 - cw) / a0,
		B2: (1 - cw) / 2 / a0,
		A1: -2 * cw / a0,
		A2: (1 - alpha) / a0,
	}
}
