// Package modulation drives the audio graph's effect parameters from
// user-set base levels plus a slow, per-parameter sinusoidal drift.
//
// Each frame, for parameter index i in declaration order:
//
//	drift     = sin(t * (0.3 + 0.2*i)) * 0.05
//	modulated = clamp(base + drift, 0, 1)
//
// The modulated value feeds an on-screen indicator and, once the graph is
// attached, a set of smoothed audio targets.
package modulation

import (
	"fmt"
	"math"
	"time"

	"go.uber.org/zap"

	"github.com/iburimskiy/chronoscope/internal/audio"
)

// Param is one of the four modulated effects. The order is significant: it
// selects the drift rate.
type Param int

const (
	Delay Param = iota
	Chorus
	Reverb
	Drone
)

// Params lists all parameters in declaration order.
var Params = [...]Param{Delay, Chorus, Reverb, Drone}

func (p Param) String() string {
	switch p {
	case Delay:
		return "delay"
	case Chorus:
		return "chorus"
	case Reverb:
		return "reverb"
	case Drone:
		return "drone"
	default:
		return fmt.Sprintf("param(%d)", int(p))
	}
}

const (
	driftDepth = 0.05
	baseRate   = 0.3
	rateStep   = 0.2

	FastTau = 100 * time.Millisecond
	SlowTau = 500 * time.Millisecond

	DroneBaseHz    = 55.0
	droneYearSpan  = 50
	droneDriftSpan = 20.0
)

// Rate returns the angular frequency of the drift for parameter index i.
func Rate(index int) float64 {
	return baseRate + float64(index)*rateStep
}

// Drift is the bounded sinusoidal offset for index at time t (seconds).
func Drift(t float64, index int) float64 {
	return math.Sin(t*Rate(index)) * driftDepth
}

// Modulate applies drift to base and clamps the result to [0, 1].
func Modulate(base, drift float64) float64 {
	return math.Max(0, math.Min(1, base+drift))
}

// YearOffset is the year's bounded contribution to the drone pitch. It is
// always in [0, 50), also for negative years.
func YearOffset(year int) float64 {
	return float64(((year % droneYearSpan) + droneYearSpan) % droneYearSpan)
}

// Setting is one smoothed write to the audio graph.
type Setting struct {
	Knob  audio.Knob
	Value float64
	Tau   time.Duration
}

// Targets maps a modulated value to the graph writes for p.
func Targets(p Param, modulated, drift float64, year int) []Setting {
	switch p {
	case Delay:
		return []Setting{
			{Knob: audio.DelayTime, Value: modulated * 1.5, Tau: FastTau},
			{Knob: audio.Feedback, Value: 0.2 + modulated*0.5, Tau: FastTau},
		}
	case Chorus:
		return []Setting{
			{Knob: audio.ChorusDelay, Value: 0.01 + modulated*0.04, Tau: FastTau},
		}
	case Reverb:
		return []Setting{
			{Knob: audio.ReverbGain, Value: modulated * 0.8, Tau: FastTau},
		}
	case Drone:
		return []Setting{
			{Knob: audio.DroneGain, Value: modulated * 0.2, Tau: FastTau},
			{Knob: audio.DroneFrequency, Value: DroneBaseHz + YearOffset(year) + drift*droneDriftSpan, Tau: SlowTau},
		}
	default:
		return nil
	}
}

// Controls supplies the user-set base level of each parameter. A missing
// control reports ok == false and is skipped for that frame.
type Controls interface {
	Level(p Param) (level float64, ok bool)
}

// Graph receives smoothed parameter targets. *audio.Graph implements it.
type Graph interface {
	SetTargetAtTime(k audio.Knob, value float64, tau time.Duration)
}

// Clock returns the current time in seconds.
type Clock func() float64

// WallClock is the default Clock.
func WallClock() float64 {
	return float64(time.Now().UnixNano()) / float64(time.Second)
}

// Indicators holds the indicator width of each parameter in percent.
type Indicators [len(Params)]float64

// Width returns the indicator width for p.
func (in Indicators) Width(p Param) float64 {
	if p < 0 || int(p) >= len(in) {
		return 0
	}
	return in[p]
}

// Engine owns the modulation state: the active flag, the attached graph, the
// selected year and the last indicators. It is driven from the frame loop
// only.
type Engine struct {
	clock  Clock
	logger *zap.Logger

	active     bool
	graph      Graph
	year       int
	indicators Indicators
}

// NewEngine returns an active engine without a graph.
func NewEngine(clock Clock, year int, logger *zap.Logger) *Engine {
	if clock == nil {
		clock = WallClock
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{
		clock:  clock,
		logger: logger,
		active: true,
		year:   year,
	}
}

// Attach connects the engine to a built graph. Attaching again replaces it.
func (e *Engine) Attach(g Graph) {
	e.graph = g
	e.logger.Debug("modulation attached to audio graph")
}

// Attached reports whether a graph is connected.
func (e *Engine) Attached() bool { return e.graph != nil }

func (e *Engine) SetYear(year int) { e.year = year }
func (e *Engine) Year() int { return e.year }

// SetActive starts or stops modulation. A stopped engine leaves the graph
// at its last targets.
func (e *Engine) SetActive(active bool) {
	if e.active != active {
		e.logger.Info("modulation toggled", zap.Bool("active", active))
	}
	e.active = active
}

func (e *Engine) Active() bool { return e.active }

// Indicators returns the widths computed by the last Step.
func (e *Engine) Indicators() Indicators { return e.indicators }

// Step runs one frame of modulation and returns the indicator widths.
// Indicators are updated even before a graph is attached.
func (e *Engine) Step(controls Controls) Indicators {
	if !e.active || controls == nil {
		return e.indicators
	}

	t := e.clock()
	for i, p := range Params {
		base, ok := controls.Level(p)
		if !ok {
			continue
		}
		drift := Drift(t, i)
		modulated := Modulate(base, drift)
		e.indicators[p] = modulated * 100

		if e.graph == nil {
			continue
		}
		for _, s := range Targets(p, modulated, drift, e.year) {
			e.graph.SetTargetAtTime(s.Knob, s.Value, s.Tau)
		}
	}
	return e.indicators
}
