package game

import (
	"fmt"

	"github.com/iburimskiy/chronoscope/internal/chronicle"
	"github.com/iburimskiy/chronoscope/internal/config"
	"github.com/iburimskiy/chronoscope/internal/modulation"
)

// faderStep is the keyboard increment, one percent of the range.
const faderStep = 0.01

// Faders holds the user-set base level of each modulated effect in [0, 1].
type Faders struct {
	levels [len(modulation.Params)]float64
}

var _ modulation.Controls = (*Faders)(nil)

func NewFaders(f config.Faders) *Faders {
	out := &Faders{}
	out.Set(modulation.Delay, f.Delay)
	out.Set(modulation.Chorus, f.Chorus)
	out.Set(modulation.Reverb, f.Reverb)
	out.Set(modulation.Drone, f.Drone)
	return out
}

// Level implements modulation.Controls.
func (f *Faders) Level(p modulation.Param) (float64, bool) {
	if p < 0 || int(p) >= len(f.levels) {
		return 0, false
	}
	return f.levels[p], true
}

// Set moves a fader, clamping to [0, 1].
func (f *Faders) Set(p modulation.Param, v float64) {
	if p < 0 || int(p) >= len(f.levels) {
		return
	}
	f.levels[p] = clamp01(v)
}

// Nudge moves a fader by delta.
func (f *Faders) Nudge(p modulation.Param, delta float64) {
	if v, ok := f.Level(p); ok {
		f.Set(p, v+delta)
	}
}

// field is one entry of the keyboard selector.
type field int

const (
	fieldDay field = iota
	fieldMonth
	fieldYear
	fieldDelay
	fieldChorus
	fieldReverb
	fieldDrone

	fieldCount
)

func (f field) String() string {
	switch f {
	case fieldDay:
		return "day"
	case fieldMonth:
		return "month"
	case fieldYear:
		return "year"
	}
	if p, ok := f.fader(); ok {
		return p.String()
	}
	return fmt.Sprintf("field(%d)", int(f))
}

// fader maps selector entries after the date to their effect.
func (f field) fader() (modulation.Param, bool) {
	if f < fieldDelay || f >= fieldCount {
		return 0, false
	}
	return modulation.Params[f-fieldDelay], true
}

// move returns the selector entry delta steps away, wrapping around.
func (f field) move(delta int) field {
	n := int(fieldCount)
	return field(((int(f)+delta)%n + n) % n)
}

// adjustDate changes one component of d. Day and month wrap, the year is
// clamped, and the result always lies in the selectable range.
func adjustDate(d chronicle.Date, f field, delta int) chronicle.Date {
	switch f {
	case fieldDay:
		n := chronicle.DaysIn(d.Year, d.Month)
		d.Day = ((d.Day-1+delta)%n+n)%n + 1
	case fieldMonth:
		d.Month = ((d.Month-1+delta)%12+12)%12 + 1
	case fieldYear:
		d.Year = max(chronicle.MinDate.Year, min(chronicle.MaxDate.Year, d.Year+delta))
	}
	return d.Clamp()
}
