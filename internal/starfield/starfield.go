// Package starfield draws the drifting background stars and the "network
// silence" fly-through shown when a date has no news.
package starfield

import (
	"image/color"
	"math"
	"math/rand/v2"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/lucasb-eyer/go-colorful"
)

// Star is one background star.
type Star struct {
	X, Y  float64
	Size  float64
	Speed float64
	Hue   float64
}

// Field is a set of stars falling slowly down the window and wrapping to the
// top.
type Field struct {
	rng    *rand.Rand
	count  int
	width  float64
	height float64
	stars  []Star
}

// NewField scatters count stars over a width x height canvas.
func NewField(width, height, count int, rng *rand.Rand) *Field {
	f := &Field{rng: rng, count: count}
	f.Resize(width, height)
	return f
}

// Resize regenerates all stars for a new canvas size.
func (f *Field) Resize(width, height int) {
	f.width = float64(width)
	f.height = float64(height)
	f.stars = make([]Star, f.count)
	for i := range f.stars {
		f.stars[i] = Star{
			X:     f.rng.Float64() * f.width,
			Y:     f.rng.Float64() * f.height,
			Size:  f.rng.Float64() * 1.5,
			Speed: f.rng.Float64()*0.05 + 0.02,
			Hue:   f.rng.Float64() * 360,
		}
	}
}

// Stars returns the current stars. Callers must not modify them.
func (f *Field) Stars() []Star { return f.stars }

// Step moves every star by one frame.
func (f *Field) Step() {
	for i := range f.stars {
		s := &f.stars[i]
		s.Y += s.Speed
		s.Hue = math.Mod(s.Hue+0.1, 360)
		if s.Y > f.height {
			s.Y = 0
		}
	}
}

// Draw paints the field on dst.
func (f *Field) Draw(dst *ebiten.Image) {
	for _, s := range f.stars {
		if s.Size <= 0 {
			continue
		}
		c := colorful.Hsl(s.Hue, 0.7, 0.7).Clamped()
		vector.DrawFilledCircle(dst, float32(s.X), float32(s.Y), float32(s.Size), c, true)
	}
}

const voidFocal = 128.0

// Dot is one particle of the void animation.
type Dot struct {
	X, Y, Z float64
}

// Void is a small fly-through of white dots on black.
type Void struct {
	width  float64
	height float64
	dots   []Dot
}

// NewVoid fills a width x height panel with count dots.
func NewVoid(width, height, count int, rng *rand.Rand) *Void {
	v := &Void{
		width:  math.Max(1, float64(width)),
		height: math.Max(1, float64(height)),
		dots:   make([]Dot, count),
	}
	for i := range v.dots {
		v.dots[i] = Dot{
			X: rng.Float64() * v.width,
			Y: rng.Float64() * v.height,
			Z: rng.Float64() * v.width,
		}
	}
	return v
}

// Dots returns the current dots. Callers must not modify them.
func (v *Void) Dots() []Dot { return v.dots }

// Step moves every dot one unit towards the viewer, wrapping to the back.
func (v *Void) Step() {
	for i := range v.dots {
		d := &v.dots[i]
		d.Z--
		if d.Z <= 0 {
			d.Z = v.width
		}
	}
}

// Project returns the screen position and radius of d inside the panel.
func (v *Void) Project(d Dot) (x, y, r float64) {
	k := voidFocal / d.Z
	x = math.Mod(d.X*k+v.width/2, v.width)
	y = math.Mod(d.Y*k+v.height/2, v.height)
	r = (1 - d.Z/v.width) * 1.5
	return x, y, r
}

// Draw paints the panel with its origin at (ox, oy).
func (v *Void) Draw(dst *ebiten.Image, ox, oy float32) {
	vector.DrawFilledRect(dst, ox, oy, float32(v.width), float32(v.height), color.Black, false)
	for _, d := range v.dots {
		x, y, r := v.Project(d)
		if r <= 0 {
			continue
		}
		vector.DrawFilledCircle(dst, ox+float32(x), oy+float32(y), float32(r), color.White, true)
	}
}
