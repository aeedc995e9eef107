// Package planet renders a rotating point-cloud sphere.
//
// Points are placed with the Fibonacci-sphere construction, rotated about the
// vertical axis, perspective-projected and drawn back to front with
// depth-based alpha.
package planet

import (
	"cmp"
	"math"
	"math/rand/v2"
	"slices"
)

const (
	// PointCount is the number of points on the sphere.
	PointCount = 300
	// FocalDistance is the perspective constant D in scale = D / (D + z).
	FocalDistance = 500.0
	// RadiusFactor sizes the sphere relative to the smaller canvas side.
	RadiusFactor = 0.35

	DefaultSpeed = 0.005
	DefaultHue   = 200.0

	fallbackSize = 300
	alphaRange   = 300.0
)

// Point is a fixed position on the sphere plus a dot size.
type Point struct {
	X, Y, Z float64
	Size    float64
}

// Projected is a point after rotation and projection, valid for one frame.
type Projected struct {
	X, Y  float64
	Z     float64
	Scale float64
	Alpha float64
}

// Radius returns the sphere radius for a canvas of the given size.
func Radius(width, height int) float64 {
	return RadiusFactor * float64(min(width, height))
}

// Generate places n points quasi-uniformly on a sphere sized for the canvas.
func Generate(n, width, height int, rng *rand.Rand) []Point {
	r := Radius(width, height)
	points := make([]Point, n)
	spiral := math.Sqrt(float64(n) * math.Pi)
	for i := range points {
		phi := math.Acos(-1 + 2*float64(i)/float64(n))
		theta := spiral * phi
		points[i] = Point{
			X:    math.Cos(theta) * math.Sin(phi) * r,
			Y:    math.Sin(theta) * math.Sin(phi) * r,
			Z:    math.Cos(phi) * r,
			Size: 1 + rng.Float64()*2,
		}
	}
	return points
}

// Perspective is the projection scale at depth z. It is only meaningful for
// z > -FocalDistance.
func Perspective(z float64) float64 {
	return FocalDistance / (FocalDistance + z)
}

// Alpha maps depth to opacity: transparent at z <= -300, opaque at z >= 300.
func Alpha(z float64) float64 {
	return math.Max(0, math.Min(1, (z+alphaRange)/(2*alphaRange)))
}

// Projector owns the point cloud and the rotation state.
type Projector struct {
	rng    *rand.Rand
	points []Point
	width  int
	height int

	angle float64
	speed float64
	hue   float64

	buf []Projected
}

// New returns a projector sized for width x height.
func New(width, height int, rng *rand.Rand) *Projector {
	p := &Projector{
		rng:   rng,
		speed: DefaultSpeed,
		hue:   DefaultHue,
	}
	p.Resize(width, height)
	return p
}

// Resize regenerates the point cloud for a new canvas. The rotation angle is
// kept so the planet keeps turning smoothly. A zero side falls back to 300.
func (p *Projector) Resize(width, height int) {
	if width <= 0 {
		width = fallbackSize
	}
	if height <= 0 {
		height = fallbackSize
	}
	p.width = width
	p.height = height
	p.points = Generate(PointCount, width, height, p.rng)
}

// Size returns the canvas dimensions.
func (p *Projector) Size() (int, int) { return p.width, p.height }

// Points returns the base point cloud. Callers must not modify it.
func (p *Projector) Points() []Point { return p.points }

func (p *Projector) Angle() float64 { return p.angle }
func (p *Projector) Speed() float64 { return p.speed }
func (p *Projector) Hue() float64 { return p.hue }

// SetSpeed changes the per-frame rotation increment.
func (p *Projector) SetSpeed(speed float64) { p.speed = speed }

// SetHue changes the dot colour.
func (p *Projector) SetHue(hue float64) { p.hue = hue }

// SetYear derives hue and speed from the selected year.
func (p *Projector) SetYear(year int) {
	p.hue = math.Mod(float64(year)*1.5, 360)
	if p.hue < 0 {
		p.hue += 360
	}
	p.speed = 0.003 + float64(((year%50)+50)%50)/10000
}

// Step advances the rotation by one frame.
func (p *Projector) Step() {
	p.angle += p.speed
}

// Project rotates every point about the Y axis by the current angle and
// returns them sorted far to near (ascending rotated z). The returned slice
// is reused by the next call.
func (p *Projector) Project() []Projected {
	cx := float64(p.width) / 2
	cy := float64(p.height) / 2
	cosY := math.Cos(p.angle)
	sinY := math.Sin(p.angle)

	p.buf = p.buf[:0]
	for _, d := range p.points {
		xr := d.X*cosY - d.Z*sinY
		zr := d.X*sinY + d.Z*cosY
		scale := Perspective(zr)
		p.buf = append(p.buf, Projected{
			X:     cx + xr*scale,
			Y:     cy + d.Y*scale,
			Z:     zr,
			Scale: scale,
			Alpha: Alpha(zr),
		})
	}
	slices.SortFunc(p.buf, func(a, b Projected) int {
		return cmp.Compare(a.Z, b.Z)
	})
	return p.buf
}
