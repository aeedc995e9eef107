package planet

import (
	"image/color"
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/lucasb-eyer/go-colorful"
)

const (
	dotSaturation = 0.8
	dotLightness  = 0.7
	dotRadius     = 2.0
)

// DotColor returns the premultiplied colour of a dot at the given alpha.
func DotColor(hue, alpha float64) color.RGBA {
	c := colorful.Hsl(math.Mod(hue, 360), dotSaturation, dotLightness).Clamped()
	a := math.Max(0, math.Min(1, alpha))
	return color.RGBA{
		R: uint8(c.R * a * 255),
		G: uint8(c.G * a * 255),
		B: uint8(c.B * a * 255),
		A: uint8(a * 255),
	}
}

// Draw paints the planet on dst with its canvas origin at (x, y), back to
// front.
func (p *Projector) Draw(dst *ebiten.Image, x, y float32) {
	for _, pt := range p.Project() {
		if pt.Alpha <= 0 {
			continue
		}
		vector.DrawFilledCircle(dst, x+float32(pt.X), y+float32(pt.Y), float32(pt.Scale*dotRadius), DotColor(p.hue, pt.Alpha), true)
	}
}
