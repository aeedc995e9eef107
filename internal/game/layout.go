package game

import (
	"image"

	"github.com/iburimskiy/chronoscope/internal/config"
	"github.com/iburimskiy/chronoscope/internal/modulation"
)

const minPanel = 60

// layout holds the screen regions for one window size.
type layout struct {
	width, height int

	header image.Rectangle
	planet image.Rectangle
	faders [len(modulation.Params)]image.Rectangle
	info   image.Rectangle
	news   image.Rectangle
	scope  image.Rectangle
}

func computeLayout(width, height int) layout {
	width = max(width, 1)
	height = max(height, 1)
	m := config.PanelMargin
	l := layout{width: width, height: height}

	l.header = image.Rect(m, m, width-m, m+config.HeaderHeight)
	l.scope = image.Rect(m, height-m-config.ScopeHeight, width-m, height-m)

	fadersH := len(l.faders) * config.FaderSpacing
	planetW := max(minPanel, min(config.PlanetPanelW, width/2-2*m))
	planetH := max(minPanel, min(config.PlanetPanelH, l.scope.Min.Y-l.header.Max.Y-fadersH-2*m))
	l.planet = image.Rect(m, l.header.Max.Y, m+planetW, l.header.Max.Y+planetH)

	top := l.planet.Max.Y + m
	for i := range l.faders {
		y := top + i*config.FaderSpacing + config.LineHeight
		x := m + 2*config.SelectorWidth
		l.faders[i] = image.Rect(x, y, x+config.FaderWidth, y+config.FaderHeight)
	}

	left := l.planet.Max.X + 2*m
	right := max(left+minPanel, width-m)
	l.info = image.Rect(left, l.planet.Min.Y, right, l.planet.Min.Y+7*config.LineHeight)
	l.news = image.Rect(left, l.info.Max.Y+m, right, l.info.Max.Y+m+config.NewsPanelH)
	return l
}

// faderAt returns the fader under (x, y) and the level the position maps to.
func (l layout) faderAt(x, y int) (modulation.Param, float64, bool) {
	pt := image.Pt(x, y)
	for i, r := range l.faders {
		if pt.In(r) {
			return modulation.Params[i], levelAt(r, x), true
		}
	}
	return 0, 0, false
}

func levelAt(r image.Rectangle, x int) float64 {
	if r.Dx() <= 0 {
		return 0
	}
	return clamp01(float64(x-r.Min.X) / float64(r.Dx()))
}
