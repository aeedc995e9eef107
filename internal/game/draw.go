package game

import (
	"fmt"
	"image"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"github.com/iburimskiy/chronoscope/internal/chronicle"
	"github.com/iburimskiy/chronoscope/internal/config"
	"github.com/iburimskiy/chronoscope/internal/modulation"
)

// networkSilence is shown over the void animation when a day has no news.
const networkSilence = "МЕРЕЖЕВА ТИША..."

// spectralVoid replaces the space line when no picture of the day arrived.
const spectralVoid = "Спектральна пустота (дані NASA не отримано)"

const helpText = "Up/Down: select  Left/Right: change  Enter: explore  R: random  O: open file  P: pause  M: modulation  Esc: quit"

var (
	textColor   = color.RGBA{R: 220, G: 225, B: 235, A: 255}
	dimColor    = color.RGBA{R: 120, G: 130, B: 150, A: 255}
	accentColor = color.RGBA{R: 120, G: 200, B: 255, A: 255}
	errorColor  = color.RGBA{R: 255, G: 120, B: 110, A: 255}
	panelColor  = color.RGBA{R: 10, G: 14, B: 24, A: 200}
	borderColor = color.RGBA{R: 60, G: 70, B: 90, A: 255}
	faderColor  = color.RGBA{R: 60, G: 80, B: 120, A: 255}
)

func (g *Game) Draw(screen *ebiten.Image) {
	screen.Fill(color.Black)
	g.stars.Draw(screen)

	g.drawHeader(screen)
	g.drawPlanet(screen)
	g.drawReport(screen)
	g.drawNews(screen)
	g.drawFaders(screen)
	g.drawScope(screen)

	ebitenutil.DebugPrintAt(screen, helpText, config.PanelMargin, g.layout.height-config.PanelMargin+2)
}

func drawPanel(dst *ebiten.Image, r image.Rectangle) {
	x, y, w, h := float32(r.Min.X), float32(r.Min.Y), float32(r.Dx()), float32(r.Dy())
	vector.DrawFilledRect(dst, x, y, w, h, panelColor, false)
	vector.StrokeRect(dst, x, y, w, h, 1, borderColor, false)
}

// drawHeader prints the selectable date with the focused part highlighted,
// plus the current activity on the right.
func (g *Game) drawHeader(screen *ebiten.Image) {
	parts := []struct {
		s string
		f field
	}{
		{fmt.Sprintf("%02d", g.date.Day), fieldDay},
		{".", -1},
		{fmt.Sprintf("%02d", g.date.Month), fieldMonth},
		{".", -1},
		{fmt.Sprintf("%04d", g.date.Year), fieldYear},
	}

	x := float64(g.layout.header.Min.X)
	y := g.layout.header.Min.Y
	for _, p := range parts {
		clr := color.Color(textColor)
		w := text.Advance(p.s, g.face)
		if p.f >= 0 && p.f == g.selected {
			clr = accentColor
			vector.DrawFilledRect(screen, float32(x), float32(y+config.LineHeight+2), float32(w), 2, accentColor, false)
		}
		drawText(screen, g.face, p.s, int(x), y, clr)
		x += w + 4
	}

	status, clr := g.statusLine()
	drawText(screen, g.face, status, int(x)+3*config.PanelMargin, y, clr)
}

func (g *Game) statusLine() (string, color.Color) {
	switch {
	case g.lastErr != nil:
		return "error: " + g.lastErr.Error(), errorColor
	case g.exploring:
		return "exploring...", accentColor
	case g.playing != "" && g.paused:
		return "paused: " + g.playing, dimColor
	case g.playing != "":
		return "playing: " + g.playing, dimColor
	}
	return "", dimColor
}

func (g *Game) drawPlanet(screen *ebiten.Image) {
	r := g.layout.planet
	drawPanel(screen, r)
	sub := screen.SubImage(r).(*ebiten.Image)
	g.planet.Draw(sub, float32(r.Min.X), float32(r.Min.Y))
}

// charsFor estimates how many glyphs fit into a row of the given width.
func charsFor(width int) int {
	return width * 2 / config.FontSize
}

func (g *Game) drawReport(screen *ebiten.Image) {
	r := g.layout.info
	x, y := r.Min.X, r.Min.Y
	if g.report == nil {
		drawText(screen, g.face, "Press Enter to explore the selected day", x, y, dimColor)
		return
	}

	rep := g.report
	n := charsFor(r.Dx())
	lines := []struct {
		label string
		value string
	}{
		{"Date", rep.Date.Display()},
		{"Space", spaceLine(rep.Space)},
		{"Photo", rep.Photo.Title},
		{"Reel", reelLine(rep.Video)},
	}
	for _, l := range lines {
		drawText(screen, g.face, l.label, x, y, dimColor)
		drawText(screen, g.face, truncate(l.value, n-8), x+70, y, textColor)
		y += config.LineHeight
	}
	y += config.LineHeight / 2
	drawText(screen, g.face, truncate(rep.Atmosphere, n), x, y, accentColor)
}

// spaceLine credits the picture of the day, or reports that none arrived.
func spaceLine(s chronicle.Space) string {
	if s.URL == "" {
		return spectralVoid
	}
	return s.Title + " | APOD NASA"
}

func reelLine(v chronicle.Video) string {
	if !v.Found() {
		return v.Title
	}
	return fmt.Sprintf("%s (%s)", v.Title, formatDuration(seconds(v.Duration)))
}

func (g *Game) drawNews(screen *ebiten.Image) {
	if g.report == nil {
		return
	}
	r := g.layout.news
	if len(g.report.News) > 0 {
		drawPanel(screen, r)
		n := charsFor(r.Dx() - 16)
		for i, title := range g.report.News {
			drawText(screen, g.face, truncate(title, n), r.Min.X+8, r.Min.Y+8+i*config.LineHeight*2, textColor)
		}
		return
	}

	sub := screen.SubImage(r).(*ebiten.Image)
	g.void.Draw(sub, float32(r.Min.X), float32(r.Min.Y))
	w := text.Advance(networkSilence, g.face)
	drawText(screen, g.face, networkSilence, r.Min.X+(r.Dx()-int(w))/2, r.Min.Y+r.Dy()/2-config.LineHeight/2, dimColor)
}

// drawFaders paints each fader with its base level as a knob and the
// modulated level as the filled indicator.
func (g *Game) drawFaders(screen *ebiten.Image) {
	ind := g.engine.Indicators()
	for i, p := range modulation.Params {
		r := g.layout.faders[i]
		x, y, w, h := float32(r.Min.X), float32(r.Min.Y), float32(r.Dx()), float32(r.Dy())
		base, _ := g.faders.Level(p)

		label := fmt.Sprintf("%s %3.0f%%", p, base*100)
		clr := color.Color(dimColor)
		if g.selected == fieldDelay+field(i) {
			clr = accentColor
			vector.DrawFilledRect(screen, x-2*config.SelectorWidth, y, config.SelectorWidth, h, accentColor, false)
		}
		drawText(screen, g.face, label, r.Min.X, r.Min.Y-config.LineHeight, clr)

		vector.DrawFilledRect(screen, x, y, w, h, faderColor, false)
		fill := float32(ind.Width(p)/100) * w
		if fill > 0 {
			vector.DrawFilledRect(screen, x, y, fill, h, accentColor, false)
		}
		vector.StrokeRect(screen, x, y, w, h, 1, borderColor, false)
		vector.DrawFilledRect(screen, x+float32(base)*w-1, y-2, 3, h+4, textColor, false)
	}
	if !g.engine.Active() {
		last := g.layout.faders[len(g.layout.faders)-1]
		drawText(screen, g.face, "modulation off", last.Max.X+config.PanelMargin, last.Min.Y-config.LineHeight/2, dimColor)
	}
}

// drawScope plots the latest output frames, mixed to mono.
func (g *Game) drawScope(screen *ebiten.Image) {
	r := g.layout.scope
	drawPanel(screen, r)
	if len(g.scope) < 2 || r.Dx() < 2 {
		return
	}
	mid := float32(r.Min.Y) + float32(r.Dy())/2
	amp := float32(r.Dy()) / 2
	points := min(len(g.scope), r.Dx())
	step := float64(len(g.scope)) / float64(points)
	dx := float32(r.Dx()) / float32(points-1)

	sample := func(i int) float32 {
		f := g.scope[min(int(float64(i)*step), len(g.scope)-1)]
		mono := (f[0] + f[1]) / 2
		return float32(max(-1, min(1, mono)))
	}
	prevX, prevY := float32(r.Min.X), mid-sample(0)*amp
	for i := 1; i < points; i++ {
		x := float32(r.Min.X) + float32(i)*dx
		y := mid - sample(i)*amp
		vector.StrokeLine(screen, prevX, prevY, x, y, 1, accentColor, true)
		prevX, prevY = x, y
	}
}
