// Package game is the viewer window: it owns the frame loop, reads input,
// kicks off archive lookups and drives the modulation engine and the
// animations once per tick.
package game

import (
	"context"
	"errors"
	"math/rand/v2"
	"net/http"
	"path/filepath"
	"sync/atomic"

	"github.com/faiface/beep"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"github.com/ncruces/zenity"
	"go.uber.org/zap"

	"github.com/iburimskiy/chronoscope/internal/audio"
	"github.com/iburimskiy/chronoscope/internal/chronicle"
	"github.com/iburimskiy/chronoscope/internal/config"
	"github.com/iburimskiy/chronoscope/internal/modulation"
	"github.com/iburimskiy/chronoscope/internal/planet"
	"github.com/iburimskiy/chronoscope/internal/starfield"
)

const (
	scopeFrames = 1024

	// Held arrow keys repeat after repeatDelay ticks, every repeatInterval.
	repeatDelay    = 20
	repeatInterval = 3
)

// Explorer gathers the report for a day.
type Explorer interface {
	Explore(ctx context.Context, d chronicle.Date) (chronicle.Report, error)
}

// MediaOpener fetches and decodes remote audio. The stream is read during
// playback, so the opener must not put a deadline on the whole body.
type MediaOpener func(ctx context.Context, rawURL string) (beep.StreamSeekCloser, beep.Format, error)

// FilePicker asks for a local audio file. It returns zenity.ErrCanceled when
// the user dismisses the dialog.
type FilePicker func() (string, error)

// Options wires the game to its collaborators.
type Options struct {
	Config   config.Config
	Logger   *zap.Logger
	Player   *audio.Player
	Explorer Explorer
	OpenURL  MediaOpener
	PickFile FilePicker
	RNG      *rand.Rand
	Clock    modulation.Clock
}

type action int

const (
	actNone action = iota
	actUp
	actDown
	actLeft
	actRight
	actExplore
	actRandom
	actOpen
	actPause
	actModulation
	actQuit
)

type exploreResult struct {
	seq    uint64
	gen    uint64
	report chronicle.Report
	err    error
}

type captureResult struct {
	label  string
	source string
	err    error
}

// Game implements ebiten.Game.
type Game struct {
	ctx      context.Context
	logger   *zap.Logger
	player   *audio.Player
	explorer Explorer
	openURL  MediaOpener
	pickFile FilePicker
	rng      *rand.Rand

	engine *modulation.Engine
	faders *Faders
	stars  *starfield.Field
	void   *starfield.Void
	planet *planet.Projector
	face   *text.GoTextFace

	layout    layout
	selected  field
	date      chronicle.Date
	report    *chronicle.Report
	exploring bool
	started   bool

	seq      atomic.Uint64
	results  chan exploreResult
	captures chan captureResult

	dragging  bool
	dragFader modulation.Param

	paused  bool
	playing string
	lastErr error
	scope   [][2]float64
}

// New builds the game. Nothing touches the sound card until the first
// explore or file open.
func New(ctx context.Context, opts Options) (*Game, error) {
	if opts.Player == nil || opts.Explorer == nil {
		return nil, errors.New("game: player and explorer are required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	rng := opts.RNG
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	openURL := opts.OpenURL
	if openURL == nil {
		openURL = func(ctx context.Context, rawURL string) (beep.StreamSeekCloser, beep.Format, error) {
			return audio.OpenURL(ctx, http.DefaultClient, rawURL)
		}
	}
	pickFile := opts.PickFile
	if pickFile == nil {
		pickFile = pickAudioFile
	}
	face, err := newFace(config.FontSize)
	if err != nil {
		return nil, err
	}

	date := chronicle.Date{Year: opts.Config.StartYear, Month: 1, Day: 1}.Clamp()
	l := computeLayout(config.WindowWidth, config.WindowHeight)
	g := &Game{
		ctx:      ctx,
		logger:   logger,
		player:   opts.Player,
		explorer: opts.Explorer,
		openURL:  openURL,
		pickFile: pickFile,
		rng:      rng,
		engine:   modulation.NewEngine(opts.Clock, date.Year, logger),
		faders:   NewFaders(opts.Config.Faders),
		stars:    starfield.NewField(l.width, l.height, config.StarCount, rng),
		void:     starfield.NewVoid(l.news.Dx(), l.news.Dy(), config.VoidDotCount, rng),
		planet:   planet.New(l.planet.Dx(), l.planet.Dy(), rng),
		face:     face,
		layout:   l,
		date:     date,
		results:  make(chan exploreResult, 4),
		captures: make(chan captureResult, 4),
	}
	return g, nil
}

func pickAudioFile() (string, error) {
	return zenity.SelectFile(
		zenity.Title("Open Audio File"),
		zenity.FileFilters{{
			Name:     "Audio",
			Patterns: []string{"*.wav", "*.mp3", "*.flac"},
		}},
	)
}

func (g *Game) Update() error {
	select {
	case <-g.ctx.Done():
		return ebiten.Termination
	default:
	}

	// The first tick picks a random day, like a fresh visit.
	if !g.started {
		g.started = true
		g.date = chronicle.RandomDate(g.rng)
		g.explore()
	}

	for _, a := range readActions() {
		if err := g.apply(a); err != nil {
			return err
		}
	}
	g.handleMouse()
	g.poll()
	g.tick()
	return nil
}

// tick advances everything that moves once per frame.
func (g *Game) tick() {
	g.engine.Step(g.faders)
	g.stars.Step()
	g.planet.Step()
	if g.report != nil && len(g.report.News) == 0 {
		g.void.Step()
	}
	if tap := g.player.Tap(); tap != nil {
		g.scope = tap.Snapshot(scopeFrames)
	}
}

var keyBindings = []struct {
	key    ebiten.Key
	act    action
	repeat bool
}{
	{ebiten.KeyUp, actUp, true},
	{ebiten.KeyDown, actDown, true},
	{ebiten.KeyLeft, actLeft, true},
	{ebiten.KeyRight, actRight, true},
	{ebiten.KeyEnter, actExplore, false},
	{ebiten.KeyNumpadEnter, actExplore, false},
	{ebiten.KeyR, actRandom, false},
	{ebiten.KeyO, actOpen, false},
	{ebiten.KeyP, actPause, false},
	{ebiten.KeySpace, actPause, false},
	{ebiten.KeyM, actModulation, false},
	{ebiten.KeyEscape, actQuit, false},
	{ebiten.KeyQ, actQuit, false},
}

func readActions() []action {
	var out []action
	for _, b := range keyBindings {
		if keyFired(b.key, b.repeat) {
			out = append(out, b.act)
		}
	}
	return out
}

func keyFired(k ebiten.Key, repeat bool) bool {
	if inpututil.IsKeyJustPressed(k) {
		return true
	}
	if !repeat {
		return false
	}
	d := inpututil.KeyPressDuration(k)
	return d >= repeatDelay && (d-repeatDelay)%repeatInterval == 0
}

func (g *Game) apply(a action) error {
	switch a {
	case actUp:
		g.selected = g.selected.move(-1)
	case actDown:
		g.selected = g.selected.move(1)
	case actLeft:
		g.adjust(-1)
	case actRight:
		g.adjust(1)
	case actExplore:
		g.explore()
	case actRandom:
		g.date = chronicle.RandomDate(g.rng)
		g.explore()
	case actOpen:
		g.openFile()
	case actPause:
		g.paused = g.player.TogglePause()
	case actModulation:
		g.engine.SetActive(!g.engine.Active())
	case actQuit:
		return ebiten.Termination
	}
	return nil
}

func (g *Game) adjust(delta int) {
	if p, ok := g.selected.fader(); ok {
		g.faders.Nudge(p, float64(delta)*faderStep)
		return
	}
	g.date = adjustDate(g.date, g.selected, delta)
}

func (g *Game) handleMouse() {
	x, y := ebiten.CursorPosition()
	if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) {
		if p, v, ok := g.layout.faderAt(x, y); ok {
			g.dragging = true
			g.dragFader = p
			g.selected = fieldDelay + field(p)
			g.faders.Set(p, v)
		}
	}
	if !g.dragging {
		return
	}
	if !ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft) {
		g.dragging = false
		return
	}
	g.faders.Set(g.dragFader, levelAt(g.layout.faders[g.dragFader], x))
}

// startAudio builds the graph on the first audio-capable interaction and
// hands it to the engine.
func (g *Game) startAudio() {
	if g.engine.Attached() {
		return
	}
	graph, err := g.player.Start()
	if err != nil {
		g.logger.Warn("audio start failed", zap.Error(err))
		g.lastErr = err
		return
	}
	g.engine.Attach(graph)
}

// explore starts the lookups for the selected date. Results of earlier
// lookups still in flight are dropped when they arrive.
func (g *Game) explore() {
	g.startAudio()

	d := g.date
	seq := g.seq.Add(1)
	gen := g.player.NextGeneration()
	g.exploring = true
	g.engine.SetYear(d.Year)
	g.planet.SetYear(d.Year)
	g.logger.Info("exploring date", zap.String("date", d.String()))

	go func() {
		r, err := g.explorer.Explore(g.ctx, d)
		select {
		case g.results <- exploreResult{seq: seq, gen: gen, report: r, err: err}:
		case <-g.ctx.Done():
		}
	}()
}

// openFile lets the user pick local audio. A picked file supersedes any reel
// soundtrack still loading.
func (g *Game) openFile() {
	g.startAudio()
	go func() {
		name, err := g.pickFile()
		if errors.Is(err, zenity.ErrCanceled) {
			return
		}
		if err == nil {
			gen := g.player.NextGeneration()
			var (
				s      beep.StreamSeekCloser
				format beep.Format
			)
			s, format, err = audio.Open(name)
			if err == nil {
				err = g.player.CaptureAt(gen, s, format)
			}
		}
		if errors.Is(err, audio.ErrStale) {
			return
		}
		g.sendCapture(captureResult{label: filepath.Base(name), source: name, err: err})
	}()
}

// captureURL routes the reel soundtrack through the graph unless a newer
// lookup or file has taken over meanwhile.
func (g *Game) captureURL(gen uint64, label, rawURL string) {
	go func() {
		s, format, err := g.openURL(g.ctx, rawURL)
		if err == nil {
			err = g.player.CaptureAt(gen, s, format)
		}
		if errors.Is(err, audio.ErrStale) {
			g.logger.Debug("stale soundtrack dropped", zap.String("source", rawURL))
			return
		}
		g.sendCapture(captureResult{label: label, source: rawURL, err: err})
	}()
}

func (g *Game) sendCapture(res captureResult) {
	select {
	case g.captures <- res:
	case <-g.ctx.Done():
	}
}

// poll drains finished background work without blocking the frame.
func (g *Game) poll() {
	for {
		select {
		case res := <-g.results:
			g.receive(res)
		case res := <-g.captures:
			g.captured(res)
		default:
			return
		}
	}
}

func (g *Game) receive(res exploreResult) {
	if res.seq != g.seq.Load() {
		return
	}
	g.exploring = false
	if res.err != nil {
		g.logger.Warn("explore failed", zap.String("date", res.report.Date.String()), zap.Error(res.err))
		g.lastErr = res.err
		return
	}

	r := res.report
	g.report = &r
	g.lastErr = nil
	if len(r.News) == 0 {
		g.void = starfield.NewVoid(g.layout.news.Dx(), g.layout.news.Dy(), config.VoidDotCount, g.rng)
	}
	if r.Video.AudioURL != "" {
		g.captureURL(res.gen, r.Video.Title, r.Video.AudioURL)
	}
}

func (g *Game) captured(res captureResult) {
	if res.err != nil {
		g.logger.Warn("media capture failed", zap.String("source", res.source), zap.Error(res.err))
		g.lastErr = res.err
		return
	}
	g.logger.Info("media captured", zap.String("source", res.source))
	g.playing = res.label
	g.paused = false
	g.lastErr = nil
}

// Layout follows the window size and regenerates the animations when it
// changes.
func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	if outsideWidth != g.layout.width || outsideHeight != g.layout.height {
		g.resize(outsideWidth, outsideHeight)
	}
	return g.layout.width, g.layout.height
}

func (g *Game) resize(width, height int) {
	g.layout = computeLayout(width, height)
	g.stars.Resize(g.layout.width, g.layout.height)
	g.planet.Resize(g.layout.planet.Dx(), g.layout.planet.Dy())
	g.void = starfield.NewVoid(g.layout.news.Dx(), g.layout.news.Dy(), config.VoidDotCount, g.rng)
	g.logger.Debug("window resized", zap.Int("width", width), zap.Int("height", height))
}
