package audio

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/faiface/beep"
	"github.com/faiface/beep/speaker"
	"go.uber.org/zap"
)

// Output abstracts the sound card so the player can be driven in tests.
type Output interface {
	Init(sampleRate beep.SampleRate, bufferSize int) error
	Play(s beep.Streamer)
}

type speakerOutput struct{}

func (speakerOutput) Init(sr beep.SampleRate, bufferSize int) error { return speaker.Init(sr, bufferSize) }
func (speakerOutput) Play(s beep.Streamer) { speaker.Play(s) }

// Speaker returns the system speaker output.
func Speaker() Output { return speakerOutput{} }

// ErrStale is returned by CaptureAt when a newer generation has started.
var ErrStale = errors.New("audio: capture superseded")

// Player owns the lazily built graph and the currently captured media.
type Player struct {
	out        Output
	logger     *zap.Logger
	sampleRate beep.SampleRate
	ringSize   int
	rng        *rand.Rand

	mu      sync.Mutex
	graph   *Graph
	tap     *Tap
	current beep.StreamSeekCloser
	gen     uint64
}

// NewPlayer returns a player that has not touched the sound card yet.
func NewPlayer(out Output, sampleRate, ringSize int, rng *rand.Rand, logger *zap.Logger) *Player {
	return &Player{
		out:        out,
		logger:     logger,
		sampleRate: beep.SampleRate(sampleRate),
		ringSize:   ringSize,
		rng:        rng,
	}
}

// Start builds the graph and starts playback. Calling it again returns the
// existing graph without rebuilding anything.
func (p *Player) Start() (*Graph, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.graph != nil {
		return p.graph, nil
	}

	g, err := NewGraph(p.sampleRate, p.rng)
	if err != nil {
		return nil, err
	}
	if err := p.out.Init(p.sampleRate, p.sampleRate.N(time.Second/20)); err != nil {
		return nil, fmt.Errorf("init speaker: %w", err)
	}
	tap := NewTap(g, p.ringSize)
	p.out.Play(tap)

	p.graph = g
	p.tap = tap
	p.logger.Info("audio graph started", zap.Int("sample_rate", int(p.sampleRate)))
	return g, nil
}

// Graph returns the running graph or nil before Start.
func (p *Player) Graph() *Graph {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.graph
}

// Tap returns the output tap or nil before Start.
func (p *Player) Tap() *Tap {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.tap
}

// NextGeneration starts a new media generation. Captures tagged with an
// older generation are refused from now on.
func (p *Player) NextGeneration() uint64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.gen++
	return p.gen
}

// Capture routes a decoded media stream through the graph. The previous
// media, if any, is stopped and closed. On failure s is closed.
func (p *Player) Capture(s beep.StreamSeekCloser, format beep.Format) error {
	return p.capture(s, format, func(uint64) bool { return true })
}

// CaptureAt is Capture for media belonging to generation gen. It returns
// ErrStale, closing s, when NextGeneration has been called since.
func (p *Player) CaptureAt(gen uint64, s beep.StreamSeekCloser, format beep.Format) error {
	return p.capture(s, format, func(cur uint64) bool { return cur == gen })
}

func (p *Player) capture(s beep.StreamSeekCloser, format beep.Format, current func(uint64) bool) error {
	g, err := p.Start()
	if err != nil {
		_ = s.Close()
		return err
	}

	// Decoding starts outside the lock; the generation check, the swap in the
	// graph and the bookkeeping happen together under it.
	feed, err := g.prepare(s, format)
	if err != nil {
		_ = s.Close()
		return err
	}

	p.mu.Lock()
	if !current(p.gen) {
		p.mu.Unlock()
		feed.Close()
		_ = s.Close()
		return ErrStale
	}
	g.attach(feed)
	prev := p.current
	p.current = s
	p.mu.Unlock()

	if prev != nil {
		_ = prev.Close()
	}
	return nil
}

// TogglePause pauses or resumes the captured media and reports the new state.
func (p *Player) TogglePause() bool {
	g := p.Graph()
	if g == nil {
		return false
	}
	return g.TogglePause()
}

// Close stops the captured media.
func (p *Player) Close() error {
	p.mu.Lock()
	cur := p.current
	g := p.graph
	p.current = nil
	p.mu.Unlock()

	if g != nil {
		g.Release()
	}
	if cur != nil {
		return cur.Close()
	}
	return nil
}
