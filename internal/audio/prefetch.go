package audio

import (
	"sync"
	"time"

	"github.com/faiface/beep"
)

const (
	prefetchChunk  = 1024
	prefetchChunks = 8
	primeTimeout   = 250 * time.Millisecond
)

// prefetcher decodes its source on its own goroutine into a bounded queue.
// Stream only copies frames that are already decoded, so a stalled network
// read never reaches the audio callback. On underrun it returns fewer frames
// and the graph pads with silence.
type prefetcher struct {
	chunks  chan [][2]float64
	pending [][2]float64
	drained bool

	stop     chan struct{}
	stopOnce sync.Once

	mu  sync.Mutex
	err error
}

// newPrefetcher starts decoding src and waits until the queue is full, the
// source is drained or primeTimeout passes.
func newPrefetcher(src beep.Streamer) *prefetcher {
	p := &prefetcher{
		chunks: make(chan [][2]float64, prefetchChunks),
		stop:   make(chan struct{}),
	}
	primed := make(chan struct{})
	go p.run(src, primed)

	select {
	case <-primed:
	case <-time.After(primeTimeout):
	}
	return p
}

func (p *prefetcher) run(src beep.Streamer, primed chan struct{}) {
	var once sync.Once
	signal := func() { once.Do(func() { close(primed) }) }
	defer signal()
	defer close(p.chunks)

	for {
		buf := make([][2]float64, prefetchChunk)
		n, ok := src.Stream(buf)
		if n > 0 {
			select {
			case p.chunks <- buf[:n]:
			case <-p.stop:
				return
			}
			if len(p.chunks) == cap(p.chunks) {
				signal()
			}
		}
		if !ok {
			p.setErr(src.Err())
			return
		}
		select {
		case <-p.stop:
			return
		default:
		}
	}
}

func (p *prefetcher) Stream(samples [][2]float64) (int, bool) {
	filled := 0
	for filled < len(samples) {
		if len(p.pending) == 0 {
			if p.drained {
				break
			}
			select {
			case c, ok := <-p.chunks:
				if !ok {
					p.drained = true
					continue
				}
				p.pending = c
			default:
				return filled, true
			}
		}
		k := copy(samples[filled:], p.pending)
		p.pending = p.pending[k:]
		filled += k
	}
	return filled, filled > 0 || !p.drained
}

func (p *prefetcher) Err() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.err
}

func (p *prefetcher) setErr(err error) {
	p.mu.Lock()
	p.err = err
	p.mu.Unlock()
}

// Close stops the decoding goroutine once it returns from the source.
func (p *prefetcher) Close() {
	p.stopOnce.Do(func() { close(p.stop) })
}
