package audio

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"strings"
	"time"

	"github.com/faiface/beep"
	"github.com/faiface/beep/flac"
	"github.com/faiface/beep/mp3"
	"github.com/faiface/beep/wav"
)

// MediaIdleTimeout aborts a remote stream that delivers no bytes for this
// long.
const MediaIdleTimeout = 15 * time.Second

// ErrUnsupportedMedia is returned for files the decoders cannot read, e.g.
// video containers.
var ErrUnsupportedMedia = errors.New("audio: unsupported media type")

// Decode picks a decoder by the extension of name. The returned streamer owns
// rc and closes it.
func Decode(rc io.ReadCloser, name string) (beep.StreamSeekCloser, beep.Format, error) {
	var (
		streamer beep.StreamSeekCloser
		format   beep.Format
		err      error
	)
	ext := strings.ToLower(path.Ext(name))
	switch ext {
	case ".wav":
		streamer, format, err = wav.Decode(rc)
	case ".mp3":
		streamer, format, err = mp3.Decode(rc)
	case ".flac":
		streamer, format, err = flac.Decode(rc)
	default:
		_ = rc.Close()
		return nil, beep.Format{}, fmt.Errorf("%w: %q", ErrUnsupportedMedia, ext)
	}
	if err != nil {
		_ = rc.Close()
		return nil, beep.Format{}, fmt.Errorf("decode %s: %w", name, err)
	}
	return streamer, format, nil
}

// Open decodes a local audio file.
func Open(filename string) (beep.StreamSeekCloser, beep.Format, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, beep.Format{}, err
	}
	return Decode(f, filename)
}

// OpenURL streams and decodes a remote audio file. The body has no overall
// deadline, but a read that stalls for MediaIdleTimeout cancels the request.
func OpenURL(ctx context.Context, client *http.Client, rawURL string) (beep.StreamSeekCloser, beep.Format, error) {
	return openURL(ctx, client, rawURL, MediaIdleTimeout)
}

func openURL(ctx context.Context, client *http.Client, rawURL string, idle time.Duration) (beep.StreamSeekCloser, beep.Format, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, beep.Format{}, fmt.Errorf("parse media url: %w", err)
	}
	// Reject before downloading anything.
	switch strings.ToLower(path.Ext(u.Path)) {
	case ".wav", ".mp3", ".flac":
	default:
		return nil, beep.Format{}, fmt.Errorf("%w: %s", ErrUnsupportedMedia, u.Path)
	}

	ctx, cancel := context.WithCancel(ctx)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		cancel()
		return nil, beep.Format{}, fmt.Errorf("build media request: %w", err)
	}
	if client == nil {
		client = http.DefaultClient
	}
	watchdog := time.AfterFunc(idle, cancel)
	resp, err := client.Do(req)
	if err != nil {
		watchdog.Stop()
		cancel()
		return nil, beep.Format{}, fmt.Errorf("fetch media: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		watchdog.Stop()
		cancel()
		_ = resp.Body.Close()
		return nil, beep.Format{}, fmt.Errorf("fetch media: status %s", resp.Status)
	}
	body := &idleBody{ReadCloser: resp.Body, watchdog: watchdog, idle: idle, cancel: cancel}
	return Decode(body, u.Path)
}

// idleBody re-arms the watchdog around every read.
type idleBody struct {
	io.ReadCloser
	watchdog *time.Timer
	idle     time.Duration
	cancel   context.CancelFunc
}

func (b *idleBody) Read(p []byte) (int, error) {
	b.watchdog.Reset(b.idle)
	n, err := b.ReadCloser.Read(p)
	b.watchdog.Reset(b.idle)
	return n, err
}

func (b *idleBody) Close() error {
	b.watchdog.Stop()
	b.cancel()
	return b.ReadCloser.Close()
}
