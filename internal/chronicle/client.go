// Package chronicle fetches what the archives remember about a given day:
// the astronomy picture of the day, an archival photo, a film reel with its
// soundtrack and a few news headlines.
//
// Every lookup degrades to a fixed fallback instead of failing, so a report
// is always complete.
package chronicle

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand/v2"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
)

const (
	defaultAPODURL    = "https://api.nasa.gov/planetary/apod"
	defaultArchiveURL = "https://archive.org"
	defaultUserAgent  = "chronoscope/0.1"
	requestTimeout    = 10 * time.Second
)

// Client talks to the NASA APOD API and the Internet Archive.
type Client struct {
	apodURL    *url.URL
	archiveURL *url.URL
	apiKey     string
	http       *http.Client
	userAgent  string
	logger     *zap.Logger

	mu  sync.Mutex
	rng *rand.Rand
}

// Option customises a Client.
type Option func(*Client) error

// WithAPODURL overrides the APOD endpoint.
func WithAPODURL(raw string) Option {
	return func(c *Client) error {
		u, err := parseBaseURL(raw)
		if err != nil {
			return err
		}
		c.apodURL = u
		return nil
	}
}

// WithArchiveURL overrides the Internet Archive base URL.
func WithArchiveURL(raw string) Option {
	return func(c *Client) error {
		u, err := parseBaseURL(raw)
		if err != nil {
			return err
		}
		u.Path = strings.TrimSuffix(u.Path, "/")
		c.archiveURL = u
		return nil
	}
}

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) error {
		c.http = h
		return nil
	}
}

// WithLogger sets the logger used to report fallbacks.
func WithLogger(l *zap.Logger) Option {
	return func(c *Client) error {
		c.logger = l
		return nil
	}
}

// NewClient builds a Client. rng picks among film reels.
func NewClient(apiKey string, rng *rand.Rand, opts ...Option) (*Client, error) {
	apod, _ := url.Parse(defaultAPODURL)
	archive, _ := url.Parse(defaultArchiveURL)
	c := &Client{
		apodURL:    apod,
		archiveURL: archive,
		apiKey:     apiKey,
		http:       &http.Client{Timeout: requestTimeout},
		userAgent:  defaultUserAgent,
		logger:     zap.NewNop(),
		rng:        rng,
	}
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}
	return c, nil
}

func (c *Client) intn(n int) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.rng.IntN(n)
}

func (c *Client) archive(path string, query url.Values) *url.URL {
	u := *c.archiveURL
	u.Path += path
	u.RawQuery = query.Encode()
	return &u
}

func (c *Client) getJSON(ctx context.Context, u *url.URL, dest any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("%s returned status %d", u.Path, resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func parseBaseURL(raw string) (*url.URL, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return nil, fmt.Errorf("parse base url %q: %w", raw, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("base url %q needs a scheme and host", raw)
	}
	u.RawQuery = ""
	u.Fragment = ""
	return u, nil
}
