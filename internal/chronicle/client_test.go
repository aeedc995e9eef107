package chronicle

import (
	"context"
	"encoding/json"
	"math/rand/v2"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"
)

type fakeArchive struct {
	mu      sync.Mutex
	queries []string
	agents  []string

	apod     map[string]any
	apodCode int
	docs     map[string][]map[string]any
	meta     map[string]any
	metaCode int
}

func (f *fakeArchive) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.agents = append(f.agents, r.Header.Get("User-Agent"))
	w.Header().Set("Content-Type", "application/json")

	switch {
	case r.URL.Path == "/apod":
		if f.apodCode != 0 {
			w.WriteHeader(f.apodCode)
			return
		}
		_ = json.NewEncoder(w).Encode(f.apod)
	case r.URL.Path == "/advancedsearch.php":
		q := r.URL.Query().Get("q")
		f.queries = append(f.queries, q+"|"+r.URL.Query().Get("limit"))
		payload := map[string]any{"response": map[string]any{"docs": f.docs[q]}}
		_ = json.NewEncoder(w).Encode(payload)
	case strings.HasPrefix(r.URL.Path, "/metadata/"):
		if f.metaCode != 0 {
			w.WriteHeader(f.metaCode)
			return
		}
		_ = json.NewEncoder(w).Encode(f.meta)
	default:
		http.NotFound(w, r)
	}
}

func (f *fakeArchive) update(fn func(f *fakeArchive)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	fn(f)
}

func (f *fakeArchive) seen() (queries, agents []string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.queries...), append([]string(nil), f.agents...)
}

func newTestClient(t *testing.T, f *fakeArchive) *Client {
	t.Helper()
	server := httptest.NewServer(f)
	t.Cleanup(server.Close)
	c, err := NewClient("KEY", rand.New(rand.NewPCG(3, 4)),
		WithAPODURL(server.URL+"/apod"),
		WithArchiveURL(server.URL),
	)
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}
	return c
}

func testCtx(t *testing.T) context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	t.Cleanup(cancel)
	return ctx
}

var day = Date{Year: 1969, Month: 7, Day: 20}

func TestNewClient_RejectsBadBaseURL(t *testing.T) {
	if _, err := NewClient("", nil, WithArchiveURL("not a url")); err == nil {
		t.Fatal("expected error for base url without scheme")
	}
}

func TestSpace(t *testing.T) {
	t.Parallel()

	f := &fakeArchive{apod: map[string]any{"title": "Tranquility Base", "url": "https://apod/x.jpg", "media_type": "image"}}
	c := newTestClient(t, f)
	s := c.Space(testCtx(t), day)
	if s.Title != "Tranquility Base" || s.URL != "https://apod/x.jpg" || s.MediaType != "image" {
		t.Fatalf("Space = %+v", s)
	}
	if _, agents := f.seen(); agents[0] != defaultUserAgent {
		t.Fatalf("user agent = %q, want %q", agents[0], defaultUserAgent)
	}

	f.update(func(f *fakeArchive) { f.apod = map[string]any{"title": "No media"} })
	if s := c.Space(testCtx(t), day); s.Title != SpaceUntitled || s.URL != "" {
		t.Fatalf("Space without url = %+v, want %q", s, SpaceUntitled)
	}

	f.update(func(f *fakeArchive) { f.apodCode = http.StatusInternalServerError })
	if s := c.Space(testCtx(t), day); s.Title != SpaceUnreachable {
		t.Fatalf("Space on error = %+v, want %q", s, SpaceUnreachable)
	}
}

func TestPhoto(t *testing.T) {
	t.Parallel()

	q := "date:1969-07-20 AND mediatype:image"
	f := &fakeArchive{docs: map[string][]map[string]any{
		q: {{"identifier": "moon-1", "title": []string{"Moon walk", "alt"}}},
	}}
	c := newTestClient(t, f)
	p := c.Photo(testCtx(t), day)
	if p.Title != "Moon walk" || !strings.HasSuffix(p.Image, "/services/img/moon-1") {
		t.Fatalf("Photo = %+v", p)
	}
	if queries, _ := f.seen(); queries[0] != q+"|1" {
		t.Fatalf("query = %q", queries[0])
	}

	p = c.Photo(testCtx(t), Date{Year: 1970, Month: 1, Day: 1})
	if p.Title != PhotoFallback || p.Image != PhotoFallbackImage {
		t.Fatalf("Photo fallback = %+v", p)
	}
}

func TestVideo_WidensSearch(t *testing.T) {
	t.Parallel()

	yearQ := "year:1969 AND mediatype:movies"
	f := &fakeArchive{
		docs: map[string][]map[string]any{
			yearQ: {{"identifier": "reel 7", "title": "Newsreel"}},
		},
		meta: map[string]any{"files": []map[string]any{
			{"name": "cover.jpg", "format": "JPEG"},
			{"name": "reel 7.mp4", "format": "h.264", "length": "01:30"},
			{"name": "reel 7.mp3", "format": "VBR MP3"},
		}},
	}
	c := newTestClient(t, f)
	v := c.Video(testCtx(t), day)
	if !v.Found() || v.ID != "reel 7" || v.Title != "Newsreel" {
		t.Fatalf("Video = %+v", v)
	}
	if v.Duration != 90 {
		t.Fatalf("duration = %v, want 90", v.Duration)
	}
	if !strings.HasSuffix(v.URL, "/download/reel%207/reel%207.mp4") {
		t.Fatalf("video url = %q", v.URL)
	}
	if !strings.HasSuffix(v.AudioURL, "/download/reel%207/reel%207.mp3") {
		t.Fatalf("audio url = %q", v.AudioURL)
	}

	want := []string{
		"date:1969-07-20 AND mediatype:movies|5",
		"year:1969 AND date:1969-07* AND mediatype:movies|10",
		yearQ + "|50",
	}
	queries, _ := f.seen()
	if len(queries) != len(want) {
		t.Fatalf("queries = %q, want %q", queries, want)
	}
	for i := range want {
		if queries[i] != want[i] {
			t.Fatalf("query %d = %q, want %q", i, queries[i], want[i])
		}
	}
}

func TestVideo_MetadataFailureKeepsReel(t *testing.T) {
	t.Parallel()

	f := &fakeArchive{
		docs: map[string][]map[string]any{
			"date:1969-07-20 AND mediatype:movies": {{"identifier": "a", "title": "A"}},
		},
		metaCode: http.StatusBadGateway,
	}
	c := newTestClient(t, f)
	v := c.Video(testCtx(t), day)
	if v.ID != "a" || v.Duration != DefaultReelSeconds || v.URL != "" || v.AudioURL != "" {
		t.Fatalf("Video = %+v", v)
	}
}

func TestVideo_Missing(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, &fakeArchive{})
	v := c.Video(testCtx(t), day)
	if v.Found() || v.Title != VideoMissing {
		t.Fatalf("Video = %+v, want %q", v, VideoMissing)
	}
}

func TestNews(t *testing.T) {
	t.Parallel()

	q := "date:1969-07-20 AND subject:(news OR highlights)"
	f := &fakeArchive{docs: map[string][]map[string]any{
		q: {{"identifier": "1", "title": "Eagle has landed"}, {"identifier": "2", "title": "Splashdown"}},
	}}
	c := newTestClient(t, f)
	news := c.News(testCtx(t), day)
	if len(news) != 2 || news[0] != "Eagle has landed" {
		t.Fatalf("News = %q", news)
	}
	if queries, _ := f.seen(); queries[0] != q+"|3" {
		t.Fatalf("query = %q", queries[0])
	}
}

func TestAtmosphere(t *testing.T) {
	got := Atmosphere(Date{Year: 2001, Month: 9, Day: 3})
	want := "Аналітичний звіт 03.09.2001. Спектральний аналіз завершено. Рівень фонової активності стабільний."
	if got != want {
		t.Fatalf("Atmosphere = %q", got)
	}
}

func TestExplore_AlwaysComplete(t *testing.T) {
	t.Parallel()

	f := &fakeArchive{apodCode: http.StatusTooManyRequests}
	c := newTestClient(t, f)
	r, err := c.Explore(testCtx(t), day)
	if err != nil {
		t.Fatalf("Explore returned error: %v", err)
	}
	if r.Date != day || r.Space.Title != SpaceUnreachable || r.Photo.Title != PhotoFallback ||
		r.Video.Title != VideoMissing || len(r.News) != 0 || r.Atmosphere != Atmosphere(day) {
		t.Fatalf("Explore = %+v", r)
	}
}

func TestExplore_CancelledContext(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, &fakeArchive{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	r, err := c.Explore(ctx, day)
	if err == nil {
		t.Fatal("expected context error")
	}
	if r.Atmosphere == "" || r.Space.Title != SpaceUnreachable {
		t.Fatalf("Explore = %+v, want fallbacks", r)
	}
}
