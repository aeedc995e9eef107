package chronicle

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"go.uber.org/zap"
)

// Fallback texts shown when an archive has nothing for the day.
const (
	SpaceUntitled      = "Космічний об'єкт"
	SpaceUnreachable   = "Глибокий Космос"
	PhotoFallback      = "Архівна візуалізація"
	PhotoFallbackImage = "https://images.unsplash.com/photo-1532012197267-da84d127e765?q=80&w=1000"
	VideoMissing       = "Відео-хроніка відсутня"

	// DefaultReelSeconds is used when a reel has no usable duration.
	DefaultReelSeconds = 45.0
)

// Space is the astronomy picture of the day.
type Space struct {
	Title       string `json:"title"`
	URL         string `json:"url"`
	MediaType   string `json:"media_type"`
	Explanation string `json:"explanation"`
}

// Photo is an archival still image.
type Photo struct {
	Title string
	Image string
}

// Video is a film reel from the archive. ID is empty when nothing was found.
type Video struct {
	Title    string
	ID       string
	Duration float64
	URL      string
	AudioURL string
}

// Found reports whether a reel was located.
func (v Video) Found() bool { return v.ID != "" }

// text decodes an archive field that is either a string or a list of them.
type text string

func (t *text) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*t = text(s)
		return nil
	}
	var list []string
	if err := json.Unmarshal(b, &list); err != nil {
		return err
	}
	if len(list) > 0 {
		*t = text(list[0])
	}
	return nil
}

type searchDoc struct {
	Identifier string `json:"identifier"`
	Title      text   `json:"title"`
}

type searchResponse struct {
	Response struct {
		Docs []searchDoc `json:"docs"`
	} `json:"response"`
}

type metadataFile struct {
	Name     string `json:"name"`
	Format   string `json:"format"`
	Length   text   `json:"length"`
	Duration text   `json:"duration"`
}

type metadataResponse struct {
	Files []metadataFile `json:"files"`
}

// Space fetches the APOD entry for the date.
func (c *Client) Space(ctx context.Context, d Date) Space {
	u := *c.apodURL
	u.RawQuery = url.Values{"api_key": {c.apiKey}, "date": {d.String()}}.Encode()
	var s Space
	if err := c.getJSON(ctx, &u, &s); err != nil {
		c.logger.Debug("apod lookup failed", zap.String("date", d.String()), zap.Error(err))
		return Space{Title: SpaceUnreachable}
	}
	if s.URL == "" {
		return Space{Title: SpaceUntitled}
	}
	if s.Title == "" {
		s.Title = SpaceUntitled
	}
	return s
}

func (c *Client) search(ctx context.Context, query string, limit int) ([]searchDoc, error) {
	u := c.archive("/advancedsearch.php", url.Values{
		"q":      {query},
		"output": {"json"},
		"limit":  {strconv.Itoa(limit)},
	})
	var resp searchResponse
	if err := c.getJSON(ctx, u, &resp); err != nil {
		return nil, err
	}
	return resp.Response.Docs, nil
}

// Photo fetches one archival image dated on the day.
func (c *Client) Photo(ctx context.Context, d Date) Photo {
	docs, err := c.search(ctx, fmt.Sprintf("date:%s AND mediatype:image", d), 1)
	if err != nil {
		c.logger.Debug("photo search failed", zap.String("date", d.String()), zap.Error(err))
	}
	if len(docs) == 0 {
		return Photo{Title: PhotoFallback, Image: PhotoFallbackImage}
	}
	return Photo{
		Title: string(docs[0].Title),
		Image: c.archive("/services/img/"+docs[0].Identifier, nil).String(),
	}
}

// Video looks for a reel on the exact day, then in the month, then in the
// year, picks one at random and resolves its video and audio files.
func (c *Client) Video(ctx context.Context, d Date) Video {
	queries := []struct {
		q     string
		limit int
	}{
		{fmt.Sprintf("date:%s AND mediatype:movies", d), 5},
		{fmt.Sprintf("year:%04d AND date:%04d-%02d* AND mediatype:movies", d.Year, d.Year, d.Month), 10},
		{fmt.Sprintf("year:%04d AND mediatype:movies", d.Year), 50},
	}
	var docs []searchDoc
	for _, step := range queries {
		var err error
		docs, err = c.search(ctx, step.q, step.limit)
		if err != nil {
			c.logger.Debug("reel search failed", zap.String("query", step.q), zap.Error(err))
		}
		if len(docs) > 0 {
			break
		}
	}
	if len(docs) == 0 {
		return Video{Title: VideoMissing}
	}

	item := docs[c.intn(len(docs))]
	v := Video{Title: string(item.Title), ID: item.Identifier, Duration: DefaultReelSeconds}

	var meta metadataResponse
	if err := c.getJSON(ctx, c.archive("/metadata/"+item.Identifier, nil), &meta); err != nil {
		c.logger.Debug("reel metadata failed", zap.String("id", item.Identifier), zap.Error(err))
		return v
	}
	if f, ok := pickFile(meta.Files, isVideoFile); ok {
		if secs := parseSeconds(string(f.Duration)); secs > 0 {
			v.Duration = secs
		} else if secs := parseSeconds(string(f.Length)); secs > 0 {
			v.Duration = secs
		}
		v.URL = c.download(item.Identifier, f.Name)
	}
	if f, ok := pickFile(meta.Files, isAudioFile); ok {
		v.AudioURL = c.download(item.Identifier, f.Name)
	}
	return v
}

func (c *Client) download(id, name string) string {
	return c.archiveURL.JoinPath("download", id, name).String()
}

func isVideoFile(f metadataFile) bool {
	return f.Format == "h.264" || f.Format == "MPEG4" || strings.HasSuffix(strings.ToLower(f.Name), ".mp4")
}

func isAudioFile(f metadataFile) bool {
	return f.Format == "VBR MP3" || strings.HasSuffix(strings.ToLower(f.Name), ".mp3")
}

func pickFile(files []metadataFile, match func(metadataFile) bool) (metadataFile, bool) {
	for _, f := range files {
		if match(f) {
			return f, true
		}
	}
	return metadataFile{}, false
}

// parseSeconds accepts plain seconds ("93.5") or clock form ("01:33").
func parseSeconds(s string) float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	if v, err := strconv.ParseFloat(s, 64); err == nil {
		return v
	}
	var total float64
	for _, part := range strings.Split(s, ":") {
		v, err := strconv.ParseFloat(part, 64)
		if err != nil {
			return 0
		}
		total = total*60 + v
	}
	return total
}

// News returns up to three headlines filed under news or highlights on the
// day. Failures yield an empty list.
func (c *Client) News(ctx context.Context, d Date) []string {
	docs, err := c.search(ctx, fmt.Sprintf("date:%s AND subject:(news OR highlights)", d), 3)
	if err != nil {
		c.logger.Debug("news search failed", zap.String("date", d.String()), zap.Error(err))
		return nil
	}
	titles := make([]string, 0, len(docs))
	for _, doc := range docs {
		titles = append(titles, string(doc.Title))
	}
	return titles
}

// Atmosphere is the fixed analytic blurb for the day.
func Atmosphere(d Date) string {
	return fmt.Sprintf("Аналітичний звіт %s. Спектральний аналіз завершено. Рівень фонової активності стабільний.", d.Display())
}
