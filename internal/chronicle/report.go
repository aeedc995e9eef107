package chronicle

import (
	"context"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Report is everything gathered for one day.
type Report struct {
	Date       Date
	Space      Space
	Photo      Photo
	Video      Video
	News       []string
	Atmosphere string
}

// Explore runs every lookup for the day concurrently. Each lookup falls back
// on its own, so the report is always complete; the error is only the
// context's.
func (c *Client) Explore(ctx context.Context, d Date) (Report, error) {
	r := Report{Date: d, Atmosphere: Atmosphere(d)}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		r.Space = c.Space(gctx, d)
		return nil
	})
	g.Go(func() error {
		r.Photo = c.Photo(gctx, d)
		return nil
	})
	g.Go(func() error {
		r.Video = c.Video(gctx, d)
		return nil
	})
	g.Go(func() error {
		r.News = c.News(gctx, d)
		return nil
	})
	_ = g.Wait()
	if err := ctx.Err(); err != nil {
		return r, err
	}
	c.logger.Info("explored date",
		zap.String("date", d.String()),
		zap.String("reel", r.Video.ID),
		zap.Int("news", len(r.News)),
	)
	return r, nil
}
