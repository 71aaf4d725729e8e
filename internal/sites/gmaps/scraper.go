package gmaps

import (
	"context"
	"fmt"
	"strings"

	"mapscout/internal/browser"
	"mapscout/internal/scraper"
)

func init() {
	scraper.Register(&GmapsScraper{})
}

// GmapsScraper searches Google Maps and extracts each listed business.
type GmapsScraper struct{}

func (s *GmapsScraper) Name() string { return "gmaps" }

// Scrape returns partial content alongside the error when the run is
// cancelled after some records were collected.
func (s *GmapsScraper) Scrape(ctx context.Context, query string, opts scraper.Options) (scraper.Content, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("query is required for --site gmaps")
	}
	cfg := opts.Config

	b, err := browser.New(browser.Config{
		ProxyURL: cfg.ProxyURL,
		Headless: cfg.Headless,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create browser: %w", err)
	}
	defer b.Close()

	page, err := b.OpenPage(ctx)
	if err != nil {
		return nil, err
	}
	defer page.Close()

	results, err := Collect(ctx, NewClient(page, cfg), query, cfg, opts.ProgressOrNop())
	if err != nil {
		if results.Len() == 0 {
			return nil, err
		}
		return NewResultsContent(query, SearchURL(query), results.Records()), err
	}
	return NewResultsContent(query, SearchURL(query), results.Records()), nil
}
