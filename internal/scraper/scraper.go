package scraper

import (
	"context"

	"mapscout/internal/config"
	"mapscout/internal/listing"
)

type Scraper interface {
	Name() string
	Scrape(ctx context.Context, query string, opts Options) (Content, error)
}

type Content interface {
	ToHTML() (string, error)
	ToText() (string, error)
	ToMarkdown() (string, error)
	ToJSON() ([]byte, error)
	ToCSV() (string, error)
	Records() []listing.Record
}

// Progress receives per-candidate updates during the visit loop.
type Progress interface {
	Start(total int)
	Step(label string)
	Stop()
}

type Options struct {
	Config   config.Config
	Progress Progress // nil means no progress output
}

type nopProgress struct{}

func (nopProgress) Start(int)   {}
func (nopProgress) Step(string) {}
func (nopProgress) Stop()       {}

// ProgressOrNop returns opts.Progress, or a no-op implementation when unset.
func (o Options) ProgressOrNop() Progress {
	if o.Progress == nil {
		return nopProgress{}
	}
	return o.Progress
}
