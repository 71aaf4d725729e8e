package scraper

import (
	"context"
	"testing"
)

type stubScraper struct{ name string }

func (s stubScraper) Name() string { return s.name }

func (s stubScraper) Scrape(context.Context, string, Options) (Content, error) { return nil, nil }

func TestRegistryCaseInsensitive(t *testing.T) {
	Register(stubScraper{name: "Stub.Site"})
	if _, ok := Get(" stub.site "); !ok {
		t.Fatalf("registered scraper not found")
	}
	if _, ok := Get("missing"); ok {
		t.Fatalf("unexpected scraper for unknown name")
	}

	found := false
	for _, n := range Names() {
		if n == "stub.site" {
			found = true
		}
	}
	if !found {
		t.Fatalf("Names() = %v, missing stub.site", Names())
	}
}

func TestProgressOrNop(t *testing.T) {
	p := Options{}.ProgressOrNop()
	p.Start(3)
	p.Step("x")
	p.Stop()
}
