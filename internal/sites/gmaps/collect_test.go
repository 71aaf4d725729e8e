package gmaps

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"testing"

	"mapscout/internal/config"
	"mapscout/internal/discovery"
	"mapscout/internal/listing"
)

type staticFeed struct{ hrefs []string }

func (f staticFeed) ScrollTo(context.Context, int) error       { return nil }
func (f staticFeed) ScrollHeight(context.Context) (int, error) { return 1000, nil }
func (f staticFeed) Anchors(context.Context) ([]string, error) { return f.hrefs, nil }

type fakeSession struct {
	feed      discovery.Container
	searchErr error
	pages     map[string]listing.Record
	openErr   map[string]error
	onExtract func(id string)

	opened []string
}

func (s *fakeSession) Search(context.Context, string) (discovery.Container, error) {
	if s.searchErr != nil {
		return nil, s.searchErr
	}
	return s.feed, nil
}

func (s *fakeSession) Open(_ context.Context, id string) error {
	s.opened = append(s.opened, id)
	return s.openErr[id]
}

func (s *fakeSession) Extract(_ context.Context, id string) (listing.Record, error) {
	if s.onExtract != nil {
		s.onExtract(id)
	}
	rec, ok := s.pages[id]
	if !ok {
		return listing.Record{}, errors.New("heading not found")
	}
	return rec, nil
}

type countingProgress struct {
	total, steps int
	stopped      bool
}

func (p *countingProgress) Start(n int) { p.total = n }
func (p *countingProgress) Step(string) { p.steps++ }
func (p *countingProgress) Stop()       { p.stopped = true }

func testConfig() config.Config {
	cfg := config.Default()
	cfg.SettleDelay = 0
	cfg.RestDelay = 0
	cfg.Discovery.Settle = 0
	cfg.Discovery.RetryCap = 1
	cfg.BatchSize = 2
	return cfg
}

func record(name, id string) listing.Record {
	return listing.Record{
		Name: name, Phone: listing.NA, Address: listing.NA, Website: listing.NA,
		Rating: listing.NA, SourceID: id,
	}
}

func place(i int) string { return fmt.Sprintf("https://www.google.com/maps/place/%d", i) }

func names(rs *listing.ResultSet) []string {
	var out []string
	for _, r := range rs.Records() {
		out = append(out, r.Name)
	}
	return out
}

func TestCollectSkipsFailuresAndPlaceholders(t *testing.T) {
	ids := []string{place(1), place(2), place(3), place(4), place(5)}
	s := &fakeSession{
		feed: staticFeed{hrefs: append(ids, place(1))},
		pages: map[string]listing.Record{
			ids[0]: record("Acme Bakery", ids[0]),
			ids[2]: record("Google Maps", ids[2]),
			ids[3]: record("Corner Cafe", ids[3]),
			ids[4]: record("Deli", ids[4]),
		},
		openErr: map[string]error{ids[4]: errors.New("navigation timeout")},
	}
	p := &countingProgress{}

	rs, err := Collect(context.Background(), s, "bakery", testConfig(), p)
	if err != nil {
		t.Fatalf("Collect: %v", err)
	}
	if want := []string{"Acme Bakery", "Corner Cafe"}; !reflect.DeepEqual(names(rs), want) {
		t.Fatalf("names = %v, want %v", names(rs), want)
	}
	if !reflect.DeepEqual(s.opened, ids) {
		t.Fatalf("opened = %v, want %v", s.opened, ids)
	}
	if p.total != 5 || p.steps != 5 || !p.stopped {
		t.Fatalf("progress = %+v", p)
	}
}

func TestCollectRespectsMaxResults(t *testing.T) {
	s := &fakeSession{
		feed: staticFeed{hrefs: []string{place(1), place(2), place(3)}},
		pages: map[string]listing.Record{
			place(1): record("One", place(1)),
			place(2): record("Two", place(2)),
			place(3): record("Three", place(3)),
		},
	}
	cfg := testConfig()
	cfg.MaxResults = 2

	rs, err := Collect(context.Background(), s, "q", cfg, &countingProgress{})
	if err != nil {
		t.Fatalf("Collect: %v", err)
	}
	if want := []string{"One", "Two"}; !reflect.DeepEqual(names(rs), want) {
		t.Fatalf("names = %v, want %v", names(rs), want)
	}
}

func TestCollectZeroMaxVisitsNothing(t *testing.T) {
	s := &fakeSession{feed: staticFeed{hrefs: []string{place(1)}}}
	cfg := testConfig()
	cfg.MaxResults = 0

	rs, err := Collect(context.Background(), s, "q", cfg, &countingProgress{})
	if err != nil {
		t.Fatalf("Collect: %v", err)
	}
	if rs.Len() != 0 || len(s.opened) != 0 {
		t.Fatalf("got %d records, %d visits; want none", rs.Len(), len(s.opened))
	}
}

func TestCollectContainerNotFound(t *testing.T) {
	s := &fakeSession{searchErr: fmt.Errorf("%w: timeout", discovery.ErrContainerNotFound)}

	rs, err := Collect(context.Background(), s, "q", testConfig(), &countingProgress{})
	if !errors.Is(err, discovery.ErrContainerNotFound) {
		t.Fatalf("err = %v, want ErrContainerNotFound", err)
	}
	if rs.Len() != 0 || len(s.opened) != 0 {
		t.Fatalf("expected no visits, got %v", s.opened)
	}
}

func TestCollectCancelKeepsPartialResults(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	s := &fakeSession{
		feed: staticFeed{hrefs: []string{place(1), place(2), place(3)}},
		pages: map[string]listing.Record{
			place(1): record("One", place(1)),
			place(2): record("Two", place(2)),
			place(3): record("Three", place(3)),
		},
		onExtract: func(id string) {
			if id == place(2) {
				cancel()
			}
		},
	}

	rs, err := Collect(ctx, s, "q", testConfig(), &countingProgress{})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
	if want := []string{"One", "Two"}; !reflect.DeepEqual(names(rs), want) {
		t.Fatalf("names = %v, want %v", names(rs), want)
	}
	if len(s.opened) != 2 {
		t.Fatalf("opened %v after cancel", s.opened)
	}
}
