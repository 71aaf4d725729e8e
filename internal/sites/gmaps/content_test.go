package gmaps

import (
	"encoding/json"
	"strings"
	"testing"

	"mapscout/internal/listing"
)

func sampleContent() *ResultsContent {
	return NewResultsContent("bakery in Austin", SearchURL("bakery in Austin"), []listing.Record{
		{
			Name:     "Acme Bakery",
			Phone:    "+1 512-555-0100",
			Address:  "123 Main St, Austin, TX",
			Website:  "https://acme.example",
			Rating:   "4.6",
			Reviews:  1234,
			SourceID: "https://www.google.com/maps/place/acme",
		},
		{
			Name:     "Crumbs & Co",
			Phone:    listing.NA,
			Address:  listing.NA,
			Website:  listing.NA,
			Rating:   listing.NA,
			SourceID: "https://www.google.com/maps/place/crumbs",
		},
	})
}

func TestSearchURLEscapesQuery(t *testing.T) {
	got := SearchURL("pizza & pasta")
	if want := "https://www.google.com/maps/search/pizza+%26+pasta"; got != want {
		t.Fatalf("SearchURL = %q, want %q", got, want)
	}
}

func TestToCSV(t *testing.T) {
	out, err := sampleContent().ToCSV()
	if err != nil {
		t.Fatalf("ToCSV: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 3 {
		t.Fatalf("got %d lines:\n%s", len(lines), out)
	}
	if lines[0] != "Business Name,Phone Number,Full Address,Website,Rating,Total Reviews,Source Id" {
		t.Fatalf("header = %q", lines[0])
	}
	if !strings.HasPrefix(lines[1], `Acme Bakery,+1 512-555-0100,"123 Main St, Austin, TX",https://acme.example,4.6,1234,`) {
		t.Fatalf("row = %q", lines[1])
	}
	if !strings.HasPrefix(lines[2], "Crumbs & Co,N/A,N/A,N/A,N/A,0,") {
		t.Fatalf("row = %q", lines[2])
	}
}

func TestToHTMLEscapes(t *testing.T) {
	out, err := sampleContent().ToHTML()
	if err != nil {
		t.Fatalf("ToHTML: %v", err)
	}
	if !strings.Contains(out, "<td>Crumbs &amp; Co</td>") {
		t.Fatalf("name not escaped:\n%s", out)
	}
	if strings.Count(out, "<tr>") != 3 {
		t.Fatalf("expected header plus two rows:\n%s", out)
	}
}

func TestToMarkdownRendersTable(t *testing.T) {
	out, err := sampleContent().ToMarkdown()
	if err != nil {
		t.Fatalf("ToMarkdown: %v", err)
	}
	if !strings.Contains(out, "# Google Maps: bakery in Austin") {
		t.Fatalf("missing heading:\n%s", out)
	}
	if !strings.Contains(out, "| Business Name") || !strings.Contains(out, "---") || !strings.Contains(out, "Acme Bakery") {
		t.Fatalf("missing table:\n%s", out)
	}
}

func TestToJSON(t *testing.T) {
	b, err := sampleContent().ToJSON()
	if err != nil {
		t.Fatalf("ToJSON: %v", err)
	}
	var got struct {
		Query   string           `json:"query"`
		Count   int              `json:"count"`
		Results []listing.Record `json:"results"`
	}
	if err := json.Unmarshal(b, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got.Query != "bakery in Austin" || got.Count != 2 || got.Results[0].Reviews != 1234 {
		t.Fatalf("got %+v", got)
	}
}

func TestEmptyContentJSONHasEmptyResults(t *testing.T) {
	b, err := NewResultsContent("q", SearchURL("q"), nil).ToJSON()
	if err != nil {
		t.Fatalf("ToJSON: %v", err)
	}
	if !strings.Contains(string(b), `"results": []`) {
		t.Fatalf("got %s", b)
	}
}

func TestPageFileNameStable(t *testing.T) {
	a := PageFileName("https://www.google.com/maps/place/acme")
	if a != PageFileName("https://www.google.com/maps/place/acme") {
		t.Fatal("file name not deterministic")
	}
	if a == PageFileName("https://www.google.com/maps/place/other") || !strings.HasSuffix(a, ".html") || len(a) != 21 {
		t.Fatalf("unexpected file name %q", a)
	}
}
