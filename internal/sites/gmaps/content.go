package gmaps

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"html"
	"strings"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/JohannesKaufmann/html-to-markdown/plugin"

	"mapscout/internal/listing"
)

// ResultsContent holds the extracted businesses of one query and implements
// scraper.Content.
type ResultsContent struct {
	query     string
	sourceURL string
	records   []listing.Record
}

// NewResultsContent creates a ResultsContent.
func NewResultsContent(query, sourceURL string, records []listing.Record) *ResultsContent {
	return &ResultsContent{query: query, sourceURL: sourceURL, records: records}
}

func (c *ResultsContent) Records() []listing.Record {
	out := make([]listing.Record, len(c.records))
	copy(out, c.records)
	return out
}

func (c *ResultsContent) ToHTML() (string, error) {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("<h1>Google Maps: %s</h1>\n", html.EscapeString(c.query)))
	sb.WriteString(fmt.Sprintf("<p>%d businesses</p>\n", len(c.records)))
	sb.WriteString("<table>\n<thead>\n<tr>")
	for _, col := range listing.Columns {
		sb.WriteString("<th>" + html.EscapeString(col) + "</th>")
	}
	sb.WriteString("</tr>\n</thead>\n<tbody>\n")
	for _, r := range c.records {
		sb.WriteString("<tr>")
		for _, cell := range r.Row() {
			sb.WriteString("<td>" + html.EscapeString(cell) + "</td>")
		}
		sb.WriteString("</tr>\n")
	}
	sb.WriteString("</tbody>\n</table>\n")
	return sb.String(), nil
}

func (c *ResultsContent) ToMarkdown() (string, error) {
	page, err := c.ToHTML()
	if err != nil {
		return "", err
	}
	converter := md.NewConverter("", true, nil)
	converter.Use(plugin.Table())
	markdown, err := converter.ConvertString(page)
	if err != nil {
		return "", fmt.Errorf("failed to convert HTML to Markdown: %w", err)
	}
	return markdown, nil
}

func (c *ResultsContent) ToText() (string, error) {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Google Maps: %s\n\n", c.query))
	for i, r := range c.records {
		sb.WriteString(fmt.Sprintf("%d. %s\n", i+1, r.Name))
		if r.Rating != listing.NA {
			sb.WriteString(fmt.Sprintf("   Rating: %s (%d reviews)\n", r.Rating, r.Reviews))
		}
		sb.WriteString("   Phone: " + r.Phone + "\n")
		sb.WriteString("   Address: " + r.Address + "\n")
		sb.WriteString("   Website: " + r.Website + "\n")
		sb.WriteString("   " + r.SourceID + "\n\n")
	}
	return sb.String(), nil
}

func (c *ResultsContent) ToJSON() ([]byte, error) {
	type jsonResult struct {
		Query   string           `json:"query"`
		Source  string           `json:"source"`
		Count   int              `json:"count"`
		Results []listing.Record `json:"results"`
	}
	records := c.records
	if records == nil {
		records = []listing.Record{}
	}
	return json.MarshalIndent(jsonResult{
		Query:   c.query,
		Source:  c.sourceURL,
		Count:   len(records),
		Results: records,
	}, "", "  ")
}

func (c *ResultsContent) ToCSV() (string, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(listing.Columns); err != nil {
		return "", err
	}
	for _, r := range c.records {
		if err := w.Write(r.Row()); err != nil {
			return "", err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", err
	}
	return buf.String(), nil
}
