// Package extract recovers a business record from a rendered detail page
// using a prioritized chain of heuristics.
package extract

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"mapscout/internal/dom"
	"mapscout/internal/listing"
	"mapscout/internal/logger"
)

// ErrNoName means the page has no recoverable business name.
var ErrNoName = errors.New("page has no business name")

// Document is a rendered page that can be queried with CSS selectors.
type Document interface {
	QueryAll(ctx context.Context, selector string) ([]dom.Node, error)
}

// Selectors locates the page regions the heuristics read.
type Selectors struct {
	Heading  string `yaml:"heading"`
	Rating   string `yaml:"rating"`
	Reviews  string `yaml:"reviews"`
	Contacts string `yaml:"contacts"`
	Website  string `yaml:"website"` // page-wide fallback for the website link
}

// DefaultSelectors returns selectors for the Google Maps place page.
func DefaultSelectors() Selectors {
	return Selectors{
		Heading:  "h1",
		Rating:   `[role="main"] [aria-label*="stars"]`,
		Reviews:  `[role="main"] [aria-label*="reviews"]`,
		Contacts: `[role="main"] button, [role="main"] a, [role="main"] [data-item-id]`,
		Website:  `a[data-item-id="authority"]`,
	}
}

var (
	ratingRe  = regexp.MustCompile(`^\d+(?:[.,]\d+)?`)
	reviewsRe = regexp.MustCompile(`\d[\d,]*`)
)

// Engine applies the heuristic chain.
type Engine struct {
	sel   Selectors
	rules []FieldRules
	log   *logger.Logger
}

// New creates an Engine with the default rule table.
func New(sel Selectors) *Engine {
	return &Engine{sel: sel, rules: DefaultRules(), log: logger.Named("extract")}
}

// Extract reads one detail page. Every field except the name is best-effort
// and falls back to its default.
func (e *Engine) Extract(ctx context.Context, doc Document, sourceID string) (listing.Record, error) {
	name, err := e.name(ctx, doc)
	if err != nil {
		return listing.Record{}, err
	}

	rec := listing.Record{
		Name:     name,
		Phone:    listing.NA,
		Address:  listing.NA,
		Website:  listing.NA,
		Rating:   listing.NA,
		SourceID: sourceID,
	}

	if label, ok := e.firstLabel(ctx, doc, e.sel.Rating); ok {
		if r := ParseRating(label); r != "" {
			rec.Rating = r
		}
	}
	if label, ok := e.firstLabel(ctx, doc, e.sel.Reviews); ok {
		rec.Reviews = ParseReviews(label)
	}

	contacts := e.contacts(ctx, doc)
	if v, ok := contacts[FieldAddress]; ok {
		rec.Address = v
	}
	if v, ok := contacts[FieldPhone]; ok {
		rec.Phone = v
	}
	if v, ok := contacts[FieldWebsite]; ok {
		rec.Website = v
	} else if v, ok := e.websiteFallback(ctx, doc); ok {
		rec.Website = v
	}

	return rec, nil
}

func (e *Engine) name(ctx context.Context, doc Document) (string, error) {
	nodes, err := doc.QueryAll(ctx, e.sel.Heading)
	if err != nil {
		return "", fmt.Errorf("failed to read heading: %w", err)
	}
	if len(nodes) == 0 {
		return "", ErrNoName
	}
	name := Normalize(nodes[0].Text)
	if name == "" {
		return "", ErrNoName
	}
	return name, nil
}

func (e *Engine) firstLabel(ctx context.Context, doc Document, selector string) (string, bool) {
	nodes, err := doc.QueryAll(ctx, selector)
	if err != nil {
		e.log.Debug().Err(err).Str("selector", selector).Msg("query failed")
		return "", false
	}
	for _, n := range nodes {
		if label := Normalize(n.Label); label != "" {
			return label, true
		}
	}
	return "", false
}

// contacts scans the interactive elements of the main region. The last valid
// match in document order wins for each field.
func (e *Engine) contacts(ctx context.Context, doc Document) map[Field]string {
	found := map[Field]string{}
	nodes, err := doc.QueryAll(ctx, e.sel.Contacts)
	if err != nil {
		e.log.Debug().Err(err).Msg("contact scan failed")
		return found
	}

	for _, n := range nodes {
		content := Normalize(n.Label)
		if content == "" {
			content = Normalize(n.Text)
		}
		fr, ok := classify(e.rules, n, content)
		if !ok {
			continue
		}
		cleaned := stripPrefixes(content, fr.Prefixes)
		if !fr.Accept(cleaned) {
			continue
		}
		if v := fr.Value(n, cleaned); v != "" {
			found[fr.Field] = v
		}
	}
	return found
}

func (e *Engine) websiteFallback(ctx context.Context, doc Document) (string, bool) {
	nodes, err := doc.QueryAll(ctx, e.sel.Website)
	if err != nil {
		return "", false
	}
	for _, n := range nodes {
		if n.Href != "" {
			return n.Href, true
		}
	}
	return "", false
}

// Normalize collapses whitespace runs to single spaces and trims.
func Normalize(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// ParseRating returns the leading numeric token of a label like "4.5 stars",
// or "" when there is none.
func ParseRating(label string) string {
	return ratingRe.FindString(strings.TrimSpace(label))
}

// ParseReviews returns the first digit run of a label like "1,234 reviews"
// with thousands separators removed, or 0.
func ParseReviews(label string) int {
	m := reviewsRe.FindString(label)
	if m == "" {
		return 0
	}
	n, err := strconv.Atoi(strings.ReplaceAll(m, ",", ""))
	if err != nil || n < 0 {
		return 0
	}
	return n
}
