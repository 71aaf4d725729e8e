// Package dom holds the element data the extraction heuristics read, and a
// static HTML document that serves it without a browser.
package dom

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Node is the serializable view of one element.
type Node struct {
	Tag    string `json:"tag"`    // lower-case tag name
	Text   string `json:"text"`   // visible text
	Label  string `json:"label"`  // aria-label
	ItemID string `json:"itemId"` // data-item-id
	Href   string `json:"href"`
}

// IsLink reports whether the node is an anchor with a target.
func (n Node) IsLink() bool {
	return n.Tag == "a" && n.Href != ""
}

// Document is a parsed HTML page queried with CSS selectors.
type Document struct {
	doc *goquery.Document
}

// Parse reads an HTML page.
func Parse(r io.Reader) (*Document, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}
	return &Document{doc: doc}, nil
}

// ParseString parses an HTML string.
func ParseString(html string) (*Document, error) {
	return Parse(strings.NewReader(html))
}

// QueryAll returns every element matching selector in document order.
func (d *Document) QueryAll(ctx context.Context, selector string) ([]Node, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var nodes []Node
	d.doc.Find(selector).Each(func(i int, s *goquery.Selection) {
		nodes = append(nodes, nodeOf(s))
	})
	return nodes, nil
}

func nodeOf(s *goquery.Selection) Node {
	label, _ := s.Attr("aria-label")
	itemID, _ := s.Attr("data-item-id")
	href, _ := s.Attr("href")
	return Node{
		Tag:    strings.ToLower(goquery.NodeName(s)),
		Text:   s.Text(),
		Label:  label,
		ItemID: itemID,
		Href:   href,
	}
}
