package browser

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"mapscout/internal/dom"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
)

// ErrNotFound is returned when a selector does not appear before its timeout.
var ErrNotFound = errors.New("element not found")

// WaitCondition decides when a navigation counts as finished
type WaitCondition string

const (
	WaitLoad WaitCondition = "load" // load event
	WaitIdle WaitCondition = "idle" // load event, then network idle ignoring media
)

// Page is the page-automation capability the scrapers drive
type Page struct {
	page *rod.Page
}

// Navigate loads url and waits for cond, all within timeout
func (p *Page) Navigate(ctx context.Context, url string, cond WaitCondition, timeout time.Duration) error {
	pg := p.page.Context(ctx).Timeout(timeout)
	defer pg.CancelTimeout()

	if err := pg.Navigate(url); err != nil {
		return fmt.Errorf("failed to navigate: %w", err)
	}
	if err := pg.WaitLoad(); err != nil {
		return fmt.Errorf("failed to wait for page load: %w", err)
	}
	if cond == WaitIdle {
		wait := pg.WaitRequestIdle(
			500*time.Millisecond, nil, nil,
			[]proto.NetworkResourceType{proto.NetworkResourceTypeImage, proto.NetworkResourceTypeMedia},
		)
		wait()
	}
	return nil
}

// WaitForSelector blocks until selector matches or timeout elapses
func (p *Page) WaitForSelector(ctx context.Context, selector string, timeout time.Duration) error {
	pg := p.page.Context(ctx).Timeout(timeout)
	defer pg.CancelTimeout()

	if _, err := pg.Element(selector); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("%w: %s: %v", ErrNotFound, selector, err)
	}
	return nil
}

// Eval runs a JS function in the page and decodes its JSON result into out.
// out may be nil when the result is not needed.
func (p *Page) Eval(ctx context.Context, js string, out any, args ...any) error {
	res, err := p.page.Context(ctx).Eval(js, args...)
	if err != nil {
		return fmt.Errorf("failed to evaluate script: %w", err)
	}
	if out == nil {
		return nil
	}
	raw, err := res.Value.MarshalJSON()
	if err != nil {
		return fmt.Errorf("failed to read script result: %w", err)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("failed to decode script result: %w", err)
	}
	return nil
}

// queryAllJS maps every match to the fields dom.Node carries. innerText is
// used for text so hidden helper nodes don't leak into the values.
const queryAllJS = `(sel) => Array.from(document.querySelectorAll(sel)).map(el => ({
	tag: el.tagName.toLowerCase(),
	text: el.innerText || el.textContent || '',
	label: el.getAttribute('aria-label') || '',
	itemId: el.getAttribute('data-item-id') || '',
	href: el.tagName === 'A' ? (el.href || '') : '',
}))`

// QueryAll returns the element data of every match in document order
func (p *Page) QueryAll(ctx context.Context, selector string) ([]dom.Node, error) {
	var nodes []dom.Node
	if err := p.Eval(ctx, queryAllJS, &nodes, selector); err != nil {
		return nil, fmt.Errorf("failed to query %q: %w", selector, err)
	}
	return nodes, nil
}

// HTML returns the serialized document
func (p *Page) HTML(ctx context.Context) (string, error) {
	html, err := p.page.Context(ctx).HTML()
	if err != nil {
		return "", fmt.Errorf("failed to get page HTML: %w", err)
	}
	return html, nil
}

// URL returns the current location
func (p *Page) URL() string {
	info, err := p.page.Info()
	if err != nil {
		return ""
	}
	return info.URL
}

// Close closes the tab
func (p *Page) Close() error {
	return p.page.Close()
}
