package gmaps

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"net/url"
	"os"
	"path/filepath"

	"mapscout/internal/browser"
	"mapscout/internal/config"
	"mapscout/internal/discovery"
	"mapscout/internal/extract"
	"mapscout/internal/listing"
	"mapscout/internal/logger"
)

const (
	searchBaseURL = "https://www.google.com/maps/search/"

	feedSelector   = `div[role="feed"]`
	anchorSelector = `a[href*="/maps/place/"]`
)

// SearchURL builds the results URL for query.
func SearchURL(query string) string {
	return searchBaseURL + url.QueryEscape(query)
}

// Client drives one browser tab through a search and its candidate pages.
type Client struct {
	page    *browser.Page
	cfg     config.Config
	extract *extract.Engine
	log     *logger.Logger
}

// NewClient creates a Client on page.
func NewClient(page *browser.Page, cfg config.Config) *Client {
	return &Client{
		page:    page,
		cfg:     cfg,
		extract: extract.New(cfg.Selectors),
		log:     logger.Named("gmaps"),
	}
}

// Search opens the results page for query and returns its feed. A feed that
// never renders yields discovery.ErrContainerNotFound.
func (c *Client) Search(ctx context.Context, query string) (discovery.Container, error) {
	target := SearchURL(query)
	c.log.Info().Str("url", target).Msg("opening search")

	if err := c.page.Navigate(ctx, target, browser.WaitLoad, c.cfg.NavTimeout); err != nil {
		return nil, fmt.Errorf("failed to open search page: %w", err)
	}

	var dismissed bool
	if err := c.page.Eval(ctx, consentJS, &dismissed); err == nil && dismissed {
		c.log.Debug().Msg("consent dialog dismissed")
	}

	if err := c.page.WaitForSelector(ctx, feedSelector, c.cfg.ContainerTimeout); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("%w: %v", discovery.ErrContainerNotFound, err)
	}
	return &feed{page: c.page, selector: feedSelector, anchor: anchorSelector}, nil
}

// Open navigates to a candidate page.
func (c *Client) Open(ctx context.Context, id string) error {
	return c.page.Navigate(ctx, id, browser.WaitCondition(c.cfg.NavWait), c.cfg.NavTimeout)
}

// Extract waits for the candidate's heading and reads its record.
func (c *Client) Extract(ctx context.Context, id string) (listing.Record, error) {
	if err := c.page.WaitForSelector(ctx, c.cfg.Selectors.Heading, c.cfg.HeadingTimeout); err != nil {
		return listing.Record{}, err
	}
	if c.cfg.SaveHTMLDir != "" {
		if err := c.saveHTML(ctx, id); err != nil {
			c.log.Warn().Err(err).Str("id", id).Msg("failed to save page HTML")
		}
	}
	return c.extract.Extract(ctx, c.page, id)
}

func (c *Client) saveHTML(ctx context.Context, id string) error {
	html, err := c.page.HTML(ctx)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(c.cfg.SaveHTMLDir, 0o755); err != nil {
		return fmt.Errorf("failed to create %s: %w", c.cfg.SaveHTMLDir, err)
	}
	return os.WriteFile(filepath.Join(c.cfg.SaveHTMLDir, PageFileName(id)), []byte(html), 0o644)
}

// PageFileName is the file a candidate's saved HTML is written to.
func PageFileName(id string) string {
	sum := sha1.Sum([]byte(id))
	return hex.EncodeToString(sum[:])[:16] + ".html"
}

// feed is the scrollable results list of the search page.
type feed struct {
	page     *browser.Page
	selector string
	anchor   string
}

func (f *feed) ScrollTo(ctx context.Context, offset int) error {
	var ok bool
	if err := f.page.Eval(ctx, `(sel, y) => {
		const el = document.querySelector(sel);
		if (!el) return false;
		el.scrollTop = y;
		return true;
	}`, &ok, f.selector, offset); err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("feed %s detached", f.selector)
	}
	return nil
}

func (f *feed) ScrollHeight(ctx context.Context) (int, error) {
	var h int
	if err := f.page.Eval(ctx, `(sel) => {
		const el = document.querySelector(sel);
		return el ? el.scrollHeight : -1;
	}`, &h, f.selector); err != nil {
		return 0, err
	}
	if h < 0 {
		return 0, fmt.Errorf("feed %s detached", f.selector)
	}
	return h, nil
}

func (f *feed) Anchors(ctx context.Context) ([]string, error) {
	var hrefs []string
	if err := f.page.Eval(ctx, `(sel, a) => {
		const el = document.querySelector(sel);
		if (!el) return [];
		return Array.from(el.querySelectorAll(a)).map(x => x.href).filter(Boolean);
	}`, &hrefs, f.selector, f.anchor); err != nil {
		return nil, err
	}
	return hrefs, nil
}

const consentJS = `() => {
	const selectors = [
		'button[aria-label="Accept all"]',
		'button[aria-label="I agree"]',
		'button[aria-label="Alles akzeptieren"]',
		'form[action*="consent"] button',
	];
	for (const sel of selectors) {
		const btn = document.querySelector(sel);
		if (btn) {
			btn.click();
			return true;
		}
	}
	return false;
}`
