// Package discovery scrolls a lazily loaded results feed until it has rendered
// enough candidates or stops growing, then harvests the candidate links.
package discovery

import (
	"context"
	"errors"
	"fmt"
	"time"

	"mapscout/internal/logger"
)

// ErrContainerNotFound means the results feed never rendered. Runs cannot
// continue without it.
var ErrContainerNotFound = errors.New("results container not found")

// Container is the scrollable results feed.
type Container interface {
	// ScrollTo sets the feed's scroll offset.
	ScrollTo(ctx context.Context, offset int) error
	// ScrollHeight returns the feed's current scrollable extent.
	ScrollHeight(ctx context.Context) (int, error)
	// Anchors returns the targets of the rendered candidate links in document order.
	Anchors(ctx context.Context) ([]string, error)
}

// Config holds the convergence parameters of the scroll loop.
type Config struct {
	Step          int           `yaml:"step"`           // scroll advance per iteration
	Settle        time.Duration `yaml:"settle"`         // wait after each scroll
	RetryCap      int           `yaml:"retry_cap"`      // stalled iterations tolerated before giving up
	WiggleAt      int           `yaml:"wiggle_at"`      // stall count that triggers one wiggle, 0 disables
	WiggleBack    int           `yaml:"wiggle_back"`    // wiggle distance
	MaxIterations int           `yaml:"max_iterations"` // hard loop cap
}

// DefaultConfig returns the tuned defaults.
func DefaultConfig() Config {
	return Config{
		Step:          800,
		Settle:        1500 * time.Millisecond,
		RetryCap:      5,
		WiggleAt:      3,
		WiggleBack:    200,
		MaxIterations: 300,
	}
}

// Engine runs the scroll-and-harvest loop.
type Engine struct {
	cfg Config
	log *logger.Logger
}

// New creates an Engine. Non-positive Step or MaxIterations fall back to defaults.
func New(cfg Config) *Engine {
	def := DefaultConfig()
	if cfg.Step <= 0 {
		cfg.Step = def.Step
	}
	if cfg.MaxIterations <= 0 {
		cfg.MaxIterations = def.MaxIterations
	}
	return &Engine{cfg: cfg, log: logger.Named("discovery")}
}

// Discover scrolls c and returns at most maxCount unique candidate links in
// first-seen order.
func (e *Engine) Discover(ctx context.Context, c Container, maxCount int) ([]string, error) {
	if maxCount <= 0 {
		return []string{}, nil
	}

	e.scroll(ctx, c, maxCount)

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	anchors, err := c.Anchors(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to collect anchors: %w", err)
	}
	ids := Dedupe(anchors, maxCount)
	e.log.Info().Int("rendered", len(anchors)).Int("candidates", len(ids)).Msg("discovery finished")
	return ids, nil
}

// scroll advances the feed until a termination condition holds. Errors only
// stop the loop; whatever has rendered so far is still harvested.
func (e *Engine) scroll(ctx context.Context, c Container, maxCount int) {
	height, err := c.ScrollHeight(ctx)
	if err != nil {
		e.log.Warn().Err(err).Msg("failed to read feed height")
		return
	}

	pos, stalls := 0, 0
	for iter := 0; iter < e.cfg.MaxIterations; iter++ {
		anchors, err := c.Anchors(ctx)
		if err != nil {
			e.log.Warn().Err(err).Int("iteration", iter).Msg("failed to count anchors")
			return
		}
		if n := len(Dedupe(anchors, -1)); n >= maxCount {
			e.log.Debug().Int("anchors", n).Int("iteration", iter).Msg("target reached")
			return
		}

		pos += e.cfg.Step
		if err := c.ScrollTo(ctx, pos); err != nil {
			e.log.Warn().Err(err).Int("offset", pos).Msg("failed to scroll feed")
			return
		}
		if err := sleep(ctx, e.cfg.Settle); err != nil {
			return
		}

		h, err := c.ScrollHeight(ctx)
		if err != nil {
			e.log.Warn().Err(err).Msg("failed to read feed height")
			return
		}
		if h > height {
			height, stalls = h, 0
			continue
		}

		stalls++
		if stalls > e.cfg.RetryCap {
			e.log.Debug().Int("stalls", stalls).Int("iteration", iter).Msg("feed exhausted")
			return
		}
		if stalls == e.cfg.WiggleAt {
			e.wiggle(ctx, c, pos)
		}
	}
	e.log.Warn().Int("iterations", e.cfg.MaxIterations).Msg("scroll iteration cap reached")
}

// wiggle nudges the feed backwards and forwards again to retrigger lazy loading.
// The tracked position is left untouched.
func (e *Engine) wiggle(ctx context.Context, c Container, pos int) {
	back := pos - e.cfg.WiggleBack
	if back < 0 {
		back = 0
	}
	e.log.Debug().Int("offset", pos).Msg("wiggling stalled feed")
	if err := c.ScrollTo(ctx, back); err != nil {
		return
	}
	if err := sleep(ctx, e.cfg.Settle); err != nil {
		return
	}
	_ = c.ScrollTo(ctx, pos)
}

// Dedupe drops empty and repeated links, keeping first-seen order, and
// truncates to limit when limit >= 0.
func Dedupe(links []string, limit int) []string {
	seen := make(map[string]struct{}, len(links))
	out := make([]string, 0, len(links))
	for _, l := range links {
		if limit >= 0 && len(out) >= limit {
			break
		}
		if l == "" {
			continue
		}
		if _, ok := seen[l]; ok {
			continue
		}
		seen[l] = struct{}{}
		out = append(out, l)
	}
	return out
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
