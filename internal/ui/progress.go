package ui

import (
	"io"
	"sync"

	"github.com/pterm/pterm"
)

// Progress draws the candidate visit loop as a pterm progress bar.
type Progress struct {
	mu  sync.Mutex
	w   io.Writer
	bar *pterm.ProgressbarPrinter
}

// NewProgress creates a Progress that draws to w.
func NewProgress(w io.Writer) *Progress {
	return &Progress{w: w}
}

func (p *Progress) Start(total int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if total <= 0 {
		return
	}
	bar, err := pterm.DefaultProgressbar.
		WithTotal(total).
		WithTitle("Visiting").
		WithWriter(p.w).
		Start()
	if err != nil {
		return
	}
	p.bar = bar
}

func (p *Progress) Step(label string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.bar == nil {
		return
	}
	p.bar.UpdateTitle("Visiting " + label)
	p.bar.Increment()
}

func (p *Progress) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.bar == nil {
		return
	}
	_, _ = p.bar.Stop()
	p.bar = nil
}
