package worklog

import (
	"fmt"

	"github.com/nao1215/worklog/domain/model"
)

// ComputeWindow returns the rows to render for a scroll offset over a
// result of length rows with a fixed row height:
//
//	start = clamp(offset/rowHeight - buffer, 0, length)
//	end   = clamp(start + viewportRows + 2*buffer, 0, length)
//
// The spacers reserve the height of the rows above and below the window.
func ComputeWindow(length, offset, rowHeight, viewportRows, buffer int) model.ViewWindow {
	if length < 0 {
		length = 0
	}
	if rowHeight <= 0 {
		rowHeight = 1
	}
	start := clamp(offset/rowHeight-buffer, 0, length)
	end := clamp(start+viewportRows+2*buffer, 0, length)
	return model.ViewWindow{
		Start:        start,
		End:          end,
		Length:       length,
		TopSpacer:    start * rowHeight,
		BottomSpacer: (length - end) * rowHeight,
	}
}

func clamp(v, lo, hi int) int {
	return max(lo, min(v, hi))
}

// PagerOption configures a Pager.
type PagerOption func(*Pager)

// WithBuffer sets the number of extra rows rendered past each viewport edge.
func WithBuffer(rows int) PagerOption {
	return func(p *Pager) {
		if rows >= 0 {
			p.buffer = rows
		}
	}
}

// WithRecomputeThreshold sets how many rows start must move before the
// window is recomputed.
func WithRecomputeThreshold(rows int) PagerOption {
	return func(p *Pager) {
		if rows >= 0 {
			p.threshold = rows
		}
	}
}

// Pager tracks the rendered window of a virtualized grid and skips
// recomputation for small scroll movements. A Pager is not safe for
// concurrent use.
type Pager struct {
	rowHeight    int
	viewportRows int
	buffer       int
	threshold    int

	last  model.ViewWindow
	valid bool
}

// NewPager creates a pager for rows of rowHeight pixels and a viewport of
// viewportRows rows.
func NewPager(rowHeight, viewportRows int, opts ...PagerOption) (*Pager, error) {
	if rowHeight <= 0 {
		return nil, fmt.Errorf("%w: row height must be positive, got %d", ErrInvalidConfig, rowHeight)
	}
	if viewportRows <= 0 {
		return nil, fmt.Errorf("%w: viewport rows must be positive, got %d", ErrInvalidConfig, viewportRows)
	}
	p := &Pager{
		rowHeight:    rowHeight,
		viewportRows: viewportRows,
		buffer:       DefaultBuffer,
		threshold:    DefaultRecomputeThreshold,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// Update returns the window for a scroll offset. The window is recomputed
// when none exists yet, when length differs from the last window, or when
// start would move by more than the threshold; otherwise the last window
// is returned and changed is false.
func (p *Pager) Update(length, offset int) (window model.ViewWindow, changed bool) {
	next := ComputeWindow(length, offset, p.rowHeight, p.viewportRows, p.buffer)
	if p.valid && next.Length == p.last.Length && abs(next.Start-p.last.Start) <= p.threshold {
		return p.last, false
	}
	p.last = next
	p.valid = true
	return next, true
}

// Window returns the last computed window.
func (p *Pager) Window() model.ViewWindow {
	return p.last
}

// Reset forgets the last window so the next Update recomputes.
func (p *Pager) Reset() {
	p.valid = false
	p.last = model.ViewWindow{}
}

// RowHeight returns the row height in pixels.
func (p *Pager) RowHeight() int {
	return p.rowHeight
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
