// Package canvas provides the drawing surfaces charts are rendered onto.
//
// A Canvas stands in for a chart slot on a page: it can be shown or hidden
// and it creates chart instances from a chart.Config. Every Instance must be
// destroyed before a new one replaces it on the same canvas.
package canvas

import (
	"sync"

	"github.com/theirongolddev/fireplot/internal/chart"
)

// Canvas is a chart slot.
type Canvas interface {
	ID() string
	Show()
	Hide()
	Visible() bool
	Draw(cfg chart.Config) (Instance, error)
}

// Instance is a live chart bound to a canvas.
type Instance interface {
	Destroy() error
}

// ErrorDisplay shows the error text of the last failed cycle.
type ErrorDisplay interface {
	SetText(s string)
	Text() string
}

// TextDisplay is an ErrorDisplay holding the text in memory.
type TextDisplay struct {
	mu   sync.RWMutex
	text string
}

// SetText replaces the displayed text.
func (d *TextDisplay) SetText(s string) {
	d.mu.Lock()
	d.text = s
	d.mu.Unlock()
}

// Text returns the displayed text.
func (d *TextDisplay) Text() string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.text
}

// visibility is embedded by canvases to implement Show, Hide and Visible.
type visibility struct {
	mu     sync.RWMutex
	hidden bool
}

func (v *visibility) Show() {
	v.mu.Lock()
	v.hidden = false
	v.mu.Unlock()
}

func (v *visibility) Hide() {
	v.mu.Lock()
	v.hidden = true
	v.mu.Unlock()
}

func (v *visibility) Visible() bool {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return !v.hidden
}

// once guards an instance against double destruction.
type once struct {
	mu        sync.Mutex
	destroyed bool
}

// do runs fn the first time it is called and reports whether it ran.
func (o *once) do(fn func() error) (bool, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.destroyed {
		return false, nil
	}
	o.destroyed = true
	return true, fn()
}
