package render

import (
	"errors"
	"fmt"
)

// ErrSuperseded is returned by a cycle that a newer submit replaced. The
// page is left to the newer cycle.
var ErrSuperseded = errors.New("render cycle superseded by a newer submit")

// ErrNoCanvas means the page has no canvas for a slot the variant needs.
var ErrNoCanvas = errors.New("no canvas for slot")

// RenderError is a failure to draw a chart on one slot.
type RenderError struct {
	Slot string
	Err  error
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("rendering %s: %v", e.Slot, e.Err)
}

func (e *RenderError) Unwrap() error { return e.Err }
