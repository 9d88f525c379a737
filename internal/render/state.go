package render

import (
	"fmt"
	"sort"
	"sync"

	"github.com/theirongolddev/fireplot/internal/canvas"
	"github.com/theirongolddev/fireplot/internal/projection"
)

// Canvas and display ids used by the page.
const (
	SlotFinancial = "financialChart"
	SlotPrincipal = "principalChart"
	SlotTakeHome  = "takeHomeChart"

	ErrorDisplayID = "errorMessage"
)

// SlotsFor returns the canvases a variant draws into, in draw order.
func SlotsFor(v projection.Variant) []string {
	if v == projection.Dual {
		return []string{SlotPrincipal, SlotTakeHome}
	}
	return []string{SlotFinancial}
}

// allSlots lists every slot of every variant.
var allSlots = []string{SlotFinancial, SlotPrincipal, SlotTakeHome}

// RenderState tracks the live chart instance of each slot. It is owned by
// the page controller and handed to the Renderer.
type RenderState struct {
	mu        sync.Mutex
	instances map[string]canvas.Instance
}

// NewRenderState returns an empty state.
func NewRenderState() *RenderState {
	return &RenderState{instances: make(map[string]canvas.Instance)}
}

// Live returns the live instance of slot, if any.
func (s *RenderState) Live(slot string) (canvas.Instance, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	inst, ok := s.instances[slot]
	return inst, ok
}

// LiveSlots returns the slots holding a live instance, sorted.
func (s *RenderState) LiveSlots() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	slots := make([]string, 0, len(s.instances))
	for slot := range s.instances {
		slots = append(slots, slot)
	}
	sort.Strings(slots)
	return slots
}

// LiveCount returns the number of live instances.
func (s *RenderState) LiveCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.instances)
}

func (s *RenderState) set(slot string, inst canvas.Instance) {
	s.mu.Lock()
	s.instances[slot] = inst
	s.mu.Unlock()
}

// take removes and returns the live instance of slot.
func (s *RenderState) take(slot string) canvas.Instance {
	s.mu.Lock()
	defer s.mu.Unlock()
	inst := s.instances[slot]
	delete(s.instances, slot)
	return inst
}

// Page is the set of canvases and the error display a Renderer draws on.
type Page struct {
	Canvases map[string]canvas.Canvas
	Errors   canvas.ErrorDisplay
}

// NewPage builds a page from canvases keyed by their IDs.
func NewPage(errs canvas.ErrorDisplay, canvases ...canvas.Canvas) *Page {
	p := &Page{Canvases: make(map[string]canvas.Canvas, len(canvases)), Errors: errs}
	for _, c := range canvases {
		p.Canvases[c.ID()] = c
	}
	return p
}

// Canvas returns the canvas registered for slot.
func (p *Page) Canvas(slot string) (canvas.Canvas, error) {
	if c, ok := p.Canvases[slot]; ok && c != nil {
		return c, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrNoCanvas, slot)
}

func (p *Page) setError(s string) {
	if p.Errors != nil {
		p.Errors.SetText(s)
	}
}

func (p *Page) show(slots []string) {
	for _, slot := range slots {
		if c, ok := p.Canvases[slot]; ok && c != nil {
			c.Show()
		}
	}
}

func (p *Page) hide(slots []string) {
	for _, slot := range slots {
		if c, ok := p.Canvases[slot]; ok && c != nil {
			c.Hide()
		}
	}
}
