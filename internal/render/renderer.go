// Package render runs the submit cycle of the calculator page: serialize the
// form, fetch the projection, validate it and redraw the charts, or show the
// failure in the page's error display.
package render

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/theirongolddev/fireplot/internal/chart"
	"github.com/theirongolddev/fireplot/internal/form"
	"github.com/theirongolddev/fireplot/internal/projection"
)

// Fetcher retrieves the raw projection for an encoded query string.
type Fetcher interface {
	Fetch(ctx context.Context, query string) (*projection.Response, error)
}

// Phase is the renderer's position in the submit cycle.
type Phase int

// Cycle phases.
const (
	Idle Phase = iota
	InFlight
	Rendered
	ErrorShown
)

func (p Phase) String() string {
	switch p {
	case InFlight:
		return "in-flight"
	case Rendered:
		return "rendered"
	case ErrorShown:
		return "error"
	default:
		return "idle"
	}
}

// ErrorPrefix starts every message shown in the error display.
const ErrorPrefix = "Error: "

// Renderer handles form submits for one page.
type Renderer struct {
	fetcher Fetcher
	page    *Page
	state   *RenderState
	log     *zap.Logger

	mu      sync.Mutex
	variant projection.Variant
	gen     uint64
	cancel  context.CancelFunc
	phase   Phase
	last    *projection.Projection
	lastErr error

	// drawMu serializes page mutation so destroy and create never interleave.
	drawMu sync.Mutex
}

// New returns a renderer drawing on page. A nil state or logger gets a fresh
// state and a no-op logger.
func New(fetcher Fetcher, page *Page, state *RenderState, variant projection.Variant, log *zap.Logger) *Renderer {
	if state == nil {
		state = NewRenderState()
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Renderer{
		fetcher: fetcher,
		page:    page,
		state:   state,
		log:     log,
		variant: variant,
	}
}

// State returns the instance registry the renderer draws into.
func (r *Renderer) State() *RenderState { return r.state }

// Phase returns the current cycle phase.
func (r *Renderer) Phase() Phase {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.phase
}

// Variant returns the variant used by the next submit.
func (r *Renderer) Variant() projection.Variant {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.variant
}

// SetVariant changes the variant used by the next submit.
func (r *Renderer) SetVariant(v projection.Variant) {
	r.mu.Lock()
	r.variant = v
	r.mu.Unlock()
}

// Last returns the projection of the last successful cycle.
func (r *Renderer) Last() *projection.Projection {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.last
}

// LastError returns the error of the last completed cycle, or nil.
func (r *Renderer) LastError() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.lastErr
}

// Init performs the synthetic submit issued when the page loads.
func (r *Renderer) Init(ctx context.Context, in form.Input) error {
	r.log.Debug("initial submit")
	return r.HandleSubmit(ctx, in)
}

// HandleSubmit runs one submit cycle with the current form values. On failure
// the error is shown on the page and also returned. A cycle replaced by a
// newer submit returns ErrSuperseded and leaves the page alone.
func (r *Renderer) HandleSubmit(ctx context.Context, in form.Input) error {
	ctx, gen, variant := r.begin(ctx)
	defer r.release(gen)

	log := r.log.With(
		zap.String("cycle", uuid.NewString()),
		zap.Stringer("variant", variant),
	)
	query := in.Encode()
	start := time.Now()
	log.Debug("submit", zap.String("query", query))

	if !r.prepare(gen, variant) {
		return ErrSuperseded
	}

	resp, fetchErr := r.fetcher.Fetch(ctx, query)

	r.drawMu.Lock()
	defer r.drawMu.Unlock()
	if !r.current(gen) {
		log.Debug("cycle superseded")
		return ErrSuperseded
	}

	err := fetchErr
	var p *projection.Projection
	if err == nil {
		p, err = projection.Validate(resp, variant)
	}
	if err == nil {
		err = r.draw(p, variant, startAge(in), log)
	}
	if err != nil {
		log.Error("render cycle failed", zap.Error(err), zap.Duration("elapsed", time.Since(start)))
		r.fail(err, variant, log)
		r.finish(gen, ErrorShown, nil, err)
		return err
	}

	log.Debug("render cycle complete", zap.Int("points", p.Len()), zap.Duration("elapsed", time.Since(start)))
	r.finish(gen, Rendered, p, nil)
	return nil
}

// begin starts a new generation and cancels the one in flight.
func (r *Renderer) begin(parent context.Context) (context.Context, uint64, projection.Variant) {
	ctx, cancel := context.WithCancel(parent)

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.cancel != nil {
		r.cancel()
	}
	r.gen++
	r.cancel = cancel
	r.phase = InFlight
	return ctx, r.gen, r.variant
}

// release cancels the cycle's context once it is done.
func (r *Renderer) release(gen uint64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.gen == gen && r.cancel != nil {
		r.cancel()
		r.cancel = nil
	}
}

func (r *Renderer) current(gen uint64) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.gen == gen
}

func (r *Renderer) finish(gen uint64, phase Phase, p *projection.Projection, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.gen != gen {
		return
	}
	r.phase = phase
	r.lastErr = err
	if p != nil {
		r.last = p
	}
}

// prepare clears the error text and shows the variant's canvases. Slots of
// the other variant are emptied and hidden.
func (r *Renderer) prepare(gen uint64, variant projection.Variant) bool {
	r.drawMu.Lock()
	defer r.drawMu.Unlock()
	if !r.current(gen) {
		return false
	}

	active := SlotsFor(variant)
	r.page.setError("")
	for _, slot := range allSlots {
		if contains(active, slot) {
			continue
		}
		r.destroy(slot, r.log)
		r.page.hide([]string{slot})
	}
	r.page.show(active)
	return true
}

// draw replaces the chart on each of the variant's slots.
func (r *Renderer) draw(p *projection.Projection, variant projection.Variant, age float64, log *zap.Logger) error {
	configs := map[string]chart.Config{}
	if variant == projection.Dual {
		configs[SlotPrincipal] = chart.PrincipalChart(p, age)
		configs[SlotTakeHome] = chart.TakeHomeChart(p)
	} else {
		configs[SlotFinancial] = chart.PrincipalChart(p, age)
	}

	for _, slot := range SlotsFor(variant) {
		cv, err := r.page.Canvas(slot)
		if err != nil {
			return &RenderError{Slot: slot, Err: err}
		}
		r.destroy(slot, log)
		inst, err := cv.Draw(configs[slot])
		if err != nil {
			return &RenderError{Slot: slot, Err: err}
		}
		r.state.set(slot, inst)
	}
	return nil
}

// fail shows err on the page, hides the variant's canvases and destroys
// every live instance.
func (r *Renderer) fail(err error, variant projection.Variant, log *zap.Logger) {
	r.page.setError(ErrorPrefix + Message(err))
	r.page.hide(SlotsFor(variant))
	for _, slot := range allSlots {
		r.destroy(slot, log)
	}
}

func (r *Renderer) destroy(slot string, log *zap.Logger) {
	inst := r.state.take(slot)
	if inst == nil {
		return
	}
	if err := inst.Destroy(); err != nil {
		log.Warn("destroying chart", zap.String("slot", slot), zap.Error(err))
	}
}

// Message returns the user-facing text for a cycle error.
func Message(err error) string {
	var ve *projection.ValidationError
	if errors.As(err, &ve) {
		return ve.Msg
	}
	if err == nil {
		return ""
	}
	return err.Error()
}

// startAge reads the current age from the form. Unparseable values count as 0.
func startAge(in form.Input) float64 {
	v, ok := in.Get(form.AgeField)
	if !ok {
		return 0
	}
	age, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
	if err != nil {
		return 0
	}
	return age
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
