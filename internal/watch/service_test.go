package watch

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/theirongolddev/fireplot/internal/form"
	"github.com/theirongolddev/fireplot/internal/projection"
	"github.com/theirongolddev/fireplot/internal/render"
	"github.com/theirongolddev/fireplot/internal/watch/mocks"

	"go.uber.org/mock/gomock"
)

type fakeSubmitter struct {
	calls int
	err   error
	last  *projection.Projection
	next  *projection.Projection
}

func (f *fakeSubmitter) HandleSubmit(_ context.Context, _ form.Input) error {
	f.calls++
	if f.err != nil {
		return f.err
	}
	f.last = f.next
	return nil
}

func (f *fakeSubmitter) Last() *projection.Projection { return f.last }

func proj(final float64) *projection.Projection {
	return &projection.Projection{
		Months:        []float64{0, 1},
		Years:         []float64{0, 0.08},
		Principal:     []float64{1000, final},
		Contributions: []float64{1000, 1000},
	}
}

func newTestService(sub Submitter, load func() (form.Input, error)) *Service {
	return New(Config{Interval: 10 * time.Second, EventsBuffer: 10, Load: load}, sub)
}

func TestDiffSnapshots(t *testing.T) {
	prev := Snapshot{Points: 10, FinalPrincipal: 1000, FinalContributions: 500}
	curr := Snapshot{Points: 12, FinalPrincipal: 1250.5, FinalContributions: 500, PeakTakeHome: 30}

	delta := diffSnapshots(prev, curr)
	if delta.Points != 2 {
		t.Fatalf("Points delta = %d, want 2", delta.Points)
	}
	if math.Abs(delta.FinalPrincipal-250.5) > 1e-9 {
		t.Fatalf("FinalPrincipal delta = %.2f, want 250.50", delta.FinalPrincipal)
	}
	if delta.FinalContributions != 0 {
		t.Fatalf("FinalContributions delta = %.2f, want 0", delta.FinalContributions)
	}
	if delta.PeakTakeHome != 30 {
		t.Fatalf("PeakTakeHome delta = %.2f, want 30", delta.PeakTakeHome)
	}
	if delta.isZero() {
		t.Fatal("delta unexpectedly reported as zero")
	}
	if !(Delta{}).isZero() {
		t.Fatal("empty delta should be zero")
	}
}

func TestPublishEventRingBuffer(t *testing.T) {
	s := New(Config{Interval: 10 * time.Second, EventsBuffer: 2}, &fakeSubmitter{})

	s.publishEvent(Event{ID: 1})
	s.publishEvent(Event{ID: 2})
	s.publishEvent(Event{ID: 3})

	events := s.Events()
	if len(events) != 2 {
		t.Fatalf("events len = %d, want 2", len(events))
	}
	if events[0].ID != 2 || events[1].ID != 3 {
		t.Fatalf("events ring contains IDs [%d, %d], want [2, 3]", events[0].ID, events[1].ID)
	}
}

func TestNewDefaults(t *testing.T) {
	s := New(Config{Interval: time.Second}, &fakeSubmitter{})
	if s.cfg.Interval != 10*time.Second {
		t.Errorf("Interval = %s, want 10s", s.cfg.Interval)
	}
	if s.cfg.EventsBuffer != 50 {
		t.Errorf("EventsBuffer = %d, want 50", s.cfg.EventsBuffer)
	}
}

func TestPollOnceSubmitsOnlyOnChange(t *testing.T) {
	sub := &fakeSubmitter{next: proj(1010)}
	in := form.New(form.Field{Name: "initialCapital", Value: "1000"})
	s := newTestService(sub, func() (form.Input, error) { return in.Clone(), nil })
	events, cancel := s.Subscribe(4)
	defer cancel()

	ctx := context.Background()
	s.pollOnce(ctx)
	s.pollOnce(ctx)

	if sub.calls != 1 {
		t.Fatalf("submits = %d, want 1 for unchanged inputs", sub.calls)
	}
	ev := <-events
	if ev.Type != EventSnapshot || ev.Snapshot.FinalPrincipal != 1010 {
		t.Fatalf("first event = %+v", ev)
	}
	if ev.Snapshot.Query != "initialCapital=1000" {
		t.Errorf("Query = %q", ev.Snapshot.Query)
	}

	in.Set("initialCapital", "2000")
	sub.next = proj(2020)
	s.pollOnce(ctx)

	if sub.calls != 2 {
		t.Fatalf("submits = %d, want 2 after change", sub.calls)
	}
	ev = <-events
	if ev.Type != EventUpdate {
		t.Fatalf("Type = %q, want %q", ev.Type, EventUpdate)
	}
	if ev.Delta.FinalPrincipal != 1010 {
		t.Errorf("FinalPrincipal delta = %.2f, want 1010", ev.Delta.FinalPrincipal)
	}

	st := s.Status()
	if st.PollCount != 3 || st.SubmitCount != 2 {
		t.Errorf("PollCount=%d SubmitCount=%d, want 3 and 2", st.PollCount, st.SubmitCount)
	}
	if st.SubscriberCount != 1 {
		t.Errorf("SubscriberCount = %d, want 1", st.SubscriberCount)
	}
}

func TestPollOnceSameProjectionNoEvent(t *testing.T) {
	sub := &fakeSubmitter{next: proj(1010)}
	in := form.New(form.Field{Name: "a", Value: "1"})
	s := newTestService(sub, func() (form.Input, error) { return in.Clone(), nil })

	ctx := context.Background()
	s.pollOnce(ctx)
	in.Set("a", "2")
	s.pollOnce(ctx)

	if sub.calls != 2 {
		t.Fatalf("submits = %d, want 2", sub.calls)
	}
	if n := len(s.Events()); n != 1 {
		t.Fatalf("events = %d, want 1 when the projection did not change", n)
	}
}

func TestPollOnceFailureNotRetried(t *testing.T) {
	sub := &fakeSubmitter{err: &projection.ValidationError{Msg: "No data points generated. Please check input values."}}
	in := form.New(form.Field{Name: "a", Value: "1"})
	s := newTestService(sub, func() (form.Input, error) { return in.Clone(), nil })

	ctx := context.Background()
	s.pollOnce(ctx)
	s.pollOnce(ctx)

	if sub.calls != 1 {
		t.Fatalf("submits = %d, want 1", sub.calls)
	}
	events := s.Events()
	if len(events) != 1 || events[0].Type != EventError {
		t.Fatalf("events = %+v, want one error event", events)
	}
	if events[0].Err != "No data points generated. Please check input values." {
		t.Errorf("Err = %q", events[0].Err)
	}

	// Recovery after the inputs change publishes a fresh snapshot.
	sub.err = nil
	sub.next = proj(1010)
	in.Set("a", "2")
	s.pollOnce(ctx)

	events = s.Events()
	if got := events[len(events)-1]; got.Type != EventSnapshot {
		t.Fatalf("Type = %q, want %q", got.Type, EventSnapshot)
	}
	if st := s.Status(); st.LastError != "" {
		t.Errorf("LastError = %q, want cleared", st.LastError)
	}
}

func TestPollOnceSupersededIgnored(t *testing.T) {
	sub := &fakeSubmitter{err: render.ErrSuperseded}
	s := newTestService(sub, func() (form.Input, error) { return form.Defaults(), nil })

	s.pollOnce(context.Background())

	if n := len(s.Events()); n != 0 {
		t.Fatalf("events = %d, want 0", n)
	}
	// The cycle never completed, so the next poll submits again.
	s.pollOnce(context.Background())
	if sub.calls != 2 {
		t.Errorf("submits = %d, want 2", sub.calls)
	}
}

func TestPollOnceLoadError(t *testing.T) {
	sub := &fakeSubmitter{}
	s := newTestService(sub, func() (form.Input, error) { return form.Input{}, errors.New("bad preset") })

	s.pollOnce(context.Background())

	if sub.calls != 0 {
		t.Fatalf("submits = %d, want 0", sub.calls)
	}
	st := s.Status()
	if st.LastError != "bad preset" || st.PollCount != 1 {
		t.Errorf("status = %+v", st)
	}
}

func TestRunStopsOnCancel(t *testing.T) {
	sub := &fakeSubmitter{next: proj(1010)}
	s := newTestService(sub, func() (form.Input, error) { return form.Defaults(), nil })

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	deadline := time.After(2 * time.Second)
	for len(s.Events()) == 0 {
		select {
		case <-deadline:
			t.Fatal("no event before deadline")
		case <-time.After(5 * time.Millisecond):
		}
	}
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestPollOnceWithMockSubmitter(t *testing.T) {
	ctrl := gomock.NewController(t)
	sub := mocks.NewMockSubmitter(ctrl)

	in := form.New(form.Field{Name: "monthlyContribution", Value: "500"})
	gomock.InOrder(
		sub.EXPECT().HandleSubmit(gomock.Any(), in).Return(nil).Times(1),
		sub.EXPECT().Last().Return(proj(1010)).Times(1),
	)

	s := newTestService(sub, func() (form.Input, error) { return in.Clone(), nil })
	s.pollOnce(context.Background())
	s.pollOnce(context.Background())
	s.pollOnce(context.Background())

	st := s.Status()
	if st.SubmitCount != 1 || st.PollCount != 3 {
		t.Fatalf("SubmitCount=%d PollCount=%d, want 1 and 3", st.SubmitCount, st.PollCount)
	}
	if st.Summary.Points != 2 {
		t.Errorf("Summary.Points = %d, want 2", st.Summary.Points)
	}
}
