// Package watch re-reads the form inputs on an interval and resubmits them
// whenever they change.
package watch

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/theirongolddev/fireplot/internal/form"
	"github.com/theirongolddev/fireplot/internal/projection"
	"github.com/theirongolddev/fireplot/internal/render"

	"go.uber.org/zap"
)

// Event types.
const (
	EventSnapshot = "snapshot"
	EventUpdate   = "update"
	EventError    = "error"
)

//go:generate mockgen -source=service.go -destination=mocks/mock_submitter.go -package=mocks Submitter

// Submitter runs one submit cycle. *render.Renderer satisfies it.
type Submitter interface {
	HandleSubmit(ctx context.Context, in form.Input) error
	Last() *projection.Projection
}

// Config controls the watch loop.
type Config struct {
	Interval     time.Duration
	EventsBuffer int

	// Load returns the current form values. It is called once per poll so
	// edits to preset files are picked up.
	Load func() (form.Input, error)

	Logger *zap.Logger
}

// Snapshot is a compact summary of the last rendered projection.
type Snapshot struct {
	At                 time.Time `json:"at"`
	Query              string    `json:"query"`
	Points             int       `json:"points"`
	FinalPrincipal     float64   `json:"final_principal"`
	FinalContributions float64   `json:"final_contributions"`
	PeakTakeHome       float64   `json:"peak_take_home"`
}

// Delta captures the change between two rendered snapshots.
type Delta struct {
	Points             int     `json:"points"`
	FinalPrincipal     float64 `json:"final_principal"`
	FinalContributions float64 `json:"final_contributions"`
	PeakTakeHome       float64 `json:"peak_take_home"`
}

func (d Delta) isZero() bool {
	return d.Points == 0 &&
		d.FinalPrincipal == 0 &&
		d.FinalContributions == 0 &&
		d.PeakTakeHome == 0
}

// Event is emitted after every submit cycle that changed what is on screen.
type Event struct {
	ID        int64     `json:"id"`
	Type      string    `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Snapshot  Snapshot  `json:"snapshot"`
	Delta     Delta     `json:"delta"`
	Err       string    `json:"error,omitempty"`
}

// Status reports the loop's counters.
type Status struct {
	StartedAt       time.Time `json:"started_at"`
	LastPollAt      time.Time `json:"last_poll_at"`
	PollIntervalSec int       `json:"poll_interval_sec"`
	PollCount       int64     `json:"poll_count"`
	SubmitCount     int64     `json:"submit_count"`
	Summary         Snapshot  `json:"summary"`
	LastError       string    `json:"last_error,omitempty"`
	EventCount      int       `json:"event_count"`
	SubscriberCount int       `json:"subscriber_count"`
}

// Service polls the inputs and drives a Submitter.
type Service struct {
	cfg Config
	sub Submitter
	log *zap.Logger

	mu          sync.RWMutex
	startedAt   time.Time
	lastPollAt  time.Time
	pollCount   int64
	submitCount int64
	lastError   string
	polled      bool
	lastQuery   string
	hasSnapshot bool
	snapshot    Snapshot
	nextEventID int64
	events      []Event

	nextSubID int
	subs      map[int]chan Event
}

// New returns a watch service. Intervals under two seconds fall back to ten.
func New(cfg Config, sub Submitter) *Service {
	if cfg.Interval < 2*time.Second {
		cfg.Interval = 10 * time.Second
	}
	if cfg.EventsBuffer < 1 {
		cfg.EventsBuffer = 50
	}
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{
		cfg:       cfg,
		sub:       sub,
		log:       log,
		startedAt: time.Now(),
		subs:      make(map[int]chan Event),
	}
}

// Run polls until ctx is canceled. The first poll happens immediately.
func (s *Service) Run(ctx context.Context) error {
	s.pollOnce(ctx)

	ticker := time.NewTicker(s.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			s.pollOnce(ctx)
		}
	}
}

// pollOnce submits the inputs if they differ from the last submitted ones.
// A failed submit is not retried until the inputs change.
func (s *Service) pollOnce(ctx context.Context) {
	in, err := s.cfg.Load()
	now := time.Now()
	if err != nil {
		s.mu.Lock()
		s.lastError = err.Error()
		s.lastPollAt = now
		s.pollCount++
		s.mu.Unlock()
		s.log.Warn("loading inputs", zap.Error(err))
		return
	}

	query := in.Encode()
	s.mu.Lock()
	s.lastPollAt = now
	s.pollCount++
	unchanged := s.polled && query == s.lastQuery
	s.mu.Unlock()
	if unchanged {
		return
	}

	s.log.Debug("inputs changed", zap.String("query", query))
	err = s.sub.HandleSubmit(ctx, in)
	if errors.Is(err, render.ErrSuperseded) || ctx.Err() != nil {
		return
	}

	s.mu.Lock()
	s.polled = true
	s.lastQuery = query
	s.submitCount++

	var (
		ev      Event
		publish bool
	)
	if err != nil {
		s.lastError = render.Message(err)
		s.nextEventID++
		ev = Event{ID: s.nextEventID, Type: EventError, Timestamp: now, Snapshot: s.snapshot, Err: s.lastError}
		publish = true
	} else {
		prev, prevExists, prevFailed := s.snapshot, s.hasSnapshot, s.lastError != ""
		snap := snapshotFrom(s.sub.Last(), query, now)
		s.hasSnapshot = true
		s.snapshot = snap
		s.lastError = ""

		switch {
		case !prevExists:
			s.nextEventID++
			ev = Event{ID: s.nextEventID, Type: EventSnapshot, Timestamp: now, Snapshot: snap}
			publish = true
		default:
			delta := diffSnapshots(prev, snap)
			if !delta.isZero() || prevFailed {
				s.nextEventID++
				ev = Event{ID: s.nextEventID, Type: EventUpdate, Timestamp: now, Snapshot: snap, Delta: delta}
				publish = true
			}
		}
	}
	s.mu.Unlock()

	if publish {
		s.publishEvent(ev)
	}
}

func snapshotFrom(p *projection.Projection, query string, at time.Time) Snapshot {
	snap := Snapshot{At: at, Query: query}
	if p == nil {
		return snap
	}
	n := p.Len()
	snap.Points = n
	if n > 0 {
		snap.FinalPrincipal = p.Principal[n-1]
		snap.FinalContributions = p.Contributions[n-1]
	}
	for _, v := range p.TakeHome {
		if v > snap.PeakTakeHome {
			snap.PeakTakeHome = v
		}
	}
	return snap
}

func diffSnapshots(prev, curr Snapshot) Delta {
	return Delta{
		Points:             curr.Points - prev.Points,
		FinalPrincipal:     curr.FinalPrincipal - prev.FinalPrincipal,
		FinalContributions: curr.FinalContributions - prev.FinalContributions,
		PeakTakeHome:       curr.PeakTakeHome - prev.PeakTakeHome,
	}
}

func (s *Service) publishEvent(ev Event) {
	s.mu.Lock()
	s.events = append(s.events, ev)
	if len(s.events) > s.cfg.EventsBuffer {
		s.events = s.events[len(s.events)-s.cfg.EventsBuffer:]
	}

	for _, ch := range s.subs {
		select {
		case ch <- ev:
		default:
		}
	}
	s.mu.Unlock()
}

// Subscribe returns a channel of future events and a func that detaches it.
// Slow subscribers miss events rather than stall the loop.
func (s *Service) Subscribe(buf int) (<-chan Event, func()) {
	ch := make(chan Event, max(buf, 1))
	s.mu.Lock()
	s.nextSubID++
	id := s.nextSubID
	s.subs[id] = ch
	s.mu.Unlock()

	return ch, func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}

// Events returns the buffered events, oldest first.
func (s *Service) Events() []Event {
	s.mu.RLock()
	defer s.mu.RUnlock()
	events := make([]Event, len(s.events))
	copy(events, s.events)
	return events
}

// Status returns the loop's current counters.
func (s *Service) Status() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return Status{
		StartedAt:       s.startedAt,
		LastPollAt:      s.lastPollAt,
		PollIntervalSec: int(s.cfg.Interval.Seconds()),
		PollCount:       s.pollCount,
		SubmitCount:     s.submitCount,
		Summary:         s.snapshot,
		LastError:       s.lastError,
		EventCount:      len(s.events),
		SubscriberCount: len(s.subs),
	}
}
