package canvas

import (
	"errors"
	"sync"

	"github.com/theirongolddev/fireplot/internal/chart"
)

// Memory is a headless canvas that records the charts drawn on it.
type Memory struct {
	visibility

	id string

	mu      sync.Mutex
	live    map[*memoryInstance]struct{}
	drawErr error
	draws   int
}

// NewMemory returns an in-memory canvas.
func NewMemory(id string) *Memory {
	return &Memory{id: id, live: make(map[*memoryInstance]struct{})}
}

// ID returns the canvas identifier.
func (m *Memory) ID() string { return m.id }

// FailNextDraw makes the next Draw call return err.
func (m *Memory) FailNextDraw(err error) {
	m.mu.Lock()
	m.drawErr = err
	m.mu.Unlock()
}

// Draw records cfg and returns a live instance.
func (m *Memory) Draw(cfg chart.Config) (Instance, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.drawErr != nil {
		err := m.drawErr
		m.drawErr = nil
		return nil, err
	}
	if len(cfg.Data.Datasets) == 0 {
		return nil, errors.New("chart has no datasets")
	}

	inst := &memoryInstance{canvas: m, cfg: cfg}
	m.live[inst] = struct{}{}
	m.draws++
	return inst, nil
}

// Live returns the number of instances not yet destroyed.
func (m *Memory) Live() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.live)
}

// Draws returns how many instances were created in total.
func (m *Memory) Draws() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.draws
}

// Current returns the config of the live instance, if exactly one exists.
func (m *Memory) Current() (chart.Config, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.live) != 1 {
		return chart.Config{}, false
	}
	for inst := range m.live {
		return inst.cfg, true
	}
	return chart.Config{}, false
}

type memoryInstance struct {
	once
	canvas *Memory
	cfg    chart.Config
}

func (i *memoryInstance) Destroy() error {
	_, err := i.do(func() error {
		i.canvas.mu.Lock()
		delete(i.canvas.live, i)
		i.canvas.mu.Unlock()
		return nil
	})
	return err
}
