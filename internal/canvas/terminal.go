package canvas

import (
	"errors"
	"strings"
	"sync"

	"github.com/theirongolddev/fireplot/internal/chart"
	"github.com/theirongolddev/fireplot/internal/tui/components"
	"github.com/theirongolddev/fireplot/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
)

// ErrCanvasInUse is returned when drawing on a canvas whose previous chart
// has not been destroyed.
var ErrCanvasInUse = errors.New("canvas is already in use; destroy the previous chart first")

// Terminal renders charts as text for a terminal.
type Terminal struct {
	visibility

	id string

	mu      sync.RWMutex
	width   int
	height  int
	current *terminalInstance
}

// NewTerminal returns a terminal canvas of the given size in cells.
func NewTerminal(id string, width, height int) *Terminal {
	return &Terminal{id: id, width: width, height: height}
}

// ID returns the canvas identifier.
func (t *Terminal) ID() string { return t.id }

// SetSize changes the drawing area. The live chart is re-laid out on the
// next View.
func (t *Terminal) SetSize(width, height int) {
	t.mu.Lock()
	t.width, t.height = width, height
	t.mu.Unlock()
}

// Draw binds cfg to the canvas.
func (t *Terminal) Draw(cfg chart.Config) (Instance, error) {
	if len(cfg.Data.Datasets) == 0 {
		return nil, errors.New("chart has no datasets")
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if t.current != nil {
		return nil, ErrCanvasInUse
	}
	inst := &terminalInstance{canvas: t, cfg: cfg}
	t.current = inst
	return inst, nil
}

// HasChart reports whether a live chart is bound to the canvas.
func (t *Terminal) HasChart() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.current != nil
}

// View renders the live chart, or "" when the canvas is hidden or empty.
func (t *Terminal) View() string {
	if !t.Visible() {
		return ""
	}

	t.mu.RLock()
	inst := t.current
	width, height := t.width, t.height
	t.mu.RUnlock()
	if inst == nil {
		return ""
	}
	return RenderText(inst.cfg, width, height)
}

// RenderText lays out cfg as a text chart of at most width x height cells,
// including axis titles.
func RenderText(cfg chart.Config, width, height int) string {
	th := theme.Active
	titleStyle := lipgloss.NewStyle().Foreground(th.TextMuted).Bold(true)

	series := make([]components.Series, len(cfg.Data.Datasets))
	for i, ds := range cfg.Data.Datasets {
		series[i] = components.Series{
			Name:   ds.Label,
			Values: ds.Data,
			Color:  th.SeriesColor(ds.BorderColor),
		}
	}

	yTitle := cfg.Options.Scales.Y.Title
	xTitle := cfg.Options.Scales.X.Title

	chartH := height
	if yTitle.Display && yTitle.Text != "" {
		chartH--
	}
	if xTitle.Display && xTitle.Text != "" {
		chartH--
	}
	chartH-- // x-axis line
	chartH-- // x-axis labels
	if cfg.Options.Plugins.Legend.Display {
		chartH--
	}

	body := components.LineChart(series, cfg.Data.Labels, cfg.FormatTick, width, chartH,
		cfg.Options.Plugins.Legend.Display)

	var b strings.Builder
	if yTitle.Display && yTitle.Text != "" {
		b.WriteString(titleStyle.Render(yTitle.Text))
		b.WriteString("\n")
	}
	b.WriteString(body)
	if xTitle.Display && xTitle.Text != "" {
		b.WriteString("\n")
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, titleStyle.Render(xTitle.Text)))
	}
	return b.String()
}

type terminalInstance struct {
	once
	canvas *Terminal
	cfg    chart.Config
}

func (i *terminalInstance) Destroy() error {
	_, err := i.do(func() error {
		i.canvas.mu.Lock()
		if i.canvas.current == i {
			i.canvas.current = nil
		}
		i.canvas.mu.Unlock()
		return nil
	})
	return err
}
