// Package tui provides the interactive Bubble Tea front end for fireplot.
package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/theirongolddev/fireplot/internal/canvas"
	"github.com/theirongolddev/fireplot/internal/chart"
	"github.com/theirongolddev/fireplot/internal/cli"
	"github.com/theirongolddev/fireplot/internal/form"
	"github.com/theirongolddev/fireplot/internal/projection"
	"github.com/theirongolddev/fireplot/internal/render"
	"github.com/theirongolddev/fireplot/internal/tui/components"
	"github.com/theirongolddev/fireplot/internal/tui/theme"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"
)

// RenderDoneMsg is sent when a submit cycle finishes.
type RenderDoneMsg struct {
	Err     error
	Elapsed time.Duration
}

// Options configures NewApp.
type Options struct {
	Fetcher render.Fetcher
	Input   form.Input
	Variant projection.Variant
	// Server is shown in the header.
	Server string
	Logger *zap.Logger
}

// App is the root Bubble Tea model: the calculator page.
type App struct {
	renderer *render.Renderer
	canvases map[string]*canvas.Terminal
	errs     *canvas.TextDisplay
	input    form.Input
	server   string

	// Calculator form (huh), non-nil while editing
	editor   *huh.Form
	editVals *formValues

	spinner spinner.Model
	busy    bool
	elapsed time.Duration
	lastErr error

	width    int
	height   int
	showHelp bool
}

const (
	minTerminalWidth = 60
	wideWidth        = 150
	maxContentWidth  = 180

	headerHeight    = 1
	metricRowHeight = 5
	errorHeight     = 1
	statusHeight    = 1
	cardChrome      = 3 // border + title
	minChartHeight  = 6
)

// NewApp creates the page with one terminal canvas per chart slot.
func NewApp(opts Options) App {
	errs := &canvas.TextDisplay{}
	canvases := make(map[string]*canvas.Terminal, 3)
	list := make([]canvas.Canvas, 0, 3)
	for _, slot := range []string{render.SlotFinancial, render.SlotPrincipal, render.SlotTakeHome} {
		c := canvas.NewTerminal(slot, 80, 20)
		canvases[slot] = c
		list = append(list, c)
	}
	page := render.NewPage(errs, list...)

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(theme.Active.Accent)

	return App{
		renderer: render.New(opts.Fetcher, page, render.NewRenderState(), opts.Variant, opts.Logger),
		canvases: canvases,
		errs:     errs,
		input:    opts.Input,
		server:   opts.Server,
		spinner:  sp,
		busy:     true, // Init always submits
	}
}

// Init implements tea.Model. The page submits the form once on load.
func (a App) Init() tea.Cmd {
	return tea.Batch(
		initCmd(a.renderer, a.input),
		a.spinner.Tick,
	)
}

// Update implements tea.Model.
func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.layout()
		if a.editor != nil {
			a.editor = a.editor.WithWidth(a.formWidth()).WithHeight(msg.Height - 4)
		}
		return a, nil

	case tea.KeyMsg:
		key := msg.String()

		// Global: quit
		if key == "ctrl+c" {
			return a, tea.Quit
		}

		// The form intercepts all keys while open
		if a.editor != nil {
			return a.updateEditor(msg)
		}

		if key == "?" {
			a.showHelp = !a.showHelp
			return a, nil
		}
		if a.showHelp {
			a.showHelp = false
			return a, nil
		}

		switch key {
		case "q":
			return a, tea.Quit
		case "enter", "e":
			return a.openEditor()
		case "r":
			return a.submit()
		case "v":
			if a.renderer.Variant() == projection.Dual {
				a.renderer.SetVariant(projection.Single)
			} else {
				a.renderer.SetVariant(projection.Dual)
			}
			a.layout()
			return a.submit()
		}
		return a, nil

	case RenderDoneMsg:
		// A newer submit owns the page; wait for its result.
		if errors.Is(msg.Err, render.ErrSuperseded) {
			return a, nil
		}
		a.busy = false
		a.lastErr = msg.Err
		a.elapsed = msg.Elapsed
		return a, nil

	case spinner.TickMsg:
		if a.busy {
			var cmd tea.Cmd
			a.spinner, cmd = a.spinner.Update(msg)
			return a, cmd
		}
		return a, nil
	}

	// Forward unhandled messages to the form (cursor blinks, etc.)
	if a.editor != nil {
		return a.updateEditor(msg)
	}

	return a, nil
}

func (a App) openEditor() (tea.Model, tea.Cmd) {
	a.editVals = newFormValues(a.input, a.renderer.Variant())
	a.editor = newCalculatorForm(a.editVals)
	if a.width > 0 {
		a.editor = a.editor.WithWidth(a.formWidth()).WithHeight(a.height - 4)
	}
	return a, a.editor.Init()
}

func (a App) updateEditor(msg tea.Msg) (tea.Model, tea.Cmd) {
	f, cmd := a.editor.Update(msg)
	if hf, ok := f.(*huh.Form); ok {
		a.editor = hf
	}

	switch a.editor.State {
	case huh.StateCompleted:
		a.input = a.editVals.apply(a.input)
		a.renderer.SetVariant(a.editVals.parsedVariant())
		a.editor = nil
		a.editVals = nil
		a.layout()
		return a.submit()
	case huh.StateAborted:
		a.editor = nil
		a.editVals = nil
		return a, nil
	}

	return a, cmd
}

// submit starts a cycle with the current form values.
func (a App) submit() (tea.Model, tea.Cmd) {
	cmds := []tea.Cmd{submitCmd(a.renderer, a.input)}
	if !a.busy {
		cmds = append(cmds, a.spinner.Tick)
	}
	a.busy = true
	return a, tea.Batch(cmds...)
}

func initCmd(r *render.Renderer, in form.Input) tea.Cmd {
	return func() tea.Msg {
		start := time.Now()
		err := r.Init(context.Background(), in)
		return RenderDoneMsg{Err: err, Elapsed: time.Since(start)}
	}
}

func submitCmd(r *render.Renderer, in form.Input) tea.Cmd {
	return func() tea.Msg {
		start := time.Now()
		err := r.HandleSubmit(context.Background(), in)
		return RenderDoneMsg{Err: err, Elapsed: time.Since(start)}
	}
}

func (a App) contentWidth() int {
	cw := a.width
	if cw > maxContentWidth {
		cw = maxContentWidth
	}
	return cw
}

func (a App) formWidth() int {
	return min(a.contentWidth()-4, 72)
}

// chartCardWidths returns the outer width of each chart card of the variant
// and whether they sit side by side.
func (a App) chartCardWidths(variant projection.Variant) ([]int, bool) {
	cw := a.contentWidth()
	if variant == projection.Dual {
		if cw >= wideWidth {
			return components.LayoutRow(cw, 2), true
		}
		return []int{cw, cw}, false
	}
	return []int{cw}, false
}

// layout sizes the terminal canvases to the window.
func (a App) layout() {
	if a.width == 0 {
		return
	}
	variant := a.renderer.Variant()
	widths, sideBySide := a.chartCardWidths(variant)

	avail := a.height - headerHeight - metricRowHeight - errorHeight - statusHeight
	perCard := avail
	if len(widths) > 1 && !sideBySide {
		perCard = avail / len(widths)
	}
	chartH := max(minChartHeight, perCard-cardChrome)

	for i, slot := range render.SlotsFor(variant) {
		if c, ok := a.canvases[slot]; ok {
			c.SetSize(components.CardInnerWidth(widths[i]), chartH)
		}
	}
}

// View implements tea.Model.
func (a App) View() string {
	if a.width == 0 {
		return ""
	}

	if a.width < minTerminalWidth {
		return a.viewTooNarrow()
	}

	if a.editor != nil {
		return a.viewEditor()
	}

	if a.showHelp {
		return a.viewHelp()
	}

	return a.viewMain()
}

func (a App) viewTooNarrow() string {
	h := max(a.height, 5)

	msg := fmt.Sprintf(
		"\n  Terminal too narrow (%d cols)\n\n  fireplot needs at least %d columns.\n",
		a.width,
		minTerminalWidth,
	)

	return padHeight(truncateHeight(msg, h), h)
}

func (a App) viewEditor() string {
	t := theme.Active

	cardStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.BorderAccent).
		Padding(1, 2)

	titleStyle := lipgloss.NewStyle().
		Foreground(t.AccentBright).
		Bold(true)

	body := titleStyle.Render("◈ Calculator") + "\n\n" + a.editor.View()
	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, cardStyle.Render(body))
}

func (a App) viewHelp() string {
	t := theme.Active

	cardStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.BorderAccent).
		Padding(1, 3)

	titleStyle := lipgloss.NewStyle().
		Foreground(t.AccentBright).
		Bold(true)

	keyStyle := lipgloss.NewStyle().
		Foreground(t.Cyan).
		Bold(true)

	descStyle := lipgloss.NewStyle().
		Foreground(t.TextMuted)

	dimStyle := lipgloss.NewStyle().
		Foreground(t.TextDim)

	var b strings.Builder
	b.WriteString(titleStyle.Render("◈ Keyboard Shortcuts"))
	b.WriteString("\n\n")

	bindings := []struct{ key, desc string }{
		{"Enter / e", "Edit calculator inputs"},
		{"r", "Submit again"},
		{"v", "Toggle single / dual charts"},
		{"?", "Toggle help"},
		{"q", "Quit"},
	}
	for _, bind := range bindings {
		fmt.Fprintf(&b, "  %s  %s\n",
			keyStyle.Render(fmt.Sprintf("%-10s", bind.key)),
			descStyle.Render(bind.desc))
	}

	b.WriteString("\n")
	b.WriteString(dimStyle.Render("Press any key to close"))

	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, cardStyle.Render(b.String()))
}

func (a App) viewMain() string {
	t := theme.Active
	w := a.width
	cw := a.contentWidth()
	h := a.height
	variant := a.renderer.Variant()

	// 1. Header
	logoStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Bold(true)
	mutedStyle := lipgloss.NewStyle().Foreground(t.TextMuted)
	pillStyle := lipgloss.NewStyle().Foreground(t.Accent).Bold(true)

	header := logoStyle.Render("◈ fireplot") +
		mutedStyle.Render(" · "+a.server+" · ") +
		pillStyle.Render(variant.String())

	// 2. Metric cards
	metrics := components.MetricCardRow(a.metricCards(cw), cw)

	// 3. Charts
	widths, sideBySide := a.chartCardWidths(variant)
	var cards []string
	for i, slot := range render.SlotsFor(variant) {
		body := a.canvases[slot].View()
		if body == "" {
			body = mutedStyle.Render("no chart")
		}
		cards = append(cards, components.ContentCard(a.chartTitle(slot), body, widths[i]))
	}
	var charts string
	if sideBySide {
		charts = components.CardRow(cards)
	} else {
		charts = lipgloss.JoinVertical(lipgloss.Left, cards...)
	}

	// 4. Error line
	errLine := ""
	if msg := a.errs.Text(); msg != "" {
		errLine = lipgloss.NewStyle().Foreground(t.Red).Bold(true).Render(msg)
	}

	// 5. Status bar
	statusBar := components.RenderStatusBar(w, "e edit · r refresh · v charts · ? help · q quit", a.statusText())

	contentH := max(h-headerHeight-statusHeight, 1)
	content := lipgloss.JoinVertical(lipgloss.Left, metrics, charts, errLine)
	content = padHeight(truncateHeight(content, contentH), contentH)
	content = lipgloss.PlaceHorizontal(w, lipgloss.Center, content)

	return lipgloss.JoinVertical(lipgloss.Left, header, content, statusBar)
}

func (a App) metricCards(width int) []components.Metric {
	p := a.renderer.Last()
	if p == nil || a.lastErr != nil || p.Len() == 0 {
		return []components.Metric{
			components.Placeholder("Final principal"),
			components.Placeholder("Contributions"),
			components.Placeholder("Growth"),
			components.Placeholder("Horizon"),
		}
	}
	n := p.Len()
	principal := p.Principal[n-1]
	contributed := p.Contributions[n-1]
	growth := principal - contributed

	spark := components.CardInnerWidth(components.LayoutRow(width, 4)[0])
	tone := components.TonePositive
	if growth < 0 {
		tone = components.ToneNegative
	}
	growthPct := ""
	if contributed != 0 {
		growthPct = cli.FormatPercent(growth / contributed)
	}

	return []components.Metric{
		{Label: "Final principal", Value: chart.FormatCurrency(principal),
			Detail: components.Sparkline(components.Resample(p.Principal, spark), theme.Active.Accent)},
		{Label: "Contributions", Value: chart.FormatCurrency(contributed)},
		{Label: "Growth", Value: chart.FormatCurrency(growth), Detail: growthPct, Tone: tone},
		{Label: "Horizon", Value: cli.FormatHorizon(p.Months[n-1]),
			Detail: cli.FormatNumber(int64(n)) + " points"},
	}
}

func (a App) chartTitle(slot string) string {
	if slot == render.SlotTakeHome {
		return chart.LabelTakeHome
	}
	if p := a.renderer.Last(); p != nil && p.Title != "" {
		return p.Title
	}
	return "Projection"
}

func (a App) statusText() string {
	if a.busy {
		return a.spinner.View() + " fetching projection"
	}
	if a.lastErr != nil {
		return "failed"
	}
	if a.elapsed > 0 {
		return fmt.Sprintf("rendered in %s", a.elapsed.Round(time.Millisecond))
	}
	return ""
}

// ─── Helpers ────────────────────────────────────────────────────

func truncateHeight(s string, limit int) string {
	lines := strings.Split(s, "\n")
	if len(lines) <= limit {
		return s
	}
	return strings.Join(lines[:limit], "\n")
}

func padHeight(s string, h int) string {
	lines := strings.Split(s, "\n")
	if len(lines) >= h {
		return s
	}
	padding := strings.Repeat("\n", h-len(lines))
	return s + padding
}
