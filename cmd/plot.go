package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/theirongolddev/fireplot/internal/canvas"
	"github.com/theirongolddev/fireplot/internal/chart"
	"github.com/theirongolddev/fireplot/internal/cli"
	"github.com/theirongolddev/fireplot/internal/projection"
	"github.com/theirongolddev/fireplot/internal/render"

	"github.com/charmbracelet/x/term"
	"github.com/spf13/cobra"
)

var (
	flagOut    string
	flagWidth  int
	flagHeight int
)

var plotCmd = &cobra.Command{
	Use:   "plot",
	Short: "Submit the form once and draw the charts",
	Long: "Submit the form once and draw the result in the terminal, or write it to\n" +
		"--out as PNG, PDF or Chart.js JSON (picked by extension).",
	RunE: runPlot,
}

func init() {
	for _, c := range []*cobra.Command{rootCmd, plotCmd} {
		c.Flags().StringVarP(&flagOut, "out", "o", "", "Write the chart to a .png, .pdf or .json file")
		c.Flags().IntVar(&flagWidth, "width", 0, "Chart width (cells in the terminal, pixels for images)")
		c.Flags().IntVar(&flagHeight, "height", 0, "Chart height (cells in the terminal, pixels for images)")
	}
	rootCmd.AddCommand(plotCmd)
}

// shownError marks a failure whose message the page already printed.
type shownError struct {
	err error
}

func (e *shownError) Error() string { return e.err.Error() }
func (e *shownError) Unwrap() error { return e.err }

func isShownError(err error) bool {
	var s *shownError
	return errors.As(err, &s)
}

func runPlot(_ *cobra.Command, _ []string) error {
	variant, err := resolveVariant()
	if err != nil {
		return err
	}
	in, err := buildInput()
	if err != nil {
		return err
	}
	client, err := newClient()
	if err != nil {
		return err
	}

	log := newLogger("")
	defer func() { _ = log.Sync() }()

	errs := &canvas.TextDisplay{}
	page, terminals, err := plotPage(variant, errs)
	if err != nil {
		return err
	}

	if !flagQuiet {
		fmt.Fprintf(os.Stderr, "  Requesting %s\n", client.URL(in.Encode()))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	r := render.New(client, page, render.NewRenderState(), variant, log)
	if err := r.HandleSubmit(ctx, in); err != nil {
		fmt.Fprintln(os.Stderr, cli.RenderError(errs.Text()))
		return &shownError{err: err}
	}

	p := r.Last()
	if flagOut != "" {
		if !flagQuiet {
			for _, slot := range render.SlotsFor(variant) {
				fmt.Fprintf(os.Stderr, "  Wrote %s\n", slotPath(flagOut, slot, variant))
			}
		}
	} else {
		fmt.Println()
		for _, slot := range render.SlotsFor(variant) {
			fmt.Println(cli.RenderTitle(chartTitle(p, slot)))
			fmt.Println(terminals[slot].View())
			fmt.Println()
		}
	}

	if !flagQuiet {
		fmt.Print(cli.RenderTable(cli.Summary(p)))
	}
	return nil
}

// plotPage builds file canvases when --out is set, terminal canvases
// otherwise. The terminal canvases are returned for printing.
func plotPage(variant projection.Variant, errs canvas.ErrorDisplay) (*render.Page, map[string]*canvas.Terminal, error) {
	slots := render.SlotsFor(variant)
	list := make([]canvas.Canvas, 0, len(slots))

	if flagOut != "" {
		w, h := flagWidth, flagHeight
		if w == 0 {
			w = appConfig.Chart.Width
		}
		if h == 0 {
			h = appConfig.Chart.Height
		}
		for _, slot := range slots {
			f, err := canvas.NewFile(slot, slotPath(flagOut, slot, variant), w, h)
			if err != nil {
				return nil, nil, err
			}
			list = append(list, f)
		}
		return render.NewPage(errs, list...), nil, nil
	}

	w, h := terminalSize()
	terminals := make(map[string]*canvas.Terminal, len(slots))
	for _, slot := range slots {
		t := canvas.NewTerminal(slot, w, h)
		terminals[slot] = t
		list = append(list, t)
	}
	return render.NewPage(errs, list...), terminals, nil
}

// slotPath names the output file of a slot. The single chart uses the path
// as given; dual charts get the slot name appended to the base name.
func slotPath(out, slot string, variant projection.Variant) string {
	if variant != projection.Dual {
		return out
	}
	ext := filepath.Ext(out)
	return strings.TrimSuffix(out, ext) + "-" + slot + ext
}

func terminalSize() (int, int) {
	w, h := flagWidth, flagHeight
	if w == 0 {
		w = 100
		if tw, _, err := term.GetSize(os.Stdout.Fd()); err == nil && tw > 0 {
			w = min(tw, 160)
		}
	}
	if h == 0 {
		h = 20
	}
	return w, h
}

func chartTitle(p *projection.Projection, slot string) string {
	if slot == render.SlotTakeHome {
		return chart.LabelTakeHome
	}
	if p != nil && p.Title != "" {
		return p.Title
	}
	return "Projection"
}
