package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/theirongolddev/fireplot/internal/canvas"
	"github.com/theirongolddev/fireplot/internal/chart"
	"github.com/theirongolddev/fireplot/internal/cli"
	"github.com/theirongolddev/fireplot/internal/render"
	"github.com/theirongolddev/fireplot/internal/watch"

	"github.com/spf13/cobra"
)

var flagInterval time.Duration

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Redraw the charts whenever the form inputs change",
	Long: "Re-read the preset file and --set values every --interval and resubmit\n" +
		"when they differ from the last submit. Failed submits are not retried\n" +
		"until the inputs change.",
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().DurationVar(&flagInterval, "interval", 5*time.Second, "How often to re-read the inputs")
	watchCmd.Flags().StringVarP(&flagOut, "out", "o", "", "Write the chart to a .png, .pdf or .json file")
	watchCmd.Flags().IntVar(&flagWidth, "width", 0, "Chart width (cells in the terminal, pixels for images)")
	watchCmd.Flags().IntVar(&flagHeight, "height", 0, "Chart height (cells in the terminal, pixels for images)")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(_ *cobra.Command, _ []string) error {
	variant, err := resolveVariant()
	if err != nil {
		return err
	}
	if _, err := buildInput(); err != nil {
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
	r := render.New(client, page, render.NewRenderState(), variant, log)

	svc := watch.New(watch.Config{
		Interval: flagInterval,
		Load:     buildInput,
		Logger:   log,
	}, r)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	events, unsubscribe := svc.Subscribe(8)
	defer unsubscribe()

	done := make(chan error, 1)
	go func() { done <- svc.Run(ctx) }()

	if !flagQuiet {
		fmt.Fprintf(os.Stderr, "  Watching %s every %s (Ctrl+C to stop)\n", client.BaseURL(), flagInterval)
	}

	for {
		select {
		case err := <-done:
			return err
		case ev := <-events:
			printWatchEvent(ev, r, terminals, errs)
		}
	}
}

func printWatchEvent(ev watch.Event, r *render.Renderer, terminals map[string]*canvas.Terminal, errs *canvas.TextDisplay) {
	stamp := ev.Timestamp.Format("15:04:05")
	if ev.Type == watch.EventError {
		fmt.Fprintf(os.Stderr, "  [%s] %s\n", stamp, cli.RenderError(errs.Text()))
		return
	}

	variant := r.Variant()
	p := r.Last()
	if flagOut != "" {
		if !flagQuiet {
			for _, slot := range render.SlotsFor(variant) {
				fmt.Fprintf(os.Stderr, "  [%s] Wrote %s\n", stamp, slotPath(flagOut, slot, variant))
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

	if flagQuiet {
		return
	}
	if ev.Type == watch.EventUpdate {
		fmt.Printf("  [%s] Final principal %s (%s)\n", stamp,
			chart.FormatCurrencyFixed(ev.Snapshot.FinalPrincipal), cli.FormatDelta(ev.Delta.FinalPrincipal))
	}
	fmt.Print(cli.RenderTable(cli.Summary(p)))
}
