package cmd

import (
	"fmt"

	"github.com/theirongolddev/fireplot/internal/config"
	"github.com/theirongolddev/fireplot/internal/tui"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"
)

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Launch the interactive calculator",
	RunE:  runTUI,
}

func init() {
	rootCmd.AddCommand(tuiCmd)
}

func runTUI(_ *cobra.Command, _ []string) error {
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

	// Logs go to a file so they do not tear the alternate screen.
	log := newLogger(config.LogPath())
	defer func() { _ = log.Sync() }()

	// Force TrueColor profile so all background styling produces ANSI codes
	lipgloss.SetColorProfile(termenv.TrueColor)

	app := tui.NewApp(tui.Options{
		Fetcher: client,
		Input:   in,
		Variant: variant,
		Server:  client.BaseURL(),
		Logger:  log,
	})
	p := tea.NewProgram(app, tea.WithAltScreen())

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}

	return nil
}
