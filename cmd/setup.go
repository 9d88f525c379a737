package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/theirongolddev/fireplot/internal/config"
	"github.com/theirongolddev/fireplot/internal/plotclient"
	"github.com/theirongolddev/fireplot/internal/projection"
	"github.com/theirongolddev/fireplot/internal/tui/theme"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
)

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "First-time setup wizard",
	RunE:  runSetup,
}

func init() {
	rootCmd.AddCommand(setupCmd)
}

func runSetup(_ *cobra.Command, _ []string) error {
	cfg := appConfig

	server := cfg.Server.BaseURL
	if server == "" {
		server = config.DefaultServerURL
	}
	timeout := ""
	if cfg.Server.TimeoutSec > 0 {
		timeout = strconv.Itoa(cfg.Server.TimeoutSec)
	}
	variant := cfg.Chart.Variant
	themeName := cfg.Appearance.Theme

	themeOpts := make([]huh.Option[string], 0, len(theme.All))
	for _, th := range theme.All {
		themeOpts = append(themeOpts, huh.NewOption(th.Name, th.Name))
	}

	f := huh.NewForm(
		huh.NewGroup(
			huh.NewNote().
				Title("Welcome to fireplot!").
				Description("Point fireplot at the server that computes your projection."),
			huh.NewInput().
				Title("Projection server URL").
				Value(&server).
				Validate(func(s string) error {
					_, err := plotclient.NewClient(strings.TrimSpace(s))
					return err
				}),
			huh.NewInput().
				Title("Request timeout in seconds").
				Description("Leave blank to wait as long as the server needs.").
				Value(&timeout).
				Validate(func(s string) error {
					s = strings.TrimSpace(s)
					if s == "" {
						return nil
					}
					if n, err := strconv.Atoi(s); err != nil || n < 0 {
						return fmt.Errorf("enter a whole number of seconds")
					}
					return nil
				}),
		),
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Default charts").
				Options(
					huh.NewOption("Principal and contributions", projection.Single.String()),
					huh.NewOption("Add monthly take-home", projection.Dual.String()),
				).
				Value(&variant),
			huh.NewSelect[string]().
				Title("Color theme").
				Options(themeOpts...).
				Value(&themeName),
		),
	).WithTheme(huh.ThemeBase16())

	if err := f.Run(); err != nil {
		return fmt.Errorf("setup: %w", err)
	}

	cfg.Server.BaseURL = strings.TrimSpace(server)
	cfg.Server.TimeoutSec = 0
	if t := strings.TrimSpace(timeout); t != "" {
		cfg.Server.TimeoutSec, _ = strconv.Atoi(t)
	}
	cfg.Chart.Variant = variant
	cfg.Appearance.Theme = themeName

	// Save
	if err := config.Save(cfg); err != nil {
		return fmt.Errorf("saving config: %w", err)
	}

	fmt.Println()
	fmt.Printf("  Saved to %s\n", config.Path())
	fmt.Println("  Run `fireplot setup` anytime to reconfigure.")
	fmt.Println()

	return nil
}
