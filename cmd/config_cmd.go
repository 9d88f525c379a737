// Package cmd implements the fireplot CLI commands.
package cmd

import (
	"fmt"
	"os"

	"github.com/theirongolddev/fireplot/internal/config"

	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show current configuration",
	RunE:  runConfig,
}

func init() {
	rootCmd.AddCommand(configCmd)
}

func runConfig(_ *cobra.Command, _ []string) error {
	cfg := appConfig

	fmt.Printf("  Config file: %s\n", config.Path())
	if config.Exists() {
		fmt.Println("  Status: loaded")
	} else {
		fmt.Println("  Status: using defaults (no config file)")
	}
	fmt.Println()

	fmt.Println("  [Server]")
	fmt.Printf("    URL:     %s (%s)\n", serverURL(), serverSource(cfg))
	if d := cfg.Server.Timeout(); d > 0 {
		fmt.Printf("    Timeout: %s\n", d)
	} else {
		fmt.Println("    Timeout: none")
	}
	fmt.Println()

	fmt.Println("  [Chart]")
	variant, err := resolveVariant()
	if err != nil {
		fmt.Printf("    Variant: %q (invalid)\n", cfg.Chart.Variant)
	} else {
		fmt.Printf("    Variant: %s\n", variant)
	}
	if cfg.Chart.Width > 0 || cfg.Chart.Height > 0 {
		fmt.Printf("    Image:   %dx%d px\n", cfg.Chart.Width, cfg.Chart.Height)
	}
	fmt.Println()

	fmt.Println("  [Appearance]")
	fmt.Printf("    Theme: %s\n", cfg.Appearance.Theme)
	fmt.Println()

	fmt.Println("  [Form]")
	if cfg.Form.Preset != "" {
		fmt.Printf("    Preset: %s\n", cfg.Form.Preset)
	}
	in, err := buildInput()
	if err != nil {
		fmt.Printf("    Error: %v\n", err)
	} else {
		for _, f := range in.Fields() {
			fmt.Printf("    %-20s %s\n", f.Name, f.Value)
		}
	}
	fmt.Println()

	fmt.Println("  Run `fireplot setup` to reconfigure.")
	return nil
}

func serverSource(cfg config.Config) string {
	switch {
	case flagServer != "":
		return "flag"
	case os.Getenv(config.EnvServer) != "":
		return config.EnvServer
	case cfg.Server.BaseURL != "":
		return "config"
	default:
		return "default"
	}
}
