package cmd

import (
	"fmt"
	"os"
	"sort"

	"github.com/theirongolddev/fireplot/internal/config"
	"github.com/theirongolddev/fireplot/internal/form"
	"github.com/theirongolddev/fireplot/internal/logging"
	"github.com/theirongolddev/fireplot/internal/plotclient"
	"github.com/theirongolddev/fireplot/internal/projection"
	"github.com/theirongolddev/fireplot/internal/tui/theme"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	flagServer  string
	flagVariant string
	flagInputs  string
	flagSet     []string
	flagQuiet   bool
	flagDebug   bool

	// Loaded once per invocation by the root PersistentPreRunE.
	appConfig config.Config
)

var rootCmd = &cobra.Command{
	Use:   "fireplot",
	Short: "FIRE projection charts",
	Long: "Submit retirement-calculator inputs to a projection server and chart the\n" +
		"principal, contributions and monthly take-home it returns.",
	RunE:              runPlot,
	PersistentPreRunE: loadConfig,
	SilenceErrors:     true,
	SilenceUsage:      true,
}

// Execute is the main entry point called from main.go.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		// Cycle errors are already on screen in the page's error format.
		if !isShownError(err) {
			fmt.Fprintf(os.Stderr, "  Error: %v\n", err)
		}
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&flagServer, "server", "s", "", "Projection server URL (overrides config and "+config.EnvServer+")")
	rootCmd.PersistentFlags().StringVarP(&flagVariant, "variant", "V", "", "Chart variant: single or dual")
	rootCmd.PersistentFlags().StringVarP(&flagInputs, "inputs", "i", "", "YAML file of form values")
	rootCmd.PersistentFlags().StringArrayVar(&flagSet, "set", nil, "Set a form field (name=value, repeatable)")
	rootCmd.PersistentFlags().BoolVarP(&flagQuiet, "quiet", "q", false, "Suppress progress output")
	rootCmd.PersistentFlags().BoolVar(&flagDebug, "debug", false, "Verbose logging")
}

func loadConfig(_ *cobra.Command, _ []string) error {
	if err := config.LoadEnv(); err != nil && !flagQuiet {
		fmt.Fprintf(os.Stderr, "  Warning: %v\n", err)
	}

	cfg, err := config.Load()
	if err != nil {
		// A broken config file should not block plotting.
		if !flagQuiet {
			fmt.Fprintf(os.Stderr, "  Warning: %v (using defaults)\n", err)
		}
		cfg = config.DefaultConfig()
	}
	appConfig = cfg
	theme.SetActive(cfg.Appearance.Theme)
	return nil
}

// serverURL resolves the server from the flag, environment and config.
func serverURL() string {
	if flagServer != "" {
		return flagServer
	}
	return config.GetServerURL(appConfig)
}

func newClient() (*plotclient.Client, error) {
	var opts []plotclient.Option
	if d := appConfig.Server.Timeout(); d > 0 {
		opts = append(opts, plotclient.WithTimeout(d))
	}
	return plotclient.NewClient(serverURL(), opts...)
}

func resolveVariant() (projection.Variant, error) {
	if flagVariant != "" {
		return projection.ParseVariant(flagVariant)
	}
	return projection.ParseVariant(appConfig.Chart.Variant)
}

// buildInput layers the form values: calculator defaults, config defaults,
// the preset file and finally --set assignments.
func buildInput() (form.Input, error) {
	in := form.Defaults()

	keys := make([]string, 0, len(appConfig.Form.Defaults))
	for k := range appConfig.Form.Defaults {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		in.Set(k, appConfig.Form.Defaults[k])
	}

	preset := flagInputs
	if preset == "" {
		preset = appConfig.Form.Preset
	}
	if preset != "" {
		p, err := form.LoadYAML(preset)
		if err != nil {
			return form.Input{}, err
		}
		in = in.Merge(p)
	}

	for _, s := range flagSet {
		f, err := form.ParseAssignment(s)
		if err != nil {
			return form.Input{}, err
		}
		in.Set(f.Name, f.Value)
	}
	return in, nil
}

func newLogger(path string) *zap.Logger {
	return logging.Must(logging.Options{Debug: flagDebug, Quiet: flagQuiet, Path: path})
}
