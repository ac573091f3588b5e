package subcommands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/leefowlercu/docexport/internal/config"
)

var (
	showRaw bool
)

// ShowCmd displays the current configuration.
var ShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Display the current configuration",
	Long: "Display the current configuration.\n\n" +
		"Shows the effective docexport configuration with defaults and environment " +
		"overrides applied. Use --raw to show the config file as written.",
	Example: `  # Show effective configuration
  docexport config show

  # Show the config file contents
  docexport config show --raw`,
	PreRunE: validateShow,
	RunE:    runShow,
}

func init() {
	ShowCmd.Flags().BoolVar(&showRaw, "raw", false, "Show the config file contents instead of effective values")
}

func validateShow(cmd *cobra.Command, args []string) error {
	// All errors after this are runtime errors
	cmd.SilenceUsage = true
	return nil
}

func runShow(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	if showRaw {
		path := configPath()
		data, err := os.ReadFile(path)
		if err != nil {
			if os.IsNotExist(err) {
				fmt.Fprintln(out, "# No configuration file found")
				fmt.Fprintf(out, "# Default location: %s\n", path)
				return nil
			}
			return fmt.Errorf("failed to read config file; %w", err)
		}

		fmt.Fprintf(out, "# Configuration file: %s\n", path)
		fmt.Fprintln(out, string(data))
		return nil
	}

	cfg, path, err := config.Load()
	if err != nil {
		return err
	}

	data, err := config.Marshal(cfg)
	if err != nil {
		return err
	}

	if path == "" {
		path = "(none, defaults)"
	}
	fmt.Fprintln(out, "# Effective configuration (with defaults)")
	fmt.Fprintf(out, "# Config file: %s\n", path)
	fmt.Fprintln(out, string(data))
	return nil
}

// configPath returns the config file in use, or the default location.
func configPath() string {
	if dir := os.Getenv("DOCEXPORT_CONFIG_DIR"); dir != "" {
		return dir + string(os.PathSeparator) + "config.yaml"
	}
	return config.DefaultConfigPath()
}
