// Package config provides the config parent command and subcommands.
package config

import (
	"github.com/spf13/cobra"

	"github.com/leefowlercu/docexport/cmd/config/subcommands"
)

// ConfigCmd is the parent command for all config-related subcommands.
var ConfigCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage docexport configuration",
	Long: "Manage docexport configuration.\n\n" +
		"The config command allows you to view, validate, and create the docexport " +
		"configuration. Configuration is stored in a YAML file located at " +
		"~/.config/docexport/config.yaml by default.",
	// Overrides the root hook so an invalid config file can still be inspected.
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
}

func init() {
	ConfigCmd.AddCommand(subcommands.ShowCmd)
	ConfigCmd.AddCommand(subcommands.ValidateCmd)
	ConfigCmd.AddCommand(subcommands.InitCmd)
}
