package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	configcmd "github.com/leefowlercu/docexport/cmd/config"
	"github.com/leefowlercu/docexport/cmd/send"
	"github.com/leefowlercu/docexport/cmd/serve"
	"github.com/leefowlercu/docexport/cmd/version"
	"github.com/leefowlercu/docexport/internal/config"
	"github.com/leefowlercu/docexport/internal/logging"
)

// logManager is the global logging manager, created in init() and upgraded after config loads
var logManager *logging.Manager

var docexportCmd = &cobra.Command{
	Use:   "docexport",
	Short: "Send tabular documents to Google Drive as spreadsheets",
	Long: "docexport renders tabular documents as Excel workbooks and uploads them to Google Drive, " +
		"where they are converted into native Google Spreadsheets.\n\n" +
		"Run 'docexport serve' to expose the send-to-drive HTTP endpoint, or 'docexport send' " +
		"to export a single document from the command line.",
	PersistentPreRunE: runInitialize,
}

func init() {
	logManager = logging.NewManager()
	slog.SetDefault(logManager.Logger())

	docexportCmd.AddCommand(serve.ServeCmd)
	docexportCmd.AddCommand(send.SendCmd)
	docexportCmd.AddCommand(configcmd.ConfigCmd)
	docexportCmd.AddCommand(version.VersionCmd)
}

func runInitialize(cmd *cobra.Command, args []string) error {
	logger := logManager.Logger()

	if err := config.Init(); err != nil {
		return err
	}

	cfg := config.Get()
	level, ok := logging.ParseLevel(cfg.LogLevel)
	if !ok {
		logger.Warn("invalid log level configured, using default", "configured", cfg.LogLevel, "default", "info")
	}

	fileOpts := logging.FileOptions{
		Path:       config.ExpandPath(cfg.LogFile),
		MaxSizeMB:  cfg.LogMaxSizeMB,
		MaxBackups: cfg.LogMaxBackups,
		MaxAgeDays: cfg.LogMaxAgeDays,
	}
	if err := logManager.Upgrade(fileOpts, level); err != nil {
		logger.Warn("failed to enable file logging, continuing with stderr only", "error", err)
		logManager.SetLevel(level)
	}

	return nil
}

// Execute runs the root command.
func Execute() error {
	docexportCmd.SilenceErrors = true
	docexportCmd.SilenceUsage = true

	defer func() { _ = logManager.Close() }()

	err := docexportCmd.Execute()

	if err != nil {
		cmd, _, _ := docexportCmd.Find(os.Args[1:])
		if cmd == nil {
			cmd = docexportCmd
		}

		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		if !cmd.SilenceUsage {
			fmt.Fprintf(os.Stderr, "\n")
			cmd.SetOut(os.Stderr)
			_ = cmd.Usage()
		}

		return err
	}

	return nil
}
