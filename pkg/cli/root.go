// Package cli implements the sens-scan command tree.
package cli

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"sens-scan/internal/config"
)

var (
	version = "dev"
	commit  = "none"
)

// Execute runs the CLI and returns the process exit code.
func Execute() int {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

// app is the state shared by subcommands once the root has resolved
// configuration.
type app struct {
	cfg    *config.Config
	logger *slog.Logger
}

func newRootCmd() *cobra.Command {
	var (
		envFile  string
		logLevel string
	)
	a := &app{}

	rootCmd := &cobra.Command{
		Use:           "sens-scan",
		Short:         "Sensitive column discovery",
		Long:          "Scans a database catalog, classifies columns as sensitive and writes an anonymization rule dictionary.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if err := config.LoadDotEnv(envFile); err != nil {
				return err
			}
			a.cfg = config.LoadFromEnv()

			// flag > env > default
			if cmd.Flags().Changed("log-level") {
				a.cfg.LogLevel = logLevel
			}
			a.logger = newLogger(cmd.ErrOrStderr(), a.cfg.SlogLevel())
			for _, w := range a.cfg.Warnings {
				a.logger.Warn(w)
			}
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file loaded before reading the environment")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: debug, info, warn, error (env LOG_LEVEL)")

	rootCmd.AddCommand(newCreateDictCmd(a))
	rootCmd.AddCommand(newValidatePolicyCmd(a))
	rootCmd.AddCommand(newVersionCmd())

	return rootCmd
}

// newLogger writes text logs to a terminal and JSON logs otherwise.
func newLogger(w io.Writer, level slog.Level) *slog.Logger {
	opts := &slog.HandlerOptions{Level: level}
	if f, ok := w.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		return slog.New(slog.NewTextHandler(w, opts))
	}
	return slog.New(slog.NewJSONHandler(w, opts))
}
