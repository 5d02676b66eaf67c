package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/nao1215/sitescribe/internal/log"
)

// NewRootCmd creates the root command for sitescribe.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sitescribe",
		Short: "Crawl a website and write its content as one Markdown document",
		Long: `sitescribe crawls a single website breadth-first from a seed URL,
extracts the main content of every page on the same host, converts it to
Markdown and concatenates the sections into one document.

Crawls are recorded in a local history database so that later crawls of
the same site can be compared page by page.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")
	cmd.PersistentFlags().String("log-file", "", "Also write logs to a rotating file")

	cmd.AddCommand(NewCrawlCmd())
	cmd.AddCommand(NewHistoryCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// getVerboseFlag retrieves the verbose flag from the command or its parent.
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		verbose, err = cmd.Root().PersistentFlags().GetBool("verbose")
		if err != nil {
			return false
		}
	}
	return verbose
}

// getLogFileFlag retrieves the log-file flag from the command or its parent.
func getLogFileFlag(cmd *cobra.Command) string {
	logFile, err := cmd.Flags().GetString("log-file")
	if err != nil {
		logFile, err = cmd.Root().PersistentFlags().GetString("log-file")
		if err != nil {
			return ""
		}
	}
	return logFile
}

// setupLogger creates the sanitizing logger for a command and installs it
// as the slog default. The returned closer releases the log file, if any.
func setupLogger(cmd *cobra.Command) (*slog.Logger, io.Closer) {
	logger, closer := log.NewLogger(cmd.ErrOrStderr(), log.Options{
		Verbose: getVerboseFlag(cmd),
		LogFile: getLogFileFlag(cmd),
	})
	slog.SetDefault(logger)
	return logger, closer
}
