// Command ragctl runs the document pipeline against local PDFs without the
// HTTP server, and tails pipeline events from NATS.
package main

import (
	"os"

	"research-rag-be/internal/config"
	"research-rag-be/internal/pkg/logger"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	verbose   bool
	cfg       *config.Config
	sysLogger logger.ILogger
)

var (
	heading = color.New(color.FgCyan, color.Bold).SprintFunc()
	dim     = color.New(color.FgHiBlack).SprintFunc()
	warn    = color.New(color.FgYellow).SprintFunc()
)

var rootCmd = &cobra.Command{
	Use:          "ragctl",
	Short:        "Inspect and query research papers from the command line",
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		cfg = config.Load()
		sysLogger = logger.NewConsoleLogger(verbose)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
