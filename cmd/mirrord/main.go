// Command mirrord hosts the wire vocabulary: it loads configuration, binds the
// diagnostics bridge to the Prometheus net stats collector and serves the
// metrics endpoint until interrupted.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
)

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "mirrord",
		Short:         "Game networking wire vocabulary and diagnostics host",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.AddCommand(
		serveCmd(),
		opcodesCmd(),
		versionCmd(),
	)
	return rootCmd
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "mirrord %s (%s)\n", version, commit)
		},
	}
}
