// Package info implements the "info" subcommand: module version and host
// platform, per spec.md §6.
package info

import (
	"fmt"
	"runtime"
	"runtime/debug"

	"github.com/spf13/cobra"
)

// NewCommand builds the info subcommand.
func NewCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "info",
		Short: "Print module version and host information",
		RunE:  run,
	}
}

func run(cmd *cobra.Command, _ []string) error {
	version := "(unknown)"
	if bi, ok := debug.ReadBuildInfo(); ok && bi.Main.Version != "" {
		version = bi.Main.Version
	}

	fmt.Fprintf(cmd.OutOrStdout(), "ddldiff %s\n", version)
	fmt.Fprintf(cmd.OutOrStdout(), "platform: %s/%s\n", runtime.GOOS, runtime.GOARCH)
	fmt.Fprintf(cmd.OutOrStdout(), "go: %s\n", runtime.Version())
	return nil
}
