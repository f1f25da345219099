// Package ddldiff wires the diff-headless and info subcommands into a
// single cobra.Command tree, the way the teacher's cmd/packagemigrator
// assembles its own subcommands under one root.
package ddldiff

import (
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ddldiff/ddldiff/cmd/ddldiff/diffheadless"
	"github.com/ddldiff/ddldiff/cmd/ddldiff/info"
)

const envPrefix = "DDLDIFF"

var rootCmd = &cobra.Command{
	Use:   "ddldiff",
	Short: "PostgreSQL schema differ and DDL generator",
	Long: `ddldiff compares two PostgreSQL schema snapshots and emits an ordered
list of DDL statements that transform one into the other.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return cmd.Help()
	},
}

// Execute adds all child commands to the root command and runs it. It is
// called once by main.main(); a non-zero process exit follows any command
// failure, per spec.md §6's exit code contract.
func Execute(args ...string) {
	viper.AutomaticEnv()
	viper.SetEnvPrefix(envPrefix)

	rootCmd.SetArgs(args)
	rootCmd.AddCommand(diffheadless.NewCommand())
	rootCmd.AddCommand(info.NewCommand())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1) //revive:disable-line:deep-exit
	}
}
