package daemon

import (
	"github.com/spf13/cobra"

	"github.com/orbitrollup/batch-submitter/batch-submitter/config"
	"github.com/orbitrollup/batch-submitter/version"
)

// NewRootCmd creates a new root command for batchd. It is called once in the main function.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "batchd",
		Short:         "A daemon program that submits rollup batches to the base chain (batchd).",
		SilenceErrors: false,
	}

	rootCmd.PersistentFlags().String(homeFlag, config.DefaultBatchdDir, "The application home directory")

	rootCmd.AddCommand(
		NewInitCmd(),
		NewStartCmd(),
		version.CommandVersion("batchd"),
	)

	return rootCmd
}
