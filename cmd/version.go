package cmd

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
)

var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// NewVersionCommand prints the build information of the binary called name
func NewVersionCommand(name string) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "%s\nVersion: %s\nCommit: %s\nBuild Date: %s\nGo Version: %s\n",
				name, Version, Commit, Date, runtime.Version())
		},
	}
}
