package cmd

import (
	"fmt"

	"github.com/sanskrit-coders/ashtadhyayi/pkg/runtime"

	"github.com/spf13/cobra"
)

func VersionCommand() *cobra.Command {
	command := &cobra.Command{
		Use:   "version",
		Short: "Print version info",
		Long:  `Print version info`,
		Example: `  ashtadhyayi version
  ashtadhyayi version --help`,
	}

	command.RunE = func(cmd *cobra.Command, args []string) error {
		fmt.Fprintf(cmd.OutOrStdout(), "ashtadhyayi version: %s commit: %s built at: %s\n",
			runtime.Version, runtime.GitCommit, runtime.Timestamp)
		return nil
	}

	return command
}
