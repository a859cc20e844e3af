package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/sanskrit-coders/ashtadhyayi/cmd"
)

func main() {
	var rootCmd = &cobra.Command{
		Use:   "ashtadhyayi",
		Short: "A CLI for the Ashtadhyayi sutra corpus",
		Long: `A CLI application that reads, builds and maintains per-sutra commentary directories.
`,
		SilenceUsage: true,
	}

	// Parse persistent flags
	rootCmd.PersistentFlags().StringVar(&cmd.FlagConfigFolder, "config-dir", cmd.FlagConfigFolder, "Config folder")
	rootCmd.PersistentFlags().StringVarP(&cmd.FlagConfigFile, "config", "c", cmd.FlagConfigFile, "Config file")
	rootCmd.PersistentFlags().StringVarP(&cmd.FlagLogFile, "log", "l", cmd.FlagLogFile, "Log file")
	rootCmd.PersistentFlags().CountVarP(&cmd.FlagLogLevel, "verbose", "v", "Verbose level")

	rootCmd.PersistentFlags().BoolVar(&cmd.FlagDryRun, "dry-run", false, "Dry run mode")
	rootCmd.PersistentFlags().StringVar(&cmd.FlagMetricsFile, "metrics-file", "", "Write job metrics to this textfile")

	rootCmd.AddCommand(cmd.ListCommand())
	rootCmd.AddCommand(cmd.ShowCommand())
	rootCmd.AddCommand(cmd.StatsCommand())
	rootCmd.AddCommand(cmd.FetchCommand())
	rootCmd.AddCommand(cmd.DumpCommand())
	rootCmd.AddCommand(cmd.PruneCommand())
	rootCmd.AddCommand(cmd.SeparateCommand())
	rootCmd.AddCommand(cmd.CorrectCommand())
	rootCmd.AddCommand(cmd.ExportCommand())
	rootCmd.AddCommand(cmd.VersionCommand())

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
