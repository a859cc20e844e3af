package cmd

import (
	"github.com/spf13/cobra"

	"github.com/sanskrit-coders/ashtadhyayi/pkg/logger"
	"github.com/sanskrit-coders/ashtadhyayi/pkg/repowriter"
	"github.com/sanskrit-coders/ashtadhyayi/pkg/transform"
)

func SeparateCommand() *cobra.Command {
	var commentaries []string

	command := &cobra.Command{
		Use:   "separate [INDIR] [OUTDIR]",
		Short: "Split bulk commentary exports into per-sutra markdown files",
		Long:  `Read data.txt and one <commentary>.txt per commentary from INDIR and write one markdown file per sutra under OUTDIR.`,
		Example: `  ashtadhyayi separate ./export ./ashtadhyayi
  ashtadhyayi separate ./export ./ashtadhyayi --commentary kashika --commentary nyaas`,
		Args: cobra.ExactArgs(2),
	}

	command.Flags().StringSliceVar(&commentaries, "commentary", transform.Commentaries, "Commentaries to separate")

	command.RunE = func(cmd *cobra.Command, args []string) error {
		initCore()
		log := logger.GetLogger("separate")

		strategy, err := cfg.Strategy()
		if err != nil {
			return err
		}
		w := repowriter.New(hostFS, hostPath(args[1]),
			repowriter.WithStrategy(strategy),
			repowriter.WithDryRun(FlagDryRun),
		)

		written, err := transform.NewSeparator(hostFS, w).Separate(cmd.Context(), hostPath(args[0]), commentaries)
		for target, n := range written {
			log.Infof("%s: %d files", target, n)
		}
		return err
	}

	return command
}
