package cmd

import (
	"github.com/spf13/cobra"

	"github.com/sanskrit-coders/ashtadhyayi/pkg/export"
	"github.com/sanskrit-coders/ashtadhyayi/pkg/expression"
	"github.com/sanskrit-coders/ashtadhyayi/pkg/logger"
)

func ExportCommand() *cobra.Command {
	var (
		filters  []string
		anyMatch bool
	)

	command := &cobra.Command{
		Use:   "export [DB] [VRITTI...]",
		Short: "Export vrittis into a SQLite database",
		Long:  `Write the items of each named vritti, or of every vritti in the repository, into the items table of a SQLite database.`,
		Example: `  ashtadhyayi export corpus.db
  ashtadhyayi export corpus.db kashika --filter 'Chapter == "1"'`,
		Args: cobra.MinimumNArgs(1),
	}

	command.Flags().StringArrayVarP(&filters, "filter", "f", nil, "Filter expression (repeatable, all must match)")
	command.Flags().BoolVar(&anyMatch, "any", false, "Keep items matching any filter instead of all")

	command.RunE = func(cmd *cobra.Command, args []string) error {
		initCore()
		log := logger.GetLogger("export")

		filter, err := expression.NewFilter(filters, anyMatch)
		if err != nil {
			return err
		}

		vrittis := args[1:]
		if len(vrittis) == 0 {
			if vrittis, err = vrittiDirs(); err != nil {
				return err
			}
		}

		if FlagDryRun {
			log.Infof("Dry run: would export %v into %s", vrittis, args[0])
			return nil
		}

		db, err := export.Open(args[0])
		if err != nil {
			return err
		}
		defer db.Close()

		for _, vritti := range vrittis {
			c, err := openCorpus(vritti)
			if err != nil {
				return err
			}
			n, err := export.Items(cmd.Context(), db, c, filter)
			if err != nil {
				return err
			}
			log.Infof("Exported %d items of %s", n, vritti)
		}
		return nil
	}

	return command
}
