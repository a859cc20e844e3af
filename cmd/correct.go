package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/sanskrit-coders/ashtadhyayi/pkg/correction"
	"github.com/sanskrit-coders/ashtadhyayi/pkg/logger"
)

func CorrectCommand() *cobra.Command {
	command := &cobra.Command{
		Use:   "correct",
		Short: "Repair stray () markers in commentary files",
		Long:  `Build an editable replacement list of words containing (), then apply the corrected list.`,
	}

	command.AddCommand(correctBuildCommand(), correctApplyCommand())
	return command
}

func correctBuildCommand() *cobra.Command {
	var output string

	command := &cobra.Command{
		Use:     "build [FOLDER]",
		Short:   "Write the replacement list for a commentary folder",
		Example: `  ashtadhyayi correct build ./ashtadhyayi/nyasa -o replacements.txt`,
		Args:    cobra.ExactArgs(1),
	}

	command.Flags().StringVarP(&output, "output", "o", "", "Write the list to this file instead of stdout")

	command.RunE = func(cmd *cobra.Command, args []string) error {
		initCore()
		log := logger.GetLogger("correct")

		w := cmd.OutOrStdout()
		if output != "" {
			f, err := os.Create(output)
			if err != nil {
				return err
			}
			defer f.Close()
			w = f
		}

		n, err := correction.BuildReplacementList(args[0], w)
		if err != nil {
			return err
		}
		log.Infof("Collected %d words", n)
		return nil
	}

	return command
}

func correctApplyCommand() *cobra.Command {
	command := &cobra.Command{
		Use:     "apply [FOLDER] [LIST]",
		Short:   "Apply an edited replacement list to a commentary folder",
		Example: `  ashtadhyayi correct apply ./ashtadhyayi/nyasa replacements.txt --dry-run`,
		Args:    cobra.ExactArgs(2),
	}

	command.RunE = func(cmd *cobra.Command, args []string) error {
		initCore()
		log := logger.GetLogger("correct")

		f, err := os.Open(args[1])
		if err != nil {
			return err
		}
		defer f.Close()

		reps, err := correction.ReadReplacementList(f)
		if err != nil {
			return err
		}

		n, err := correction.ApplyReplacementList(args[0], reps, FlagDryRun)
		if err != nil {
			return err
		}
		log.Infof("Corrected %d files with %d replacements", n, len(reps))
		return nil
	}

	return command
}
