package cmd

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/sanskrit-coders/ashtadhyayi/pkg/config"
	"github.com/sanskrit-coders/ashtadhyayi/pkg/logger"
	"github.com/sanskrit-coders/ashtadhyayi/pkg/repowriter"
)

func repoWriter() (*repowriter.Writer, error) {
	if cfg.RepoPath == "" {
		return nil, config.ErrNoCorpus
	}
	strategy, err := cfg.Strategy()
	if err != nil {
		return nil, err
	}
	return repowriter.New(hostFS, hostPath(cfg.RepoPath),
		repowriter.WithStrategy(strategy),
		repowriter.WithTxtVrittis(cfg.TxtVrittis...),
		repowriter.WithDryRun(FlagDryRun),
	), nil
}

func DumpCommand() *cobra.Command {
	var source string

	command := &cobra.Command{
		Use:   "dump [VRITTI]",
		Short: "Write one vritti of every dumped sutra into the repository",
		Long:  `Write the named field of every sutra payload into <repo_path>/<vritti>, refetching payloads that are missing.`,
		Example: `  ashtadhyayi dump kashika
  ashtadhyayi dump padachcheda --dry-run`,
		Args: cobra.ExactArgs(1),
	}

	command.Flags().StringVarP(&source, "source", "s", config.SourceAshtadhyayiCom, "Source used to refetch missing dumps")

	command.RunE = func(cmd *cobra.Command, args []string) error {
		initCore()
		log := logger.GetLogger("dump")
		start := time.Now()
		vritti := args[0]

		w, err := repoWriter()
		if err != nil {
			return err
		}
		idx, err := loadIndex()
		if err != nil {
			return err
		}
		store, err := dumpStore(source)
		if err != nil {
			return err
		}

		st, err := w.DumpVritti(cmd.Context(), vritti, idx, store)
		if err != nil {
			return finishJob("dump", start, err)
		}
		jobMetrics.RecordItems("dump", vritti, st.Written, len(st.Failed))

		log.Infof("Wrote %s files (%s), skipped %d empty", humanize.Comma(int64(st.Written)),
			humanize.IBytes(uint64(st.Bytes)), st.Skipped)
		if len(st.Failed) > 0 {
			log.Warnf("Failed %d sutras: %v", len(st.Failed), st.Failed)
		}

		notifyFailures(cmd.Context(), fmt.Sprintf("Dump %s", vritti),
			fmt.Sprintf("Wrote %d files, skipped %d empty", st.Written, st.Skipped), vritti, st.Failed, start)
		return finishJob("dump", start, nil)
	}

	return command
}

func PruneCommand() *cobra.Command {
	var source string

	command := &cobra.Command{
		Use:   "prune [VRITTI]",
		Short: "Remove files whose vritti body is empty",
		Long:  `Delete the repository files of sutras whose payload has an empty body for the named vritti.`,
		Example: `  ashtadhyayi prune kashika --dry-run`,
		Args:    cobra.ExactArgs(1),
	}

	command.Flags().StringVarP(&source, "source", "s", config.SourceAshtadhyayiCom, "Source used to refetch missing dumps")

	command.RunE = func(cmd *cobra.Command, args []string) error {
		initCore()
		log := logger.GetLogger("prune")
		start := time.Now()

		w, err := repoWriter()
		if err != nil {
			return err
		}
		idx, err := loadIndex()
		if err != nil {
			return err
		}
		store, err := dumpStore(source)
		if err != nil {
			return err
		}

		st, err := w.PruneEmpty(cmd.Context(), args[0], idx, store)
		if err != nil {
			return finishJob("prune", start, err)
		}
		jobMetrics.RecordItems("prune", args[0], st.Removed, len(st.Failed))

		log.Infof("Removed %d files (%s)", st.Removed, humanize.IBytes(uint64(st.Bytes)))
		if len(st.Failed) > 0 {
			log.Warnf("Failed %d sutras: %v", len(st.Failed), st.Failed)
		}

		notifyFailures(cmd.Context(), fmt.Sprintf("Prune %s", args[0]),
			fmt.Sprintf("Removed %d files", st.Removed), args[0], st.Failed, start)
		return finishJob("prune", start, nil)
	}

	return command
}
