package cmd

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/sanskrit-coders/ashtadhyayi/pkg/config"
	"github.com/sanskrit-coders/ashtadhyayi/pkg/logger"
)

func FetchCommand() *cobra.Command {
	var source string

	command := &cobra.Command{
		Use:   "fetch [ID...]",
		Short: "Download per-sutra JSON payloads into the dump directory",
		Long:  `Download the JSON payload of the given sutra ids, or of every id in the master index, into dump_path.`,
		Example: `  ashtadhyayi fetch
  ashtadhyayi fetch 1.1.1 1.1.2 --source ashtadhyayi_org`,
	}

	command.Flags().StringVarP(&source, "source", "s", config.SourceAshtadhyayiCom, "Source to fetch from")

	command.RunE = func(cmd *cobra.Command, args []string) error {
		initCore()
		log := logger.GetLogger("fetch")
		start := time.Now()

		store, err := dumpStore(source)
		if err != nil {
			return err
		}

		ids := args
		if len(ids) == 0 {
			idx, err := loadIndex()
			if err != nil {
				return err
			}
			ids = idx.IDs()
		}

		if FlagDryRun {
			log.Infof("Dry run: would fetch %s sutras from %s", humanize.Comma(int64(len(ids))), source)
			return nil
		}

		res, err := store.DumpAll(cmd.Context(), ids)
		if err != nil {
			return finishJob("fetch", start, err)
		}
		jobMetrics.RecordItems("fetch", "", res.Saved, len(res.Failed))

		log.Infof("Fetched %s of %s sutras", humanize.Comma(int64(res.Saved)), humanize.Comma(int64(len(ids))))
		if len(res.Failed) > 0 {
			log.Warnf("Failed fetching %d sutras: %v", len(res.Failed), res.Failed)
		}

		notifyFailures(cmd.Context(), fmt.Sprintf("Fetch from %s", source),
			fmt.Sprintf("Fetched %d of %d sutras", res.Saved, len(ids)), "", res.Failed, start)
		return finishJob("fetch", start, nil)
	}

	return command
}
