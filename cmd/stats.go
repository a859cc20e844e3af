package cmd

import (
	"os"

	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/sanskrit-coders/ashtadhyayi/pkg/paths"
)

func StatsCommand() *cobra.Command {
	command := &cobra.Command{
		Use:   "stats [VRITTI...]",
		Short: "Summarise vritti directories",
		Long:  `Count chapters, sections and items of each vritti, with the size of its files on disk.`,
		Example: `  ashtadhyayi stats
  ashtadhyayi stats kashika nyasa`,
	}

	command.RunE = func(cmd *cobra.Command, args []string) error {
		initCore()

		vrittis := args
		if len(vrittis) == 0 {
			all, err := vrittiDirs()
			if err != nil {
				return err
			}
			vrittis = all
		}

		t := table.NewWriter()
		t.SetOutputMirror(cmd.OutOrStdout())
		t.SetStyle(table.StyleLight)
		t.AppendHeader(table.Row{"Vritti", "Chapters", "Sections", "Items", "Files", "Size"})

		var (
			totalItems int
			totalSize  uint64
		)
		for _, vritti := range vrittis {
			c, err := openCorpus(vritti)
			if err != nil {
				log.WithError(err).Warnf("Skipping %s", vritti)
				continue
			}

			sections, items := 0, 0
			for ch, err := range c.Chapters(false) {
				if err != nil {
					return err
				}
				for sec, err := range ch.Sections(false) {
					if err != nil {
						return err
					}
					sections++
					items += sec.Len()
				}
			}

			files, size, err := paths.InFolder(c.Root(), true, false, nil)
			if err != nil {
				return err
			}

			totalItems += items
			totalSize += size
			t.AppendRow(table.Row{
				vritti,
				c.Len(),
				sections,
				humanize.Comma(int64(items)),
				humanize.Comma(int64(len(files))),
				humanize.IBytes(size),
			})
		}

		t.AppendFooter(table.Row{"", "", "", humanize.Comma(int64(totalItems)), "", humanize.IBytes(totalSize)})
		t.Render()
		return nil
	}

	return command
}

// vrittiDirs lists the non-hidden directories of the repository.
func vrittiDirs() ([]string, error) {
	root, err := cfg.CorpusPath("")
	if err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, err
	}

	var out []string
	for _, e := range entries {
		if e.IsDir() && e.Name()[0] != '.' {
			out = append(out, e.Name())
		}
	}
	return out, nil
}
