package cmd

import (
	"fmt"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/sanskrit-coders/ashtadhyayi/pkg/expression"
	"github.com/sanskrit-coders/ashtadhyayi/pkg/logger"
)

const previewWidth = 48

func ListCommand() *cobra.Command {
	var (
		filters  []string
		anyMatch bool
		reverse  bool
		limit    int
	)

	command := &cobra.Command{
		Use:   "list [VRITTI]",
		Short: "List the sutras of a vritti",
		Long:  `List every item of a vritti directory in reading order, optionally filtered by expressions.`,
		Example: `  ashtadhyayi list kashika
  ashtadhyayi list kashika --filter 'Chapter == "1" && Length > 100'
  ashtadhyayi list kashika --any -f 'Index == "1.1.1"' -f 'Has("sutra") == false'`,
		Args: cobra.ExactArgs(1),
	}

	command.Flags().StringArrayVarP(&filters, "filter", "f", nil, "Filter expression (repeatable, all must match)")
	command.Flags().BoolVar(&anyMatch, "any", false, "Keep items matching any filter instead of all")
	command.Flags().BoolVarP(&reverse, "reverse", "r", false, "Reverse order")
	command.Flags().IntVarP(&limit, "limit", "n", 0, "Stop after this many items")

	command.RunE = func(cmd *cobra.Command, args []string) error {
		initCore()
		log := logger.GetLogger("list")

		filter, err := expression.NewFilter(filters, anyMatch)
		if err != nil {
			return err
		}

		c, err := openCorpus(args[0])
		if err != nil {
			return err
		}

		t := table.NewWriter()
		t.SetOutputMirror(cmd.OutOrStdout())
		t.SetStyle(table.StyleLight)
		t.AppendHeader(table.Row{"Index", "Sutra", "Length", "Content"})

		shown := 0
		for it, err := range c.Items(reverse) {
			if err != nil {
				return err
			}

			env, err := expression.NewEnv(c.Name, it)
			if err != nil {
				log.WithError(err).Warnf("Skipping %s", it.Index())
				continue
			}
			ok, err := filter.Match(env)
			if err != nil {
				return err
			}
			if !ok {
				continue
			}

			t.AppendRow(table.Row{env.Index, env.Meta["sutra"], env.Length, preview(env.Content)})
			shown++
			if limit > 0 && shown >= limit {
				break
			}
		}

		t.AppendFooter(table.Row{"", "", "", fmt.Sprintf("%d items", shown)})
		t.Render()
		return nil
	}

	return command
}

func ShowCommand() *cobra.Command {
	var raw bool

	command := &cobra.Command{
		Use:   "show [VRITTI] [INDEX]",
		Short: "Print one sutra of a vritti",
		Long:  `Print the front matter and body of the item at a composite index such as 1.1.1.`,
		Example: `  ashtadhyayi show kashika 1.1.1
  ashtadhyayi show kashika 1.1.1 --raw`,
		Args: cobra.ExactArgs(2),
	}

	command.Flags().BoolVar(&raw, "raw", false, "Print the file as stored")

	command.RunE = func(cmd *cobra.Command, args []string) error {
		initCore()

		c, err := openCorpus(args[0])
		if err != nil {
			return err
		}

		it, err := c.Lookup(args[1])
		if err != nil {
			return err
		}
		if it == nil {
			return fmt.Errorf("no item %s in %s", args[1], c.Name)
		}

		if raw {
			text, _, err := it.Text(false)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), text)
			return nil
		}

		doc, err := it.Parsed(false)
		if err != nil {
			return err
		}

		t := table.NewWriter()
		t.SetOutputMirror(cmd.OutOrStdout())
		t.SetStyle(table.StyleLight)
		t.AppendHeader(table.Row{"Field", "Value"})
		t.AppendRow(table.Row{"path", it.Path()})
		for _, f := range doc.Fields {
			t.AppendRow(table.Row{f.Key, f.Value})
		}
		t.Render()

		fmt.Fprintf(cmd.OutOrStdout(), "\n%s\n", doc.Content)
		return nil
	}

	return command
}

func preview(content string) string {
	content = strings.Join(strings.Fields(content), " ")
	runes := []rune(content)
	if len(runes) <= previewWidth {
		return content
	}
	return string(runes[:previewWidth]) + "..."
}
