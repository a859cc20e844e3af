package transform

import (
	"context"
	"fmt"
	"os"
	"sort"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/util"
	"github.com/ohler55/ojg/oj"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/sanskrit-coders/ashtadhyayi/pkg/logger"
	"github.com/sanskrit-coders/ashtadhyayi/pkg/naming"
	"github.com/sanskrit-coders/ashtadhyayi/pkg/repowriter"
)

const DataFile = "data.txt"

// Commentaries exported in bulk by ashtadhyayi.com, one <name>.txt each.
var Commentaries = []string{
	"balamanorama", "bhashya", "kashika", "kaumudi", "laghukaumudi", "nyaas",
	"padamanjari", "sutrartha", "sutrartha_english", "tattvabodhini", "vartika",
}

// Sutra is one row of data.txt.
type Sutra struct {
	// Key is the row id used to key the commentary files.
	Key     string
	Chapter string
	Section string
	Item    string
	Text    string
}

func (s Sutra) Index() string {
	return naming.JoinIndex(s.Chapter, s.Section, s.Item)
}

type Separator struct {
	fs     billy.Filesystem
	writer *repowriter.Writer
	log    *logrus.Entry
}

func NewSeparator(fs billy.Filesystem, w *repowriter.Writer) *Separator {
	return &Separator{
		fs:     fs,
		writer: w,
		log:    logger.GetLogger("separate"),
	}
}

// ReadSutras parses data.txt: {"data":[{"i":..,"a":..,"p":..,"n":..,"s":..}]}.
func (s *Separator) ReadSutras(path string) ([]Sutra, error) {
	raw, err := util.ReadFile(s.fs, path)
	if err != nil {
		return nil, errors.Wrapf(err, "read %s", path)
	}

	v, err := oj.Parse(raw)
	if err != nil {
		return nil, errors.Wrapf(err, "parse %s", path)
	}
	root, ok := v.(map[string]any)
	if !ok {
		return nil, errors.Errorf("%s: expected an object", path)
	}
	rows, ok := root["data"].([]any)
	if !ok {
		return nil, errors.Errorf("%s: missing data array", path)
	}

	sutras := make([]Sutra, 0, len(rows))
	for n, r := range rows {
		row, ok := r.(map[string]any)
		if !ok {
			return nil, errors.Errorf("%s: row %d is not an object", path, n)
		}
		sutras = append(sutras, Sutra{
			Key:     scalar(row["i"]),
			Chapter: scalar(row["a"]),
			Section: scalar(row["p"]),
			Item:    scalar(row["n"]),
			Text:    scalar(row["s"]),
		})
	}
	return sutras, nil
}

// ReadCommentary parses <name>.txt, mapping a sutra key to its comment, or to comments keyed by
// sub-commentary. Sub-commentaries come back under "<name>/<sub>".
func (s *Separator) ReadCommentary(dir, name string) (map[string]map[string]string, error) {
	path := s.fs.Join(dir, name+".txt")
	raw, err := util.ReadFile(s.fs, path)
	if err != nil {
		return nil, errors.Wrapf(err, "read %s", path)
	}

	v, err := oj.Parse(raw)
	if err != nil {
		return nil, errors.Wrapf(err, "parse %s", path)
	}
	comments, ok := v.(map[string]any)
	if !ok {
		return nil, errors.Errorf("%s: expected an object", path)
	}

	// target directory -> sutra key -> comment
	out := make(map[string]map[string]string)
	put := func(target, key, comment string) {
		if out[target] == nil {
			out[target] = make(map[string]string)
		}
		out[target][key] = comment
	}

	for key, c := range comments {
		switch comment := c.(type) {
		case string:
			put(name, key, comment)
		case map[string]any:
			for sub, sc := range comment {
				put(name+"/"+sub, key, scalar(sc))
			}
		case nil:
		default:
			s.log.Warnf("%s: ignoring %T comment for %s", path, c, key)
		}
	}
	return out, nil
}

// Separate writes one markdown file per sutra and commentary found in indir.
// A commentary whose file is missing is skipped. It returns files written per target directory.
func (s *Separator) Separate(ctx context.Context, indir string, commentaries []string) (map[string]int, error) {
	sutras, err := s.ReadSutras(s.fs.Join(indir, DataFile))
	if err != nil {
		return nil, err
	}

	written := make(map[string]int)
	for _, name := range commentaries {
		comments, err := s.ReadCommentary(indir, name)
		if errors.Is(err, os.ErrNotExist) {
			s.log.Warnf("No %s.txt in %s", name, indir)
			continue
		} else if err != nil {
			return written, err
		}

		targets := make([]string, 0, len(comments))
		for target := range comments {
			targets = append(targets, target)
		}
		sort.Strings(targets)

		for _, target := range targets {
			for _, sutra := range sutras {
				if err := ctx.Err(); err != nil {
					return written, err
				}

				comment, ok := comments[target][sutra.Key]
				if !ok {
					continue
				}
				body, err := Markdownify(comment)
				if err != nil {
					return written, errors.Wrapf(err, "%s %s", target, sutra.Index())
				}

				ok, err = s.writer.WriteItem(target, repowriter.Entry{
					ID:    sutra.Index(),
					Sutra: sutra.Text,
					Body:  body,
				})
				if err != nil {
					return written, err
				}
				if ok {
					written[target]++
				}
			}
		}
		s.log.Infof("Separated %s", name)
	}

	return written, nil
}

func scalar(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	default:
		return fmt.Sprint(t)
	}
}
