// Package repowriter lays out per-sutra commentary files in the directory convention read by package corpus.
package repowriter

import (
	"context"
	"os"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/util"
	"github.com/pkg/errors"
	"github.com/scylladb/go-set/strset"
	"github.com/sirupsen/logrus"

	"github.com/sanskrit-coders/ashtadhyayi/pkg/frontmatter"
	"github.com/sanskrit-coders/ashtadhyayi/pkg/logger"
	"github.com/sanskrit-coders/ashtadhyayi/pkg/naming"
	"github.com/sanskrit-coders/ashtadhyayi/pkg/sutraapi"
	"github.com/sanskrit-coders/ashtadhyayi/pkg/sutraindex"
)

const (
	ExtMarkdown = "md"
	ExtText     = "txt"
)

/* Structs */

// Entry is one file to write. Empty Sutra, Vritti and VrittiIndex are left out of the header.
type Entry struct {
	ID          string
	Sutra       string
	Vritti      string
	VrittiIndex string
	Body        string
}

type Writer struct {
	fs       billy.Filesystem
	root     string
	strategy naming.Strategy
	txt      *strset.Set
	dryRun   bool
	log      *logrus.Entry
}

type Stats struct {
	Written int
	Skipped int
	Removed int
	Bytes   int64
	Failed  []string
}

// RecordSource supplies parsed payloads, usually a sutraapi.DumpStore.
type RecordSource interface {
	Load(ctx context.Context, id string) (*sutraapi.Record, error)
}

type Option func(*Writer)

/* Options */

func WithStrategy(s naming.Strategy) Option {
	return func(w *Writer) {
		if s != nil {
			w.strategy = s
		}
	}
}

// WithTxtVrittis names the terse vrittis written as bare .txt files.
func WithTxtVrittis(vrittis ...string) Option {
	return func(w *Writer) {
		w.txt = strset.New(vrittis...)
	}
}

func WithDryRun(dryRun bool) Option {
	return func(w *Writer) {
		w.dryRun = dryRun
	}
}

/* Public */

func New(fs billy.Filesystem, root string, opts ...Option) *Writer {
	w := &Writer{
		fs:       fs,
		root:     root,
		strategy: naming.Default(),
		txt:      strset.New(),
		log:      logger.GetLogger("writer"),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

func (w *Writer) Extension(vritti string) string {
	if w.txt.Has(vritti) {
		return ExtText
	}
	return ExtMarkdown
}

// OutputPath is <root>/<dir>/<section-dir>/<item-file>.<ext>, with the extension chosen from dir.
func (w *Writer) OutputPath(dir, id string) (string, error) {
	chapter, section, item, err := sutraindex.Split(id)
	if err != nil {
		return "", err
	}

	return w.fs.Join(
		w.root,
		dir,
		w.strategy.ChapterDirName(chapter),
		w.strategy.SectionDirName(chapter, section),
		w.strategy.ItemFileName(chapter, section, item, w.Extension(dir)),
	), nil
}

// Render returns the file content for ext: a front matter header then the body for
// markdown, the bare body otherwise.
func Render(e Entry, ext string) string {
	if ext != ExtMarkdown {
		return e.Body
	}

	doc := &frontmatter.Document{Content: e.Body}
	doc.Set("index", e.ID)
	if e.Sutra != "" {
		doc.Set("sutra", e.Sutra)
	}
	if e.Vritti != "" {
		doc.Set("vritti", e.Vritti)
	}
	if e.VrittiIndex != "" {
		doc.Set("vrittiindex", e.VrittiIndex)
	}
	return frontmatter.Format(doc)
}

// WriteItem writes e under dir. An empty body is skipped and reported as not written.
func (w *Writer) WriteItem(dir string, e Entry) (bool, error) {
	if e.Body == "" {
		w.log.Warnf("Skipping %s: empty %s", e.ID, dir)
		return false, nil
	}

	path, err := w.OutputPath(dir, e.ID)
	if err != nil {
		return false, err
	}
	content := Render(e, w.Extension(dir))

	if w.dryRun {
		w.log.Infof("Dry run: would write %s (%d bytes)", path, len(content))
		return true, nil
	}

	if err := w.fs.MkdirAll(w.fs.Join(path, ".."), 0o755); err != nil {
		return false, errors.Wrapf(err, "create directory for %s", path)
	}
	if err := util.WriteFile(w.fs, path, []byte(content), 0o644); err != nil {
		return false, errors.Wrapf(err, "write %s", path)
	}

	w.log.Tracef("Wrote %s", path)
	return true, nil
}

// Remove deletes the file of id under dir; a missing file is not an error.
func (w *Writer) Remove(dir, id string) (int64, bool, error) {
	path, err := w.OutputPath(dir, id)
	if err != nil {
		return 0, false, err
	}

	info, err := w.fs.Stat(path)
	if errors.Is(err, os.ErrNotExist) {
		return 0, false, nil
	} else if err != nil {
		return 0, false, errors.Wrapf(err, "stat %s", path)
	}

	if w.dryRun {
		w.log.Infof("Dry run: would remove %s", path)
		return info.Size(), true, nil
	}
	if err := w.fs.Remove(path); err != nil {
		return 0, false, errors.Wrapf(err, "remove %s", path)
	}

	w.log.Debugf("Removed %s", path)
	return info.Size(), true, nil
}

// DumpVritti writes the vritti field of every indexed sutra. Per-sutra failures are collected in Stats.
func (w *Writer) DumpVritti(ctx context.Context, vritti string, idx *sutraindex.Index, src RecordSource) (Stats, error) {
	var st Stats

	for _, id := range idx.IDs() {
		if err := ctx.Err(); err != nil {
			return st, err
		}

		rec, err := src.Load(ctx, id)
		if err != nil {
			w.log.WithError(err).Errorf("Failed loading %s", id)
			st.Failed = append(st.Failed, id)
			continue
		}

		body, _ := rec.Field(vritti)
		vrittiIndex, _ := rec.VrittiIndex(vritti)
		sutra, _ := idx.Sutra(id)

		e := Entry{ID: id, Sutra: sutra, Vritti: vritti, VrittiIndex: vrittiIndex, Body: body}
		written, err := w.WriteItem(vritti, e)
		switch {
		case err != nil:
			w.log.WithError(err).Errorf("Failed writing %s", id)
			st.Failed = append(st.Failed, id)
		case written:
			st.Written++
			st.Bytes += int64(len(Render(e, w.Extension(vritti))))
		default:
			st.Skipped++
		}
	}

	return st, nil
}

// PruneEmpty removes the files of sutras whose vritti body is empty in the source.
func (w *Writer) PruneEmpty(ctx context.Context, vritti string, idx *sutraindex.Index, src RecordSource) (Stats, error) {
	var st Stats

	for _, id := range idx.IDs() {
		if err := ctx.Err(); err != nil {
			return st, err
		}

		rec, err := src.Load(ctx, id)
		if err != nil {
			w.log.WithError(err).Errorf("Failed loading %s", id)
			st.Failed = append(st.Failed, id)
			continue
		}
		if body, _ := rec.Field(vritti); body != "" {
			continue
		}

		size, removed, err := w.Remove(vritti, id)
		if err != nil {
			w.log.WithError(err).Errorf("Failed pruning %s", id)
			st.Failed = append(st.Failed, id)
			continue
		}
		if removed {
			st.Removed++
			st.Bytes += size
		}
	}

	return st, nil
}
