// Package correction repairs stray "()" markers left in commentary files by the source export.
//
// The fix is two-pass: BuildReplacementList collects every affected word into an editable
// pre:post:file list, and ApplyReplacementList applies the hand-corrected list.
package correction

import (
	"bufio"
	"io"
	"os"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/pkg/errors"
	"github.com/scylladb/go-set/strset"

	"github.com/sanskrit-coders/ashtadhyayi/pkg/logger"
	"github.com/sanskrit-coders/ashtadhyayi/pkg/paths"
)

const Marker = "()"

type Replacement struct {
	Pre  string
	Post string
	File string
}

var log = logger.GetLogger("correction")

// commentaryFiles lists the *.md files one directory below folder (folder/<section>/<file>.md).
func commentaryFiles(folder string) ([]paths.Path, error) {
	files, _, err := paths.InFolder(folder, true, false, paths.AtDepth(folder, 2, paths.WithExtension(".md")))
	return files, err
}

// BuildReplacementList writes one "word:word:file" line per distinct word containing the marker,
// naming the first file it was seen in relative to the parent of folder.
func BuildReplacementList(folder string, w io.Writer) (int, error) {
	files, err := commentaryFiles(folder)
	if err != nil {
		return 0, err
	}

	seen := strset.New()
	bw := bufio.NewWriter(w)
	base := filepath.Dir(filepath.Clean(folder))

	for _, f := range files {
		data, err := os.ReadFile(f.RealPath)
		if err != nil {
			return seen.Size(), errors.Wrapf(err, "read %s", f.RealPath)
		}

		rel, err := filepath.Rel(base, f.RealPath)
		if err != nil {
			rel = f.RealPath
		}

		for _, word := range splitWords(strings.TrimRightFunc(string(data), unicode.IsSpace)) {
			if !strings.Contains(word, Marker) || seen.Has(word) {
				continue
			}
			seen.Add(word)
			if _, err := bw.WriteString(word + ":" + word + ":" + filepath.ToSlash(rel) + "\n"); err != nil {
				return seen.Size(), errors.Wrap(err, "write replacement list")
			}
		}
	}

	log.Debugf("Collected %d words from %d files", seen.Size(), len(files))
	return seen.Size(), errors.Wrap(bw.Flush(), "write replacement list")
}

// ReadReplacementList parses pre:post:file lines; blank lines are ignored.
func ReadReplacementList(r io.Reader) ([]Replacement, error) {
	var out []Replacement

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 1024*1024)
	for n := 1; sc.Scan(); n++ {
		line := strings.TrimRight(sc.Text(), "\r\n ")
		if line == "" {
			continue
		}
		parts := strings.Split(line, ":")
		if len(parts) != 3 {
			return nil, errors.Errorf("line %d: expected pre:post:file, got %q", n, line)
		}
		out = append(out, Replacement{Pre: parts[0], Post: parts[1], File: parts[2]})
	}
	if err := sc.Err(); err != nil {
		return nil, errors.Wrap(err, "read replacement list")
	}
	return out, nil
}

// ApplyReplacementList applies every replacement, in order, to every commentary file under folder
// and returns how many files changed.
func ApplyReplacementList(folder string, reps []Replacement, dryRun bool) (int, error) {
	files, err := commentaryFiles(folder)
	if err != nil {
		return 0, err
	}

	changed := 0
	for _, f := range files {
		data, err := os.ReadFile(f.RealPath)
		if err != nil {
			return changed, errors.Wrapf(err, "read %s", f.RealPath)
		}

		text := string(data)
		for _, r := range reps {
			if r.Pre == "" {
				continue
			}
			text = strings.ReplaceAll(text, r.Pre, r.Post)
		}
		if text == string(data) {
			continue
		}

		changed++
		if dryRun {
			log.Infof("Dry run: would correct %s", f.RealPath)
			continue
		}
		if err := os.WriteFile(f.RealPath, []byte(text), 0o644); err != nil {
			return changed, errors.Wrapf(err, "write %s", f.RealPath)
		}
		log.Debugf("Corrected %s", f.RealPath)
	}

	return changed, nil
}

func splitWords(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == '`' || unicode.IsSpace(r)
	})
}
