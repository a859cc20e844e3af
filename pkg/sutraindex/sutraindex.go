// Package sutraindex reads the master tab separated index of sutras (sutrANi.tsv).
package sutraindex

import (
	"encoding/csv"
	"io"
	"os"
	"strings"

	"github.com/pkg/errors"
	"github.com/scylladb/go-set/strset"

	"github.com/sanskrit-coders/ashtadhyayi/pkg/naming"
)

const (
	ColumnID    = "id"
	ColumnSutra = "sutra"
)

var (
	ErrMissingColumn = errors.New("missing column")
	ErrDuplicateID   = errors.New("duplicate id")
	ErrBadID         = errors.New("malformed sutra id")
)

type Entry struct {
	ID     string
	Sutra  string
	Fields map[string]string
}

// Index keeps entries in file order.
type Index struct {
	entries []Entry
	byID    map[string]int
	ids     *strset.Set
}

func Load(path string) (*Index, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "open index %s", path)
	}
	defer f.Close()

	idx, err := Read(f)
	if err != nil {
		return nil, errors.Wrapf(err, "read index %s", path)
	}
	return idx, nil
}

// Read parses a TSV whose header names an id column; every other column is kept in Entry.Fields.
func Read(r io.Reader) (*Index, error) {
	cr := csv.NewReader(r)
	cr.Comma = '\t'
	cr.LazyQuotes = true
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err == io.EOF {
		return nil, errors.Wrap(ErrMissingColumn, ColumnID)
	} else if err != nil {
		return nil, errors.Wrap(err, "header")
	}
	for i := range header {
		header[i] = strings.TrimSpace(strings.TrimPrefix(header[i], "\ufeff"))
	}

	idCol, sutraCol := -1, -1
	for i, name := range header {
		switch name {
		case ColumnID:
			idCol = i
		case ColumnSutra:
			sutraCol = i
		}
	}
	if idCol < 0 {
		return nil, errors.Wrap(ErrMissingColumn, ColumnID)
	}

	idx := &Index{
		byID: make(map[string]int),
		ids:  strset.New(),
	}

	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrap(err, "record")
		}
		if idCol >= len(record) || strings.TrimSpace(record[idCol]) == "" {
			continue
		}

		e := Entry{
			ID:     strings.TrimSpace(record[idCol]),
			Fields: make(map[string]string, len(header)),
		}
		for i, name := range header {
			if i < len(record) && i != idCol && name != "" {
				e.Fields[name] = record[i]
			}
		}
		if sutraCol >= 0 && sutraCol < len(record) {
			e.Sutra = strings.TrimSpace(record[sutraCol])
		}

		if idx.ids.Has(e.ID) {
			line, _ := cr.FieldPos(idCol)
			return nil, errors.Wrapf(ErrDuplicateID, "%s on line %d", e.ID, line)
		}
		idx.ids.Add(e.ID)
		idx.byID[e.ID] = len(idx.entries)
		idx.entries = append(idx.entries, e)
	}

	return idx, nil
}

// IDs returns ids in file order.
func (x *Index) IDs() []string {
	out := make([]string, len(x.entries))
	for i, e := range x.entries {
		out[i] = e.ID
	}
	return out
}

func (x *Index) Len() int {
	return len(x.entries)
}

func (x *Index) Has(id string) bool {
	return x.ids.Has(id)
}

func (x *Index) Entry(id string) (Entry, bool) {
	i, ok := x.byID[id]
	if !ok {
		return Entry{}, false
	}
	return x.entries[i], true
}

func (x *Index) Sutra(id string) (string, bool) {
	e, ok := x.Entry(id)
	return e.Sutra, ok
}

// Split breaks "a.p.n" into its chapter, section and item components.
func Split(id string) (chapter, section, item string, err error) {
	parts := naming.SplitIndex(id)
	if len(parts) != 3 {
		return "", "", "", errors.Wrapf(ErrBadID, "%q", id)
	}
	for _, p := range parts {
		if p == "" {
			return "", "", "", errors.Wrapf(ErrBadID, "%q", id)
		}
	}
	return parts[0], parts[1], parts[2], nil
}

// SectionID maps "1.2.3" to "1.2".
func SectionID(id string) (string, error) {
	chapter, section, _, err := Split(id)
	if err != nil {
		return "", err
	}
	return naming.JoinIndex(chapter, section), nil
}
