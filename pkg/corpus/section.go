package corpus

import (
	"iter"

	"github.com/pkg/errors"

	"github.com/sanskrit-coders/ashtadhyayi/pkg/naming"
)

type Section struct {
	Metadata Metadata

	chapter  string
	section  string
	settings settings
	items    *members[*Item]
}

// NewSection returns a section bound to dir, or unbound when dir is empty.
func NewSection(chapter, section, dir string, opts ...Option) (*Section, error) {
	s := newSettings(opts)
	if dir == "" {
		return &Section{Metadata: s.metadata, chapter: chapter, section: section, settings: s, items: newMembers[*Item](s.memberCache)}, nil
	}
	return newSection(chapter, section, dir, s)
}

func newSection(chapter, section, dir string, s settings) (*Section, error) {
	sec := &Section{
		Metadata: s.metadata,
		chapter:  chapter,
		section:  section,
		settings: s,
		items:    newMembers[*Item](s.memberCache),
	}
	if err := sec.Load(dir); err != nil {
		return nil, err
	}
	return sec, nil
}

// Load (re)binds the section to dir. Files reporting another chapter or section are skipped.
func (s *Section) Load(dir string) error {
	strategy := s.settings.strategy

	names, err := scan(s.settings.fs, dir, false, func(name string) (string, string, bool) {
		comps := strategy.ItemFileComponents(name)
		if !comps.Agrees(naming.Chapter, s.chapter) || !comps.Agrees(naming.Section, s.section) {
			return "", "", false
		}
		item, ok := comps.Get(naming.Item)
		return item, name, ok
	})
	if err != nil {
		return errors.Wrapf(err, "load section %s", s.Index())
	}

	s.items.reset(dir, names)
	s.settings.log.Tracef("Loaded section %s from %s: %d items", s.Index(), dir, len(names))
	return nil
}

func (s *Section) ChapterIndex() string {
	return s.chapter
}

func (s *Section) SectionIndex() string {
	return s.section
}

func (s *Section) Index() string {
	return naming.JoinIndex(s.chapter, s.section)
}

func (s *Section) Dir() string {
	dir, _ := s.items.path()
	return dir
}

// Item returns nil, nil when id is unknown or the section is unbound.
func (s *Section) Item(id string) (*Item, error) {
	it, _, err := s.items.get(id, func(dir, name string) (*Item, error) {
		return newItem(s.chapter, s.section, id, s.settings.fs.Join(dir, name), s.settings.child()), nil
	})
	return it, err
}

func (s *Section) ItemIDs(reverse bool) []string {
	return s.items.ids(reverse)
}

func (s *Section) Len() int {
	return s.items.len()
}

func (s *Section) Items(reverse bool) iter.Seq2[*Item, error] {
	return children(func() []string { return s.items.ids(reverse) }, s.Item)
}
