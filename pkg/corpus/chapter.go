package corpus

import (
	"iter"

	"github.com/pkg/errors"

	"github.com/sanskrit-coders/ashtadhyayi/pkg/naming"
)

type Chapter struct {
	Metadata Metadata

	chapter  string
	settings settings
	sections *members[*Section]
}

// NewChapter returns a chapter bound to dir, or unbound when dir is empty.
func NewChapter(chapter, dir string, opts ...Option) (*Chapter, error) {
	s := newSettings(opts)
	if dir == "" {
		return &Chapter{Metadata: s.metadata, chapter: chapter, settings: s, sections: newMembers[*Section](s.memberCache)}, nil
	}
	return newChapter(chapter, dir, s)
}

func newChapter(chapter, dir string, s settings) (*Chapter, error) {
	c := &Chapter{
		Metadata: s.metadata,
		chapter:  chapter,
		settings: s,
		sections: newMembers[*Section](s.memberCache),
	}
	if err := c.Load(dir); err != nil {
		return nil, err
	}
	return c, nil
}

// Load (re)binds the chapter to dir. Section directories reporting another chapter are skipped.
func (c *Chapter) Load(dir string) error {
	strategy := c.settings.strategy

	names, err := scan(c.settings.fs, dir, true, func(name string) (string, string, bool) {
		comps := strategy.SectionDirComponents(name)
		if !comps.Agrees(naming.Chapter, c.chapter) {
			return "", "", false
		}
		sec, ok := comps.Get(naming.Section)
		return sec, name, ok
	})
	if err != nil {
		return errors.Wrapf(err, "load chapter %s", c.Index())
	}

	c.sections.reset(dir, names)
	c.settings.log.Tracef("Loaded chapter %s from %s: %d sections", c.Index(), dir, len(names))
	return nil
}

func (c *Chapter) ChapterIndex() string {
	return c.chapter
}

func (c *Chapter) Index() string {
	return naming.JoinIndex(c.chapter)
}

func (c *Chapter) Dir() string {
	dir, _ := c.sections.path()
	return dir
}

// Section returns nil, nil when id is unknown or the chapter is unbound.
func (c *Chapter) Section(id string) (*Section, error) {
	sec, _, err := c.sections.get(id, func(dir, name string) (*Section, error) {
		return newSection(c.chapter, id, c.settings.fs.Join(dir, name), c.settings.child())
	})
	return sec, err
}

func (c *Chapter) SectionIDs(reverse bool) []string {
	return c.sections.ids(reverse)
}

func (c *Chapter) Len() int {
	return c.sections.len()
}

func (c *Chapter) Sections(reverse bool) iter.Seq2[*Section, error] {
	return children(func() []string { return c.sections.ids(reverse) }, c.Section)
}
