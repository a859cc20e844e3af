// Package corpus is a lazily materialized, filesystem backed view of one commentary tradition:
// Corpus -> Chapter -> Section -> Item.
//
// Each node lists its own directory once when it is bound and builds children on demand.
// Lookups of unknown ids return nil without an error.
package corpus

import (
	"iter"

	"github.com/go-git/go-billy/v5"
	"github.com/pkg/errors"

	"github.com/sanskrit-coders/ashtadhyayi/pkg/naming"
)

var (
	ErrRootNotFound = errors.New("directory does not exist")
	ErrNotDirectory = errors.New("not a directory")
	ErrBadIndex     = errors.New("malformed composite index")
)

type Corpus struct {
	Name     string
	Metadata Metadata

	settings settings
	chapters *members[*Chapter]
}

// New returns a corpus bound to root. An empty root leaves it unbound until Load.
func New(name, root string, opts ...Option) (*Corpus, error) {
	s := newSettings(opts)
	c := &Corpus{
		Name:     name,
		Metadata: s.metadata,
		settings: s,
		chapters: newMembers[*Chapter](s.memberCache),
	}

	if root == "" {
		return c, nil
	}
	if err := c.Load(root); err != nil {
		return nil, err
	}
	return c, nil
}

// Load (re)binds the corpus to root: the chapter map is rebuilt from a fresh listing and
// every previously built chapter is dropped.
func (c *Corpus) Load(root string) error {
	strategy := c.settings.strategy

	names, err := scan(c.settings.fs, root, true, func(name string) (string, string, bool) {
		ch, ok := strategy.ChapterDirComponents(name).Get(naming.Chapter)
		if !ok {
			return "", "", false
		}
		// an empty canonical name means the chapter level resolves to the corpus root
		if strategy.ChapterDirName(ch) == "" {
			return ch, "", true
		}
		return ch, name, true
	})
	if err != nil {
		return errors.Wrapf(err, "load corpus %q", c.Name)
	}

	c.chapters.reset(root, names)
	c.settings.log.Tracef("Loaded corpus %q from %s: %d chapters", c.Name, root, len(names))
	return nil
}

func (c *Corpus) Root() string {
	root, _ := c.chapters.path()
	return root
}

func (c *Corpus) Bound() bool {
	_, bound := c.chapters.path()
	return bound
}

func (c *Corpus) Strategy() naming.Strategy {
	return c.settings.strategy
}

func (c *Corpus) FS() billy.Filesystem {
	return c.settings.fs
}

// Chapter returns nil, nil when id is unknown or the corpus is unbound.
func (c *Corpus) Chapter(id string) (*Chapter, error) {
	ch, _, err := c.chapters.get(id, func(dir, name string) (*Chapter, error) {
		return newChapter(id, c.settings.fs.Join(dir, name), c.settings.child())
	})
	return ch, err
}

func (c *Corpus) ChapterIDs(reverse bool) []string {
	return c.chapters.ids(reverse)
}

func (c *Corpus) Len() int {
	return c.chapters.len()
}

// Chapters yields chapters in numeric order. Every range takes a fresh ordering of the
// scanned ids, so the sequence may be ranged over any number of times and follows rebinds.
func (c *Corpus) Chapters(reverse bool) iter.Seq2[*Chapter, error] {
	return children(func() []string { return c.chapters.ids(reverse) }, c.Chapter)
}

// Lookup resolves a composite "chapter.section.item" index.
func (c *Corpus) Lookup(index string) (*Item, error) {
	parts := naming.SplitIndex(index)
	if len(parts) != 3 || parts[0] == "" || parts[1] == "" || parts[2] == "" {
		return nil, errors.Wrapf(ErrBadIndex, "%q", index)
	}

	ch, err := c.Chapter(parts[0])
	if err != nil || ch == nil {
		return nil, err
	}
	sec, err := ch.Section(parts[1])
	if err != nil || sec == nil {
		return nil, err
	}
	return sec.Item(parts[2])
}

// LookupSection resolves a composite "chapter.section" index.
func (c *Corpus) LookupSection(index string) (*Section, error) {
	parts := naming.SplitIndex(index)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return nil, errors.Wrapf(ErrBadIndex, "%q", index)
	}

	ch, err := c.Chapter(parts[0])
	if err != nil || ch == nil {
		return nil, err
	}
	return ch.Section(parts[1])
}

// Items yields every item of the corpus in reading order.
func (c *Corpus) Items(reverse bool) iter.Seq2[*Item, error] {
	return func(yield func(*Item, error) bool) {
		for ch, err := range c.Chapters(reverse) {
			if err != nil {
				if !yield(nil, err) {
					return
				}
				continue
			}
			for sec, err := range ch.Sections(reverse) {
				if err != nil {
					if !yield(nil, err) {
						return
					}
					continue
				}
				for it, err := range sec.Items(reverse) {
					if !yield(it, err) {
						return
					}
				}
			}
		}
	}
}

// Walk calls fn for every item in order and stops at the first error.
func (c *Corpus) Walk(fn func(*Item) error) error {
	for it, err := range c.Items(false) {
		if err != nil {
			return err
		}
		if err := fn(it); err != nil {
			return err
		}
	}
	return nil
}

// children adapts an id listing and a lookup into an ordered sequence. ids is called
// once per range. Ids that disappear through a concurrent rebind are skipped.
func children[T any](ids func() []string, lookup func(string) (*T, error)) iter.Seq2[*T, error] {
	return func(yield func(*T, error) bool) {
		for _, id := range ids() {
			child, err := lookup(id)
			if err == nil && child == nil {
				continue
			}
			if !yield(child, err) {
				return
			}
		}
	}
}
