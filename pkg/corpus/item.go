package corpus

import (
	"sync"
	"unicode/utf8"

	"github.com/go-git/go-billy/v5/util"
	"github.com/pkg/errors"

	"github.com/sanskrit-coders/ashtadhyayi/pkg/frontmatter"
	"github.com/sanskrit-coders/ashtadhyayi/pkg/naming"
)

var ErrNotUTF8 = errors.New("content is not valid UTF-8")

// Item is a single file. Its raw text and its parsed document are cached independently.
type Item struct {
	Metadata Metadata

	chapter  string
	section  string
	item     string
	settings settings

	mu      sync.RWMutex
	path    string
	text    *string
	current *frontmatter.Document
}

// NewItem returns an item backed by path, or unbound when path is empty.
func NewItem(chapter, section, item, path string, opts ...Option) *Item {
	s := newSettings(opts)
	it := newItem(chapter, section, item, path, s)
	it.Metadata = s.metadata
	return it
}

func newItem(chapter, section, item, path string, s settings) *Item {
	return &Item{
		chapter:  chapter,
		section:  section,
		item:     item,
		settings: s,
		path:     path,
	}
}

// Load rebinds the item to path and drops both caches.
func (it *Item) Load(path string) {
	it.mu.Lock()
	defer it.mu.Unlock()

	it.path = path
	it.text = nil
	it.current = nil
}

func (it *Item) ChapterIndex() string {
	return it.chapter
}

func (it *Item) SectionIndex() string {
	return it.section
}

func (it *Item) ItemIndex() string {
	return it.item
}

func (it *Item) Index() string {
	return naming.JoinIndex(it.chapter, it.section, it.item)
}

func (it *Item) Path() string {
	it.mu.RLock()
	defer it.mu.RUnlock()
	return it.path
}

// Text returns the file content. ok is false only when the item is unbound.
// Read and decode failures carry the file path.
func (it *Item) Text(cache bool) (text string, ok bool, err error) {
	it.mu.RLock()
	path, cached := it.path, it.text
	it.mu.RUnlock()

	if path == "" {
		return "", false, nil
	}
	if cache && cached != nil {
		return *cached, true, nil
	}

	text, err = it.read(path)
	if err != nil {
		return "", true, err
	}

	if cache {
		it.mu.Lock()
		if it.path == path {
			it.text = &text
		}
		it.mu.Unlock()
	}
	return text, true, nil
}

// Parsed returns the front matter and body of the file, or nil when the item is unbound.
// A cached raw text is reused but Parsed never fills the text cache itself.
// A cached document is shared between callers and must not be modified.
func (it *Item) Parsed(cache bool) (*frontmatter.Document, error) {
	it.mu.RLock()
	path, cachedText, cachedDoc := it.path, it.text, it.current
	it.mu.RUnlock()

	if path == "" {
		return nil, nil
	}
	if cache && cachedDoc != nil {
		return cachedDoc, nil
	}

	var text string
	if cache && cachedText != nil {
		text = *cachedText
	} else {
		var err error
		if text, err = it.read(path); err != nil {
			return nil, err
		}
	}

	doc := frontmatter.Parse(text)
	if cache {
		it.mu.Lock()
		if it.path == path {
			it.current = doc
		}
		it.mu.Unlock()
	}
	return doc, nil
}

func (it *Item) read(path string) (string, error) {
	data, err := util.ReadFile(it.settings.fs, path)
	if err != nil {
		return "", errors.Wrapf(err, "read item %s", path)
	}
	if !utf8.Valid(data) {
		return "", errors.Wrapf(ErrNotUTF8, "read item %s", path)
	}

	it.settings.log.Tracef("Read item %s (%d bytes)", path, len(data))
	return string(data), nil
}
