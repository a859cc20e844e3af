// Package naming converts between structural indices (chapter, section, item) and
// the directory and file names a corpus is laid out with.
package naming

import (
	"strings"
)

// Component keys reported by a Strategy.
const (
	Chapter = "chapter"
	Section = "section"
	Item    = "item"
)

// Components holds the structural indices encoded in a single directory or file name.
// An empty Components means the name did not match.
type Components map[string]string

// Get returns the component and whether the strategy reported it.
func (c Components) Get(key string) (string, bool) {
	v, ok := c[key]
	return v, ok
}

// Agrees reports whether the component is either unreported or equal to want.
func (c Components) Agrees(key string, want string) bool {
	v, ok := c[key]
	return !ok || v == want
}

// Strategy is the contract between the corpus tree and a directory layout.
type Strategy interface {
	// ChapterDirComponents extracts indices from a directory directly under the corpus root.
	ChapterDirComponents(name string) Components
	// SectionDirComponents extracts indices from a directory under a chapter directory.
	SectionDirComponents(name string) Components
	// ItemFileComponents extracts indices from a file under a section directory.
	ItemFileComponents(name string) Components

	// ChapterDirName returns the chapter directory name; empty means the chapter
	// level has no directory of its own and resolves to the corpus root.
	ChapterDirName(chapter string) string
	SectionDirName(chapter, section string) string
	// ItemFileName returns the item file name; ext is appended when non-empty.
	ItemFileName(chapter, section, item, ext string) string
}

// SplitIndex splits a composite index such as "1.2.3" into its components.
func SplitIndex(index string) []string {
	if index == "" {
		return nil
	}
	return strings.Split(index, ".")
}

// JoinIndex builds a composite index from its components.
func JoinIndex(parts ...string) string {
	return strings.Join(parts, ".")
}
