package naming

import (
	"strings"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/sanskrit-coders/ashtadhyayi/pkg/logger"
	"github.com/sanskrit-coders/ashtadhyayi/pkg/regex"
)

const (
	DefaultChapterDir    = `^pada-(?<chapter>[0-9]+)`
	DefaultSectionDir    = `^pada-(?<chapter>[0-9]+)\.(?<section>[0-9]+)$`
	DefaultItemFile      = `^(?<chapter>[0-9]+)\.(?<section>[0-9]+)\.(?<item>[0-9]+)(\..+)?$`
	DefaultChapterFormat = ""
	DefaultSectionFormat = "pada-{chapter}.{section}"
	DefaultItemFormat    = "{chapter}.{section}.{item}"
)

/* Structs */

// PatternConfig describes a Strategy through three matchers and three name templates.
// Templates substitute {chapter}, {section} and {item}.
type PatternConfig struct {
	ChapterDir    string `koanf:"chapter_dir"`
	SectionDir    string `koanf:"section_dir"`
	ItemFile      string `koanf:"item_file"`
	ChapterFormat string `koanf:"chapter_format"`
	SectionFormat string `koanf:"section_format"`
	ItemFormat    string `koanf:"item_format"`
}

// PatternStrategy is the regex driven Strategy shipped with the corpus.
type PatternStrategy struct {
	chapterDir *regex.Pattern
	sectionDir *regex.Pattern
	itemFile   *regex.Pattern

	chapterFormat string
	sectionFormat string
	itemFormat    string

	log *logrus.Entry
}

/* Vars */

var defaultStrategy = MustPattern(DefaultPatternConfig())

/* Public */

func DefaultPatternConfig() PatternConfig {
	return PatternConfig{
		ChapterDir:    DefaultChapterDir,
		SectionDir:    DefaultSectionDir,
		ItemFile:      DefaultItemFile,
		ChapterFormat: DefaultChapterFormat,
		SectionFormat: DefaultSectionFormat,
		ItemFormat:    DefaultItemFormat,
	}
}

// Default returns the strategy for the single pass-through chapter layout:
// root/pada-A.P/A.P.N.ext
func Default() Strategy {
	return defaultStrategy
}

// WithDefaults fills every empty matcher and the section and item templates from the default layout.
// ChapterFormat is left alone since empty is meaningful there.
func (c PatternConfig) WithDefaults() PatternConfig {
	d := DefaultPatternConfig()
	if c.ChapterDir == "" {
		c.ChapterDir = d.ChapterDir
	}
	if c.SectionDir == "" {
		c.SectionDir = d.SectionDir
	}
	if c.ItemFile == "" {
		c.ItemFile = d.ItemFile
	}
	if c.SectionFormat == "" {
		c.SectionFormat = d.SectionFormat
	}
	if c.ItemFormat == "" {
		c.ItemFormat = d.ItemFormat
	}
	return c
}

func NewPattern(cfg PatternConfig) (*PatternStrategy, error) {
	s := &PatternStrategy{
		chapterFormat: cfg.ChapterFormat,
		sectionFormat: cfg.SectionFormat,
		itemFormat:    cfg.ItemFormat,
		log:           logger.GetLogger("naming"),
	}

	var err error
	if s.chapterDir, err = regex.Compile(cfg.ChapterDir); err != nil {
		return nil, errors.Wrap(err, "chapter_dir")
	}
	if s.sectionDir, err = regex.Compile(cfg.SectionDir); err != nil {
		return nil, errors.Wrap(err, "section_dir")
	}
	if s.itemFile, err = regex.Compile(cfg.ItemFile); err != nil {
		return nil, errors.Wrap(err, "item_file")
	}

	return s, nil
}

func MustPattern(cfg PatternConfig) *PatternStrategy {
	s, err := NewPattern(cfg)
	if err != nil {
		panic(err)
	}
	return s
}

func (s *PatternStrategy) ChapterDirComponents(name string) Components {
	return s.match(s.chapterDir, name)
}

func (s *PatternStrategy) SectionDirComponents(name string) Components {
	return s.match(s.sectionDir, name)
}

func (s *PatternStrategy) ItemFileComponents(name string) Components {
	return s.match(s.itemFile, name)
}

func (s *PatternStrategy) ChapterDirName(chapter string) string {
	return expand(s.chapterFormat, chapter, "", "")
}

func (s *PatternStrategy) SectionDirName(chapter, section string) string {
	return expand(s.sectionFormat, chapter, section, "")
}

func (s *PatternStrategy) ItemFileName(chapter, section, item, ext string) string {
	name := expand(s.itemFormat, chapter, section, item)
	if ext == "" {
		return name
	}
	return name + "." + strings.TrimPrefix(ext, ".")
}

/* Private */

func (s *PatternStrategy) match(p *regex.Pattern, name string) Components {
	groups, err := regex.Groups(name, p)
	if err != nil {
		// only a match timeout gets here; treat the name as foreign
		s.log.WithError(err).Warnf("Failed matching %q", name)
		return Components{}
	}

	out := make(Components, len(groups))
	for _, key := range []string{Chapter, Section, Item} {
		if v, ok := groups[key]; ok {
			out[key] = v
		}
	}
	return out
}

func expand(format, chapter, section, item string) string {
	if format == "" {
		return ""
	}
	return strings.NewReplacer(
		"{"+Chapter+"}", chapter,
		"{"+Section+"}", section,
		"{"+Item+"}", item,
	).Replace(format)
}
