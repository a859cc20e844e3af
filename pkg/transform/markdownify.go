// Package transform reshapes the bulk commentary export of ashtadhyayi.com into per-sutra markdown files.
package transform

import (
	"github.com/sanskrit-coders/ashtadhyayi/pkg/regex"
)

type rule struct {
	pattern     *regex.Pattern
	replacement string
}

// applied in order; the sutra reference rules must run after the newline rule
var markdownRules = []rule{
	{regex.MustCompile(`\r?\n`), "\n\n"},
	{regex.MustCompile(`<<`), "_"},
	{regex.MustCompile(`>>`), "_"},
	{regex.MustCompile(`##`), "  \n"},
	// $1$2$30 -> (1.2.30)
	{regex.MustCompile(`\$(\d)\$(\d)\$(\d+)`), " ($1.$2.$3)"},
	// $12030 -> (1.2.30)
	{regex.MustCompile(`\$(\d)(\d)0*(\d+)`), " ($1.$2.$3)"},
}

// Markdownify converts the site's inline markup to markdown: paragraphs, emphasis,
// hard breaks and sutra references.
func Markdownify(content string) (string, error) {
	var err error
	for _, r := range markdownRules {
		if content, err = regex.ReplaceAll(content, r.pattern, r.replacement); err != nil {
			return "", err
		}
	}
	return content, nil
}
