// Package frontmatter reads and writes the line oriented metadata header used by corpus files:
//
//	---
//	index: 1.1.1
//	sutra: वृद्धिरादैच्
//	---
//
//	body
//
// It is deliberately not YAML. Values are single line strings and lines without a colon are ignored.
package frontmatter

import (
	"strings"
)

const (
	Delimiter = "---"
	// ContentKey is the reserved key holding the body in Map.
	ContentKey = "content"
)

type Field struct {
	Key   string
	Value string
}

type Document struct {
	// Fields keeps header order; a repeated key keeps its first position and its last value.
	Fields  []Field
	Content string
}

// Parse never fails: malformed header lines are skipped and an unterminated header
// swallows the rest of the input, leaving an empty body.
func Parse(text string) *Document {
	doc := &Document{}
	lines := strings.Split(text, "\n")

	body := lines
	if isDelimiter(lines[0]) {
		body = nil
		for i := 1; i < len(lines); i++ {
			line := strings.TrimSpace(lines[i])
			if isDelimiter(line) {
				body = lines[i+1:]
				break
			}

			key, value, ok := strings.Cut(line, ":")
			if !ok {
				continue
			}
			key = strings.TrimSpace(key)
			if key == "" {
				continue
			}
			doc.Set(key, strings.TrimSpace(value))
		}
	}

	doc.Content = strings.TrimSpace(strings.Join(body, "\n"))
	return doc
}

// Format renders doc so that Parse(Format(doc)) yields the same fields and content,
// provided keys and values are single line and keys carry no colon.
func Format(doc *Document) string {
	var b strings.Builder
	b.Grow(len(doc.Content) + len(doc.Fields)*32 + 16)

	b.WriteString(Delimiter)
	b.WriteByte('\n')
	for _, f := range doc.Fields {
		b.WriteString(f.Key)
		b.WriteString(": ")
		b.WriteString(f.Value)
		b.WriteByte('\n')
	}
	b.WriteString(Delimiter)
	b.WriteString("\n\n")
	b.WriteString(doc.Content)

	return b.String()
}

func (d *Document) Get(key string) (string, bool) {
	for _, f := range d.Fields {
		if f.Key == key {
			return f.Value, true
		}
	}
	return "", false
}

func (d *Document) Set(key, value string) {
	for i := range d.Fields {
		if d.Fields[i].Key == key {
			d.Fields[i].Value = value
			return
		}
	}
	d.Fields = append(d.Fields, Field{Key: key, Value: value})
}

// Metadata returns the header fields without the body.
func (d *Document) Metadata() map[string]string {
	m := make(map[string]string, len(d.Fields))
	for _, f := range d.Fields {
		m[f.Key] = f.Value
	}
	return m
}

// Map returns the flat view with the body under ContentKey, which wins over a header field of the same name.
func (d *Document) Map() map[string]string {
	m := d.Metadata()
	m[ContentKey] = d.Content
	return m
}

func isDelimiter(line string) bool {
	return strings.TrimRight(line, " \t\r") == Delimiter
}
