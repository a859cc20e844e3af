package frontmatter

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		meta    map[string]string
		content string
	}{
		{
			name:    "front matter",
			text:    "---\nindex: 1.1.1\nsutra: वृद्धिरादैच्\n---\n\nBody text",
			meta:    map[string]string{"index": "1.1.1", "sutra": "वृद्धिरादैच्"},
			content: "Body text",
		},
		{
			name:    "no front matter",
			text:    "Just a line\nmore text",
			meta:    map[string]string{},
			content: "Just a line\nmore text",
		},
		{
			name:    "line without colon",
			text:    "---\nindex: 1.1.2\nstray line\n---\nBody",
			meta:    map[string]string{"index": "1.1.2"},
			content: "Body",
		},
		{
			name:    "unterminated block",
			text:    "---\nindex: 1.1.3\nsutra: x\n\nnot a body",
			meta:    map[string]string{"index": "1.1.3", "sutra": "x"},
			content: "",
		},
		{
			name:    "value keeps later colons",
			text:    "---\nurl: http://example.org/a\n---\nx",
			meta:    map[string]string{"url": "http://example.org/a"},
			content: "x",
		},
		{
			name:    "delimiter with trailing whitespace",
			text:    "---  \r\nindex: 2.1.1\r\n---\t\r\n\r\nwindows body\r\n",
			meta:    map[string]string{"index": "2.1.1"},
			content: "windows body",
		},
		{
			name:    "empty key skipped",
			text:    "---\n: orphan\nk: v\n---\n",
			meta:    map[string]string{"k": "v"},
			content: "",
		},
		{
			name:    "delimiter not on first line",
			text:    "\n---\nindex: 1\n---\nbody",
			meta:    map[string]string{},
			content: "---\nindex: 1\n---\nbody",
		},
		{
			name:    "empty input",
			text:    "",
			meta:    map[string]string{},
			content: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := Parse(tt.text)
			assert.Equal(t, tt.meta, doc.Metadata())
			assert.Equal(t, tt.content, doc.Content)
		})
	}
}

func TestParseDuplicateKeys(t *testing.T) {
	doc := Parse("---\na: 1\nb: 2\na: 3\n---\n")

	assert.Equal(t, []Field{{"a", "3"}, {"b", "2"}}, doc.Fields)
}

func TestMapContentWins(t *testing.T) {
	doc := Parse("---\ncontent: header\nindex: 1.1.1\n---\nbody")

	m := doc.Map()
	assert.Equal(t, "body", m[ContentKey])
	assert.Equal(t, "1.1.1", m["index"])
}

func TestFormatRoundTrip(t *testing.T) {
	doc := &Document{Content: "वृद्धिरादैच्\n\nsecond paragraph"}
	doc.Set("index", "1.1.1")
	doc.Set("sutra", "वृद्धिरादैच्")
	doc.Set("vritti", "kashika")

	text := Format(doc)
	assert.Equal(t, "---\nindex: 1.1.1\nsutra: वृद्धिरादैच्\nvritti: kashika\n---\n\nवृद्धिरादैच्\n\nsecond paragraph", text)

	again := Parse(text)
	assert.Equal(t, doc.Fields, again.Fields)
	assert.Equal(t, doc.Content, again.Content)

	// idempotent on its own output
	assert.Equal(t, text, Format(again))
}

func TestGet(t *testing.T) {
	doc := Parse("---\nindex: 3.1.1\n---\n")

	v, ok := doc.Get("index")
	assert.True(t, ok)
	assert.Equal(t, "3.1.1", v)

	_, ok = doc.Get("sutra")
	assert.False(t, ok)
}
