package transform

import (
	"context"
	"testing"

	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sanskrit-coders/ashtadhyayi/pkg/corpus"
	"github.com/sanskrit-coders/ashtadhyayi/pkg/repowriter"
)

func TestMarkdownify(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"paragraphs", "a\nb\r\nc", "a\n\nb\n\nc"},
		{"emphasis", "<<वृद्धिः>> संज्ञा", "_वृद्धिः_ संज्ञा"},
		{"hard break", "line##next", "line  \nnext"},
		{"dollar reference", "see$1$2$30.", "see (1.2.30)."},
		{"packed reference", "see$12030.", "see (1.2.30)."},
		{"packed reference with zeros", "see$31001", "see (3.1.1)"},
		{"plain", "नाज्झलौ", "नाज्झलौ"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Markdownify(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

const dataTxt = `{"data":[
	{"i":"11001","a":1,"p":1,"n":1,"s":"वृद्धिरादैच्"},
	{"i":"11002","a":"1","p":"1","n":"2","s":"अदेङ् गुणः"},
	{"i":"12001","a":1,"p":2,"n":1,"s":"गाङ्कुटादिभ्योऽञ्णिन्ङित्"}
]}`

func TestSeparate(t *testing.T) {
	fs := memfs.New()
	require.NoError(t, util.WriteFile(fs, "/in/data.txt", []byte(dataTxt), 0o644))
	require.NoError(t, util.WriteFile(fs, "/in/kashika.txt", []byte(`{
		"11001": "वृद्धिशब्दः<<संज्ञा>>\nद्वितीयम्",
		"12001": "see $1$1$1",
		"99999": "orphan"
	}`), 0o644))
	require.NoError(t, util.WriteFile(fs, "/in/bhashya.txt", []byte(`{
		"11002": {"vartika": "वार्तिकम्", "bhashya": "भाष्यम्"},
		"11001": ""
	}`), 0o644))

	sep := NewSeparator(fs, repowriter.New(fs, "/out"))

	written, err := sep.Separate(context.Background(), "/in", []string{"kashika", "bhashya", "nyaas"})
	require.NoError(t, err)
	assert.Equal(t, map[string]int{
		"kashika":         2,
		"bhashya/vartika": 1,
		"bhashya/bhashya": 1,
	}, written)

	data, err := util.ReadFile(fs, "/out/kashika/pada-1.1/1.1.1.md")
	require.NoError(t, err)
	assert.Equal(t, "---\nindex: 1.1.1\nsutra: वृद्धिरादैच्\n---\n\nवृद्धिशब्दः_संज्ञा_\n\nद्वितीयम्", string(data))

	c, err := corpus.New("kashika", "/out/kashika", corpus.WithFS(fs))
	require.NoError(t, err)
	it, err := c.Lookup("1.2.1")
	require.NoError(t, err)
	require.NotNil(t, it)
	doc, err := it.Parsed(false)
	require.NoError(t, err)
	assert.Equal(t, "see  (1.1.1)", doc.Content)

	sub, err := corpus.New("vartika", "/out/bhashya/vartika", corpus.WithFS(fs))
	require.NoError(t, err)
	it, err = sub.Lookup("1.1.2")
	require.NoError(t, err)
	require.NotNil(t, it)
	text, _, err := it.Text(false)
	require.NoError(t, err)
	assert.Contains(t, text, "वार्तिकम्")
}

func TestReadSutras(t *testing.T) {
	fs := memfs.New()
	require.NoError(t, util.WriteFile(fs, "/in/data.txt", []byte(dataTxt), 0o644))
	sep := NewSeparator(fs, repowriter.New(fs, "/out"))

	sutras, err := sep.ReadSutras("/in/data.txt")
	require.NoError(t, err)
	require.Len(t, sutras, 3)
	assert.Equal(t, "11001", sutras[0].Key)
	assert.Equal(t, "1.1.1", sutras[0].Index())
	assert.Equal(t, "1.1.2", sutras[1].Index())

	require.NoError(t, util.WriteFile(fs, "/in/bad.txt", []byte(`{"rows":[]}`), 0o644))
	_, err = sep.ReadSutras("/in/bad.txt")
	assert.Error(t, err)

	_, err = sep.Separate(context.Background(), "/missing", Commentaries)
	assert.Error(t, err)
}
