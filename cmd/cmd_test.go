package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRepo(t *testing.T) string {
	t.Helper()
	root := t.TempDir()

	files := map[string]string{
		"repo/kashika/pada-1.1/1.1.1.md": "---\nindex: 1.1.1\nsutra: वृद्धिरादैच्\n---\n\nवृद्धिशब्दः संज्ञात्वेन विधीयते",
		"repo/kashika/pada-1.1/1.1.2.md": "---\nindex: 1.1.2\nsutra: अदेङ् गुणः\n---\n\nगुणशब्दः",
		"repo/kashika/pada-2.1/2.1.1.md": "---\nindex: 2.1.1\n---\n\nसमर्थः पदविधिः",
		"config/config.yaml":             "repo_path: " + filepath.Join(root, "repo") + "\n",
	}
	for rel, content := range files {
		p := filepath.Join(root, rel)
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	}

	prevFolder, prevFile, prevLog := FlagConfigFolder, FlagConfigFile, FlagLogFile
	t.Cleanup(func() {
		FlagConfigFolder, FlagConfigFile, FlagLogFile = prevFolder, prevFile, prevLog
		initialized = false
	})

	FlagConfigFolder = filepath.Join(root, "config")
	FlagConfigFile = "config.yaml"
	FlagLogFile = ""
	initialized = false
	return root
}

func TestListCommand(t *testing.T) {
	setupRepo(t)

	var out bytes.Buffer
	command := ListCommand()
	command.SetOut(&out)
	command.SetArgs([]string{"kashika", "--filter", `Chapter == "1"`})
	require.NoError(t, command.Execute())

	assert.Contains(t, out.String(), "1.1.1")
	assert.Contains(t, out.String(), "वृद्धिरादैच्")
	assert.Contains(t, out.String(), "1.1.2")
	assert.NotContains(t, out.String(), "2.1.1")
	// go-pretty upper-cases footers
	assert.Contains(t, strings.ToLower(out.String()), "2 items")
}

func TestListCommandAny(t *testing.T) {
	setupRepo(t)

	var out bytes.Buffer
	command := ListCommand()
	command.SetOut(&out)
	command.SetArgs([]string{"kashika", "--any", "-f", `Chapter == "2"`, "-f", `Index == "1.1.2"`})
	require.NoError(t, command.Execute())

	assert.Contains(t, out.String(), "1.1.2")
	assert.Contains(t, out.String(), "2.1.1")
	assert.NotContains(t, out.String(), "1.1.1")
	assert.Contains(t, strings.ToLower(out.String()), "2 items")
}

func TestHostPath(t *testing.T) {
	root := t.TempDir()
	t.Chdir(root)

	assert.Equal(t, filepath.Join(root, "repo"), hostPath("repo"))
	assert.Equal(t, "/srv/dump", hostPath("/srv/dump"))
}

func TestShowCommand(t *testing.T) {
	setupRepo(t)

	var out bytes.Buffer
	command := ShowCommand()
	command.SetOut(&out)
	command.SetArgs([]string{"kashika", "1.1.2"})
	require.NoError(t, command.Execute())
	assert.Contains(t, out.String(), "अदेङ् गुणः")
	assert.Contains(t, out.String(), "गुणशब्दः")

	command = ShowCommand()
	command.SetOut(&out)
	command.SetArgs([]string{"kashika", "3.1.1"})
	assert.Error(t, command.Execute())
}

func TestExportCommand(t *testing.T) {
	root := setupRepo(t)
	db := filepath.Join(root, "out", "corpus.db")

	command := ExportCommand()
	command.SetOut(&bytes.Buffer{})
	command.SetArgs([]string{db})
	require.NoError(t, command.Execute())

	assert.FileExists(t, db)
}

func TestVersionCommand(t *testing.T) {
	var out bytes.Buffer
	command := VersionCommand()
	command.SetOut(&out)
	command.SetArgs([]string{})
	require.NoError(t, command.Execute())
	assert.Contains(t, out.String(), "ashtadhyayi version:")
}

func TestPreview(t *testing.T) {
	assert.Equal(t, "a b", preview("a\n\n b "))
	long := preview(string(bytes.Repeat([]byte("क"), 60)))
	assert.Equal(t, previewWidth+3, len([]rune(long)))
}
