package vpath

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_Folder(t *testing.T) {
	p, err := Parse("/a/b/")
	require.NoError(t, err)
	assert.Equal(t, Folder, p.Kind())
	assert.Equal(t, []string{"a", "b"}, p.Parts())
	assert.Equal(t, "b", p.Name())
	assert.Equal(t, "/a/", p.Parent().String())
}

func TestParse_File(t *testing.T) {
	p, err := Parse("/a/b.txt")
	require.NoError(t, err)
	assert.Equal(t, File, p.Kind())
	assert.Equal(t, "b.txt", p.Name())
	assert.Equal(t, "txt", p.Extension())
	assert.Equal(t, "b", p.Stem())
	assert.Equal(t, "/a/", p.Parent().String())
}

func TestParse_FileNoExtension(t *testing.T) {
	p, err := Parse("/a/README")
	require.NoError(t, err)
	assert.Equal(t, "", p.Extension())
	assert.Equal(t, "README", p.Stem())
}

func TestParse_Root(t *testing.T) {
	p, err := Parse("/")
	require.NoError(t, err)
	assert.True(t, p.IsRoot())
	assert.Equal(t, Folder, p.Kind())
	assert.Equal(t, Root, p.Parent())
}

func TestParse_Rejections(t *testing.T) {
	cases := []string{
		"",
		"relative/path",
		"//a/",
		"/a/../b",
		"/a/./b",
		"/a//b/",
	}
	for _, raw := range cases {
		_, err := Parse(raw)
		assert.Error(t, err, "expected error for %q", raw)
		var pathErr *InvalidPathError
		assert.ErrorAs(t, err, &pathErr)
	}
}

func TestParse_UnicodeAndSpecialChars(t *testing.T) {
	p, err := Parse("/café/naïve file-name_v2.1.txt")
	require.NoError(t, err)
	assert.Equal(t, "naïve file-name_v2.1.txt", p.Name())
	assert.Equal(t, "txt", p.Extension())
}

func TestChild(t *testing.T) {
	folder, err := Parse("/a/")
	require.NoError(t, err)

	file, err := folder.Child("b.txt", File)
	require.NoError(t, err)
	assert.Equal(t, "/a/b.txt", file.String())

	sub, err := folder.Child("c", Folder)
	require.NoError(t, err)
	assert.Equal(t, "/a/c/", sub.String())
}

func TestWithName(t *testing.T) {
	p, err := Parse("/a/x.bin")
	require.NoError(t, err)

	renamed, err := p.WithName("y.bin")
	require.NoError(t, err)
	assert.Equal(t, "/a/y.bin", renamed.String())
}

func TestChild_OnFilePathRejected(t *testing.T) {
	f, err := Parse("/a.txt")
	require.NoError(t, err)
	_, err = f.Child("b", File)
	assert.Error(t, err)
}
