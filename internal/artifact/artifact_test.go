package artifact

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromBytes(t *testing.T) {
	a := FromBytes("index.html", []byte("hello"), "index.md")
	assert.Equal(t, "index.html", a.Dest)
	assert.Equal(t, "index.md", a.Origin)
	assert.Equal(t, HashBytes([]byte("hello")), a.Fingerprint)

	r, err := a.Open()
	require.NoError(t, err)
	defer r.Close()
	data, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))
}

func TestFromFile(t *testing.T) {
	src := filepath.Join(t.TempDir(), "logo.svg")
	require.NoError(t, os.WriteFile(src, []byte("<svg/>"), 0o644))

	a, err := FromFile("images/logo.svg", src, "static")
	require.NoError(t, err)
	assert.Equal(t, HashBytes([]byte("<svg/>")), a.Fingerprint)
	assert.Nil(t, a.Data)

	r, err := a.Open()
	require.NoError(t, err)
	defer r.Close()
	data, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, "<svg/>", string(data))
}

func TestFromFile_Missing(t *testing.T) {
	_, err := FromFile("x", filepath.Join(t.TempDir(), "absent"), "static")
	require.Error(t, err)
}

func TestHashFileMatchesHashBytes(t *testing.T) {
	path := filepath.Join(t.TempDir(), "f.txt")
	require.NoError(t, os.WriteFile(path, []byte("content"), 0o644))

	fromFile, err := HashFile(path)
	require.NoError(t, err)
	assert.Equal(t, HashBytes([]byte("content")), fromFile)
}

func TestFromBytes_EmptyDataStillReadable(t *testing.T) {
	a := FromBytes("empty.txt", []byte{}, "x")
	r, err := a.Open()
	require.NoError(t, err)
	defer r.Close()
	data, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Empty(t, data)
}
