package dataset

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func layoutIn(dir string) Layout {
	return Layout{
		DataDir:        dir,
		RawPattern:     filepath.Join("raw", "%s.csv"),
		CleanedPattern: filepath.Join("cleaned", "cleaned_%s.csv"),
	}
}

func write(t *testing.T, path, body string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
}

func TestLayoutPaths(t *testing.T) {
	l := layoutIn("data")
	assert.Equal(t, filepath.Join("data", "raw", "sales.csv"), l.RawPath("sales"))
	assert.Equal(t, filepath.Join("data", "cleaned", "cleaned_sales.csv"), l.CleanedPath("sales"))
}

func TestLoadAllSkipsFailedDatasets(t *testing.T) {
	dir := t.TempDir()
	l := layoutIn(dir)
	write(t, l.RawPath("sales"), "channel,qty\nOnline,1\nRetail,2\n")
	write(t, l.CleanedPath("sales"), "channel,qty\nOnline,1\n")
	write(t, l.RawPath("testing"), "status\nPASS\n")

	pairs, err := LoadAll(l, []string{"sales", "testing", "field"})
	require.Error(t, err)
	require.Len(t, pairs, 3)

	idx := Index(pairs)
	assert.True(t, idx["sales"].Complete())
	assert.Equal(t, 2, idx["sales"].Raw.Rows())
	assert.Equal(t, "sales", idx["sales"].Cleaned.Name)

	assert.False(t, idx["testing"].Complete())
	assert.NotNil(t, idx["testing"].Raw)
	assert.Nil(t, idx["testing"].Cleaned)
	assert.Nil(t, idx["field"].Get(Raw))

	var le *LoadError
	require.True(t, errors.As(err, &le))
	assert.NotEmpty(t, le.Path)
}

func TestResolveFallsBackToXLSX(t *testing.T) {
	dir := t.TempDir()
	l := layoutIn(dir)
	xlsx := filepath.Join(dir, "raw", "field.xlsx")
	write(t, xlsx, "placeholder")
	assert.Equal(t, xlsx, l.RawPath("field"))
}
