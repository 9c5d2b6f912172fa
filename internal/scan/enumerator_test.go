package scan

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dupescan/internal/models"
	"dupescan/internal/testutil"
)

func writeFile(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte("content"), 0644))
}

func TestEnumerator_FindsVideosRecursively(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a.mp4"))
	writeFile(t, filepath.Join(root, "sub", "deep", "b.mkv"))
	writeFile(t, filepath.Join(root, "notes.txt"))

	conf := testConfig(t.TempDir())
	conf.Scan.IncludeList = []string{root}
	catalog := models.NewCatalog()
	e := NewEnumerator(conf, catalog, &testutil.MockLogger{}, noopMetrics())

	found := e.Run(NewTokens())
	require.Len(t, found, 2)
	assert.Equal(t, 2, catalog.Len())
	_, ok := catalog.Get(filepath.Join(root, "sub", "deep", "b.mkv"))
	assert.True(t, ok)
}

func TestEnumerator_DepthOneWithoutSubdirectories(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a.mp4"))
	writeFile(t, filepath.Join(root, "sub", "b.mp4"))

	conf := testConfig(t.TempDir())
	conf.Scan.IncludeList = []string{root}
	conf.Scan.IncludeSubdirectories = false
	catalog := models.NewCatalog()
	e := NewEnumerator(conf, catalog, &testutil.MockLogger{}, noopMetrics())

	found := e.Run(NewTokens())
	require.Len(t, found, 1)
	assert.Equal(t, filepath.Join(root, "a.mp4"), found[0].Path)
}

func TestEnumerator_ImagesOnlyWhenEnabled(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a.png"))
	writeFile(t, filepath.Join(root, "b.mp4"))

	conf := testConfig(t.TempDir())
	conf.Scan.IncludeList = []string{root}
	conf.Scan.IncludeImages = false
	catalog := models.NewCatalog()
	found := NewEnumerator(conf, catalog, &testutil.MockLogger{}, noopMetrics()).Run(NewTokens())
	require.Len(t, found, 1)
	assert.False(t, found[0].IsImage)

	conf.Scan.IncludeImages = true
	catalog = models.NewCatalog()
	found = NewEnumerator(conf, catalog, &testutil.MockLogger{}, noopMetrics()).Run(NewTokens())
	assert.Len(t, found, 2)
}

func TestEnumerator_BlacklistSkipsSubtree(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "keep", "a.mp4"))
	writeFile(t, filepath.Join(root, "skip", "b.mp4"))

	conf := testConfig(t.TempDir())
	conf.Scan.IncludeList = []string{root}
	conf.Scan.Blacklist = []string{filepath.Join(root, "skip")}
	catalog := models.NewCatalog()
	found := NewEnumerator(conf, catalog, &testutil.MockLogger{}, noopMetrics()).Run(NewTokens())

	require.Len(t, found, 1)
	assert.Equal(t, filepath.Join(root, "keep", "a.mp4"), found[0].Path)
}

func TestEnumerator_ReconcilesExistingRecords(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "a.mp4")
	writeFile(t, path)

	conf := testConfig(t.TempDir())
	conf.Scan.IncludeList = []string{root}
	catalog := models.NewCatalog()

	e := NewEnumerator(conf, catalog, &testutil.MockLogger{}, noopMetrics())
	first := e.Run(NewTokens())
	require.Len(t, first, 1)
	first[0].SetFingerprint(0.5, uniformGray(1))

	// Unchanged on disk: the second run keeps the fingerprinted record.
	second := e.Run(NewTokens())
	require.Len(t, second, 1)
	assert.Same(t, first[0], second[0])
	assert.Equal(t, 1, second[0].FingerprintCount())
}

func TestFolderMatches_Boundaries(t *testing.T) {
	assert.True(t, FolderMatches("/a/b", "/a/b"))
	assert.True(t, FolderMatches("/a/b", "/a/b/c.mp4"))
	assert.True(t, FolderMatches("/a/b", "/a/b/c/d"))
	assert.False(t, FolderMatches("/a/b", "/a/bc"))
	assert.False(t, FolderMatches("/a/b", "/a"))
	assert.False(t, FolderMatches("/a/b", "/x/y"))
	assert.False(t, FolderMatches("", "/a/b"))
}
