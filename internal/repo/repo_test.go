package repo

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDBFileName(t *testing.T) {
	assert.Equal(t, "glossd.db", DBFileName(""))
	assert.Equal(t, "glossd-archive.db", DBFileName("archive"))
	assert.Equal(t, "custom.db", DBFileName("custom.db"))
}

func TestInitAndDiscover(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, Init(false, "", false, dir))
	assert.FileExists(t, filepath.Join(dir, Dir, DBFile))
	assert.FileExists(t, filepath.Join(dir, Dir, ".gitignore"))

	err := Init(false, "", false, dir)
	assert.Error(t, err, "second init without force")
	require.NoError(t, Init(true, "", false, dir))

	sub := filepath.Join(dir, "a", "b")
	require.NoError(t, os.MkdirAll(sub, 0755))
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(sub))
	t.Cleanup(func() { _ = os.Chdir(wd) })

	p, err := Discover("")
	require.NoError(t, err)
	assert.Equal(t, DBFile, filepath.Base(p))

	_, err = Discover("missing")
	assert.ErrorIs(t, err, ErrNotInitialised)
}

func TestLocalDatabases(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, Init(false, "", false, dir))
	require.NoError(t, Init(false, "scratch", true, dir))
	repoDir := filepath.Join(dir, Dir)

	ignored, err := IsIgnored("scratch", repoDir)
	require.NoError(t, err)
	assert.True(t, ignored)

	dbs, err := ListDBs(repoDir)
	require.NoError(t, err)
	require.Len(t, dbs, 2)
	byName := map[string]DBInfo{}
	for _, db := range dbs {
		byName[db.Name] = db
	}
	assert.False(t, byName[""].Local)
	assert.True(t, byName["scratch"].Local)

	require.NoError(t, UnignoreDB("scratch", repoDir))
	ignored, err = IsIgnored("scratch", repoDir)
	require.NoError(t, err)
	assert.False(t, ignored)
}
