// Copyright 2026 The sortuniq Authors. All rights reserved.
// Use of this source code is governed by the MIT License
// that can be found in the LICENSE file.

package scratch

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// blockedDir returns a path that can never be a directory, even for root:
// its parent is a regular file.
func blockedDir(t *testing.T) string {
	t.Helper()
	blocker := filepath.Join(t.TempDir(), "blocker")
	require.NoError(t, os.WriteFile(blocker, []byte("not a directory"), 0o644))
	return filepath.Join(blocker, "scratch")
}

func TestNew_CreatesPrimaryDirectoryWhenMissing(t *testing.T) {
	dir := t.TempDir()
	custom := filepath.Join(dir, "custom_tmp")
	output := filepath.Join(dir, "out.txt")

	_, err := os.Stat(custom)
	require.True(t, os.IsNotExist(err))

	a, err := New(custom, output)
	require.NoError(t, err)
	_, err = os.Stat(custom)
	require.NoError(t, err)
	assert.Equal(t, custom, a.Primary())
	// an explicit directory never falls back
	assert.Equal(t, "", a.Fallback())

	f, err := a.Create()
	require.NoError(t, err)
	assert.Equal(t, custom, filepath.Dir(f.Name()))
	require.NoError(t, a.Close())
}

func TestNew_PrimaryDefaultsToOutputDir(t *testing.T) {
	dir := t.TempDir()
	a, err := New("", filepath.Join(dir, "nested", "out.txt"), WithFallbackDir(t.TempDir()))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "nested"), a.Primary())
	assert.NotEqual(t, "", a.Fallback())

	f, err := a.Create()
	require.NoError(t, err)
	assert.Equal(t, a.Primary(), filepath.Dir(f.Name()))
	require.NoError(t, f.Release())
}

func TestNew_NoFallbackWhenSameAsPrimary(t *testing.T) {
	dir := t.TempDir()
	a, err := New("", filepath.Join(dir, "out.txt"), WithFallbackDir(dir))
	require.NoError(t, err)
	assert.Equal(t, "", a.Fallback())
}

func TestNew_ExplicitDirMustBeCreatable(t *testing.T) {
	_, err := New(blockedDir(t), filepath.Join(t.TempDir(), "out.txt"))
	require.Error(t, err)
}

func TestCreate_UniqueNames(t *testing.T) {
	dir := t.TempDir()
	a1, err := New(dir, "")
	require.NoError(t, err)
	a2, err := New(dir, "")
	require.NoError(t, err)

	seen := make(map[string]bool)
	for _, a := range []*Allocator{a1, a2} {
		for i := 0; i < 10; i++ {
			f, err := a.Create()
			require.NoError(t, err)
			require.False(t, seen[f.Name()], "duplicate scratch name %s", f.Name())
			seen[f.Name()] = true
			assert.True(t, strings.HasSuffix(f.Name(), ".run"))
		}
	}
	assert.Equal(t, 10, a1.Live())
	assert.Equal(t, 10, a2.Live())
	require.NoError(t, a1.Close())
	require.NoError(t, a2.Close())
}

func TestCreate_FallsBack(t *testing.T) {
	fallback := t.TempDir()
	a, err := New("", filepath.Join(blockedDir(t), "out.txt"), WithFallbackDir(fallback))
	require.NoError(t, err)

	f, err := a.Create()
	require.NoError(t, err)
	assert.Equal(t, fallback, filepath.Dir(f.Name()))
	require.NoError(t, a.Close())
}

func TestCreate_BothLocationsFail(t *testing.T) {
	primary := blockedDir(t)
	fallback := blockedDir(t)
	a, err := New("", filepath.Join(primary, "out.txt"), WithFallbackDir(fallback))
	require.NoError(t, err)

	_, err = a.Create()
	require.ErrorIs(t, err, ErrExhausted)
	assert.Contains(t, err.Error(), primary)
	assert.Contains(t, err.Error(), fallback)
	assert.Contains(t, err.Error(), "--temp-dir")
}

func TestCreate_ExplicitDirFailsWithoutFallback(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "gone")
	a, err := New(dir, "")
	require.NoError(t, err)
	require.NoError(t, os.Remove(dir))

	_, err = a.Create()
	require.ErrorIs(t, err, ErrExhausted)
	assert.Contains(t, err.Error(), dir)
}

func TestFile_Lifecycle(t *testing.T) {
	a, err := New(t.TempDir(), "")
	require.NoError(t, err)

	f, err := a.Create()
	require.NoError(t, err)
	_, err = f.Writer().WriteString("hello")
	require.NoError(t, err)
	require.NoError(t, f.Close())
	assert.Nil(t, f.Writer())
	// multiple closes should be fine
	require.NoError(t, f.Close())

	for i := 0; i < 2; i++ {
		r, err := f.Open()
		require.NoError(t, err)
		contents, err := io.ReadAll(r)
		require.NoError(t, err)
		require.NoError(t, r.Close())
		assert.Equal(t, "hello", string(contents))
	}

	require.NoError(t, f.Release())
	_, err = os.Stat(f.Name())
	assert.True(t, os.IsNotExist(err))
	assert.Equal(t, 0, a.Live())
	require.NoError(t, f.Release())

	_, err = f.Open()
	assert.Error(t, err)
}

func TestClose_RemovesOutstandingFiles(t *testing.T) {
	a, err := New(t.TempDir(), "")
	require.NoError(t, err)

	var names []string
	for i := 0; i < 3; i++ {
		f, err := a.Create()
		require.NoError(t, err)
		names = append(names, f.Name())
	}
	require.Equal(t, 3, a.Live())

	require.NoError(t, a.Close())
	require.NoError(t, a.Close())
	assert.Equal(t, 0, a.Live())
	for _, name := range names {
		_, err := os.Stat(name)
		assert.True(t, os.IsNotExist(err), name)
	}
}
