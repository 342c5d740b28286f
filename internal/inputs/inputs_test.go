// Copyright 2026 The sortuniq Authors. All rights reserved.
// Use of this source code is governed by the MIT License
// that can be found in the LICENSE file.

package inputs

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func touch(t *testing.T, path string) string {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, nil, 0o644))
	return path
}

func TestCollect_Recursive(t *testing.T) {
	dir := t.TempDir()
	fileA := touch(t, filepath.Join(dir, "a.txt"))
	fileB := touch(t, filepath.Join(dir, "nested", "b.TXT"))
	touch(t, filepath.Join(dir, "nested", "c.csv"))

	files, err := Collect(Options{
		Inputs:    []string{dir},
		Output:    filepath.Join(dir, "out.txt"),
		Extension: "txt",
		Recursive: true,
	})
	require.NoError(t, err)
	assert.Equal(t, []string{fileA, fileB}, files)
}

func TestCollect_Shallow(t *testing.T) {
	dir := t.TempDir()
	fileA := touch(t, filepath.Join(dir, "a.txt"))
	touch(t, filepath.Join(dir, "nested", "b.txt"))

	files, err := Collect(Options{Inputs: []string{dir}, Extension: ".txt"})
	require.NoError(t, err)
	assert.Equal(t, []string{fileA}, files)
}

func TestCollect_SkipsOutputAndWrongExtension(t *testing.T) {
	dir := t.TempDir()
	input := touch(t, filepath.Join(dir, "data.txt"))
	touch(t, filepath.Join(dir, "notes.md"))
	touch(t, filepath.Join(dir, "noext"))

	_, err := Collect(Options{Inputs: []string{dir}, Output: input, Extension: "txt"})
	require.ErrorIs(t, err, ErrNoInputs)
	assert.Contains(t, err.Error(), ".txt")
}

func TestCollect_ExplicitFilesAreSortedAndDeduplicated(t *testing.T) {
	dir := t.TempDir()
	b := touch(t, filepath.Join(dir, "b.txt"))
	a := touch(t, filepath.Join(dir, "a.txt"))
	other := touch(t, filepath.Join(dir, "c.log"))

	files, err := Collect(Options{Inputs: []string{b, a, b, other}, Extension: "txt"})
	require.NoError(t, err)
	assert.Equal(t, []string{a, b}, files)
}

func TestCollect_InvalidPath(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "missing")
	_, err := Collect(Options{Inputs: []string{missing}, Extension: "txt"})
	require.ErrorIs(t, err, ErrInvalidPath)
	assert.Contains(t, err.Error(), missing)
}
