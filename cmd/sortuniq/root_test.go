// Copyright 2026 The sortuniq Authors. All rights reserved.
// Use of this source code is governed by the MIT License
// that can be found in the LICENSE file.

package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bpowers/sortuniq"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var stderr bytes.Buffer
	cmd := newRootCommand()
	cmd.SetArgs(args)
	cmd.SetOut(&stderr)
	cmd.SetErr(&stderr)
	err := cmd.Execute()
	return stderr.String(), err
}

func writeInputs(t *testing.T, dir string) string {
	t.Helper()
	in := filepath.Join(dir, "in")
	require.NoError(t, os.MkdirAll(filepath.Join(in, "nested"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(in, "a.txt"), []byte("b:2\r\na:1\r\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(in, "b.txt"), []byte("a:1\nc:3"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(in, "nested", "c.txt"), []byte("d:4\na:1\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(in, "skip.log"), []byte("z:26\n"), 0o644))
	return in
}

func TestRoot(t *testing.T) {
	dir := t.TempDir()
	in := writeInputs(t, dir)
	out := filepath.Join(dir, "merged.txt")

	logs, err := execute(t, "-o", out, "--chunk-lines", "2", in)
	require.NoError(t, err)
	contents, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, "a:1\nb:2\nc:3\n", string(contents))
	assert.Contains(t, logs, "inputs collected")

	_, err = execute(t, "-q", "-r", "-o", out, "--fan-in", "2", "--chunk-lines", "1", in)
	require.NoError(t, err)
	contents, err = os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, "a:1\nb:2\nc:3\nd:4\n", string(contents))
}

func TestRoot_JSONLogs(t *testing.T) {
	dir := t.TempDir()
	in := writeInputs(t, dir)

	logs, err := execute(t, "--log-format", "json", "-v", "-o", filepath.Join(dir, "out.txt"), in)
	require.NoError(t, err)
	assert.Contains(t, logs, `"msg":"inputs collected"`)
}

func TestRoot_ConfigFile(t *testing.T) {
	dir := t.TempDir()
	in := writeInputs(t, dir)
	fromFile := filepath.Join(dir, "from-file.txt")
	fromFlag := filepath.Join(dir, "from-flag.txt")

	job := filepath.Join(dir, "job.yaml")
	require.NoError(t, os.WriteFile(job, []byte(
		"output: "+fromFile+"\ninputs: ["+in+"]\nrecursive: true\nextension: log\nquiet: true\n"), 0o644))

	_, err := execute(t, "--config", job)
	require.NoError(t, err)
	contents, err := os.ReadFile(fromFile)
	require.NoError(t, err)
	assert.Equal(t, "z:26\n", string(contents))

	_, err = execute(t, "--config", job, "-o", fromFlag, "--ext", "txt")
	require.NoError(t, err)
	contents, err = os.ReadFile(fromFlag)
	require.NoError(t, err)
	assert.Equal(t, "a:1\nb:2\nc:3\nd:4\n", string(contents))
}

func TestRoot_Errors(t *testing.T) {
	dir := t.TempDir()
	in := writeInputs(t, dir)

	_, err := execute(t, in)
	assert.ErrorIs(t, err, sortuniq.ErrInvalidConfig)

	_, err = execute(t, "-o", filepath.Join(dir, "out.txt"))
	assert.ErrorIs(t, err, sortuniq.ErrInvalidConfig)

	_, err = execute(t, "-o", filepath.Join(dir, "out.txt"), "--chunk-lines", "0", in)
	assert.ErrorIs(t, err, sortuniq.ErrInvalidConfig)

	_, err = execute(t, "-o", filepath.Join(dir, "out.txt"), "-e", "csv", in)
	assert.ErrorIs(t, err, sortuniq.ErrNoInputFiles)

	_, err = execute(t, "-o", filepath.Join(dir, "out.txt"), filepath.Join(dir, "missing"))
	assert.ErrorIs(t, err, sortuniq.ErrInvalidInputPath)

	_, err = execute(t, "--log-format", "xml", "-o", filepath.Join(dir, "out.txt"), in)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid log format")

	_, err = execute(t, "--config", filepath.Join(dir, "missing.yaml"), in)
	require.Error(t, err)
}
