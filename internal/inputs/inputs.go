// Copyright 2026 The sortuniq Authors. All rights reserved.
// Use of this source code is governed by the MIT License
// that can be found in the LICENSE file.

// Package inputs turns the paths a user names into the list of files to
// sort.
package inputs

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
)

var (
	ErrInvalidPath = errors.New("not a file or directory")
	ErrNoInputs    = errors.New("no input files found with the given extension")
)

// Options controls which files Collect picks up.
type Options struct {
	// Inputs are files or directories.
	Inputs []string
	// Output is never returned as an input, even if it matches.
	Output string
	// Extension, without the leading dot, is matched case-insensitively.
	Extension string
	// Recursive descends into subdirectories.
	Recursive bool
}

// Collect resolves opts.Inputs to a sorted list of matching files.
func Collect(opts Options) ([]string, error) {
	output, _ := os.Stat(opts.Output)
	c := collector{opts: opts, output: output}

	for _, input := range opts.Inputs {
		info, err := os.Stat(input)
		if err != nil {
			return nil, fmt.Errorf("%w: %q: %w", ErrInvalidPath, input, err)
		}
		switch {
		case info.IsDir() && opts.Recursive:
			err = c.walk(input)
		case info.IsDir():
			err = c.list(input)
		case info.Mode().IsRegular():
			c.consider(input, info)
		default:
			err = fmt.Errorf("%w: %q", ErrInvalidPath, input)
		}
		if err != nil {
			return nil, err
		}
	}

	if len(c.files) == 0 {
		return nil, fmt.Errorf("%w (.%s)", ErrNoInputs, strings.TrimPrefix(opts.Extension, "."))
	}

	slices.Sort(c.files)
	return slices.Compact(c.files), nil
}

type collector struct {
	opts   Options
	output fs.FileInfo
	files  []string
}

func (c *collector) consider(path string, info fs.FileInfo) {
	if !matchesExtension(path, c.opts.Extension) {
		return
	}
	if c.output != nil && os.SameFile(info, c.output) {
		return
	}
	c.files = append(c.files, path)
}

func (c *collector) walk(root string) error {
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.Type().IsRegular() {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		c.consider(path, info)
		return nil
	})
	if err != nil {
		return fmt.Errorf("walking directory %q: %w", root, err)
	}
	return nil
}

func (c *collector) list(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("reading directory %q: %w", dir, err)
	}
	for _, entry := range entries {
		path := filepath.Join(dir, entry.Name())
		// follow symlinks, the way a shell glob would
		info, err := os.Stat(path)
		if err != nil || !info.Mode().IsRegular() {
			continue
		}
		c.consider(path, info)
	}
	return nil
}

func matchesExtension(path, ext string) bool {
	ext = strings.TrimPrefix(ext, ".")
	got := strings.TrimPrefix(filepath.Ext(path), ".")
	return got != "" && strings.EqualFold(got, ext)
}
