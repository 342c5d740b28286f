// Copyright 2026 The sortuniq Authors. All rights reserved.
// Use of this source code is governed by the MIT License
// that can be found in the LICENSE file.

// Command gen-testdata writes credential-dump-shaped test input: one
// url:user:password line per record, with a configurable share of
// duplicates and a mix of LF and CRLF terminators.
package main

import (
	"bufio"
	crand "crypto/rand"
	"encoding/binary"
	"fmt"
	"io"
	"math/rand"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

var hosts = []string{
	"https://accounts.example.com/login",
	"https://mail.example.org",
	"http://forum.example.net/member.php",
	"android://com.example.app",
	"https://shop.example.io/account",
}

type genOptions struct {
	lines     int
	dupRate   float64
	crlfRate  float64
	seed      int64
	hasSeed   bool
	outputDir string
	files     int
}

func newRand(opts *genOptions) *rand.Rand {
	if opts.hasSeed {
		return rand.New(rand.NewSource(opts.seed))
	}
	var seedBytes [8]byte
	if _, err := crand.Read(seedBytes[:]); err != nil {
		panic(err)
	}
	seed := int64(binary.LittleEndian.Uint64(seedBytes[:]))
	return rand.New(rand.NewSource(seed))
}

func record(rng *rand.Rand) string {
	var buf [6]byte
	if _, err := rng.Read(buf[:]); err != nil {
		panic(err)
	}
	host := hosts[rng.Intn(len(hosts))]
	return fmt.Sprintf("%s:user%d:%x", host, rng.Intn(1_000_000), buf)
}

// generate writes n lines to w.  Roughly dupRate of them repeat an
// earlier line.
func generate(w io.Writer, rng *rand.Rand, opts *genOptions, n int) error {
	bw := bufio.NewWriter(w)
	var seen []string
	for i := 0; i < n; i++ {
		var line string
		if len(seen) > 0 && rng.Float64() < opts.dupRate {
			line = seen[rng.Intn(len(seen))]
		} else {
			line = record(rng)
			seen = append(seen, line)
		}

		terminator := "\n"
		if rng.Float64() < opts.crlfRate {
			terminator = "\r\n"
		}
		if _, err := bw.WriteString(line + terminator); err != nil {
			return err
		}
	}
	return bw.Flush()
}

func newRootCommand() *cobra.Command {
	opts := &genOptions{}

	cmd := &cobra.Command{
		Use:           "gen-testdata",
		Short:         "Write url:user:password test input",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.hasSeed = cmd.Flags().Changed("seed")
			rng := newRand(opts)
			if opts.outputDir == "" {
				return generate(cmd.OutOrStdout(), rng, opts, opts.lines)
			}

			if err := os.MkdirAll(opts.outputDir, 0o755); err != nil {
				return err
			}
			for i := 0; i < opts.files; i++ {
				path := filepath.Join(opts.outputDir, fmt.Sprintf("part-%04d.txt", i))
				f, err := os.Create(path)
				if err != nil {
					return err
				}
				if err := generate(f, rng, opts, opts.lines); err != nil {
					_ = f.Close()
					return fmt.Errorf("writing %q: %w", path, err)
				}
				if err := f.Close(); err != nil {
					return err
				}
			}
			return nil
		},
	}

	flags := cmd.Flags()
	flags.IntVarP(&opts.lines, "lines", "n", 1_000_000, "lines per file")
	flags.Float64Var(&opts.dupRate, "dup-rate", 0.3, "fraction of lines repeating an earlier one")
	flags.Float64Var(&opts.crlfRate, "crlf-rate", 0.5, "fraction of lines terminated by CRLF")
	flags.Int64Var(&opts.seed, "seed", 0, "random seed (default: random)")
	flags.StringVarP(&opts.outputDir, "output-dir", "d", "", "write files here instead of stdout")
	flags.IntVar(&opts.files, "files", 1, "number of files written to --output-dir")

	return cmd
}

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
