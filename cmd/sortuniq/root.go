// Copyright 2026 The sortuniq Authors. All rights reserved.
// Use of this source code is governed by the MIT License
// that can be found in the LICENSE file.

package main

import (
	"fmt"
	"io"
	"log/slog"
	"slices"

	"github.com/KimMachineGun/automemlimit/memlimit"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"golang.org/x/sync/errgroup"

	"github.com/bpowers/sortuniq"
	"github.com/bpowers/sortuniq/internal/progress"
)

var validLogFormats = []string{"text", "json"}

// rootOptions holds the values of flags that are not part of a job's
// Config.
type rootOptions struct {
	configPath string
	verbose    bool
	logFormat  string
	fanIn      int
}

func newRootCommand() *cobra.Command {
	opts := &rootOptions{}
	cfg := sortuniq.DefaultConfig()

	cmd := &cobra.Command{
		Use:   "sortuniq [flags] PATH...",
		Short: "Sort and deduplicate large line-oriented files",
		Long: `Sort and deduplicate large line-oriented files.

Every file under the given paths with the chosen extension is read line by
line; the output holds each distinct line exactly once, in ascending byte
order.  Inputs may be far larger than memory: lines are sorted in chunks
spilled to scratch files next to the output (or under --temp-dir) and then
merged.

Example:
  sortuniq -r -o merged.txt dumps/ extra.txt`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSort(cmd, opts, &cfg, args)
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&cfg.Output, "output", "o", "", "output file (required)")
	flags.StringVarP(&cfg.Extension, "extension", "e", sortuniq.DefaultExtension, "extension of input files, without the dot")
	flags.BoolVarP(&cfg.Recursive, "recursive", "r", false, "descend into subdirectories")
	flags.IntVar(&cfg.ChunkLines, "chunk-lines", sortuniq.DefaultChunkLines, "lines held in memory per sorted chunk")
	flags.StringVar(&cfg.TempDir, "temp-dir", "", "directory for scratch files (default: the output's directory)")
	flags.BoolVarP(&cfg.Quiet, "quiet", "q", false, "suppress progress output")
	flags.StringVar(&opts.configPath, "config", "", "YAML job file; flags override its values")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "log chunk and merge details")
	flags.StringVar(&opts.logFormat, "log-format", "text", "log format (text|json)")
	flags.IntVar(&opts.fanIn, "fan-in", 0, "runs merged per pass (default 64)")
	_ = flags.MarkHidden("fan-in")
	flags.SetNormalizeFunc(func(f *pflag.FlagSet, name string) pflag.NormalizedName {
		if name == "ext" {
			name = "extension"
		}
		return pflag.NormalizedName(name)
	})

	return cmd
}

// resolveConfig layers the job file (if any) under the flags that were
// set explicitly.
func resolveConfig(cmd *cobra.Command, opts *rootOptions, flagCfg *sortuniq.Config, args []string) (sortuniq.Config, error) {
	cfg := sortuniq.DefaultConfig()
	if opts.configPath != "" {
		if err := sortuniq.LoadConfig(opts.configPath, &cfg); err != nil {
			return cfg, err
		}
	}

	flags := cmd.Flags()
	if flags.Changed("output") {
		cfg.Output = flagCfg.Output
	}
	if flags.Changed("extension") {
		cfg.Extension = flagCfg.Extension
	}
	if flags.Changed("recursive") {
		cfg.Recursive = flagCfg.Recursive
	}
	if flags.Changed("chunk-lines") {
		cfg.ChunkLines = flagCfg.ChunkLines
	}
	if flags.Changed("temp-dir") {
		cfg.TempDir = flagCfg.TempDir
	}
	if flags.Changed("quiet") {
		cfg.Quiet = flagCfg.Quiet
	}
	if len(args) > 0 {
		cfg.Inputs = args
	}
	return cfg, nil
}

func newLogger(w io.Writer, opts *rootOptions) *slog.Logger {
	level := slog.LevelInfo
	if opts.verbose {
		level = slog.LevelDebug
	}
	handlerOpts := &slog.HandlerOptions{Level: level}
	if opts.logFormat == "json" {
		return slog.New(slog.NewJSONHandler(w, handlerOpts))
	}
	return slog.New(slog.NewTextHandler(w, handlerOpts))
}

// memoryLimitRatio is the share of the container (or machine) memory the
// Go runtime is told it may use; chunks should be sized well below it.
const memoryLimitRatio = 0.9

// setMemoryLimit points GOMEMLIMIT at the cgroup limit, or at physical
// memory outside a container, unless the environment already sets it.
func setMemoryLimit(logger *slog.Logger) {
	limit, err := memlimit.SetGoMemLimitWithOpts(
		memlimit.WithRatio(memoryLimitRatio),
		memlimit.WithProvider(memlimit.ApplyFallback(memlimit.FromCgroup, memlimit.FromSystem)),
		memlimit.WithLogger(logger),
	)
	if err != nil {
		logger.Debug("memory limit not set", "err", err)
		return
	}
	logger.Debug("memory limit set", "bytes", limit)
}

func runSort(cmd *cobra.Command, opts *rootOptions, flagCfg *sortuniq.Config, args []string) error {
	if !slices.Contains(validLogFormats, opts.logFormat) {
		return fmt.Errorf("invalid log format %q: must be one of %v", opts.logFormat, validLogFormats)
	}

	cfg, err := resolveConfig(cmd, opts, flagCfg, args)
	if err != nil {
		return err
	}
	logger := newLogger(cmd.ErrOrStderr(), opts)
	setMemoryLimit(logger)

	files, err := sortuniq.CollectInputs(cfg)
	if err != nil {
		return err
	}
	logger.Info("inputs collected", "files", len(files), "output", cfg.Output)

	sortOpts := []sortuniq.Option{sortuniq.WithLogger(logger)}
	if opts.fanIn > 0 {
		sortOpts = append(sortOpts, sortuniq.WithFanIn(opts.fanIn))
	}

	if cfg.Quiet {
		return sortuniq.Sort(files, cfg, append(sortOpts, sortuniq.WithProgress(sortuniq.NopProgress{}))...)
	}

	// the sort runs on its own goroutine, reporting through a bounded
	// queue the monitor drains on a timer.
	q := progress.NewQueue(progress.DefaultQueueSize)
	mon := progress.NewMonitor(q, logger)

	g, gctx := errgroup.WithContext(cmd.Context())
	g.Go(func() error {
		q.Close(sortuniq.Sort(files, cfg, append(sortOpts, sortuniq.WithProgress(q))...))
		return nil
	})
	g.Go(func() error {
		return mon.Run(gctx)
	})
	return g.Wait()
}
