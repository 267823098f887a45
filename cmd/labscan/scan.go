// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"labscan/internal/core"
	"labscan/internal/formatters"
	"labscan/internal/parallel"
	"labscan/internal/preprocessors"
	textextractpdftextlib "labscan/internal/preprocessors/text-extractors/text-extract-pdftextlib"
)

// Exit codes returned by scan
const (
	exitFileErrors = 1 // at least one input could not be analyzed
	exitAbnormal   = 3 // --fail-on-abnormal and a value was outside its range
)

func newScanCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scan <file|dir|glob>...",
		Short: "Extract and classify lab values from one or more reports",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runScan,
	}

	f := cmd.Flags()
	f.StringP("format", "f", "text", "Output format: "+strings.Join(formatters.List(), ", "))
	f.StringP("status", "s", "all", "Statuses to show: normal, warning, critical (comma separated) or all")
	f.StringP("output", "o", "", "Write output to this file instead of stdout")
	f.Bool("no-color", false, "Disable colored output")
	f.Bool("show-text", false, "Include the recognized text in the output")
	f.Bool("show-terms", true, "Include the glossary of recognized terms")
	f.BoolP("verbose", "v", false, "Include explanations, gauges and file metadata")
	f.BoolP("recursive", "r", false, "Scan directories recursively")
	f.Int("workers", 0, "Number of files analyzed in parallel (default: CPU count, max 8)")
	f.Bool("fail-on-abnormal", false, "Exit with code 3 when any value is outside its reference range")
	return cmd
}

func runScan(cmd *cobra.Command, args []string) error {
	s, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	v := s.v
	stderr := cmd.ErrOrStderr()

	format := v.GetString("format")
	if _, ok := formatters.Get(format); !ok {
		return fmt.Errorf("unsupported format %q (available: %s)", format, strings.Join(formatters.List(), ", "))
	}
	statuses, err := core.ParseStatuses(v.GetString("status"))
	if err != nil {
		return err
	}

	debug := v.GetBool("debug")
	observer := core.NewObserver(debug, stderr)

	var progress textextractpdftextlib.ProgressFunc
	showProgress := !debug && isTerminal(stderr)
	if showProgress {
		progress = func(page, total int) {
			fmt.Fprintf(stderr, "\r  reading page %d/%d", page, total)
		}
	}

	analyzer, err := core.BuildAnalyzer(s.cfg, observer, progress)
	if err != nil {
		return err
	}

	files, err := collectFiles(args, v.GetBool("recursive"), analyzer.Preprocessors())
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return &exitError{code: exitFileErrors, err: fmt.Errorf("no supported files found")}
	}

	processor := parallel.NewParallelProcessor(analyzer, observer)
	if n := v.GetInt("workers"); n > 0 {
		processor.SetWorkers(n)
	}

	var fileProgress parallel.ProgressCallback
	if showProgress {
		fileProgress = func(completed, total int, currentFile string) {
			fmt.Fprintf(stderr, "\r\033[K[%d/%d] %s", completed, total, filepath.Base(currentFile))
		}
	}

	results, stats, err := processor.ProcessFiles(cmd.Context(), files, fileProgress)
	if showProgress {
		fmt.Fprint(stderr, "\r\033[K")
	}
	if err != nil {
		return err
	}

	var reports []*core.Report
	for _, r := range results {
		if r.Error != nil {
			fmt.Fprintf(stderr, "%s: %s\n", r.FilePath, preprocessors.UserMessage(r.Error))
			if debug {
				fmt.Fprintf(stderr, "  %v\n", r.Error)
			}
			continue
		}
		reports = append(reports, r.Report)
	}

	noColor := v.GetBool("no-color")
	outputPath := v.GetString("output")
	if outputPath != "" || !isTerminal(cmd.OutOrStdout()) {
		noColor = true
	}

	options := formatters.FormatterOptions{
		Statuses:  statuses,
		Verbose:   v.GetBool("verbose"),
		NoColor:   noColor,
		ShowText:  v.GetBool("show-text"),
		ShowTerms: v.GetBool("show-terms"),
	}
	result, err := formatters.Export(format, reports, options)
	if err != nil {
		return fmt.Errorf("error formatting output: %w", err)
	}

	if err := writeOutput(cmd.OutOrStdout(), outputPath, result); err != nil {
		return err
	}

	if stats.FailedFiles > 0 {
		return &exitError{code: exitFileErrors, err: fmt.Errorf("%d of %d files could not be analyzed", stats.FailedFiles, stats.TotalFiles)}
	}
	if v.GetBool("fail-on-abnormal") {
		for _, r := range reports {
			if r.HasAbnormal() {
				return &exitError{code: exitAbnormal, err: fmt.Errorf("abnormal lab values found")}
			}
		}
	}
	return nil
}

// collectFiles expands globs and directories into a list of supported files.
// Explicitly named files are always kept so that unsupported ones are
// reported rather than silently skipped.
func collectFiles(args []string, recursive bool, manager *preprocessors.PreprocessorManager) ([]string, error) {
	var files []string
	seen := make(map[string]bool)
	add := func(path string) {
		if !seen[path] {
			seen[path] = true
			files = append(files, path)
		}
	}

	for _, arg := range args {
		matches := []string{arg}
		if _, err := os.Stat(arg); err != nil && strings.ContainsAny(arg, "*?[") {
			globbed, err := filepath.Glob(arg)
			if err != nil {
				return nil, fmt.Errorf("invalid glob pattern: %w", err)
			}
			if len(globbed) == 0 {
				return nil, fmt.Errorf("no files match pattern: %s", arg)
			}
			matches = globbed
		}

		for _, path := range matches {
			info, err := os.Stat(path)
			if err != nil {
				return nil, fmt.Errorf("path does not exist or is not accessible: %w", err)
			}
			if !info.IsDir() {
				add(filepath.Clean(path))
				continue
			}
			if err := walkDir(path, recursive, manager, add); err != nil {
				return nil, err
			}
		}
	}
	return files, nil
}

func walkDir(root string, recursive bool, manager *preprocessors.PreprocessorManager, add func(string)) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != root && (!recursive || strings.HasPrefix(d.Name(), ".")) {
				return filepath.SkipDir
			}
			return nil
		}
		if manager.GetPreprocessor(path) != nil {
			add(path)
		}
		return nil
	})
}

// writeOutput prints result or writes it to path with owner-only permissions
func writeOutput(stdout io.Writer, path, result string) error {
	if path == "" {
		fmt.Fprintln(stdout, result)
		return nil
	}

	cleanPath, err := filepath.Abs(filepath.Clean(path))
	if err != nil {
		return fmt.Errorf("invalid output file path %s: %w", path, err)
	}
	if err := os.MkdirAll(filepath.Dir(cleanPath), 0700); err != nil {
		return fmt.Errorf("error creating output directory: %w", err)
	}
	if err := os.WriteFile(cleanPath, []byte(result), 0600); err != nil {
		return fmt.Errorf("error writing to output file: %w", err)
	}
	return nil
}
