// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package parallel

import (
	"context"
	"runtime"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"labscan/internal/core"
	"labscan/internal/observability"
)

// MaxWorkers caps the worker count regardless of CPU count
const MaxWorkers = 8

// FileAnalyzer analyzes a single file
type FileAnalyzer interface {
	AnalyzeFile(ctx context.Context, path string) (*core.Report, error)
}

// FileResult is the outcome for one input file
type FileResult struct {
	FilePath string        `json:"file_path"`
	Report   *core.Report  `json:"report,omitempty"`
	Error    error         `json:"-"`
	Duration time.Duration `json:"duration_ms"`
}

// ProcessingStats tracks parallel processing statistics
type ProcessingStats struct {
	TotalFiles     int           `json:"total_files"`
	ProcessedFiles int           `json:"processed_files"`
	FailedFiles    int           `json:"failed_files"`
	TotalValues    int           `json:"total_values"`
	CriticalValues int           `json:"critical_values"`
	TotalDuration  time.Duration `json:"total_duration_ms"`
	WorkerCount    int           `json:"worker_count"`
	AvgFileTime    time.Duration `json:"avg_file_time_ms"`
}

// ProgressCallback is called when a file is completed
type ProgressCallback func(completed, total int, currentFile string)

// ParallelProcessor analyzes files concurrently with a bounded worker count
type ParallelProcessor struct {
	analyzer FileAnalyzer
	workers  int
	observer *observability.StandardObserver
}

// NewParallelProcessor creates a new parallel processor
func NewParallelProcessor(analyzer FileAnalyzer, observer *observability.StandardObserver) *ParallelProcessor {
	workers := runtime.NumCPU()
	if workers > MaxWorkers {
		workers = MaxWorkers
	}

	return &ParallelProcessor{
		analyzer: analyzer,
		workers:  workers,
		observer: observer,
	}
}

// SetWorkers overrides the worker count. Values below one are ignored.
func (pp *ParallelProcessor) SetWorkers(n int) {
	if n >= 1 {
		pp.workers = n
	}
}

// Workers returns the worker count
func (pp *ParallelProcessor) Workers() int {
	return pp.workers
}

// ProcessFiles analyzes every path. Results are returned in the order of
// filePaths. A file that fails is recorded in its FileResult and does not
// stop the batch; only context cancellation does, in which case the
// context error is returned together with the results gathered so far.
func (pp *ParallelProcessor) ProcessFiles(ctx context.Context, filePaths []string, progress ProgressCallback) ([]FileResult, *ProcessingStats, error) {
	start := time.Now()

	var finishTiming func(bool, map[string]interface{})
	if pp.observer != nil {
		finishTiming = pp.observer.StartTiming("parallel_processor", "process_files", "batch")
	}

	results := make([]FileResult, len(filePaths))
	stats := &ProcessingStats{
		TotalFiles:  len(filePaths),
		WorkerCount: pp.workers,
	}

	var mu sync.Mutex
	completed := 0

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(pp.workers)

	for i, filePath := range filePaths {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				results[i] = FileResult{FilePath: filePath, Error: err}
				return err
			}

			fileStart := time.Now()
			report, err := pp.analyzer.AnalyzeFile(gctx, filePath)
			results[i] = FileResult{
				FilePath: filePath,
				Report:   report,
				Error:    err,
				Duration: time.Since(fileStart),
			}

			if err != nil && pp.observer != nil {
				pp.observer.LogOperation(observability.StandardObservabilityData{
					Component: "parallel_processor",
					Operation: "file_processing",
					FilePath:  filePath,
					Success:   false,
					Error:     err.Error(),
				})
			}

			mu.Lock()
			completed++
			done := completed
			mu.Unlock()

			if progress != nil {
				progress(done, len(filePaths), filePath)
			}

			// Per-file failures do not cancel the group
			if err != nil && ctx.Err() != nil {
				return ctx.Err()
			}
			return nil
		})
	}

	err := g.Wait()
	if err == nil {
		err = ctx.Err()
	}

	var fileTime time.Duration
	for i := range results {
		r := &results[i]
		if r.Report == nil && r.Error == nil {
			// never started because the batch was cancelled
			r.FilePath = filePaths[i]
			r.Error = ctx.Err()
		}
		if r.Error != nil {
			stats.FailedFiles++
			continue
		}
		stats.ProcessedFiles++
		stats.TotalValues += r.Report.Summary.Total
		stats.CriticalValues += r.Report.Summary.Critical
		fileTime += r.Duration
	}

	stats.TotalDuration = time.Since(start)
	if stats.ProcessedFiles > 0 {
		stats.AvgFileTime = fileTime / time.Duration(stats.ProcessedFiles)
	}

	if finishTiming != nil {
		finishTiming(err == nil, map[string]interface{}{
			"total_files":     stats.TotalFiles,
			"processed_files": stats.ProcessedFiles,
			"failed_files":    stats.FailedFiles,
			"worker_count":    stats.WorkerCount,
		})
	}

	return results, stats, err
}
