// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package core

import (
	"fmt"
	"io"

	"labscan/internal/config"
	"labscan/internal/knowledge"
	"labscan/internal/observability"
	"labscan/internal/preprocessors"
	textextractpdftextlib "labscan/internal/preprocessors/text-extractors/text-extract-pdftextlib"
)

// NewObserver builds the observer shared by the CLI and the web server.
// Debug mode logs every step; otherwise only failed operations are logged.
func NewObserver(debug bool, w io.Writer) *observability.StandardObserver {
	if debug {
		return observability.NewDebugObserver(w).StandardObserver
	}
	return observability.NewStandardObserver(observability.ObservabilityMetrics, w)
}

// PreprocessorOptions maps the preprocessor section of cfg onto preprocessor options
func PreprocessorOptions(cfg *config.Config) preprocessors.Options {
	return preprocessors.Options{
		MaxFileSize: cfg.Preprocessors.MaxFileSize,
		MaxPDFPages: cfg.Preprocessors.MaxPDFPages,
		OCRCommand:  cfg.Preprocessors.OCR.Command,
		OCRArgs:     cfg.Preprocessors.OCR.Args,
		OCRLanguage: cfg.Preprocessors.OCR.Language,
		OCRRetries:  cfg.Preprocessors.OCR.Retries,
	}
}

// BuildAnalyzer constructs an analyzer from configuration. progress, when
// non-nil, receives PDF page progress.
func BuildAnalyzer(cfg *config.Config, observer *observability.StandardObserver, progress textextractpdftextlib.ProgressFunc) (*Analyzer, error) {
	base, err := knowledge.LoadOrDefault(cfg.KnowledgeBase)
	if err != nil {
		return nil, fmt.Errorf("failed to load knowledge base: %w", err)
	}

	opts := PreprocessorOptions(cfg)
	opts.PDFProgress = progress
	manager := preprocessors.NewDefaultManager(opts)

	analyzerOpts := []Option{WithPreprocessorManager(manager)}
	if observer != nil {
		analyzerOpts = append(analyzerOpts, WithObserver(observer))
	}
	return NewAnalyzer(base, analyzerOpts...), nil
}
