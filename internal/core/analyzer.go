// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package core

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"labscan/internal/detector"
	"labscan/internal/knowledge"
	"labscan/internal/observability"
	"labscan/internal/preprocessors"
	"labscan/internal/validators/glossary"
	"labscan/internal/validators/labvalue"
)

// Analyzer turns documents into reports. It is safe for concurrent use.
type Analyzer struct {
	base     *knowledge.Base
	values   *labvalue.Validator
	terms    *glossary.Matcher
	manager  *preprocessors.PreprocessorManager
	observer *observability.StandardObserver
	now      func() time.Time
}

// Option configures an Analyzer
type Option func(*Analyzer)

// WithPreprocessorManager sets the manager used by AnalyzeFile
func WithPreprocessorManager(manager *preprocessors.PreprocessorManager) Option {
	return func(a *Analyzer) {
		a.manager = manager
	}
}

// WithObserver sets the observability component
func WithObserver(observer *observability.StandardObserver) Option {
	return func(a *Analyzer) {
		a.observer = observer
	}
}

// WithClock overrides the report timestamp source
func WithClock(now func() time.Time) Option {
	return func(a *Analyzer) {
		a.now = now
	}
}

// NewAnalyzer creates an analyzer over base. Without WithPreprocessorManager
// the standard preprocessors are used with default limits.
func NewAnalyzer(base *knowledge.Base, opts ...Option) *Analyzer {
	a := &Analyzer{
		base:   base,
		values: labvalue.NewValidator(base),
		terms:  glossary.NewMatcher(base),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}

	if a.manager == nil {
		a.manager = preprocessors.NewDefaultManager(preprocessors.Options{})
	}
	if a.observer != nil {
		a.values.SetObserver(a.observer)
		a.manager.SetObserver(a.observer)
	}
	return a
}

// Base returns the knowledge base the analyzer classifies against
func (a *Analyzer) Base() *knowledge.Base {
	return a.base
}

// Preprocessors returns the manager used by AnalyzeFile
func (a *Analyzer) Preprocessors() *preprocessors.PreprocessorManager {
	return a.manager
}

// AnalyzeText scans text for lab values and glossary terms. source is an
// opaque label copied into the report. Blank text yields an empty report.
func (a *Analyzer) AnalyzeText(source, text string) *Report {
	values := a.values.Scan(text)

	return &Report{
		ID:          uuid.New(),
		Source:      source,
		GeneratedAt: a.now().UTC(),
		Values:      values,
		Terms:       a.terms.FindTerms(text),
		Summary:     detector.Summarize(values),
		Text:        text,
	}
}

// AnalyzeFile extracts text from the file at path and analyzes it
func (a *Analyzer) AnalyzeFile(ctx context.Context, path string) (*Report, error) {
	var finishTiming func(bool, map[string]interface{})
	if a.observer != nil {
		finishTiming = a.observer.StartTiming("analyzer", "analyze_file", path)
	}

	content, err := a.manager.ProcessFile(ctx, path)
	if err != nil {
		if finishTiming != nil {
			finishTiming(false, map[string]interface{}{"error": err.Error()})
		}
		return nil, err
	}

	report := a.AnalyzeText(path, content.Text)
	report.Metadata = contentMetadata(content)

	if finishTiming != nil {
		finishTiming(true, map[string]interface{}{
			"value_count":    report.Summary.Total,
			"term_count":     len(report.Terms),
			"critical_count": report.Summary.Critical,
		})
	}

	return report, nil
}

func contentMetadata(content *preprocessors.ProcessedContent) map[string]interface{} {
	md := map[string]interface{}{
		"processor":  content.ProcessorType,
		"format":     content.Format,
		"line_count": content.LineCount,
		"word_count": content.WordCount,
	}
	if content.PageCount > 0 {
		md["page_count"] = content.PageCount
	}
	for k, v := range content.Metadata {
		md[k] = v
	}
	return md
}

// FilterByStatus returns the values whose status is enabled, preserving
// order. The result is never nil.
func FilterByStatus(values []detector.LabValue, enabled map[detector.Status]bool) []detector.LabValue {
	out := make([]detector.LabValue, 0, len(values))
	for _, v := range values {
		if enabled[v.Status] {
			out = append(out, v)
		}
	}
	return out
}

// ParseStatuses converts a comma-separated status string into a map.
// "all" or empty string enables every status.
func ParseStatuses(statuses string) (map[detector.Status]bool, error) {
	result := make(map[detector.Status]bool, len(detector.AllStatuses))
	for _, s := range detector.AllStatuses {
		result[s] = false
	}

	if statuses == "all" || strings.TrimSpace(statuses) == "" {
		for s := range result {
			result[s] = true
		}
		return result, nil
	}

	for _, part := range strings.Split(statuses, ",") {
		s := detector.Status(strings.ToLower(strings.TrimSpace(part)))
		if s == "" {
			continue
		}
		if !s.Valid() {
			return nil, fmt.Errorf("unknown status %q (use normal, warning, critical or all)", part)
		}
		result[s] = true
	}

	return result, nil
}
