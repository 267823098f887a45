// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package preprocessors

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"labscan/internal/observability"
)

// DefaultMaxFileSize is the largest input accepted when no limit is configured.
const DefaultMaxFileSize int64 = 10 * 1024 * 1024

// ProcessedContent represents content that has been processed by a preprocessor
type ProcessedContent struct {
	// Original file information
	OriginalPath string
	Filename     string

	// Extracted content
	Text string

	// Content metadata
	Format    string
	PageCount int
	WordCount int
	CharCount int
	LineCount int

	// Processing information
	ProcessorType string
	Success       bool
	Error         error

	// Capture metadata such as EXIF tags or PDF page information
	Metadata map[string]interface{}
}

// SetMetadata records a metadata value, allocating the map on first use.
func (pc *ProcessedContent) SetMetadata(key string, value interface{}) {
	if pc.Metadata == nil {
		pc.Metadata = make(map[string]interface{})
	}
	pc.Metadata[key] = value
}

// updateCounts recomputes the word, character and line counts from Text.
func (pc *ProcessedContent) updateCounts() {
	pc.WordCount = len(strings.Fields(pc.Text))
	pc.CharCount = len([]rune(pc.Text))
	pc.LineCount = 0
	if pc.Text != "" {
		pc.LineCount = strings.Count(pc.Text, "\n") + 1
	}
}

// Preprocessor interface defines methods for turning a file into recognized text
type Preprocessor interface {
	// CanProcess checks if this preprocessor can handle the given file
	CanProcess(filePath string) bool

	// Process extracts text from the file
	Process(ctx context.Context, filePath string) (*ProcessedContent, error)

	// GetName returns the name of this preprocessor
	GetName() string

	// GetSupportedExtensions returns the file extensions this preprocessor supports
	GetSupportedExtensions() []string

	// SetObserver sets the observability component
	SetObserver(observer *observability.StandardObserver)
}

// PreprocessorManager manages all available preprocessors
type PreprocessorManager struct {
	preprocessors []Preprocessor
	maxFileSize   int64
}

// NewPreprocessorManager creates a new preprocessor manager
func NewPreprocessorManager() *PreprocessorManager {
	return &PreprocessorManager{
		preprocessors: make([]Preprocessor, 0),
		maxFileSize:   DefaultMaxFileSize,
	}
}

// SetMaxFileSize sets the input size limit in bytes. Zero or less restores the default.
func (pm *PreprocessorManager) SetMaxFileSize(limit int64) {
	if limit <= 0 {
		limit = DefaultMaxFileSize
	}
	pm.maxFileSize = limit
}

// MaxFileSize returns the input size limit in bytes.
func (pm *PreprocessorManager) MaxFileSize() int64 {
	return pm.maxFileSize
}

// RegisterPreprocessor adds a preprocessor to the manager
func (pm *PreprocessorManager) RegisterPreprocessor(p Preprocessor) {
	pm.preprocessors = append(pm.preprocessors, p)
}

// SetObserver sets the observability component on every registered preprocessor
func (pm *PreprocessorManager) SetObserver(observer *observability.StandardObserver) {
	for _, p := range pm.preprocessors {
		p.SetObserver(observer)
	}
}

// GetPreprocessor returns the appropriate preprocessor for a file, or nil if none found
func (pm *PreprocessorManager) GetPreprocessor(filePath string) Preprocessor {
	for _, p := range pm.preprocessors {
		if p.CanProcess(filePath) {
			return p
		}
	}
	return nil
}

// SupportedExtensions returns every extension handled by a registered preprocessor
func (pm *PreprocessorManager) SupportedExtensions() []string {
	seen := make(map[string]bool)
	var exts []string
	for _, p := range pm.preprocessors {
		for _, ext := range p.GetSupportedExtensions() {
			if !seen[ext] {
				seen[ext] = true
				exts = append(exts, ext)
			}
		}
	}
	return exts
}

// ProcessFile checks the file against the size limit, extracts its text with
// the first preprocessor that accepts it and normalizes the result. Blank
// output is reported as ErrNoTextExtracted.
func (pm *PreprocessorManager) ProcessFile(ctx context.Context, filePath string) (*ProcessedContent, error) {
	info, err := os.Stat(filePath)
	if err != nil {
		return nil, newProcessingError(filePath, ErrorTypeFileAccess, "failed to get file info", err)
	}
	if info.IsDir() {
		return nil, newProcessingError(filePath, ErrorTypeFileAccess, "path is a directory", ErrUnsupportedFile)
	}
	if info.Size() > pm.maxFileSize {
		return nil, newProcessingError(filePath, ErrorTypeFileSize,
			fmt.Sprintf("%d bytes exceeds limit of %d bytes", info.Size(), pm.maxFileSize), ErrFileTooLarge)
	}

	p := pm.GetPreprocessor(filePath)
	if p == nil {
		return nil, newProcessingError(filePath, ErrorTypeUnsupportedFormat,
			fmt.Sprintf("extension %q", filepath.Ext(filePath)), ErrUnsupportedFile)
	}

	if err := ctx.Err(); err != nil {
		return nil, newProcessingError(filePath, ErrorTypeCancelled, "processing cancelled", err)
	}

	result, err := p.Process(ctx, filePath)
	if err != nil {
		return result, err
	}

	result.Text = Normalize(result.Text)
	result.updateCounts()
	if strings.TrimSpace(result.Text) == "" {
		result.Success = false
		result.Error = ErrNoTextExtracted
		return result, newProcessingError(filePath, ErrorTypeExtractionFailed, "", ErrNoTextExtracted)
	}

	return result, nil
}

// GetAvailablePreprocessors returns all registered preprocessors
func (pm *PreprocessorManager) GetAvailablePreprocessors() []Preprocessor {
	return pm.preprocessors
}

// hasExtension reports whether filePath ends in one of exts, ignoring case.
func hasExtension(filePath string, exts []string) bool {
	ext := strings.ToLower(filepath.Ext(filePath))
	for _, supported := range exts {
		if ext == supported {
			return true
		}
	}
	return false
}
