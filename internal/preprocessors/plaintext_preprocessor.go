// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package preprocessors

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"labscan/internal/observability"
)

// PlainTextPreprocessor passes text exports of lab reports through unchanged
type PlainTextPreprocessor struct {
	observer *observability.StandardObserver
}

// NewPlainTextPreprocessor creates a new plain text preprocessor
func NewPlainTextPreprocessor() *PlainTextPreprocessor {
	return &PlainTextPreprocessor{}
}

// SetObserver sets the observability component
func (ptp *PlainTextPreprocessor) SetObserver(observer *observability.StandardObserver) {
	ptp.observer = observer
}

// GetName returns the name of this preprocessor
func (ptp *PlainTextPreprocessor) GetName() string {
	return "Plain Text Preprocessor"
}

// GetSupportedExtensions returns the file extensions this preprocessor supports
func (ptp *PlainTextPreprocessor) GetSupportedExtensions() []string {
	return []string{".txt", ".text", ".log", ".md", ".csv", ".tsv"}
}

// CanProcess checks if this preprocessor can handle the given file
func (ptp *PlainTextPreprocessor) CanProcess(filePath string) bool {
	return hasExtension(filePath, ptp.GetSupportedExtensions())
}

// Process reads the file as UTF-8. Invalid byte sequences are replaced rather
// than rejected, since OCR exports are often mis-encoded.
func (ptp *PlainTextPreprocessor) Process(ctx context.Context, filePath string) (*ProcessedContent, error) {
	var finishTiming func(bool, map[string]interface{})
	if ptp.observer != nil {
		finishTiming = ptp.observer.StartTiming("plaintext_preprocessor", "process_file", filePath)
	}

	content := &ProcessedContent{
		OriginalPath:  filePath,
		Filename:      filepath.Base(filePath),
		Format:        "text",
		ProcessorType: ptp.GetName(),
	}

	data, err := os.ReadFile(filepath.Clean(filePath))
	if err != nil {
		if finishTiming != nil {
			finishTiming(false, map[string]interface{}{"error": err.Error()})
		}
		content.Error = err
		return content, newProcessingError(filePath, ErrorTypeFileAccess, "failed to read file", err)
	}

	text := string(data)
	if !utf8.ValidString(text) {
		text = strings.ToValidUTF8(text, "�")
		content.SetMetadata("invalid_utf8", true)
	}

	content.Text = text
	content.PageCount = 1
	content.Success = true
	content.updateCounts()

	if finishTiming != nil {
		finishTiming(true, map[string]interface{}{
			"byte_count": len(data),
			"line_count": content.LineCount,
		})
	}

	return content, nil
}
