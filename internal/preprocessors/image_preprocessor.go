// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package preprocessors

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"labscan/internal/observability"
	metaextractexiflib "labscan/internal/preprocessors/meta-extractors/meta-extract-exiflib"
)

// exifTags are copied into the processed content metadata when present
var exifTags = []string{"Make", "Model", "Software", "Orientation", "PixelXDimension", "PixelYDimension"}

// ImagePreprocessor recognizes the text of photographed or scanned reports
type ImagePreprocessor struct {
	recognizer Recognizer
	observer   *observability.StandardObserver
}

// NewImagePreprocessor creates an image preprocessor backed by recognizer
func NewImagePreprocessor(recognizer Recognizer) *ImagePreprocessor {
	return &ImagePreprocessor{recognizer: recognizer}
}

// SetObserver sets the observability component
func (ip *ImagePreprocessor) SetObserver(observer *observability.StandardObserver) {
	ip.observer = observer
}

// GetName returns the name of this preprocessor
func (ip *ImagePreprocessor) GetName() string {
	return "Image OCR Preprocessor"
}

// GetSupportedExtensions returns the file extensions this preprocessor supports
func (ip *ImagePreprocessor) GetSupportedExtensions() []string {
	return []string{".png", ".jpg", ".jpeg", ".webp", ".bmp", ".tif", ".tiff"}
}

// CanProcess checks if this preprocessor can handle the given file
func (ip *ImagePreprocessor) CanProcess(filePath string) bool {
	return hasExtension(filePath, ip.GetSupportedExtensions())
}

// Process reads capture metadata and runs text recognition
func (ip *ImagePreprocessor) Process(ctx context.Context, filePath string) (*ProcessedContent, error) {
	var finishTiming func(bool, map[string]interface{})
	var finishStep func(bool, string)
	if ip.observer != nil {
		finishTiming = ip.observer.StartTiming("image_preprocessor", "process_file", filePath)
		if ip.observer.DebugObserver != nil {
			finishStep = ip.observer.DebugObserver.StartStep("image_preprocessor", "recognize", filePath)
		}
	}

	content := &ProcessedContent{
		OriginalPath:  filePath,
		Filename:      filepath.Base(filePath),
		Format:        strings.TrimPrefix(strings.ToLower(filepath.Ext(filePath)), "."),
		PageCount:     1,
		ProcessorType: ip.GetName(),
	}

	// Metadata is best effort; most non-JPEG images carry none.
	if data, err := metaextractexiflib.ExtractExif(filePath); err == nil {
		for _, name := range exifTags {
			if v, ok := data.Tags[name]; ok {
				content.SetMetadata("exif_"+strings.ToLower(name), v)
			}
		}
		if !data.Captured.IsZero() {
			content.SetMetadata("captured_at", data.Captured.Format(time.RFC3339))
		}
	}

	text, err := ip.recognizer.Recognize(ctx, filePath)
	if err != nil {
		content.Error = err
		if finishTiming != nil {
			finishTiming(false, map[string]interface{}{"error": err.Error()})
		}
		if finishStep != nil {
			finishStep(false, fmt.Sprintf("recognition failed: %v", err))
		}
		return content, newProcessingError(filePath, ErrorTypeRecognition, "text recognition failed", err)
	}

	content.Text = text
	content.Success = true
	content.updateCounts()

	if finishTiming != nil {
		finishTiming(true, map[string]interface{}{
			"char_count": content.CharCount,
			"line_count": content.LineCount,
		})
	}
	if finishStep != nil {
		finishStep(true, fmt.Sprintf("recognized %d lines", content.LineCount))
	}

	return content, nil
}
