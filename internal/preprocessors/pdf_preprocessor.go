// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package preprocessors

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"labscan/internal/observability"
	textextractpdftextlib "labscan/internal/preprocessors/text-extractors/text-extract-pdftextlib"
)

// PDFPreprocessor reads the text layer of PDF lab reports. Scanned PDFs
// without a text layer produce no text.
type PDFPreprocessor struct {
	maxPages  int
	progress  textextractpdftextlib.ProgressFunc
	pdfConfig *model.Configuration
	observer  *observability.StandardObserver
}

// NewPDFPreprocessor creates a PDF preprocessor reading at most maxPages
// pages. Zero or less selects the default cap.
func NewPDFPreprocessor(maxPages int) *PDFPreprocessor {
	if maxPages <= 0 {
		maxPages = textextractpdftextlib.DefaultMaxPages
	}
	api.DisableConfigDir()
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed

	return &PDFPreprocessor{
		maxPages:  maxPages,
		pdfConfig: conf,
	}
}

// SetProgress registers a callback invoked after each page is read
func (pp *PDFPreprocessor) SetProgress(progress textextractpdftextlib.ProgressFunc) {
	pp.progress = progress
}

// SetObserver sets the observability component
func (pp *PDFPreprocessor) SetObserver(observer *observability.StandardObserver) {
	pp.observer = observer
}

// GetName returns the name of this preprocessor
func (pp *PDFPreprocessor) GetName() string {
	return "PDF Text Preprocessor"
}

// GetSupportedExtensions returns the file extensions this preprocessor supports
func (pp *PDFPreprocessor) GetSupportedExtensions() []string {
	return []string{".pdf"}
}

// CanProcess checks if this preprocessor can handle the given file
func (pp *PDFPreprocessor) CanProcess(filePath string) bool {
	return hasExtension(filePath, pp.GetSupportedExtensions())
}

// Process validates the document and extracts its text layer
func (pp *PDFPreprocessor) Process(ctx context.Context, filePath string) (*ProcessedContent, error) {
	var finishTiming func(bool, map[string]interface{})
	var finishStep func(bool, string)
	if pp.observer != nil {
		finishTiming = pp.observer.StartTiming("pdf_preprocessor", "process_file", filePath)
		if pp.observer.DebugObserver != nil {
			finishStep = pp.observer.DebugObserver.StartStep("pdf_preprocessor", "extract_text", filePath)
		}
	}
	fail := func(content *ProcessedContent, err error) (*ProcessedContent, error) {
		content.Error = err
		if finishTiming != nil {
			finishTiming(false, map[string]interface{}{"error": err.Error()})
		}
		if finishStep != nil {
			finishStep(false, err.Error())
		}
		return content, err
	}

	content := &ProcessedContent{
		OriginalPath:  filePath,
		Filename:      filepath.Base(filePath),
		Format:        "pdf",
		ProcessorType: pp.GetName(),
	}

	if err := api.ValidateFile(filePath, pp.pdfConfig); err != nil {
		return fail(content, newProcessingError(filePath, ErrorTypeInvalidFormat, "invalid PDF file", err))
	}

	pdfCtx, err := api.ReadContextFile(filePath)
	if err != nil {
		return fail(content, newProcessingError(filePath, ErrorTypeInvalidFormat, "failed to read PDF context", err))
	}
	content.PageCount = pdfCtx.PageCount

	if pp.observer != nil && pp.observer.DebugObserver != nil {
		pp.observer.DebugObserver.LogMetric("pdf_preprocessor", "page_count", pdfCtx.PageCount)
	}

	extracted, err := textextractpdftextlib.ExtractText(ctx, filePath, textextractpdftextlib.Options{
		MaxPages: pp.maxPages,
		Progress: pp.progress,
	})
	if err != nil {
		if ctx.Err() != nil {
			return fail(content, newProcessingError(filePath, ErrorTypeCancelled, "processing cancelled", err))
		}
		return fail(content, newProcessingError(filePath, ErrorTypeExtractionFailed, "failed to extract text", err))
	}

	content.Text = extracted.Text
	content.Success = true
	content.SetMetadata("pages_read", extracted.PagesRead)
	if extracted.FailedPages > 0 {
		content.SetMetadata("failed_pages", extracted.FailedPages)
	}
	if extracted.Truncated {
		content.SetMetadata("truncated", true)
	}
	if extracted.FormFields > 0 {
		content.SetMetadata("form_fields", extracted.FormFields)
	}
	content.updateCounts()

	if finishTiming != nil {
		finishTiming(true, map[string]interface{}{
			"page_count": content.PageCount,
			"pages_read": extracted.PagesRead,
			"line_count": content.LineCount,
		})
	}
	if finishStep != nil {
		finishStep(true, fmt.Sprintf("read %d of %d pages", extracted.PagesRead, content.PageCount))
	}

	return content, nil
}
