// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package preprocessors

import (
	textextractpdftextlib "labscan/internal/preprocessors/text-extractors/text-extract-pdftextlib"
)

// Options configure the standard preprocessor set
type Options struct {
	MaxFileSize int64
	MaxPDFPages int
	PDFProgress textextractpdftextlib.ProgressFunc

	// Recognizer overrides the OCR command when set
	Recognizer  Recognizer
	OCRCommand  string
	OCRArgs     []string
	OCRLanguage string
	OCRRetries  int
}

// NewDefaultManager registers the plain text, PDF and image preprocessors
func NewDefaultManager(opts Options) *PreprocessorManager {
	pm := NewPreprocessorManager()
	pm.SetMaxFileSize(opts.MaxFileSize)

	pdf := NewPDFPreprocessor(opts.MaxPDFPages)
	pdf.SetProgress(opts.PDFProgress)

	recognizer := opts.Recognizer
	if recognizer == nil {
		recognizer = NewCommandRecognizer(opts.OCRCommand, opts.OCRArgs, opts.OCRLanguage)
	}
	if opts.OCRRetries > 0 {
		recognizer = NewRetryingRecognizer(recognizer, opts.OCRRetries)
	}

	pm.RegisterPreprocessor(NewPlainTextPreprocessor())
	pm.RegisterPreprocessor(pdf)
	pm.RegisterPreprocessor(NewImagePreprocessor(recognizer))
	return pm
}
