// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package preprocessors

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNoTextExtracted is returned when recognition produced only whitespace.
	ErrNoTextExtracted = errors.New("no text extracted")
	// ErrFileTooLarge is returned when the input exceeds the configured size limit.
	ErrFileTooLarge = errors.New("file too large")
	// ErrUnsupportedFile is returned when no preprocessor accepts the file.
	ErrUnsupportedFile = errors.New("unsupported file type")
	// ErrRecognizerUnavailable is returned when the OCR command cannot be found.
	ErrRecognizerUnavailable = errors.New("text recognizer unavailable")
)

// ErrorType represents different types of processing errors
type ErrorType string

const (
	ErrorTypeFileAccess        ErrorType = "file_access"
	ErrorTypeFileSize          ErrorType = "file_size"
	ErrorTypeUnsupportedFormat ErrorType = "unsupported_format"
	ErrorTypeInvalidFormat     ErrorType = "invalid_format"
	ErrorTypeExtractionFailed  ErrorType = "extraction_failed"
	ErrorTypeRecognition       ErrorType = "recognition_failed"
	ErrorTypeCancelled         ErrorType = "cancelled"
)

// ProcessingError describes a failure to turn a file into text
type ProcessingError struct {
	FilePath  string
	ErrorType ErrorType
	Message   string
	Cause     error
}

func newProcessingError(filePath string, errorType ErrorType, message string, cause error) *ProcessingError {
	return &ProcessingError{
		FilePath:  filePath,
		ErrorType: errorType,
		Message:   message,
		Cause:     cause,
	}
}

// Error implements the error interface
func (pe *ProcessingError) Error() string {
	parts := []string{fmt.Sprintf("processing failed for %s", pe.FilePath)}
	parts = append(parts, fmt.Sprintf("error=%s", pe.ErrorType))
	if pe.Message != "" {
		parts = append(parts, fmt.Sprintf("message=%s", pe.Message))
	}
	if pe.Cause != nil {
		parts = append(parts, fmt.Sprintf("cause=%v", pe.Cause))
	}
	return strings.Join(parts, " ")
}

// Unwrap returns the underlying error
func (pe *ProcessingError) Unwrap() error {
	return pe.Cause
}

// GetUserFriendlyMessage returns a short message suitable for end users
func (pe *ProcessingError) GetUserFriendlyMessage() string {
	switch {
	case errors.Is(pe.Cause, ErrNoTextExtracted):
		return "No text could be extracted. Try a clearer scan or a text-based PDF."
	case errors.Is(pe.Cause, ErrFileTooLarge):
		return "The file is too large to analyze."
	case errors.Is(pe.Cause, ErrUnsupportedFile):
		return "This file type is not supported. Use an image, a PDF or a text file."
	case errors.Is(pe.Cause, ErrRecognizerUnavailable):
		return "Text recognition is not available. Install tesseract or configure another OCR command."
	}

	switch pe.ErrorType {
	case ErrorTypeFileAccess:
		return "The file could not be read."
	case ErrorTypeInvalidFormat:
		return "The file appears to be damaged or is not a valid document."
	case ErrorTypeCancelled:
		return "Processing was cancelled."
	default:
		return "Failed to process the file."
	}
}

// UserMessage returns the end user message for err, falling back to its text
func UserMessage(err error) string {
	var pe *ProcessingError
	if errors.As(err, &pe) {
		return pe.GetUserFriendlyMessage()
	}
	return err.Error()
}
