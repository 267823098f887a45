// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package web

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"labscan/internal/core"
	"labscan/internal/formatters"
	"labscan/internal/knowledge"
	"labscan/internal/preprocessors"
	"labscan/internal/version"
)

// AnalyzeRequest is the JSON body accepted by POST /api/analyze
type AnalyzeRequest struct {
	Text   string `json:"text"`
	Source string `json:"source"`
}

// ErrorResponse is returned for every failed request
type ErrorResponse struct {
	Error string `json:"error"`
}

// ReferenceResponse lists the knowledge base tables
type ReferenceResponse struct {
	Terms  []knowledge.Term           `json:"terms"`
	Ranges []knowledge.ReferenceRange `json:"ranges"`
}

func (s *Server) handleHealth(c echo.Context) error {
	versionInfo := version.Full()

	return c.JSON(http.StatusOK, map[string]interface{}{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"service":   "labscan",
		"version":   versionInfo["version"],
		"build_info": map[string]interface{}{
			"version":    versionInfo["version"],
			"commit":     versionInfo["commit"],
			"build_date": versionInfo["buildDate"],
			"go_version": versionInfo["goVersion"],
			"platform":   versionInfo["platform"],
		},
	})
}

func (s *Server) handleReference(c echo.Context) error {
	base := s.analyzer.Base()
	return c.JSON(http.StatusOK, ReferenceResponse{
		Terms:  base.Terms(),
		Ranges: base.Ranges(),
	})
}

func (s *Server) handleFormats(c echo.Context) error {
	return c.JSON(http.StatusOK, formatters.GetSupportedFormats())
}

// handleAnalyze accepts either a JSON body with recognized text or a
// multipart upload in the "file" field, and renders the report in the
// requested format.
func (s *Server) handleAnalyze(c echo.Context) error {
	format := c.QueryParam("format")
	if format == "" {
		format = "json"
	}
	if _, ok := formatters.Get(format); !ok {
		return sendError(c, http.StatusBadRequest, fmt.Sprintf("unsupported format %q, available: %s",
			format, strings.Join(formatters.List(), ", ")))
	}

	statuses, err := core.ParseStatuses(c.QueryParam("status"))
	if err != nil {
		return sendError(c, http.StatusBadRequest, err.Error())
	}

	var report *core.Report
	if strings.HasPrefix(c.Request().Header.Get(echo.HeaderContentType), echo.MIMEMultipartForm) {
		report, err = s.analyzeUpload(c)
	} else {
		report, err = s.analyzeBody(c)
	}
	if err != nil {
		return sendError(c, statusFor(err), preprocessors.UserMessage(err))
	}

	options := formatters.FormatterOptions{
		Statuses:  statuses,
		NoColor:   true,
		Verbose:   c.QueryParam("verbose") == "true",
		ShowText:  c.QueryParam("show_text") == "true",
		ShowTerms: c.QueryParam("show_terms") != "false",
	}
	content, mimeType, filename, err := formatters.ExportForWeb(format, []*core.Report{report}, options)
	if err != nil {
		return sendError(c, http.StatusInternalServerError, fmt.Sprintf("failed to format report: %v", err))
	}

	if c.QueryParam("download") == "true" {
		c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", filename))
	}
	return c.Blob(http.StatusOK, mimeType, []byte(content))
}

var errEmptyText = errors.New("text is required")

func (s *Server) analyzeBody(c echo.Context) (*core.Report, error) {
	var req AnalyzeRequest
	if err := c.Bind(&req); err != nil {
		return nil, fmt.Errorf("invalid request body: %w", err)
	}

	text := preprocessors.Normalize(req.Text)
	if strings.TrimSpace(text) == "" {
		return nil, errEmptyText
	}

	source := sanitizeUserInput(req.Source, 200)
	if source == "" {
		source = "request"
	}
	return s.analyzer.AnalyzeText(source, text), nil
}

func (s *Server) analyzeUpload(c echo.Context) (*core.Report, error) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return nil, fmt.Errorf("missing upload field \"file\": %w", err)
	}

	path, cleanup, err := s.saveUpload(fileHeader)
	if err != nil {
		return nil, err
	}
	defer cleanup()

	report, err := s.analyzer.AnalyzeFile(c.Request().Context(), path)
	if err != nil {
		return nil, err
	}
	report.Source = sanitizeUserInput(fileHeader.Filename, 200)
	return report, nil
}

// saveUpload copies an uploaded file to a temp file that keeps its extension,
// since preprocessors are chosen by extension
func (s *Server) saveUpload(fileHeader *multipart.FileHeader) (string, func(), error) {
	file, err := fileHeader.Open()
	if err != nil {
		return "", nil, fmt.Errorf("failed to open upload %s: %w", fileHeader.Filename, err)
	}
	defer file.Close()

	tempFile, err := os.CreateTemp(s.tempDir, fmt.Sprintf("labscan_upload_*.%s", getFileExtension(fileHeader.Filename)))
	if err != nil {
		return "", nil, fmt.Errorf("failed to create temporary file: %w", err)
	}
	cleanup := func() { _ = os.Remove(tempFile.Name()) }

	// One byte past the limit is enough for the size check to fire
	limit := s.analyzer.Preprocessors().MaxFileSize() + 1
	_, err = io.Copy(tempFile, io.LimitReader(file, limit))
	closeErr := tempFile.Close()
	if err == nil {
		err = closeErr
	}
	if err != nil {
		cleanup()
		return "", nil, fmt.Errorf("failed to copy upload: %w", err)
	}
	return tempFile.Name(), cleanup, nil
}

func statusFor(err error) int {
	var httpErr *echo.HTTPError
	switch {
	case errors.As(err, &httpErr):
		return httpErr.Code
	case errors.Is(err, errEmptyText):
		return http.StatusBadRequest
	case errors.Is(err, preprocessors.ErrUnsupportedFile):
		return http.StatusUnsupportedMediaType
	case errors.Is(err, preprocessors.ErrFileTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, preprocessors.ErrNoTextExtracted):
		return http.StatusUnprocessableEntity
	case errors.Is(err, preprocessors.ErrRecognizerUnavailable):
		return http.StatusServiceUnavailable
	}

	var pe *preprocessors.ProcessingError
	if errors.As(err, &pe) {
		if pe.ErrorType == preprocessors.ErrorTypeCancelled {
			return http.StatusServiceUnavailable
		}
		return http.StatusUnprocessableEntity
	}
	return http.StatusBadRequest
}

func sendError(c echo.Context, status int, message string) error {
	return c.JSON(status, ErrorResponse{Error: message})
}

// getFileExtension extracts file extension from filename with sanitization
func getFileExtension(filename string) string {
	if ext := filepath.Ext(filename); ext != "" {
		safeExt := sanitizeUserInput(strings.TrimPrefix(ext, "."), 10)
		if safeExt != "" && isAlphanumeric(safeExt) {
			return strings.ToLower(safeExt)
		}
	}
	return "tmp"
}

// isAlphanumeric checks if string contains only alphanumeric characters
func isAlphanumeric(s string) bool {
	for _, r := range s {
		if !((r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')) {
			return false
		}
	}
	return true
}

// sanitizeUserInput removes dangerous characters from user input for safe output
func sanitizeUserInput(input string, maxLength int) string {
	sanitized := strings.Map(func(r rune) rune {
		if r < 32 || r == 127 {
			return -1
		}
		switch r {
		case '<', '>', '"', '\'', '&':
			return -1
		}
		return r
	}, input)

	if runes := []rune(sanitized); len(runes) > maxLength {
		sanitized = string(runes[:maxLength]) + "..."
	}
	return sanitized
}
