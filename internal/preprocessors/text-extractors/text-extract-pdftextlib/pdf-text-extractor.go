// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package textextractpdftextlib

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ledongthuc/pdf"
)

// DefaultMaxPages caps the number of pages read from a single document.
const DefaultMaxPages = 50

// ProgressFunc is called after each page with the 1-based page number and
// the number of pages that will be read.
type ProgressFunc func(page, total int)

// Options control text layer extraction
type Options struct {
	MaxPages int
	Progress ProgressFunc
}

// TextContent represents the extracted text content from a PDF document
type TextContent struct {
	Filename    string
	Text        string
	PageCount   int // pages in the document
	PagesRead   int
	FailedPages int
	Truncated   bool
	FormFields  int
}

// ExtractText extracts the text layer of a PDF document page by page. Each
// visual row becomes one line so that a test name and its value stay together.
func ExtractText(ctx context.Context, filePath string, opts Options) (*TextContent, error) {
	content := &TextContent{
		Filename: filepath.Base(filePath),
	}

	f, r, err := pdf.Open(filePath)
	if err != nil {
		return content, fmt.Errorf("error opening PDF: %w", err)
	}
	defer f.Close()

	content.PageCount = r.NumPage()

	maxPages := opts.MaxPages
	if maxPages <= 0 {
		maxPages = DefaultMaxPages
	}
	pages := content.PageCount
	if pages > maxPages {
		pages = maxPages
		content.Truncated = true
	}

	var buf bytes.Buffer
	for i := 1; i <= pages; i++ {
		if err := ctx.Err(); err != nil {
			return content, err
		}

		p := r.Page(i)
		if p.V.IsNull() {
			content.FailedPages++
			continue
		}

		text, err := extractTextByRow(p)
		if err != nil {
			content.FailedPages++
			continue
		}

		if buf.Len() > 0 {
			buf.WriteString("\n")
		}
		buf.WriteString(text)
		content.PagesRead++

		if opts.Progress != nil {
			opts.Progress(i, pages)
		}
	}

	// Fillable report templates keep results in AcroForm fields
	formData, fields := extractFormData(r)
	if formData != "" {
		buf.WriteString("\n")
		buf.WriteString(formData)
		content.FormFields = fields
	}

	content.Text = cleanTextPreservingLines(buf.String())
	return content, nil
}

// extractFormData renders AcroForm fields as "name: value" lines
func extractFormData(r *pdf.Reader) (string, int) {
	root := r.Trailer().Key("Root")
	if root.IsNull() {
		return "", 0
	}
	fields := root.Key("AcroForm").Key("Fields")
	if fields.IsNull() || fields.Kind() != pdf.Array {
		return "", 0
	}

	var buf bytes.Buffer
	count := 0
	for i := 0; i < fields.Len(); i++ {
		name, value := extractFieldNameValue(fields.Index(i))
		if name == "" || value == "" {
			continue
		}
		fmt.Fprintf(&buf, "%s: %s\n", name, value)
		count++
	}
	return buf.String(), count
}

// extractFieldNameValue extracts name and value from a single form field
func extractFieldNameValue(field pdf.Value) (string, string) {
	if field.Kind() != pdf.Dict {
		return "", ""
	}

	var name string
	if t := field.Key("T"); t.Kind() == pdf.String {
		name = t.Text()
	}

	value := fieldText(field.Key("V"))
	if value == "" {
		value = fieldText(field.Key("DV"))
	}
	return name, value
}

func fieldText(v pdf.Value) string {
	switch v.Kind() {
	case pdf.String:
		return v.Text()
	case pdf.Name:
		return v.Name()
	case pdf.Integer:
		return fmt.Sprintf("%d", v.Int64())
	case pdf.Real:
		return fmt.Sprintf("%g", v.Float64())
	}
	return ""
}

// cleanTextPreservingLines trims each line, collapses runs of spaces and
// drops blank lines
func cleanTextPreservingLines(text string) string {
	lines := strings.Split(text, "\n")
	cleaned := make([]string, 0, len(lines))

	for _, line := range lines {
		line = strings.Join(strings.Fields(line), " ")
		if line != "" {
			cleaned = append(cleaned, line)
		}
	}

	return strings.Join(cleaned, "\n")
}

// extractTextByRow extracts text using row-based positioning for better spacing
func extractTextByRow(p pdf.Page) (string, error) {
	rows, err := p.GetTextByRow()
	if err != nil {
		return p.GetPlainText(nil)
	}

	sortedRows := make([]*pdf.Row, 0, len(rows))
	for _, row := range rows {
		if row != nil && len(row.Content) > 0 {
			sortedRows = append(sortedRows, row)
		}
	}

	// PDF Y grows upwards; higher rows come first when reading
	sort.SliceStable(sortedRows, func(i, j int) bool {
		return averageY(sortedRows[i].Content) > averageY(sortedRows[j].Content)
	})

	var buf bytes.Buffer
	for _, row := range sortedRows {
		rowText := reconstructRowText(row.Content)
		if strings.TrimSpace(rowText) != "" {
			buf.WriteString(rowText)
			buf.WriteString("\n")
		}
	}

	return buf.String(), nil
}

func averageY(textElements []pdf.Text) float64 {
	if len(textElements) == 0 {
		return 0
	}

	var totalY float64
	for _, element := range textElements {
		totalY += element.Y
	}
	return totalY / float64(len(textElements))
}

// reconstructRowText joins the glyph runs of a row left to right, inserting a
// space where the gap between runs is wider than a fifth of the font size
func reconstructRowText(textElements []pdf.Text) string {
	if len(textElements) == 0 {
		return ""
	}

	sorted := make([]pdf.Text, len(textElements))
	copy(sorted, textElements)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].X < sorted[j].X
	})

	var buf bytes.Buffer
	for i, element := range sorted {
		buf.WriteString(element.S)

		if i == len(sorted)-1 {
			break
		}
		fontSize := element.FontSize
		if fontSize <= 0 {
			fontSize = 12
		}
		gap := sorted[i+1].X - (element.X + element.W)
		if gap > fontSize*0.2 {
			buf.WriteString(" ")
		}
	}

	return buf.String()
}
