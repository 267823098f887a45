// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package csv

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"labscan/internal/core"
	"labscan/internal/detector"
	"labscan/internal/formatters"
)

// Formatter implements CSV output formatting
type Formatter struct{}

// NewFormatter creates a new CSV formatter
func NewFormatter() *Formatter {
	return &Formatter{}
}

func (f *Formatter) Name() string {
	return "csv"
}

func (f *Formatter) Description() string {
	return "Comma-separated values for spreadsheet import, one row per lab value"
}

func (f *Formatter) FileExtension() string {
	return ".csv"
}

func (f *Formatter) Format(reports []*core.Report, options formatters.FormatterOptions) (string, error) {
	headers := []string{"Source", "Line", "Key", "Name", "Value", "Unit", "Min", "Max", "Status", "Category"}
	if options.Verbose {
		headers = append(headers, "Explanation", "Metadata")
	}

	rows := []string{strings.Join(headers, ",")}
	for _, r := range formatters.ApplyOptions(reports, options) {
		metadata := ""
		if options.Verbose && len(r.Metadata) > 0 {
			data, err := json.Marshal(r.Metadata)
			if err != nil {
				metadata = "Error serializing metadata"
			} else {
				metadata = string(data)
			}
		}
		for _, v := range r.Values {
			rows = append(rows, f.createCSVRow(r.Source, v, metadata, options))
		}
	}

	return strings.Join(rows, "\n"), nil
}

// createCSVRow creates a CSV row for a lab value
func (f *Formatter) createCSVRow(source string, v detector.LabValue, metadata string, options formatters.FormatterOptions) string {
	row := []string{
		f.escapeCSVField(source),
		fmt.Sprintf("%d", v.Line),
		f.escapeCSVField(v.Key),
		f.escapeCSVField(v.Name),
		formatNumber(v.Value),
		f.escapeCSVField(v.Unit),
		formatNumber(v.NormalRange.Min),
		formatNumber(v.NormalRange.Max),
		f.escapeCSVField(v.Status.Label()),
		f.escapeCSVField(v.Category),
	}
	if options.Verbose {
		row = append(row, f.escapeCSVField(v.Explanation), f.escapeCSVField(metadata))
	}
	return strings.Join(row, ",")
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// escapeCSVField properly escapes a field for CSV format and prevents CSV injection
func (f *Formatter) escapeCSVField(field string) string {
	field = f.sanitizeFormulaInjection(field)

	// If field contains comma, quote, or newline, wrap in quotes and escape internal quotes
	if strings.ContainsAny(field, ",\"\n\r") {
		escaped := strings.ReplaceAll(field, "\"", "\"\"")
		return fmt.Sprintf("\"%s\"", escaped)
	}
	return field
}

// sanitizeFormulaInjection prevents CSV injection by neutralizing leading formula characters
func (f *Formatter) sanitizeFormulaInjection(field string) string {
	if len(field) == 0 {
		return field
	}

	switch field[0] {
	case '=', '+', '-', '@':
		return "'" + field
	}
	return field
}

// Register the formatter during package initialization
func init() {
	formatters.Register(NewFormatter())
}
