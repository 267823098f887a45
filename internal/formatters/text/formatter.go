// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package text

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"labscan/internal/core"
	"labscan/internal/detector"
	"labscan/internal/formatters"
	"labscan/internal/formatters/shared"

	"github.com/fatih/color"
)

const gaugeWidth = 21

// Formatter implements text-based output formatting
type Formatter struct {
	colors map[string]*color.Color
}

// NewFormatter creates a new text formatter
func NewFormatter() *Formatter {
	return &Formatter{
		colors: map[string]*color.Color{
			"green":   color.New(color.FgGreen),
			"yellow":  color.New(color.FgYellow),
			"red":     color.New(color.FgRed),
			"cyan":    color.New(color.FgCyan),
			"magenta": color.New(color.FgMagenta),
			"white":   color.New(color.FgWhite, color.Bold),
		},
	}
}

func (f *Formatter) Name() string {
	return "text"
}

func (f *Formatter) Description() string {
	return "Human-readable text output with colors, range gauges and a glossary"
}

func (f *Formatter) FileExtension() string {
	return ".txt"
}

func (f *Formatter) Format(reports []*core.Report, options formatters.FormatterOptions) (string, error) {
	var builder strings.Builder

	filtered := formatters.ApplyOptions(reports, options)
	for i, r := range filtered {
		if i > 0 {
			builder.WriteString("\n")
		}
		f.appendReport(&builder, r, options)
	}

	return builder.String(), nil
}

// paint applies the named color unless colors are disabled
func (f *Formatter) paint(options formatters.FormatterOptions, name, format string, args ...interface{}) string {
	if options.NoColor {
		return fmt.Sprintf(format, args...)
	}
	return f.colors[name].Sprintf(format, args...)
}

func (f *Formatter) appendReport(builder *strings.Builder, r *core.Report, options formatters.FormatterOptions) {
	builder.WriteString(f.paint(options, "white", "=== %s ===", r.Source))
	builder.WriteString("\n")

	if len(r.Values) == 0 {
		builder.WriteString("No lab values found.\n")
	} else {
		f.appendHeaders(builder, options)
		for _, v := range r.Values {
			f.appendValueLine(builder, v, options)
			if options.Verbose {
				fmt.Fprintf(builder, "           %s\n", v.Explanation)
			}
		}
	}

	f.appendSummary(builder, r.Summary, options)

	if options.ShowTerms && len(r.Terms) > 0 {
		builder.WriteString("\n")
		builder.WriteString(f.paint(options, "white", "Glossary"))
		builder.WriteString("\n")
		for _, t := range r.Terms {
			fmt.Fprintf(builder, "  %s %s: %s\n",
				f.paint(options, "cyan", "%s", t.Term),
				f.paint(options, "magenta", "(%s)", t.Category),
				t.Explanation)
		}
	}

	if options.ShowText && r.Text != "" {
		builder.WriteString("\n")
		builder.WriteString(f.paint(options, "white", "Recognized text"))
		builder.WriteString("\n")
		builder.WriteString(strings.TrimRight(r.Text, "\n"))
		builder.WriteString("\n")
	}
}

// appendHeaders adds column headers to the string builder
func (f *Formatter) appendHeaders(builder *strings.Builder, options formatters.FormatterOptions) {
	header := fmt.Sprintf("%-11s %-24s %-18s %-22s %-6s %s", "STATUS", "TEST", "VALUE", "RANGE", "LINE", "GAUGE")
	builder.WriteString(f.paint(options, "white", "%s", header))
	builder.WriteString("\n")
	builder.WriteString(f.paint(options, "white", "%s", strings.Repeat("-", len(header)+gaugeWidth-5)))
	builder.WriteString("\n")
}

// appendValueLine adds a single line for one lab value
func (f *Formatter) appendValueLine(builder *strings.Builder, v detector.LabValue, options formatters.FormatterOptions) {
	statusStr := f.paint(options, statusColor(v.Status), "%-11s", "["+v.Status.Label()+"]")
	nameStr := f.paint(options, "cyan", "%-24s", truncate(v.Name, 24))
	valueStr := fmt.Sprintf("%-18s", truncate(withUnit(formatNumber(v.Value), v.Unit), 18))
	rangeStr := fmt.Sprintf("%-22s", truncate(withUnit(formatNumber(v.NormalRange.Min)+"-"+formatNumber(v.NormalRange.Max), v.Unit), 22))
	lineStr := f.paint(options, "magenta", "%-6d", v.Line)
	gauge := GaugeBar(shared.GaugePosition(v.Value, v.NormalRange))

	fmt.Fprintf(builder, "%s %s %s %s %s %s\n", statusStr, nameStr, valueStr, rangeStr, lineStr, gauge)
}

func (f *Formatter) appendSummary(builder *strings.Builder, s detector.Summary, options formatters.FormatterOptions) {
	fmt.Fprintf(builder, "\nSummary: %d values  %s  %s  %s\n",
		s.Total,
		f.paint(options, "green", "%d %s", s.Normal, detector.StatusNormal.Label()),
		f.paint(options, "yellow", "%d %s", s.Warning, detector.StatusWarning.Label()),
		f.paint(options, "red", "%d %s", s.Critical, detector.StatusCritical.Label()))
}

// GaugeBar draws a fixed-width gauge for a position in percent. The reference
// range is drawn with '=', the widened margins with '-', the value with '|'.
func GaugeBar(position float64) string {
	inner := gaugeWidth - 2
	normalStart := int(math.Round(shared.GaugeMargin / (1 + 2*shared.GaugeMargin) * float64(inner-1)))
	normalEnd := inner - 1 - normalStart
	marker := int(math.Round(position / 100 * float64(inner-1)))

	var b strings.Builder
	b.WriteByte('[')
	for i := 0; i < inner; i++ {
		switch {
		case i == marker:
			b.WriteByte('|')
		case i >= normalStart && i <= normalEnd:
			b.WriteByte('=')
		default:
			b.WriteByte('-')
		}
	}
	b.WriteByte(']')
	return b.String()
}

func statusColor(s detector.Status) string {
	switch s {
	case detector.StatusCritical:
		return "red"
	case detector.StatusWarning:
		return "yellow"
	default:
		return "green"
	}
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func withUnit(s, unit string) string {
	if unit == "" {
		return s
	}
	return s + " " + unit
}

func truncate(s string, width int) string {
	runes := []rune(s)
	if len(runes) <= width {
		return s
	}
	return string(runes[:width-3]) + "..."
}

// Register the formatter during package initialization
func init() {
	formatters.Register(NewFormatter())
}
