// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package shared

import (
	"math"
	"time"

	"labscan/internal/core"
	"labscan/internal/detector"
	"labscan/internal/formatters"
	"labscan/internal/knowledge"
)

// GaugeMargin is the fraction of the reference range added on each side of
// the gauge so that out-of-range values still land on the scale.
const GaugeMargin = 0.30

// JSONResponse represents the top-level response structure for JSON/YAML output
type JSONResponse struct {
	Reports []JSONReport `json:"reports" yaml:"reports"`
}

// JSONReport is one analyzed document in JSON/YAML form
type JSONReport struct {
	ID          string                 `json:"id" yaml:"id"`
	Source      string                 `json:"source" yaml:"source"`
	GeneratedAt time.Time              `json:"generated_at" yaml:"generated_at"`
	Summary     detector.Summary       `json:"summary" yaml:"summary"`
	Values      []JSONValue            `json:"values" yaml:"values"`
	Terms       []detector.MedicalTerm `json:"terms,omitempty" yaml:"terms,omitempty"`
	Metadata    map[string]interface{} `json:"metadata,omitempty" yaml:"metadata,omitempty"`
	Text        string                 `json:"text,omitempty" yaml:"text,omitempty"`
}

// JSONValue represents a single lab value in JSON/YAML format
type JSONValue struct {
	Key         string          `json:"key" yaml:"key"`
	Name        string          `json:"name" yaml:"name"`
	Value       float64         `json:"value" yaml:"value"`
	Unit        string          `json:"unit" yaml:"unit"`
	NormalRange knowledge.Range `json:"normal_range" yaml:"normal_range"`
	Status      string          `json:"status" yaml:"status"`
	Label       string          `json:"label" yaml:"label"`
	Category    string          `json:"category" yaml:"category"`
	Line        int             `json:"line" yaml:"line"`
	Explanation string          `json:"explanation,omitempty" yaml:"explanation,omitempty"`
	Gauge       float64         `json:"gauge,omitempty" yaml:"gauge,omitempty"`
}

// GaugePosition returns where value sits, in percent, on a scale that spans
// the reference range widened by GaugeMargin on each side. The result is
// clamped to [0, 100]; a zero-width scale puts the marker in the middle.
func GaugePosition(value float64, r knowledge.Range) float64 {
	width := r.Max - r.Min
	lo := r.Min - width*GaugeMargin
	hi := r.Max + width*GaugeMargin
	if hi <= lo || math.IsNaN(value) {
		return 50
	}
	pos := (value - lo) / (hi - lo) * 100
	return math.Max(0, math.Min(100, pos))
}

// ConvertReportsToJSONFormat converts reports to the shared JSON/YAML structure
func ConvertReportsToJSONFormat(reports []*core.Report, options formatters.FormatterOptions) JSONResponse {
	filtered := formatters.ApplyOptions(reports, options)
	response := JSONResponse{Reports: make([]JSONReport, 0, len(filtered))}

	for _, r := range filtered {
		jr := JSONReport{
			ID:          r.ID.String(),
			Source:      r.Source,
			GeneratedAt: r.GeneratedAt,
			Summary:     r.Summary,
			Values:      make([]JSONValue, 0, len(r.Values)),
		}
		for _, v := range r.Values {
			jv := JSONValue{
				Key:         v.Key,
				Name:        v.Name,
				Value:       v.Value,
				Unit:        v.Unit,
				NormalRange: v.NormalRange,
				Status:      string(v.Status),
				Label:       v.Status.Label(),
				Category:    v.Category,
				Line:        v.Line,
			}
			if options.Verbose {
				jv.Explanation = v.Explanation
				jv.Gauge = math.Round(GaugePosition(v.Value, v.NormalRange)*10) / 10
			}
			jr.Values = append(jr.Values, jv)
		}
		if options.ShowTerms {
			jr.Terms = r.Terms
		}
		if options.Verbose {
			jr.Metadata = r.Metadata
		}
		if options.ShowText {
			jr.Text = r.Text
		}
		response.Reports = append(response.Reports, jr)
	}

	return response
}
