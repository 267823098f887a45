// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package fhir renders reports as a FHIR R4 collection Bundle: one
// DiagnosticReport per document and one Observation per lab value.
package fhir

import (
	"encoding/json"
	"fmt"

	"labscan/internal/core"
	"labscan/internal/detector"
	"labscan/internal/formatters"

	"github.com/google/uuid"
)

// Formatter implements FHIR Bundle output formatting
type Formatter struct{}

// NewFormatter creates a new FHIR formatter
func NewFormatter() *Formatter {
	return &Formatter{}
}

func (f *Formatter) Name() string {
	return "fhir"
}

func (f *Formatter) Description() string {
	return "FHIR R4 Bundle of Observation resources"
}

func (f *Formatter) FileExtension() string {
	return ".fhir.json"
}

func (f *Formatter) Format(reports []*core.Report, options formatters.FormatterOptions) (string, error) {
	bundle, err := BuildBundle(formatters.ApplyOptions(reports, options))
	if err != nil {
		return "", err
	}

	data, err := json.MarshalIndent(bundle, "", "  ")
	if err != nil {
		return "", fmt.Errorf("error formatting FHIR bundle: %w", err)
	}
	return string(data), nil
}

// BuildBundle converts reports into a collection Bundle. Resource ids are
// derived from the report id, so the same report always yields the same ids.
func BuildBundle(reports []*core.Report) (*Bundle, error) {
	bundle := &Bundle{
		ResourceType: "Bundle",
		Type:         "collection",
		Entry:        []BundleEntry{},
	}
	if len(reports) > 0 {
		bundle.ID = uuid.NewSHA1(reports[0].ID, []byte("bundle")).String()
		ts := reports[0].GeneratedAt
		bundle.Timestamp = &ts
	}

	for _, r := range reports {
		refs := make([]Reference, 0, len(r.Values))
		for i, v := range r.Values {
			obs := NewObservation(r, i, v)
			entry, err := newEntry(obs.ID, obs)
			if err != nil {
				return nil, err
			}
			bundle.Entry = append(bundle.Entry, entry)
			refs = append(refs, Reference{Reference: entry.FullURL, Display: v.Name})
		}

		dr := newDiagnosticReport(r, refs)
		entry, err := newEntry(dr.ID, dr)
		if err != nil {
			return nil, err
		}
		bundle.Entry = append(bundle.Entry, entry)
	}

	return bundle, nil
}

// NewObservation builds the Observation for the index-th value of r
func NewObservation(r *core.Report, index int, v detector.LabValue) Observation {
	issued := r.GeneratedAt
	obs := Observation{
		ResourceType: "Observation",
		ID:           uuid.NewSHA1(r.ID, []byte(fmt.Sprintf("observation/%d/%s", index, v.Key))).String(),
		Meta:         Meta{LastUpdated: r.GeneratedAt},
		Status:       "preliminary",
		Category:     []CodeableConcept{laboratoryCategory()},
		Code: CodeableConcept{
			Coding: []Coding{{System: TestCodeSystem, Code: v.Key, Display: v.Name}},
			Text:   v.Name,
		},
		Issued:        &issued,
		ValueQuantity: Quantity{Value: v.Value, Unit: v.Unit},
		ReferenceRange: []ObservationReferenceRange{{
			Low:  &Quantity{Value: v.NormalRange.Min, Unit: v.Unit},
			High: &Quantity{Value: v.NormalRange.Max, Unit: v.Unit},
		}},
	}

	code, display := Interpretation(v)
	obs.Interpretation = []CodeableConcept{{
		Coding: []Coding{{System: ObservationInterpretationSystem, Code: code, Display: display}},
		Text:   v.Status.Label(),
	}}
	if v.Explanation != "" {
		obs.Note = []Annotation{{Text: v.Explanation}}
	}
	return obs
}

// Interpretation maps a classified value to a v3 ObservationInterpretation
// code. Direction comes from the value's side of the range.
func Interpretation(v detector.LabValue) (code, display string) {
	low := v.Value < v.NormalRange.Min
	switch v.Status {
	case detector.StatusNormal:
		return "N", "Normal"
	case detector.StatusWarning:
		if low {
			return "L", "Low"
		}
		return "H", "High"
	default:
		if low {
			return "LL", "Critical low"
		}
		return "HH", "Critical high"
	}
}

func newDiagnosticReport(r *core.Report, results []Reference) DiagnosticReport {
	issued := r.GeneratedAt
	return DiagnosticReport{
		ResourceType: "DiagnosticReport",
		ID:           r.ID.String(),
		Meta:         Meta{LastUpdated: r.GeneratedAt},
		Status:       "preliminary",
		Category:     []CodeableConcept{laboratoryCategory()},
		Code:         CodeableConcept{Text: r.Source},
		Issued:       &issued,
		Result:       results,
		Conclusion: fmt.Sprintf("%d values: %d normal, %d attention, %d review",
			r.Summary.Total, r.Summary.Normal, r.Summary.Warning, r.Summary.Critical),
	}
}

func laboratoryCategory() CodeableConcept {
	return CodeableConcept{
		Coding: []Coding{{System: ObservationCategorySystem, Code: "laboratory", Display: "Laboratory"}},
	}
}

func newEntry(id string, resource interface{}) (BundleEntry, error) {
	raw, err := json.Marshal(resource)
	if err != nil {
		return BundleEntry{}, fmt.Errorf("error encoding FHIR resource %s: %w", id, err)
	}
	return BundleEntry{FullURL: "urn:uuid:" + id, Resource: raw}, nil
}

// Register the formatter during package initialization
func init() {
	formatters.Register(NewFormatter())
}
