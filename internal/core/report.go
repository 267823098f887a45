// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package core

import (
	"time"

	"github.com/google/uuid"

	"labscan/internal/detector"
)

// Report is the analysis of one document
type Report struct {
	ID          uuid.UUID              `json:"id" yaml:"id"`
	Source      string                 `json:"source" yaml:"source"`
	GeneratedAt time.Time              `json:"generated_at" yaml:"generated_at"`
	Values      []detector.LabValue    `json:"values" yaml:"values"`
	Terms       []detector.MedicalTerm `json:"terms" yaml:"terms"`
	Summary     detector.Summary       `json:"summary" yaml:"summary"`
	Metadata    map[string]interface{} `json:"metadata,omitempty" yaml:"metadata,omitempty"`

	// Text is the recognized text the report was built from
	Text string `json:"-" yaml:"-"`
}

// Filtered returns a copy of r holding only values whose status is enabled.
// The summary is recomputed; terms are kept as they are.
func (r *Report) Filtered(enabled map[detector.Status]bool) *Report {
	out := *r
	out.Values = FilterByStatus(r.Values, enabled)
	out.Summary = detector.Summarize(out.Values)
	return &out
}

// HasAbnormal reports whether any value is outside its reference range
func (r *Report) HasAbnormal() bool {
	return r.Summary.Warning > 0 || r.Summary.Critical > 0
}
