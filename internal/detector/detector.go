// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package detector

import (
	"labscan/internal/knowledge"
)

// Fallbacks used when a matched range key has no glossary entry.
const (
	DefaultExplanation = "A medical test parameter."
	DefaultCategory    = "General"
)

// LabValue is one measurement pulled from a report line
type LabValue struct {
	// Key is the canonical knowledge base key that matched
	Key string `json:"key" yaml:"key"`

	Name        string          `json:"name" yaml:"name"`
	Value       float64         `json:"value" yaml:"value"`
	Unit        string          `json:"unit" yaml:"unit"`
	NormalRange knowledge.Range `json:"normal_range" yaml:"normal_range"`
	Status      Status          `json:"status" yaml:"status"`
	Explanation string          `json:"explanation" yaml:"explanation"`
	Category    string          `json:"category" yaml:"category"`

	// Line is the 1-based line the value was found on
	Line int `json:"line" yaml:"line"`
}

// MedicalTerm is a glossary entry whose key occurs somewhere in the report
type MedicalTerm struct {
	Key         string `json:"key" yaml:"key"`
	Term        string `json:"term" yaml:"term"`
	Explanation string `json:"explanation" yaml:"explanation"`
	Category    string `json:"category" yaml:"category"`
}

// ValueScanner extracts lab values from recognized text
type ValueScanner interface {
	Scan(text string) []LabValue
}

// TermFinder finds glossary terms mentioned in recognized text
type TermFinder interface {
	FindTerms(text string) []MedicalTerm
}
