// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package fhir

import (
	"encoding/json"
	"time"
)

// Code systems used in the generated resources
const (
	ObservationCategorySystem       = "http://terminology.hl7.org/CodeSystem/observation-category"
	ObservationInterpretationSystem = "http://terminology.hl7.org/CodeSystem/v3-ObservationInterpretation"
	TestCodeSystem                  = "urn:labscan:test"
)

// Bundle represents a FHIR R4 Bundle resource.
type Bundle struct {
	ResourceType string        `json:"resourceType"`
	ID           string        `json:"id,omitempty"`
	Type         string        `json:"type"`
	Timestamp    *time.Time    `json:"timestamp,omitempty"`
	Entry        []BundleEntry `json:"entry,omitempty"`
}

type BundleEntry struct {
	FullURL  string          `json:"fullUrl,omitempty"`
	Resource json.RawMessage `json:"resource,omitempty"`
}

type Meta struct {
	LastUpdated time.Time `json:"lastUpdated,omitempty"`
}

type Coding struct {
	System  string `json:"system,omitempty"`
	Code    string `json:"code,omitempty"`
	Display string `json:"display,omitempty"`
}

type CodeableConcept struct {
	Coding []Coding `json:"coding,omitempty"`
	Text   string   `json:"text,omitempty"`
}

type Reference struct {
	Reference string `json:"reference,omitempty"`
	Display   string `json:"display,omitempty"`
}

type Quantity struct {
	Value float64 `json:"value"`
	Unit  string  `json:"unit,omitempty"`
}

type Annotation struct {
	Text string `json:"text"`
}

type ObservationReferenceRange struct {
	Low  *Quantity `json:"low,omitempty"`
	High *Quantity `json:"high,omitempty"`
}

// Observation is the subset of the FHIR R4 Observation resource that a
// recognized lab value can fill.
type Observation struct {
	ResourceType   string                      `json:"resourceType"`
	ID             string                      `json:"id"`
	Meta           Meta                        `json:"meta"`
	Status         string                      `json:"status"`
	Category       []CodeableConcept           `json:"category"`
	Code           CodeableConcept             `json:"code"`
	Issued         *time.Time                  `json:"issued,omitempty"`
	ValueQuantity  Quantity                    `json:"valueQuantity"`
	Interpretation []CodeableConcept           `json:"interpretation,omitempty"`
	ReferenceRange []ObservationReferenceRange `json:"referenceRange,omitempty"`
	Note           []Annotation                `json:"note,omitempty"`
}

// DiagnosticReport groups the observations taken from one document.
type DiagnosticReport struct {
	ResourceType string            `json:"resourceType"`
	ID           string            `json:"id"`
	Meta         Meta              `json:"meta"`
	Status       string            `json:"status"`
	Category     []CodeableConcept `json:"category"`
	Code         CodeableConcept   `json:"code"`
	Issued       *time.Time        `json:"issued,omitempty"`
	Result       []Reference       `json:"result,omitempty"`
	Conclusion   string            `json:"conclusion,omitempty"`
}
