// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package detector

import (
	"testing"
)

func TestSummarize(t *testing.T) {
	values := []LabValue{
		{Key: "hb", Status: StatusNormal},
		{Key: "wbc", Status: StatusWarning},
		{Key: "glucose", Status: StatusCritical},
		{Key: "sodium", Status: StatusCritical},
		{Key: "tsh", Status: StatusNormal},
	}

	s := Summarize(values)
	if s.Normal != 2 || s.Warning != 1 || s.Critical != 2 || s.Total != 5 {
		t.Errorf("unexpected summary: %+v", s)
	}
	if s.Count(StatusCritical) != 2 {
		t.Errorf("Count(critical) = %d, want 2", s.Count(StatusCritical))
	}
}

func TestSummarize_Empty(t *testing.T) {
	s := Summarize(nil)
	if s != (Summary{}) {
		t.Errorf("expected zero summary, got %+v", s)
	}
}
