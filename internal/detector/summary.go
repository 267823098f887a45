// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package detector

// Summary counts lab values by status.
type Summary struct {
	Normal   int `json:"normal" yaml:"normal"`
	Warning  int `json:"warning" yaml:"warning"`
	Critical int `json:"critical" yaml:"critical"`
	Total    int `json:"total" yaml:"total"`
}

// Summarize counts values per status.
func Summarize(values []LabValue) Summary {
	var s Summary
	for _, v := range values {
		switch v.Status {
		case StatusNormal:
			s.Normal++
		case StatusWarning:
			s.Warning++
		case StatusCritical:
			s.Critical++
		}
	}
	s.Total = len(values)
	return s
}

// Count returns the number of values with the given status.
func (s Summary) Count(status Status) int {
	switch status {
	case StatusNormal:
		return s.Normal
	case StatusWarning:
		return s.Warning
	case StatusCritical:
		return s.Critical
	}
	return 0
}
