// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package detector

import (
	"math"

	"labscan/internal/knowledge"
)

// Status is the outcome of comparing a value with its reference range.
type Status string

const (
	StatusNormal   Status = "normal"
	StatusWarning  Status = "warning"
	StatusCritical Status = "critical"
)

// CriticalDeviation is the relative distance from the nearest bound above
// which an out-of-range value is critical.
const CriticalDeviation = 0.30

// deviationTolerance absorbs binary rounding so a decimal value sitting
// exactly on the boundary is not pushed over it.
const deviationTolerance = 1e-9

// AllStatuses lists statuses in severity order.
var AllStatuses = []Status{StatusNormal, StatusWarning, StatusCritical}

// Label returns the short label shown to readers of a report.
func (s Status) Label() string {
	switch s {
	case StatusNormal:
		return "Normal"
	case StatusWarning:
		return "Attention"
	case StatusCritical:
		return "Review"
	default:
		return string(s)
	}
}

// Valid reports whether s is one of the known statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusNormal, StatusWarning, StatusCritical:
		return true
	}
	return false
}

// Classify compares value with r.
//
// Values inside [Min, Max] are normal. Outside the range the relative
// deviation from the nearest bound decides: above 30% is critical, anything
// up to and including 30% is a warning. A bound of zero or below cannot be
// used as a divisor; a value beyond such a bound is treated as maximally
// deviant and classified critical. Non-finite values are critical.
func Classify(value float64, r knowledge.Range) Status {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return StatusCritical
	}
	if r.Contains(value) {
		return StatusNormal
	}

	deviation, ok := Deviation(value, r)
	if !ok || deviation > CriticalDeviation+deviationTolerance {
		return StatusCritical
	}
	return StatusWarning
}

// Deviation returns the relative distance of value from the nearest bound of
// r, or 0 when value is inside r. The second result is false when the
// deviation is undefined because the bound it is measured against is not
// positive.
func Deviation(value float64, r knowledge.Range) (float64, bool) {
	switch {
	case value < r.Min:
		if r.Min <= 0 {
			return 0, false
		}
		return (r.Min - value) / r.Min, true
	case value > r.Max:
		if r.Max <= 0 {
			return 0, false
		}
		return (value - r.Max) / r.Max, true
	default:
		return 0, true
	}
}
