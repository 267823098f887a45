// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package labvalue

import (
	"strings"

	"labscan/internal/detector"
	"labscan/internal/knowledge"
	"labscan/internal/observability"
)

// Validator scans recognized report text line by line and reports every
// reference range key it finds together with the value read from that line.
//
// Keys are matched as plain substrings, without word boundaries. This favours
// recall: "hb" also matches inside "hba1c" and "ast" inside "fasting", and
// both hits are reported.
type Validator struct {
	base *knowledge.Base
	keys []string

	// Observability
	observer *observability.StandardObserver
}

// NewValidator creates a Validator over base.
func NewValidator(base *knowledge.Base) *Validator {
	return &Validator{
		base: base,
		keys: base.RangeKeys(),
	}
}

// SetObserver sets the observability component
func (v *Validator) SetObserver(observer *observability.StandardObserver) {
	v.observer = observer
}

// Scan returns the lab values found in text, in line order and, within a
// line, in knowledge base order. The result is never nil.
func (v *Validator) Scan(text string) []detector.LabValue {
	var finishTiming func(bool, map[string]interface{})
	if v.observer != nil {
		finishTiming = v.observer.StartTiming("labvalue_validator", "scan", "")
	}

	results := make([]detector.LabValue, 0)
	lines := strings.Split(strings.ToLower(text), "\n")
	dropped := 0

	for i, line := range lines {
		var (
			value    float64
			found    bool
			searched bool
		)
		for _, key := range v.keys {
			if !strings.Contains(line, key) {
				continue
			}
			// Every key on the line reads the same number, so look it up once.
			if !searched {
				value, found = ExtractValue(line, v.keys)
				searched = true
			}
			if !found {
				dropped++
				continue
			}
			results = append(results, v.labValue(key, value, i+1))
		}
	}

	if finishTiming != nil {
		finishTiming(true, map[string]interface{}{
			"line_count":    len(lines),
			"match_count":   len(results),
			"dropped_count": dropped,
		})
	}

	return results
}

func (v *Validator) labValue(key string, value float64, line int) detector.LabValue {
	rr, _ := v.base.Range(key)

	lv := detector.LabValue{
		Key:         key,
		Name:        strings.ToUpper(key),
		Value:       value,
		Unit:        rr.Unit,
		NormalRange: rr.Range,
		Status:      detector.Classify(value, rr.Range),
		Explanation: detector.DefaultExplanation,
		Category:    detector.DefaultCategory,
		Line:        line,
	}
	if term, ok := v.base.Term(key); ok {
		lv.Name = term.Name
		lv.Explanation = term.Explanation
		lv.Category = term.Category
	}
	return lv
}
