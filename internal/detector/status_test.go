// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package detector

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"labscan/internal/knowledge"
)

func TestClassify(t *testing.T) {
	wbc := knowledge.Range{Min: 4000, Max: 11000}
	hba1c := knowledge.Range{Min: 4.0, Max: 5.6}
	sodium := knowledge.Range{Min: 136, Max: 145}
	cholesterol := knowledge.Range{Min: 0, Max: 200}

	cases := []struct {
		name  string
		value float64
		r     knowledge.Range
		want  Status
	}{
		{"inside", 7000, wbc, StatusNormal},
		{"lower bound inclusive", 4000, wbc, StatusNormal},
		{"upper bound inclusive", 11000, wbc, StatusNormal},
		{"slightly above", 12000, wbc, StatusWarning},
		{"slightly below", 3500, wbc, StatusWarning},
		{"exactly 30 percent above", 14300, wbc, StatusWarning},
		{"exactly 30 percent below", 2800, wbc, StatusWarning},
		{"just over 30 percent above", 14301, wbc, StatusCritical},
		{"just over 30 percent below", 2799, wbc, StatusCritical},
		{"decimal boundary above", 7.28, hba1c, StatusWarning},
		{"far above", 9.0, hba1c, StatusCritical},
		{"sodium 95 is 30.15 percent below", 95, sodium, StatusCritical},
		{"sodium 96 is 29.4 percent below", 96, sodium, StatusWarning},
		{"zero lower bound value at bound", 0, cholesterol, StatusNormal},
		{"zero lower bound value below", -5, cholesterol, StatusCritical},
		{"zero lower bound above", 250, cholesterol, StatusWarning},
		{"zero upper bound", 1, knowledge.Range{Min: 0, Max: 0}, StatusCritical},
		{"nan", math.NaN(), wbc, StatusCritical},
		{"positive infinity", math.Inf(1), wbc, StatusCritical},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Classify(tc.value, tc.r))
		})
	}
}

func TestDeviation(t *testing.T) {
	r := knowledge.Range{Min: 10, Max: 20}

	d, ok := Deviation(15, r)
	assert.True(t, ok)
	assert.Zero(t, d)

	d, ok = Deviation(25, r)
	assert.True(t, ok)
	assert.InDelta(t, 0.25, d, 1e-12)

	d, ok = Deviation(5, r)
	assert.True(t, ok)
	assert.InDelta(t, 0.5, d, 1e-12)

	_, ok = Deviation(-1, knowledge.Range{Min: 0, Max: 3})
	assert.False(t, ok)
}

func TestStatus_Label(t *testing.T) {
	assert.Equal(t, "Normal", StatusNormal.Label())
	assert.Equal(t, "Attention", StatusWarning.Label())
	assert.Equal(t, "Review", StatusCritical.Label())
	assert.Equal(t, "other", Status("other").Label())
}

func TestStatus_Valid(t *testing.T) {
	for _, s := range AllStatuses {
		assert.True(t, s.Valid(), s)
	}
	assert.False(t, Status("unknown").Valid())
}
