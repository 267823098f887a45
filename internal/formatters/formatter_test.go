// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package formatters

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"labscan/internal/core"
	"labscan/internal/detector"
)

type stubFormatter struct{ name string }

func (s stubFormatter) Format(reports []*core.Report, options FormatterOptions) (string, error) {
	return s.name, nil
}
func (s stubFormatter) Name() string          { return s.name }
func (s stubFormatter) Description() string   { return "stub" }
func (s stubFormatter) FileExtension() string { return "." + s.name }

func TestRegistry(t *testing.T) {
	r := NewRegistry()
	r.Register(stubFormatter{"zeta"})
	r.Register(stubFormatter{"alpha"})

	assert.Equal(t, []string{"alpha", "zeta"}, r.List())

	f, ok := r.Get("alpha")
	require.True(t, ok)
	assert.Equal(t, "alpha", f.Name())

	_, ok = r.Get("missing")
	assert.False(t, ok)
	assert.Len(t, r.GetAll(), 2)
}

func TestExport_UnknownFormat(t *testing.T) {
	_, err := Export("no-such-format", nil, FormatterOptions{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported format 'no-such-format'")
}

func TestGetFormatInfo_Unknown(t *testing.T) {
	assert.Equal(t, FormatInfo{}, GetFormatInfo("no-such-format"))
}

func TestApplyOptions(t *testing.T) {
	report := &core.Report{
		Source: "a",
		Values: []detector.LabValue{
			{Key: "tsh", Status: detector.StatusNormal},
			{Key: "sodium", Status: detector.StatusCritical},
		},
	}
	report.Summary = detector.Summarize(report.Values)

	all := ApplyOptions([]*core.Report{report, nil}, FormatterOptions{})
	require.Len(t, all, 1)
	assert.Same(t, report, all[0])

	critical := ApplyOptions([]*core.Report{report}, FormatterOptions{
		Statuses: map[detector.Status]bool{detector.StatusCritical: true},
	})
	require.Len(t, critical, 1)
	require.Len(t, critical[0].Values, 1)
	assert.Equal(t, "sodium", critical[0].Values[0].Key)
	assert.Equal(t, 1, critical[0].Summary.Total)

	// input untouched
	assert.Len(t, report.Values, 2)
}
