// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package csv

import (
	encodingcsv "encoding/csv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"labscan/internal/core"
	"labscan/internal/detector"
	"labscan/internal/formatters"
	"labscan/internal/knowledge"
)

func TestFormat(t *testing.T) {
	r := core.NewAnalyzer(knowledge.Default()).AnalyzeText("lab, march.pdf", "TSH 2.1\nSodium 95\nno values here")

	out, err := NewFormatter().Format([]*core.Report{r}, formatters.FormatterOptions{})
	require.NoError(t, err)

	records, err := encodingcsv.NewReader(strings.NewReader(out)).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)

	assert.Equal(t, []string{"Source", "Line", "Key", "Name", "Value", "Unit", "Min", "Max", "Status", "Category"}, records[0])
	assert.Equal(t, "lab, march.pdf", records[1][0])
	assert.Equal(t, "1", records[1][1])
	assert.Equal(t, "tsh", records[1][2])
	assert.Equal(t, "2.1", records[1][4])
	assert.Equal(t, "0.4", records[1][6])
	assert.Equal(t, "Normal", records[1][8])
	assert.Equal(t, "sodium", records[2][2])
	assert.Equal(t, "Review", records[2][8])
}

func TestFormat_VerboseColumns(t *testing.T) {
	r := core.NewAnalyzer(knowledge.Default()).AnalyzeText("a", "TSH 2.1")
	r.Metadata = map[string]interface{}{"pages": 1}

	out, err := NewFormatter().Format([]*core.Report{r}, formatters.FormatterOptions{Verbose: true})
	require.NoError(t, err)

	records, err := encodingcsv.NewReader(strings.NewReader(out)).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Len(t, records[0], 12)
	assert.Equal(t, `{"pages":1}`, records[1][11])
}

func TestFormat_StatusFilter(t *testing.T) {
	r := core.NewAnalyzer(knowledge.Default()).AnalyzeText("a", "TSH 2.1\nSodium 95")

	out, err := NewFormatter().Format([]*core.Report{r}, formatters.FormatterOptions{
		Statuses: map[detector.Status]bool{detector.StatusCritical: true},
	})
	require.NoError(t, err)
	lines := strings.Split(out, "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[1], "sodium")
}

func TestEscapeCSVField(t *testing.T) {
	f := NewFormatter()
	assert.Equal(t, "plain", f.escapeCSVField("plain"))
	assert.Equal(t, `"a,b"`, f.escapeCSVField("a,b"))
	assert.Equal(t, `"say ""hi"""`, f.escapeCSVField(`say "hi"`))
	assert.Equal(t, "'=SUM(A1)", f.escapeCSVField("=SUM(A1)"))
	assert.Equal(t, "'-3", f.escapeCSVField("-3"))
}
