// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package labvalue

import (
	"bytes"
	"strconv"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"labscan/internal/detector"
	"labscan/internal/knowledge"
	"labscan/internal/observability"
)

func TestScan_EveryKeyAtMidpointIsNormal(t *testing.T) {
	base := knowledge.Default()
	v := NewValidator(base)

	for _, rr := range base.Ranges() {
		t.Run(rr.Key, func(t *testing.T) {
			mid := (rr.Min + rr.Max) / 2
			text := rr.Key + ": " + strconv.FormatFloat(mid, 'f', -1, 64)

			var hits []detector.LabValue
			for _, lv := range v.Scan(text) {
				if lv.Key == rr.Key {
					hits = append(hits, lv)
				}
			}
			require.Len(t, hits, 1)
			assert.Equal(t, detector.StatusNormal, hits[0].Status)
			assert.InDelta(t, mid, hits[0].Value, 1e-9)
			assert.Equal(t, rr.Unit, hits[0].Unit)
			assert.Equal(t, rr.Range, hits[0].NormalRange)
		})
	}
}

func TestScan_SharedLineReadsFirstNumber(t *testing.T) {
	v := NewValidator(knowledge.Default())

	got := v.Scan("Glucose Sodium 95 mg/dL")
	require.Len(t, got, 2)

	assert.Equal(t, "glucose", got[0].Key)
	assert.Equal(t, 95.0, got[0].Value)
	assert.Equal(t, detector.StatusNormal, got[0].Status)

	assert.Equal(t, "sodium", got[1].Key)
	assert.Equal(t, 95.0, got[1].Value)
	assert.Equal(t, detector.StatusCritical, got[1].Status)
}

func TestScan_CaseInsensitive(t *testing.T) {
	v := NewValidator(knowledge.Default())
	lower := v.Scan("hemoglobin 10.1 g/dl")
	upper := v.Scan("HEMOGLOBIN 10.1 G/DL")
	assert.Equal(t, lower, upper)
	require.Len(t, upper, 1)
	assert.Equal(t, "Hemoglobin (Hb)", upper[0].Name)
	assert.Equal(t, "Blood", upper[0].Category)
	assert.Equal(t, detector.StatusWarning, upper[0].Status)
}

func TestScan_HbA1cSpacingAndCase(t *testing.T) {
	v := NewValidator(knowledge.Default())
	spaced := v.Scan("HbA1c: 7.2 %")
	compact := v.Scan("hba1c: 7.2%")
	assert.Equal(t, compact, spaced)

	// "hb" is a substring of "hba1c", so both keys read 7.2
	require.Len(t, spaced, 2)
	assert.Equal(t, "hb", spaced[0].Key)
	assert.Equal(t, detector.StatusCritical, spaced[0].Status)
	assert.Equal(t, "hba1c", spaced[1].Key)
	assert.Equal(t, 7.2, spaced[1].Value)
	assert.Equal(t, detector.StatusWarning, spaced[1].Status)
}

func TestScan_ValueGluedToKey(t *testing.T) {
	v := NewValidator(knowledge.Default())

	got := v.Scan("Glucose98.6 mg/dL\nHb12.5 g/dL")
	require.Len(t, got, 2)
	assert.Equal(t, "glucose", got[0].Key)
	assert.Equal(t, 98.6, got[0].Value)
	assert.Equal(t, detector.StatusNormal, got[0].Status)
	assert.Equal(t, "hb", got[1].Key)
	assert.Equal(t, 12.5, got[1].Value)
	assert.Equal(t, detector.StatusNormal, got[1].Status)
}

func TestScan_EmptyInput(t *testing.T) {
	v := NewValidator(knowledge.Default())
	for _, text := range []string{"", "\n\n", "no medical content here"} {
		got := v.Scan(text)
		assert.NotNil(t, got)
		assert.Empty(t, got)
	}
}

func TestScan_LineWithoutNumberIsDropped(t *testing.T) {
	v := NewValidator(knowledge.Default())
	got := v.Scan("glucose: pending\ntsh 2.1")
	require.Len(t, got, 1)
	assert.Equal(t, "tsh", got[0].Key)
	assert.Equal(t, 2, got[0].Line)
}

func TestScan_RepeatedLinesAreNotDeduplicated(t *testing.T) {
	v := NewValidator(knowledge.Default())
	got := v.Scan("tsh 2.1\ntsh 2.1")
	require.Len(t, got, 2)
	assert.Equal(t, 1, got[0].Line)
	assert.Equal(t, 2, got[1].Line)
}

func TestScan_SubstringKeysOverlap(t *testing.T) {
	v := NewValidator(knowledge.Default())

	// "hb" is a substring of "hba1c", so both keys fire on the same line.
	got := v.Scan("HbA1c 6.0 %")
	require.Len(t, got, 2)
	assert.Equal(t, "hb", got[0].Key)
	assert.Equal(t, detector.StatusCritical, got[0].Status)
	assert.Equal(t, "hba1c", got[1].Key)
	assert.Equal(t, detector.StatusWarning, got[1].Status)
}

func TestScan_LineOrderThenTableOrder(t *testing.T) {
	v := NewValidator(knowledge.Default())
	text := "Sodium 140 mEq/L\nPotassium 4.1\nWBC 7200 /uL"
	got := v.Scan(text)

	keys := make([]string, 0, len(got))
	for _, lv := range got {
		keys = append(keys, lv.Key)
	}
	assert.Equal(t, []string{"sodium", "potassium", "wbc"}, keys)
}

func TestScan_FallbacksWithoutTerm(t *testing.T) {
	base, err := knowledge.New(nil, []knowledge.ReferenceRange{
		{Key: "lactate", Range: knowledge.Range{Min: 0.5, Max: 2.2}, Unit: "mmol/L"},
	})
	require.NoError(t, err)

	got := NewValidator(base).Scan("Lactate 3.1 mmol/L")
	require.Len(t, got, 1)
	assert.Equal(t, "LACTATE", got[0].Name)
	assert.Equal(t, detector.DefaultExplanation, got[0].Explanation)
	assert.Equal(t, detector.DefaultCategory, got[0].Category)
	assert.Equal(t, "mmol/L", got[0].Unit)
	assert.Equal(t, detector.StatusCritical, got[0].Status)
}

func TestScan_TermOnlyKeysAreIgnored(t *testing.T) {
	base, err := knowledge.New(
		[]knowledge.Term{{Key: "lipase", Name: "Lipase", Category: "Pancreas", Explanation: "x"}},
		nil,
	)
	require.NoError(t, err)
	assert.Empty(t, NewValidator(base).Scan("lipase 40"))
}

func TestScan_Observer(t *testing.T) {
	var buf bytes.Buffer
	v := NewValidator(knowledge.Default())
	v.SetObserver(observability.NewStandardObserver(observability.ObservabilityDebug, &buf))

	v.Scan("glucose 90")
	assert.Contains(t, buf.String(), `"component":"labvalue_validator"`)
	assert.Contains(t, buf.String(), `"match_count":1`)
}

func TestScan_ConcurrentUse(t *testing.T) {
	v := NewValidator(knowledge.Default())
	text := "Hemoglobin 13.2 g/dL\nGlucose 180 mg/dL\nTSH 0.2 mIU/L"
	want := v.Scan(text)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.Equal(t, want, v.Scan(text))
		}()
	}
	wg.Wait()
}
