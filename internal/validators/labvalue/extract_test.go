// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package labvalue

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"labscan/internal/knowledge"
)

func TestExtractValue(t *testing.T) {
	tests := []struct {
		name   string
		line   string
		want   float64
		wantOK bool
	}{
		{"integer with unit", "glucose 95 mg/dl", 95, true},
		{"decimal with unit", "hemoglobin: 13.5 g/dl", 13.5, true},
		{"unit without space", "hba1c 5.4%", 5.4, true},
		{"no unit", "sodium 140", 140, true},
		{"first number wins", "glucose sodium 95 mg/dl 140", 95, true},
		{"digit inside key is not a value", "hba1c 6.1 %", 6.1, true},
		{"b12 key", "vitamin b12 450 pg/ml", 450, true},
		{"t3 key", "t3 120 ng/dl", 120, true},
		{"micro sign unit", "t4 8.1 µg/dl", 8.1, true},
		{"greek mu unit", "wbc 7200 /μl", 7200, true},
		{"number at line start", "140 sodium", 140, true},
		{"trailing dot", "tsh 2. miu/l", 2, true},
		{"leading dot reads the integer part", "crp .5", 5, true},
		{"value glued to key", "glucose98.6 mg/dl", 98.6, true},
		{"value glued to short key", "hb12.5 g/dl", 12.5, true},
		{"value glued to key with digit", "hba1c7.2%", 7.2, true},
		{"uppercase input", "HbA1c: 7.2 %", 7.2, true},
		{"fraction is never read alone", "ldl98.6", 98.6, true},
		{"no number", "glucose pending", 0, false},
		{"digits only inside words", "hba1c t4", 0, false},
		{"empty", "", 0, false},
	}

	keys := knowledge.Default().RangeKeys()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ExtractValue(tt.line, keys)
			assert.Equal(t, tt.wantOK, ok)
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}
}

func TestExtractValue_OutOfRangeIsRejected(t *testing.T) {
	line := "glucose 1" + strings.Repeat("0", 400)
	_, ok := ExtractValue(line, knowledge.Default().RangeKeys())
	assert.False(t, ok)
}

func TestExtractValue_OnlyKeysMaskDigits(t *testing.T) {
	// without the key table the "1" of hba1c is an ordinary number
	got, ok := ExtractValue("hba1c 6.1", nil)
	assert.True(t, ok)
	assert.Equal(t, 1.0, got)

	got, ok = ExtractValue("hba1c 6.1", []string{"hba1c"})
	assert.True(t, ok)
	assert.Equal(t, 6.1, got)
}
