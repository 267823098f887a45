// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package labvalue

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

// numberPattern matches a whole digit run with an optional fraction. Matches
// are taken leftmost and non-overlapping, so a token never starts partway
// through a number. Units are not read: the reported unit always comes from
// the knowledge base.
var numberPattern = regexp.MustCompile(`\d+(?:\.\d+)?`)

// ExtractValue returns the first numeric token on line that is not part of
// one of keys. Digits inside a key occurrence, such as the "1" in "hba1c" or
// the "12" in "vitamin b12", are not readings; a value glued to the end of a
// key ("glucose98.6", "hb12.5") is. The match is not anchored to any one
// key: when a line mentions several tests, every one of them reads the same
// first number. Keys are expected in lowercase.
func ExtractValue(line string, keys []string) (float64, bool) {
	line = strings.ToLower(line)
	spans := keySpans(line, keys)

	for _, loc := range numberPattern.FindAllStringIndex(line, -1) {
		if overlapsAny(loc, spans) {
			continue
		}
		v, err := strconv.ParseFloat(line[loc[0]:loc[1]], 64)
		if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
			return 0, false
		}
		return v, true
	}
	return 0, false
}

// keySpans returns the byte ranges of every occurrence of every key that
// contains a digit. Keys without digits cannot hide a number.
func keySpans(line string, keys []string) [][2]int {
	var spans [][2]int
	for _, key := range keys {
		if key == "" || !strings.ContainsAny(key, "0123456789") {
			continue
		}
		for from := 0; ; {
			i := strings.Index(line[from:], key)
			if i < 0 {
				break
			}
			start := from + i
			spans = append(spans, [2]int{start, start + len(key)})
			from = start + 1
		}
	}
	return spans
}

func overlapsAny(loc []int, spans [][2]int) bool {
	for _, s := range spans {
		if loc[0] < s[1] && s[0] < loc[1] {
			return true
		}
	}
	return false
}
