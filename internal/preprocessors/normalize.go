// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package preprocessors

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
	"golang.org/x/text/width"
)

var lineEndings = strings.NewReplacer("\r\n", "\n", "\r", "\n")

// Normalize cleans recognized text before analysis:
//   - CRLF and lone CR become LF
//   - format characters (BOM, zero-width space, soft hyphen) are removed
//   - fullwidth forms fold to ASCII, so "１２.５" reads as "12.5"
//   - non-breaking and figure spaces become plain spaces
//   - the result is NFC composed
//
// No compatibility decomposition is applied, so the micro sign in units such
// as µg/dL is kept.
func Normalize(text string) string {
	text = lineEndings.Replace(text)

	t := transform.Chain(
		runes.Remove(runes.In(unicode.Cf)),
		width.Fold,
		runes.Map(func(r rune) rune {
			switch r {
			case '\u00a0', '\u2007', '\u202f':
				return ' '
			}
			return r
		}),
		norm.NFC,
	)

	out, _, err := transform.String(t, text)
	if err != nil {
		return text
	}
	return out
}
