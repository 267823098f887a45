// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package glossary finds which known lab test terms a document mentions.
package glossary

import (
	"strings"

	"labscan/internal/detector"
	"labscan/internal/knowledge"
)

// Matcher reports glossary terms mentioned anywhere in a text.
type Matcher struct {
	base *knowledge.Base
	keys []string
}

// NewMatcher creates a Matcher over the term table of base.
func NewMatcher(base *knowledge.Base) *Matcher {
	return &Matcher{
		base: base,
		keys: base.TermKeys(),
	}
}

// FindTerms returns one entry per term key that occurs in text, in term table
// order. Presence is a plain substring test on the whole lowercased text, so
// terms are found regardless of which line they appear on. The result is never nil.
func (m *Matcher) FindTerms(text string) []detector.MedicalTerm {
	lower := strings.ToLower(text)
	found := make([]detector.MedicalTerm, 0)

	for _, key := range m.keys {
		if !strings.Contains(lower, key) {
			continue
		}
		term, _ := m.base.Term(key)
		found = append(found, detector.MedicalTerm{
			Key:         key,
			Term:        term.Name,
			Explanation: term.Explanation,
			Category:    term.Category,
		})
	}

	return found
}
