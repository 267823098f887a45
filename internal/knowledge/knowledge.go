// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package knowledge holds the reference knowledge base: the glossary of lab
// test terms and the normal range for each test, both keyed by a canonical
// lowercase key.
package knowledge

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

// Range is a closed numeric interval [Min, Max].
type Range struct {
	Min float64 `json:"min" yaml:"min"`
	Max float64 `json:"max" yaml:"max"`
}

// Contains reports whether v lies inside the range, bounds included.
func (r Range) Contains(v float64) bool {
	return v >= r.Min && v <= r.Max
}

// Term is one glossary entry.
type Term struct {
	Key         string `json:"key" yaml:"key"`
	Name        string `json:"name" yaml:"name"`
	Category    string `json:"category" yaml:"category"`
	Explanation string `json:"explanation" yaml:"explanation"`
}

// ReferenceRange is the normal range of one test together with its unit.
type ReferenceRange struct {
	Key   string `json:"key" yaml:"key"`
	Range `yaml:",inline"`
	Unit  string `json:"unit" yaml:"unit"`
}

var (
	ErrEmptyKey     = errors.New("empty key")
	ErrKeyNotLower  = errors.New("key must be lowercase")
	ErrDuplicateKey = errors.New("duplicate key")
	ErrInvalidRange = errors.New("invalid range")
)

// Base is an immutable, ordered pair of lookup tables. A key may appear in
// one table without appearing in the other. Iteration order is the order the
// rows were supplied in.
//
// A Base is never modified after New returns, so it is safe for concurrent use.
type Base struct {
	terms     map[string]Term
	termKeys  []string
	ranges    map[string]ReferenceRange
	rangeKeys []string
}

// New validates the rows and builds a Base.
func New(terms []Term, ranges []ReferenceRange) (*Base, error) {
	b := &Base{
		terms:     make(map[string]Term, len(terms)),
		termKeys:  make([]string, 0, len(terms)),
		ranges:    make(map[string]ReferenceRange, len(ranges)),
		rangeKeys: make([]string, 0, len(ranges)),
	}

	for i, t := range terms {
		if err := checkKey(t.Key); err != nil {
			return nil, fmt.Errorf("term %d: %w", i, err)
		}
		if _, exists := b.terms[t.Key]; exists {
			return nil, fmt.Errorf("term %q: %w", t.Key, ErrDuplicateKey)
		}
		b.terms[t.Key] = t
		b.termKeys = append(b.termKeys, t.Key)
	}

	for i, r := range ranges {
		if err := checkKey(r.Key); err != nil {
			return nil, fmt.Errorf("range %d: %w", i, err)
		}
		if _, exists := b.ranges[r.Key]; exists {
			return nil, fmt.Errorf("range %q: %w", r.Key, ErrDuplicateKey)
		}
		if !isFinite(r.Min) || !isFinite(r.Max) || r.Min > r.Max {
			return nil, fmt.Errorf("range %q [%v, %v]: %w", r.Key, r.Min, r.Max, ErrInvalidRange)
		}
		b.ranges[r.Key] = r
		b.rangeKeys = append(b.rangeKeys, r.Key)
	}

	return b, nil
}

// Term returns the glossary entry for key.
func (b *Base) Term(key string) (Term, bool) {
	t, ok := b.terms[key]
	return t, ok
}

// Range returns the reference range for key.
func (b *Base) Range(key string) (ReferenceRange, bool) {
	r, ok := b.ranges[key]
	return r, ok
}

// TermKeys returns the glossary keys in table order.
func (b *Base) TermKeys() []string {
	return append([]string(nil), b.termKeys...)
}

// RangeKeys returns the reference range keys in table order.
func (b *Base) RangeKeys() []string {
	return append([]string(nil), b.rangeKeys...)
}

// Terms returns a copy of the glossary rows in table order.
func (b *Base) Terms() []Term {
	out := make([]Term, 0, len(b.termKeys))
	for _, k := range b.termKeys {
		out = append(out, b.terms[k])
	}
	return out
}

// Ranges returns a copy of the reference range rows in table order.
func (b *Base) Ranges() []ReferenceRange {
	out := make([]ReferenceRange, 0, len(b.rangeKeys))
	for _, k := range b.rangeKeys {
		out = append(out, b.ranges[k])
	}
	return out
}

func checkKey(key string) error {
	if strings.TrimSpace(key) == "" {
		return ErrEmptyKey
	}
	if strings.ToLower(key) != key {
		return fmt.Errorf("%q: %w", key, ErrKeyNotLower)
	}
	return nil
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
