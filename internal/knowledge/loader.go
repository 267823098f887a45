// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package knowledge

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed reference.yaml
var defaultTable []byte

var (
	defaultOnce sync.Once
	defaultBase *Base
)

// document is the on-disk shape of a knowledge base. YAML sequences are used
// instead of mappings so that row order survives decoding.
type document struct {
	Terms  []Term           `yaml:"terms"`
	Ranges []ReferenceRange `yaml:"ranges"`
}

// Default returns the built-in knowledge base. It is parsed once per process.
func Default() *Base {
	defaultOnce.Do(func() {
		b, err := Parse(defaultTable)
		if err != nil {
			// The table is compiled into the binary; a failure here is a build defect.
			panic(fmt.Sprintf("knowledge: embedded reference table is invalid: %v", err))
		}
		defaultBase = b
	})
	return defaultBase
}

// Parse decodes a YAML knowledge base document.
func Parse(data []byte) (*Base, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("error parsing knowledge base: %w", err)
	}
	return New(doc.Terms, doc.Ranges)
}

// LoadFile reads a YAML knowledge base from disk.
func LoadFile(path string) (*Base, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("error reading knowledge base: %w", err)
	}
	b, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return b, nil
}

// LoadOrDefault loads path when it is set and falls back to the built-in table otherwise.
func LoadOrDefault(path string) (*Base, error) {
	if path == "" {
		return Default(), nil
	}
	return LoadFile(path)
}

// Marshal encodes b in the same YAML shape Parse accepts.
func Marshal(b *Base) ([]byte, error) {
	return yaml.Marshal(document{Terms: b.Terms(), Ranges: b.Ranges()})
}
