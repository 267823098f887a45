// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package metaextractexiflib

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/rwcarlsen/goexif/exif"
	"github.com/rwcarlsen/goexif/tiff"
)

// ExifData holds the capture metadata of a photographed or scanned report
type ExifData struct {
	FilePath string
	Tags     map[string]string
	Captured time.Time // zero when the image carries no capture time
}

// exifWalker implements the Walker interface to collect tags
type exifWalker struct {
	tags map[string]string
}

// Walk implements the Walker interface. Location tags are skipped; a photo of
// a lab report should not carry where it was taken into the analysis output.
func (w *exifWalker) Walk(name exif.FieldName, tag *tiff.Tag) error {
	if tag == nil || strings.HasPrefix(string(name), "GPS") {
		return nil
	}
	if tag.Format() == tiff.UndefVal {
		return nil
	}
	w.tags[string(name)] = strings.Trim(tag.String(), `"`)
	return nil
}

// ExtractExif reads EXIF metadata from an image file. Images without EXIF
// data (PNG, WebP, BMP and most screenshots) return an error wrapping the
// decoder's message.
func ExtractExif(filePath string) (*ExifData, error) {
	f, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("error opening file: %w", err)
	}
	defer f.Close()

	return Decode(filePath, f)
}

// Decode reads EXIF metadata from r. filePath is recorded as-is.
func Decode(filePath string, r io.Reader) (*ExifData, error) {
	x, err := exif.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("no EXIF data found: %w", err)
	}

	result := &ExifData{
		FilePath: filePath,
		Tags:     make(map[string]string),
	}

	walker := &exifWalker{tags: result.Tags}
	if err := x.Walk(walker); err != nil {
		return nil, fmt.Errorf("error walking EXIF tags: %w", err)
	}

	if captured, err := x.DateTime(); err == nil {
		result.Captured = captured
	}

	return result, nil
}

// Get returns the value of tag name.
func (e *ExifData) Get(name exif.FieldName) (string, bool) {
	v, ok := e.Tags[string(name)]
	return v, ok
}

// GetSortedKeys returns the tag keys in alphabetical order
func (e *ExifData) GetSortedKeys() []string {
	keys := make([]string, 0, len(e.Tags))
	for name := range e.Tags {
		keys = append(keys, name)
	}
	sort.Strings(keys)
	return keys
}
