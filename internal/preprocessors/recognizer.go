// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package preprocessors

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"labscan/internal/resilience"
)

// Recognizer turns an image of a document into text.
type Recognizer interface {
	Recognize(ctx context.Context, imagePath string) (string, error)
}

const (
	DefaultOCRCommand  = "tesseract"
	DefaultOCRLanguage = "eng"

	// Argument placeholders expanded by CommandRecognizer
	InputPlaceholder    = "{input}"
	LanguagePlaceholder = "{lang}"
)

// DefaultOCRArgs makes tesseract write recognized text to stdout.
var DefaultOCRArgs = []string{InputPlaceholder, "stdout", "-l", LanguagePlaceholder}

// CommandRecognizer runs an external OCR program and reads the recognized
// text from its standard output.
type CommandRecognizer struct {
	Command  string
	Args     []string
	Language string
}

// NewCommandRecognizer creates a recognizer, filling unset fields with the
// tesseract defaults.
func NewCommandRecognizer(command string, args []string, language string) *CommandRecognizer {
	if command == "" {
		command = DefaultOCRCommand
	}
	if len(args) == 0 {
		args = DefaultOCRArgs
	}
	if language == "" {
		language = DefaultOCRLanguage
	}
	return &CommandRecognizer{
		Command:  command,
		Args:     append([]string(nil), args...),
		Language: language,
	}
}

// Recognize implements Recognizer.
func (r *CommandRecognizer) Recognize(ctx context.Context, imagePath string) (string, error) {
	args := make([]string, len(r.Args))
	for i, arg := range r.Args {
		arg = strings.ReplaceAll(arg, InputPlaceholder, imagePath)
		args[i] = strings.ReplaceAll(arg, LanguagePlaceholder, r.Language)
	}

	// #nosec G204 -- command and arguments come from operator configuration
	cmd := exec.CommandContext(ctx, r.Command, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if errors.Is(err, exec.ErrNotFound) {
			return "", fmt.Errorf("%s: %w", r.Command, ErrRecognizerUnavailable)
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", ctxErr
		}
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			return "", fmt.Errorf("%s failed: %w", r.Command, err)
		}
		return "", fmt.Errorf("%s failed: %w: %s", r.Command, err, msg)
	}

	return stdout.String(), nil
}

// Available reports whether the OCR command can be found on PATH.
func (r *CommandRecognizer) Available() bool {
	_, err := exec.LookPath(r.Command)
	return err == nil
}

// RetryingRecognizer retries the wrapped recognizer when a failure looks
// transient, such as the OCR process being killed or failing to start.
type RetryingRecognizer struct {
	Recognizer Recognizer
	Config     resilience.RetryConfig
}

// NewRetryingRecognizer wraps r with up to retries extra attempts.
func NewRetryingRecognizer(r Recognizer, retries int) *RetryingRecognizer {
	cfg := resilience.DefaultRetryConfig()
	cfg.MaxRetries = retries
	return &RetryingRecognizer{Recognizer: r, Config: cfg}
}

// Recognize implements Recognizer.
func (r *RetryingRecognizer) Recognize(ctx context.Context, imagePath string) (string, error) {
	return resilience.RetryWithResult(ctx, r.Config, func(ctx context.Context) (string, error) {
		return r.Recognizer.Recognize(ctx, imagePath)
	})
}
