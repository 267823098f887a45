// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package observability

import (
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// StandardObserver implements observability for all components
type StandardObserver struct {
	level         ObservabilityLevel
	logger        zerolog.Logger
	DebugObserver *DebugObserver // Reference to debug observer when in debug mode
}

type ObservabilityLevel int

const (
	ObservabilityOff     ObservabilityLevel = 0
	ObservabilityMetrics ObservabilityLevel = 1
	ObservabilityDebug   ObservabilityLevel = 2
)

// NewStandardObserver creates observability component writing JSON events to writer
func NewStandardObserver(level ObservabilityLevel, writer io.Writer) *StandardObserver {
	return NewStandardObserverWithLogger(level, zerolog.New(writer).With().Timestamp().Logger())
}

// NewStandardObserverWithLogger creates observability component on top of an existing logger
func NewStandardObserverWithLogger(level ObservabilityLevel, logger zerolog.Logger) *StandardObserver {
	return &StandardObserver{
		level:  level,
		logger: logger,
	}
}

// Logger returns the underlying logger
func (o *StandardObserver) Logger() zerolog.Logger {
	return o.logger
}

// Level returns the observability level
func (o *StandardObserver) Level() ObservabilityLevel {
	return o.level
}

// StartTiming returns a function to complete timing
func (o *StandardObserver) StartTiming(component, operation, filePath string) func(success bool, metadata map[string]interface{}) {
	start := time.Now()

	return func(success bool, metadata map[string]interface{}) {
		duration := time.Since(start)

		data := StandardObservabilityData{
			Component:  component,
			Operation:  operation,
			FilePath:   filePath,
			DurationMs: duration.Milliseconds(),
			Success:    success,
			Metadata:   metadata,
		}
		if !success {
			if msg, ok := metadata["error"].(string); ok {
				data.Error = msg
			}
		}

		o.LogOperation(data)
	}
}

// LogOperation logs operation data. Metrics level records failures only;
// debug level records every operation.
func (o *StandardObserver) LogOperation(data StandardObservabilityData) {
	if o.level == ObservabilityOff {
		return
	}
	if o.level == ObservabilityMetrics && data.Success {
		return
	}

	data.RequestID = "req-" + uuid.NewString()

	var event *zerolog.Event
	if data.Success {
		event = o.logger.Debug()
	} else {
		event = o.logger.Warn()
	}

	event = event.
		Str("component", data.Component).
		Str("operation", data.Operation).
		Str("request_id", data.RequestID).
		Int64("duration_ms", data.DurationMs).
		Bool("success", data.Success)
	if data.FilePath != "" {
		event = event.Str("file_path", data.FilePath)
	}
	if data.Error != "" {
		event = event.Str("error", data.Error)
	}
	if len(data.Metadata) > 0 {
		event = event.Fields(data.Metadata)
	}
	event.Msg("operation")
}

// StandardObservabilityData for all components
type StandardObservabilityData struct {
	Component  string                 `json:"component"`
	Operation  string                 `json:"operation"`
	RequestID  string                 `json:"request_id"`
	FilePath   string                 `json:"file_path,omitempty"`
	DurationMs int64                  `json:"duration_ms,omitempty"`
	Success    bool                   `json:"success"`
	Error      string                 `json:"error,omitempty"`
	Metadata   map[string]interface{} `json:"metadata,omitempty"`
}
