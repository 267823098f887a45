// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package observability

import (
	"io"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// DebugObserver provides detailed step-by-step debugging
type DebugObserver struct {
	*StandardObserver

	mu    sync.Mutex
	depth int
}

// NewDebugObserver creates a debug observer with step-by-step logging.
// Output is rendered for humans.
func NewDebugObserver(writer io.Writer) *DebugObserver {
	console := zerolog.ConsoleWriter{Out: writer, TimeFormat: time.TimeOnly, NoColor: true}
	logger := zerolog.New(console).Level(zerolog.DebugLevel).With().Timestamp().Logger()

	d := &DebugObserver{
		StandardObserver: NewStandardObserverWithLogger(ObservabilityDebug, logger),
	}
	d.StandardObserver.DebugObserver = d
	return d
}

// StartStep begins a processing step
func (d *DebugObserver) StartStep(component, step, filePath string) func(success bool, details string) {
	start := time.Now()

	d.mu.Lock()
	depth := d.depth
	d.depth++
	d.mu.Unlock()

	d.logger.Debug().
		Int("depth", depth).
		Str("component", component).
		Str("file", filePath).
		Msgf("start %s", step)

	return func(success bool, details string) {
		d.mu.Lock()
		d.depth--
		d.mu.Unlock()

		event := d.logger.Debug()
		verb := "completed"
		if !success {
			event = d.logger.Warn()
			verb = "failed"
		}
		event.
			Int("depth", depth).
			Str("component", component).
			Int64("duration_ms", time.Since(start).Milliseconds()).
			Str("details", details).
			Msgf("%s %s", step, verb)
	}
}

// LogDetail logs a detail within the current step
func (d *DebugObserver) LogDetail(component, detail string) {
	d.logger.Debug().Str("component", component).Msg(detail)
}

// LogMetric logs a metric value
func (d *DebugObserver) LogMetric(component, metric string, value interface{}) {
	d.logger.Debug().Str("component", component).Interface(metric, value).Msg("metric")
}
