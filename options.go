// Copyright 2025 The Rivaas Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package apilog

import (
	"io"
	"log/slog"

	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel/metric"

	"rivaas.dev/apilog/filter"
	"rivaas.dev/apilog/format"
	"rivaas.dev/apilog/model"
	"rivaas.dev/apilog/sink"
	"rivaas.dev/apilog/trigger"
)

// Option configures an [Interceptor].
type Option func(*config)

type config struct {
	settings      model.Settings
	triggers      []trigger.Trigger
	extraTriggers []trigger.Trigger
	filters       []filter.Filter
	formatter     format.Formatter
	sink          sink.Sink
	logger        *slog.Logger
	clock         clockwork.Clock
	registerer    prometheus.Registerer
	meterProvider metric.MeterProvider
	banner        io.Writer
}

func defaultConfig() *config {
	return &config{
		settings: model.DefaultSettings(),
		triggers: trigger.Defaults(),
		clock:    clockwork.NewRealClock(),
	}
}

// WithSettings sets the behavior settings. The settings are copied; later
// changes to s have no effect. Without this option logging is disabled.
func WithSettings(s model.Settings) Option {
	return func(c *config) {
		c.settings = s.Clone()
	}
}

// WithTriggers replaces the built-in triggers. Only triggers whose name is
// in the settings' allow-list run.
func WithTriggers(triggers ...trigger.Trigger) Option {
	return func(c *config) {
		c.triggers = triggers
	}
}

// WithExtraTriggers appends triggers after the built-in ones.
func WithExtraTriggers(triggers ...trigger.Trigger) Option {
	return func(c *config) {
		c.extraTriggers = append(c.extraTriggers, triggers...)
	}
}

// WithFilters adds filters. They are merged with the built-in filters
// declared in the settings and sorted by order.
func WithFilters(filters ...filter.Filter) Option {
	return func(c *config) {
		c.filters = append(c.filters, filters...)
	}
}

// WithFormatter replaces the default content formatter.
func WithFormatter(f format.Formatter) Option {
	return func(c *config) {
		c.formatter = f
	}
}

// WithSink sets where records are published. The default is a [sink.Slog]
// on the side-channel logger.
func WithSink(s sink.Sink) Option {
	return func(c *config) {
		c.sink = s
	}
}

// WithLogger sets the side-channel logger that reports failures of
// filters, triggers, formatting and sinks.
func WithLogger(l *slog.Logger) Option {
	return func(c *config) {
		c.logger = l
	}
}

// WithClock replaces the clock used for timestamps and processing time.
func WithClock(clock clockwork.Clock) Option {
	return func(c *config) {
		if clock != nil {
			c.clock = clock
		}
	}
}

// WithMetrics exports the interceptor's counters to reg through a
// dedicated meter provider. Use [WithMeterProvider] with
// [NewPrometheusMeterProvider] when several interceptors share reg.
func WithMetrics(reg prometheus.Registerer) Option {
	return func(c *config) {
		c.registerer = reg
	}
}

// WithMeterProvider records the interceptor's counters through mp.
// It takes precedence over [WithMetrics].
func WithMeterProvider(mp metric.MeterProvider) Option {
	return func(c *config) {
		c.meterProvider = mp
	}
}

// WithStartupBanner prints a summary of the effective settings to w when
// the interceptor is created with logging enabled.
func WithStartupBanner(w io.Writer) Option {
	return func(c *config) {
		c.banner = w
	}
}
