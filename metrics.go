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
	"context"
	"fmt"

	promclient "github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/metric"

	sdkmetric "go.opentelemetry.io/otel/sdk/metric"

	"rivaas.dev/apilog/model"
)

// meterName is the instrumentation scope of the interceptor's instruments.
const meterName = "rivaas.dev/apilog"

// Decision stages reported in metric attributes.
const (
	stagePattern = "pattern"
	stagePre     = "pre"
	stagePost    = "post"
)

// NewPrometheusMeterProvider returns a meter provider whose instruments are
// exported through reg. Interceptors sharing a registry should share the
// provider too:
//
//	mp, err := apilog.NewPrometheusMeterProvider(reg)
//	...
//	public := apilog.MustNew(apilog.WithMeterProvider(mp), ...)
//	admin := apilog.MustNew(apilog.WithMeterProvider(mp), ...)
func NewPrometheusMeterProvider(reg promclient.Registerer) (*sdkmetric.MeterProvider, error) {
	exporter, err := prometheus.New(prometheus.WithRegisterer(reg))
	if err != nil {
		return nil, fmt.Errorf("failed to create Prometheus exporter: %w", err)
	}

	return sdkmetric.NewMeterProvider(sdkmetric.WithReader(exporter)), nil
}

// metrics counts the interceptor's own decisions. A nil *metrics is a
// no-op.
type metrics struct {
	published     metric.Int64Counter
	skipped       metric.Int64Counter
	escalations   metric.Int64Counter
	publishErrors metric.Int64Counter
}

func newMetrics(provider metric.MeterProvider) (*metrics, error) {
	if provider == nil {
		return nil, nil
	}
	meter := provider.Meter(meterName, metric.WithInstrumentationVersion(Version))

	m := &metrics{}
	var err error

	m.published, err = meter.Int64Counter(
		"apilog.records.published",
		metric.WithDescription("Records handed to the sink, by log mode"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create published counter: %w", err)
	}

	m.skipped, err = meter.Int64Counter(
		"apilog.calls.skipped",
		metric.WithDescription("Calls not logged because a filter voted to skip"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create skipped counter: %w", err)
	}

	m.escalations, err = meter.Int64Counter(
		"apilog.escalations",
		metric.WithDescription("Calls escalated to DETAILED, by stage and source"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create escalations counter: %w", err)
	}

	m.publishErrors, err = meter.Int64Counter(
		"apilog.publish.errors",
		metric.WithDescription("Records the sink failed to publish"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create publish errors counter: %w", err)
	}

	return m, nil
}

func (m *metrics) recordPublished(ctx context.Context, mode model.Mode) {
	if m == nil {
		return
	}
	m.published.Add(ctx, 1, metric.WithAttributes(attribute.String("mode", string(mode))))
}

func (m *metrics) recordSkipped(ctx context.Context, stage, filterName string) {
	if m == nil {
		return
	}
	m.skipped.Add(ctx, 1, metric.WithAttributes(
		attribute.String("stage", stage),
		attribute.String("filter", filterName),
	))
}

func (m *metrics) recordEscalation(ctx context.Context, stage, source string) {
	if m == nil {
		return
	}
	m.escalations.Add(ctx, 1, metric.WithAttributes(
		attribute.String("stage", stage),
		attribute.String("source", source),
	))
}

func (m *metrics) recordPublishError(ctx context.Context) {
	if m == nil {
		return
	}
	m.publishErrors.Add(ctx, 1)
}
