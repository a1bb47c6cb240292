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
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	sdkmetric "go.opentelemetry.io/otel/sdk/metric"

	"rivaas.dev/apilog/filter"
	"rivaas.dev/apilog/format"
	"rivaas.dev/apilog/internal/pathmatch"
	"rivaas.dev/apilog/logging"
	"rivaas.dev/apilog/model"
	"rivaas.dev/apilog/sink"
	"rivaas.dev/apilog/trigger"
)

type boomError struct{ msg string }

func (e *boomError) Error() string { return e.msg }

type order struct {
	ID    int    `json:"id"`
	Total string `json:"total"`
}

func enabled(mutate ...func(*model.Settings)) model.Settings {
	s := model.DefaultSettings()
	s.Enabled = true
	for _, m := range mutate {
		m(&s)
	}

	return s
}

func newTestInterceptor(t *testing.T, s model.Settings, opts ...Option) (*Interceptor, *sink.Memory) {
	t.Helper()

	mem := sink.NewMemory()
	base := []Option{
		WithSettings(s),
		WithSink(mem),
		WithLogger(slog.New(slog.DiscardHandler)),
	}
	ic, err := New(append(base, opts...)...)
	require.NoError(t, err)

	return ic, mem
}

// invocation builds an HTTP invocation whose live response reports status
// once the handler has run.
func invocation(target string, headers map[string]string, status int, proceed model.ProceedFunc) *model.Invocation {
	r := httptest.NewRequest(http.MethodGet, target, nil)
	for k, v := range headers {
		r.Header.Set(k, v)
	}

	var written atomic.Bool
	return &model.Invocation{
		Target:    "OrderHandler",
		Operation: "Get",
		Args:      []model.Arg{{Name: "id", Value: 7}},
		Request:   model.NewHTTPRequest(r),
		Response: model.ResponseFunc(func() int {
			if !written.Load() {
				return 0
			}
			return status
		}),
		Proceed: func(ctx context.Context) (any, error) {
			defer written.Store(true)
			return proceed(ctx)
		},
	}
}

func returning(v any, err error) model.ProceedFunc {
	return func(context.Context) (any, error) { return v, err }
}

func TestInterceptDisabled(t *testing.T) {
	t.Parallel()

	ic, mem := newTestInterceptor(t, model.DefaultSettings())
	got, err := ic.Intercept(t.Context(), invocation("/orders/7", nil, 200, returning("ok", nil)))

	require.NoError(t, err)
	assert.Equal(t, "ok", got)
	assert.Zero(t, mem.Len())
	assert.False(t, ic.Enabled())
}

func TestInterceptSimpleRecord(t *testing.T) {
	t.Parallel()

	start := time.Date(2025, 3, 14, 9, 26, 53, 0, time.UTC)
	clock := clockwork.NewFakeClockAt(start)
	ic, mem := newTestInterceptor(t, enabled(), WithClock(clock))

	inv := invocation("/orders/7?expand=items&lang=en", nil, 0, func(context.Context) (any, error) {
		clock.Advance(42 * time.Millisecond)
		return model.NewReply(http.StatusOK, order{ID: 7}), nil
	})
	got, err := ic.Intercept(t.Context(), inv)
	require.NoError(t, err)
	assert.Equal(t, model.NewReply(http.StatusOK, order{ID: 7}), got)

	require.Equal(t, 1, mem.Len())
	rec, ok := mem.Last().(*model.SimpleRecord)
	require.True(t, ok, "expected a simple record, got %T", mem.Last())

	assert.Equal(t, model.Simple, rec.LogMode)
	assert.Equal(t, "/orders/7", rec.URI)
	assert.Equal(t, "OrderHandler#Get", rec.Handler)
	assert.Equal(t, "192.0.2.1", rec.ClientIP)
	assert.Equal(t, start.UnixMilli(), rec.RequestTimestampMs)
	assert.Equal(t, int64(42), rec.ProcessingTimeMs)
	assert.Equal(t, http.StatusOK, rec.StatusCode)
	assert.Empty(t, rec.ErrorIndicator)
	assert.Empty(t, rec.ExceptionStacktrace)
}

func TestInterceptForcePattern(t *testing.T) {
	t.Parallel()

	ic, mem := newTestInterceptor(t, enabled(func(s *model.Settings) {
		s.ForceDetailedLogPatterns = []string{"/public/**", "/admin/**"}
	}))

	inv := invocation("/admin/orders?page=2", map[string]string{"Authorization": "Bearer x"}, 200,
		returning(order{ID: 7, Total: "9.90"}, nil))
	_, err := ic.Intercept(t.Context(), inv)
	require.NoError(t, err)

	rec, ok := mem.Last().(*model.DetailedRecord)
	require.True(t, ok, "expected a detailed record, got %T", mem.Last())

	assert.Equal(t, model.Detailed, rec.LogMode)
	assert.Equal(t, "/admin/orders", rec.URI)
	assert.Equal(t, "page=2", rec.RequestQuery)
	assert.Equal(t, `{"id":7}`, rec.RequestParams)
	assert.Equal(t, `{"id":7,"total":"9.90"}`, rec.ResponseData)
	assert.Equal(t, "****", rec.RequestHeaders["Authorization"])
}

type brokenURIRequest struct {
	model.Request
}

func (brokenURIRequest) URI() string {
	panic("uri unavailable")
}

func TestInterceptForcePatternFailureStillRunsHandler(t *testing.T) {
	t.Parallel()

	spy := &logging.HandlerSpy{}
	ic, mem := newTestInterceptor(t, enabled(func(s *model.Settings) {
		s.ForceDetailedLogPatterns = []string{"/admin/**"}
	}), WithLogger(slog.New(spy)))

	inv := invocation("/admin/orders", nil, 200, returning("ok", nil))
	inv.Request = brokenURIRequest{Request: inv.Request}

	var got any
	require.NotPanics(t, func() {
		var err error
		got, err = ic.Intercept(t.Context(), inv)
		require.NoError(t, err)
	})

	assert.Equal(t, "ok", got)
	require.Equal(t, 1, mem.Len())
	assert.Equal(t, model.Simple, mem.Last().Mode())
	assert.Empty(t, mem.Last().Base().URI)
	assert.Contains(t, spy.Messages(), "api log force pattern check failed")
}

func TestInterceptNilReplyPublishesRecord(t *testing.T) {
	t.Parallel()

	ic, mem := newTestInterceptor(t, enabled())

	got, err := ic.Intercept(t.Context(), invocation("/orders", nil, 200, returning((*model.Reply[order])(nil), nil)))
	require.NoError(t, err)
	assert.Nil(t, got)

	require.Equal(t, 1, mem.Len())
	assert.Equal(t, 200, mem.Last().Base().StatusCode)
	assert.Empty(t, mem.Last().Base().ErrorIndicator)
}

func TestInterceptErrorPassThrough(t *testing.T) {
	t.Parallel()

	ic, mem := newTestInterceptor(t, enabled())
	boom := &boomError{msg: "boom"}

	_, err := ic.Intercept(t.Context(), invocation("/orders/7", nil, 0, returning(nil, boom)))

	require.Same(t, boom, err)
	rec, ok := mem.Last().(*model.DetailedRecord)
	require.True(t, ok, "exception trigger escalates")
	assert.Equal(t, "ERROR:boomError", rec.ErrorIndicator)
	assert.Contains(t, rec.ExceptionStacktrace, "boomError")
	assert.Contains(t, rec.ExceptionStacktrace, "boom")
	assert.Empty(t, rec.ResponseData)
	assert.Zero(t, rec.StatusCode)
}

func TestInterceptErrorWithClientStatus(t *testing.T) {
	t.Parallel()

	ic, mem := newTestInterceptor(t, enabled())
	_, err := ic.Intercept(t.Context(), invocation("/orders/7", nil, 400, returning(nil, &boomError{msg: "bad input"})))
	require.Error(t, err)

	assert.Equal(t, "WARN:boomError", mem.Last().Base().ErrorIndicator)
	assert.Equal(t, 400, mem.Last().Base().StatusCode)
}

func TestInterceptStatusTrigger(t *testing.T) {
	t.Parallel()

	ic, mem := newTestInterceptor(t, enabled())

	_, err := ic.Intercept(t.Context(), invocation("/orders/7", nil, http.StatusNotFound, returning(nil, nil)))
	require.NoError(t, err)

	rec := mem.Last()
	assert.Equal(t, model.Detailed, rec.Mode())
	assert.Equal(t, http.StatusNotFound, rec.Base().StatusCode)
	assert.Equal(t, "WARN_HTTP_STATUS_404", rec.Base().ErrorIndicator)

	_, err = ic.Intercept(t.Context(), invocation("/orders/7", nil, http.StatusTeapot, returning(nil, nil)))
	require.NoError(t, err)
	assert.Equal(t, model.Simple, mem.Last().Mode(), "418 is not listed")
}

func TestInterceptHeaderTrigger(t *testing.T) {
	t.Parallel()

	headers := map[string]string{"X-Log-Mode": "detailed"}

	ic, mem := newTestInterceptor(t, enabled())
	_, _ = ic.Intercept(t.Context(), invocation("/orders", headers, 200, returning("ok", nil)))
	assert.Equal(t, model.Simple, mem.Last().Mode(), "header trigger is off by default")

	ic, mem = newTestInterceptor(t, enabled(func(s *model.Settings) {
		s.Triggers = append(s.Triggers, model.TriggerHeader)
	}))
	_, _ = ic.Intercept(t.Context(), invocation("/orders", headers, 200, returning("ok", nil)))

	rec, ok := mem.Last().(*model.DetailedRecord)
	require.True(t, ok)
	assert.Equal(t, "detailed", rec.RequestHeaders["X-Log-Mode"])
}

func TestInterceptPreFilterSkip(t *testing.T) {
	t.Parallel()

	skipAll := filter.PreFunc("skip-all", 0, func(context.Context, filter.PreInput) (bool, error) {
		return true, nil
	})
	ic, mem := newTestInterceptor(t, enabled(), WithFilters(skipAll))

	called := false
	boom := errors.New("boom")
	_, err := ic.Intercept(t.Context(), invocation("/orders", nil, 500, func(context.Context) (any, error) {
		called = true
		return nil, boom
	}))

	require.ErrorIs(t, err, boom)
	assert.True(t, called)
	assert.Zero(t, mem.Len(), "a pre-filter skip suppresses the record even when a post trigger would fire")
}

func TestInterceptPreTriggerBypassesPreFilters(t *testing.T) {
	t.Parallel()

	consulted := false
	skipAll := filter.PreFunc("skip-all", 0, func(context.Context, filter.PreInput) (bool, error) {
		consulted = true
		return true, nil
	})
	ic, mem := newTestInterceptor(t, enabled(func(s *model.Settings) {
		s.Triggers = []string{model.TriggerHeader}
	}), WithFilters(skipAll))

	_, err := ic.Intercept(t.Context(), invocation("/orders", map[string]string{"X-Log-Mode": "DETAILED"}, 200, returning("ok", nil)))
	require.NoError(t, err)

	assert.False(t, consulted)
	assert.Equal(t, 1, mem.Len())
	assert.Equal(t, model.Detailed, mem.Last().Mode())
}

func TestInterceptForcePatternWinsOverFilters(t *testing.T) {
	t.Parallel()

	uri, err := filter.NewURIPattern("/admin/**")
	require.NoError(t, err)
	ic, mem := newTestInterceptor(t, enabled(func(s *model.Settings) {
		s.ForceDetailedLogPatterns = []string{"/admin/**"}
	}), WithFilters(uri))

	_, err = ic.Intercept(t.Context(), invocation("/admin/users", nil, 200, returning("ok", nil)))
	require.NoError(t, err)
	assert.Equal(t, 1, mem.Len())
}

func TestInterceptPostFilterSkip(t *testing.T) {
	t.Parallel()

	skipAll := filter.PostFunc("skip-all", 0, func(context.Context, filter.PostInput) (bool, error) {
		return true, nil
	})
	ic, mem := newTestInterceptor(t, enabled(), WithFilters(skipAll))

	_, err := ic.Intercept(t.Context(), invocation("/orders", nil, 200, returning("ok", nil)))
	require.NoError(t, err)
	assert.Zero(t, mem.Len())

	_, err = ic.Intercept(t.Context(), invocation("/orders", nil, 0, returning(nil, errors.New("boom"))))
	require.Error(t, err)
	assert.Equal(t, 1, mem.Len(), "an escalated call is never dropped by post-filters")
}

func TestInterceptFailingFilterIsIgnored(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	broken := filter.PreFunc("broken", 0, func(context.Context, filter.PreInput) (bool, error) {
		panic("nil pointer")
	})
	ic, mem := newTestInterceptor(t, enabled(), WithFilters(broken), WithLogger(slog.New(slog.NewJSONHandler(&buf, nil))))

	_, err := ic.Intercept(t.Context(), invocation("/orders", nil, 200, returning("ok", nil)))
	require.NoError(t, err)

	assert.Equal(t, 1, mem.Len())
	assert.Contains(t, buf.String(), "pre-filter panicked")
}

func TestInterceptPanic(t *testing.T) {
	t.Parallel()

	ic, mem := newTestInterceptor(t, enabled())
	inv := invocation("/orders", nil, 0, func(context.Context) (any, error) {
		panic("kaboom")
	})

	assert.PanicsWithValue(t, "kaboom", func() {
		_, _ = ic.Intercept(t.Context(), inv)
	})

	require.Equal(t, 1, mem.Len())
	rec := mem.Last()
	assert.Equal(t, model.Detailed, rec.Mode())
	assert.Equal(t, "ERROR:PanicError", rec.Base().ErrorIndicator)
	assert.Contains(t, rec.Base().ExceptionStacktrace, "panic: kaboom")
}

func TestInterceptSinkFailure(t *testing.T) {
	t.Parallel()

	spy := &logging.HandlerSpy{}
	reader := sdkmetric.NewManualReader()
	failing := sink.Func(func(context.Context, model.Record) error { return errors.New("disk full") })

	ic, err := New(
		WithSettings(enabled()),
		WithSink(failing),
		WithLogger(slog.New(spy)),
		WithMeterProvider(sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))),
	)
	require.NoError(t, err)

	got, err := ic.Intercept(t.Context(), invocation("/orders", nil, 200, returning("ok", nil)))

	require.NoError(t, err)
	assert.Equal(t, "ok", got)
	assert.Contains(t, spy.Messages(), "api log publish failed")
	cause, ok := spy.Attr("api log publish failed", "error")
	require.True(t, ok)
	assert.EqualError(t, cause.Any().(error), "disk full")
	assert.Equal(t, int64(1), counterValue(t, reader, "apilog.publish.errors"))
}

type panickyHeaders struct {
	*format.Default
}

func (panickyHeaders) Headers(model.Request, *model.Settings) map[string]string {
	panic("header map corrupted")
}

func TestInterceptMetadataFailureDegradesRecord(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	ic, mem := newTestInterceptor(t, enabled(func(s *model.Settings) { s.LogMode = model.Detailed }),
		WithFormatter(panickyHeaders{Default: format.New()}),
		WithLogger(slog.New(slog.NewJSONHandler(&buf, nil))),
	)

	_, err := ic.Intercept(t.Context(), invocation("/orders", nil, 200, returning("ok", nil)))
	require.NoError(t, err)

	rec, ok := mem.Last().(*model.DetailedRecord)
	require.True(t, ok)
	assert.Equal(t, "/orders", rec.URI)
	assert.Equal(t, "192.0.2.1", rec.ClientIP)
	assert.Nil(t, rec.RequestHeaders)
	assert.Equal(t, `{"id":7}`, rec.RequestParams)
	assert.Contains(t, buf.String(), "api log request metadata failed")
}

func TestInterceptScopeInHandler(t *testing.T) {
	t.Parallel()

	ic, mem := newTestInterceptor(t, enabled())

	var seen *model.Scope
	_, err := ic.Intercept(t.Context(), invocation("/orders", nil, 200, func(ctx context.Context) (any, error) {
		scope, ok := model.ScopeFrom(ctx)
		require.True(t, ok)
		seen = scope
		scope.Escalate()
		return "ok", nil
	}))
	require.NoError(t, err)

	assert.Equal(t, model.Detailed, mem.Last().Mode())
	assert.True(t, seen.Released())
	assert.Nil(t, seen.Result())
}

func TestInterceptInvalidInvocation(t *testing.T) {
	t.Parallel()

	ic, _ := newTestInterceptor(t, enabled())

	_, err := ic.Intercept(t.Context(), nil)
	require.ErrorIs(t, err, ErrInvalidInvocation)

	_, err = ic.Intercept(t.Context(), &model.Invocation{})
	require.ErrorIs(t, err, ErrInvalidInvocation)
}

func TestNewValidation(t *testing.T) {
	t.Parallel()

	_, err := New(WithSettings(enabled(func(s *model.Settings) { s.LogMode = "VERBOSE" })))
	require.ErrorIs(t, err, model.ErrInvalidSettings)

	_, err = New(WithSettings(enabled(func(s *model.Settings) { s.ForceDetailedLogPatterns = []string{"/a/["} })))
	require.ErrorIs(t, err, pathmatch.ErrBadPattern)

	_, err = New(WithExtraTriggers(trigger.Exception{}))
	require.ErrorIs(t, err, trigger.ErrDuplicateTrigger)

	assert.Panics(t, func() {
		MustNew(WithSettings(enabled(func(s *model.Settings) { s.MaxPayloadLength = -5 })))
	})
}

func TestSettingsAreCopied(t *testing.T) {
	t.Parallel()

	s := enabled()
	ic, _ := newTestInterceptor(t, s)
	s.Triggers[0] = "mutated"

	assert.Equal(t, model.TriggerException, ic.Settings().Triggers[0])
}

// counterValue sums the data points of the named counter whose attributes
// equal attrs.
func counterValue(t *testing.T, reader sdkmetric.Reader, name string, attrs ...attribute.KeyValue) int64 {
	t.Helper()

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(t.Context(), &rm))

	want := attribute.NewSet(attrs...)
	var total int64
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name != name {
				continue
			}
			sum, ok := m.Data.(metricdata.Sum[int64])
			require.True(t, ok, "%s is not an int64 sum", name)
			for _, dp := range sum.DataPoints {
				if dp.Attributes.Equals(&want) {
					total += dp.Value
				}
			}
		}
	}

	return total
}

func TestMetrics(t *testing.T) {
	t.Parallel()

	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	skipHealth := filter.PreFunc("health", 0, func(_ context.Context, in filter.PreInput) (bool, error) {
		return in.Invocation.Request.URI() == "/health", nil
	})
	ic, _ := newTestInterceptor(t, enabled(), WithMeterProvider(mp), WithFilters(skipHealth))

	ctx := t.Context()
	_, _ = ic.Intercept(ctx, invocation("/orders", nil, 200, returning("ok", nil)))
	_, _ = ic.Intercept(ctx, invocation("/orders", nil, 500, returning(nil, nil)))
	_, _ = ic.Intercept(ctx, invocation("/health", nil, 200, returning("ok", nil)))

	assert.Equal(t, int64(1), counterValue(t, reader, "apilog.records.published", attribute.String("mode", "SIMPLE")))
	assert.Equal(t, int64(1), counterValue(t, reader, "apilog.records.published", attribute.String("mode", "DETAILED")))
	assert.Equal(t, int64(1), counterValue(t, reader, "apilog.escalations",
		attribute.String("stage", stagePost), attribute.String("source", model.TriggerStatusCode)))
	assert.Equal(t, int64(1), counterValue(t, reader, "apilog.calls.skipped",
		attribute.String("stage", stagePre), attribute.String("filter", "health")))

	// A second interceptor on the same provider adds to the same counters.
	other, err := New(WithSettings(enabled()), WithMeterProvider(mp), WithSink(sink.NewMemory()))
	require.NoError(t, err)
	_, _ = other.Intercept(ctx, invocation("/orders", nil, 200, returning("ok", nil)))
	assert.Equal(t, int64(2), counterValue(t, reader, "apilog.records.published", attribute.String("mode", "SIMPLE")))
}

func TestMetricsPrometheusExport(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	ic, _ := newTestInterceptor(t, enabled(), WithMetrics(reg))

	_, err := ic.Intercept(t.Context(), invocation("/orders", nil, 200, returning("ok", nil)))
	require.NoError(t, err)

	count, err := testutil.GatherAndCount(reg, "apilog_records_published_total")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestStartupBanner(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	_, err := New(
		WithSettings(enabled(func(s *model.Settings) { s.ForceDetailedLogPatterns = []string{"/admin/**"} })),
		WithLogger(slog.New(slog.DiscardHandler)),
		WithStartupBanner(&buf),
	)
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "API logging is ENABLED")
	assert.Contains(t, out, "SIMPLE")
	assert.Contains(t, out, "1024 chars")
	assert.Contains(t, out, "/admin/**")
	assert.Contains(t, out, "Slog")

	buf.Reset()
	_, err = New(WithStartupBanner(&buf))
	require.NoError(t, err)
	assert.Empty(t, buf.String(), "no banner while disabled")
}
