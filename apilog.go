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
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"slices"

	"github.com/jonboulle/clockwork"

	"rivaas.dev/apilog/filter"
	"rivaas.dev/apilog/format"
	"rivaas.dev/apilog/internal/guard"
	"rivaas.dev/apilog/internal/pathmatch"
	"rivaas.dev/apilog/model"
	"rivaas.dev/apilog/sink"
	"rivaas.dev/apilog/trigger"
)

// Version is reported in the startup banner.
const Version = "0.4.0"

// ErrInvalidInvocation is returned by [Interceptor.Intercept] for an
// invocation without a Proceed function.
var ErrInvalidInvocation = errors.New("invocation has no proceed function")

// Interceptor decides, per call, whether and how much to log and publishes
// one record per logged call. It is immutable after [New] and safe for
// concurrent use.
type Interceptor struct {
	settings  model.Settings
	force     *pathmatch.Matcher
	triggers  *trigger.Set
	filters   *filter.Chain
	formatter format.Formatter
	sink      sink.Sink
	logger    *slog.Logger
	clock     clockwork.Clock
	metrics   *metrics
}

// New validates the settings, compiles the force patterns and builds the
// filter chain.
//
// Example:
//
//	ic, err := apilog.New(
//		apilog.WithSettings(settings),
//		apilog.WithSink(sink.NewSlog(logger)),
//		apilog.WithLogger(logger),
//	)
func New(opts ...Option) (*Interceptor, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	if err := cfg.settings.Validate(); err != nil {
		return nil, err
	}

	logger := cfg.logger
	if logger == nil {
		logger = slog.Default()
	}

	force, err := pathmatch.New(cfg.settings.ForceDetailedLogPatterns...)
	if err != nil {
		return nil, fmt.Errorf("force_detailed_log_patterns: %w", err)
	}

	triggers, err := trigger.NewSet(logger, slices.Concat(cfg.triggers, cfg.extraTriggers)...)
	if err != nil {
		return nil, err
	}

	builtin, err := filter.FromSettings(cfg.settings.Filters)
	if err != nil {
		return nil, fmt.Errorf("filters: %w", err)
	}
	chain, err := filter.NewChain(logger, slices.Concat(builtin, cfg.filters)...)
	if err != nil {
		return nil, err
	}

	provider := cfg.meterProvider
	if provider == nil && cfg.registerer != nil {
		mp, err := NewPrometheusMeterProvider(cfg.registerer)
		if err != nil {
			return nil, err
		}
		provider = mp
	}
	m, err := newMetrics(provider)
	if err != nil {
		return nil, err
	}

	ic := &Interceptor{
		settings:  cfg.settings,
		force:     force,
		triggers:  triggers,
		filters:   chain,
		formatter: cfg.formatter,
		sink:      cfg.sink,
		logger:    logger,
		clock:     cfg.clock,
		metrics:   m,
	}
	if ic.formatter == nil {
		ic.formatter = format.New()
	}
	if ic.sink == nil {
		ic.sink = sink.NewSlog(logger)
	}

	if ic.settings.Enabled {
		logger.Info("api logging enabled",
			"log_mode", ic.settings.LogMode,
			"triggers", ic.settings.Triggers,
			"force_patterns", force.Len(),
		)
		if cfg.banner != nil {
			ic.printBanner(cfg.banner)
		}
	}

	return ic, nil
}

// MustNew is like [New] but panics on error.
func MustNew(opts ...Option) *Interceptor {
	ic, err := New(opts...)
	if err != nil {
		panic(fmt.Sprintf("apilog: %v", err))
	}

	return ic
}

// Settings returns a copy of the effective settings.
func (ic *Interceptor) Settings() model.Settings {
	return ic.settings.Clone()
}

// Logger returns the side-channel logger given by [WithLogger].
func (ic *Interceptor) Logger() *slog.Logger {
	return ic.logger
}

// Enabled reports whether calls are logged at all.
func (ic *Interceptor) Enabled() bool {
	return ic.settings.Enabled
}

// Intercept runs inv.Proceed and logs the call.
//
// The handler's result and error are returned unchanged. A panic in the
// handler is logged as a [model.PanicError] and then re-raised with the
// original value. Failures of filters, triggers, formatting or the sink are
// reported on the side-channel logger and never reach the caller.
//
// The call's [model.Scope] is available to the handler through
// [model.ScopeFrom].
func (ic *Interceptor) Intercept(ctx context.Context, inv *model.Invocation) (result any, err error) {
	if inv == nil || inv.Proceed == nil {
		return nil, ErrInvalidInvocation
	}
	if !ic.settings.Enabled {
		return inv.Proceed(ctx)
	}

	scope := model.NewScope(ic.settings.LogMode)
	defer scope.Release()
	ctx = model.WithScope(ctx, scope)

	ic.checkForcePatterns(ctx, inv, scope)

	if !scope.Decided() {
		if name, fired := ic.triggers.Evaluate(ctx, trigger.Input{
			Invocation: inv,
			Scope:      scope,
			Settings:   &ic.settings,
		}); fired {
			ic.escalate(ctx, inv, scope, stagePre, name)
		}
	}

	if !scope.Decided() {
		if name, skip := ic.filters.EvaluatePre(ctx, filter.PreInput{Invocation: inv, Scope: scope}); skip {
			ic.metrics.recordSkipped(ctx, stagePre, name)
			return inv.Proceed(ctx)
		}
	}

	c := &call{inv: inv, scope: scope, start: ic.clock.Now()}
	ic.gather(ctx, c)

	completed := false
	defer func() {
		if completed {
			ic.finalize(ctx, c, result, err)
			return
		}
		r := recover()
		if r == nil {
			// runtime.Goexit
			return
		}
		ic.finalize(ctx, c, nil, model.NewPanicError(r, debug.Stack()))
		panic(r)
	}()

	result, err = inv.Proceed(ctx)
	completed = true
	scope.SetResult(result)

	return result, err
}

func (ic *Interceptor) checkForcePatterns(ctx context.Context, inv *model.Invocation, scope *model.Scope) {
	if inv.Request == nil || ic.force.Len() == 0 {
		return
	}

	var (
		pattern string
		matched bool
	)
	guard.Do(ctx, ic.logger, slog.LevelWarn, "api log force pattern check failed", func() error {
		pattern, matched = ic.force.Match(inv.Request.URI())
		return nil
	})
	if matched {
		ic.escalate(ctx, inv, scope, stagePattern, pattern)
	}
}

func (ic *Interceptor) escalate(ctx context.Context, inv *model.Invocation, scope *model.Scope, stage, source string) {
	scope.Escalate()
	ic.metrics.recordEscalation(ctx, stage, source)
	ic.logger.DebugContext(ctx, "api log escalated to detailed",
		"handler", inv.HandlerID(),
		"stage", stage,
		"source", source,
	)
}

// finalize runs the post-call decisions and publishes the record. Every
// failure is logged and swallowed.
func (ic *Interceptor) finalize(ctx context.Context, c *call, result any, callErr error) {
	elapsed := ic.clock.Since(c.start)

	if !c.scope.Decided() {
		if name, fired := ic.triggers.Evaluate(ctx, trigger.Input{
			Invocation: c.inv,
			Scope:      c.scope,
			Err:        callErr,
			Settings:   &ic.settings,
		}); fired {
			ic.escalate(ctx, c.inv, c.scope, stagePost, name)
		}
	}

	if !c.scope.Decided() {
		if name, skip := ic.filters.EvaluatePost(ctx, filter.PostInput{
			Invocation: c.inv,
			Scope:      c.scope,
			Result:     result,
			Err:        callErr,
			Elapsed:    elapsed,
		}); skip {
			ic.metrics.recordSkipped(ctx, stagePost, name)
			return
		}
	}

	var rec model.Record
	if !guard.Do(ctx, ic.logger, slog.LevelError, "api log record build failed", func() error {
		rec = ic.buildRecord(c, result, callErr, elapsed)
		return nil
	}) {
		return
	}

	// The record outlives a cancelled request.
	pubCtx := context.WithoutCancel(ctx)
	if guard.Do(pubCtx, ic.logger, slog.LevelError, "api log publish failed", func() error {
		return ic.sink.Publish(pubCtx, rec)
	}) {
		ic.metrics.recordPublished(pubCtx, rec.Mode())
		return
	}
	ic.metrics.recordPublishError(pubCtx)
}
