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

package nethttp

import (
	"context"
	"fmt"
	"net/http"

	"rivaas.dev/apilog"
	"rivaas.dev/apilog/internal/handlername"
	"rivaas.dev/apilog/model"
)

// NameFunc names the handler serving r.
type NameFunc func(r *http.Request) (target, operation string)

// ArgsFunc extracts the logged arguments of r. pattern is the route pattern
// that matched r, or "" when unknown.
type ArgsFunc func(r *http.Request, pattern string) []model.Arg

// ErrorWriter answers a request whose handler returned err.
type ErrorWriter func(w http.ResponseWriter, r *http.Request, err error)

// Option configures the adapter.
type Option func(*config)

type config struct {
	name        NameFunc
	args        ArgsFunc
	errorWriter ErrorWriter
}

func newConfig(opts []Option) *config {
	cfg := &config{
		args:        Args,
		errorWriter: WriteProblem,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	return cfg
}

// WithName overrides how handlers are named.
func WithName(fn NameFunc) Option {
	return func(c *config) {
		c.name = fn
	}
}

// WithArgs overrides how arguments are extracted. The default is [Args].
func WithArgs(fn ArgsFunc) Option {
	return func(c *config) {
		c.args = fn
	}
}

// WithErrorWriter overrides how [Wrap] answers handler errors.
// The default is [WriteProblem].
func WithErrorWriter(fn ErrorWriter) Option {
	return func(c *config) {
		c.errorWriter = fn
	}
}

// routeResolver is implemented by [http.ServeMux].
type routeResolver interface {
	Handler(r *http.Request) (h http.Handler, pattern string)
}

// Middleware returns a middleware that logs each request through ic.
func Middleware(ic *apilog.Interceptor, opts ...Option) func(http.Handler) http.Handler {
	cfg := newConfig(opts)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !ic.Enabled() {
				next.ServeHTTP(w, r)
				return
			}

			h, pattern := next, r.Pattern
			if rr, ok := next.(routeResolver); ok {
				h, pattern = rr.Handler(r)
			}
			target, operation := Name(ic, r, cfg.name, func() (string, string) {
				return handlername.FromHandler(h)
			})

			ww, status := recordStatus(w)
			_, _ = ic.Intercept(r.Context(), &model.Invocation{
				Target:      target,
				Operation:   operation,
				ResolveArgs: func() []model.Arg { return cfg.args(r, pattern) },
				Request:     model.NewHTTPRequest(r),
				Response:    status,
				Proceed: func(ctx context.Context) (any, error) {
					next.ServeHTTP(ww, r.WithContext(ctx))
					status.finish()
					return nil, nil
				},
			})
		})
	}
}

// HandlerFunc is an HTTP handler that reports failure by returning an error.
type HandlerFunc func(w http.ResponseWriter, r *http.Request) error

// Wrap adapts fn to [http.Handler], logging each call through ic.
// A returned error is answered with the configured [ErrorWriter] unless fn
// already wrote the response status.
//
// Example:
//
//	mux.Handle("POST /orders", nethttp.Wrap(ic, orders.Create))
func Wrap(ic *apilog.Interceptor, fn HandlerFunc, opts ...Option) http.Handler {
	cfg := newConfig(opts)
	fnTarget, fnOperation := handlername.FromFunc(fn)

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		target, operation := Name(ic, r, cfg.name, func() (string, string) {
			return fnTarget, fnOperation
		})

		ww, status := recordStatus(w)
		_, _ = ic.Intercept(r.Context(), &model.Invocation{
			Target:      target,
			Operation:   operation,
			ResolveArgs: func() []model.Arg { return cfg.args(r, r.Pattern) },
			Request:     model.NewHTTPRequest(r),
			Response:    status,
			Proceed: func(ctx context.Context) (any, error) {
				err := fn(ww, r.WithContext(ctx))
				if err != nil && status.Status() == 0 {
					cfg.errorWriter(ww, r, err)
				}
				status.finish()
				return nil, err
			},
		})
	})
}

// Name resolves the handler name of r with fn, or with fallback when fn is
// nil. A panic in fn is reported on the interceptor's logger and the
// fallback name is used.
func Name(ic *apilog.Interceptor, r *http.Request, fn NameFunc, fallback func() (string, string)) (target, operation string) {
	if fn == nil {
		return fallback()
	}
	defer func() {
		if rec := recover(); rec != nil {
			ic.Logger().WarnContext(r.Context(), "api log handler naming failed", "error", fmt.Errorf("panic: %v", rec))
			target, operation = fallback()
		}
	}()

	return fn(r)
}
