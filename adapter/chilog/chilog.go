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

// Package chilog plugs an [apilog.Interceptor] into a chi router.
//
//	r := chi.NewRouter()
//	r.Use(chilog.Middleware(ic, r))
//	r.Get("/orders/{id}", orders.Get)
package chilog

import (
	"context"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"rivaas.dev/apilog"
	"rivaas.dev/apilog/adapter/nethttp"
	"rivaas.dev/apilog/internal/handlername"
	"rivaas.dev/apilog/model"
)

// Option configures the middleware.
type Option func(*config)

type config struct {
	name nethttp.NameFunc
}

// WithName overrides how handlers are named.
func WithName(fn nethttp.NameFunc) Option {
	return func(c *config) {
		c.name = fn
	}
}

// Middleware returns a chi middleware logging each request through ic.
//
// Middlewares added with Use run before chi routes the request, so routes
// is used to resolve the route pattern, its URL parameters and the handler
// name. Pass the router the middleware is mounted on. Inline middlewares
// (With, Group) already see the routed context and may pass nil.
func Middleware(ic *apilog.Interceptor, routes chi.Routes, opts ...Option) func(http.Handler) http.Handler {
	cfg := &config{}
	for _, opt := range opts {
		opt(cfg)
	}
	handlers := sync.OnceValue(func() map[string]handlerName {
		return walk(routes)
	})

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !ic.Enabled() {
				next.ServeHTTP(w, r)
				return
			}

			rctx := route(routes, r)
			pattern := rctx.RoutePattern()

			target, operation := nethttp.Name(ic, r, cfg.name, func() (string, string) {
				if h, ok := handlers()[routeKey(r.Method, pattern)]; ok {
					return h.target, h.operation
				}
				return handlername.FromHandler(next)
			})

			args := make([]model.Arg, 0, len(rctx.URLParams.Keys))
			for i, key := range rctx.URLParams.Keys {
				if key == "*" {
					continue
				}
				args = append(args, model.Arg{Name: key, Value: rctx.URLParams.Values[i]})
			}
			args = append(args, nethttp.QueryArgs(r)...)

			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			_, _ = ic.Intercept(r.Context(), &model.Invocation{
				Target:    target,
				Operation: operation,
				Args:      args,
				Request:   model.NewHTTPRequest(r),
				Response:  ww,
				Proceed: func(ctx context.Context) (any, error) {
					next.ServeHTTP(ww, r.WithContext(ctx))
					return nil, nil
				},
			})
		})
	}
}

type handlerName struct {
	target    string
	operation string
}

func routeKey(method, pattern string) string {
	return method + " " + pattern
}

// route returns the routing context of r. A request that has not been
// routed yet is matched against routes on a fresh context.
func route(routes chi.Routes, r *http.Request) *chi.Context {
	if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
		return rctx
	}

	rctx := chi.NewRouteContext()
	if routes == nil {
		return rctx
	}
	path := r.URL.RawPath
	if path == "" {
		path = r.URL.Path
	}
	if !routes.Match(rctx, r.Method, path) {
		return chi.NewRouteContext()
	}

	return rctx
}

// walk indexes the endpoint handlers of routes by method and pattern.
func walk(routes chi.Routes) map[string]handlerName {
	names := make(map[string]handlerName)
	if routes == nil {
		return names
	}

	_ = chi.Walk(routes, func(method, pattern string, h http.Handler, _ ...func(http.Handler) http.Handler) error {
		target, operation := handlername.FromHandler(h)
		names[routeKey(method, pattern)] = handlerName{target: target, operation: operation}
		return nil
	})

	return names
}
