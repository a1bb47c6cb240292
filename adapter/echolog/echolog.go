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

// Package echolog plugs an [apilog.Interceptor] into echo.
//
//	e := echo.New()
//	e.Use(echolog.Middleware(ic))
package echolog

import (
	"context"

	"github.com/labstack/echo/v4"

	"rivaas.dev/apilog"
	"rivaas.dev/apilog/adapter/nethttp"
	"rivaas.dev/apilog/internal/handlername"
	"rivaas.dev/apilog/model"
)

// Middleware returns an echo middleware logging each request through ic.
// It must be added with Use, not Pre, so that the route is known.
//
// A handler error is passed to the echo error handler before the record is
// built, so the record carries the status of the error response.
func Middleware(ic *apilog.Interceptor) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !ic.Enabled() {
				return next(c)
			}

			target, operation := handlername.FromFunc(c.Handler())

			names, values := c.ParamNames(), c.ParamValues()
			args := make([]model.Arg, 0, len(names))
			for i, name := range names {
				if i < len(values) {
					args = append(args, model.Arg{Name: name, Value: values[i]})
				}
			}
			args = append(args, nethttp.QueryArgs(c.Request())...)

			_, err := ic.Intercept(c.Request().Context(), &model.Invocation{
				Target:    target,
				Operation: operation,
				Args:      args,
				Request:   model.NewHTTPRequest(c.Request()),
				Response:  model.ResponseFunc(func() int { return status(c) }),
				Proceed: func(ctx context.Context) (any, error) {
					c.SetRequest(c.Request().WithContext(ctx))
					err := next(c)
					if err != nil {
						c.Error(err)
					}
					return nil, err
				},
			})

			return err
		}
	}
}

// status is the committed status of c, or 0 before anything was written.
func status(c echo.Context) int {
	res := c.Response()
	if !res.Committed {
		return 0
	}

	return res.Status
}
