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

// Package ginlog plugs an [apilog.Interceptor] into gin.
//
//	r := gin.New()
//	r.Use(ginlog.Middleware(ic))
package ginlog

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"rivaas.dev/apilog"
	"rivaas.dev/apilog/adapter/nethttp"
	"rivaas.dev/apilog/internal/handlername"
	"rivaas.dev/apilog/model"
)

// Middleware returns a gin middleware logging each request through ic.
//
// The last error attached with c.Error becomes the error of the call.
// Errors do not change the response, gin leaves that to the handler.
func Middleware(ic *apilog.Interceptor) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !ic.Enabled() {
			c.Next()
			return
		}

		target, operation := handlername.Parse(c.HandlerName())

		args := make([]model.Arg, 0, len(c.Params))
		for _, p := range c.Params {
			args = append(args, model.Arg{Name: p.Key, Value: p.Value})
		}
		args = append(args, nethttp.QueryArgs(c.Request)...)

		_, _ = ic.Intercept(c.Request.Context(), &model.Invocation{
			Target:    target,
			Operation: operation,
			Args:      args,
			Request:   model.NewHTTPRequest(c.Request),
			Response:  model.ResponseFunc(func() int { return status(c) }),
			Proceed: func(ctx context.Context) (any, error) {
				c.Request = c.Request.WithContext(ctx)
				c.Next()
				if last := c.Errors.Last(); last != nil {
					return nil, last.Err
				}
				return nil, nil
			},
		})
	}
}

// status is the status written or set so far. gin starts every response at
// 200, so an unwritten 200 counts as unknown.
func status(c *gin.Context) int {
	code := c.Writer.Status()
	if !c.Writer.Written() && code == http.StatusOK {
		return 0
	}

	return code
}
