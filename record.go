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
	"log/slog"
	"time"

	"rivaas.dev/apilog/internal/guard"
	"rivaas.dev/apilog/internal/typename"
	"rivaas.dev/apilog/model"
)

// call is the state of one logged call between gathering and publishing.
type call struct {
	inv   *model.Invocation
	scope *model.Scope
	start time.Time

	clientIP string
	uri      string
	handler  string
	headers  map[string]string
	query    string
	params   string
}

// gather reads the request metadata before the handler runs, so that a
// handler consuming or mutating the request does not change the record.
// A failure leaves the affected fields empty.
func (ic *Interceptor) gather(ctx context.Context, c *call) {
	c.handler = c.inv.HandlerID()

	req := c.inv.Request
	guard.Do(ctx, ic.logger, slog.LevelWarn, "api log request metadata failed", func() error {
		c.clientIP = ic.formatter.ClientIP(req)
		if req == nil {
			return nil
		}
		c.uri = req.URI()
		c.headers = ic.formatter.Headers(req, &ic.settings)
		if q, ok := ic.formatter.Queries(req, &ic.settings); ok {
			c.query = q
		}
		return nil
	})

	guard.Do(ctx, ic.logger, slog.LevelWarn, "api log argument formatting failed", func() error {
		args := c.inv.Args
		if c.inv.ResolveArgs != nil {
			args = c.inv.ResolveArgs()
		}
		c.params = ic.formatter.Arguments(args, req, &ic.settings)
		return nil
	})
}

func (ic *Interceptor) buildRecord(c *call, result any, callErr error, elapsed time.Duration) model.Record {
	mode := c.scope.Mode()

	status, _ := model.ResolveStatus(result, c.inv.Response)
	errType := ""
	if callErr != nil {
		errType = typename.Simple(callErr)
	}

	base := model.SimpleRecord{
		LogMode:            mode,
		ClientIP:           c.clientIP,
		RequestTimestampMs: c.start.UnixMilli(),
		URI:                c.uri,
		Handler:            c.handler,
		ProcessingTimeMs:   elapsed.Milliseconds(),
		StatusCode:         status,
		ErrorIndicator:     model.ErrorIndicator(callErr != nil, errType, status),
	}
	if callErr != nil {
		base.ExceptionStacktrace = ic.formatter.Exception(callErr, mode, &ic.settings)
	}

	if mode != model.Detailed {
		return &base
	}

	rec := &model.DetailedRecord{
		SimpleRecord:   base,
		RequestHeaders: c.headers,
		RequestQuery:   c.query,
		RequestParams:  c.params,
	}
	if callErr == nil {
		if data, ok := ic.formatter.ReturnValue(result, mode, &ic.settings); ok {
			rec.ResponseData = data
		}
	}

	return rec
}
