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

// Package nethttp plugs an [apilog.Interceptor] into net/http.
//
// [Middleware] logs every request that reaches a handler. When the wrapped
// handler is an [http.ServeMux], the record is named after the route's
// handler and the route's path wildcards become arguments:
//
//	mux := http.NewServeMux()
//	mux.HandleFunc("GET /orders/{id}", orders.Get)
//	http.ListenAndServe(":8080", nethttp.Middleware(ic)(mux))
//
// [Wrap] adapts handlers that return an error. The error is recorded and
// answered with an RFC 9457 problem document unless the handler already
// wrote a response.
package nethttp
