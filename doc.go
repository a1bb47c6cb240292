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

// Package apilog logs API calls at two levels of detail.
//
// Every intercepted call produces at most one record. A record starts in
// the configured mode (usually SIMPLE: who called what, how long it took,
// how it ended) and is escalated to DETAILED (headers, query, arguments,
// response body) when something interesting happens. Filters can drop a
// call from logging altogether.
//
// # Decision pipeline
//
// For each call the [Interceptor]:
//
//  1. escalates when the request path matches a force_detailed_log_patterns
//     entry
//  2. otherwise evaluates the triggers before the handler runs
//  3. otherwise asks the pre-filters whether to skip the call
//  4. gathers request metadata and runs the handler
//  5. otherwise evaluates the triggers again, now with the outcome
//  6. otherwise asks the post-filters whether to drop the record
//  7. builds a SIMPLE or DETAILED record and hands it to the sink
//
// Once a call is escalated no further trigger or filter runs for it.
//
// # Failure isolation
//
// Logging never changes what the caller sees. Handler results and errors
// pass through unchanged and handler panics are re-raised after the record
// is published. A filter, trigger, formatter or sink that fails or panics
// is reported on the side-channel logger given by [WithLogger].
//
// # Integration
//
// The adapter packages plug the interceptor into net/http, chi, echo and
// gin. [Func] wraps plain typed functions. Settings are usually loaded with
// the config package:
//
//	settings, err := config.New(config.WithFile("apilog.yaml"), config.WithEnv("APILOG_")).Load(ctx)
//	if err != nil {
//		log.Fatal(err)
//	}
//	ic := apilog.MustNew(apilog.WithSettings(*settings))
//	http.Handle("/", nethttp.Middleware(ic)(mux))
package apilog
