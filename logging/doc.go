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

// Package logging builds the [slog.Logger] that reports problems of the
// API logging pipeline itself.
//
// The interceptor never lets a broken filter, trigger, formatter or sink
// affect a request. It reports them on this logger instead, together with
// the escalation decisions at debug level:
//
//	logger := logging.MustNew(
//		logging.WithConsoleHandler(),
//		logging.WithServiceName("orders"),
//		logging.WithSamplingWindow(10, 100, time.Minute),
//	)
//	defer logger.Shutdown(context.Background())
//
//	ic := apilog.MustNew(apilog.WithLogger(logger.Logger()))
//
// Values of sensitive keys ("password", "token", "secret", "api_key",
// "authorization" by default) are replaced with [Redacted] at any depth.
// Sampling never drops entries at error level.
package logging
