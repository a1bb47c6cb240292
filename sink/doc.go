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

// Package sink provides destinations for finished log records.
//
// The interceptor hands exactly one record to its sink per logged call and
// waits for Publish to return, so a slow sink delays the response. Wrap
// remote sinks in a [Batch] to take them off the request path.
//
// Available sinks:
//
//   - [Slog]: one structured log entry per record (the default)
//   - [Writer]: newline-delimited JSON or a MessagePack stream, optionally
//     to a rotating file ([NewRotatingFile])
//   - [Zap] and [Zerolog]: for services already built on those loggers
//   - [RedisStream]: XADD to a Redis stream
//   - [NATS]: one message per record with the mode in a header
//   - [Multi], [Batch], [Func] and [Memory] compose or capture records
//
// Records with an error indicator are logged at ERROR by the logger-backed
// sinks, all others at INFO.
//
// Example:
//
//	file := sink.NewRotatingFile(sink.FileConfig{Filename: "/var/log/api.jsonl", MaxSizeMB: 100})
//	defer file.Close()
//
//	batch := sink.NewBatch(sink.Multi{sink.NewSlog(logger), file}, sink.WithBatchSize(200))
//	defer batch.Close(context.Background())
package sink
