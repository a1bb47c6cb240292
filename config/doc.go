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

// Package config loads apilog settings.
//
// Settings come from files, in-memory documents, environment variables and
// Consul. Sources are merged in the order they are given, later sources
// winning, and all keys are case-insensitive.
//
// # Quick Start
//
//	loader := config.MustNew(
//	    config.WithFile("apilog.yaml"),
//	    config.WithEnv("APILOG_"),
//	)
//	settings, err := loader.Load(ctx)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// A file using every section:
//
//	enabled: true
//	log_mode: SIMPLE
//	max_payload_length: 2048
//	sensitive:
//	  arg_names: [password, pin]
//	  request_headers: [Authorization]
//	triggers: [exception, statusCode, header]
//	detailed_log_on_status_codes: [400, 404, 500]
//	force_detailed_log_patterns: ["/admin/**"]
//	filters:
//	  exclude_uri_patterns: ["/healthz"]
//	  min_processing_time: 5ms
//
// # Environment Variables
//
// Variable names lose the prefix and are matched against the known keys,
// longest name first, so underscores inside key names survive:
//
//	APILOG_LOG_MODE=DETAILED                 -> log_mode
//	APILOG_SENSITIVE_ARG_NAMES=password,pin  -> sensitive.arg_names
//	APILOG_FILTERS_EXCLUDE_HEADERS=X-Probe=1 -> filters.exclude_headers
//
// Lists are comma-separated and maps are written as key=value pairs.
//
// # Validation
//
// Loading fails on keys the settings do not have. The raw merged values
// can additionally be checked with [WithJSONSchema] and [WithValidator].
// The decoded settings are always checked against [SettingsSchema] and
// [model.Settings.Validate].
//
// # Dumping
//
// [Loader.Dump] writes the effective settings through the configured
// dumpers:
//
//	loader := config.MustNew(
//	    config.WithFile("apilog.yaml"),
//	    config.WithFileDumper("effective.yaml"),
//	)
//	_, _ = loader.Load(ctx)
//	err := loader.Dump(ctx)
package config
