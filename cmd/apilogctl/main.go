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

// Command apilogctl checks and prints apilog settings.
//
// It loads settings the same way a service does, from files, environment
// variables and optionally Consul, and reports what the interceptor would
// run with:
//
//	apilogctl validate -f apilog.yaml
//	apilogctl dump -f apilog.yaml -f override.json --format toml
//	APILOG_LOG_MODE=DETAILED apilogctl dump
package main

import (
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
