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

// Package guard isolates extension points. Every call goes through a
// boundary that turns errors and panics into a logged negative outcome.
package guard

import (
	"context"
	"fmt"
	"log/slog"
)

// Predicate evaluates fn. An error or a panic is logged at WARN and the
// result is false, so a broken filter never skips and a broken trigger
// never escalates.
func Predicate(ctx context.Context, logger *slog.Logger, kind, name string, fn func() (bool, error)) (verdict bool) {
	defer func() {
		if r := recover(); r != nil {
			log(ctx, logger, slog.LevelWarn, kind+" panicked", name, fmt.Errorf("panic: %v", r))
			verdict = false
		}
	}()

	ok, err := fn()
	if err != nil {
		log(ctx, logger, slog.LevelWarn, kind+" failed", name, err)
		return false
	}

	return ok
}

// Do runs fn and reports whether it completed. Failures are logged at the
// given level under msg.
func Do(ctx context.Context, logger *slog.Logger, level slog.Level, msg string, fn func() error) (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			log(ctx, logger, level, msg, "", fmt.Errorf("panic: %v", r))
			ok = false
		}
	}()

	if err := fn(); err != nil {
		log(ctx, logger, level, msg, "", err)
		return false
	}

	return true
}

func log(ctx context.Context, logger *slog.Logger, level slog.Level, msg, name string, err error) {
	if logger == nil {
		logger = slog.Default()
	}
	if name != "" {
		logger.Log(ctx, level, msg, "name", name, "error", err)
		return
	}
	logger.Log(ctx, level, msg, "error", err)
}
