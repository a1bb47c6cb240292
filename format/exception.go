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

package format

import (
	"errors"
	"fmt"
	"strings"

	"rivaas.dev/apilog/internal/typename"
	"rivaas.dev/apilog/model"
)

// Exception renders err as "<type>: <message>". Stack lines follow when the
// mode is detailed or the stack policy is enabled.
//
// Stack lines come from the "%+v" form of the error (first line dropped).
// When a line starts with the configured package prefix, at most two more
// lines are kept. Wrapped causes are listed as "caused by:" lines. The
// total never exceeds the configured maximum.
func (d *Default) Exception(err error, mode model.Mode, s *model.Settings) string {
	if err == nil {
		return ""
	}

	header := describe(err)
	if mode != model.Detailed && !s.ExceptionStack.Enabled {
		return header
	}

	lines := stackLines(err, s.ExceptionStack)
	if len(lines) == 0 {
		return header
	}

	return header + "\n" + strings.Join(lines, "\n")
}

func describe(err error) string {
	return typename.Qualified(err) + ": " + err.Error()
}

func stackLines(err error, policy model.ExceptionStackSettings) []string {
	maxLines := policy.MaxLines
	if maxLines <= 0 {
		return nil
	}

	var frames []string
	for i, line := range strings.Split(fmt.Sprintf("%+v", err), "\n") {
		if i == 0 || strings.TrimSpace(line) == "" {
			continue
		}
		frames = append(frames, line)
	}

	limit := min(len(frames), maxLines)
	out := make([]string, 0, limit)
	for i := 0; i < limit; i++ {
		out = append(out, frames[i])
		if policy.PackagePrefix != "" && strings.HasPrefix(strings.TrimSpace(frames[i]), policy.PackagePrefix) {
			limit = min(limit, i+3)
		}
	}

	for cause := errors.Unwrap(err); cause != nil && len(out) < maxLines; cause = errors.Unwrap(cause) {
		out = append(out, "caused by: "+describe(cause))
	}

	return out
}
