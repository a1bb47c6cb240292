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

package codec

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
)

// TypeEnvVar identifies the environment variable codec.
const TypeEnvVar Type = "env_var"

func init() {
	RegisterDecoder(TypeEnvVar, EnvVarCodec{})
}

// ErrEnvEncode is returned when encoding to environment variables.
var ErrEnvEncode = errors.New("encoding to environment variables is not supported")

// EnvVarCodec decodes KEY=value lines into a nested map.
//
// Without Keys every underscore starts a new level: SERVER_PORT becomes
// server.port. Keys describes the known key tree instead: a nested map
// whose map values are sections and whose other values are leaves. Names
// are then matched greedily against it, so with a "log_mode" leaf LOG_MODE
// stays log_mode and FILTERS_ERRORS_ONLY becomes filters.errors_only.
// Names that match no known key keep their remaining underscores.
type EnvVarCodec struct {
	Keys map[string]any
}

// Encode implements [Encoder]. It always fails.
func (EnvVarCodec) Encode(any) ([]byte, error) {
	return nil, ErrEnvEncode
}

// Decode implements [Decoder]. v must be a *map[string]any.
func (c EnvVarCodec) Decode(data []byte, v any) error {
	ptr, ok := v.(*map[string]any)
	if !ok {
		return fmt.Errorf("EnvVarCodec.Decode: expected *map[string]any, got %T", v)
	}

	conf := make(map[string]any)
	for _, line := range bytes.Split(data, []byte("\n")) {
		key, value, found := strings.Cut(string(line), "=")
		if !found {
			continue
		}

		var parts []string
		for _, p := range strings.Split(strings.ToLower(strings.TrimSpace(key)), "_") {
			if p != "" {
				parts = append(parts, p)
			}
		}
		if len(parts) == 0 {
			continue
		}

		path := c.path(parts)
		current := conf
		for _, section := range path[:len(path)-1] {
			next, isMap := current[section].(map[string]any)
			if !isMap {
				next = make(map[string]any)
				current[section] = next
			}
			current = next
		}
		current[path[len(path)-1]] = strings.TrimSpace(value)
	}

	*ptr = conf

	return nil
}

// path groups parts into key path segments.
func (c EnvVarCodec) path(parts []string) []string {
	if c.Keys == nil {
		return parts
	}

	var path []string
	level := c.Keys
	for i := 0; i < len(parts); {
		matched := false
		for j := len(parts); j > i; j-- {
			name := strings.Join(parts[i:j], "_")
			node, ok := level[name]
			if !ok {
				continue
			}
			section, isSection := node.(map[string]any)
			if isSection == (j == len(parts)) {
				// A section needs more parts; a leaf must use them all.
				continue
			}
			path = append(path, name)
			level = section
			i = j
			matched = true
			break
		}
		if !matched {
			return append(path, strings.Join(parts[i:], "_"))
		}
	}

	return path
}
