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
	"io"
	"net/http"

	"rivaas.dev/apilog/internal/typename"
	"rivaas.dev/apilog/model"
)

// ReturnValue renders a handler result. Results that carry a status and a
// body are rendered by their body; readers and raw responses are never
// consumed.
func (d *Default) ReturnValue(v any, mode model.Mode, s *model.Settings) (string, bool) {
	if mode != model.Detailed || isNil(v) {
		return "", false
	}
	if s.MaxPayloadLength == 0 {
		return Omitted, true
	}

	body := v
	switch r := v.(type) {
	case *http.Response:
		return StreamBody, true
	case model.BodyCarrier:
		body = r.Body()
		if isNil(body) {
			return EmptyBody, true
		}
	}

	switch body.(type) {
	case io.Reader:
		return StreamBody, true
	case model.View, *model.View:
		return "[excluded type: " + typename.Simple(body) + "]", true
	}

	out, err := d.marshal(body)
	if err != nil {
		return "[return value serialization error: " + err.Error() + "]", true
	}

	return Truncate(string(out), s.MaxPayloadLength), true
}
