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
	"net"
	"net/url"
	"strings"

	"rivaas.dev/apilog/model"
)

// forwardedHeaders are consulted in order before the remote address.
var forwardedHeaders = []string{
	"X-Forwarded-For",
	"Proxy-Client-IP",
	"WL-Proxy-Client-IP",
	"HTTP_CLIENT_IP",
	"HTTP_X_FORWARDED_FOR",
}

// Queries returns the URL-decoded query string. A query that fails to
// decode is returned raw with a note.
func (d *Default) Queries(req model.Request, s *model.Settings) (string, bool) {
	if req == nil {
		return "", false
	}
	raw := req.RawQuery()
	if raw == "" {
		return "", false
	}
	if s.MaxPayloadLength == 0 {
		return Omitted, true
	}

	decoded, err := url.QueryUnescape(raw)
	if err != nil {
		return Truncate(raw, s.MaxPayloadLength) + " [query decode error: " + err.Error() + "]", true
	}

	return Truncate(decoded, s.MaxPayloadLength), true
}

// Headers returns every request header, multiple values joined by ", ".
// Sensitive header names keep their name with a masked value.
func (d *Default) Headers(req model.Request, s *model.Settings) map[string]string {
	if req == nil {
		return nil
	}

	names := req.HeaderNames()
	out := make(map[string]string, len(names))
	for _, name := range names {
		if s.SensitiveHeader(name) {
			out[name] = s.Sensitive.Mask
			continue
		}
		out[name] = strings.Join(req.Header(name), ", ")
	}

	return out
}

// ClientIP returns the first non-blank forwarding header that is not
// "unknown", taken whole, or the host of the remote address.
func (d *Default) ClientIP(req model.Request) string {
	if req == nil {
		return UnknownIP
	}

	for _, name := range forwardedHeaders {
		v := strings.TrimSpace(model.FirstHeader(req, name))
		if v != "" && !strings.EqualFold(v, UnknownIP) {
			return v
		}
	}

	addr := req.RemoteAddr()
	if addr == "" {
		return UnknownIP
	}
	if host, _, err := net.SplitHostPort(addr); err == nil {
		return host
	}

	return addr
}
