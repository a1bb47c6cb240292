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

package nethttp

import (
	"bufio"
	"io"
	"net"
	"net/http"

	"github.com/felixge/httpsnoop"
)

// statusRecorder remembers the first final status written to a response.
type statusRecorder struct {
	code     int
	hijacked bool
}

// Status implements [model.Response].
func (s *statusRecorder) Status() int { return s.code }

// finish records the 200 net/http sends for a handler that returned
// without writing.
func (s *statusRecorder) finish() {
	if !s.hijacked {
		s.observe(http.StatusOK)
	}
}

func (s *statusRecorder) observe(code int) {
	if s.code == 0 && code >= http.StatusOK {
		s.code = code
	}
}

// recordStatus wraps w so that the status written through it is visible
// while the handler runs. The wrapper keeps the optional interfaces of w,
// such as [http.Flusher] and [http.Hijacker].
func recordStatus(w http.ResponseWriter) (http.ResponseWriter, *statusRecorder) {
	rec := &statusRecorder{}

	wrapped := httpsnoop.Wrap(w, httpsnoop.Hooks{
		WriteHeader: func(next httpsnoop.WriteHeaderFunc) httpsnoop.WriteHeaderFunc {
			return func(code int) {
				rec.observe(code)
				next(code)
			}
		},
		Write: func(next httpsnoop.WriteFunc) httpsnoop.WriteFunc {
			return func(b []byte) (int, error) {
				rec.observe(http.StatusOK)
				return next(b)
			}
		},
		ReadFrom: func(next httpsnoop.ReadFromFunc) httpsnoop.ReadFromFunc {
			return func(src io.Reader) (int64, error) {
				rec.observe(http.StatusOK)
				return next(src)
			}
		},
		Hijack: func(next httpsnoop.HijackFunc) httpsnoop.HijackFunc {
			return func() (net.Conn, *bufio.ReadWriter, error) {
				conn, rw, err := next()
				if err == nil {
					rec.hijacked = true
				}
				return conn, rw, err
			}
		},
	})

	return wrapped, rec
}
