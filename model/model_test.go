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

package model

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMode(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in      string
		want    Mode
		wantErr bool
	}{
		{in: "SIMPLE", want: Simple},
		{in: "detailed", want: Detailed},
		{in: " Detailed ", want: Detailed},
		{in: "verbose", wantErr: true},
		{in: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()
			got, err := ParseMode(tt.in)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrInvalidMode)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestScope_EscalateOnly(t *testing.T) {
	t.Parallel()

	s := NewScope(Simple)
	assert.Equal(t, Simple, s.Mode())
	assert.False(t, s.Decided())

	s.Escalate()
	assert.Equal(t, Detailed, s.Mode())
	assert.True(t, s.Decided())

	s.Escalate()
	assert.Equal(t, Detailed, s.Mode())
}

func TestScope_DetailedDefaultIsNotDecided(t *testing.T) {
	t.Parallel()

	s := NewScope(Detailed)
	assert.Equal(t, Detailed, s.Mode())
	assert.False(t, s.Decided())
}

func TestScope_InvalidInitialModeFallsBackToSimple(t *testing.T) {
	t.Parallel()

	assert.Equal(t, Simple, NewScope("").Mode())
}

func TestScope_ResultSetOnce(t *testing.T) {
	t.Parallel()

	s := NewScope(Simple)
	s.SetResult("first")
	s.SetResult("second")
	assert.Equal(t, "first", s.Result())
}

func TestScope_Release(t *testing.T) {
	t.Parallel()

	s := NewScope(Simple)
	s.SetResult(42)
	s.Release()

	assert.True(t, s.Released())
	assert.Nil(t, s.Result())

	s.Escalate()
	assert.Equal(t, Simple, s.Mode(), "released scope must not change")

	s.Release()
}

func TestScope_Context(t *testing.T) {
	t.Parallel()

	_, ok := ScopeFrom(context.Background())
	assert.False(t, ok)

	s := NewScope(Simple)
	ctx := WithScope(context.Background(), s)

	got, ok := ScopeFrom(ctx)
	require.True(t, ok)
	assert.Same(t, s, got)
}

func TestScope_ConcurrentRequestsAreIsolated(t *testing.T) {
	t.Parallel()

	const n = 50
	done := make(chan Mode, n)
	for i := range n {
		go func(i int) {
			s := NewScope(Simple)
			ctx := WithScope(context.Background(), s)
			if i%2 == 0 {
				got, _ := ScopeFrom(ctx)
				got.Escalate()
			}
			done <- s.Mode()
		}(i)
	}

	detailed := 0
	for range n {
		if <-done == Detailed {
			detailed++
		}
	}
	assert.Equal(t, n/2, detailed)
}

func TestInvocation_HandlerID(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "UserHandler#Get", (&Invocation{Target: "UserHandler", Operation: "Get"}).HandlerID())
	assert.Equal(t, "Get", (&Invocation{Operation: "Get"}).HandlerID())
	assert.Equal(t, "UserHandler", (&Invocation{Target: "UserHandler"}).HandlerID())
}

func TestDefaultSettings(t *testing.T) {
	t.Parallel()

	s := DefaultSettings()
	require.NoError(t, s.Validate())

	assert.False(t, s.Enabled)
	assert.Equal(t, Simple, s.LogMode)
	assert.Equal(t, 1024, s.MaxPayloadLength)
	assert.Equal(t, []string{"password"}, s.Sensitive.ArgNames)
	assert.Equal(t, []string{"Authorization", "Token"}, s.Sensitive.RequestHeaders)
	assert.Equal(t, "****", s.Sensitive.Mask)
	assert.False(t, s.ExceptionStack.Enabled)
	assert.Equal(t, 20, s.ExceptionStack.MaxLines)
	assert.Equal(t, []string{"exception", "statusCode"}, s.Triggers)
	assert.Equal(t, "X-Log-Mode", s.HeaderTrigger.HeaderName)
	assert.Equal(t, "DETAILED", s.HeaderTrigger.DetailedValue)
	assert.Equal(t, []int{400, 401, 403, 404, 405, 500, 501, 502, 503, 504}, s.DetailedLogOnStatusCodes)
	assert.Empty(t, s.ForceDetailedLogPatterns)
	assert.Equal(t, []string{"application/octet-stream", "multipart/form-data"}, s.ExcludedArgumentOnContentTypes)
}

func TestSettings_Validate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		mutate func(*Settings)
	}{
		{name: "bad mode", mutate: func(s *Settings) { s.LogMode = "VERBOSE" }},
		{name: "payload below -1", mutate: func(s *Settings) { s.MaxPayloadLength = -2 }},
		{name: "negative max lines", mutate: func(s *Settings) { s.ExceptionStack.MaxLines = -1 }},
		{name: "status out of range", mutate: func(s *Settings) { s.DetailedLogOnStatusCodes = []int{99} }},
		{name: "empty trigger name", mutate: func(s *Settings) { s.Triggers = []string{""} }},
		{name: "empty pattern", mutate: func(s *Settings) { s.ForceDetailedLogPatterns = []string{""} }},
		{name: "max below min", mutate: func(s *Settings) {
			s.Filters.MinProcessingTime = time.Second
			s.Filters.MaxProcessingTime = time.Millisecond
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			s := DefaultSettings()
			tt.mutate(&s)
			assert.ErrorIs(t, s.Validate(), ErrInvalidSettings)
		})
	}
}

func TestSettings_CloneIsDeep(t *testing.T) {
	t.Parallel()

	s := DefaultSettings()
	s.Filters.ExcludeHeaders = map[string]string{"X-Probe": "1"}
	c := s.Clone()

	c.Triggers[0] = "changed"
	c.Sensitive.ArgNames[0] = "changed"
	c.Filters.ExcludeHeaders["X-Probe"] = "2"

	assert.Equal(t, "exception", s.Triggers[0])
	assert.Equal(t, "password", s.Sensitive.ArgNames[0])
	assert.Equal(t, "1", s.Filters.ExcludeHeaders["X-Probe"])
}

func TestSettings_Lookups(t *testing.T) {
	t.Parallel()

	s := DefaultSettings()

	assert.True(t, s.TriggerEnabled("exception"))
	assert.False(t, s.TriggerEnabled("header"))
	assert.True(t, s.SensitiveArg("password"))
	assert.False(t, s.SensitiveArg("Password"), "argument names match exactly")
	assert.True(t, s.SensitiveHeader("authorization"))
	assert.True(t, s.SensitiveHeader("TOKEN"))
	assert.True(t, s.DetailedOnStatus(403))
	assert.False(t, s.DetailedOnStatus(200))
	assert.True(t, s.ExcludedContentType("Multipart/Form-Data; boundary=x"))
	assert.True(t, s.ExcludedContentType("application/octet-stream"))
	assert.False(t, s.ExcludedContentType("application/json"))
	assert.False(t, s.ExcludedContentType(""))
}

func TestHTTPRequest(t *testing.T) {
	t.Parallel()

	assert.Nil(t, NewHTTPRequest(nil))

	r := httptest.NewRequest(http.MethodPost, "/api/users/7?name=a%20b&x=1", nil)
	r.Header.Set("Content-Type", "application/json")
	r.Header.Add("X-Multi", "a")
	r.Header.Add("X-Multi", "b")
	r.Header["lowercase-key"] = []string{"v"}
	r.RemoteAddr = "10.0.0.1:1234"

	req := NewHTTPRequest(r)
	assert.Equal(t, http.MethodPost, req.Method())
	assert.Equal(t, "/api/users/7", req.URI())
	assert.Equal(t, "name=a%20b&x=1", req.RawQuery())
	assert.Equal(t, []string{"a", "b"}, req.Header("x-multi"))
	assert.Equal(t, []string{"v"}, req.Header("Lowercase-Key"))
	assert.Equal(t, "application/json", req.ContentType())
	assert.Equal(t, "10.0.0.1:1234", req.RemoteAddr())
	assert.Equal(t, []string{"Content-Type", "X-Multi", "lowercase-key"}, req.HeaderNames())
	assert.Equal(t, "a", FirstHeader(req, "X-Multi"))
	assert.Empty(t, FirstHeader(nil, "X-Multi"))
}

func TestResolveStatus(t *testing.T) {
	t.Parallel()

	live := ResponseFunc(func() int { return 202 })
	unknown := ResponseFunc(func() int { return 0 })

	tests := []struct {
		name   string
		result any
		live   Response
		want   int
		ok     bool
	}{
		{name: "reply wins", result: NewReply(403, "no"), live: live, want: 403, ok: true},
		{name: "reply pointer", result: &Reply[string]{Status: 418}, live: live, want: 418, ok: true},
		{name: "raw http response", result: &http.Response{StatusCode: 502}, live: live, want: 502, ok: true},
		{name: "raw response object", result: ResponseFunc(func() int { return 201 }), live: live, want: 201, ok: true},
		{name: "live response", result: "plain", live: live, want: 202, ok: true},
		{name: "live unknown", result: nil, live: unknown, ok: false},
		{name: "nothing", result: nil, live: nil, ok: false},
		{name: "nil reply pointer falls back to live", result: (*Reply[string])(nil), live: live, want: 202, ok: true},
		{name: "nil response object falls back to live", result: ResponseFunc(nil), live: live, want: 202, ok: true},
		{name: "nil live response func", result: nil, live: ResponseFunc(nil), ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, ok := ResolveStatus(tt.result, tt.live)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCarriedStatus_NilPointer(t *testing.T) {
	t.Parallel()

	var reply *Reply[string]
	require.NotPanics(t, func() {
		code, ok := CarriedStatus(reply)
		assert.False(t, ok)
		assert.Zero(t, code)
	})

	code, ok := CarriedStatus(&Reply[string]{Status: 204})
	assert.True(t, ok)
	assert.Equal(t, 204, code)
}

func TestErrorIndicator(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		failed  bool
		errType string
		status  int
		want    string
	}{
		{name: "error without status", failed: true, errType: "BoomError", want: "ERROR:BoomError"},
		{name: "error with 400", failed: true, errType: "BoomError", status: 400, want: "WARN:BoomError"},
		{name: "error with 500", failed: true, errType: "BoomError", status: 500, want: "ERROR:BoomError"},
		{name: "error with 200", failed: true, errType: "BoomError", status: 200, want: "WARN:BoomError"},
		{name: "403", status: 403, want: "WARN_HTTP_STATUS_403"},
		{name: "503", status: 503, want: "ERROR_HTTP_STATUS_503"},
		{name: "200", status: 200, want: ""},
		{name: "unknown", status: 0, want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, ErrorIndicator(tt.failed, tt.errType, tt.status))
		})
	}
}

func TestDetailedRecord_Simplify(t *testing.T) {
	t.Parallel()

	d := &DetailedRecord{
		SimpleRecord:   SimpleRecord{LogMode: Detailed, URI: "/x", StatusCode: 200},
		RequestHeaders: map[string]string{"A": "b"},
		ResponseData:   "{}",
	}

	s := d.Simplify()
	assert.Equal(t, Simple, s.LogMode)
	assert.Equal(t, "/x", s.URI)
	assert.Equal(t, Detailed, d.LogMode, "original is untouched")
	assert.Same(t, &d.SimpleRecord, d.Base())
	assert.Equal(t, Detailed, Record(d).Mode())
	assert.Equal(t, Simple, Record(s).Mode())
}

func TestPanicError(t *testing.T) {
	t.Parallel()

	cause := errors.New("boom")
	pe := NewPanicError(cause, []byte("goroutine 1 [running]:\nmain.f()\n\t/x.go:1\n"))

	assert.Equal(t, "panic: boom", pe.Error())
	assert.ErrorIs(t, pe, cause)
	assert.Equal(t, "panic: boom\ngoroutine 1 [running]:\nmain.f()\n\t/x.go:1", fmt.Sprintf("%+v", pe))
	assert.Equal(t, "panic: boom", fmt.Sprintf("%v", pe))

	assert.NoError(t, NewPanicError("text", nil).Unwrap())
}
