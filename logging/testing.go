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

package logging

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

// LogEntry represents a parsed log entry for testing.
type LogEntry struct {
	Level   string
	Message string
	Attrs   map[string]any
}

// syncBuffer is a [bytes.Buffer] safe for concurrent writers.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.buf.Write(p)
}

func (b *syncBuffer) snapshot() []byte {
	b.mu.Lock()
	defer b.mu.Unlock()

	return bytes.Clone(b.buf.Bytes())
}

func (b *syncBuffer) reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.buf.Reset()
}

// ParseJSONLogEntries parses JSON lines into entries. Nested groups stay
// nested maps in Attrs.
func ParseJSONLogEntries(data []byte) ([]LogEntry, error) {
	var entries []LogEntry
	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		var raw map[string]any
		if err := json.Unmarshal(scanner.Bytes(), &raw); err != nil {
			return nil, err
		}

		le := LogEntry{Attrs: make(map[string]any, len(raw))}
		le.Message, _ = raw["msg"].(string)
		le.Level, _ = raw["level"].(string)
		for k, v := range raw {
			if k != "time" && k != "level" && k != "msg" {
				le.Attrs[k] = v
			}
		}
		entries = append(entries, le)
	}

	return entries, scanner.Err()
}

// TestHelper captures the JSON output of a [Logger] at debug level.
//
//	th := logging.NewTestHelper(t)
//	ic := apilog.MustNew(apilog.WithLogger(th.Logger.Logger()), ...)
//	...
//	th.AssertLog(t, "WARN", "api log sink failed", map[string]any{"handler": "OrderHandler#Get"})
type TestHelper struct {
	Logger *Logger
	buf    *syncBuffer
}

// NewTestHelper creates a [TestHelper]. Additional options are applied
// after the defaults.
func NewTestHelper(t *testing.T, opts ...Option) *TestHelper {
	t.Helper()

	buf := &syncBuffer{}
	defaults := []Option{
		WithJSONHandler(),
		WithOutput(buf),
		WithLevel(LevelDebug),
	}
	logger, err := New(append(defaults, opts...)...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = logger.Shutdown(t.Context()) })

	return &TestHelper{Logger: logger, buf: buf}
}

// Logs returns all parsed log entries.
func (th *TestHelper) Logs() ([]LogEntry, error) {
	return ParseJSONLogEntries(th.buf.snapshot())
}

// LastLog returns the most recent log entry.
func (th *TestHelper) LastLog() (*LogEntry, error) {
	entries, err := th.Logs()
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("no log entries found")
	}

	return &entries[len(entries)-1], nil
}

// ContainsLog reports whether any entry has the given message.
func (th *TestHelper) ContainsLog(msg string) bool {
	entries, err := th.Logs()
	if err != nil {
		return false
	}
	for _, e := range entries {
		if e.Message == msg {
			return true
		}
	}

	return false
}

// CountLevel returns the number of entries at the given level.
func (th *TestHelper) CountLevel(level string) int {
	entries, err := th.Logs()
	if err != nil {
		return 0
	}
	count := 0
	for _, e := range entries {
		if e.Level == level {
			count++
		}
	}

	return count
}

// Reset clears the captured output.
func (th *TestHelper) Reset() {
	th.buf.reset()
}

// AssertLog fails t unless an entry with the given level, message and
// attributes exists. Numbers compare by value, everything else by its
// fmt.Sprint form.
func (th *TestHelper) AssertLog(t *testing.T, level, msg string, attrs map[string]any) {
	t.Helper()

	entries, err := th.Logs()
	require.NoError(t, err, "failed to parse logs")

	for _, e := range entries {
		if e.Level == level && e.Message == msg && attrsMatch(e.Attrs, attrs) {
			return
		}
	}

	require.Fail(t, "log entry not found", "level=%s msg=%s attrs=%v", level, msg, attrs)
}

func attrsMatch(actual, expected map[string]any) bool {
	for k, want := range expected {
		got, ok := actual[k]
		if !ok {
			return false
		}
		if f, isFloat := got.(float64); isFloat {
			switch w := want.(type) {
			case int:
				if f != float64(w) {
					return false
				}
				continue
			case int64:
				if f != float64(w) {
					return false
				}
				continue
			}
		}
		if fmt.Sprint(got) != fmt.Sprint(want) {
			return false
		}
	}

	return true
}

// HandlerSpy is a [slog.Handler] that keeps every record it handles.
// Attributes added with With are folded into the stored records; groups
// are ignored.
//
// Example:
//
//	spy := &logging.HandlerSpy{}
//	ic := apilog.MustNew(apilog.WithLogger(slog.New(spy)))
//	...
//	assert.Contains(t, spy.Messages(), "api log publish failed")
type HandlerSpy struct {
	once  sync.Once
	state *spyState
	attrs []slog.Attr
}

type spyState struct {
	mu      sync.Mutex
	records []slog.Record
}

func (hs *HandlerSpy) shared() *spyState {
	hs.once.Do(func() {
		if hs.state == nil {
			hs.state = &spyState{}
		}
	})

	return hs.state
}

// Enabled implements [slog.Handler].
func (hs *HandlerSpy) Enabled(context.Context, slog.Level) bool {
	return true
}

// Handle implements [slog.Handler].
func (hs *HandlerSpy) Handle(_ context.Context, r slog.Record) error {
	if len(hs.attrs) > 0 {
		r = r.Clone()
		r.AddAttrs(hs.attrs...)
	}
	st := hs.shared()
	st.mu.Lock()
	defer st.mu.Unlock()
	st.records = append(st.records, r)

	return nil
}

// WithAttrs implements [slog.Handler].
func (hs *HandlerSpy) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &HandlerSpy{state: hs.shared(), attrs: slices.Concat(hs.attrs, attrs)}
}

// WithGroup implements [slog.Handler].
func (hs *HandlerSpy) WithGroup(string) slog.Handler {
	return hs
}

// Records returns the captured records.
func (hs *HandlerSpy) Records() []slog.Record {
	st := hs.shared()
	st.mu.Lock()
	defer st.mu.Unlock()

	return slices.Clone(st.records)
}

// Messages returns the messages of the captured records in order.
func (hs *HandlerSpy) Messages() []string {
	records := hs.Records()
	msgs := make([]string, len(records))
	for i, r := range records {
		msgs[i] = r.Message
	}

	return msgs
}

// Attr returns the first attribute named key on the first record with
// message msg.
func (hs *HandlerSpy) Attr(msg, key string) (slog.Value, bool) {
	for _, r := range hs.Records() {
		if r.Message != msg {
			continue
		}
		var (
			found slog.Value
			ok    bool
		)
		r.Attrs(func(a slog.Attr) bool {
			if a.Key == key {
				found, ok = a.Value, true
				return false
			}
			return true
		})

		return found, ok
	}

	return slog.Value{}, false
}

// RecordCount returns the number of captured records.
func (hs *HandlerSpy) RecordCount() int {
	st := hs.shared()
	st.mu.Lock()
	defer st.mu.Unlock()

	return len(st.records)
}

// Reset drops the captured records.
func (hs *HandlerSpy) Reset() {
	st := hs.shared()
	st.mu.Lock()
	defer st.mu.Unlock()
	st.records = nil
}
