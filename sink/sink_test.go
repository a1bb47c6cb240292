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

package sink

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vmihailenco/msgpack/v5"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"rivaas.dev/apilog/model"
)

func simpleRecord() *model.SimpleRecord {
	return &model.SimpleRecord{
		LogMode:            model.Simple,
		ClientIP:           "10.0.0.1",
		RequestTimestampMs: 1700000000000,
		URI:                "/orders",
		Handler:            "OrderHandler#List",
		ProcessingTimeMs:   12,
		StatusCode:         200,
	}
}

func detailedRecord() *model.DetailedRecord {
	base := *simpleRecord()
	base.LogMode = model.Detailed
	base.StatusCode = 500
	base.ErrorIndicator = "ERROR:errorString"

	return &model.DetailedRecord{
		SimpleRecord:   base,
		RequestHeaders: map[string]string{"Accept": "application/json"},
		RequestQuery:   "page=2",
		RequestParams:  `{"id":7}`,
	}
}

func TestEncode(t *testing.T) {
	t.Parallel()

	b, err := Encode(detailedRecord(), EncodingJSON)
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal(b, &got))
	assert.Equal(t, "DETAILED", got["logMode"])
	assert.Equal(t, "/orders", got["uri"])
	assert.Equal(t, "page=2", got["requestQuery"])
	assert.NotContains(t, got, "responseData")

	b, err = Encode(detailedRecord(), EncodingMsgPack)
	require.NoError(t, err)
	var decoded model.DetailedRecord
	require.NoError(t, msgpack.Unmarshal(b, &decoded))
	assert.Equal(t, *detailedRecord(), decoded)

	_, err = Encode(simpleRecord(), Encoding("xml"))
	require.ErrorIs(t, err, ErrUnknownEncoding)
}

func TestMulti(t *testing.T) {
	t.Parallel()

	first, last := NewMemory(), NewMemory()
	boom := errors.New("down")
	m := Multi{first, Func(func(context.Context, model.Record) error { return boom }), last}

	err := m.Publish(t.Context(), simpleRecord())

	require.ErrorIs(t, err, boom)
	assert.Equal(t, 1, first.Len())
	assert.Equal(t, 1, last.Len(), "later sinks still receive the record")
}

func TestMemory(t *testing.T) {
	t.Parallel()

	m := NewMemory()
	assert.Nil(t, m.Last())

	require.NoError(t, m.Publish(t.Context(), simpleRecord()))
	require.NoError(t, m.Publish(t.Context(), detailedRecord()))

	assert.Equal(t, 2, m.Len())
	assert.Equal(t, model.Detailed, m.Last().Mode())
	assert.Len(t, m.Records(), 2)

	m.Reset()
	assert.Zero(t, m.Len())
}

func TestSlog(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	s := NewSlog(slog.New(slog.NewJSONHandler(&buf, nil)))

	require.NoError(t, s.Publish(t.Context(), simpleRecord()))
	require.NoError(t, s.WithMessage("access").Publish(t.Context(), detailedRecord()))

	sc := bufio.NewScanner(&buf)
	var entries []map[string]any
	for sc.Scan() {
		var e map[string]any
		require.NoError(t, json.Unmarshal(sc.Bytes(), &e))
		entries = append(entries, e)
	}
	require.Len(t, entries, 2)

	assert.Equal(t, "INFO", entries[0]["level"])
	assert.Equal(t, DefaultMessage, entries[0]["msg"])
	rec, ok := entries[0]["apiLog"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "OrderHandler#List", rec["handler"])

	assert.Equal(t, "ERROR", entries[1]["level"])
	assert.Equal(t, "access", entries[1]["msg"])
}

func TestZap(t *testing.T) {
	t.Parallel()

	core, logs := observer.New(zapcore.InfoLevel)
	s := NewZap(zap.New(core))

	require.NoError(t, s.Publish(t.Context(), simpleRecord()))
	require.NoError(t, s.Publish(t.Context(), detailedRecord()))

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.Equal(t, zapcore.InfoLevel, entries[0].Level)
	assert.Equal(t, "SIMPLE", entries[0].ContextMap()["logMode"])
	assert.Equal(t, zapcore.ErrorLevel, entries[1].Level)
	assert.Equal(t, DefaultMessage, entries[1].Message)
}

func TestZerolog(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	s := NewZerolog(zerolog.New(&buf))

	require.NoError(t, s.Publish(t.Context(), detailedRecord()))

	var e map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &e))
	assert.Equal(t, "error", e["level"])
	assert.Equal(t, "DETAILED", e["logMode"])
	rec, ok := e["apiLog"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "page=2", rec["requestQuery"])
}

func TestWriterJSONLines(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	w := NewWriter(&buf, "")

	require.NoError(t, w.Publish(t.Context(), simpleRecord()))
	require.NoError(t, w.Publish(t.Context(), detailedRecord()))

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.Len(t, lines, 2)
	assert.Contains(t, string(lines[1]), `"logMode":"DETAILED"`)

	require.NoError(t, w.Close())
	require.ErrorIs(t, w.Publish(t.Context(), simpleRecord()), ErrClosed)
}

func TestWriterMsgPackStream(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	w := NewWriter(&buf, EncodingMsgPack)
	require.NoError(t, w.Publish(t.Context(), simpleRecord()))
	require.NoError(t, w.Publish(t.Context(), simpleRecord()))

	dec := msgpack.NewDecoder(&buf)
	for range 2 {
		var rec model.SimpleRecord
		require.NoError(t, dec.Decode(&rec))
		assert.Equal(t, "/orders", rec.URI)
	}
}

func TestRotatingFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "api.jsonl")
	w := NewRotatingFile(FileConfig{Filename: path, MaxSizeMB: 1})

	require.NoError(t, w.Publish(t.Context(), simpleRecord()))
	require.NoError(t, w.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"handler":"OrderHandler#List"`)
}
