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
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/vmihailenco/msgpack/v5"

	"rivaas.dev/apilog/model"
)

var (
	// ErrClosed is returned by sinks that were closed.
	ErrClosed = errors.New("sink is closed")
	// ErrUnknownEncoding is returned for an unsupported [Encoding].
	ErrUnknownEncoding = errors.New("unknown record encoding")
)

// Sink publishes finished records. Implementations must be safe for
// concurrent use. Publish runs on the request path.
type Sink interface {
	Publish(ctx context.Context, rec model.Record) error
}

// Func adapts a function into a [Sink].
type Func func(ctx context.Context, rec model.Record) error

// Publish implements [Sink].
func (f Func) Publish(ctx context.Context, rec model.Record) error { return f(ctx, rec) }

// Encoding selects the wire form of a record.
type Encoding string

const (
	// EncodingJSON is the default.
	EncodingJSON    Encoding = "json"
	EncodingMsgPack Encoding = "msgpack"
)

// ContentType returns the MIME type of the encoding.
func (e Encoding) ContentType() string {
	if e == EncodingMsgPack {
		return "application/msgpack"
	}

	return "application/json"
}

// Encode serializes rec. An empty encoding means JSON.
func Encode(rec model.Record, enc Encoding) ([]byte, error) {
	switch enc {
	case "", EncodingJSON:
		return json.Marshal(rec)
	case EncodingMsgPack:
		return msgpack.Marshal(rec)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownEncoding, enc)
	}
}

// Multi publishes to every sink in order. It continues past failures and
// returns them joined.
type Multi []Sink

// Publish implements [Sink].
func (m Multi) Publish(ctx context.Context, rec model.Record) error {
	var errs []error
	for _, s := range m {
		if err := s.Publish(ctx, rec); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}

// Memory keeps every record it receives. It is meant for tests.
type Memory struct {
	mu      sync.Mutex
	records []model.Record
}

// NewMemory returns an empty [Memory] sink.
func NewMemory() *Memory {
	return &Memory{}
}

// Publish implements [Sink].
func (m *Memory) Publish(_ context.Context, rec model.Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records = append(m.records, rec)

	return nil
}

// Records returns a copy of the received records.
func (m *Memory) Records() []model.Record {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]model.Record, len(m.records))
	copy(out, m.records)

	return out
}

// Len returns the number of received records.
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	return len(m.records)
}

// Last returns the most recent record, or nil.
func (m *Memory) Last() model.Record {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.records) == 0 {
		return nil
	}

	return m.records[len(m.records)-1]
}

// Reset drops all records.
func (m *Memory) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records = nil
}
