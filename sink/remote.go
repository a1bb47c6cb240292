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
	"fmt"

	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"

	"rivaas.dev/apilog/model"
)

// Message header and stream field names used by the remote sinks.
const (
	HeaderMode        = "Apilog-Mode"
	HeaderContentType = "Content-Type"
	FieldMode         = "mode"
	FieldRecord       = "record"
)

// RedisStream appends each record to a Redis stream as a "mode" and a
// "record" field.
type RedisStream struct {
	client redis.Cmdable
	stream string
	maxLen int64
	enc    Encoding
}

// RedisOption configures a [RedisStream].
type RedisOption func(*RedisStream)

// WithMaxLen caps the stream at about n entries. Zero disables trimming.
func WithMaxLen(n int64) RedisOption {
	return func(r *RedisStream) { r.maxLen = n }
}

// WithRedisEncoding sets the record encoding. JSON is the default.
func WithRedisEncoding(enc Encoding) RedisOption {
	return func(r *RedisStream) { r.enc = enc }
}

// NewRedisStream returns a sink adding to stream through client.
func NewRedisStream(client redis.Cmdable, stream string, opts ...RedisOption) *RedisStream {
	r := &RedisStream{client: client, stream: stream, enc: EncodingJSON}
	for _, opt := range opts {
		opt(r)
	}

	return r
}

// Publish implements [Sink].
func (r *RedisStream) Publish(ctx context.Context, rec model.Record) error {
	b, err := Encode(rec, r.enc)
	if err != nil {
		return err
	}

	args := &redis.XAddArgs{
		Stream: r.stream,
		Values: map[string]any{
			FieldMode:   string(rec.Mode()),
			FieldRecord: b,
		},
	}
	if r.maxLen > 0 {
		args.MaxLen = r.maxLen
		args.Approx = true
	}
	if err := r.client.XAdd(ctx, args).Err(); err != nil {
		return fmt.Errorf("xadd %s: %w", r.stream, err)
	}

	return nil
}

// NATS publishes each record as one message. The mode travels in the
// [HeaderMode] header.
type NATS struct {
	conn    *nats.Conn
	subject string
	enc     Encoding
}

// NewNATS returns a sink publishing on subject. An empty encoding means
// JSON.
func NewNATS(conn *nats.Conn, subject string, enc Encoding) *NATS {
	if enc == "" {
		enc = EncodingJSON
	}

	return &NATS{conn: conn, subject: subject, enc: enc}
}

// Publish implements [Sink].
func (n *NATS) Publish(_ context.Context, rec model.Record) error {
	b, err := Encode(rec, n.enc)
	if err != nil {
		return err
	}

	msg := nats.NewMsg(n.subject)
	msg.Header.Set(HeaderMode, string(rec.Mode()))
	msg.Header.Set(HeaderContentType, n.enc.ContentType())
	msg.Data = b
	if err := n.conn.PublishMsg(msg); err != nil {
		return fmt.Errorf("publish %s: %w", n.subject, err)
	}

	return nil
}
