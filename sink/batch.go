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
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"rivaas.dev/apilog/model"
)

// Batch defaults.
const (
	DefaultBatchSize     = 100
	DefaultFlushInterval = time.Second
)

// BatchOption configures a [Batch].
type BatchOption func(*Batch)

// WithBatchSize sets the number of records that triggers a flush.
func WithBatchSize(n int) BatchOption {
	return func(b *Batch) {
		if n > 0 {
			b.size = n
		}
	}
}

// WithFlushInterval sets the maximum time a record waits in the buffer.
func WithFlushInterval(d time.Duration) BatchOption {
	return func(b *Batch) {
		if d > 0 {
			b.interval = d
		}
	}
}

// WithBatchClock replaces the clock driving the flush ticker.
func WithBatchClock(c clockwork.Clock) BatchOption {
	return func(b *Batch) {
		if c != nil {
			b.clock = c
		}
	}
}

// WithBatchLogger sets where failed background flushes are reported.
func WithBatchLogger(l *slog.Logger) BatchOption {
	return func(b *Batch) {
		if l != nil {
			b.logger = l
		}
	}
}

// Batch buffers records and hands them to the next sink when the buffer is
// full or the flush interval elapses, whichever comes first.
//
// Records still buffered when the process dies are lost. Always call
// [Batch.Close]:
//
//	b := sink.NewBatch(next, sink.WithBatchSize(500))
//	defer b.Close(context.Background())
//
// Batch is safe for concurrent use.
type Batch struct {
	next     Sink
	size     int
	interval time.Duration
	clock    clockwork.Clock
	logger   *slog.Logger

	mu      sync.Mutex
	records []model.Record
	closed  bool

	done    chan struct{}
	stopped chan struct{}
}

// NewBatch starts the flush loop.
func NewBatch(next Sink, opts ...BatchOption) *Batch {
	b := &Batch{
		next:     next,
		size:     DefaultBatchSize,
		interval: DefaultFlushInterval,
		clock:    clockwork.NewRealClock(),
		logger:   slog.Default(),
		done:     make(chan struct{}),
		stopped:  make(chan struct{}),
	}
	for _, opt := range opts {
		opt(b)
	}
	b.records = make([]model.Record, 0, b.size)

	ticker := b.clock.NewTicker(b.interval)
	go b.flusher(ticker)

	return b
}

// Publish implements [Sink]. It only blocks on the next sink when the
// buffer is full.
func (b *Batch) Publish(ctx context.Context, rec model.Record) error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return ErrClosed
	}
	b.records = append(b.records, rec)
	if len(b.records) < b.size {
		b.mu.Unlock()
		return nil
	}
	pending := b.takeLocked()
	b.mu.Unlock()

	return b.publishAll(ctx, pending)
}

// Flush hands every buffered record to the next sink.
func (b *Batch) Flush(ctx context.Context) error {
	b.mu.Lock()
	pending := b.takeLocked()
	b.mu.Unlock()

	return b.publishAll(ctx, pending)
}

// Len returns the number of buffered records.
func (b *Batch) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()

	return len(b.records)
}

// Close stops the flush loop and flushes what is left. It is safe to call
// more than once.
func (b *Batch) Close(ctx context.Context) error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil
	}
	b.closed = true
	b.mu.Unlock()

	close(b.done)
	select {
	case <-b.stopped:
	case <-ctx.Done():
		return ctx.Err()
	}

	return b.Flush(ctx)
}

func (b *Batch) flusher(ticker clockwork.Ticker) {
	defer close(b.stopped)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.Chan():
			if err := b.Flush(context.Background()); err != nil {
				b.logger.Error("api log batch flush failed", "error", err)
			}
		case <-b.done:
			return
		}
	}
}

func (b *Batch) takeLocked() []model.Record {
	if len(b.records) == 0 {
		return nil
	}
	pending := b.records
	b.records = make([]model.Record, 0, b.size)

	return pending
}

func (b *Batch) publishAll(ctx context.Context, records []model.Record) error {
	var errs []error
	for _, rec := range records {
		if err := b.next.Publish(ctx, rec); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}
