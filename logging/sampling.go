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
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/jonboulle/clockwork"
)

// SamplingConfig configures log sampling.
//
//  1. The first Initial entries are logged unconditionally.
//  2. After that, one in every Thereafter entries is logged.
//  3. Every Tick the counter is reset.
//
// Entries at error level or above are never sampled away.
type SamplingConfig struct {
	Initial    int           // Log first N occurrences unconditionally
	Thereafter int           // After Initial, log 1 of every M entries (0 = log all)
	Tick       time.Duration // Reset sampling counter every interval (0 = never reset)
}

type sampler struct {
	cfg   SamplingConfig
	count atomic.Int64

	ticker clockwork.Ticker
	done   chan struct{}
	exited chan struct{}
}

func newSampler(cfg SamplingConfig, clock clockwork.Clock) *sampler {
	s := &sampler{cfg: cfg}
	if cfg.Tick > 0 {
		s.ticker = clock.NewTicker(cfg.Tick)
		s.done = make(chan struct{})
		s.exited = make(chan struct{})
		go s.resetLoop()
	}

	return s
}

func (s *sampler) resetLoop() {
	defer close(s.exited)
	for {
		select {
		case <-s.ticker.Chan():
			s.count.Store(0)
		case <-s.done:
			return
		}
	}
}

func (s *sampler) stop() {
	if s.ticker == nil {
		return
	}
	s.ticker.Stop()
	close(s.done)
	<-s.exited
}

func (s *sampler) allow(level slog.Level) bool {
	if level >= slog.LevelError {
		return true
	}

	n := s.count.Add(1)
	if n <= int64(s.cfg.Initial) || s.cfg.Thereafter == 0 {
		return true
	}

	return (n-int64(s.cfg.Initial))%int64(s.cfg.Thereafter) == 0
}

// samplingHandler drops entries the sampler rejects. Loggers derived
// with With or WithGroup share the sampler.
type samplingHandler struct {
	next    slog.Handler
	sampler *sampler
}

func (h *samplingHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.next.Enabled(ctx, level)
}

func (h *samplingHandler) Handle(ctx context.Context, r slog.Record) error {
	if !h.sampler.allow(r.Level) {
		return nil
	}

	return h.next.Handle(ctx, r)
}

func (h *samplingHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &samplingHandler{next: h.next.WithAttrs(attrs), sampler: h.sampler}
}

func (h *samplingHandler) WithGroup(name string) slog.Handler {
	return &samplingHandler{next: h.next.WithGroup(name), sampler: h.sampler}
}
