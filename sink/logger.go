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
	"log/slog"

	"github.com/rs/zerolog"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"rivaas.dev/apilog/model"
)

// DefaultMessage is the log message of logger-backed sinks.
const DefaultMessage = "api log"

// recordKey is the attribute holding the record.
const recordKey = "apiLog"

func failed(rec model.Record) bool {
	return rec.Base().ErrorIndicator != ""
}

// Slog writes each record as one [slog] entry with the record under the
// "apiLog" attribute.
type Slog struct {
	logger  *slog.Logger
	message string
}

// NewSlog returns a sink writing to logger, or to [slog.Default] when nil.
func NewSlog(logger *slog.Logger) *Slog {
	if logger == nil {
		logger = slog.Default()
	}

	return &Slog{logger: logger, message: DefaultMessage}
}

// WithMessage returns a copy that logs msg instead of [DefaultMessage].
func (s *Slog) WithMessage(msg string) *Slog {
	c := *s
	c.message = msg

	return &c
}

// Publish implements [Sink].
func (s *Slog) Publish(ctx context.Context, rec model.Record) error {
	level := slog.LevelInfo
	if failed(rec) {
		level = slog.LevelError
	}
	s.logger.LogAttrs(ctx, level, s.message, slog.Any(recordKey, rec))

	return nil
}

// Zap writes each record through a [zap.Logger].
type Zap struct {
	logger *zap.Logger
}

// NewZap returns a sink writing to logger.
func NewZap(logger *zap.Logger) *Zap {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Zap{logger: logger}
}

// Publish implements [Sink].
func (z *Zap) Publish(_ context.Context, rec model.Record) error {
	level := zapcore.InfoLevel
	if failed(rec) {
		level = zapcore.ErrorLevel
	}
	z.logger.Log(level, DefaultMessage,
		zap.String("logMode", string(rec.Mode())),
		zap.Any(recordKey, rec),
	)

	return nil
}

// Zerolog writes each record through a [zerolog.Logger].
type Zerolog struct {
	logger zerolog.Logger
}

// NewZerolog returns a sink writing to logger.
func NewZerolog(logger zerolog.Logger) *Zerolog {
	return &Zerolog{logger: logger}
}

// Publish implements [Sink].
func (z *Zerolog) Publish(_ context.Context, rec model.Record) error {
	ev := z.logger.Info()
	if failed(rec) {
		ev = z.logger.Error()
	}
	ev.Str("logMode", string(rec.Mode())).
		Interface(recordKey, rec).
		Msg(DefaultMessage)

	return nil
}
