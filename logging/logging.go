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
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"
	"strings"
	"sync"

	"github.com/jonboulle/clockwork"
)

// HandlerType represents the type of logging handler.
type HandlerType string

const (
	// JSONHandler outputs structured JSON logs.
	JSONHandler HandlerType = "json"
	// TextHandler outputs key=value text logs.
	TextHandler HandlerType = "text"
	// ConsoleHandler outputs human-readable colored logs.
	ConsoleHandler HandlerType = "console"
)

// ParseHandlerType maps a configuration value to a [HandlerType].
func ParseHandlerType(s string) (HandlerType, error) {
	switch t := HandlerType(strings.ToLower(strings.TrimSpace(s))); t {
	case JSONHandler, TextHandler, ConsoleHandler:
		return t, nil
	}

	return "", fmt.Errorf("%w: %q", ErrInvalidHandler, s)
}

// Level represents log level.
type Level = slog.Level

const (
	LevelDebug = slog.LevelDebug
	LevelInfo  = slog.LevelInfo
	LevelWarn  = slog.LevelWarn
	LevelError = slog.LevelError
)

// Redacted replaces the value of attributes whose key is redacted.
const Redacted = "***REDACTED***"

// DefaultRedactedKeys are redacted unless [WithRedactedKeys] says otherwise.
var DefaultRedactedKeys = []string{"password", "token", "secret", "api_key", "authorization"}

// Logger builds and owns the [slog.Logger] that reports failures of the
// logging pipeline itself: misbehaving filters, triggers, formatters and
// sinks. Records of intercepted calls go to a sink, not here.
//
// Thread-safety: All public methods are safe for concurrent use.
type Logger struct {
	handlerType HandlerType
	output      io.Writer
	level       *slog.LevelVar

	serviceName    string
	serviceVersion string
	environment    string

	addSource    bool
	redactedKeys []string
	replaceAttr  func(groups []string, a slog.Attr) slog.Attr

	sampling *SamplingConfig
	sampler  *sampler
	clock    clockwork.Clock

	customLogger   *slog.Logger
	useCustom      bool
	registerGlobal bool

	slogger  *slog.Logger
	shutdown sync.Once
}

// Option is a functional option for configuring the logger.
type Option func(*Logger)

func defaultLogger() *Logger {
	level := new(slog.LevelVar)
	level.Set(LevelInfo)

	return &Logger{
		handlerType:  JSONHandler,
		output:       os.Stderr,
		level:        level,
		redactedKeys: DefaultRedactedKeys,
		clock:        clockwork.NewRealClock(),
	}
}

// New creates a Logger with the given options.
//
// It does not replace the global slog default unless [WithGlobalLogger]
// is given.
func New(opts ...Option) (*Logger, error) {
	l := defaultLogger()
	for _, opt := range opts {
		opt(l)
	}

	if err := l.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	if err := l.initialize(); err != nil {
		return nil, err
	}

	return l, nil
}

// MustNew creates a Logger or panics on error.
func MustNew(opts ...Option) *Logger {
	l, err := New(opts...)
	if err != nil {
		panic("logging initialization failed: " + err.Error())
	}

	return l
}

// Validate checks if the configuration is valid.
func (l *Logger) Validate() error {
	if l.output == nil {
		return ErrNilOutput
	}
	if l.useCustom && l.customLogger == nil {
		return ErrNilLogger
	}
	if l.sampling != nil && (l.sampling.Initial < 0 || l.sampling.Thereafter < 0 || l.sampling.Tick < 0) {
		return ErrInvalidSampling
	}

	return nil
}

func (l *Logger) initialize() error {
	if l.useCustom {
		l.slogger = l.customLogger
		if l.registerGlobal {
			slog.SetDefault(l.slogger)
		}
		return nil
	}

	opts := &slog.HandlerOptions{
		Level:       l.level,
		AddSource:   l.addSource,
		ReplaceAttr: l.buildReplaceAttr(),
	}

	var handler slog.Handler
	switch l.handlerType {
	case JSONHandler:
		handler = slog.NewJSONHandler(l.output, opts)
	case TextHandler:
		handler = slog.NewTextHandler(l.output, opts)
	case ConsoleHandler:
		handler = newConsoleHandler(l.output, opts)
	default:
		return fmt.Errorf("%w: %s", ErrInvalidHandler, l.handlerType)
	}

	if l.sampling != nil {
		l.sampler = newSampler(*l.sampling, l.clock)
		handler = &samplingHandler{next: handler, sampler: l.sampler}
	}

	logger := slog.New(handler)

	var attrs []any
	if l.serviceName != "" {
		attrs = append(attrs, "service", l.serviceName)
	}
	if l.serviceVersion != "" {
		attrs = append(attrs, "version", l.serviceVersion)
	}
	if l.environment != "" {
		attrs = append(attrs, "env", l.environment)
	}
	if len(attrs) > 0 {
		logger = logger.With(attrs...)
	}

	l.slogger = logger
	if l.registerGlobal {
		slog.SetDefault(logger)
	}

	return nil
}

// buildReplaceAttr redacts sensitive keys in any group, then applies the
// user replacer.
func (l *Logger) buildReplaceAttr() func(groups []string, a slog.Attr) slog.Attr {
	return func(groups []string, a slog.Attr) slog.Attr {
		if a.Value.Kind() != slog.KindGroup && l.redacted(a.Key) {
			return slog.String(a.Key, Redacted)
		}
		if l.replaceAttr != nil {
			return l.replaceAttr(groups, a)
		}

		return a
	}
}

func (l *Logger) redacted(key string) bool {
	return slices.ContainsFunc(l.redactedKeys, func(k string) bool {
		return strings.EqualFold(k, key)
	})
}

// Logger returns the underlying [slog.Logger].
func (l *Logger) Logger() *slog.Logger {
	return l.slogger
}

// With returns a [slog.Logger] with additional attributes.
func (l *Logger) With(args ...any) *slog.Logger {
	return l.slogger.With(args...)
}

// Level returns the current minimum level.
func (l *Logger) Level() Level {
	return l.level.Level()
}

// SetLevel changes the minimum level at runtime.
// It fails for loggers built with [WithCustomLogger].
func (l *Logger) SetLevel(level Level) error {
	if l.useCustom {
		return ErrCannotChangeLevel
	}
	l.level.Set(level)

	return nil
}

// Shutdown stops the sampling reset loop. The logger keeps working
// afterwards, without periodic resets.
func (l *Logger) Shutdown(_ context.Context) error {
	l.shutdown.Do(func() {
		if l.sampler != nil {
			l.sampler.stop()
		}
	})

	return nil
}
