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
	"io"
	"sync"

	"gopkg.in/natefinch/lumberjack.v2"

	"rivaas.dev/apilog/model"
)

// Writer encodes records onto an [io.Writer]. JSON records are written one
// per line; MessagePack records are written back to back and can be read
// with a streaming decoder.
type Writer struct {
	mu     sync.Mutex
	w      io.Writer
	enc    Encoding
	closed bool
}

// NewWriter returns a sink writing to w.
func NewWriter(w io.Writer, enc Encoding) *Writer {
	if enc == "" {
		enc = EncodingJSON
	}

	return &Writer{w: w, enc: enc}
}

// Publish implements [Sink].
func (s *Writer) Publish(_ context.Context, rec model.Record) error {
	b, err := Encode(rec, s.enc)
	if err != nil {
		return err
	}
	if s.enc == EncodingJSON {
		b = append(b, '\n')
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	_, err = s.w.Write(b)

	return err
}

// Close closes the underlying writer when it is an [io.Closer].
// Publishing after Close returns [ErrClosed].
func (s *Writer) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	if c, ok := s.w.(io.Closer); ok {
		return c.Close()
	}

	return nil
}

// FileConfig configures a rotating record file.
type FileConfig struct {
	Filename   string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
	Encoding   Encoding
}

// NewRotatingFile returns a [Writer] backed by a size-rotated file.
// The file is opened on the first record.
func NewRotatingFile(cfg FileConfig) *Writer {
	return NewWriter(&lumberjack.Logger{
		Filename:   cfg.Filename,
		MaxSize:    cfg.MaxSizeMB,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAgeDays,
		Compress:   cfg.Compress,
	}, cfg.Encoding)
}
