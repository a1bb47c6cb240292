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
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"rivaas.dev/apilog/model"
)

func TestBatchFlushesWhenFull(t *testing.T) {
	defer goleak.VerifyNone(t)

	next := NewMemory()
	b := NewBatch(next, WithBatchSize(3), WithBatchClock(clockwork.NewFakeClock()))

	ctx := t.Context()
	require.NoError(t, b.Publish(ctx, simpleRecord()))
	require.NoError(t, b.Publish(ctx, simpleRecord()))
	assert.Zero(t, next.Len())
	assert.Equal(t, 2, b.Len())

	require.NoError(t, b.Publish(ctx, simpleRecord()))
	assert.Equal(t, 3, next.Len())
	assert.Zero(t, b.Len())

	require.NoError(t, b.Close(context.Background()))
}

func TestBatchFlushesOnTick(t *testing.T) {
	defer goleak.VerifyNone(t)

	clock := clockwork.NewFakeClock()
	next := NewMemory()
	b := NewBatch(next, WithBatchSize(100), WithFlushInterval(time.Second), WithBatchClock(clock))

	require.NoError(t, b.Publish(t.Context(), simpleRecord()))
	require.NoError(t, clock.BlockUntilContext(t.Context(), 1))
	clock.Advance(time.Second)

	assert.Eventually(t, func() bool { return next.Len() == 1 }, time.Second, 5*time.Millisecond)
	require.NoError(t, b.Close(context.Background()))
}

func TestBatchCloseFlushesAndRejects(t *testing.T) {
	defer goleak.VerifyNone(t)

	next := NewMemory()
	b := NewBatch(next, WithBatchClock(clockwork.NewFakeClock()))
	require.NoError(t, b.Publish(t.Context(), detailedRecord()))

	require.NoError(t, b.Close(context.Background()))
	require.NoError(t, b.Close(context.Background()), "second close is a no-op")

	assert.Equal(t, 1, next.Len())
	require.ErrorIs(t, b.Publish(t.Context(), simpleRecord()), ErrClosed)
}

func TestBatchJoinsErrors(t *testing.T) {
	defer goleak.VerifyNone(t)

	boom := errors.New("unavailable")
	failing := Func(func(context.Context, model.Record) error { return boom })
	b := NewBatch(failing, WithBatchSize(2), WithBatchClock(clockwork.NewFakeClock()))

	require.NoError(t, b.Publish(t.Context(), simpleRecord()))
	err := b.Publish(t.Context(), simpleRecord())

	require.ErrorIs(t, err, boom)
	require.NoError(t, b.Close(context.Background()))
}
