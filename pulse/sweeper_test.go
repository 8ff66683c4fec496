// Copyright 2025 The Pulse Authors
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package pulse

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSweeperNoTTLReturnsImmediately(t *testing.T) {
	r := newTestRegistry(t, Options{})
	s := &Sweeper{Registry: r}

	assert.NoError(t, s.Run(context.Background()))
}

func TestSweeperEvictsAndStopsOnCancel(t *testing.T) {
	r := newTestRegistry(t, Options{})
	_, err := r.Counter(MustKey("ephemeral_total", nil))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	s := &Sweeper{
		Registry: r,
		TTL:      time.Nanosecond,
		Interval: time.Millisecond,
		Logger:   quietLogger(),
	}
	go func() { done <- s.Run(ctx) }()

	deadline := time.After(5 * time.Second)
	for r.Len() > 0 {
		select {
		case <-deadline:
			t.Fatal("sweeper did not evict the idle entry in time")
		case <-time.After(time.Millisecond):
		}
	}

	cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(5 * time.Second):
		t.Fatal("sweeper did not stop after cancellation")
	}
}

func TestSweeperFallsBackToRegistryTTL(t *testing.T) {
	r := newTestRegistry(t, Options{TTL: time.Nanosecond})
	_, err := r.Gauge(MustKey("queue_depth", nil))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	s := &Sweeper{Registry: r, Interval: time.Millisecond, Logger: quietLogger()}
	go func() { done <- s.Run(ctx) }()

	deadline := time.After(5 * time.Second)
	for r.Len() > 0 {
		select {
		case <-deadline:
			t.Fatal("sweeper did not pick up the registry TTL")
		case <-time.After(time.Millisecond):
		}
	}

	cancel()
	require.ErrorIs(t, <-done, context.Canceled)
}
