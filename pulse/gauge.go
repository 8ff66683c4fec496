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
	"math"
	"sync/atomic"
)

// Gauge is a float64 that can be set to an arbitrary value or adjusted by a
// delta. Set is last-write-wins; Add and Sub interleave in an unspecified
// but individually atomic order, so no update is ever lost. Readers always
// observe a value the gauge actually held, never a torn bit pattern.
type Gauge struct {
	// valBits contains the bits of the represented float64 value. It has to
	// go first in the struct to guarantee alignment for atomic operations.
	// http://golang.org/pkg/sync/atomic/#pkg-note-BUG
	valBits uint64

	touch func()
}

func newGauge(touch func()) *Gauge {
	if touch == nil {
		touch = func() {}
	}
	return &Gauge{touch: touch}
}

// Set sets the gauge to v.
func (g *Gauge) Set(v float64) {
	atomic.StoreUint64(&g.valBits, math.Float64bits(v))
	g.touch()
}

// Add adds delta to the gauge. Negative deltas decrease it.
func (g *Gauge) Add(delta float64) {
	for {
		oldBits := atomic.LoadUint64(&g.valBits)
		newBits := math.Float64bits(math.Float64frombits(oldBits) + delta)
		if atomic.CompareAndSwapUint64(&g.valBits, oldBits, newBits) {
			break
		}
	}
	g.touch()
}

// Sub subtracts delta from the gauge.
func (g *Gauge) Sub(delta float64) { g.Add(-delta) }

// Inc increments the gauge by 1.
func (g *Gauge) Inc() { g.Add(1) }

// Dec decrements the gauge by 1.
func (g *Gauge) Dec() { g.Add(-1) }

// Value returns the current gauge value.
func (g *Gauge) Value() float64 {
	return math.Float64frombits(atomic.LoadUint64(&g.valBits))
}
