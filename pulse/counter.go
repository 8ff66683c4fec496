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

// Counter is a monotonically non-decreasing uint64. Additions saturate at
// the maximum value instead of wrapping. All methods are safe for
// concurrent use and lock-free.
type Counter struct {
	// val has to go first in the struct to guarantee alignment for atomic
	// operations. http://golang.org/pkg/sync/atomic/#pkg-note-BUG
	val uint64

	touch func()
}

func newCounter(touch func()) *Counter {
	if touch == nil {
		touch = func() {}
	}
	return &Counter{touch: touch}
}

// Inc increments the counter by 1.
func (c *Counter) Inc() { c.Add(1) }

// Add adds delta to the counter, saturating at math.MaxUint64.
func (c *Counter) Add(delta uint64) {
	for {
		old := atomic.LoadUint64(&c.val)
		next := old + delta
		if next < old {
			next = math.MaxUint64
		}
		if atomic.CompareAndSwapUint64(&c.val, old, next) {
			break
		}
	}
	c.touch()
}

// Value returns the current counter value.
func (c *Counter) Value() uint64 {
	return atomic.LoadUint64(&c.val)
}
