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
	"sort"
	"sync"
	"time"
)

// Histogram records observations into a quantile Sketch. Observations are
// staged in a hot buffer under a short-held mutex; when the buffer fills,
// it is swapped with a cold buffer and compacted into the sketch
// asynchronously, so the observing goroutine never waits for sketch
// maintenance. A snapshot fully compacts both buffers first, which gives
// the happens-before guarantee: every Observe that returned before the
// snapshot started is reflected in it.
type Histogram struct {
	bufMtx sync.Mutex // protects hotBuf and its swap
	mtx    sync.Mutex // protects sketch, coldBuf, lastFlush

	sketch          *Sketch
	hotBuf, coldBuf []float64

	flushInterval time.Duration
	lastFlush     time.Time
	now           func() time.Time

	touch func()
}

func newHistogram(objectives map[float64]float64, bufCap int, flushInterval time.Duration, now func() time.Time, touch func()) *Histogram {
	if bufCap <= 0 {
		bufCap = DefBufCap
	}
	if now == nil {
		now = time.Now
	}
	if touch == nil {
		touch = func() {}
	}
	return &Histogram{
		sketch:        NewSketch(objectives),
		hotBuf:        make([]float64, 0, bufCap),
		coldBuf:       make([]float64, 0, bufCap),
		flushInterval: flushInterval,
		lastFlush:     now(),
		now:           now,
		touch:         touch,
	}
}

// Observe records a single sample. NaN and negative values are rejected
// with ErrInvalidSample; the histogram's state is not modified.
func (h *Histogram) Observe(v float64) error {
	if math.IsNaN(v) || v < 0 {
		return ErrInvalidSample
	}
	h.bufMtx.Lock()
	defer h.bufMtx.Unlock()

	h.hotBuf = append(h.hotBuf, v)
	if len(h.hotBuf) == cap(h.hotBuf) {
		h.swapBufs()
	}
	h.touch()
	return nil
}

// swapBufs hands the full hot buffer to an asynchronous compaction. Callers
// must hold bufMtx. The sketch mutex stays held until the compaction
// finishes, so a concurrent snapshot waits for it rather than missing it.
func (h *Histogram) swapBufs() {
	h.mtx.Lock()
	h.hotBuf, h.coldBuf = h.coldBuf, h.hotBuf
	h.hotBuf = h.hotBuf[:0]

	go func() {
		h.compactCold()
		h.mtx.Unlock()
	}()
}

// compactCold drains the cold buffer into the sketch. Callers must hold mtx.
func (h *Histogram) compactCold() {
	for _, v := range h.coldBuf {
		// Values were validated in Observe.
		_ = h.sketch.Insert(v)
	}
	h.coldBuf = h.coldBuf[:0]
}

// distribution materializes the histogram: it compacts all buffered
// observations, queries the requested quantile ranks, and applies the flush
// interval if one is configured. Ranks whose estimate is unavailable
// (empty estimator window) are omitted from the result.
func (h *Histogram) distribution(ranks []float64) *Distribution {
	h.bufMtx.Lock()
	h.mtx.Lock()

	h.compactCold()
	for _, v := range h.hotBuf {
		_ = h.sketch.Insert(v)
	}
	h.hotBuf = h.hotBuf[:0]

	d := &Distribution{
		Count:     h.sketch.Count(),
		Sum:       h.sketch.Sum(),
		Quantiles: make([]QuantileValue, 0, len(ranks)),
	}
	for _, q := range ranks {
		v, err := h.sketch.Quantile(q)
		if err != nil {
			continue
		}
		d.Quantiles = append(d.Quantiles, QuantileValue{Quantile: q, Value: v})
	}
	sort.Slice(d.Quantiles, func(i, j int) bool {
		return d.Quantiles[i].Quantile < d.Quantiles[j].Quantile
	})

	h.maybeFlush()

	h.mtx.Unlock()
	h.bufMtx.Unlock()
	return d
}

// maybeFlush restarts the estimator window once flushInterval has elapsed,
// keeping stale samples from crowding out recent ones. Count and Sum are
// untouched and stay monotonic. Callers must hold mtx.
func (h *Histogram) maybeFlush() {
	if h.flushInterval <= 0 {
		return
	}
	now := h.now()
	if now.Sub(h.lastFlush) < h.flushInterval {
		return
	}
	h.sketch.ResetEstimator()
	h.lastFlush = now
}
