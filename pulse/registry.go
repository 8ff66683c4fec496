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
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"
)

// Registry is a sharded, concurrency-safe mapping from Key to metric
// handle. Keys are partitioned by hash into independently locked shards, so
// high-cardinality, high-frequency instrumentation never contends on a
// global lock: the longest an instrumentation call can block is one shard
// lock held for a single map operation.
//
// Every access through the registry and every handle mutation refreshes the
// entry's recency, which drives TTL-based eviction (see EvictIdle and
// Sweeper).
type Registry struct {
	opts       Options
	objectives map[float64]float64

	shards    []*shard
	shardMask uint64

	// start anchors the monotonic recency clock. Entry touch times are
	// nanoseconds since start, derived from the monotonic reading of the
	// configured clock.
	start time.Time

	logger logrus.FieldLogger
}

type shard struct {
	mtx     sync.RWMutex
	entries map[string]*entry
}

// entry is the registry-owned binding of a Key to its handle. kind selects
// which of the three handle fields is set; the set of kinds is closed, so
// materialization can switch exhaustively.
type entry struct {
	// lastTouch has to go first in the struct to guarantee alignment for
	// atomic operations. http://golang.org/pkg/sync/atomic/#pkg-note-BUG
	lastTouch int64

	key  Key
	kind Kind

	counter   *Counter
	gauge     *Gauge
	histogram *Histogram
}

// NewRegistry constructs a Registry from opts. The zero Options value gives
// the documented defaults.
func NewRegistry(opts Options) (*Registry, error) {
	opts.applyDefaults()
	if err := opts.validate(); err != nil {
		return nil, err
	}
	r := &Registry{
		opts:       opts,
		objectives: opts.objectives(),
		shards:     make([]*shard, opts.ShardCount),
		shardMask:  uint64(opts.ShardCount - 1),
		start:      opts.Clock(),
		logger:     opts.Logger,
	}
	for i := range r.shards {
		r.shards[i] = &shard{entries: make(map[string]*entry)}
	}
	return r, nil
}

// MustNewRegistry works like NewRegistry but panics on invalid options.
func MustNewRegistry(opts Options) *Registry {
	r, err := NewRegistry(opts)
	if err != nil {
		panic(err)
	}
	return r
}

// Counter returns the counter bound to key, creating it if absent.
// Concurrent calls for the same key converge on a single instance. If the
// key is already bound to a different kind, a *KindMismatchError is
// returned.
func (r *Registry) Counter(key Key) (*Counter, error) {
	e, err := r.getOrCreate(key, KindCounter)
	if err != nil {
		return nil, err
	}
	return e.counter, nil
}

// Gauge returns the gauge bound to key, creating it if absent. See Counter
// for the concurrency and kind-mismatch contract.
func (r *Registry) Gauge(key Key) (*Gauge, error) {
	e, err := r.getOrCreate(key, KindGauge)
	if err != nil {
		return nil, err
	}
	return e.gauge, nil
}

// Histogram returns the histogram bound to key, creating it if absent. See
// Counter for the concurrency and kind-mismatch contract.
func (r *Registry) Histogram(key Key) (*Histogram, error) {
	e, err := r.getOrCreate(key, KindHistogram)
	if err != nil {
		return nil, err
	}
	return e.histogram, nil
}

func (r *Registry) getOrCreate(key Key, kind Kind) (*entry, error) {
	s := r.shards[key.hash&r.shardMask]

	s.mtx.RLock()
	e := s.entries[key.canonical]
	s.mtx.RUnlock()

	if e == nil {
		s.mtx.Lock()
		// Re-check under the write lock: a racing creator may have won.
		if e = s.entries[key.canonical]; e == nil {
			e = r.newEntry(key, kind)
			s.entries[key.canonical] = e
		}
		s.mtx.Unlock()
	}

	if e.kind != kind {
		err := &KindMismatchError{Key: key, Existing: e.kind, Requested: kind}
		r.logger.WithFields(logrus.Fields{
			"metric":    key.String(),
			"existing":  e.kind.String(),
			"requested": kind.String(),
		}).Error("metric kind mismatch")
		return nil, err
	}
	e.touch(r.nowNanos())
	return e, nil
}

func (r *Registry) newEntry(key Key, kind Kind) *entry {
	e := &entry{key: key, kind: kind}
	touch := func() { e.touch(r.nowNanos()) }
	switch kind {
	case KindCounter:
		e.counter = newCounter(touch)
	case KindGauge:
		e.gauge = newGauge(touch)
	case KindHistogram:
		e.histogram = newHistogram(
			r.objectives,
			r.opts.HistogramBufCap,
			r.opts.SketchFlushInterval,
			r.opts.Clock,
			touch,
		)
	}
	e.touch(r.nowNanos())
	return e
}

// nowNanos returns the monotonic registry time in nanoseconds since start.
func (r *Registry) nowNanos() int64 {
	return int64(r.opts.Clock().Sub(r.start))
}

func (e *entry) touch(now int64) {
	atomic.StoreInt64(&e.lastTouch, now)
}

// materialize produces a consistent read of the entry's current value. For
// counters and gauges this is a single atomic load; for histograms the
// buffered observations are compacted first.
func (e *entry) materialize(ranks []float64) Entry {
	out := Entry{Key: e.key, Kind: e.kind}
	switch e.kind {
	case KindCounter:
		out.CounterValue = e.counter.Value()
	case KindGauge:
		out.GaugeValue = e.gauge.Value()
	case KindHistogram:
		out.Histogram = e.histogram.distribution(ranks)
	}
	return out
}

// Visit invokes f once per current entry with a consistent read of its
// value. Only one shard is locked at a time, and only while its entry list
// is copied; materialization and f itself run without any registry lock
// held. Entries created or removed while Visit runs may or may not be
// observed.
func (r *Registry) Visit(f func(Entry)) {
	ranks := r.opts.Quantiles
	for _, s := range r.shards {
		s.mtx.RLock()
		entries := make([]*entry, 0, len(s.entries))
		for _, e := range s.entries {
			entries = append(entries, e)
		}
		s.mtx.RUnlock()

		for _, e := range entries {
			f(e.materialize(ranks))
		}
	}
}

// Snapshot captures an immutable point-in-time copy of all current entries,
// ordered by metric name and then by label set. No registry-wide lock is
// held at any point; worst-case contention is one shard at a time.
func (r *Registry) Snapshot() *Snapshot {
	snap := &Snapshot{TakenAt: r.opts.Clock()}
	r.Visit(func(e Entry) {
		snap.Entries = append(snap.Entries, e)
	})
	sort.Slice(snap.Entries, func(i, j int) bool {
		a, b := snap.Entries[i].Key, snap.Entries[j].Key
		if a.name != b.name {
			return a.name < b.name
		}
		return a.canonical < b.canonical
	})
	return snap
}

// Len returns the current number of live entries.
func (r *Registry) Len() int {
	n := 0
	for _, s := range r.shards {
		s.mtx.RLock()
		n += len(s.entries)
		s.mtx.RUnlock()
	}
	return n
}

// EvictIdle removes every entry whose idle duration is at least ttl and
// returns the number removed. If an update races with the sweep, either the
// refreshed touch time keeps the entry alive, or the entry is removed and
// the next registry access for its key creates a fresh one; an update is
// never silently dropped on the registry path.
func (r *Registry) EvictIdle(ttl time.Duration) int {
	if ttl < 0 {
		return 0
	}
	cutoff := r.nowNanos() - ttl.Nanoseconds()
	removed := 0
	for _, s := range r.shards {
		s.mtx.Lock()
		for canonical, e := range s.entries {
			if atomic.LoadInt64(&e.lastTouch) <= cutoff {
				delete(s.entries, canonical)
				removed++
			}
		}
		s.mtx.Unlock()
	}
	return removed
}
