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

// Package pulse implements a process-wide, concurrency-safe metrics
// registry. It accumulates counters, gauges, and value distributions keyed
// by metric name plus label set, produces immutable point-in-time snapshots
// without blocking writers, and bounds its own memory by evicting series
// that have gone idle.
//
// The registry is sharded: keys are partitioned by hash into independently
// locked sub-maps, so an instrumentation call never blocks for longer than
// a single shard lock held for one map operation. Counter and Gauge updates
// are lock-free atomics. Histogram observations are buffered and compacted
// into a quantile sketch with a bounded relative error at the configured
// quantiles.
//
// A minimal instrumentation site looks like this:
//
//	reg := pulse.MustNewRegistry(pulse.Options{})
//	c, err := reg.Counter(pulse.MustKey("requests_total", pulse.Labels{"method": "GET"}))
//	if err != nil {
//		// The key is already bound to a different metric kind.
//	}
//	c.Inc()
//
// Exporters obtain a Snapshot via Registry.Snapshot and render it with the
// text package. The pulsehttp and push sub-packages provide a pull-based
// HTTP handler and a push-gateway client built purely on that pair.
package pulse
