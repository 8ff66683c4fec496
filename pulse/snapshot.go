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

import "time"

// Kind identifies the storage backing a registry entry. A Key is bound to
// exactly one Kind for its lifetime.
type Kind uint8

const (
	KindCounter Kind = iota
	KindGauge
	KindHistogram
)

func (k Kind) String() string {
	switch k {
	case KindCounter:
		return "counter"
	case KindGauge:
		return "gauge"
	case KindHistogram:
		return "histogram"
	}
	return "unknown"
}

// Snapshot is an immutable point-in-time copy of all current metric values.
// It shares no state with the registry that produced it and is freely
// shareable across goroutines without synchronization.
type Snapshot struct {
	// TakenAt is the wall-clock time the snapshot was captured.
	TakenAt time.Time

	// Entries holds one materialized value per live registry entry, in a
	// deterministic order: ascending by metric name, then by label set.
	Entries []Entry
}

// Entry is one materialized (Key, value) pair. Exactly one of the value
// fields is meaningful, selected by Kind.
type Entry struct {
	Key  Key
	Kind Kind

	CounterValue uint64
	GaugeValue   float64
	Histogram    *Distribution
}

// Distribution is the materialized value of a histogram entry.
type Distribution struct {
	Count uint64
	Sum   float64

	// Quantiles holds one sample per configured rank, ascending by rank.
	// It is empty when the estimator window held no observations.
	Quantiles []QuantileValue
}

// QuantileValue is the estimated value at a single quantile rank.
type QuantileValue struct {
	Quantile float64
	Value    float64
}
