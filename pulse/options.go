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
	"fmt"
	"math"
	"runtime"
	"sort"
	"time"

	"github.com/sirupsen/logrus"
)

const (
	// DefEpsilon is the default tolerated rank error at each reported
	// quantile.
	DefEpsilon = 0.01

	// DefBufCap is the default capacity of a histogram's observation
	// buffer.
	DefBufCap = 1024
)

// DefQuantiles are the quantile ranks reported per histogram by default.
var DefQuantiles = []float64{0.5, 0.9, 0.99}

// Options bundles the configuration of a Registry. The zero value is valid
// and yields the documented defaults.
type Options struct {
	// Quantiles are the ranks reported for every histogram, each in
	// (0, 1). Defaults to DefQuantiles.
	Quantiles []float64

	// Epsilon is the tolerated rank error at each reported quantile, in
	// (0, 1). Defaults to DefEpsilon.
	Epsilon float64

	// TTL is the idle duration after which the eviction sweep removes an
	// entry. Zero disables eviction entirely; EvictIdle and the Sweeper
	// then take the TTL explicitly.
	TTL time.Duration

	// ShardCount is the number of independently locked registry shards,
	// rounded up to the next power of two. Defaults to the available
	// parallelism (GOMAXPROCS).
	ShardCount int

	// HistogramBufCap is the capacity of each histogram's observation
	// buffer. Defaults to DefBufCap.
	HistogramBufCap int

	// SketchFlushInterval, if positive, periodically restarts every
	// histogram's quantile estimator window so stale samples do not crowd
	// out recent ones. Zero keeps full history, which is the default.
	SketchFlushInterval time.Duration

	// Clock is the time source, overridable for tests. Defaults to
	// time.Now. Idle tracking uses the monotonic reading of the returned
	// times, so wall-clock adjustments cannot trigger spurious eviction.
	Clock func() time.Time

	// Logger receives registry-level diagnostics such as kind mismatches
	// and sweep results. Defaults to the standard logrus logger.
	Logger logrus.FieldLogger
}

func (o *Options) applyDefaults() {
	if len(o.Quantiles) == 0 {
		o.Quantiles = DefQuantiles
	}
	qs := append([]float64(nil), o.Quantiles...)
	sort.Float64s(qs)
	o.Quantiles = qs
	if o.Epsilon == 0 {
		o.Epsilon = DefEpsilon
	}
	if o.ShardCount <= 0 {
		o.ShardCount = runtime.GOMAXPROCS(0)
	}
	o.ShardCount = nextPowerOfTwo(o.ShardCount)
	if o.HistogramBufCap <= 0 {
		o.HistogramBufCap = DefBufCap
	}
	if o.Clock == nil {
		o.Clock = time.Now
	}
	if o.Logger == nil {
		o.Logger = logrus.StandardLogger()
	}
}

func (o *Options) validate() error {
	for _, q := range o.Quantiles {
		if math.IsNaN(q) || q <= 0 || q >= 1 {
			return fmt.Errorf("quantile rank %v outside (0, 1)", q)
		}
	}
	if math.IsNaN(o.Epsilon) || o.Epsilon <= 0 || o.Epsilon >= 1 {
		return fmt.Errorf("epsilon %v outside (0, 1)", o.Epsilon)
	}
	if o.TTL < 0 {
		return fmt.Errorf("negative TTL %v", o.TTL)
	}
	if o.SketchFlushInterval < 0 {
		return fmt.Errorf("negative sketch flush interval %v", o.SketchFlushInterval)
	}
	return nil
}

// objectives maps every configured quantile rank to the configured error.
func (o *Options) objectives() map[float64]float64 {
	obj := make(map[float64]float64, len(o.Quantiles))
	for _, q := range o.Quantiles {
		obj[q] = o.Epsilon
	}
	return obj
}

func defaultObjectives() map[float64]float64 {
	obj := make(map[float64]float64, len(DefQuantiles))
	for _, q := range DefQuantiles {
		obj[q] = DefEpsilon
	}
	return obj
}

func nextPowerOfTwo(n int) int {
	p := 1
	for p < n {
		p <<= 1
	}
	return p
}
