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

	"github.com/beorn7/perks/quantile"
)

// Sketch summarizes a stream of float64 samples into compact quantile
// estimates. It is a thin validating wrapper around a targeted CKMS
// quantile stream: each objective maps a quantile rank to the tolerated
// absolute rank error at that rank, so the estimate at a configured
// quantile q is guaranteed to fall within the objective's error of the true
// empirical quantile. Queries at unconfigured ranks are answered on a
// best-effort basis.
//
// The sketch keeps full history: every accepted sample contributes to the
// estimate until Reset (or ResetEstimator, which restarts the estimator
// window while Count and Sum keep accumulating).
//
// A Sketch is not safe for concurrent use; Histogram provides the
// synchronized wrapper used by the registry.
type Sketch struct {
	objectives map[float64]float64
	stream     *quantile.Stream

	cnt uint64
	sum float64
}

// NewSketch returns an empty Sketch targeting the given objectives. A nil
// or empty map falls back to the package defaults (0.5, 0.9 and 0.99, each
// with error DefEpsilon).
func NewSketch(objectives map[float64]float64) *Sketch {
	if len(objectives) == 0 {
		objectives = defaultObjectives()
	}
	return &Sketch{
		objectives: objectives,
		stream:     quantile.NewTargeted(objectives),
	}
}

// Insert adds a sample. NaN and negative values are rejected with
// ErrInvalidSample and leave the sketch untouched.
func (s *Sketch) Insert(v float64) error {
	if math.IsNaN(v) || v < 0 {
		return ErrInvalidSample
	}
	s.stream.Insert(v)
	s.cnt++
	s.sum += v
	return nil
}

// Quantile returns the estimated value at rank q in [0, 1]. It returns
// ErrEmptyDistribution if the estimator window holds no samples.
func (s *Sketch) Quantile(q float64) (float64, error) {
	if q < 0 || q > 1 {
		return 0, fmt.Errorf("quantile rank %v outside [0, 1]", q)
	}
	if s.stream.Count() == 0 {
		return 0, ErrEmptyDistribution
	}
	return s.stream.Query(q), nil
}

// Count returns the number of samples accepted since the last Reset.
func (s *Sketch) Count() uint64 { return s.cnt }

// Sum returns the sum of samples accepted since the last Reset.
func (s *Sketch) Sum() float64 { return s.sum }

// Merge folds the samples of other into s. Both sketches must target the
// same objectives; other is left unchanged.
func (s *Sketch) Merge(other *Sketch) error {
	if len(s.objectives) != len(other.objectives) {
		return fmt.Errorf("cannot merge sketches with different objectives")
	}
	for q, eps := range s.objectives {
		if oeps, ok := other.objectives[q]; !ok || oeps != eps {
			return fmt.Errorf("cannot merge sketches with different objectives")
		}
	}
	s.stream.Merge(other.stream.Samples())
	s.cnt += other.cnt
	s.sum += other.sum
	return nil
}

// Reset discards all state, returning the sketch to empty.
func (s *Sketch) Reset() {
	s.stream.Reset()
	s.cnt = 0
	s.sum = 0
}

// ResetEstimator restarts the quantile estimator window without resetting
// Count and Sum. Used by histograms configured with a flush interval to
// keep stale samples from crowding out recent ones.
func (s *Sketch) ResetEstimator() {
	s.stream.Reset()
}
