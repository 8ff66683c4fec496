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
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSketchRejectsInvalidSamples(t *testing.T) {
	s := NewSketch(nil)
	require.NoError(t, s.Insert(1))

	assert.ErrorIs(t, s.Insert(math.NaN()), ErrInvalidSample)
	assert.ErrorIs(t, s.Insert(-0.001), ErrInvalidSample)

	// A rejected sample must leave the sketch untouched.
	assert.Equal(t, uint64(1), s.Count())
	assert.Equal(t, 1.0, s.Sum())
}

func TestSketchEmptyDistribution(t *testing.T) {
	s := NewSketch(nil)

	_, err := s.Quantile(0.5)
	assert.ErrorIs(t, err, ErrEmptyDistribution)
}

func TestSketchRejectsOutOfRangeRank(t *testing.T) {
	s := NewSketch(nil)
	require.NoError(t, s.Insert(1))

	_, err := s.Quantile(-0.1)
	assert.Error(t, err)
	_, err = s.Quantile(1.1)
	assert.Error(t, err)
}

// uniformSamples returns n values evenly spread over [0, max), in a
// deterministic shuffled order.
func uniformSamples(n int, max float64) []float64 {
	rnd := rand.New(rand.NewSource(42))
	vals := make([]float64, n)
	for i, j := range rnd.Perm(n) {
		vals[i] = float64(j) * max / float64(n)
	}
	return vals
}

func TestSketchUniformQuantiles(t *testing.T) {
	const (
		n   = 1000
		max = 100.0
	)
	s := NewSketch(map[float64]float64{0.5: 0.01, 0.9: 0.01, 0.99: 0.01})
	for _, v := range uniformSamples(n, max) {
		require.NoError(t, s.Insert(v))
	}

	for rank, want := range map[float64]float64{
		0.5:  50,
		0.9:  90,
		0.99: 99,
	} {
		got, err := s.Quantile(rank)
		require.NoError(t, err)
		// A rank error of 0.01 over a uniform [0, 100) distribution is a
		// value error of at most ~2, plus discretization slack.
		assert.InDeltaf(t, want, got, 2.5, "rank %v", rank)
	}

	assert.Equal(t, uint64(n), s.Count())
	assert.InDelta(t, float64(n)*max/2, s.Sum(), max)
}

func TestSketchQuantilesAreMonotonic(t *testing.T) {
	s := NewSketch(nil)
	for _, v := range uniformSamples(500, 10) {
		require.NoError(t, s.Insert(v))
	}

	prev := math.Inf(-1)
	for _, rank := range []float64{0, 0.1, 0.25, 0.5, 0.75, 0.9, 0.99, 1} {
		got, err := s.Quantile(rank)
		require.NoError(t, err)
		assert.GreaterOrEqualf(t, got, prev, "rank %v", rank)
		prev = got
	}
}

func TestSketchMerge(t *testing.T) {
	all := uniformSamples(1000, 100)

	whole := NewSketch(nil)
	left := NewSketch(nil)
	right := NewSketch(nil)
	for i, v := range all {
		require.NoError(t, whole.Insert(v))
		if i%2 == 0 {
			require.NoError(t, left.Insert(v))
		} else {
			require.NoError(t, right.Insert(v))
		}
	}

	require.NoError(t, left.Merge(right))
	assert.Equal(t, whole.Count(), left.Count())
	assert.InDelta(t, whole.Sum(), left.Sum(), 1e-6)

	mq, err := left.Quantile(0.5)
	require.NoError(t, err)
	assert.InDelta(t, 50, mq, 2.5)
}

func TestSketchMergeRejectsDifferentObjectives(t *testing.T) {
	a := NewSketch(map[float64]float64{0.5: 0.01})
	b := NewSketch(map[float64]float64{0.9: 0.01})

	assert.Error(t, a.Merge(b))
}

func TestSketchReset(t *testing.T) {
	s := NewSketch(nil)
	require.NoError(t, s.Insert(5))

	s.Reset()
	assert.Equal(t, uint64(0), s.Count())
	assert.Equal(t, 0.0, s.Sum())
	_, err := s.Quantile(0.5)
	assert.ErrorIs(t, err, ErrEmptyDistribution)
}

func TestSketchResetEstimatorKeepsTotals(t *testing.T) {
	s := NewSketch(nil)
	require.NoError(t, s.Insert(5))
	require.NoError(t, s.Insert(7))

	s.ResetEstimator()
	assert.Equal(t, uint64(2), s.Count())
	assert.Equal(t, 12.0, s.Sum())

	// The estimator window restarted, so there is nothing to query until
	// new samples arrive.
	_, err := s.Quantile(0.5)
	assert.ErrorIs(t, err, ErrEmptyDistribution)

	require.NoError(t, s.Insert(3))
	got, err := s.Quantile(0.5)
	require.NoError(t, err)
	assert.Equal(t, 3.0, got)
	assert.Equal(t, uint64(3), s.Count())
}
