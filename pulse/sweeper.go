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
	"time"

	"github.com/sirupsen/logrus"
)

// DefSweepInterval is the default interval between eviction sweeps.
const DefSweepInterval = time.Minute

// Sweeper periodically removes idle entries from a Registry. It runs out of
// band, never on the write path, and is cancellable between iterations.
type Sweeper struct {
	// Registry is the registry to sweep. Mandatory.
	Registry *Registry

	// TTL is the idle duration after which an entry is removed. Zero falls
	// back to the registry's configured TTL; if that is also zero, Run
	// returns immediately.
	TTL time.Duration

	// Interval is the pause between sweeps. Defaults to DefSweepInterval.
	Interval time.Duration

	// Logger receives sweep results. Defaults to the registry's logger.
	Logger logrus.FieldLogger
}

// Run sweeps the registry until ctx is cancelled and returns ctx.Err().
// Cancellation is observed between iterations, never mid-sweep.
func (s *Sweeper) Run(ctx context.Context) error {
	ttl := s.TTL
	if ttl == 0 {
		ttl = s.Registry.opts.TTL
	}
	if ttl == 0 {
		return nil
	}
	interval := s.Interval
	if interval <= 0 {
		interval = DefSweepInterval
	}
	logger := s.Logger
	if logger == nil {
		logger = s.Registry.logger
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if n := s.Registry.EvictIdle(ttl); n > 0 {
				logger.WithFields(logrus.Fields{
					"evicted": n,
					"ttl":     ttl,
				}).Debug("removed idle metric series")
			}
		}
	}
}
