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
	"errors"
	"fmt"
)

var (
	// ErrInvalidSample is returned when a NaN or negative value is offered
	// to a histogram or sketch. The offending observation is dropped; shared
	// state is never modified.
	ErrInvalidSample = errors.New("invalid sample: NaN or negative value")

	// ErrEmptyDistribution is returned by quantile queries against a sketch
	// that holds no observations.
	ErrEmptyDistribution = errors.New("empty distribution: no observations recorded")
)

// KindMismatchError is returned when a Key already bound to one metric kind
// is requested under another. The error is local to the offending call; the
// existing entry and all other entries are unaffected.
type KindMismatchError struct {
	Key       Key
	Existing  Kind
	Requested Kind
}

func (e *KindMismatchError) Error() string {
	return fmt.Sprintf(
		"metric %s already registered as %s, cannot re-register as %s",
		e.Key, e.Existing, e.Requested,
	)
}
