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
	"sort"
	"strings"

	"github.com/cespare/xxhash/v2"
	"github.com/prometheus/common/model"
)

// Labels is a map of label name to label value. Map semantics give label
// sets their set behavior: a duplicate label name collapses to the value
// written last.
type Labels map[string]string

// Label is a single name/value pair of a Key's label set.
type Label struct {
	Name  string
	Value string
}

// Key is the canonical identity of a metric instance: a metric name plus a
// label set. Two Keys with the same name and the same label pairs identify
// the same registry entry, regardless of the order in which the labels were
// supplied. Keys are immutable after creation and safe for concurrent use.
type Key struct {
	name      string
	pairs     []Label // sorted by label name
	canonical string
	hash      uint64
}

// NewKey builds a Key from a metric name and a label set. The name and all
// label names are validated against the exposition format's character set.
// The labels map is copied; mutating it afterwards does not affect the Key.
func NewKey(name string, labels Labels) (Key, error) {
	if !model.IsValidMetricName(model.LabelValue(name)) {
		return Key{}, fmt.Errorf("%q is not a valid metric name", name)
	}
	pairs := make([]Label, 0, len(labels))
	for n, v := range labels {
		if !model.LabelName(n).IsValid() {
			return Key{}, fmt.Errorf("%q is not a valid label name", n)
		}
		pairs = append(pairs, Label{Name: n, Value: v})
	}
	sort.Slice(pairs, func(i, j int) bool { return pairs[i].Name < pairs[j].Name })

	k := Key{name: name, pairs: pairs}
	k.canonical = canonicalString(name, pairs)
	k.hash = xxhash.Sum64String(k.canonical)
	return k, nil
}

// MustKey works like NewKey but panics on an invalid name or label name.
// It simplifies Keys built from literals at instrumentation sites.
func MustKey(name string, labels Labels) Key {
	k, err := NewKey(name, labels)
	if err != nil {
		panic(err)
	}
	return k
}

// Name returns the metric name.
func (k Key) Name() string { return k.name }

// Pairs returns the label pairs sorted by label name. The returned slice
// must not be modified.
func (k Key) Pairs() []Label { return k.pairs }

// Labels returns a copy of the label set as a map.
func (k Key) Labels() Labels {
	ls := make(Labels, len(k.pairs))
	for _, p := range k.pairs {
		ls[p.Name] = p.Value
	}
	return ls
}

// Hash returns a 64-bit hash of the Key's canonical form. Keys that are
// equal hash identically.
func (k Key) Hash() uint64 { return k.hash }

// String renders the Key in the familiar name{label="value",...} form.
func (k Key) String() string {
	if len(k.pairs) == 0 {
		return k.name
	}
	var b strings.Builder
	b.WriteString(k.name)
	b.WriteByte('{')
	for i, p := range k.pairs {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(p.Name)
		b.WriteString(`="`)
		b.WriteString(p.Value)
		b.WriteByte('"')
	}
	b.WriteByte('}')
	return b.String()
}

// canonicalString joins name and sorted label pairs with the model
// separator byte, which cannot occur in valid UTF-8 label content. That
// makes the canonical form collision-free, so it can serve as the map key
// inside registry shards.
func canonicalString(name string, pairs []Label) string {
	var b strings.Builder
	b.WriteString(name)
	for _, p := range pairs {
		b.WriteByte(model.SeparatorByte)
		b.WriteString(p.Name)
		b.WriteByte(model.SeparatorByte)
		b.WriteString(p.Value)
	}
	return b.String()
}
