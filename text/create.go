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

// Package text renders snapshots into the simple and flat text-based
// exposition format.
package text

import (
	"bytes"
	"fmt"
	"io"
	"strconv"

	"github.com/pulsemetrics/pulse-go/pulse"
)

// ContentType is the content type of the exposition payload produced by
// WriteSnapshot.
const ContentType = `text/plain; version=0.0.4; charset=utf-8`

// WriteSnapshot renders a snapshot to 'out', one metric family per block: a
// `# TYPE <name> <kind>` header followed by one line per label-set variant.
// Histogram families additionally emit one line per quantile rank (omitted
// while the distribution is empty) and `_sum` and `_count` lines. Output is
// byte-identical for the same snapshot. It returns the number of bytes
// written and any error encountered.
func WriteSnapshot(out io.Writer, snap *pulse.Snapshot) (int, error) {
	var written int

	var famName string
	var famKind pulse.Kind
	for i, e := range snap.Entries {
		name := e.Key.Name()
		if i == 0 || name != famName || e.Kind != famKind {
			famName, famKind = name, e.Kind
			n, err := fmt.Fprintf(out, "# TYPE %s %s\n", name, e.Kind)
			written += n
			if err != nil {
				return written, err
			}
		}

		var n int
		var err error
		switch e.Kind {
		case pulse.KindCounter:
			n, err = writeSample(out, name, e.Key, "", "", strconv.FormatUint(e.CounterValue, 10))
		case pulse.KindGauge:
			n, err = writeSample(out, name, e.Key, "", "", formatFloat(e.GaugeValue))
		case pulse.KindHistogram:
			n, err = writeDistribution(out, name, e.Key, e.Histogram)
		default:
			return written, fmt.Errorf("unexpected kind in entry %s", e.Key)
		}
		written += n
		if err != nil {
			return written, err
		}
	}
	return written, nil
}

// writeDistribution writes the quantile, _sum, and _count lines of one
// histogram entry.
func writeDistribution(out io.Writer, name string, key pulse.Key, d *pulse.Distribution) (int, error) {
	var written int
	for _, qv := range d.Quantiles {
		n, err := writeSample(
			out, name, key,
			"quantile", formatFloat(qv.Quantile),
			formatFloat(qv.Value),
		)
		written += n
		if err != nil {
			return written, err
		}
	}
	n, err := writeSample(out, name+"_sum", key, "", "", formatFloat(d.Sum))
	written += n
	if err != nil {
		return written, err
	}
	n, err = writeSample(out, name+"_count", key, "", "", strconv.FormatUint(d.Count, 10))
	written += n
	return written, err
}

// writeSample writes a single sample line, given the line's metric name,
// the entry's Key (for its label pairs), optionally an additional label
// name and value (use empty strings if not required), and the already
// formatted value.
func writeSample(out io.Writer, name string, key pulse.Key, additionalLabelName, additionalLabelValue, value string) (int, error) {
	var written int
	n, err := fmt.Fprint(out, name)
	written += n
	if err != nil {
		return written, err
	}
	n, err = labelPairsToText(out, key.Pairs(), additionalLabelName, additionalLabelValue)
	written += n
	if err != nil {
		return written, err
	}
	n, err = fmt.Fprintf(out, " %s\n", value)
	written += n
	return written, err
}

// labelPairsToText writes the label pairs plus the explicitly given
// additional pair, escaped as required by the text format and enclosed in
// '{...}'. An empty pair slice in combination with an empty
// additionalLabelName results in nothing being written.
func labelPairsToText(out io.Writer, pairs []pulse.Label, additionalLabelName, additionalLabelValue string) (int, error) {
	if len(pairs) == 0 && additionalLabelName == "" {
		return 0, nil
	}
	var written int
	separator := byte('{')
	for _, p := range pairs {
		n, err := fmt.Fprintf(
			out, `%c%s="%s"`,
			separator, p.Name, escapeLabelValue(p.Value),
		)
		written += n
		if err != nil {
			return written, err
		}
		separator = ','
	}
	if additionalLabelName != "" {
		n, err := fmt.Fprintf(
			out, `%c%s="%s"`,
			separator, additionalLabelName, escapeLabelValue(additionalLabelValue),
		)
		written += n
		if err != nil {
			return written, err
		}
	}
	n, err := out.Write([]byte{'}'})
	written += n
	return written, err
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// escapeLabelValue replaces '\' by '\\', '"' by '\"', and new line
// character by '\n'.
func escapeLabelValue(v string) string {
	result := bytes.NewBuffer(make([]byte, 0, len(v)))
	for _, c := range v {
		switch c {
		case '\\':
			result.WriteString(`\\`)
		case '"':
			result.WriteString(`\"`)
		case '\n':
			result.WriteString(`\n`)
		default:
			result.WriteRune(c)
		}
	}
	return result.String()
}
