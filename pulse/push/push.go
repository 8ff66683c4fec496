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

// Package push provides a client that periodically pushes a registry's
// rendered state to a push-gateway style endpoint.
package push

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/avast/retry-go"
	"github.com/sirupsen/logrus"

	"github.com/pulsemetrics/pulse-go/pulse"
	"github.com/pulsemetrics/pulse-go/text"
)

const (
	// DefInterval is the default pause between pushes in Run.
	DefInterval = 15 * time.Second

	// DefAttempts is the default number of delivery attempts per push.
	DefAttempts = 3
)

// Pusher snapshots a registry, renders the snapshot, and POSTs the payload
// to a configured URL. Transport failures are retried with backoff; they
// never block or corrupt the registry, which is only touched to take the
// snapshot. Create a Pusher with New, tune it with the chaining methods,
// then run Push once or Run on an interval.
type Pusher struct {
	url string
	reg *pulse.Registry

	client   *http.Client
	interval time.Duration
	attempts uint
	logger   logrus.FieldLogger
}

// New returns a Pusher delivering reg's state to url.
func New(url string, reg *pulse.Registry) *Pusher {
	return &Pusher{
		url:      url,
		reg:      reg,
		client:   &http.Client{},
		interval: DefInterval,
		attempts: DefAttempts,
		logger:   logrus.StandardLogger(),
	}
}

// Client sets a custom HTTP client, e.g. one with a timeout or a special
// transport. For convenience, this method returns a pointer to the Pusher
// itself.
func (p *Pusher) Client(c *http.Client) *Pusher {
	p.client = c
	return p
}

// Interval sets the pause between pushes in Run. For convenience, this
// method returns a pointer to the Pusher itself.
func (p *Pusher) Interval(d time.Duration) *Pusher {
	p.interval = d
	return p
}

// Attempts sets the number of delivery attempts per push. For convenience,
// this method returns a pointer to the Pusher itself.
func (p *Pusher) Attempts(n uint) *Pusher {
	p.attempts = n
	return p
}

// Logger sets the logger used by Run for push failures. For convenience,
// this method returns a pointer to the Pusher itself.
func (p *Pusher) Logger(l logrus.FieldLogger) *Pusher {
	p.logger = l
	return p
}

// Push takes one snapshot, renders it, and delivers it, retrying failed
// attempts with backoff until the attempt budget is exhausted or ctx is
// cancelled. Any response code outside 2xx counts as a failed attempt.
func (p *Pusher) Push(ctx context.Context) error {
	var buf bytes.Buffer
	if _, err := text.WriteSnapshot(&buf, p.reg.Snapshot()); err != nil {
		return fmt.Errorf("rendering snapshot: %w", err)
	}
	payload := buf.Bytes()

	return retry.Do(
		func() error { return p.deliver(ctx, payload) },
		retry.Attempts(p.attempts),
		retry.Context(ctx),
		retry.LastErrorOnly(true),
	)
}

func (p *Pusher) deliver(ctx context.Context, payload []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.url, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", text.ContentType)

	resp, err := p.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("unexpected status %s pushing metrics to %s", resp.Status, p.url)
	}
	return nil
}

// Run pushes on the configured interval until ctx is cancelled and returns
// ctx.Err(). A failed push is logged and the loop continues; cancellation
// is observed between iterations.
func (p *Pusher) Run(ctx context.Context) error {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := p.Push(ctx); err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				p.logger.WithError(err).Warn("pushing metrics failed")
			}
		}
	}
}
