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

// Package pulsehttp exposes a pulse Registry over HTTP for pull-based
// collection.
package pulsehttp

import (
	"bytes"
	"net"
	"net/http"
	"strconv"

	"github.com/pulsemetrics/pulse-go/pulse"
	"github.com/pulsemetrics/pulse-go/text"
)

// Handler returns an http.Handler serving the registry's current state in
// the text exposition format. Only GET is accepted. The snapshot is taken
// and rendered into a buffer before the first byte is written, so slow
// consumers never hold a registry lock.
func Handler(reg *pulse.Registry, opts ...Option) http.Handler {
	o := defaultOptions()
	for _, opt := range opts {
		opt.apply(o)
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			w.Header().Set("Allow", http.MethodGet)
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		if len(o.allowNets) > 0 && !remoteAllowed(r.RemoteAddr, o.allowNets) {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}

		var buf bytes.Buffer
		if _, err := text.WriteSnapshot(&buf, reg.Snapshot()); err != nil {
			if o.logger != nil {
				o.logger.WithError(err).Error("rendering metrics snapshot")
			}
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", text.ContentType)
		w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
		if _, err := w.Write(buf.Bytes()); err != nil && o.logger != nil {
			o.logger.WithError(err).Error("writing metrics response")
		}
	})
}

// remoteAllowed reports whether remoteAddr (a host:port as found in
// http.Request.RemoteAddr) falls inside one of the allowed networks.
func remoteAllowed(remoteAddr string, nets []*net.IPNet) bool {
	host, _, err := net.SplitHostPort(remoteAddr)
	if err != nil {
		host = remoteAddr
	}
	ip := net.ParseIP(host)
	if ip == nil {
		return false
	}
	for _, n := range nets {
		if n.Contains(ip) {
			return true
		}
	}
	return false
}
