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

package pulsehttp

import (
	"net"

	"github.com/sirupsen/logrus"
)

// Option configures the Handler.
type Option interface {
	apply(*options)
}

type options struct {
	allowNets []*net.IPNet
	logger    logrus.FieldLogger
}

func defaultOptions() *options {
	return &options{}
}

type optionApplyFunc func(*options)

func (o optionApplyFunc) apply(opt *options) { o(opt) }

// WithAllowList restricts the handler to clients whose remote address falls
// inside one of the given CIDR networks; everyone else receives 403 before
// the registry is touched. It panics on a malformed CIDR, as the allow list
// is part of static handler configuration. Without this option, all clients
// are served.
func WithAllowList(cidrs ...string) Option {
	nets := make([]*net.IPNet, 0, len(cidrs))
	for _, c := range cidrs {
		_, n, err := net.ParseCIDR(c)
		if err != nil {
			panic(err)
		}
		nets = append(nets, n)
	}
	return optionApplyFunc(func(o *options) {
		o.allowNets = append(o.allowNets, nets...)
	})
}

// WithErrorLog directs render and write failures to the given logger. By
// default they are silently discarded.
func WithErrorLog(logger logrus.FieldLogger) Option {
	return optionApplyFunc(func(o *options) {
		o.logger = logger
	})
}
