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

// defaultRegistry is the process-wide registry behind Default. It is
// created with default options at init and intentionally never torn down;
// leaking it at process exit is memory-safe.
var defaultRegistry = MustNewRegistry(Options{})

// Default returns the process-wide registry. Instrumentation sites that
// cannot carry an explicit *Registry use this narrow ambient handle;
// everything else should take a Registry as a dependency.
func Default() *Registry { return defaultRegistry }
