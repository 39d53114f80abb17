// Copyright 2023 Hedgehog
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package artifacts

import "io"

// Provider is an interface for retrieving raw artifacts by their slash
// separated path, e.g. `hp/ProLiant DL380 Gen9/raidconf.sh.tmpl`.
// Get returns nil if the provider does not have the artifact.
type Provider interface {
	Get(string) io.ReadCloser
}
