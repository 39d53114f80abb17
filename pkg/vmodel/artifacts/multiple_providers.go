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

type multipleProviders struct {
	providers []Provider
}

var _ Provider = &multipleProviders{}

// New chains `providers`. The first provider which has an artifact wins.
func New(providers ...Provider) Provider {
	return &multipleProviders{providers: providers}
}

func (m *multipleProviders) Get(artifact string) io.ReadCloser {
	for _, p := range m.providers {
		if r := p.Get(artifact); r != nil {
			return r
		}
	}
	return nil
}
